package scheduler

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/deadliner/internal/model"
)

// Thursday 2026-02-05, mid-morning.
var testNow = time.Date(2026, 2, 5, 9, 30, 0, 0, time.UTC)

func testAssignment(typ model.AssignmentType, due string, hours float64) model.Assignment {
	return model.Assignment{
		ID:             "a-1",
		Title:          "Midterm",
		Subject:        "Physics",
		Type:           typ,
		DueDate:        due,
		Priority:       model.PriorityMedium,
		EstimatedHours: hours,
		UserID:         "demo_user",
	}
}

func profileWithHours(h float64) model.StudyProfile {
	p := model.DefaultStudyProfile()
	p.DailyStudyHours = h
	return p
}

func TestExamScenario(t *testing.T) {
	a := testAssignment(model.AssignmentTypeExam, "2026-02-09T12:00:00Z", 6)

	tasks, err := Generate(a, profileWithHours(4), testNow)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(tasks) != 4 {
		t.Fatalf("len(tasks) = %d, want 4", len(tasks))
	}

	wantDates := []string{"2026-02-05", "2026-02-06", "2026-02-07"}
	wantTitles := []string{"Review Physics materials", "Study Physics", "Final review for Physics"}
	for i := 0; i < 3; i++ {
		if tasks[i].Duration != 120 {
			t.Errorf("tasks[%d].Duration = %d, want 120", i, tasks[i].Duration)
		}
		if tasks[i].ScheduledDate != wantDates[i] {
			t.Errorf("tasks[%d].ScheduledDate = %q, want %q", i, tasks[i].ScheduledDate, wantDates[i])
		}
		if tasks[i].Title != wantTitles[i] {
			t.Errorf("tasks[%d].Title = %q, want %q", i, tasks[i].Title, wantTitles[i])
		}
		if tasks[i].Type != model.TaskTypeStudy {
			t.Errorf("tasks[%d].Type = %q, want %q", i, tasks[i].Type, model.TaskTypeStudy)
		}
	}

	reminder := tasks[3]
	if reminder.Type != model.TaskTypeReminder {
		t.Errorf("reminder.Type = %q, want %q", reminder.Type, model.TaskTypeReminder)
	}
	if reminder.Duration != 15 {
		t.Errorf("reminder.Duration = %d, want 15", reminder.Duration)
	}
	if reminder.Priority != model.PriorityHigh {
		t.Errorf("reminder.Priority = %q, want high", reminder.Priority)
	}
	if reminder.ScheduledDate != "2026-02-08" {
		t.Errorf("reminder.ScheduledDate = %q, want 2026-02-08", reminder.ScheduledDate)
	}
}

func TestExamReminderAlwaysDayBeforeDue(t *testing.T) {
	tests := []struct {
		due          string
		wantReminder string
	}{
		{"2026-02-06", "2026-02-05"},
		{"2026-02-07T08:00:00Z", "2026-02-06"},
		{"2026-03-01T23:59:00+02:00", "2026-02-28"},
		{"2026-06-30", "2026-06-29"},
		// Past due: the study window collapses to today, the reminder still tracks the due date.
		{"2026-02-01", "2026-01-31"},
	}

	for _, tt := range tests {
		tasks, err := Generate(testAssignment(model.AssignmentTypeExam, tt.due, 10), profileWithHours(4), testNow)
		if err != nil {
			t.Errorf("Generate(%q): %v", tt.due, err)
			continue
		}
		last := tasks[len(tasks)-1]
		if last.Type != model.TaskTypeReminder || last.Duration != 15 {
			t.Errorf("due %q: last task = %+v, want 15-minute reminder", tt.due, last)
		}
		if last.ScheduledDate != tt.wantReminder {
			t.Errorf("due %q: reminder date = %q, want %q", tt.due, last.ScheduledDate, tt.wantReminder)
		}
	}
}

func TestExamSingleStudyDayIsReview(t *testing.T) {
	a := testAssignment(model.AssignmentTypeExam, "2026-02-06", 2)

	tasks, err := Generate(a, profileWithHours(4), testNow)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len(tasks) = %d, want 2", len(tasks))
	}
	if tasks[0].Title != "Review Physics materials" {
		t.Errorf("tasks[0].Title = %q, want review task", tasks[0].Title)
	}
	if tasks[0].Duration != 120 {
		t.Errorf("tasks[0].Duration = %d, want 120", tasks[0].Duration)
	}
}

func TestProjectScenario(t *testing.T) {
	a := testAssignment(model.AssignmentTypeProject, "2026-02-15T17:00:00Z", 20)
	a.Title = "Robot"

	tasks, err := Generate(a, profileWithHours(5), testNow)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(tasks) != 10 {
		t.Fatalf("len(tasks) = %d, want 10", len(tasks))
	}

	phases := []struct {
		title string
		days  int
	}{
		{"Planning & Research: Robot", 3},
		{"Implementation: Robot", 5},
		{"Review & Polish: Robot", 2},
	}
	i := 0
	for _, ph := range phases {
		for d := 0; d < ph.days; d++ {
			task := tasks[i]
			if task.Title != ph.title {
				t.Errorf("tasks[%d].Title = %q, want %q", i, task.Title, ph.title)
			}
			// 360/3, 600/5 and 240/2 all come to 120, under the 180 cap.
			if task.Duration != 120 {
				t.Errorf("tasks[%d].Duration = %d, want 120", i, task.Duration)
			}
			if task.Type != model.TaskTypeAssignment {
				t.Errorf("tasks[%d].Type = %q, want assignment", i, task.Type)
			}
			want := testNow.AddDate(0, 0, i).Format(DateLayout)
			if task.ScheduledDate != want {
				t.Errorf("tasks[%d].ScheduledDate = %q, want %q", i, task.ScheduledDate, want)
			}
			i++
		}
	}
}

func TestProjectPhaseCap(t *testing.T) {
	// 40h over 10 days: implementation gets 1200 minutes over 5 days = 240, capped at 1h*60*0.6 = 36.
	a := testAssignment(model.AssignmentTypeProject, "2026-02-15", 40)

	tasks, err := Generate(a, profileWithHours(1), testNow)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i, task := range tasks {
		if task.Duration != 36 {
			t.Errorf("tasks[%d].Duration = %d, want 36", i, task.Duration)
		}
	}
}

func TestProjectDriftIsPreserved(t *testing.T) {
	tests := []struct {
		due      string
		wantDays int
	}{
		// 1 day: every phase floors to 0 and is raised to 1, so the plan runs 3 days.
		{"2026-02-06", 3},
		// 4 days: 1 + 2 + 1.
		{"2026-02-09", 4},
		// 7 days: 2 + 3 + 1 = 6, one short.
		{"2026-02-12", 6},
	}

	for _, tt := range tests {
		tasks, err := Generate(testAssignment(model.AssignmentTypeProject, tt.due, 12), profileWithHours(4), testNow)
		if err != nil {
			t.Errorf("Generate(%q): %v", tt.due, err)
			continue
		}
		if len(tasks) != tt.wantDays {
			t.Errorf("due %q: len(tasks) = %d, want %d", tt.due, len(tasks), tt.wantDays)
			continue
		}
		wantLast := testNow.AddDate(0, 0, tt.wantDays-1).Format(DateLayout)
		if got := tasks[len(tasks)-1].ScheduledDate; got != wantLast {
			t.Errorf("due %q: last date = %q, want %q", tt.due, got, wantLast)
		}
	}
}

func TestGenericAssignment(t *testing.T) {
	a := testAssignment(model.AssignmentTypeAssignment, "2026-02-10", 10)
	a.Title = "Lab report"

	tasks, err := Generate(a, profileWithHours(4), testNow)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// 5 days until due -> 4 work days, 600/4 = 150 capped at 144.
	if len(tasks) != 4 {
		t.Fatalf("len(tasks) = %d, want 4", len(tasks))
	}
	for i, task := range tasks {
		if task.Duration != 144 {
			t.Errorf("tasks[%d].Duration = %d, want 144", i, task.Duration)
		}
		if task.Title != "Work on Lab report" {
			t.Errorf("tasks[%d].Title = %q", i, task.Title)
		}
		if !strings.Contains(task.Description, "Physics") {
			t.Errorf("tasks[%d].Description = %q, want subject mentioned", i, task.Description)
		}
	}
}

func TestUnknownTypeFallsBackToGeneric(t *testing.T) {
	a := testAssignment(model.AssignmentType("quiz"), "2026-02-08", 3)

	tasks, err := Generate(a, profileWithHours(4), testNow)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len(tasks) = %d, want 2", len(tasks))
	}
	for _, task := range tasks {
		if task.Type != model.TaskTypeAssignment {
			t.Errorf("Type = %q, want assignment", task.Type)
		}
	}
}

func TestZeroMinuteTasksStillEmitted(t *testing.T) {
	// 30 minutes spread over 39 work days truncates to zero per day.
	a := testAssignment(model.AssignmentTypeAssignment, "2026-03-17", 0.5)

	tasks, err := Generate(a, profileWithHours(4), testNow)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(tasks) != 39 {
		t.Fatalf("len(tasks) = %d, want 39", len(tasks))
	}
	for i, task := range tasks {
		if task.Duration != 0 {
			t.Errorf("tasks[%d].Duration = %d, want 0", i, task.Duration)
		}
	}
}

func TestZeroCapacityCollapsesDurations(t *testing.T) {
	for _, typ := range []model.AssignmentType{model.AssignmentTypeAssignment, model.AssignmentTypeExam, model.AssignmentTypeProject} {
		tasks, err := Generate(testAssignment(typ, "2026-02-12", 8), profileWithHours(0), testNow)
		if err != nil {
			t.Fatalf("Generate(%s): %v", typ, err)
		}
		if len(tasks) == 0 {
			t.Fatalf("Generate(%s) returned no tasks", typ)
		}
		for i, task := range tasks {
			if task.Type == model.TaskTypeReminder {
				continue
			}
			if task.Duration != 0 {
				t.Errorf("%s tasks[%d].Duration = %d, want 0", typ, i, task.Duration)
			}
		}
	}
}

func TestGeneratedTaskInvariants(t *testing.T) {
	dues := []string{"2026-02-05", "2026-02-06", "2026-02-09T12:00:00Z", "2026-02-20", "2026-04-01T00:00:00.000Z"}
	hours := []float64{0, 0.25, 3, 17.5, 120}
	daily := []float64{0, 1, 2.5, 4, 9}
	types := []model.AssignmentType{model.AssignmentTypeAssignment, model.AssignmentTypeExam, model.AssignmentTypeProject}
	priorities := []model.Priority{model.PriorityLow, model.PriorityMedium, model.PriorityHigh}

	for _, due := range dues {
		for _, h := range hours {
			for _, d := range daily {
				for i, typ := range types {
					a := testAssignment(typ, due, h)
					a.Priority = priorities[i]
					a.UserID = "user-42"
					p := profileWithHours(d)
					capacity := DailyCapacity(p)

					tasks, err := Generate(a, p, testNow)
					if err != nil {
						t.Fatalf("Generate(%s, %q): %v", typ, due, err)
					}
					if len(tasks) == 0 {
						t.Fatalf("Generate(%s, %q) returned no tasks", typ, due)
					}
					prev := ""
					for _, task := range tasks {
						if task.UserID != a.UserID {
							t.Errorf("UserID = %q, want %q", task.UserID, a.UserID)
						}
						if task.AssignmentID != a.ID {
							t.Errorf("AssignmentID = %q, want %q", task.AssignmentID, a.ID)
						}
						if task.ID == "" {
							t.Error("task id is empty")
						}
						if task.Type == model.TaskTypeReminder {
							continue
						}
						if task.Priority != a.Priority {
							t.Errorf("Priority = %q, want %q", task.Priority, a.Priority)
						}
						if task.Duration < 0 || task.Duration > capacity {
							t.Errorf("Duration = %d, want within [0, %d]", task.Duration, capacity)
						}
						if task.ScheduledDate < prev {
							t.Errorf("dates out of order: %q after %q", task.ScheduledDate, prev)
						}
						prev = task.ScheduledDate
					}
				}
			}
		}
	}
}

func TestGenerateInvalidDueDate(t *testing.T) {
	for _, due := range []string{"", "tomorrow", "2026-13-01", "05/02/2026"} {
		_, err := Generate(testAssignment(model.AssignmentTypeExam, due, 1), profileWithHours(4), testNow)
		if !errors.Is(err, ErrInvalidDueDate) {
			t.Errorf("Generate(%q) err = %v, want ErrInvalidDueDate", due, err)
		}
	}
}

func TestParseDueDateOffsetKeepsOwnCalendarDay(t *testing.T) {
	// 01:00 at +05:00 is still the previous day in UTC; the due day is the one written.
	a := testAssignment(model.AssignmentTypeExam, "2026-02-09T01:00:00+05:00", 6)

	tasks, err := Generate(a, profileWithHours(4), testNow)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(tasks) != 4 {
		t.Fatalf("len(tasks) = %d, want 4", len(tasks))
	}
	if got := tasks[3].ScheduledDate; got != "2026-02-08" {
		t.Errorf("reminder date = %q, want 2026-02-08", got)
	}
}

func TestDailyCapacity(t *testing.T) {
	tests := []struct {
		hours float64
		want  int
	}{
		{4, 144},
		{5, 180},
		{2.5, 90},
		{0, 0},
		{-3, 0},
	}
	for _, tt := range tests {
		if got := DailyCapacity(profileWithHours(tt.hours)); got != tt.want {
			t.Errorf("DailyCapacity(%v) = %d, want %d", tt.hours, got, tt.want)
		}
	}
}

func TestGenerateHugeEstimateHitsCapacity(t *testing.T) {
	tests := []struct {
		name  string
		typ   model.AssignmentType
		hours float64
	}{
		{"exam", model.AssignmentTypeExam, 1e18},
		{"assignment", model.AssignmentTypeAssignment, 1e18},
		{"project", model.AssignmentTypeProject, 1e300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := Generate(testAssignment(tt.typ, "2026-02-09T12:00:00Z", tt.hours), profileWithHours(4), testNow)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if tasks[0].Duration != 144 {
				t.Errorf("tasks[0].Duration = %d, want capacity 144", tasks[0].Duration)
			}
		})
	}
}

func TestMinutesClamp(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-5, 0},
		{0, 0},
		{90.9, 90},
		{1e18, math.MaxInt32},
		{math.Inf(1), math.MaxInt32},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := minutes(tt.in); got != tt.want {
			t.Errorf("minutes(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	today := calendarDate(testNow)
	tests := []struct {
		due  time.Time
		want int64
	}{
		{time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), 4},
		{time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), -4},
		// Beyond the ~292 years a time.Duration can hold.
		{time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC), 2912407},
	}
	for _, tt := range tests {
		if got := daysBetween(today, tt.due); got != tt.want {
			t.Errorf("daysBetween(%s) = %d, want %d", tt.due.Format(DateLayout), got, tt.want)
		}
	}
}

func TestGenerateRejectsFarDueDate(t *testing.T) {
	tests := []struct {
		due     string
		wantErr bool
	}{
		{"2036-02-13", false},
		{"2036-02-14", true},
		{"9999-12-31T23:59:59Z", true},
	}
	for _, tt := range tests {
		_, err := Generate(testAssignment(model.AssignmentTypeAssignment, tt.due, 10), profileWithHours(4), testNow)
		if got := errors.Is(err, ErrDueDateTooFar); got != tt.wantErr {
			t.Errorf("due %s: err = %v, want too-far %v", tt.due, err, tt.wantErr)
		}
	}
}
