package scheduler

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dukerupert/deadliner/internal/model"
	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used for Task.ScheduledDate.
const DateLayout = "2006-01-02"

const (
	capacityFraction = 0.6
	reminderMinutes  = 15

	// MaxHorizonDays bounds how far ahead a due date may be; one task per day
	// is generated up to it.
	MaxHorizonDays = 3660
)

var (
	ErrInvalidDueDate = errors.New("invalid due date")
	ErrDueDateTooFar  = errors.New("due date too far in the future")
)

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseDueDate parses an ISO-8601 due date. A trailing "Z" means UTC; values
// without an offset are read in loc.
func ParseDueDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, s)
}

// breakdown holds the values every strategy shares.
type breakdown struct {
	today         time.Time // midnight UTC of today's calendar date
	due           time.Time // midnight UTC of the due date's calendar date
	daysUntilDue  int
	totalMinutes  int
	dailyCapacity int
}

func (b breakdown) dateAt(offset int) string {
	return b.today.AddDate(0, 0, offset).Format(DateLayout)
}

type strategy func(a model.Assignment, b breakdown) []model.Task

var strategies = map[model.AssignmentType]strategy{
	model.AssignmentTypeExam:    examTasks,
	model.AssignmentTypeProject: projectTasks,
}

func strategyFor(t model.AssignmentType) strategy {
	if s, ok := strategies[t]; ok {
		return s
	}
	return assignmentTasks
}

// Generate breaks an assignment into dated tasks. It has no side effects
// beyond generating task ids; now decides which calendar day is "today".
func Generate(a model.Assignment, p model.StudyProfile, now time.Time) ([]model.Task, error) {
	due, err := ParseDueDate(a.DueDate, now.Location())
	if err != nil {
		return nil, err
	}

	b := breakdown{
		today:         calendarDate(now),
		due:           calendarDate(due),
		totalMinutes:  minutes(a.EstimatedHours * 60),
		dailyCapacity: DailyCapacity(p),
	}
	days := daysBetween(b.today, b.due)
	if days > MaxHorizonDays {
		return nil, fmt.Errorf("%w: %d days, limit %d", ErrDueDateTooFar, days, MaxHorizonDays)
	}
	b.daysUntilDue = int(max(1, days))

	return strategyFor(a.Type)(a, b), nil
}

// DailyCapacity is the per-day minute ceiling applied to generated tasks.
func DailyCapacity(p model.StudyProfile) int {
	return minutes(p.DailyStudyHours * 60 * capacityFraction)
}

// minutes truncates m toward zero, clamped to [0, MaxInt32] so huge inputs
// never wrap on conversion.
func minutes(m float64) int {
	switch {
	case math.IsNaN(m) || m <= 0:
		return 0
	case m >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(m)
}

// daysBetween counts whole calendar days between two UTC midnights without
// going through time.Duration, which saturates after about 292 years.
func daysBetween(from, to time.Time) int64 {
	return (to.Unix() - from.Unix()) / 86400
}

func examTasks(a model.Assignment, b breakdown) []model.Task {
	studyDays := max(1, b.daysUntilDue-1)
	daily := min(b.totalMinutes/studyDays, b.dailyCapacity)

	tasks := make([]model.Task, 0, studyDays+1)
	for i := 0; i < studyDays; i++ {
		var title, desc string
		switch {
		case i == 0:
			title = fmt.Sprintf("Review %s materials", a.Subject)
			desc = fmt.Sprintf("Review notes and textbook chapters for %s", a.Title)
		case i == studyDays-1:
			title = fmt.Sprintf("Final review for %s", a.Subject)
			desc = fmt.Sprintf("Practice problems and final review for %s", a.Title)
		default:
			title = fmt.Sprintf("Study %s", a.Subject)
			desc = fmt.Sprintf("Deep study session for %s", a.Title)
		}
		tasks = append(tasks, newTask(a, title, desc, b.dateAt(i), daily, model.TaskTypeStudy, a.Priority))
	}

	// The reminder is pinned to the day before the due date, not to the study window.
	tasks = append(tasks, newTask(a,
		"Final prep reminder",
		fmt.Sprintf("Tomorrow is your %s! Review key concepts.", a.Title),
		b.due.AddDate(0, 0, -1).Format(DateLayout),
		reminderMinutes,
		model.TaskTypeReminder,
		model.PriorityHigh,
	))
	return tasks
}

type phase struct {
	name     string
	fraction float64
}

var projectPhases = []phase{
	{"Planning & Research", 0.3},
	{"Implementation", 0.5},
	{"Review & Polish", 0.2},
}

// projectTasks lays the phases out back to back from today. Each phase's day
// count is floored on its own, so the total span can differ from daysUntilDue.
func projectTasks(a model.Assignment, b breakdown) []model.Task {
	var tasks []model.Task
	offset := 0
	for _, ph := range projectPhases {
		phaseMinutes := int(float64(b.totalMinutes) * ph.fraction)
		phaseDays := max(1, int(float64(b.daysUntilDue)*ph.fraction))
		daily := min(phaseMinutes/phaseDays, b.dailyCapacity)

		title := fmt.Sprintf("%s: %s", ph.name, a.Title)
		desc := fmt.Sprintf("Work on %s phase of %s", strings.ToLower(ph.name), a.Title)
		for i := 0; i < phaseDays; i++ {
			tasks = append(tasks, newTask(a, title, desc, b.dateAt(offset+i), daily, model.TaskTypeAssignment, a.Priority))
		}
		offset += phaseDays
	}
	return tasks
}

func assignmentTasks(a model.Assignment, b breakdown) []model.Task {
	workDays := max(1, b.daysUntilDue-1)
	daily := min(b.totalMinutes/workDays, b.dailyCapacity)

	title := fmt.Sprintf("Work on %s", a.Title)
	desc := fmt.Sprintf("Continue working on %s for %s", a.Title, a.Subject)

	tasks := make([]model.Task, 0, workDays)
	for i := 0; i < workDays; i++ {
		tasks = append(tasks, newTask(a, title, desc, b.dateAt(i), daily, model.TaskTypeAssignment, a.Priority))
	}
	return tasks
}

func newTask(a model.Assignment, title, desc, date string, duration int, typ model.TaskType, priority model.Priority) model.Task {
	return model.Task{
		ID:            uuid.NewString(),
		AssignmentID:  a.ID,
		Title:         title,
		Description:   desc,
		ScheduledDate: date,
		Duration:      duration,
		Type:          typ,
		Priority:      priority,
		UserID:        a.UserID,
	}
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
