package scheduler

import (
	"sort"

	"github.com/dukerupert/deadliner/internal/model"
)

// AssembleDailyPlan picks the tasks scheduled on date (exact string match),
// highest priority first. A plan is completed only when it has tasks and all
// of them are done.
func AssembleDailyPlan(tasks []model.Task, date string) model.DailyPlan {
	dayTasks := make([]model.Task, 0)
	total := 0
	for _, t := range tasks {
		if t.ScheduledDate != date {
			continue
		}
		dayTasks = append(dayTasks, t)
		total += t.Duration
	}

	sort.SliceStable(dayTasks, func(i, j int) bool {
		return dayTasks[i].Priority.Rank() > dayTasks[j].Priority.Rank()
	})

	completed := len(dayTasks) > 0
	for _, t := range dayTasks {
		if !t.Completed {
			completed = false
			break
		}
	}

	return model.DailyPlan{
		Date:           date,
		Tasks:          dayTasks,
		TotalStudyTime: total,
		Completed:      completed,
	}
}

// Reschedule moves a task to newDate and marks it incomplete. The date is not validated.
func Reschedule(t model.Task, newDate string) model.Task {
	t.ScheduledDate = newDate
	t.Completed = false
	return t
}
