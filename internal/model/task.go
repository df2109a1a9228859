package model

type TaskType string

const (
	TaskTypeStudy      TaskType = "study"
	TaskTypeAssignment TaskType = "assignment"
	TaskTypeReminder   TaskType = "reminder"
)

type Task struct {
	ID            string   `json:"id"`
	AssignmentID  string   `json:"assignment_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ScheduledDate string   `json:"scheduled_date"`
	Duration      int      `json:"duration"`
	Completed     bool     `json:"completed"`
	Type          TaskType `json:"type"`
	Priority      Priority `json:"priority"`
	UserID        string   `json:"user_id"`
}

type DailyPlan struct {
	Date           string `json:"date"`
	Tasks          []Task `json:"tasks"`
	TotalStudyTime int    `json:"total_study_time"`
	Completed      bool   `json:"completed"`
}
