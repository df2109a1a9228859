package model

type AssignmentType string

const (
	AssignmentTypeAssignment AssignmentType = "assignment"
	AssignmentTypeExam       AssignmentType = "exam"
	AssignmentTypeProject    AssignmentType = "project"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for sorting: high=3, medium=2, low=1, anything else 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Assignment is a due academic deliverable. DueDate and CreatedAt are kept as
// the ISO-8601 strings they were received and stored as.
type Assignment struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Subject        string         `json:"subject"`
	Type           AssignmentType `json:"type"`
	DueDate        string         `json:"due_date"`
	Priority       Priority       `json:"priority"`
	EstimatedHours float64        `json:"estimated_hours"`
	Description    *string        `json:"description"`
	Completed      bool           `json:"completed"`
	CreatedAt      string         `json:"created_at"`
	UserID         string         `json:"user_id"`
}
