package model

type TimerSession struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	TaskID       *string `json:"task_id"`
	TaskTitle    string  `json:"task_title"`
	StartTime    string  `json:"start_time"`
	EndTime      *string `json:"end_time"`
	Duration     int     `json:"duration"` // seconds
	PointsEarned int     `json:"points_earned"`
	Completed    bool    `json:"completed"`
}
