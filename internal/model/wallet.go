package model

type Wallet struct {
	UserID            string       `json:"user_id"`
	TotalPoints       int          `json:"total_points"`
	TotalEarnings     float64      `json:"total_earnings"`
	SessionsCompleted int          `json:"sessions_completed"`
	TotalStudyTime    int          `json:"total_study_time"` // seconds
	RewardsRedeemed   []Redemption `json:"rewards_redeemed"`
}

type Redemption struct {
	ID         string  `json:"id"`
	Points     int     `json:"points"`
	Amount     float64 `json:"amount"`
	RedeemedAt string  `json:"redeemed_at"`
}

type RewardTier struct {
	Points int     `json:"points"`
	Amount float64 `json:"amount"`
	Label  string  `json:"label"`
}

type Stats struct {
	TotalTasks        int     `json:"total_tasks"`
	CompletedTasks    int     `json:"completed_tasks"`
	CompletionRate    float64 `json:"completion_rate"`
	UpcomingDeadlines int     `json:"upcoming_deadlines"`
}
