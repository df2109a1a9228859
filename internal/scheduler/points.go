package scheduler

import "github.com/dukerupert/deadliner/internal/model"

const pointsPerHour = 10

var rewardTiers = []model.RewardTier{
	{Points: 1000, Amount: 50, Label: "Starter Reward"},
	{Points: 3000, Amount: 150, Label: "Study Champion"},
	{Points: 5000, Amount: 300, Label: "Academic Star"},
	{Points: 10000, Amount: 600, Label: "Study Master"},
}

// PointsForDuration awards 10 points per hour studied, rounded down.
func PointsForDuration(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return int(float64(seconds) / 3600 * pointsPerHour)
}

// RewardTiers returns the redeemable tiers, cheapest first.
func RewardTiers() []model.RewardTier {
	out := make([]model.RewardTier, len(rewardTiers))
	copy(out, rewardTiers)
	return out
}

// NextTier returns the first tier costing more than points, or nil when every
// tier is already affordable.
func NextTier(points int) *model.RewardTier {
	for _, t := range rewardTiers {
		if t.Points > points {
			return &t
		}
	}
	return nil
}
