package model

type StudyStyle string

const (
	StudyStyleDistributed StudyStyle = "distributed"
	StudyStyleFocused     StudyStyle = "focused"
)

type StudyProfile struct {
	DailyStudyHours     float64    `json:"daily_study_hours"`
	PreferredStudyTimes []string   `json:"preferred_study_times"`
	Subjects            []string   `json:"subjects"`
	StudyStyle          StudyStyle `json:"study_style"`
}

// DefaultStudyProfile is applied whenever a user has no persisted profile.
func DefaultStudyProfile() StudyProfile {
	return StudyProfile{
		DailyStudyHours:     4.0,
		PreferredStudyTimes: []string{"morning", "evening"},
		Subjects:            []string{"Math", "Science", "History", "English"},
		StudyStyle:          StudyStyleDistributed,
	}
}

type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	StudyProfile StudyProfile `json:"study_profile"`
	CreatedAt    string       `json:"created_at"`
}
