package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dukerupert/deadliner/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(sc scanner) (*model.User, error) {
	var u model.User
	var times, subjects string

	err := sc.Scan(&u.ID, &u.Email, &u.Name, &u.StudyProfile.DailyStudyHours, &times, &subjects,
		&u.StudyProfile.StudyStyle, &u.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(times), &u.StudyProfile.PreferredStudyTimes); err != nil {
		return nil, fmt.Errorf("decode preferred_study_times: %w", err)
	}
	if err := json.Unmarshal([]byte(subjects), &u.StudyProfile.Subjects); err != nil {
		return nil, fmt.Errorf("decode subjects: %w", err)
	}
	return &u, nil
}

const userCols = `id, email, name, daily_study_hours, preferred_study_times, subjects, study_style, created_at`

func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GetByID returns nil when the user has never been stored.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) Create(ctx context.Context, u model.User) (*model.User, error) {
	times, err := encodeList(u.StudyProfile.PreferredStudyTimes)
	if err != nil {
		return nil, fmt.Errorf("encode preferred_study_times: %w", err)
	}
	subjects, err := encodeList(u.StudyProfile.Subjects)
	if err != nil {
		return nil, fmt.Errorf("encode subjects: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (`+userCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.StudyProfile.DailyStudyHours, times, subjects,
		u.StudyProfile.StudyStyle, u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(ctx, u.ID)
}

// GetOrCreate returns the stored user, inserting u first when none exists.
func (s *UserStore) GetOrCreate(ctx context.Context, u model.User) (*model.User, error) {
	existing, err := s.GetByID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return s.Create(ctx, u)
}

// UpsertProfile replaces the user's study profile. When no row exists yet, u
// is inserted whole; an existing row keeps its email, name and created_at.
func (s *UserStore) UpsertProfile(ctx context.Context, u model.User) error {
	p := u.StudyProfile
	times, err := encodeList(p.PreferredStudyTimes)
	if err != nil {
		return fmt.Errorf("encode preferred_study_times: %w", err)
	}
	subjects, err := encodeList(p.Subjects)
	if err != nil {
		return fmt.Errorf("encode subjects: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (`+userCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   daily_study_hours = excluded.daily_study_hours,
		   preferred_study_times = excluded.preferred_study_times,
		   subjects = excluded.subjects,
		   study_style = excluded.study_style`,
		u.ID, u.Email, u.Name, p.DailyStudyHours, times, subjects, p.StudyStyle, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
