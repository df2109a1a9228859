package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/deadliner/internal/model"
)

type TimerSessionStore struct {
	db *sql.DB
}

func NewTimerSessionStore(db *sql.DB) *TimerSessionStore {
	return &TimerSessionStore{db: db}
}

func scanTimerSession(sc scanner) (*model.TimerSession, error) {
	var ts model.TimerSession
	var taskID, endTime sql.NullString
	var completed int

	err := sc.Scan(&ts.ID, &ts.UserID, &taskID, &ts.TaskTitle, &ts.StartTime, &endTime,
		&ts.Duration, &ts.PointsEarned, &completed)
	if err != nil {
		return nil, err
	}

	if taskID.Valid {
		ts.TaskID = &taskID.String
	}
	if endTime.Valid {
		ts.EndTime = &endTime.String
	}
	ts.Completed = completed != 0
	return &ts, nil
}

const timerSessionCols = `id, user_id, task_id, task_title, start_time, end_time, duration, points_earned, completed`

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (s *TimerSessionStore) Create(ctx context.Context, ts model.TimerSession, createdAt string) (*model.TimerSession, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO timer_sessions (`+timerSessionCols+`, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.ID, ts.UserID, nullString(ts.TaskID), ts.TaskTitle, ts.StartTime, nullString(ts.EndTime),
		ts.Duration, ts.PointsEarned, boolToInt(ts.Completed), createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert timer session: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+timerSessionCols+` FROM timer_sessions WHERE id = ?`, ts.ID)
	return scanTimerSession(row)
}

func (s *TimerSessionStore) ListByUser(ctx context.Context, userID string) ([]model.TimerSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+timerSessionCols+` FROM timer_sessions WHERE user_id = ? ORDER BY rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list timer sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.TimerSession
	for rows.Next() {
		ts, err := scanTimerSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan timer session: %w", err)
		}
		sessions = append(sessions, *ts)
	}
	return sessions, rows.Err()
}
