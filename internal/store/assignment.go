package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/deadliner/internal/model"
)

type AssignmentStore struct {
	db *sql.DB
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

func scanAssignment(sc scanner) (*model.Assignment, error) {
	var a model.Assignment
	var description sql.NullString
	var completed int

	err := sc.Scan(&a.ID, &a.UserID, &a.Title, &a.Subject, &a.Type, &a.DueDate, &a.Priority,
		&a.EstimatedHours, &description, &completed, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		a.Description = &description.String
	}
	a.Completed = completed != 0
	return &a, nil
}

const assignmentCols = `id, user_id, title, subject, type, due_date, priority, estimated_hours, description, completed, created_at`

func (s *AssignmentStore) Create(ctx context.Context, a model.Assignment) (*model.Assignment, error) {
	return s.CreateWithTasks(ctx, a, nil)
}

// CreateWithTasks stores the assignment and its generated tasks in one
// transaction. A failed task insert leaves no assignment behind.
func (s *AssignmentStore) CreateWithTasks(ctx context.Context, a model.Assignment, tasks []model.Task) (*model.Assignment, error) {
	var desc sql.NullString
	if a.Description != nil {
		desc = sql.NullString{String: *a.Description, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO assignments (`+assignmentCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Title, a.Subject, a.Type, a.DueDate, a.Priority,
		a.EstimatedHours, desc, boolToInt(a.Completed), a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}
	if len(tasks) > 0 {
		if err := insertTasks(ctx, tx, tasks); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit assignment: %w", err)
	}
	return s.GetByID(ctx, a.UserID, a.ID)
}

// GetByID returns nil when the assignment does not exist for the user.
func (s *AssignmentStore) GetByID(ctx context.Context, userID, id string) (*model.Assignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assignmentCols+` FROM assignments WHERE id = ? AND user_id = ?`, id, userID)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

// ListByUser returns the user's assignments in insertion order.
func (s *AssignmentStore) ListByUser(ctx context.Context, userID string) ([]model.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assignmentCols+` FROM assignments WHERE user_id = ? ORDER BY rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// Delete removes one assignment and reports whether it existed. Tasks are left to the caller.
func (s *AssignmentStore) Delete(ctx context.Context, userID, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete assignment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// CountDueBetween counts assignments whose due_date string sorts within [from, to].
func (s *AssignmentStore) CountDueBetween(ctx context.Context, userID, from, to string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assignments WHERE user_id = ? AND due_date >= ? AND due_date <= ?`,
		userID, from, to,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count upcoming assignments: %w", err)
	}
	return n, nil
}
