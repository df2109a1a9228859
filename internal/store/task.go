package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/deadliner/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(sc scanner) (*model.Task, error) {
	var t model.Task
	var completed int

	err := sc.Scan(&t.ID, &t.AssignmentID, &t.UserID, &t.Title, &t.Description, &t.ScheduledDate,
		&t.Duration, &completed, &t.Type, &t.Priority)
	if err != nil {
		return nil, err
	}

	t.Completed = completed != 0
	return &t, nil
}

const taskCols = `id, assignment_id, user_id, title, description, scheduled_date, duration, completed, type, priority`

// CreateMany inserts generated tasks in order, all or none.
func (s *TaskStore) CreateMany(ctx context.Context, tasks []model.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertTasks(ctx, tx, tasks); err != nil {
		return err
	}
	return tx.Commit()
}

func insertTasks(ctx context.Context, tx *sql.Tx, tasks []model.Task) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tasks (`+taskCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert task: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		_, err := stmt.ExecContext(ctx, t.ID, t.AssignmentID, t.UserID, t.Title, t.Description,
			t.ScheduledDate, t.Duration, boolToInt(t.Completed), t.Type, t.Priority)
		if err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	return nil
}

// GetByID returns nil when the task does not exist for the user.
func (s *TaskStore) GetByID(ctx context.Context, userID, id string) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	return s.list(ctx, `SELECT `+taskCols+` FROM tasks WHERE user_id = ? ORDER BY rowid ASC`, userID)
}

// ListByUserAndDate matches scheduled_date exactly.
func (s *TaskStore) ListByUserAndDate(ctx context.Context, userID, date string) ([]model.Task, error) {
	return s.list(ctx,
		`SELECT `+taskCols+` FROM tasks WHERE user_id = ? AND scheduled_date = ? ORDER BY rowid ASC`,
		userID, date)
}

func (s *TaskStore) list(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Complete marks a task done. It returns false when no such task exists.
func (s *TaskStore) Complete(ctx context.Context, userID, id string) (bool, error) {
	return s.update(ctx, "complete task",
		`UPDATE tasks SET completed = 1 WHERE id = ? AND user_id = ?`, id, userID)
}

// Reschedule moves a task to date and clears its completion flag.
func (s *TaskStore) Reschedule(ctx context.Context, userID, id, date string) (bool, error) {
	return s.update(ctx, "reschedule task",
		`UPDATE tasks SET scheduled_date = ?, completed = 0 WHERE id = ? AND user_id = ?`, date, id, userID)
}

func (s *TaskStore) update(ctx context.Context, op, query string, args ...any) (bool, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteByAssignment removes every task generated for an assignment.
func (s *TaskStore) DeleteByAssignment(ctx context.Context, userID, assignmentID string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE assignment_id = ? AND user_id = ?`, assignmentID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete tasks by assignment: %w", err)
	}
	return result.RowsAffected()
}

// Counts returns the user's total and completed task counts.
func (s *TaskStore) Counts(ctx context.Context, userID string) (total, completed int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(completed), 0) FROM tasks WHERE user_id = ?`, userID,
	).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("count tasks: %w", err)
	}
	return total, completed, nil
}
