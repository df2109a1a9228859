package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/deadliner/internal/model"
)

type WalletStore struct {
	db *sql.DB
}

func NewWalletStore(db *sql.DB) *WalletStore {
	return &WalletStore{db: db}
}

const walletCols = `user_id, total_points, total_earnings, sessions_completed, total_study_time`

// Get returns nil when the user has no wallet yet.
func (s *WalletStore) Get(ctx context.Context, userID string) (*model.Wallet, error) {
	var w model.Wallet
	err := s.db.QueryRowContext(ctx, `SELECT `+walletCols+` FROM wallets WHERE user_id = ?`, userID).
		Scan(&w.UserID, &w.TotalPoints, &w.TotalEarnings, &w.SessionsCompleted, &w.TotalStudyTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	w.RewardsRedeemed, err = s.listRedemptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetOrCreate materialises a zeroed wallet on first access.
func (s *WalletStore) GetOrCreate(ctx context.Context, userID string) (*model.Wallet, error) {
	if err := s.ensure(ctx, userID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *WalletStore) ensure(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO wallets (user_id) VALUES (?) ON CONFLICT(user_id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}
	return nil
}

// AddSession credits a finished timer session to the wallet, creating it if needed.
func (s *WalletStore) AddSession(ctx context.Context, userID string, points, seconds int) (*model.Wallet, error) {
	if err := s.ensure(ctx, userID); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE wallets SET
		   total_points = total_points + ?,
		   sessions_completed = sessions_completed + 1,
		   total_study_time = total_study_time + ?
		 WHERE user_id = ?`,
		points, seconds, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("credit wallet: %w", err)
	}
	return s.Get(ctx, userID)
}

// Redeem spends points for a monetary amount. It returns ErrNotFound when the
// user has no wallet and ErrInsufficientPoints, leaving the wallet untouched,
// when the balance is too low.
func (s *WalletStore) Redeem(ctx context.Context, userID string, r model.Redemption) (*model.Redemption, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE wallets SET
		   total_points = total_points - ?,
		   total_earnings = total_earnings + ?
		 WHERE user_id = ? AND total_points >= ?`,
		r.Points, r.Amount, userID, r.Points,
	)
	if err != nil {
		return nil, fmt.Errorf("debit wallet: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM wallets WHERE user_id = ?)`, userID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check wallet: %w", err)
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrInsufficientPoints
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_redemptions (id, user_id, points, amount, redeemed_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, userID, r.Points, r.Amount, r.RedeemedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert redemption: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit redemption: %w", err)
	}
	return &r, nil
}

func (s *WalletStore) listRedemptions(ctx context.Context, userID string) ([]model.Redemption, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, points, amount, redeemed_at FROM wallet_redemptions WHERE user_id = ? ORDER BY rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	defer rows.Close()

	redemptions := []model.Redemption{}
	for rows.Next() {
		var r model.Redemption
		if err := rows.Scan(&r.ID, &r.Points, &r.Amount, &r.RedeemedAt); err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		redemptions = append(redemptions, r)
	}
	return redemptions, rows.Err()
}
