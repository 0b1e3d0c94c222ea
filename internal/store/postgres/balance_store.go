package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// BalanceStore implements domain.BalanceStore against the accounts table.
// Settlement normally credits balances inside the same transaction as the bet
// updates (see BetStore.SettleBatch); this store serves direct adjustments
// and read paths.
type BalanceStore struct {
	pool *pgxpool.Pool
}

// NewBalanceStore creates a BalanceStore backed by the given connection pool.
func NewBalanceStore(pool *pgxpool.Pool) *BalanceStore {
	return &BalanceStore{pool: pool}
}

// Credit adds amount (minor units) to the user's balance, creating the
// account row if it does not exist yet.
func (s *BalanceStore) Credit(ctx context.Context, userID string, amount int64) error {
	const query = `
		INSERT INTO accounts (user_id, balance, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET balance = accounts.balance + EXCLUDED.balance, updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, userID, amount); err != nil {
		return fmt.Errorf("postgres: credit account %s: %w", userID, err)
	}
	return nil
}

// Get returns the user's current balance, or domain.ErrNotFound when the
// account has never been credited.
func (s *BalanceStore) Get(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := s.pool.QueryRow(ctx, `SELECT balance FROM accounts WHERE user_id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("postgres: get balance %s: %w", userID, err)
	}
	return balance, nil
}

// Compile-time interface check.
var _ domain.BalanceStore = (*BalanceStore)(nil)
