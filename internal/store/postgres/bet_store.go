package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// BetStore implements domain.BetStore using PostgreSQL.
type BetStore struct {
	pool *pgxpool.Pool
}

// NewBetStore creates a BetStore backed by the given connection pool.
func NewBetStore(pool *pgxpool.Pool) *BetStore {
	return &BetStore{pool: pool}
}

const betSelectCols = `id, user_id, game_type, duration, timeline, period_id,
	predicate, gross_amount, platform_fee, net_amount, odds, status, payout,
	placed_at, settled_at`

func scanBetRows(rows pgx.Rows) ([]domain.Bet, error) {
	var bets []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

func scanBet(row pgx.Row) (domain.Bet, error) {
	var (
		b         domain.Bet
		predicate string
		oddsStr   string
	)
	if err := row.Scan(
		&b.ID, &b.UserID, &b.Key.Game, &b.Key.Duration, &b.Key.Timeline,
		&b.PeriodID, &predicate, &b.GrossAmount, &b.PlatformFee, &b.NetAmount,
		&oddsStr, &b.Status, &b.Payout, &b.PlacedAt, &b.SettledAt,
	); err != nil {
		return domain.Bet{}, err
	}

	pred, err := domain.ParsePredicate(predicate)
	if err != nil {
		return domain.Bet{}, err
	}
	b.Predicate = pred

	odds, err := decimal.NewFromString(oddsStr)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("parse odds %q: %w", oddsStr, err)
	}
	b.Odds = odds

	return b, nil
}

// Create inserts a new pending bet.
func (s *BetStore) Create(ctx context.Context, bet domain.Bet) error {
	const query = `
		INSERT INTO bets (
			id, user_id, game_type, duration, timeline, period_id,
			predicate, gross_amount, platform_fee, net_amount, odds,
			status, payout, placed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14
		)`

	_, err := s.pool.Exec(ctx, query,
		bet.ID, bet.UserID, bet.Key.Game, bet.Key.Duration, bet.Key.Timeline,
		bet.PeriodID, bet.Predicate.Key(), bet.GrossAmount, bet.PlatformFee,
		bet.NetAmount, bet.Odds.String(), bet.Status, bet.Payout, bet.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create bet %s: %w", bet.ID, err)
	}
	return nil
}

// GetByID returns one bet by its identifier.
func (s *BetStore) GetByID(ctx context.Context, id string) (domain.Bet, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+betSelectCols+` FROM bets WHERE id = $1`, id)

	b, err := scanBet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Bet{}, domain.ErrNotFound
		}
		return domain.Bet{}, fmt.Errorf("postgres: get bet %s: %w", id, err)
	}
	return b, nil
}

// ListPending returns all pending bets on a period, oldest first.
func (s *BetStore) ListPending(ctx context.Context, key domain.PeriodKey, periodID string) ([]domain.Bet, error) {
	const query = `SELECT ` + betSelectCols + ` FROM bets
		WHERE game_type = $1 AND duration = $2 AND timeline = $3
		  AND period_id = $4 AND status = 'pending'
		ORDER BY placed_at ASC`

	rows, err := s.pool.Query(ctx, query, key.Game, key.Duration, key.Timeline, periodID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list pending bets %s/%s: %w", key, periodID, err)
	}
	defer rows.Close()

	bets, err := scanBetRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan pending bets %s/%s: %w", key, periodID, err)
	}
	return bets, nil
}

// SettleBatch applies one settlement pass inside a single transaction. Each
// bet transitions out of pending via a guarded update, so re-running the pass
// after a crash or a replica race never double-applies: rows already settled
// match zero rows and their payout is not credited again.
func (s *BetStore) SettleBatch(ctx context.Context, settled []domain.SettledBet) (int, error) {
	if len(settled) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: settle batch begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const updateBet = `
		UPDATE bets SET status = $2, payout = $3, settled_at = NOW()
		WHERE id = $1 AND status = 'pending'`
	const creditAccount = `
		INSERT INTO accounts (user_id, balance, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET balance = accounts.balance + EXCLUDED.balance, updated_at = NOW()`

	applied := 0
	for _, sb := range settled {
		tag, err := tx.Exec(ctx, updateBet, sb.BetID, sb.Status, sb.Payout)
		if err != nil {
			return 0, fmt.Errorf("postgres: settle bet %s: %w", sb.BetID, err)
		}
		if tag.RowsAffected() == 0 {
			continue // already settled by a previous pass
		}
		applied++

		if sb.Status == domain.BetWon && sb.Payout > 0 {
			if _, err := tx.Exec(ctx, creditAccount, sb.UserID, sb.Payout); err != nil {
				return 0, fmt.Errorf("postgres: credit user %s for bet %s: %w", sb.UserID, sb.BetID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: settle batch commit: %w", err)
	}
	return applied, nil
}

// ListSettledBefore returns settled bets older than the given horizon (for
// archiving).
func (s *BetStore) ListSettledBefore(ctx context.Context, before time.Time) ([]domain.Bet, error) {
	const query = `SELECT ` + betSelectCols + ` FROM bets
		WHERE status <> 'pending' AND settled_at < $1
		ORDER BY settled_at ASC`

	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list settled bets before: %w", err)
	}
	defer rows.Close()
	return scanBetRows(rows)
}

// DeleteSettledBefore deletes settled bets older than the given horizon.
// Returns the number deleted.
func (s *BetStore) DeleteSettledBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM bets WHERE status <> 'pending' AND settled_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete settled bets before: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.BetStore = (*BetStore)(nil)
