package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// ResultStore implements domain.ResultStore using PostgreSQL. The composite
// primary key on (game_type, duration, timeline, period_id) is what makes a
// second Result for the same period structurally impossible.
type ResultStore struct {
	pool *pgxpool.Pool
}

// NewResultStore creates a ResultStore backed by the given connection pool.
func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

const resultSelectCols = `game_type, duration, timeline, period_id, outcome,
	source_mode, proof, chosen_at`

func scanResult(row pgx.Row) (domain.Result, error) {
	var r domain.Result
	err := row.Scan(
		&r.Key.Game, &r.Key.Duration, &r.Key.Timeline, &r.PeriodID,
		&r.Outcome, &r.SourceMode, &r.Proof, &r.ChosenAt,
	)
	return r, err
}

// Create inserts the period's Result idempotently. When a row already exists
// the stored row is returned with created=false, so racing settlement
// replicas converge on one canonical outcome.
func (s *ResultStore) Create(ctx context.Context, r domain.Result) (bool, domain.Result, error) {
	const query = `
		INSERT INTO results (
			game_type, duration, timeline, period_id,
			outcome, source_mode, proof, chosen_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (game_type, duration, timeline, period_id) DO NOTHING`

	tag, err := s.pool.Exec(ctx, query,
		r.Key.Game, r.Key.Duration, r.Key.Timeline, r.PeriodID,
		r.Outcome, r.SourceMode, r.Proof, r.ChosenAt,
	)
	if err != nil {
		return false, domain.Result{}, fmt.Errorf("postgres: create result %s/%s: %w", r.Key, r.PeriodID, err)
	}

	if tag.RowsAffected() == 1 {
		return true, r, nil
	}

	canonical, err := s.Get(ctx, r.Key, r.PeriodID)
	if err != nil {
		return false, domain.Result{}, err
	}
	return false, canonical, nil
}

// Get returns the Result for a period, or domain.ErrNotFound.
func (s *ResultStore) Get(ctx context.Context, key domain.PeriodKey, periodID string) (domain.Result, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+resultSelectCols+` FROM results
		 WHERE game_type = $1 AND duration = $2 AND timeline = $3 AND period_id = $4`,
		key.Game, key.Duration, key.Timeline, periodID,
	)

	r, err := scanResult(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Result{}, domain.ErrNotFound
		}
		return domain.Result{}, fmt.Errorf("postgres: get result %s/%s: %w", key, periodID, err)
	}
	return r, nil
}

// ListRecent returns the most recent results for a track, newest first.
func (s *ResultStore) ListRecent(ctx context.Context, key domain.PeriodKey, limit int) ([]domain.Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+resultSelectCols+` FROM results
		 WHERE game_type = $1 AND duration = $2 AND timeline = $3
		 ORDER BY period_id DESC LIMIT $4`,
		key.Game, key.Duration, key.Timeline, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent results %s: %w", key, err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan results %s: %w", key, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListBefore returns all results chosen before the given time (for archiving).
func (s *ResultStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+resultSelectCols+` FROM results WHERE chosen_at < $1 ORDER BY chosen_at ASC`,
		before,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list results before: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// DeleteBefore deletes results chosen before the given time. Returns the
// number deleted.
func (s *ResultStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM results WHERE chosen_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete results before: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.ResultStore = (*ResultStore)(nil)
