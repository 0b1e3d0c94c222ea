package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// Narrow store surfaces required by the archiver. The Postgres stores
// satisfy these implicitly.

// BetArchiveStore provides the settled-bet rows eligible for cold storage.
type BetArchiveStore interface {
	ListSettledBefore(ctx context.Context, before time.Time) ([]domain.Bet, error)
	DeleteSettledBefore(ctx context.Context, before time.Time) (int64, error)
}

// ResultArchiveStore provides the result rows eligible for cold storage.
type ResultArchiveStore interface {
	ListBefore(ctx context.Context, before time.Time) ([]domain.Result, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// Archiver serializes settled bets and period results older than the
// retention window to JSONL and uploads them to the object store. When Prune
// is set the archived rows are deleted from the primary store after a
// successful upload, never before.
type Archiver struct {
	writer    domain.BlobWriter
	bets      BetArchiveStore
	results   ResultArchiveStore
	retention time.Duration
	prune     bool
	logger    *slog.Logger
	now       func() time.Time
}

// Config controls the archiver's retention window and pruning behavior.
type Config struct {
	Retention time.Duration // rows older than now-Retention are archived
	Prune     bool          // delete archived rows from the primary store
}

// NewArchiver creates an Archiver.
func NewArchiver(writer domain.BlobWriter, bets BetArchiveStore, results ResultArchiveStore, cfg Config, logger *slog.Logger) *Archiver {
	retention := cfg.Retention
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &Archiver{
		writer:    writer,
		bets:      bets,
		results:   results,
		retention: retention,
		prune:     cfg.Prune,
		logger:    logger.With("component", "archiver"),
		now:       time.Now,
	}
}

// Run performs one archive pass per interval until the context is cancelled.
func (a *Archiver) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.ArchiveAll(ctx); err != nil {
				a.logger.Error("archive pass failed", "error", err)
			}
		}
	}
}

// ArchiveAll archives bets and results older than the retention window.
func (a *Archiver) ArchiveAll(ctx context.Context) error {
	before := a.now().Add(-a.retention)

	betCount, err := a.ArchiveBets(ctx, before)
	if err != nil {
		return err
	}
	resultCount, err := a.ArchiveResults(ctx, before)
	if err != nil {
		return err
	}

	if betCount > 0 || resultCount > 0 {
		a.logger.Info("archive pass complete",
			"before", before.Format(time.RFC3339),
			"bets", betCount, "results", resultCount, "pruned", a.prune)
	}
	return nil
}

// ArchiveBets uploads settled bets older than the cutoff to
// archive/bets/YYYY-MM.jsonl and returns the count archived.
func (a *Archiver) ArchiveBets(ctx context.Context, before time.Time) (int64, error) {
	bets, err := a.bets.ListSettledBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive bets query: %w", err)
	}
	if len(bets) == 0 {
		return 0, nil
	}

	records := make([]map[string]any, 0, len(bets))
	for _, b := range bets {
		records = append(records, map[string]any{
			"id":        b.ID,
			"userId":    b.UserID,
			"track":     b.Key.String(),
			"periodId":  b.PeriodID,
			"predicate": b.Predicate.Key(),
			"gross":     b.GrossAmount,
			"fee":       b.PlatformFee,
			"net":       b.NetAmount,
			"odds":      b.Odds.String(),
			"status":    string(b.Status),
			"payout":    b.Payout,
			"placedAt":  b.PlacedAt,
			"settledAt": b.SettledAt,
		})
	}

	if err := a.upload(ctx, archivePath("bets", before), records); err != nil {
		return 0, err
	}

	if a.prune {
		if _, err := a.bets.DeleteSettledBefore(ctx, before); err != nil {
			return int64(len(bets)), fmt.Errorf("s3blob: prune bets: %w", err)
		}
	}
	return int64(len(bets)), nil
}

// ArchiveResults uploads results older than the cutoff to
// archive/results/YYYY-MM.jsonl and returns the count archived.
func (a *Archiver) ArchiveResults(ctx context.Context, before time.Time) (int64, error) {
	results, err := a.results.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive results query: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}

	records := make([]map[string]any, 0, len(results))
	for _, r := range results {
		records = append(records, map[string]any{
			"track":      r.Key.String(),
			"periodId":   r.PeriodID,
			"outcome":    string(r.Outcome),
			"sourceMode": string(r.SourceMode),
			"proof":      r.Proof,
			"chosenAt":   r.ChosenAt,
		})
	}

	if err := a.upload(ctx, archivePath("results", before), records); err != nil {
		return 0, err
	}

	if a.prune {
		if _, err := a.results.DeleteBefore(ctx, before); err != nil {
			return int64(len(results)), fmt.Errorf("s3blob: prune results: %w", err)
		}
	}
	return int64(len(results)), nil
}

// upload serializes the records as JSONL and writes them to the object
// store, switching to a multipart upload for large payloads.
func (a *Archiver) upload(ctx context.Context, path string, records []map[string]any) error {
	buf, err := marshalJSONL(records)
	if err != nil {
		return fmt.Errorf("s3blob: archive marshal %s: %w", path, err)
	}

	if int64(len(buf)) >= minPartSize {
		if err := a.writer.PutMultipart(ctx, path, bytes.NewReader(buf), minPartSize); err != nil {
			return fmt.Errorf("s3blob: archive upload %s: %w", path, err)
		}
		return nil
	}
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return fmt.Errorf("s3blob: archive upload %s: %w", path, err)
	}
	return nil
}

// archivePath builds the object key for an archive file, partitioned by the
// year-month of the cutoff time.
//
//	archive/bets/2026-07.jsonl
//	archive/results/2026-07.jsonl
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.Format("2006-01"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
