package round

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

const (
	// pollInterval bounds how late a transition can be observed. Ticks are
	// still emitted at most once per remaining second.
	pollInterval = 200 * time.Millisecond

	// Resolution retry backoff bounds. A period stays queued until Resolve
	// succeeds; attempts are spaced out so a dead store is not hammered.
	resolveRetryBase = time.Second
	resolveRetryMax  = 30 * time.Second
)

// Emitter accepts lifecycle events for ordered, deduplicated fan-out.
type Emitter interface {
	Emit(ctx context.Context, ev domain.LifecycleEvent) error
}

// Resolver resolves a closed period: outcome selection followed by
// settlement. It must be idempotent per period, as every replica's scheduler
// calls it and failed attempts are retried.
type Resolver interface {
	Resolve(ctx context.Context, period domain.Period) (domain.SettlementReport, error)
}

// Track is one scheduled round lane with its game-specific parameters.
type Track struct {
	Key           domain.PeriodKey
	CutoffSeconds int
}

// Scheduler drives the round lifecycle for a set of tracks. Multiple
// replicas may run the same tracks concurrently; duplicate events are
// suppressed by the emitter and duplicate resolution by the resolver's
// idempotency claim.
type Scheduler struct {
	tracks         []Track
	emitter        Emitter
	resolver       Resolver
	resolveTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// NewScheduler creates a Scheduler. resolveTimeout bounds a single
// resolution attempt; a period whose attempt fails or times out stays queued
// and is retried with backoff until it resolves.
func NewScheduler(tracks []Track, emitter Emitter, resolver Resolver, resolveTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		tracks:         tracks,
		emitter:        emitter,
		resolver:       resolver,
		resolveTimeout: resolveTimeout,
		logger:         logger.With(slog.String("component", "scheduler")),
		now:            time.Now,
	}
}

// Run starts one goroutine per track and blocks until the context is
// cancelled or a track loop fails unrecoverably.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, tr := range s.tracks {
		g.Go(func() error {
			err := s.runTrack(ctx, tr)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("track %s: %w", tr.Key, err)
		})
	}
	return g.Wait()
}

// pendingResolve is a closed period awaiting successful resolution. It
// leaves the track's queue only when Resolve returns without error.
type pendingResolve struct {
	period      domain.Period
	attempts    int
	nextAttempt time.Time
	inFlight    bool
}

// resolveOutcome carries one attempt's result back to the track loop.
type resolveOutcome struct {
	period domain.Period
	report domain.SettlementReport
	err    error
}

// runTrack is the per-track loop: derive the current period from the clock,
// emit start/tick/bettingClosed as the countdown advances, and on rollover
// emit the outgoing period's finalZero before the incoming start. Outgoing
// periods are queued for resolution and retried with bounded backoff until
// they resolve, so a transient store outage or a held claim never abandons a
// round.
func (s *Scheduler) runTrack(ctx context.Context, tr Track) error {
	logger := s.logger.With(slog.String("track", tr.Key.String()))
	logger.InfoContext(ctx, "track loop starting",
		slog.Int("duration", tr.Key.Duration),
		slog.Int("cutoff", tr.CutoffSeconds),
	)

	var (
		cur      domain.Period
		lastTick = -1
		closed   bool
	)
	pending := make(map[string]*pendingResolve)
	resolved := make(chan resolveOutcome, 16)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		now := s.now().UTC()
		p := PeriodAt(tr.Key, now)

		if p.ID != cur.ID {
			if cur.ID != "" {
				// Rollover: the outgoing finalZero must precede the incoming
				// start even when both become ready in the same poll.
				s.emit(ctx, domain.LifecycleEvent{
					Type: domain.EventFinalZero, Key: tr.Key, PeriodID: cur.ID,
				})
				pending[cur.ID] = &pendingResolve{period: cur, nextAttempt: now}
			} else {
				// First poll after startup. A restart spanning a rollover
				// leaves the prior period unresolved; queue it so its bets
				// are never stranded. The resolver's idempotency makes this
				// a no-op when another replica already settled it.
				prev := PeriodAt(tr.Key, p.Start.Add(-time.Second))
				if prev.ID != p.ID {
					pending[prev.ID] = &pendingResolve{period: prev, nextAttempt: now}
				}
			}
			cur, lastTick, closed = p, -1, false
			s.emit(ctx, domain.LifecycleEvent{
				Type: domain.EventStart, Key: tr.Key, PeriodID: p.ID,
				Payload: map[string]any{
					"endTime":  p.End.Format(time.RFC3339),
					"duration": tr.Key.Duration,
				},
			})
		}

		rem := cur.Remaining(now)
		if rem > 0 && rem != lastTick {
			lastTick = rem
			s.emit(ctx, domain.LifecycleEvent{
				Type: domain.EventTick, Key: tr.Key, PeriodID: cur.ID, Remaining: rem,
			})
		}
		if rem > 0 && rem <= tr.CutoffSeconds && !closed {
			closed = true
			s.emit(ctx, domain.LifecycleEvent{
				Type: domain.EventBettingClosed, Key: tr.Key, PeriodID: cur.ID,
				Remaining: rem,
			})
		}

		s.collectResolved(ctx, resolved, pending, now, logger)
		s.launchDue(ctx, pending, resolved, now)
	}
}

// collectResolved drains finished attempts without blocking the tick loop.
// Successful periods leave the queue and publish their result; failed ones
// are rescheduled with backoff.
func (s *Scheduler) collectResolved(ctx context.Context, resolved <-chan resolveOutcome, pending map[string]*pendingResolve, now time.Time, logger *slog.Logger) {
	for {
		select {
		case out := <-resolved:
			pr, ok := pending[out.period.ID]
			if !ok {
				continue
			}
			if out.err != nil {
				pr.inFlight = false
				pr.attempts++
				pr.nextAttempt = now.Add(resolveBackoff(pr.attempts))
				if errors.Is(out.err, domain.ErrLockHeld) {
					logger.DebugContext(ctx, "period claimed by another replica, will retry",
						slog.String("period", out.period.ID),
						slog.Int("attempts", pr.attempts),
					)
				} else {
					logger.ErrorContext(ctx, "period resolution failed, will retry",
						slog.String("period", out.period.ID),
						slog.Int("attempts", pr.attempts),
						slog.String("error", out.err.Error()),
					)
				}
				continue
			}

			delete(pending, out.period.ID)
			if out.report.AlreadyDone {
				logger.DebugContext(ctx, "period resolved by another replica",
					slog.String("period", out.period.ID),
				)
			}
			s.emit(ctx, domain.LifecycleEvent{
				Type: domain.EventResult, Key: out.period.Key, PeriodID: out.period.ID,
				Payload: map[string]any{
					"outcome":    string(out.report.Outcome),
					"sourceMode": string(out.report.SourceMode),
				},
			})
		default:
			return
		}
	}
}

// launchDue starts one attempt per queued period whose backoff has elapsed.
// Attempts run off the tick loop so a slow store never delays the countdown.
func (s *Scheduler) launchDue(ctx context.Context, pending map[string]*pendingResolve, resolved chan<- resolveOutcome, now time.Time) {
	for _, pr := range pending {
		if pr.inFlight || now.Before(pr.nextAttempt) {
			continue
		}
		pr.inFlight = true
		go s.attemptResolve(ctx, pr.period, resolved)
	}
}

// attemptResolve runs one bounded resolution attempt and reports back.
func (s *Scheduler) attemptResolve(ctx context.Context, p domain.Period, resolved chan<- resolveOutcome) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.resolveTimeout)
	defer cancel()

	report, err := s.resolver.Resolve(rctx, p)

	select {
	case resolved <- resolveOutcome{period: p, report: report, err: err}:
	case <-ctx.Done():
	}
}

// resolveBackoff doubles the delay per failed attempt, bounded by
// resolveRetryMax.
func resolveBackoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := resolveRetryBase << uint(attempts-1)
	if d <= 0 || d > resolveRetryMax {
		return resolveRetryMax
	}
	return d
}

func (s *Scheduler) emit(ctx context.Context, ev domain.LifecycleEvent) {
	if err := s.emitter.Emit(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "emit failed",
			slog.String("event", string(ev.Type)),
			slog.String("period", ev.PeriodID),
			slog.String("error", err.Error()),
		)
	}
}
