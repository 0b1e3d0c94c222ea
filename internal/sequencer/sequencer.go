// Package sequencer orders and deduplicates round lifecycle events before
// they reach the fan-out bus. Per period it enforces the rank ordering
// start < tick < bettingClosed < finalZero < result, suppresses duplicates
// both locally and across processes, and expires its bookkeeping so memory
// stays bounded as periods roll over.
package sequencer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// DefaultTTL is how long dedup and ordering state for a period is retained.
// It must comfortably exceed the longest track duration.
const DefaultTTL = 15 * time.Minute

// seqLockTTL bounds the per-period sequence lock held around a start
// emission. It only needs to cover one publish round-trip.
const seqLockTTL = 3 * time.Second

// Sequencer guards the event stream. Safe for concurrent use.
type Sequencer struct {
	bus    domain.SignalBus
	guard  domain.EventDedup
	locks  domain.LockManager
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	seen  map[string]time.Time // dedup key -> first emission
	ranks map[string]rankState // key:periodID -> highest emitted rank
}

type rankState struct {
	rank int
	at   time.Time
}

// New creates a Sequencer publishing to bus. guard is the cross-process
// duplicate claim and locks holds the per-period sequence lock around start
// emissions; pass nil for either in single-process deployments. A
// non-positive ttl uses DefaultTTL.
func New(bus domain.SignalBus, guard domain.EventDedup, locks domain.LockManager, ttl time.Duration, logger *slog.Logger) *Sequencer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Sequencer{
		bus:    bus,
		guard:  guard,
		locks:  locks,
		ttl:    ttl,
		logger: logger.With("component", "sequencer"),
		now:    time.Now,
		seen:   make(map[string]time.Time),
		ranks:  make(map[string]rankState),
	}
}

// Emit publishes the event unless it is a duplicate or arrives out of order.
// Dropped events are not an error; the stream observers see is exactly the
// deduplicated, ordered sequence. An event arriving for a period whose start
// was never emitted synthesizes that start first, so observers never see a
// period open mid-countdown.
func (s *Sequencer) Emit(ctx context.Context, ev domain.LifecycleEvent) error {
	if ev.Type != domain.EventStart && s.startMissing(ev) {
		synth := domain.LifecycleEvent{
			Type: domain.EventStart, Key: ev.Key, PeriodID: ev.PeriodID,
		}
		if err := s.Emit(ctx, synth); err != nil {
			s.logger.Warn("synthesized start emission failed",
				"dedupKey", synth.DedupKey(), "error", err)
		}
	}

	if !s.admit(ev) {
		return nil
	}

	if ev.Type == domain.EventStart && s.locks != nil {
		unlock, err := s.locks.Acquire(ctx, "seq:"+ev.Key.String()+":"+ev.PeriodID, seqLockTTL)
		switch {
		case errors.Is(err, domain.ErrLockHeld):
			// Another replica is emitting this start. Local rank state is
			// already recorded, so this replica's ticks still follow it.
			return nil
		case err != nil:
			s.logger.Warn("sequence lock unreachable",
				"dedupKey", ev.DedupKey(), "error", err)
		default:
			defer unlock()
		}
	}

	if s.guard != nil {
		ok, err := s.guard.Claim(ctx, ev.DedupKey(), s.ttl)
		if err != nil {
			// Cross-process guard is best effort: local suppression already
			// passed, and observers tolerate at-least-once delivery.
			s.logger.Warn("event dedup guard unreachable",
				"dedupKey", ev.DedupKey(), "error", err)
		} else if !ok {
			return nil
		}
	}

	ev.EmittedAt = s.now().UTC()
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("sequencer: marshal %s: %w", ev.DedupKey(), err)
	}
	if err := s.bus.Publish(ctx, ev.Channel(), payload); err != nil {
		return fmt.Errorf("sequencer: publish %s: %w", ev.DedupKey(), err)
	}
	return nil
}

// startMissing reports whether the event's period has no live ordering
// state, i.e. no start has been admitted for it yet.
func (s *Sequencer) startMissing(ev domain.LifecycleEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.ranks[ev.Key.String()+":"+ev.PeriodID]
	return !ok || s.now().Sub(st.at) >= s.ttl
}

// admit applies local ordering and duplicate suppression.
func (s *Sequencer) admit(ev domain.LifecycleEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	periodKey := ev.Key.String() + ":" + ev.PeriodID

	if st, ok := s.ranks[periodKey]; ok && now.Sub(st.at) < s.ttl {
		// Ticks share one rank and repeat; any other type regressing below
		// the highest rank already emitted is a stale replay.
		if ev.Rank() < st.rank || (ev.Rank() == st.rank && ev.Type != domain.EventTick) {
			s.logger.Debug("dropping out-of-order event",
				"dedupKey", ev.DedupKey(), "rank", ev.Rank(), "emittedRank", st.rank)
			return false
		}
	}

	dk := ev.DedupKey()
	if first, ok := s.seen[dk]; ok && now.Sub(first) < s.ttl {
		return false
	}

	s.seen[dk] = now
	s.ranks[periodKey] = rankState{rank: ev.Rank(), at: now}
	return true
}

// Run expires bookkeeping periodically until the context is cancelled.
func (s *Sequencer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.ttl / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *Sequencer) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, ts := range s.seen {
		if now.Sub(ts) >= s.ttl {
			delete(s.seen, k)
		}
	}
	for k, st := range s.ranks {
		if now.Sub(st.at) >= s.ttl {
			delete(s.ranks, k)
		}
	}
}
