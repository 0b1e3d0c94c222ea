package round

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// fakeClock advances one step per observation, so each scheduler poll moves
// track time forward a full second regardless of the real poll cadence.
type fakeClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []domain.LifecycleEvent
}

func (r *recordingEmitter) Emit(_ context.Context, ev domain.LifecycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingEmitter) snapshot() []domain.LifecycleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.LifecycleEvent, len(r.events))
	copy(out, r.events)
	return out
}

// indexOf returns the position of the first matching event, or -1.
func indexOf(events []domain.LifecycleEvent, typ domain.EventType, periodID string) int {
	for i, ev := range events {
		if ev.Type == typ && ev.PeriodID == periodID {
			return i
		}
	}
	return -1
}

type countingResolver struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (f *countingResolver) Resolve(_ context.Context, p domain.Period) (domain.SettlementReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[p.ID]++
	if f.err != nil {
		return domain.SettlementReport{}, f.err
	}
	return domain.SettlementReport{
		Key:        p.Key,
		PeriodID:   p.ID,
		Outcome:    "7",
		SourceMode: domain.SourceRandom,
	}, nil
}

func (f *countingResolver) callsFor(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

var testTrack = Track{
	Key:           domain.PeriodKey{Game: domain.GameWingo, Duration: 3, Timeline: "default"},
	CutoffSeconds: 1,
}

// newTestScheduler builds a one-track scheduler whose clock starts exactly on
// a period boundary and advances one second per poll.
func newTestScheduler(emitter Emitter, resolver Resolver) (*Scheduler, *fakeClock) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewScheduler([]Track{testTrack}, emitter, resolver, 5*time.Second, logger)
	clock := &fakeClock{
		t:    time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
		step: time.Second,
	}
	s.now = clock.now
	return s, clock
}

func runFor(t *testing.T, s *Scheduler, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, s.Run(ctx))
}

func TestTrackLifecycleOrdering(t *testing.T) {
	emitter := &recordingEmitter{}
	resolver := &countingResolver{}
	s, _ := newTestScheduler(emitter, resolver)

	runFor(t, s, 1500*time.Millisecond)

	events := emitter.snapshot()
	first := PeriodAt(testTrack.Key, time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	second := Next(first)

	startA := indexOf(events, domain.EventStart, first.ID)
	finalA := indexOf(events, domain.EventFinalZero, first.ID)
	startB := indexOf(events, domain.EventStart, second.ID)
	require.GreaterOrEqual(t, startA, 0, "first period start missing")
	require.GreaterOrEqual(t, finalA, 0, "first period finalZero missing")
	require.GreaterOrEqual(t, startB, 0, "second period start missing")

	// The outgoing finalZero precedes the incoming start on rollover.
	assert.Less(t, finalA, startB)

	// Betting closes inside the cutoff window, after the start.
	closedA := indexOf(events, domain.EventBettingClosed, first.ID)
	require.GreaterOrEqual(t, closedA, 0, "bettingClosed missing")
	assert.Greater(t, closedA, startA)
	closedEv := events[closedA]
	assert.LessOrEqual(t, closedEv.Remaining, testTrack.CutoffSeconds)
}

func TestTrackResolvesRolledOverPeriod(t *testing.T) {
	emitter := &recordingEmitter{}
	resolver := &countingResolver{}
	s, _ := newTestScheduler(emitter, resolver)

	runFor(t, s, 1800*time.Millisecond)

	first := PeriodAt(testTrack.Key, time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	assert.GreaterOrEqual(t, resolver.callsFor(first.ID), 1)

	events := emitter.snapshot()
	resultA := indexOf(events, domain.EventResult, first.ID)
	require.GreaterOrEqual(t, resultA, 0, "result event missing")
	assert.Equal(t, "7", events[resultA].Payload["outcome"])
}

func TestTrackRetriesFailedResolution(t *testing.T) {
	emitter := &recordingEmitter{}
	resolver := &countingResolver{err: errors.New("store down")}
	s, _ := newTestScheduler(emitter, resolver)

	// The first period rolls over after three polls; with every attempt
	// failing, the period must stay queued and be re-attempted after backoff
	// rather than abandoned.
	runFor(t, s, 3*time.Second)

	first := PeriodAt(testTrack.Key, time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	assert.GreaterOrEqual(t, resolver.callsFor(first.ID), 2,
		"failed resolution was not retried")

	events := emitter.snapshot()
	assert.Equal(t, -1, indexOf(events, domain.EventResult, first.ID),
		"no result may be published while resolution keeps failing")
}

func TestTrackRetriesHeldClaim(t *testing.T) {
	emitter := &recordingEmitter{}
	resolver := &countingResolver{err: domain.ErrLockHeld}
	s, _ := newTestScheduler(emitter, resolver)

	runFor(t, s, 3*time.Second)

	first := PeriodAt(testTrack.Key, time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	assert.GreaterOrEqual(t, resolver.callsFor(first.ID), 2,
		"held claim must be retried, not abandoned")
}

func TestTrackStartupCatchUp(t *testing.T) {
	emitter := &recordingEmitter{}
	resolver := &countingResolver{}
	s, _ := newTestScheduler(emitter, resolver)

	runFor(t, s, 900*time.Millisecond)

	// The period that ended at the clock's starting instant is queued on the
	// first poll, covering a restart that spanned its rollover.
	prev := PeriodAt(testTrack.Key, time.Date(2026, 8, 28, 9, 59, 59, 0, time.UTC))
	assert.GreaterOrEqual(t, resolver.callsFor(prev.ID), 1,
		"period preceding startup was not resolved")
}

func TestResolveBackoffBounds(t *testing.T) {
	assert.Equal(t, resolveRetryBase, resolveBackoff(1))
	assert.Equal(t, 2*resolveRetryBase, resolveBackoff(2))
	assert.Equal(t, resolveRetryMax, resolveBackoff(40))
	assert.Equal(t, resolveRetryBase, resolveBackoff(0))
}
