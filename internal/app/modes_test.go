package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/notify"
)

type stubResolver struct {
	report domain.SettlementReport
	err    error
}

func (s stubResolver) Resolve(context.Context, domain.Period) (domain.SettlementReport, error) {
	return s.report, s.err
}

type recordingNotifier struct {
	alerts []notify.Alert
}

func (r *recordingNotifier) Notify(_ context.Context, alert notify.Alert) error {
	r.alerts = append(r.alerts, alert)
	return nil
}

func testPeriod() domain.Period {
	return domain.Period{
		Key: domain.PeriodKey{Game: domain.GameWingo, Duration: 60, Timeline: "default"},
		ID:  "2026082800000630",
	}
}

func newNotifyingResolver(inner stubResolver, n *recordingNotifier) *notifyingResolver {
	return &notifyingResolver{
		inner:    inner,
		notifier: n,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestNotifyingResolverAlertsOnFailure(t *testing.T) {
	n := &recordingNotifier{}
	r := newNotifyingResolver(stubResolver{err: errors.New("postgres down")}, n)

	_, err := r.Resolve(context.Background(), testPeriod())
	require.Error(t, err)

	require.Len(t, n.alerts, 1)
	assert.Equal(t, "settlement_failed", n.alerts[0].Event)
	assert.Equal(t, "wingo:60:default", n.alerts[0].Track)
	assert.Equal(t, "2026082800000630", n.alerts[0].PeriodID)
}

func TestNotifyingResolverSkipsHeldClaim(t *testing.T) {
	n := &recordingNotifier{}
	r := newNotifyingResolver(stubResolver{err: domain.ErrLockHeld}, n)

	// Another replica holding the claim is suppressed duplicate work, not an
	// incident; the error still propagates so the scheduler retries.
	_, err := r.Resolve(context.Background(), testPeriod())
	require.ErrorIs(t, err, domain.ErrLockHeld)
	assert.Empty(t, n.alerts)
}

func TestNotifyingResolverQuietOnSuccess(t *testing.T) {
	n := &recordingNotifier{}
	r := newNotifyingResolver(stubResolver{report: domain.SettlementReport{Outcome: "4"}}, n)

	report, err := r.Resolve(context.Background(), testPeriod())
	require.NoError(t, err)
	assert.Equal(t, domain.Outcome("4"), report.Outcome)
	assert.Empty(t, n.alerts)
}
