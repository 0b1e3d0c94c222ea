package round

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

var testKey = domain.PeriodKey{Game: domain.GameWingo, Duration: 60, Timeline: "default"}

func TestPeriodAt(t *testing.T) {
	// 10:30:15 UTC is 37815 seconds into the day; with 60s rounds that is
	// sequence 630, starting 10:30:00.
	now := time.Date(2026, 8, 28, 10, 30, 15, 0, time.UTC)
	p := PeriodAt(testKey, now)

	assert.Equal(t, "2026082800000630", p.ID)
	assert.Equal(t, time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2026, 8, 28, 10, 31, 0, 0, time.UTC), p.End)
}

func TestPeriodAtMidnight(t *testing.T) {
	midnight := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	p := PeriodAt(testKey, midnight)
	assert.Equal(t, "2026082800000000", p.ID)
	assert.Equal(t, midnight, p.Start)
}

func TestPeriodAtIsReplicaIndependent(t *testing.T) {
	// Any instant inside a period maps to the same period.
	base := time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC)
	first := PeriodAt(testKey, base)
	for _, offset := range []time.Duration{0, time.Second, 30 * time.Second, 59*time.Second + 999*time.Millisecond} {
		p := PeriodAt(testKey, base.Add(offset))
		assert.Equal(t, first.ID, p.ID)
	}
}

func TestPeriodByIDRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 28, 23, 59, 59, 0, time.UTC)
	for _, dur := range []int{30, 60, 180, 300, 600} {
		key := domain.PeriodKey{Game: domain.GameK3, Duration: dur, Timeline: "default"}
		p := PeriodAt(key, now)

		got, err := PeriodByID(key, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Start, got.Start)
		assert.Equal(t, p.End, got.End)
	}
}

func TestPeriodByIDRejectsMalformed(t *testing.T) {
	for _, id := range []string{"", "20260828", "2026082800000", "2026082800000abc", "abcdefgh00000630"} {
		_, err := PeriodByID(testKey, id)
		assert.Errorf(t, err, "PeriodByID(%q)", id)
	}
}

func TestNextResetsAtDayBoundary(t *testing.T) {
	lastOfDay := PeriodAt(testKey, time.Date(2026, 8, 28, 23, 59, 30, 0, time.UTC))
	assert.Equal(t, "2026082800001439", lastOfDay.ID)

	next := Next(lastOfDay)
	assert.Equal(t, "2026082900000000", next.ID)
	assert.Equal(t, lastOfDay.End, next.Start)
}

func TestStatusAt(t *testing.T) {
	p := PeriodAt(testKey, time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC))
	cutoff := 5

	tests := []struct {
		at   time.Time
		want domain.PeriodStatus
	}{
		{p.Start.Add(-time.Second), domain.PeriodScheduled},
		{p.Start, domain.PeriodOpen},
		{p.End.Add(-10 * time.Second), domain.PeriodOpen},
		{p.End.Add(-5 * time.Second), domain.PeriodClosing},
		{p.End.Add(-time.Second), domain.PeriodClosing},
		{p.End, domain.PeriodClosed},
		{p.End.Add(time.Minute), domain.PeriodClosed},
	}
	for _, tt := range tests {
		got := StatusAt(p, cutoff, tt.at)
		assert.Equalf(t, tt.want, got, "StatusAt at %s", tt.at)
	}
}

func TestRemainingRoundsUp(t *testing.T) {
	p := PeriodAt(testKey, time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC))

	assert.Equal(t, 60, p.Remaining(p.Start))
	assert.Equal(t, 1, p.Remaining(p.End.Add(-100*time.Millisecond)))
	assert.Equal(t, 0, p.Remaining(p.End))
}
