package domain

import (
	"fmt"
	"time"
)

// GameType identifies one of the supported parametric games.
type GameType string

const (
	GameWingo  GameType = "wingo"  // 10-symbol wheel
	GameK3     GameType = "k3"     // three dice
	GameFiveD  GameType = "fived"  // five digits
	GameTrxWin GameType = "trxwin" // hashed-result wheel variant
)

// PeriodStatus represents the lifecycle state of a betting period.
type PeriodStatus string

const (
	PeriodScheduled PeriodStatus = "scheduled"
	PeriodOpen      PeriodStatus = "open"
	PeriodClosing   PeriodStatus = "closing"
	PeriodClosed    PeriodStatus = "closed"
	PeriodResolved  PeriodStatus = "resolved"
)

// PeriodKey identifies one parallel round track: a game played at a fixed
// duration on a named timeline. Most deployments run a single "default"
// timeline per (game, duration) pair.
type PeriodKey struct {
	Game     GameType
	Duration int // seconds
	Timeline string
}

// String returns the canonical "game:duration:timeline" form used as a
// storage key prefix and event channel suffix.
func (k PeriodKey) String() string {
	return fmt.Sprintf("%s:%d:%s", k.Game, k.Duration, k.Timeline)
}

// Period is one fixed-duration betting round. ID, Start and End are pure
// functions of wall-clock time and the key's duration; Status is derived from
// the remaining time except for the final closed -> resolved transition,
// which is owned by the settlement processor.
type Period struct {
	Key    PeriodKey
	ID     string
	Start  time.Time
	End    time.Time
	Status PeriodStatus
}

// Remaining returns the seconds left until the period ends, clamped at zero.
func (p Period) Remaining(now time.Time) int {
	rem := p.End.Sub(now)
	if rem <= 0 {
		return 0
	}
	// Round up so a period with 100ms left still reports 1 remaining second.
	return int((rem + time.Second - 1) / time.Second)
}
