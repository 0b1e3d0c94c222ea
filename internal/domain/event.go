package domain

import (
	"strconv"
	"time"
)

// EventType enumerates round lifecycle notifications. Within one period the
// sequencer guarantees the order start < tick* < bettingClosed < finalZero <
// result with no duplicates.
type EventType string

const (
	EventStart         EventType = "start"
	EventTick          EventType = "tick"
	EventBettingClosed EventType = "bettingClosed"
	EventFinalZero     EventType = "finalZero"
	EventResult        EventType = "result"
)

// rank orders event types within a period. Ticks repeat; everything else is
// emitted at most once.
var eventRank = map[EventType]int{
	EventStart:         0,
	EventTick:          1,
	EventBettingClosed: 2,
	EventFinalZero:     3,
	EventResult:        4,
}

// LifecycleEvent is one notification pushed to observers through the fan-out
// channel.
type LifecycleEvent struct {
	Type      EventType      `json:"type"`
	Key       PeriodKey      `json:"-"`
	PeriodID  string         `json:"periodId"`
	Remaining int            `json:"remaining,omitempty"` // seconds, tick/finalZero only
	Payload   map[string]any `json:"payload,omitempty"`
	EmittedAt time.Time      `json:"emittedAt"`
}

// Rank returns the event's position in the per-period ordering.
func (e LifecycleEvent) Rank() int {
	return eventRank[e.Type]
}

// DedupKey identifies an event for duplicate suppression. Ticks carry their
// remaining-seconds value so each countdown second is distinct while a
// re-emitted second is not.
func (e LifecycleEvent) DedupKey() string {
	k := e.Key.String() + ":" + e.PeriodID + ":" + string(e.Type)
	if e.Type == EventTick {
		k += ":" + strconv.Itoa(e.Remaining)
	}
	return k
}

// Channel returns the signal bus channel events for this period key are
// published on.
func (e LifecycleEvent) Channel() string {
	return "rounds:" + e.Key.String()
}
