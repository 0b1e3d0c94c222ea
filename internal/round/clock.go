// Package round owns the betting-round lifecycle: the pure wall-clock
// arithmetic that derives period identifiers and boundaries, and the
// scheduler that drives transitions and resolution across configured tracks.
package round

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// Period IDs are a pure function of time: the UTC day anchor (YYYYMMDD)
// followed by an 8-digit sequence number, elapsed-seconds-since-midnight
// divided by the track duration. Start and end times derive from the ID with
// no extra storage, so every replica computes the same period independently.

const (
	dayLayout = "20060102"
	seqDigits = 8
)

// PeriodAt returns the period containing the instant now on the given track.
func PeriodAt(key domain.PeriodKey, now time.Time) domain.Period {
	now = now.UTC()
	anchor := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	seq := int(now.Sub(anchor)/time.Second) / key.Duration

	start := anchor.Add(time.Duration(seq*key.Duration) * time.Second)
	return domain.Period{
		Key:    key,
		ID:     anchor.Format(dayLayout) + fmt.Sprintf("%0*d", seqDigits, seq),
		Start:  start,
		End:    start.Add(time.Duration(key.Duration) * time.Second),
		Status: domain.PeriodOpen,
	}
}

// PeriodByID reconstructs a period from its identifier.
func PeriodByID(key domain.PeriodKey, id string) (domain.Period, error) {
	if len(id) != len(dayLayout)+seqDigits {
		return domain.Period{}, fmt.Errorf("round: period id %q: bad length", id)
	}
	anchor, err := time.Parse(dayLayout, id[:len(dayLayout)])
	if err != nil {
		return domain.Period{}, fmt.Errorf("round: period id %q: %w", id, err)
	}
	seq, err := strconv.Atoi(id[len(dayLayout):])
	if err != nil {
		return domain.Period{}, fmt.Errorf("round: period id %q: %w", id, err)
	}

	start := anchor.Add(time.Duration(seq*key.Duration) * time.Second)
	return domain.Period{
		Key:   key,
		ID:    id,
		Start: start,
		End:   start.Add(time.Duration(key.Duration) * time.Second),
	}, nil
}

// Next returns the period that follows p on its track. The sequence resets
// at the UTC day boundary.
func Next(p domain.Period) domain.Period {
	return PeriodAt(p.Key, p.End)
}

// StatusAt derives the time-driven portion of a period's status. The final
// closed -> resolved transition is owned by the settlement processor and is
// not derivable from the clock.
func StatusAt(p domain.Period, cutoffSeconds int, now time.Time) domain.PeriodStatus {
	switch rem := p.Remaining(now); {
	case now.Before(p.Start):
		return domain.PeriodScheduled
	case rem == 0:
		return domain.PeriodClosed
	case rem <= cutoffSeconds:
		return domain.PeriodClosing
	default:
		return domain.PeriodOpen
	}
}
