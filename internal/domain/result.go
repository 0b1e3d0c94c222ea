package domain

import "time"

// Outcome is the canonical string encoding of one element of a game's finite
// outcome space: a single digit "0".."9" for the wheel games, three die faces
// in drawn order (e.g. "245") for k3, and five digits "00000".."99999" for
// fived.
type Outcome string

// SourceMode records which selection path produced a result.
type SourceMode string

const (
	SourceProtected SourceMode = "protected"
	SourceRandom    SourceMode = "random"
	SourceOverride  SourceMode = "adminOverride"
)

// Result is the single canonical outcome of a resolved period. At most one
// Result exists per period; the result store enforces uniqueness and a second
// settlement attempt adopts the stored row.
type Result struct {
	Key        PeriodKey
	PeriodID   string
	Outcome    Outcome
	SourceMode SourceMode
	// Proof is the externally auditable entropy reference for random-mode
	// results (hash or link). Protected-mode wheel-hash results carry a
	// synthesized digest instead.
	Proof    string
	ChosenAt time.Time
}

// SettlementReport summarizes one settlement pass over a period.
type SettlementReport struct {
	Key         PeriodKey
	PeriodID    string
	Outcome     Outcome
	SourceMode  SourceMode
	BetsSettled int
	BetsWon     int
	BetsLost    int
	TotalPayout int64 // minor units credited
	AlreadyDone bool  // true when another replica had claimed the period
	CompletedAt time.Time
}
