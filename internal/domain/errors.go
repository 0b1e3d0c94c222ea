package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrBettingClosed     = errors.New("betting closed for period")
	ErrUnknownGame       = errors.New("unknown game type")
	ErrUnknownPredicate  = errors.New("unknown bet predicate")
	ErrLockHeld          = errors.New("lock already held")
	ErrPeriodSettled     = errors.New("period already settled")
	ErrOverrideTooLate   = errors.New("override after settlement claimed")
	ErrLedgerUnavailable = errors.New("exposure ledger unavailable")
	ErrContextDone       = errors.New("context cancelled")
)
