package common

import "errors"

// Purchase failures fall into four categories. Everything a handler needs to
// know about a failed purchase is which of these the returned error wraps.
var (
	// ErrInvalidSeat: the requested seat cannot be sold for this event at
	// all (event not open, seat not configured, wrong area, unavailable, or
	// no active price). Detected before any hold is attempted.
	ErrInvalidSeat = errors.New("invalid seat selection")

	// ErrSeatConflict: another purchase holds or owns at least one of the
	// requested seats. The caller should re-poll availability and pick
	// different seats.
	ErrSeatConflict = errors.New("seat already taken")

	ErrInsufficientFunds = errors.New("insufficient wallet balance")

	// ErrSettlementFailed covers storage and gateway infrastructure errors;
	// by the time it is returned every compensation has already run.
	ErrSettlementFailed = errors.New("settlement failed")
)
