package vcdtrace

import "errors"

// Sentinel errors a caller can match with errors.Is. Only the unrecoverable
// kinds from spec.md §7 get sentinels; recoverable kinds never surface as
// errors and are counted in Stats instead.
var (
	// ErrMalformedHeader is returned by FinishIndexing when the header
	// could not be parsed to completion (e.g. $enddefinitions never seen).
	ErrMalformedHeader = errors.New("vcdtrace: malformed header")
	// ErrMalformedTimestamp is returned when a "#" line's digits do not
	// parse as an unsigned decimal.
	ErrMalformedTimestamp = errors.New("vcdtrace: malformed timestamp")
	// ErrWrongPhase is returned when an operation's phase precondition
	// from the parser contract table is violated.
	ErrWrongPhase = errors.New("vcdtrace: operation not valid in current phase")
)
