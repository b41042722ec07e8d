package engine

import "errors"

var (
	// ErrInactiveParameters is returned by one-shot quoting when the
	// parameters have an empty pair or a non-positive amount
	ErrInactiveParameters = errors.New("trade parameters are inactive")

	// ErrSuperseded is returned when a newer fetch round invalidated
	// the one the caller was waiting on
	ErrSuperseded = errors.New("fetch round superseded by newer input")

	// ErrClosed is returned when the engine has been shut down
	ErrClosed = errors.New("engine is closed")
)
