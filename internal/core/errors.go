package core

import "errors"

// Rejections surfaced to callers. Validation failures drop the offending
// message, state failures reject the request, resource failures reject at
// the boundary; none of them stop a running match.
var (
	ErrMalformedInput    = errors.New("malformed input")
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchFull         = errors.New("match is full")
	ErrMatchEnded        = errors.New("match has ended")
	ErrMatchNotPending   = errors.New("match is not pending")
	ErrNotCreator        = errors.New("only the match creator may do this")
	ErrAlreadyInRoom     = errors.New("player already in another match")
	ErrNotInMatch        = errors.New("player has not joined this match")
	ErrUnknownConnection = errors.New("unknown connection")
	ErrInputQueueFull    = errors.New("input queue full")
)
