package broker

import "errors"

var (
	// ErrConnect is returned when a transport cannot establish its session.
	ErrConnect = errors.New("broker: connect failed")

	// ErrConnectionLost is returned by a transport that detected a broken
	// link. The session recovers from it exactly once per request.
	ErrConnectionLost = errors.New("broker: connection lost")

	// ErrRequest is returned for functional/protocol errors reported by the
	// venue. It is never retried.
	ErrRequest = errors.New("broker: request failed")

	// ErrNoCandle is returned when the last-candle poll exhausts its attempt
	// budget without the venue publishing a fresh bar.
	ErrNoCandle = errors.New("broker: no candle available")

	// ErrAccountNotFound is returned when the venue does not know the
	// requested account.
	ErrAccountNotFound = errors.New("broker: account not found")
)
