package market

import "errors"

var (
	// ErrShapeMismatch is returned when an appended frame does not carry the
	// same column set (or ragged column lengths) as the series.
	ErrShapeMismatch = errors.New("market: frame shape mismatch")

	// ErrUnknownColumn is returned when a named column does not exist.
	ErrUnknownColumn = errors.New("market: unknown column")

	// ErrOutOfRange is returned when a cursor is moved past the physical
	// length of the series.
	ErrOutOfRange = errors.New("market: cursor out of range")

	// ErrEmptyWindow is returned when reading the latest row of a series
	// whose cursor is still at zero.
	ErrEmptyWindow = errors.New("market: empty window")

	// ErrUnknownTimeframe is returned for timeframe keys outside the
	// supported set.
	ErrUnknownTimeframe = errors.New("market: unknown timeframe")
)
