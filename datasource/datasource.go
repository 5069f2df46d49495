// Package datasource defines the collaborator interfaces for historical
// market data, plus a deterministic synthetic vendor for paper sessions and
// tests. Concrete wire-level vendor adapters live outside this repository.
package datasource

import (
	"context"
	"time"

	"github.com/mercurytrader/mercury/market"
)

// Vendor retrieves historical (non-live) candle data for an instrument.
type Vendor interface {
	GetTimeSeries(ctx context.Context, instrument string, tf market.Timeframe,
		from, to time.Time) (*market.Series, error)
}

// Store persists named candle frames. Implementations are external
// collaborators; the engine core never calls one directly.
type Store interface {
	Store(ctx context.Context, name string, f market.Frame) error
	Append(ctx context.Context, name string, f market.Frame) error
	Get(ctx context.Context, name string) (market.Frame, error)
}
