// Package journal persists the trading record: every order the gateway
// submits and every position it closes. The sqlite backend is the durable
// store; the csv backend is for quick spreadsheet review.
package journal

import (
	"time"

	"github.com/mercurytrader/mercury/broker"
)

// Journal is a queryable trading record. It satisfies broker.Recorder, so a
// gateway journals through it directly.
type Journal interface {
	broker.Recorder

	ListOrders(instrument string) ([]broker.Order, error)
	ListPositionsClosedBetween(start, end time.Time) ([]broker.Position, error)
	Close() error
}

// Nop discards everything and lists nothing.
type Nop struct{}

func (Nop) RecordOrder(broker.Order) error       { return nil }
func (Nop) RecordPosition(broker.Position) error { return nil }
func (Nop) Close() error                         { return nil }

func (Nop) ListOrders(string) ([]broker.Order, error) { return nil, nil }

func (Nop) ListPositionsClosedBetween(time.Time, time.Time) ([]broker.Position, error) {
	return nil, nil
}
