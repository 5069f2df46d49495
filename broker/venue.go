package broker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mercurytrader/mercury/market"
)

// Venue is the per-brokerage adapter contract. Each adapter owns its wire
// protocol (behind a Transport/Session) and translates venue payloads into
// the normalized domain objects through RenderOrder/RenderPosition — nothing
// else in the system constructs Orders or Positions from raw data.
type Venue interface {
	Name() string

	// Connect establishes the adapter's session and authenticates.
	Connect(ctx context.Context) error

	GetAccount(ctx context.Context, accountID string) (Account, error)
	GetCandles(ctx context.Context, instrument string, tf market.Timeframe,
		from, to time.Time) (*market.Series, error)
	MarketPrice(ctx context.Context, instrument string, side PriceType) (float64, error)
	SubmitOrder(ctx context.Context, req OrderRequest) (Order, error)
	GetPositions(ctx context.Context, status PositionStatus) ([]Position, error)
	ClosePosition(ctx context.Context, pos Position, level float64) error

	// Fees returns the venue's interest/commission charge for a closed
	// position.
	Fees(ctx context.Context, pos Position) (decimal.Decimal, error)

	RenderOrder(raw Raw) (Order, error)
	RenderPosition(raw Raw) (Position, error)
}

// VenueFactory builds a venue adapter from opaque credentials, typically
// straight out of the config file.
type VenueFactory func(credentials map[string]string) (Venue, error)

var (
	venuesMu sync.RWMutex
	venues   = make(map[string]VenueFactory)
)

// RegisterVenue makes a venue adapter available to OpenVenue. Adapters call
// it from init, like database/sql drivers.
func RegisterVenue(name string, factory VenueFactory) {
	venuesMu.Lock()
	defer venuesMu.Unlock()
	venues[strings.ToLower(name)] = factory
}

// OpenVenue builds a registered venue adapter by name.
func OpenVenue(name string, credentials map[string]string) (Venue, error) {
	venuesMu.RLock()
	factory, ok := venues[strings.ToLower(name)]
	venuesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown venue %q (registered: %s)",
			name, strings.Join(RegisteredVenues(), ", "))
	}
	return factory(credentials)
}

// RegisteredVenues returns the registered adapter names, sorted.
func RegisteredVenues() []string {
	venuesMu.RLock()
	defer venuesMu.RUnlock()
	names := make([]string, 0, len(venues))
	for name := range venues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
