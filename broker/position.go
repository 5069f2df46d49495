package broker

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionType is the direction of an open position.
type PositionType string

const (
	Long  PositionType = "BUY"
	Short PositionType = "SELL"
)

// PositionStatus is the lifecycle state of a position. The zero value acts
// as "any" in filters.
type PositionStatus string

const (
	AnyStatus PositionStatus = ""
	Opened    PositionStatus = "OPENED"
	Closed    PositionStatus = "CLOSED"
)

// Position is the normalized representation of a venue position. Positions
// are built by a venue's RenderPosition translator and mutated only by
// re-fetching from the venue; Closed is terminal.
type Position struct {
	ID         string
	Type       PositionType
	Volume     float64
	Status     PositionStatus
	Instrument string
	OrderID    string
	OpenPrice  float64
	OpenTime   time.Time
	ClosePrice float64
	CloseTime  time.Time
	TakeProfit *float64
	StopLoss   *float64
	Profit     decimal.Decimal
	Spread     decimal.Decimal
	Taxes      decimal.Decimal
	Raw        Raw
}
