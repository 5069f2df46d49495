package broker

import "time"

// OrderAction is the submitted trade direction and entry style.
type OrderAction string

const (
	Buy       OrderAction = "BUY"
	Sell      OrderAction = "SELL"
	BuyLimit  OrderAction = "BUY_LIMIT"
	SellLimit OrderAction = "SELL_LIMIT"
	BuyStop   OrderAction = "BUY_STOP"
	SellStop  OrderAction = "SELL_STOP"
)

// OrderStatus tracks the order lifecycle:
// initial → submitted → accepted → {cancelled | partially filled → filled | rejected}.
type OrderStatus int

const (
	OrderInitial OrderStatus = iota
	OrderSubmitted
	OrderAccepted
	OrderCancelled
	OrderPartiallyFilled
	OrderFilled
	OrderRejected
)

func (s OrderStatus) String() string {
	switch s {
	case OrderInitial:
		return "INITIAL"
	case OrderSubmitted:
		return "SUBMITTED"
	case OrderAccepted:
		return "ACCEPTED"
	case OrderCancelled:
		return "CANCELLED"
	case OrderPartiallyFilled:
		return "PARTIALLY_FILLED"
	case OrderFilled:
		return "FILLED"
	case OrderRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the order can no longer change state.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderCancelled, OrderFilled, OrderRejected:
		return true
	}
	return false
}

// Order is the normalized representation of a venue order. Orders are built
// by a venue's RenderOrder translator and mutated only by re-fetching from
// the venue.
type Order struct {
	ID         string
	Action     OrderAction
	Price      float64
	Volume     float64
	Instrument string
	PositionID string
	Status     OrderStatus
	TakeProfit *float64
	StopLoss   *float64
	CreatedAt  time.Time
	ExpiresAt  time.Time
	Raw        Raw
}

// OrderRequest carries the parameters of an order submission. Price is
// ignored for plain market actions.
type OrderRequest struct {
	Action     OrderAction
	Size       float64
	Price      float64
	Instrument string
	Currency   CurrencyCode
	TakeProfit *float64
	StopLoss   *float64
}
