package broker

import "github.com/shopspring/decimal"

// Raw carries a venue's untranslated payload for an object, kept around for
// debugging. Gateways treat it as opaque.
type Raw map[string]any

// AccountType distinguishes cash from margin accounts.
type AccountType string

const (
	AccountCash   AccountType = "CASH"
	AccountMargin AccountType = "MARGIN"
)

// CurrencyCode is an ISO 4217 currency codename.
type CurrencyCode string

const (
	EUR CurrencyCode = "EUR"
	USD CurrencyCode = "USD"
	CAD CurrencyCode = "CAD"
	GBP CurrencyCode = "GBP"
	JPY CurrencyCode = "JPY"
)

// Standard FX lot sizes, in units of base currency.
const (
	LotInterbank = 1_000_000
	LotStandard  = 100_000
	LotMini      = 10_000
	LotMicro     = 1_000
	LotNano      = 100
)

// Account is the normalized representation of a venue account.
//
// Capital is the balance at session start; Balance moves with realized P/L.
type Account struct {
	ID       string
	Currency CurrencyCode
	Balance  decimal.Decimal
	Capital  decimal.Decimal
	Type     AccountType
	Margin   decimal.Decimal
	Raw      Raw
}

// NewAccount builds an account snapshot. A nil raw payload gets a fresh empty
// map so callers never share one.
func NewAccount(id string, currency CurrencyCode, balance decimal.Decimal,
	typ AccountType, margin decimal.Decimal, raw Raw) Account {

	if raw == nil {
		raw = Raw{}
	}
	return Account{
		ID:       id,
		Currency: currency,
		Balance:  balance,
		Capital:  balance,
		Type:     typ,
		Margin:   margin,
		Raw:      raw,
	}
}

// PriceType selects which side of the book a market price query returns.
type PriceType int

const (
	Ask  PriceType = iota // buy side
	Bid                   // sell side
	Last
)

func (p PriceType) String() string {
	switch p {
	case Ask:
		return "ASK"
	case Bid:
		return "BID"
	default:
		return "LAST"
	}
}
