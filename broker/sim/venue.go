// Package sim provides an in-process venue adapter: orders fill instantly
// against a synthetic (or injected) data vendor, with no wire protocol
// underneath. It backs paper sessions, the backtest command, and tests.
package sim

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mercurytrader/mercury/broker"
	"github.com/mercurytrader/mercury/datasource"
	"github.com/mercurytrader/mercury/market"
	"github.com/mercurytrader/mercury/pkg/id"
)

func init() {
	broker.RegisterVenue("sim", func(credentials map[string]string) (broker.Venue, error) {
		cfg, err := configFromCredentials(credentials)
		if err != nil {
			return nil, err
		}
		return New(cfg), nil
	})
}

// Config parametrizes the simulated venue.
type Config struct {
	AccountID string
	Currency  broker.CurrencyCode
	Balance   decimal.Decimal
	Spread    float64 // full bid/ask spread in price units
	Vendor    datasource.Vendor
	Logger    *zap.Logger
}

func configFromCredentials(credentials map[string]string) (Config, error) {
	cfg := Config{}
	if v, ok := credentials["account_id"]; ok {
		cfg.AccountID = v
	}
	if v, ok := credentials["currency"]; ok {
		cfg.Currency = broker.CurrencyCode(v)
	}
	if v, ok := credentials["balance"]; ok {
		balance, err := decimal.NewFromString(v)
		if err != nil {
			return Config{}, fmt.Errorf("sim: bad balance %q: %w", v, err)
		}
		cfg.Balance = balance
	}
	if v, ok := credentials["spread"]; ok {
		spread, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("sim: bad spread %q: %w", v, err)
		}
		cfg.Spread = spread
	}
	if v, ok := credentials["seed"]; ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("sim: bad seed %q: %w", v, err)
		}
		cfg.Vendor = datasource.NewSynthetic(seed)
	}
	return cfg, nil
}

// Venue is the simulated venue adapter.
type Venue struct {
	session *broker.Session
	vendor  datasource.Vendor
	log     *zap.Logger

	account broker.Account
	spread  float64
	open    []broker.Position
	closed  []broker.Position

	now func() time.Time
}

// New builds a simulated venue, filling in defaults for anything the config
// leaves zero.
func New(cfg Config) *Venue {
	if cfg.AccountID == "" {
		cfg.AccountID = "SIM-001"
	}
	if cfg.Currency == "" {
		cfg.Currency = broker.USD
	}
	if cfg.Balance.IsZero() {
		cfg.Balance = decimal.NewFromInt(100_000)
	}
	if cfg.Spread == 0 {
		cfg.Spread = 0.0002
	}
	if cfg.Vendor == nil {
		cfg.Vendor = datasource.NewSynthetic(1)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	v := &Venue{
		vendor: cfg.Vendor,
		log:    cfg.Logger,
		spread: cfg.Spread,
		now:    time.Now,
	}
	v.account = broker.NewAccount(cfg.AccountID, cfg.Currency, cfg.Balance,
		broker.AccountCash, decimal.Zero, broker.Raw{"venue": "sim"})

	v.session = broker.NewSession(&loopback{}, cfg.Logger)
	v.session.OnReconnect(v.authenticate)
	return v
}

func (v *Venue) Name() string { return "sim" }

// Connect opens the loopback session and authenticates.
func (v *Venue) Connect(ctx context.Context) error {
	return v.session.Open(ctx)
}

func (v *Venue) authenticate(ctx context.Context) error {
	_, err := v.session.Request(ctx, broker.Raw{"command": "login", "account": v.account.ID})
	return err
}

func (v *Venue) GetAccount(ctx context.Context, accountID string) (broker.Account, error) {
	if accountID != "" && accountID != v.account.ID {
		return broker.Account{}, fmt.Errorf("%w: %q", broker.ErrAccountNotFound, accountID)
	}
	return v.account, nil
}

func (v *Venue) GetCandles(ctx context.Context, instrument string,
	tf market.Timeframe, from, to time.Time) (*market.Series, error) {

	return v.vendor.GetTimeSeries(ctx, instrument, tf, from, to)
}

// MarketPrice derives the quote from the latest complete minute bar,
// shifted by half the configured spread.
func (v *Venue) MarketPrice(ctx context.Context, instrument string, side broker.PriceType) (float64, error) {
	now := v.now()
	candles, err := v.vendor.GetTimeSeries(ctx, instrument, market.M1,
		now.Add(-5*time.Minute), now)
	if err != nil {
		return 0, err
	}
	row, err := candles.Latest()
	if err != nil {
		return 0, fmt.Errorf("sim: no price for %s: %w", instrument, err)
	}

	mid := row.Values[market.ColClose]
	switch side {
	case broker.Ask:
		return mid + v.spread/2, nil
	case broker.Bid:
		return mid - v.spread/2, nil
	default:
		return mid, nil
	}
}

// SubmitOrder fills the order immediately and opens the matching position.
// Both objects travel through the session and the render translators, the
// same path a wire-level adapter uses.
func (v *Venue) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	if req.Size <= 0 {
		return broker.Order{}, fmt.Errorf("%w: order size must be positive", broker.ErrRequest)
	}

	price := req.Price
	if price == 0 {
		side := broker.Ask
		if req.Action == broker.Sell || req.Action == broker.SellLimit || req.Action == broker.SellStop {
			side = broker.Bid
		}
		var err error
		if price, err = v.MarketPrice(ctx, req.Instrument, side); err != nil {
			return broker.Order{}, err
		}
	}

	payload := broker.Raw{
		"command":     "tradeTransaction",
		"id":          id.New(),
		"position_id": id.New(),
		"action":      string(req.Action),
		"price":       price,
		"volume":      req.Size,
		"instrument":  req.Instrument,
		"time":        v.now().UTC(),
	}
	resp, err := v.session.Request(ctx, payload)
	if err != nil {
		return broker.Order{}, err
	}
	raw, ok := resp.(broker.Raw)
	if !ok {
		return broker.Order{}, fmt.Errorf("%w: unexpected response %T", broker.ErrRequest, resp)
	}

	order, err := v.RenderOrder(raw)
	if err != nil {
		return broker.Order{}, err
	}
	order.TakeProfit = req.TakeProfit
	order.StopLoss = req.StopLoss

	position, err := v.RenderPosition(raw)
	if err != nil {
		return broker.Order{}, err
	}
	position.TakeProfit = req.TakeProfit
	position.StopLoss = req.StopLoss
	v.open = append(v.open, position)

	v.log.Debug("sim fill",
		zap.String("order", order.ID),
		zap.String("position", position.ID),
		zap.Float64("price", price))
	return order, nil
}

func (v *Venue) GetPositions(ctx context.Context, status broker.PositionStatus) ([]broker.Position, error) {
	var out []broker.Position
	if status == broker.AnyStatus || status == broker.Opened {
		out = append(out, v.open...)
	}
	if status == broker.AnyStatus || status == broker.Closed {
		out = append(out, v.closed...)
	}
	return out, nil
}

// ClosePosition realizes P/L at the given level and credits the account.
func (v *Venue) ClosePosition(ctx context.Context, pos broker.Position, level float64) error {
	idx := -1
	for i, p := range v.open {
		if p.ID == pos.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: position %q not open", broker.ErrRequest, pos.ID)
	}

	p := v.open[idx]
	move := decimal.NewFromFloat(level).Sub(decimal.NewFromFloat(p.OpenPrice))
	if p.Type == broker.Short {
		move = move.Neg()
	}
	volume := decimal.NewFromFloat(p.Volume)
	profit := move.Mul(volume)
	spreadCost := decimal.NewFromFloat(v.spread / 2).Mul(volume)

	p.Status = broker.Closed
	p.ClosePrice = level
	p.CloseTime = v.now().UTC()
	p.Profit = profit
	p.Spread = spreadCost

	v.open = append(v.open[:idx], v.open[idx+1:]...)
	v.closed = append(v.closed, p)
	v.account.Balance = v.account.Balance.Add(profit).Sub(spreadCost)

	v.log.Debug("sim close",
		zap.String("position", p.ID),
		zap.String("profit", profit.String()))
	return nil
}

func (v *Venue) Fees(ctx context.Context, pos broker.Position) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

// RenderOrder translates a sim trade payload into the normalized Order.
func (v *Venue) RenderOrder(raw broker.Raw) (broker.Order, error) {
	action, err := rawString(raw, "action")
	if err != nil {
		return broker.Order{}, err
	}
	orderID, err := rawString(raw, "id")
	if err != nil {
		return broker.Order{}, err
	}
	positionID, err := rawString(raw, "position_id")
	if err != nil {
		return broker.Order{}, err
	}
	instrument, err := rawString(raw, "instrument")
	if err != nil {
		return broker.Order{}, err
	}

	return broker.Order{
		ID:         orderID,
		Action:     broker.OrderAction(action),
		Price:      rawFloat(raw, "price"),
		Volume:     rawFloat(raw, "volume"),
		Instrument: instrument,
		PositionID: positionID,
		Status:     broker.OrderFilled,
		CreatedAt:  rawTime(raw, "time"),
		Raw:        raw,
	}, nil
}

// RenderPosition translates a sim trade payload into the normalized
// Position.
func (v *Venue) RenderPosition(raw broker.Raw) (broker.Position, error) {
	action, err := rawString(raw, "action")
	if err != nil {
		return broker.Position{}, err
	}
	positionID, err := rawString(raw, "position_id")
	if err != nil {
		return broker.Position{}, err
	}
	orderID, err := rawString(raw, "id")
	if err != nil {
		return broker.Position{}, err
	}
	instrument, err := rawString(raw, "instrument")
	if err != nil {
		return broker.Position{}, err
	}

	direction := broker.Long
	switch broker.OrderAction(action) {
	case broker.Sell, broker.SellLimit, broker.SellStop:
		direction = broker.Short
	}

	return broker.Position{
		ID:         positionID,
		Type:       direction,
		Volume:     rawFloat(raw, "volume"),
		Status:     broker.Opened,
		Instrument: instrument,
		OrderID:    orderID,
		OpenPrice:  rawFloat(raw, "price"),
		OpenTime:   rawTime(raw, "time"),
		Raw:        raw,
	}, nil
}

// loopback is the sim transport: nothing on the wire, payloads echo back.
type loopback struct {
	connected bool
}

func (l *loopback) Connect(ctx context.Context) error {
	l.connected = true
	return nil
}

func (l *loopback) Send(ctx context.Context, payload any) (any, error) {
	if !l.connected {
		return nil, broker.ErrConnectionLost
	}
	return payload, nil
}

func rawString(raw broker.Raw, key string) (string, error) {
	s, ok := raw[key].(string)
	if !ok {
		return "", fmt.Errorf("%w: payload missing %q", broker.ErrRequest, key)
	}
	return s, nil
}

func rawFloat(raw broker.Raw, key string) float64 {
	f, _ := raw[key].(float64)
	return f
}

func rawTime(raw broker.Raw, key string) time.Time {
	t, _ := raw[key].(time.Time)
	return t
}
