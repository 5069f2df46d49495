package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/mercurytrader/mercury/broker"
)

// SQLite journals to a local sqlite database, creating the schema on open.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordOrder(o broker.Order) error {
	_, err := j.db.Exec(`
		INSERT INTO orders
		(order_id, action, price, volume, instrument, position_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, string(o.Action), o.Price, o.Volume, o.Instrument,
		o.PositionID, o.Status.String(), o.CreatedAt,
	)
	return err
}

func (j *SQLite) RecordPosition(p broker.Position) error {
	_, err := j.db.Exec(`
		INSERT INTO positions
		(position_id, direction, volume, instrument, order_id,
		 open_price, open_time, close_price, close_time, profit, spread)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(p.Type), p.Volume, p.Instrument, p.OrderID,
		p.OpenPrice, p.OpenTime, p.ClosePrice, p.CloseTime,
		p.Profit.String(), p.Spread.String(),
	)
	return err
}

// ListOrders returns the recorded orders for an instrument, oldest first.
// An empty instrument matches everything.
func (j *SQLite) ListOrders(instrument string) ([]broker.Order, error) {
	rows, err := j.db.Query(`
		SELECT order_id, action, price, volume, instrument, position_id, status, created_at
		FROM orders
		WHERE instrument = ? OR ? = ''
		ORDER BY created_at ASC`, instrument, instrument)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []broker.Order
	for rows.Next() {
		var (
			o      broker.Order
			action string
			status string
		)
		if err := rows.Scan(&o.ID, &action, &o.Price, &o.Volume,
			&o.Instrument, &o.PositionID, &status, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Action = broker.OrderAction(action)
		o.Status = orderStatusFromString(status)
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListPositionsClosedBetween returns positions whose close_time falls in
// [start, end), oldest first.
func (j *SQLite) ListPositionsClosedBetween(start, end time.Time) ([]broker.Position, error) {
	rows, err := j.db.Query(`
		SELECT position_id, direction, volume, instrument, order_id,
		       open_price, open_time, close_price, close_time, profit, spread
		FROM positions
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []broker.Position
	for rows.Next() {
		var (
			p         broker.Position
			direction string
			profit    string
			spread    string
		)
		if err := rows.Scan(&p.ID, &direction, &p.Volume, &p.Instrument,
			&p.OrderID, &p.OpenPrice, &p.OpenTime, &p.ClosePrice,
			&p.CloseTime, &profit, &spread); err != nil {
			return nil, err
		}
		p.Type = broker.PositionType(direction)
		p.Status = broker.Closed
		if p.Profit, err = decimal.NewFromString(profit); err != nil {
			return nil, fmt.Errorf("journal: bad profit %q: %w", profit, err)
		}
		if p.Spread, err = decimal.NewFromString(spread); err != nil {
			return nil, fmt.Errorf("journal: bad spread %q: %w", spread, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func orderStatusFromString(s string) broker.OrderStatus {
	for _, st := range []broker.OrderStatus{
		broker.OrderInitial, broker.OrderSubmitted, broker.OrderAccepted,
		broker.OrderCancelled, broker.OrderPartiallyFilled,
		broker.OrderFilled, broker.OrderRejected,
	} {
		if st.String() == s {
			return st
		}
	}
	return broker.OrderInitial
}
