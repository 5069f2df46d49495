package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mercurytrader/mercury/broker"
)

// CSV journals orders and closed positions to two flat files. It records
// only; the list methods are served by the sqlite backend.
type CSV struct {
	orders    *csv.Writer
	positions *csv.Writer
	of, pf    *os.File
}

// NewCSV creates (truncating) the two output files and writes their headers.
func NewCSV(ordersPath, positionsPath string) (*CSV, error) {
	of, err := os.Create(ordersPath)
	if err != nil {
		return nil, err
	}
	pf, err := os.Create(positionsPath)
	if err != nil {
		of.Close()
		return nil, err
	}

	ow := csv.NewWriter(of)
	pw := csv.NewWriter(pf)

	if err := ow.Write([]string{"order_id", "action", "price", "volume",
		"instrument", "position_id", "status", "created_at"}); err != nil {
		return nil, err
	}
	if err := pw.Write([]string{"position_id", "direction", "volume",
		"instrument", "order_id", "open_price", "open_time",
		"close_price", "close_time", "profit", "spread"}); err != nil {
		return nil, err
	}

	ow.Flush()
	if err := ow.Error(); err != nil {
		return nil, err
	}
	pw.Flush()
	if err := pw.Error(); err != nil {
		return nil, err
	}

	return &CSV{orders: ow, positions: pw, of: of, pf: pf}, nil
}

func (j *CSV) RecordOrder(o broker.Order) error {
	err := j.orders.Write([]string{
		o.ID,
		string(o.Action),
		f(o.Price),
		f(o.Volume),
		o.Instrument,
		o.PositionID,
		o.Status.String(),
		o.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.orders.Flush()
	return j.orders.Error()
}

func (j *CSV) RecordPosition(p broker.Position) error {
	err := j.positions.Write([]string{
		p.ID,
		string(p.Type),
		f(p.Volume),
		p.Instrument,
		p.OrderID,
		f(p.OpenPrice),
		p.OpenTime.Format(time.RFC3339),
		f(p.ClosePrice),
		p.CloseTime.Format(time.RFC3339),
		p.Profit.String(),
		p.Spread.String(),
	})
	if err != nil {
		return err
	}
	j.positions.Flush()
	return j.positions.Error()
}

// ListOrders is not supported by the csv backend.
func (j *CSV) ListOrders(string) ([]broker.Order, error) {
	return nil, fmt.Errorf("journal: csv backend does not support queries")
}

// ListPositionsClosedBetween is not supported by the csv backend.
func (j *CSV) ListPositionsClosedBetween(time.Time, time.Time) ([]broker.Position, error) {
	return nil, fmt.Errorf("journal: csv backend does not support queries")
}

func (j *CSV) Close() error {
	j.orders.Flush()
	if err := j.orders.Error(); err != nil {
		return err
	}
	j.positions.Flush()
	if err := j.positions.Error(); err != nil {
		return err
	}
	if err := j.of.Close(); err != nil {
		return err
	}
	return j.pf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
