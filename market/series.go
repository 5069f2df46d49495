package market

import (
	"fmt"
	"time"
)

// Standard column names for candle frames.
const (
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"
)

// Frame is a batch of rows: a timestamp per row plus equally sized named
// float64 columns.
type Frame struct {
	Times   []time.Time
	Columns map[string][]float64
}

// FrameFromCandles builds the standard OHLCV frame.
func FrameFromCandles(candles []Candle) Frame {
	n := len(candles)
	f := Frame{
		Times: make([]time.Time, n),
		Columns: map[string][]float64{
			ColOpen:   make([]float64, n),
			ColHigh:   make([]float64, n),
			ColLow:    make([]float64, n),
			ColClose:  make([]float64, n),
			ColVolume: make([]float64, n),
		},
	}
	for i, c := range candles {
		f.Times[i] = c.Time
		f.Columns[ColOpen][i] = c.Open
		f.Columns[ColHigh][i] = c.High
		f.Columns[ColLow][i] = c.Low
		f.Columns[ColClose][i] = c.Close
		f.Columns[ColVolume][i] = c.Volume
	}
	return f
}

func (f Frame) validate() error {
	for name, col := range f.Columns {
		if len(col) != len(f.Times) {
			return fmt.Errorf("%w: column %q has %d rows, want %d",
				ErrShapeMismatch, name, len(col), len(f.Times))
		}
	}
	return nil
}

// Row is a single row of visible data.
type Row struct {
	Time   time.Time
	Values map[string]float64
}

// Series is a columnar, append-only time series with a movable read cursor.
//
// The cursor bounds every read: no public accessor can observe rows at or
// past it. Buffered future rows therefore stay invisible to indicator and
// strategy code until the cursor is advanced, which is what rules out
// lookahead bias.
type Series struct {
	instrument string
	timeframe  Timeframe

	times   []time.Time
	columns map[string][]float64

	cursor  int
	version uint64
	cache   map[string][]float64
}

// NewSeries builds a series from an initial frame. The cursor starts at the
// physical length, so everything loaded up front is visible.
func NewSeries(instrument string, tf Timeframe, f Frame) (*Series, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	s := &Series{
		instrument: instrument,
		timeframe:  tf,
		times:      append([]time.Time(nil), f.Times...),
		columns:    make(map[string][]float64, len(f.Columns)),
		cursor:     len(f.Times),
		cache:      make(map[string][]float64),
	}
	for name, col := range f.Columns {
		s.columns[name] = append([]float64(nil), col...)
	}
	return s, nil
}

// Instrument returns the instrument the data belongs to.
func (s *Series) Instrument() string { return s.instrument }

// Timeframe returns the candle timeframe of the data.
func (s *Series) Timeframe() Timeframe { return s.timeframe }

// Len returns the visible length (the cursor position).
func (s *Series) Len() int { return s.cursor }

// Size returns the physical length, including buffered rows past the cursor.
func (s *Series) Size() int { return len(s.times) }

// Version increases whenever the visible window could have changed. Consumers
// caching derived data (indicators) compare it to decide on recompute.
func (s *Series) Version() uint64 { return s.version }

// Append extends every column with the frame's rows. The cursor does not
// move. The appended frame must carry exactly the series' column set.
func (s *Series) Append(f Frame) error {
	if err := f.validate(); err != nil {
		return err
	}
	if len(f.Columns) != len(s.columns) {
		return fmt.Errorf("%w: got %d columns, want %d",
			ErrShapeMismatch, len(f.Columns), len(s.columns))
	}
	for name := range s.columns {
		if _, ok := f.Columns[name]; !ok {
			return fmt.Errorf("%w: missing column %q", ErrShapeMismatch, name)
		}
	}

	s.times = append(s.times, f.Times...)
	for name, col := range f.Columns {
		s.columns[name] = append(s.columns[name], col...)
	}

	// The cursor did not move, but appending may have reallocated the
	// backing arrays, so cached slices must not be trusted.
	s.invalidate()
	return nil
}

// Advance moves the cursor, changing the visible length.
func (s *Series) Advance(cursor int) error {
	if cursor < 0 || cursor > len(s.times) {
		return fmt.Errorf("%w: cursor %d, physical length %d",
			ErrOutOfRange, cursor, len(s.times))
	}
	s.cursor = cursor
	s.invalidate()
	return nil
}

func (s *Series) invalidate() {
	s.version++
	clear(s.cache)
}

// Column returns the visible slice of the named column. The slice is cached
// until the next Append or Advance; callers must not mutate it.
func (s *Series) Column(name string) ([]float64, error) {
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	col, ok := s.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	visible := col[:s.cursor]
	s.cache[name] = visible
	return visible, nil
}

// Times returns the visible timestamps.
func (s *Series) Times() []time.Time {
	return s.times[:s.cursor]
}

// Columns returns the column names present in the series.
func (s *Series) Columns() []string {
	names := make([]string, 0, len(s.columns))
	for name := range s.columns {
		names = append(names, name)
	}
	return names
}

// Latest returns the last visible row.
func (s *Series) Latest() (Row, error) {
	if s.cursor == 0 {
		return Row{}, ErrEmptyWindow
	}
	row := Row{
		Time:   s.times[s.cursor-1],
		Values: make(map[string]float64, len(s.columns)),
	}
	for name, col := range s.columns {
		row.Values[name] = col[s.cursor-1]
	}
	return row, nil
}
