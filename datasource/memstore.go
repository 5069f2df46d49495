package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mercurytrader/mercury/market"
)

// MemoryStore keeps named candle frames in memory. Useful for tests and for
// caching vendor fetches within a session.
type MemoryStore struct {
	mu     sync.RWMutex
	frames map[string]market.Frame
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{frames: make(map[string]market.Frame)}
}

// Store replaces the frame under name.
func (m *MemoryStore) Store(ctx context.Context, name string, f market.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames[name] = copyFrame(f)
	return nil
}

// Append extends the frame under name. The incoming frame must carry the
// same column set; an Append to an unknown name stores it.
func (m *MemoryStore) Append(ctx context.Context, name string, f market.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.frames[name]
	if !ok {
		m.frames[name] = copyFrame(f)
		return nil
	}
	if len(cur.Columns) != len(f.Columns) {
		return fmt.Errorf("%w: store %q", market.ErrShapeMismatch, name)
	}
	for col := range f.Columns {
		if _, ok := cur.Columns[col]; !ok {
			return fmt.Errorf("%w: store %q missing column %q",
				market.ErrShapeMismatch, name, col)
		}
	}

	cur.Times = append(cur.Times, f.Times...)
	for col, values := range f.Columns {
		cur.Columns[col] = append(cur.Columns[col], values...)
	}
	m.frames[name] = cur
	return nil
}

// Get returns a copy of the frame under name.
func (m *MemoryStore) Get(ctx context.Context, name string) (market.Frame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.frames[name]
	if !ok {
		return market.Frame{}, fmt.Errorf("datasource: no frame named %q", name)
	}
	return copyFrame(f), nil
}

func copyFrame(f market.Frame) market.Frame {
	out := market.Frame{
		Times:   append([]time.Time(nil), f.Times...),
		Columns: make(map[string][]float64, len(f.Columns)),
	}
	for col, values := range f.Columns {
		out.Columns[col] = append([]float64(nil), values...)
	}
	return out
}
