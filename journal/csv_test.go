package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ordersPath := filepath.Join(dir, "orders.csv")
	positionsPath := filepath.Join(dir, "positions.csv")

	j, err := NewCSV(ordersPath, positionsPath)
	require.NoError(t, err)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, j.RecordOrder(testOrder(created)))
	require.NoError(t, j.RecordPosition(testPosition(created, created.Add(time.Hour))))
	require.NoError(t, j.Close())

	of, err := os.Open(ordersPath)
	require.NoError(t, err)
	defer of.Close()
	rows, err := csv.NewReader(of).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2) // header + one order
	assert.Equal(t, "order_id", rows[0][0])
	assert.Equal(t, "O-1", rows[1][0])
	assert.Equal(t, "BUY", rows[1][1])
	assert.Equal(t, "2024-01-02T03:04:05Z", rows[1][7])

	pf, err := os.Open(positionsPath)
	require.NoError(t, err)
	defer pf.Close()
	rows, err = csv.NewReader(pf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "P-1", rows[1][0])
	assert.Equal(t, "1", rows[1][9]) // profit
}

func TestCSVQueriesUnsupported(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewCSV(filepath.Join(dir, "o.csv"), filepath.Join(dir, "p.csv"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	_, err = j.ListOrders("EUR_USD")
	assert.Error(t, err)
	_, err = j.ListPositionsClosedBetween(time.Time{}, time.Now())
	assert.Error(t, err)
}
