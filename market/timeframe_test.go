package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeframe(t *testing.T) {
	t.Parallel()

	tf, err := ParseTimeframe(" 1H ")
	require.NoError(t, err)
	assert.Equal(t, H1, tf)
	assert.Equal(t, time.Hour, tf.Duration())

	_, err = ParseTimeframe("2h")
	assert.ErrorIs(t, err, ErrUnknownTimeframe)
}

func TestTimeframeDurations(t *testing.T) {
	t.Parallel()

	expected := map[Timeframe]time.Duration{
		S1:  time.Second,
		M1:  time.Minute,
		M5:  5 * time.Minute,
		M15: 15 * time.Minute,
		M30: 30 * time.Minute,
		H1:  time.Hour,
		H4:  4 * time.Hour,
		D1:  24 * time.Hour,
		W1:  7 * 24 * time.Hour,
		MN:  30 * 24 * time.Hour,
	}
	for tf, d := range expected {
		assert.Equal(t, d, tf.Duration(), "timeframe %s", tf)
		assert.True(t, tf.Valid())
	}
}

func TestSupportedTimeframesSorted(t *testing.T) {
	t.Parallel()

	keys := SupportedTimeframes()
	require.Len(t, keys, 10)
	assert.Equal(t, S1, keys[0])
	assert.Equal(t, MN, keys[len(keys)-1])
	for i := 1; i < len(keys); i++ {
		assert.Less(t, keys[i-1].Duration(), keys[i].Duration())
	}
}
