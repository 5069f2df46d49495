package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstrumentPip(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0001, Instruments["EUR_USD"].Pip(), 1e-12)
	assert.InDelta(t, 0.01, Instruments["USD_JPY"].Pip(), 1e-12)
}

func TestKnownInstrument(t *testing.T) {
	t.Parallel()

	assert.True(t, KnownInstrument("EUR_USD"))
	assert.False(t, KnownInstrument("DOGE_USD"))
}
