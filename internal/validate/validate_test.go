package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitelight/quantengine/pkg/types"
)

func bar(date string, close float64) types.Bar {
	d, _ := time.Parse("2006-01-02", date)
	return types.Bar{Date: d, Open: close, High: close, Low: close, Close: close, Volume: 100}
}

func TestHistory_CleanSeriesPasses(t *testing.T) {
	h := types.BarHistory{bar("2020-01-01", 10), bar("2020-01-02", 11), bar("2020-01-03", 12)}
	assert.NoError(t, History("NDX", h))
}

func TestHistory_DuplicateDateFails(t *testing.T) {
	h := types.BarHistory{bar("2020-01-01", 10), bar("2020-01-01", 11)}
	err := History("NDX", h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate date")
}

func TestHistory_UnsortedFails(t *testing.T) {
	h := types.BarHistory{bar("2020-01-02", 10), bar("2020-01-01", 11)}
	err := History("NDX", h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsorted")
}

func TestHistory_NonPositivePriceFails(t *testing.T) {
	h := types.BarHistory{bar("2020-01-01", 10), bar("2020-01-02", -1)}
	err := History("NDX", h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-positive price")
}

func TestHistory_GapTooWideFails(t *testing.T) {
	h := types.BarHistory{bar("2020-01-01", 10), bar("2020-01-10", 11)}
	err := History("NDX", h)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gap")
}

func TestHistory_EmptyIsValid(t *testing.T) {
	assert.NoError(t, History("NDX", nil))
}
