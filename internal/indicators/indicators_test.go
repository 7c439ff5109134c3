package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	out := SMA(x, 3)
	require.Len(t, out, 5)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestROC(t *testing.T) {
	x := []float64{100, 110, 121}
	out := ROC(x, 1)
	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, 10.0, out[1], 1e-9)
	assert.InDelta(t, 10.0, out[2], 1e-9)
}

func TestRSIAllGains(t *testing.T) {
	x := make([]float64, 20)
	for i := range x {
		x[i] = float64(i + 1)
	}
	out := RSI(x, 14)
	// No losses at all -> avg_loss == 0 -> undefined (NaN).
	assert.True(t, math.IsNaN(out[19]))
}

func TestRSIFlat(t *testing.T) {
	x := make([]float64, 20)
	for i := range x {
		x[i] = 100
	}
	out := RSI(x, 14)
	// avg_gain == avg_loss == 0 -> undefined (NaN), per spec avg_loss=0 rule
	// combined with avg_gain=0 (no movement at all).
	assert.True(t, math.IsNaN(out[19]))
}

func TestBollingerBandsZeroWidth(t *testing.T) {
	x := make([]float64, 25)
	for i := range x {
		x[i] = 50
	}
	_, _, pctB := BollingerBands(x, 20, 2.0)
	assert.True(t, math.IsNaN(pctB[24]))
}

func TestRealizedVolatilityConstant(t *testing.T) {
	x := make([]float64, 30)
	for i := range x {
		x[i] = 100
	}
	out := RealizedVolatility(x, 20)
	assert.InDelta(t, 0.0, out[29], 1e-9)
}

func TestLinearRegressionSlopeUptrend(t *testing.T) {
	x := make([]float64, 10)
	for i := range x {
		x[i] = float64(i)
	}
	out := LinearRegressionSlope(x, 5)
	assert.InDelta(t, 1.0, out[9], 1e-9)
}

func TestZScoreZeroStd(t *testing.T) {
	x := make([]float64, 10)
	for i := range x {
		x[i] = 7
	}
	out := ZScore(x, 5)
	assert.True(t, math.IsNaN(out[9]))
}

func TestATR(t *testing.T) {
	high := []float64{10, 11, 12, 13}
	low := []float64{9, 9.5, 10, 11}
	closeS := []float64{9.5, 10.5, 11.5, 12.5}
	out := ATR(high, low, closeS, 2)
	require.Len(t, out, 4)
	assert.False(t, math.IsNaN(out[3]))
}

func TestLastEmptySeries(t *testing.T) {
	assert.True(t, math.IsNaN(Last(nil)))
}
