package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/whitelight/quantengine/pkg/types"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestMaxDrawdown_SpecScenario(t *testing.T) {
	values := []float64{100, 110, 90, 95, 85, 100}
	dd := MaxDrawdown(values)
	assert.InDelta(t, 25.0/110.0, dd, 1e-4)
}

func TestProfitFactorAndWinRate_SpecScenario(t *testing.T) {
	trades := []types.Trade{
		{PnL: floatPtr(100)},
		{PnL: floatPtr(-50)},
		{PnL: floatPtr(200)},
		{PnL: floatPtr(-30)},
	}
	assert.InDelta(t, 3.75, ProfitFactor(trades), 1e-9)
	assert.InDelta(t, 0.5, WinRate(trades), 1e-9)
}

func TestProfitFactor_NoLossesIsInfinite(t *testing.T) {
	trades := []types.Trade{{PnL: floatPtr(10)}, {PnL: floatPtr(20)}}
	assert.True(t, math.IsInf(ProfitFactor(trades), 1))
}

func TestProfitFactor_NoTradesIsZero(t *testing.T) {
	assert.Equal(t, 0.0, ProfitFactor(nil))
	assert.Equal(t, 0.0, WinRate(nil))
}

func TestTotalReturn_DegenerateInputsAreZero(t *testing.T) {
	assert.Equal(t, 0.0, TotalReturn(nil))
	assert.Equal(t, 0.0, TotalReturn([]float64{100}))
	assert.Equal(t, 0.0, TotalReturn([]float64{0, 100}))
}

func TestAvgTradeDuration(t *testing.T) {
	trades := []types.Trade{
		{PnL: floatPtr(10), DurationDays: intPtr(5)},
		{PnL: floatPtr(-5), DurationDays: intPtr(15)},
	}
	assert.InDelta(t, 10.0, AvgTradeDuration(trades), 1e-9)
}

func TestAvgWinningAndLosingTrade(t *testing.T) {
	trades := []types.Trade{
		{PnL: floatPtr(100)},
		{PnL: floatPtr(300)},
		{PnL: floatPtr(-50)},
		{PnL: floatPtr(-150)},
	}
	assert.InDelta(t, 200.0, AvgWinningTrade(trades), 1e-9)
	assert.InDelta(t, -100.0, AvgLosingTrade(trades), 1e-9)
}

func TestMonthlyReturns_DropsFirstRowAndRounds(t *testing.T) {
	dates := []time.Time{
		time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	values := []float64{100, 110, 99}

	rows := MonthlyReturns(dates, values)
	if assertLen(t, rows, 2) {
		assert.Equal(t, 2020, rows[0].Year)
		assert.Equal(t, 2, rows[0].Month)
		assert.InDelta(t, 10.0, rows[0].ReturnPct, 1e-9)
		assert.Equal(t, 3, rows[1].Month)
		assert.InDelta(t, -10.0, rows[1].ReturnPct, 1e-9)
	}
}

func TestMonthlyReturns_SingleMonthReturnsNil(t *testing.T) {
	dates := []time.Time{time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)}
	values := []float64{100}
	assert.Nil(t, MonthlyReturns(dates, values))
}

func TestComputeAll_EmptySnapshotsReturnsEmptyMap(t *testing.T) {
	result := ComputeAll(nil, nil)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func assertLen(t *testing.T, rows []MonthlyReturn, n int) bool {
	t.Helper()
	return assert.Len(t, rows, n)
}
