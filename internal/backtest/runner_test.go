package backtest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitelight/quantengine/pkg/types"
)

func bars(n int, start time.Time, close func(i int) float64) types.BarHistory {
	out := make(types.BarHistory, n)
	for i := 0; i < n; i++ {
		c := close(i)
		out[i] = types.Bar{
			Date:  start.AddDate(0, 0, i),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	return out
}

func defaultConfig(start, end time.Time) types.BacktestConfig {
	return types.BacktestConfig{
		StartDate:      start,
		EndDate:        end,
		InitialCapital: decimal.NewFromInt(100000),
		WarmupDays:     260,
	}
}

func TestRun_ConstantPrice(t *testing.T) {
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 560 // > warmup(260) + 300 trading days
	index := bars(n, start, func(i int) float64 { return 3000 })
	lle := bars(n, start, func(i int) float64 { return 50 })
	ie := bars(n, start, func(i int) float64 { return 50 })

	end := start.AddDate(0, 0, n-1)
	cfg := defaultConfig(start, end)
	r := New(cfg, "LLE", "IE")

	result := r.Run(index, lle, ie)
	require.NotEmpty(t, result.Snapshots)

	for _, s := range result.Snapshots {
		assert.True(t, s.PortfolioValue.GreaterThan(decimal.Zero))
		assert.GreaterOrEqual(t, s.Cash.InexactFloat64(), -1.0)
		assert.GreaterOrEqual(t, s.LLEShares, int64(0))
		assert.GreaterOrEqual(t, s.IEShares, int64(0))
		assert.False(t, s.LLEShares > 0 && s.IEShares > 0)
	}

	dd := result.Metrics["max_drawdown"]
	assert.InDelta(t, 0, dd, 1e-6)

	tr := result.Metrics["total_return"]
	assert.GreaterOrEqual(t, tr, 0.0)
	assert.LessOrEqual(t, tr, 0.001)
}

func TestRun_MonotoneUptrend(t *testing.T) {
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 760
	index := bars(n, start, func(i int) float64 { return 3000 * pow(1.003, i) })
	lle := bars(n, start, func(i int) float64 { return 60 * pow(1.009, i) })
	ie := bars(n, start, func(i int) float64 { return 30 * pow(0.991, i) })

	end := start.AddDate(0, 0, n-1)
	cfg := defaultConfig(start, end)
	r := New(cfg, "LLE", "IE")

	result := r.Run(index, lle, ie)
	require.NotEmpty(t, result.Snapshots)

	for i := 1; i < len(result.Snapshots); i++ {
		assert.True(t, result.Snapshots[i].Date.After(result.Snapshots[i-1].Date))
	}

	last := result.Snapshots[len(result.Snapshots)-1]
	assert.True(t, last.PortfolioValue.GreaterThan(cfg.InitialCapital))
}

func TestRun_SingleDayRange(t *testing.T) {
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 300
	index := bars(n, start, func(i int) float64 { return 3000 })
	lle := bars(n, start, func(i int) float64 { return 50 })
	ie := bars(n, start, func(i int) float64 { return 50 })

	day := start.AddDate(0, 0, n-1)
	cfg := defaultConfig(day, day)
	r := New(cfg, "LLE", "IE")

	result := r.Run(index, lle, ie)
	require.Len(t, result.Snapshots, 1)
}

func TestRun_ImpossibleDateRangeReturnsEmptyResult(t *testing.T) {
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 10
	index := bars(n, start, func(i int) float64 { return 3000 })
	lle := bars(n, start, func(i int) float64 { return 50 })
	ie := bars(n, start, func(i int) float64 { return 50 })

	future := start.AddDate(5, 0, 0)
	cfg := defaultConfig(future, future.AddDate(0, 1, 0))
	r := New(cfg, "LLE", "IE")

	result := r.Run(index, lle, ie)
	assert.Empty(t, result.Snapshots)
	assert.Empty(t, result.Trades)
	assert.Empty(t, result.Metrics)
}

func pow(base float64, exp int) float64 {
	out := 1.0
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}
