package combiner

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitelight/quantengine/pkg/types"
)

func s4Signal(above200 bool) types.Signal {
	return types.Signal{
		StrategyName: "S4_TrendStrength",
		Metadata:     map[string]any{"above_200": above200},
	}
}

func s7Signal(vol20 float64) types.Signal {
	return types.Signal{
		StrategyName: "S7_VolatilityRegime",
		Metadata:     map[string]any{"vol20": vol20},
	}
}

func TestCombine_ZeroVol20DefaultsToFullLong(t *testing.T) {
	c := New()
	signals := []types.Signal{s4Signal(true), s7Signal(0)}
	alloc := c.Combine(signals, nil)

	assert.True(t, alloc.TqqqPct.Equal(decimal.NewFromInt(1)))
	assert.True(t, alloc.SqqqPct.IsZero())
}

func TestCombine_CrashSprintActivatesAndExpires(t *testing.T) {
	c := New()
	signals := []types.Signal{s4Signal(false), s7Signal(0.35)}

	for day := 1; day <= 15; day++ {
		alloc := c.Combine(signals, nil)
		require.Truef(t, alloc.SqqqPct.GreaterThan(decimal.Zero), "day %d expected sprint inverse allocation", day)
		assert.True(t, alloc.TqqqPct.IsZero())
	}

	alloc16 := c.Combine(signals, nil)
	assert.True(t, alloc16.SqqqPct.IsZero(), "sprint must expire on day 16")
}

func TestCombine_NoDirectFlipForcesCash(t *testing.T) {
	c := New()

	longSignals := []types.Signal{s4Signal(true), s7Signal(0.10)}
	longAlloc := c.Combine(longSignals, nil)
	require.True(t, longAlloc.TqqqPct.GreaterThan(decimal.Zero))

	sprintSignals := []types.Signal{s4Signal(false), s7Signal(0.35)}
	flipAlloc := c.Combine(sprintSignals, nil)

	assert.True(t, flipAlloc.TqqqPct.IsZero())
	assert.True(t, flipAlloc.SqqqPct.IsZero())
	assert.True(t, flipAlloc.CashPct.Equal(decimal.NewFromInt(1)))

	// The day after the forced-cash day, the sprint may finally engage since
	// the previous allocation (cash) no longer conflicts.
	nextAlloc := c.Combine(sprintSignals, nil)
	assert.True(t, nextAlloc.SqqqPct.GreaterThan(decimal.Zero))
}

func TestCombine_CompositeScoreRounding(t *testing.T) {
	c := New()
	signals := []types.Signal{
		{StrategyName: "S1_PrimaryTrend", Weight: 0.25, RawScore: 1.0},
		{StrategyName: "S2_IntermediateTrend", Weight: 0.15, RawScore: -0.5},
	}
	alloc := c.Combine(signals, nil)
	assert.InDelta(t, 0.25-0.075, alloc.CompositeScore, 1e-9)
}
