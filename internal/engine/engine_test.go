package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitelight/quantengine/internal/strategy"
	"github.com/whitelight/quantengine/pkg/types"
)

func flatHistory(n int, price float64) types.BarHistory {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make(types.BarHistory, n)
	for i := 0; i < n; i++ {
		out[i] = types.Bar{
			Date:  start.AddDate(0, 0, i),
			Open:  price,
			High:  price,
			Low:   price,
			Close: price,
		}
	}
	return out
}

func TestEvaluate_InsufficientHistoryKeepsInvariants(t *testing.T) {
	e := New()
	history := flatHistory(5, 100)
	alloc := e.Evaluate(history)

	require.Len(t, alloc.Signals, 7)
	for _, s := range alloc.Signals {
		assert.GreaterOrEqual(t, s.RawScore, -1.0)
		assert.LessOrEqual(t, s.RawScore, 1.0)
		assert.GreaterOrEqual(t, s.Weight, 0.0)
		assert.LessOrEqual(t, s.Weight, 1.0)
	}
	sum := alloc.TqqqPct.Add(alloc.SqqqPct).Add(alloc.CashPct)
	assert.InDelta(t, 1.0, sum.InexactFloat64(), 0.01)
}

func TestEvaluate_AtMostOneDirectionalAllocationPositive(t *testing.T) {
	e := New()
	history := flatHistory(260, 100)
	alloc := e.Evaluate(history)

	longPositive := alloc.TqqqPct.IsPositive()
	inversePositive := alloc.SqqqPct.IsPositive()
	assert.False(t, longPositive && inversePositive)
}

func TestEvaluate_DeterministicForFreshCombiner(t *testing.T) {
	history := flatHistory(260, 100)

	e1 := New()
	a1 := e1.Evaluate(history)

	e2 := New()
	a2 := e2.Evaluate(history)

	assert.True(t, a1.TqqqPct.Equal(a2.TqqqPct))
	assert.True(t, a1.SqqqPct.Equal(a2.SqqqPct))
	assert.Equal(t, a1.CompositeScore, a2.CompositeScore)
}

func TestNewWithStrategies_SubsetStillEvaluates(t *testing.T) {
	e := NewWithStrategies([]strategy.SubStrategy{strategy.NewPrimaryTrend()})
	history := flatHistory(260, 100)
	alloc := e.Evaluate(history)
	require.Len(t, alloc.Signals, 1)
}
