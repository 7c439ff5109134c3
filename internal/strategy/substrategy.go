// Package strategy implements the seven deterministic sub-strategies
// (S1-S7) that each read a bar history and emit a types.Signal. Each
// sub-strategy is a closed variant with a fixed name prefix, a fixed
// default weight, and a pure Compute function; the combiner looks
// sub-strategies up by name prefix, never by position.
package strategy

import (
	"math"

	"github.com/whitelight/quantengine/internal/indicators"
	"github.com/whitelight/quantengine/pkg/types"
)

// SubStrategy is the shared contract every S1-S7 variant implements.
type SubStrategy interface {
	// Name is the stable strategy identifier string used as the signal's
	// StrategyName, e.g. "S1_PrimaryTrend".
	Name() string
	// Weight is this sub-strategy's fixed ensemble weight.
	Weight() float64
	// Compute evaluates the strategy on the given price history, which is
	// the strict left-closed, right-closed slice ending on the current
	// trading day.
	Compute(history types.BarHistory) types.Signal
}

// All returns the seven sub-strategies in their declaration order, the
// order the engine iterates them in and the order signals are returned.
func All() []SubStrategy {
	return []SubStrategy{
		NewPrimaryTrend(),
		NewIntermediateTrend(),
		NewShortTermTrend(),
		NewTrendStrength(),
		NewMomentumVelocity(),
		NewMeanReversionBollinger(),
		NewVolatilityRegime(),
	}
}

func newSignal(name string, weight float64, strength types.SignalStrength, rawScore float64, meta map[string]any) types.Signal {
	if meta == nil {
		meta = map[string]any{}
	}
	return types.Signal{
		StrategyName: name,
		Strength:     strength,
		RawScore:     clamp(rawScore, -1, 1),
		Weight:       clamp(weight, 0, 1),
		Metadata:     meta,
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// neutralSignal is the conservative fallback every sub-strategy returns
// when it lacks enough history to evaluate its rule, or an indicator it
// depends on is undefined (NaN).
func neutralSignal(name string, weight float64, meta map[string]any) types.Signal {
	return newSignal(name, weight, types.Neutral, 0, meta)
}

func closes(h types.BarHistory) []float64 { return h.Closes() }

func lastOf(series []float64) float64 { return indicators.Last(series) }
