// Package engine orchestrates one evaluation of the strategy ensemble: run
// every sub-strategy over the day's history slice, then hand the signal
// vector to the combiner for an allocation decision.
package engine

import (
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/whitelight/quantengine/internal/combiner"
	"github.com/whitelight/quantengine/internal/strategy"
	"github.com/whitelight/quantengine/pkg/types"
)

const weightTolerance = 0.01

// Engine wires the fixed sub-strategy set to a stateful combiner.
type Engine struct {
	subStrategies []strategy.SubStrategy
	combiner      *combiner.Combiner
	logger        zerolog.Logger
}

// New builds an engine over the default sub-strategy set (S1-S7) and a
// fresh combiner. The returned Engine is stateful; reuse the same instance
// across a backtest's trading days.
func New() *Engine {
	return NewWithStrategies(strategy.All())
}

// NewWithStrategies builds an engine over a caller-supplied sub-strategy
// set, useful for tests that exercise a subset of S1-S7.
func NewWithStrategies(subs []strategy.SubStrategy) *Engine {
	e := &Engine{
		subStrategies: subs,
		combiner:      combiner.New(),
		logger:        log.Logger,
	}
	e.checkWeights()
	return e
}

// Evaluate runs every configured sub-strategy over history (the strict
// left-closed, right-closed slice ending on the current trading day),
// collects the signals in declaration order, and returns the combiner's
// allocation for the day.
func (e *Engine) Evaluate(history types.BarHistory) types.TargetAllocation {
	signals := make([]types.Signal, 0, len(e.subStrategies))
	for _, sub := range e.subStrategies {
		signals = append(signals, sub.Compute(history))
	}
	return e.combiner.Combine(signals, history)
}

func (e *Engine) checkWeights() {
	var sum float64
	for _, sub := range e.subStrategies {
		sum += sub.Weight()
	}
	if math.Abs(sum-1.0) > weightTolerance {
		e.logger.Warn().Float64("weight_sum", sum).Msg("configured sub-strategy weights diverge from 1.0")
	}
}
