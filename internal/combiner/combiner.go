// Package combiner implements the stateful signal combiner (C3): it maps a
// day's sub-strategy signals and the underlying index history to a single
// TargetAllocation, applying volatility targeting, a crash-sprint override
// for confirmed high-volatility downtrends, and a no-direct-flip guard
// against whipsawing between long and inverse exposure.
package combiner

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/whitelight/quantengine/internal/indicators"
	"github.com/whitelight/quantengine/pkg/types"
)

const (
	targetVol          = 0.20
	sqqqSprintMaxDays  = 15
	sqqqSprintVolMin   = 0.25
	defaultVol20       = 0.20
	smaPeriod          = 200
	volWindow          = 20
)

var sqqqSprintPct = decimal.NewFromFloat(0.30)

// Combiner carries state across sequential daily evaluations of a single
// backtest or live run. A Combiner must never be shared between independent
// runs, and it is never reset mid-run.
type Combiner struct {
	previousAllocation *types.TargetAllocation
	daysBelowSMA       int
	logger             zerolog.Logger
}

// New returns a fresh combiner with no prior-day state.
func New() *Combiner {
	return &Combiner{logger: log.Logger}
}

// Combine produces the allocation for one trading day from the signal
// vector emitted by the sub-strategies and, optionally, the index bar
// history ending on that day.
func (c *Combiner) Combine(signals []types.Signal, history types.BarHistory) types.TargetAllocation {
	vol20 := c.resolveVol20(signals, history)
	belowSMA := c.resolveBelowSMA(signals, history)

	if belowSMA {
		c.daysBelowSMA++
	} else {
		c.daysBelowSMA = 0
	}

	longPct, inversePct := volatilityTargetedLong(vol20)

	sprintActive := belowSMA && c.daysBelowSMA <= sqqqSprintMaxDays && vol20 >= sqqqSprintVolMin
	if sprintActive {
		longPct = decimal.Zero
		inversePct = sqqqSprintPct
	}

	if c.previousAllocation != nil && directionalConflict(*c.previousAllocation, longPct, inversePct) {
		longPct = decimal.Zero
		inversePct = decimal.Zero
	}

	cashPct := decimal.NewFromInt(1).Sub(longPct).Sub(inversePct)

	composite := compositeScore(signals)

	alloc := types.TargetAllocation{
		TqqqPct:        longPct,
		SqqqPct:        inversePct,
		CashPct:        cashPct,
		Signals:        signals,
		CompositeScore: composite,
	}

	c.logger.Debug().
		Float64("vol20", vol20).
		Bool("below_sma", belowSMA).
		Int("days_below_sma", c.daysBelowSMA).
		Bool("sprint_active", sprintActive).
		Str("long_pct", longPct.String()).
		Str("inverse_pct", inversePct.String()).
		Str("cash_pct", cashPct.String()).
		Float64("composite_score", composite).
		Msg("combiner evaluated allocation")

	c.previousAllocation = &alloc
	return alloc
}

func volatilityTargetedLong(vol20 float64) (long, inverse decimal.Decimal) {
	if vol20 <= 0 {
		return decimal.NewFromInt(1), decimal.Zero
	}
	raw := targetVol / vol20
	if raw > 1.0 {
		raw = 1.0
	}
	return decimal.NewFromFloat(raw).Round(4), decimal.Zero
}

func directionalConflict(prev types.TargetAllocation, long, inverse decimal.Decimal) bool {
	prevLong := prev.TqqqPct.IsPositive()
	prevInverse := prev.SqqqPct.IsPositive()
	newLong := long.IsPositive()
	newInverse := inverse.IsPositive()
	return (prevLong && newInverse) || (prevInverse && newLong)
}

// resolveVol20 recomputes annualized 20-period realized volatility directly
// from history when enough bars are present, falling back to any S7_
// signal's carried metadata, and finally to the fixed default.
func (c *Combiner) resolveVol20(signals []types.Signal, history types.BarHistory) float64 {
	closes := history.Closes()
	if len(closes) >= volWindow+1 {
		v := indicators.Last(indicators.RealizedVolatility(closes, volWindow))
		if !isNaN(v) {
			return v
		}
	}
	for _, s := range signals {
		if strings.HasPrefix(s.StrategyName, "S7_") {
			if v, ok := s.Metadata["vol20"].(float64); ok {
				return v
			}
		}
	}
	c.logger.Warn().Msg("vol20 unavailable from history or S7 metadata, using default")
	return defaultVol20
}

// resolveBelowSMA recomputes the 200-day SMA status directly from history
// when enough bars are present, falling back to the complement of any S4_
// signal's above_200 metadata, and finally to false.
func (c *Combiner) resolveBelowSMA(signals []types.Signal, history types.BarHistory) bool {
	closes := history.Closes()
	if len(closes) >= smaPeriod {
		sma := indicators.Last(indicators.SMA(closes, smaPeriod))
		last := closes[len(closes)-1]
		if !isNaN(sma) {
			return last < sma
		}
	}
	for _, s := range signals {
		if strings.HasPrefix(s.StrategyName, "S4_") {
			if above, ok := s.Metadata["above_200"].(bool); ok {
				return !above
			}
		}
	}
	return false
}

func compositeScore(signals []types.Signal) float64 {
	var sum float64
	for _, s := range signals {
		sum += s.Weight * s.RawScore
	}
	return round6(sum)
}

func round6(v float64) float64 {
	return decimal.NewFromFloat(v).Round(6).InexactFloat64()
}

func isNaN(v float64) bool { return v != v }
