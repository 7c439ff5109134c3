package strategy

import (
	"github.com/whitelight/quantengine/internal/indicators"
	"github.com/whitelight/quantengine/pkg/types"
)

const (
	s1Name       = "S1_PrimaryTrend"
	s1Weight     = 0.25
	s1Hysteresis = 0.005
)

// PrimaryTrend is S1: the primary trend filter, applying hysteresis around
// the 50- and 250-day SMAs so a single whipsar day can't flip the regime.
type PrimaryTrend struct{}

func NewPrimaryTrend() *PrimaryTrend { return &PrimaryTrend{} }

func (s *PrimaryTrend) Name() string    { return s1Name }
func (s *PrimaryTrend) Weight() float64 { return s1Weight }

func (s *PrimaryTrend) Compute(history types.BarHistory) types.Signal {
	c := closes(history)
	if len(c) < 251 {
		return neutralSignal(s1Name, s1Weight, nil)
	}

	sma50 := indicators.SMA(c, 50)
	sma250 := indicators.SMA(c, 250)

	above50 := confirmedAbove(c, sma50, s1Hysteresis)
	above250 := confirmedAbove(c, sma250, s1Hysteresis)

	meta := map[string]any{
		"sma50":    indicators.Last(sma50),
		"sma250":   indicators.Last(sma250),
		"above50":  above50,
		"above250": above250,
	}

	switch {
	case above50 && above250:
		return newSignal(s1Name, s1Weight, types.StrongBull, 1.0, meta)
	case above250:
		return newSignal(s1Name, s1Weight, types.Bull, 0.3, meta)
	case above50:
		return newSignal(s1Name, s1Weight, types.Neutral, 0.1, meta)
	default:
		return newSignal(s1Name, s1Weight, types.StrongBear, -0.5, meta)
	}
}

// confirmedAbove reports whether the last two closes both exceed their
// corresponding SMA value scaled by (1 + hysteresis).
func confirmedAbove(c, sma []float64, hysteresis float64) bool {
	return twoDayHysteresis(c, sma, hysteresis, true)
}

// confirmedBelow reports whether the last two closes both fall below their
// corresponding SMA value scaled by (1 - hysteresis).
func confirmedBelow(c, sma []float64, hysteresis float64) bool {
	return twoDayHysteresis(c, sma, hysteresis, false)
}

func twoDayHysteresis(c, sma []float64, hysteresis float64, above bool) bool {
	n := len(c)
	if n < 2 || len(sma) != n {
		return false
	}
	for _, i := range [2]int{n - 2, n - 1} {
		if isNaN(sma[i]) {
			return false
		}
		if above {
			if !(c[i] > sma[i]*(1+hysteresis)) {
				return false
			}
		} else {
			if !(c[i] < sma[i]*(1-hysteresis)) {
				return false
			}
		}
	}
	return true
}

func isNaN(v float64) bool { return v != v }
