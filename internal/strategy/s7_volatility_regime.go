package strategy

import (
	"github.com/whitelight/quantengine/internal/indicators"
	"github.com/whitelight/quantengine/pkg/types"
)

const (
	s7Name    = "S7_VolatilityRegime"
	s7Weight  = 0.10
	s7VolFast = 20
	s7VolSlow = 60
	s7SMALen  = 100
)

// VolatilityRegime is S7: classifies the market by the ratio of fast to
// slow realized volatility, gated by the 100-day trend.
type VolatilityRegime struct{}

func NewVolatilityRegime() *VolatilityRegime { return &VolatilityRegime{} }

func (s *VolatilityRegime) Name() string    { return s7Name }
func (s *VolatilityRegime) Weight() float64 { return s7Weight }

func (s *VolatilityRegime) Compute(history types.BarHistory) types.Signal {
	c := closes(history)
	if len(c) < s7SMALen {
		return neutralSignal(s7Name, s7Weight, nil)
	}

	vol20 := indicators.Last(indicators.RealizedVolatility(c, s7VolFast))
	vol60 := indicators.Last(indicators.RealizedVolatility(c, s7VolSlow))
	sma100 := indicators.Last(indicators.SMA(c, s7SMALen))
	last := c[len(c)-1]

	if isNaN(vol20) || isNaN(vol60) || isNaN(sma100) {
		return neutralSignal(s7Name, s7Weight, nil)
	}

	ratio := 1.0
	if vol60 != 0 {
		ratio = vol20 / vol60
	}
	bullish := last > sma100

	meta := map[string]any{
		"vol20":   vol20,
		"vol60":   vol60,
		"ratio":   ratio,
		"bullish": bullish,
	}

	switch {
	case ratio > 2.0:
		return newSignal(s7Name, s7Weight, types.Bear, -0.3, meta)
	case ratio > 1.5 && ratio <= 2.0 && !bullish:
		return newSignal(s7Name, s7Weight, types.Bear, -0.5, meta)
	case ratio > 1.5 && ratio <= 2.0 && bullish:
		return newSignal(s7Name, s7Weight, types.Neutral, 0.0, meta)
	case ratio >= 0.8 && ratio <= 1.2 && bullish:
		return newSignal(s7Name, s7Weight, types.Bull, 0.5, meta)
	case ratio < 0.8 && bullish:
		return newSignal(s7Name, s7Weight, types.StrongBull, 1.0, meta)
	case ratio < 0.8 && !bullish:
		return newSignal(s7Name, s7Weight, types.Bear, -0.2, meta)
	default:
		return newSignal(s7Name, s7Weight, types.Neutral, 0.0, meta)
	}
}
