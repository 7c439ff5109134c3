package strategy

import (
	"github.com/whitelight/quantengine/internal/indicators"
	"github.com/whitelight/quantengine/pkg/types"
)

const (
	s4Name       = "S4_TrendStrength"
	s4Weight     = 0.10
	s4SlopeLen   = 60
	s4ZScoreLen  = 252
	s4SMALen     = 200
)

// TrendStrength is S4: trend strength from the 60-period regression slope
// of price, z-scored over a 252-period window, confirmed against the
// 200-day SMA.
type TrendStrength struct{}

func NewTrendStrength() *TrendStrength { return &TrendStrength{} }

func (s *TrendStrength) Name() string    { return s4Name }
func (s *TrendStrength) Weight() float64 { return s4Weight }

func (s *TrendStrength) Compute(history types.BarHistory) types.Signal {
	c := closes(history)
	if len(c) < s4SMALen {
		return neutralSignal(s4Name, s4Weight, nil)
	}

	slopeSeries := indicators.LinearRegressionSlope(c, s4SlopeLen)
	zSeries := indicators.ZScore(slopeSeries, s4ZScoreLen)
	sma200 := indicators.Last(indicators.SMA(c, s4SMALen))

	slope := indicators.Last(slopeSeries)
	z := indicators.Last(zSeries)
	last := c[len(c)-1]

	if isNaN(slope) || isNaN(sma200) {
		return neutralSignal(s4Name, s4Weight, nil)
	}
	// z may legitimately be undefined this early (slope history < 252); treat
	// as neutral-contributing zero rather than rejecting the whole signal.
	if isNaN(z) {
		z = 0
	}

	above200 := last > sma200
	meta := map[string]any{
		"above_200": above200,
		"sma200":    sma200,
		"slope":     slope,
		"z":         z,
	}

	switch {
	case slope > 0 && z > 0.5 && above200:
		return newSignal(s4Name, s4Weight, types.StrongBull, 1.0, meta)
	case slope > 0 && z >= 0 && z <= 0.5:
		return newSignal(s4Name, s4Weight, types.Bull, 0.5, meta)
	case slope > 0 && !above200:
		return newSignal(s4Name, s4Weight, types.Neutral, 0.0, meta)
	case slope < 0 && z < -0.5:
		return newSignal(s4Name, s4Weight, types.Bear, -0.5, meta)
	case slope < 0 && z >= -0.5 && z < 0:
		return newSignal(s4Name, s4Weight, types.Bear, -0.2, meta)
	default:
		return newSignal(s4Name, s4Weight, types.Neutral, 0.0, meta)
	}
}
