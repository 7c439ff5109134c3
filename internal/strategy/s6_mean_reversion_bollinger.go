package strategy

import (
	"github.com/whitelight/quantengine/internal/indicators"
	"github.com/whitelight/quantengine/pkg/types"
)

const (
	s6Name     = "S6_MeanReversionBollinger"
	s6Weight   = 0.15
	s6BandLen  = 20
	s6BandK    = 2.0
	s6SMALen   = 200
)

// MeanReversionBollinger is S6: a %B mean-reversion filter gated by the
// 200-day macro trend.
type MeanReversionBollinger struct{}

func NewMeanReversionBollinger() *MeanReversionBollinger { return &MeanReversionBollinger{} }

func (s *MeanReversionBollinger) Name() string    { return s6Name }
func (s *MeanReversionBollinger) Weight() float64 { return s6Weight }

func (s *MeanReversionBollinger) Compute(history types.BarHistory) types.Signal {
	c := closes(history)
	if len(c) < s6SMALen {
		return neutralSignal(s6Name, s6Weight, nil)
	}

	_, _, percentB := indicators.BollingerBands(c, s6BandLen, s6BandK)
	sma200 := indicators.Last(indicators.SMA(c, s6SMALen))
	pctB := indicators.Last(percentB)
	last := c[len(c)-1]

	if isNaN(pctB) || isNaN(sma200) {
		return neutralSignal(s6Name, s6Weight, nil)
	}

	macroBullish := last > sma200
	meta := map[string]any{
		"percent_b":     pctB,
		"sma200":        sma200,
		"macro_bullish": macroBullish,
	}

	switch {
	case pctB < 0.05:
		return newSignal(s6Name, s6Weight, types.Bull, 0.5, meta)
	case pctB < 0.2 && macroBullish:
		return newSignal(s6Name, s6Weight, types.StrongBull, 1.0, meta)
	case pctB < 0.2 && !macroBullish:
		return newSignal(s6Name, s6Weight, types.Neutral, 0.0, meta)
	case pctB >= 0.2 && pctB <= 0.5 && !macroBullish:
		return newSignal(s6Name, s6Weight, types.Bear, -0.5, meta)
	case pctB >= 0.3 && pctB <= 0.8 && macroBullish:
		return newSignal(s6Name, s6Weight, types.Bull, 0.8, meta)
	case pctB > 0.95 && macroBullish:
		return newSignal(s6Name, s6Weight, types.Bull, 0.3, meta)
	case pctB > 0.95 && !macroBullish:
		return newSignal(s6Name, s6Weight, types.Bear, -0.3, meta)
	default:
		return newSignal(s6Name, s6Weight, types.Neutral, 0.0, meta)
	}
}
