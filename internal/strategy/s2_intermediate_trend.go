package strategy

import (
	"github.com/whitelight/quantengine/internal/indicators"
	"github.com/whitelight/quantengine/pkg/types"
)

const (
	s2Name   = "S2_IntermediateTrend"
	s2Weight = 0.15
)

// IntermediateTrend is S2: a 20/100 SMA crossover filter.
type IntermediateTrend struct{}

func NewIntermediateTrend() *IntermediateTrend { return &IntermediateTrend{} }

func (s *IntermediateTrend) Name() string    { return s2Name }
func (s *IntermediateTrend) Weight() float64 { return s2Weight }

func (s *IntermediateTrend) Compute(history types.BarHistory) types.Signal {
	c := closes(history)
	if len(c) < 100 {
		return neutralSignal(s2Name, s2Weight, nil)
	}

	sma20 := indicators.Last(indicators.SMA(c, 20))
	sma100 := indicators.Last(indicators.SMA(c, 100))
	last := c[len(c)-1]

	if isNaN(sma20) || isNaN(sma100) {
		return neutralSignal(s2Name, s2Weight, nil)
	}

	meta := map[string]any{"sma20": sma20, "sma100": sma100}

	aboveSMA20 := last > sma20
	smaBullish := sma20 > sma100

	switch {
	case aboveSMA20 && smaBullish:
		return newSignal(s2Name, s2Weight, types.StrongBull, 1.0, meta)
	case aboveSMA20:
		return newSignal(s2Name, s2Weight, types.Bull, 0.3, meta)
	case smaBullish:
		return newSignal(s2Name, s2Weight, types.Neutral, 0.0, meta)
	default:
		return newSignal(s2Name, s2Weight, types.Bear, -0.5, meta)
	}
}
