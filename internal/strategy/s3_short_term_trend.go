package strategy

import (
	"github.com/whitelight/quantengine/internal/indicators"
	"github.com/whitelight/quantengine/pkg/types"
)

const (
	s3Name   = "S3_ShortTermTrend"
	s3Weight = 0.10
)

// ShortTermTrend is S3: a 10/30 SMA crossover filter.
type ShortTermTrend struct{}

func NewShortTermTrend() *ShortTermTrend { return &ShortTermTrend{} }

func (s *ShortTermTrend) Name() string    { return s3Name }
func (s *ShortTermTrend) Weight() float64 { return s3Weight }

func (s *ShortTermTrend) Compute(history types.BarHistory) types.Signal {
	c := closes(history)
	if len(c) < 30 {
		return neutralSignal(s3Name, s3Weight, nil)
	}

	sma10 := indicators.Last(indicators.SMA(c, 10))
	sma30 := indicators.Last(indicators.SMA(c, 30))
	last := c[len(c)-1]

	if isNaN(sma10) || isNaN(sma30) {
		return neutralSignal(s3Name, s3Weight, nil)
	}

	meta := map[string]any{"sma10": sma10, "sma30": sma30}

	crossedUp := sma10 > sma30
	aboveSMA10 := last > sma10

	switch {
	case crossedUp && aboveSMA10:
		return newSignal(s3Name, s3Weight, types.StrongBull, 1.0, meta)
	case crossedUp:
		return newSignal(s3Name, s3Weight, types.Bull, 0.5, meta)
	case aboveSMA10:
		return newSignal(s3Name, s3Weight, types.Neutral, 0.0, meta)
	default:
		return newSignal(s3Name, s3Weight, types.Bear, -0.3, meta)
	}
}
