package strategy

import (
	"github.com/whitelight/quantengine/internal/indicators"
	"github.com/whitelight/quantengine/pkg/types"
)

const (
	s5Name   = "S5_MomentumVelocity"
	s5Weight = 0.15
)

// MomentumVelocity is S5: the rate of change of smoothed 14-day momentum,
// with a crash penalty for sharp 5-day drawdowns.
type MomentumVelocity struct{}

func NewMomentumVelocity() *MomentumVelocity { return &MomentumVelocity{} }

func (s *MomentumVelocity) Name() string    { return s5Name }
func (s *MomentumVelocity) Weight() float64 { return s5Weight }

func (s *MomentumVelocity) Compute(history types.BarHistory) types.Signal {
	c := closes(history)
	if len(c) < 20 {
		return neutralSignal(s5Name, s5Weight, nil)
	}

	roc14 := indicators.ROC(c, 14)
	smoothedSeries := indicators.SMA(roc14, 3)
	roc5 := indicators.ROC(c, 5)

	n := len(smoothedSeries)
	smoothed := smoothedSeries[n-1]
	prevSmoothed := smoothedSeries[n-2]
	last5 := indicators.Last(roc5)

	if isNaN(smoothed) || isNaN(prevSmoothed) {
		return neutralSignal(s5Name, s5Weight, nil)
	}

	velocity := smoothed - prevSmoothed
	meta := map[string]any{
		"smoothed": smoothed,
		"velocity": velocity,
		"roc5":     last5,
	}

	var strength types.SignalStrength
	var score float64
	switch {
	case smoothed > 0 && velocity > 0:
		strength, score = types.StrongBull, 1.0
	case smoothed > 0 && velocity <= 0:
		strength, score = types.Bull, 0.3
	case smoothed <= 0 && velocity > 0:
		strength, score = types.Neutral, 0.0
	default:
		strength, score = types.Bear, -0.7
	}

	if !isNaN(last5) && last5 < -5.0 {
		score -= 0.2
		if score < -1.0 {
			score = -1.0
		}
		switch {
		case score <= -0.5:
			strength = types.StrongBear
		case score < 0:
			strength = types.Bear
		}
	}

	return newSignal(s5Name, s5Weight, strength, score, meta)
}
