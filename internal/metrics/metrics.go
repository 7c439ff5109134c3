// Package metrics computes the aggregate performance and trade statistics
// (C6) from a backtest's portfolio-value snapshot sequence and completed
// trade sequence.
package metrics

import (
	"math"
	"time"

	"github.com/whitelight/quantengine/pkg/types"
)

const (
	tradingDaysPerYear = 252
	riskFreeRate       = 0.04
)

// MonthlyReturn is one row of the month-end return table.
type MonthlyReturn struct {
	Year      int
	Month     int
	ReturnPct float64
}

// TotalReturn is final/initial - 1; zero for degenerate inputs.
func TotalReturn(values []float64) float64 {
	if len(values) < 2 || values[0] <= 0 {
		return 0
	}
	return values[len(values)-1]/values[0] - 1
}

// AnnualReturn is the CAGR implied by the value series over its observed
// length, annualized on a 252-trading-day year.
func AnnualReturn(values []float64) float64 {
	n := len(values) - 1
	if n <= 0 || values[0] <= 0 || values[len(values)-1] <= 0 {
		return 0
	}
	ratio := values[len(values)-1] / values[0]
	return math.Pow(ratio, float64(tradingDaysPerYear)/float64(n)) - 1
}

// MaxDrawdown is the largest peak-to-trough decline along the running
// maximum, returned as a positive fraction.
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func dailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, values[i]/values[i-1]-1)
	}
	return out
}

// SharpeRatio is the annualized mean excess return over its standard
// deviation; zero when the standard deviation is zero.
func SharpeRatio(values []float64) float64 {
	returns := dailyReturns(values)
	if len(returns) == 0 {
		return 0
	}
	dailyRF := riskFreeRate / tradingDaysPerYear
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - dailyRF
	}
	mean := meanOf(excess)
	sd := stdOf(excess, mean)
	if sd == 0 {
		return 0
	}
	return mean / sd * math.Sqrt(tradingDaysPerYear)
}

// SortinoRatio is the annualized mean excess return over the RMS of its
// downside deviations; zero when there are no downside periods.
func SortinoRatio(values []float64) float64 {
	returns := dailyReturns(values)
	if len(returns) == 0 {
		return 0
	}
	dailyRF := riskFreeRate / tradingDaysPerYear
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - dailyRF
	}
	mean := meanOf(excess)

	var sumSqDown float64
	var downCount int
	for _, e := range excess {
		if e < 0 {
			sumSqDown += e * e
			downCount++
		}
	}
	if downCount == 0 {
		return 0
	}
	rms := math.Sqrt(sumSqDown / float64(len(excess)))
	if rms == 0 {
		return 0
	}
	return mean / rms * math.Sqrt(tradingDaysPerYear)
}

// CalmarRatio is CAGR divided by max drawdown; zero when max drawdown is
// zero.
func CalmarRatio(values []float64) float64 {
	dd := MaxDrawdown(values)
	if dd == 0 {
		return 0
	}
	return AnnualReturn(values) / dd
}

func completedTrades(trades []types.Trade) []types.Trade {
	out := make([]types.Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsCompleted() {
			out = append(out, t)
		}
	}
	return out
}

// WinRate is the fraction of completed trades with positive PnL.
func WinRate(trades []types.Trade) float64 {
	completed := completedTrades(trades)
	if len(completed) == 0 {
		return 0
	}
	wins := 0
	for _, t := range completed {
		if *t.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(completed))
}

// ProfitFactor is gross profit over gross loss; +Inf when there are gains
// and no losses, zero when there are no completed trades.
func ProfitFactor(trades []types.Trade) float64 {
	completed := completedTrades(trades)
	if len(completed) == 0 {
		return 0
	}
	var gain, loss float64
	for _, t := range completed {
		if *t.PnL > 0 {
			gain += *t.PnL
		} else {
			loss += -*t.PnL
		}
	}
	if loss == 0 {
		if gain > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return gain / loss
}

// AvgTradeDuration is the mean holding duration, in calendar days, of
// completed trades.
func AvgTradeDuration(trades []types.Trade) float64 {
	completed := completedTrades(trades)
	if len(completed) == 0 {
		return 0
	}
	var sum float64
	for _, t := range completed {
		if t.DurationDays != nil {
			sum += float64(*t.DurationDays)
		}
	}
	return sum / float64(len(completed))
}

// AvgWinningTrade is the mean PnL of completed trades with a positive PnL.
func AvgWinningTrade(trades []types.Trade) float64 {
	return avgPnLWhere(trades, func(pnl float64) bool { return pnl > 0 })
}

// AvgLosingTrade is the mean PnL of completed trades with a non-positive
// PnL.
func AvgLosingTrade(trades []types.Trade) float64 {
	return avgPnLWhere(trades, func(pnl float64) bool { return pnl <= 0 })
}

func avgPnLWhere(trades []types.Trade, predicate func(float64) bool) float64 {
	completed := completedTrades(trades)
	var sum float64
	var count int
	for _, t := range completed {
		if predicate(*t.PnL) {
			sum += *t.PnL
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// MonthlyReturns resamples the dated value series to month-end observations
// and computes the month-over-month percent change, dropping the first
// (undefined) row and rounding to two decimals. Returns nil when fewer than
// two month-end observations are available.
func MonthlyReturns(dates []time.Time, values []float64) []MonthlyReturn {
	if len(dates) != len(values) || len(dates) == 0 {
		return nil
	}

	type monthEnd struct {
		year, month int
		value       float64
		date        time.Time
	}
	var ends []monthEnd
	for i, d := range dates {
		y, m, _ := d.Date()
		if i == len(dates)-1 || dates[i+1].Month() != d.Month() || dates[i+1].Year() != d.Year() {
			ends = append(ends, monthEnd{year: y, month: int(m), value: values[i], date: d})
		}
	}

	if len(ends) < 2 {
		return nil
	}

	out := make([]MonthlyReturn, 0, len(ends)-1)
	for i := 1; i < len(ends); i++ {
		prev := ends[i-1].value
		if prev == 0 {
			continue
		}
		pct := (ends[i].value/prev - 1) * 100
		out = append(out, MonthlyReturn{
			Year:      ends[i].year,
			Month:     ends[i].month,
			ReturnPct: round2(pct),
		})
	}
	return out
}

// ComputeAll aggregates every metric into a name-keyed map, rounding each
// to a sensible display precision. Returns an empty (non-nil) map for an
// empty snapshot sequence.
func ComputeAll(values []float64, trades []types.Trade) map[string]float64 {
	if len(values) == 0 {
		return map[string]float64{}
	}
	return map[string]float64{
		"total_return":       round4(TotalReturn(values)),
		"annual_return":      round4(AnnualReturn(values)),
		"max_drawdown":       round4(MaxDrawdown(values)),
		"sharpe_ratio":       round4(SharpeRatio(values)),
		"sortino_ratio":      round4(SortinoRatio(values)),
		"calmar_ratio":       round4(CalmarRatio(values)),
		"win_rate":           round4(WinRate(trades)),
		"profit_factor":      round4(ProfitFactor(trades)),
		"avg_trade_duration": round4(AvgTradeDuration(trades)),
		"avg_winning_trade":  round4(AvgWinningTrade(trades)),
		"avg_losing_trade":   round4(AvgLosingTrade(trades)),
	}
}

func meanOf(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

func stdOf(x []float64, mean float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range x {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(x)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	if math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*10000) / 10000
}
