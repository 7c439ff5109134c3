// Package indicators implements the pure, stateless rolling computations
// consumed by the sub-strategy layer. Every function is deterministic for a
// given input series: identical input produces bit-identical output, modulo
// platform floating-point differences (double precision throughout).
//
// Each function returns a series the same length as its input, with a
// leading warmup region filled with math.NaN() wherever fewer than the
// required number of observations are available, or the underlying formula
// is undefined (e.g. division by zero).
package indicators

import "math"

const tradingDaysPerYear = 252

// SMA is the arithmetic mean over the trailing n values. Undefined for the
// first n-1 positions.
func SMA(x []float64, n int) []float64 {
	out := nanSeries(len(x))
	if n <= 0 {
		return out
	}
	sum := 0.0
	for i, v := range x {
		sum += v
		if i >= n {
			sum -= x[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// ROC is the rate of change: (x[t] / x[t-n] - 1) * 100.
func ROC(x []float64, n int) []float64 {
	out := nanSeries(len(x))
	if n <= 0 {
		return out
	}
	for i := n; i < len(x); i++ {
		if x[i-n] == 0 {
			continue
		}
		out[i] = (x[i]/x[i-n] - 1) * 100
	}
	return out
}

// RSI is the Wilder-smoothed relative strength index. Smoothed averages use
// the exponential recurrence with alpha = 1/n and require a minimum of n
// observations. When avg_loss is zero the result is undefined (NaN).
func RSI(x []float64, n int) []float64 {
	out := nanSeries(len(x))
	if n <= 0 || len(x) < n+1 {
		return out
	}

	gains := make([]float64, len(x))
	losses := make([]float64, len(x))
	for i := 1; i < len(x); i++ {
		delta := x[i] - x[i-1]
		gains[i] = math.Max(delta, 0)
		losses[i] = math.Max(-delta, 0)
	}

	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= n; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(n)
	avgLoss /= float64(n)

	if avgLoss != 0 {
		rs := avgGain / avgLoss
		out[n] = 100 - 100/(1+rs)
	}

	for i := n + 1; i < len(x); i++ {
		avgGain = (avgGain*float64(n-1) + gains[i]) / float64(n)
		avgLoss = (avgLoss*float64(n-1) + losses[i]) / float64(n)
		if avgLoss == 0 {
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// BollingerBands returns the upper band, lower band, and %B series for a
// window of length n and a band width of k standard deviations. %B is
// undefined whenever the band width is zero.
func BollingerBands(x []float64, n int, k float64) (upper, lower, percentB []float64) {
	mid := SMA(x, n)
	sd := rollingStd(x, n)
	upper = nanSeries(len(x))
	lower = nanSeries(len(x))
	percentB = nanSeries(len(x))
	for i := range x {
		if math.IsNaN(mid[i]) || math.IsNaN(sd[i]) {
			continue
		}
		upper[i] = mid[i] + k*sd[i]
		lower[i] = mid[i] - k*sd[i]
		width := upper[i] - lower[i]
		if width != 0 {
			percentB[i] = (x[i] - lower[i]) / width
		}
	}
	return upper, lower, percentB
}

// RealizedVolatility is the annualized standard deviation of log returns
// over a trailing window of n observations, using a sqrt(252) multiplier.
func RealizedVolatility(x []float64, n int) []float64 {
	out := nanSeries(len(x))
	if n <= 0 || len(x) < n+1 {
		return out
	}
	logReturns := make([]float64, len(x))
	logReturns[0] = math.NaN()
	for i := 1; i < len(x); i++ {
		if x[i-1] <= 0 || x[i] <= 0 {
			logReturns[i] = math.NaN()
			continue
		}
		logReturns[i] = math.Log(x[i] / x[i-1])
	}
	sd := rollingStd(logReturns, n)
	for i := range out {
		if !math.IsNaN(sd[i]) {
			out[i] = sd[i] * math.Sqrt(tradingDaysPerYear)
		}
	}
	return out
}

// LinearRegressionSlope is the OLS slope of x on 0..n-1 over each trailing
// window of length n. The closed-form denominator is zero only when n <= 1.
func LinearRegressionSlope(x []float64, n int) []float64 {
	out := nanSeries(len(x))
	if n <= 1 {
		return out
	}

	var sumT, sumT2 float64
	for i := 0; i < n; i++ {
		t := float64(i)
		sumT += t
		sumT2 += t * t
	}
	denom := float64(n)*sumT2 - sumT*sumT
	if denom == 0 {
		return out
	}

	for end := n - 1; end < len(x); end++ {
		window := x[end-n+1 : end+1]
		var sumY, sumTY float64
		hasNaN := false
		for i, v := range window {
			if math.IsNaN(v) {
				hasNaN = true
				break
			}
			sumY += v
			sumTY += float64(i) * v
		}
		if hasNaN {
			continue
		}
		out[end] = (float64(n)*sumTY - sumT*sumY) / denom
	}
	return out
}

// ZScore is (x[t] - sma(x,n)) / std(x,n); undefined when std is zero.
func ZScore(x []float64, n int) []float64 {
	out := nanSeries(len(x))
	mean := SMA(x, n)
	sd := rollingStd(x, n)
	for i := range x {
		if math.IsNaN(mean[i]) || math.IsNaN(sd[i]) || sd[i] == 0 {
			continue
		}
		out[i] = (x[i] - mean[i]) / sd[i]
	}
	return out
}

// ATR is the simple moving average of the true range over n observations.
func ATR(high, low, close []float64, n int) []float64 {
	tr := trueRange(high, low, close)
	return SMA(tr, n)
}

// AtrPercentileWindow is the trailing window size used by AtrPercentile,
// per the fixed 252-observation lookback specified for volatility regime
// ranking.
const AtrPercentileWindow = 252

// AtrPercentile is the percentile rank (fraction of trailing observations
// strictly less than the current ATR) within a rolling 252-observation
// distribution of the n-period ATR. Undefined until 252 ATR observations
// are available.
func AtrPercentile(high, low, close []float64, n int) []float64 {
	atr := ATR(high, low, close, n)
	out := nanSeries(len(atr))
	for end := AtrPercentileWindow - 1; end < len(atr); end++ {
		window := atr[end-AtrPercentileWindow+1 : end+1]
		cur := atr[end]
		if math.IsNaN(cur) {
			continue
		}
		count := 0
		total := 0
		for _, v := range window {
			if math.IsNaN(v) {
				continue
			}
			total++
			if v < cur {
				count++
			}
		}
		if total < AtrPercentileWindow {
			continue
		}
		out[end] = float64(count) / float64(total)
	}
	return out
}

// Last returns the most recent value of a series, or NaN for an empty
// series. Sub-strategies use this to read "today's" indicator value.
func Last(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

func trueRange(high, low, close []float64) []float64 {
	out := nanSeries(len(high))
	for i := range high {
		if i == 0 {
			out[i] = high[i] - low[i]
			continue
		}
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// rollingStd computes the sample standard deviation (ddof=1) over a
// trailing window of n, matching pandas' default rolling().std().
func rollingStd(x []float64, n int) []float64 {
	out := nanSeries(len(x))
	if n <= 1 {
		return out
	}
	for end := n - 1; end < len(x); end++ {
		window := x[end-n+1 : end+1]
		hasNaN := false
		mean := 0.0
		for _, v := range window {
			if math.IsNaN(v) {
				hasNaN = true
				break
			}
			mean += v
		}
		if hasNaN {
			continue
		}
		mean /= float64(n)
		var sumSq float64
		for _, v := range window {
			d := v - mean
			sumSq += d * d
		}
		out[end] = math.Sqrt(sumSq / float64(n-1))
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
