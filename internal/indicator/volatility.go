package indicator

import "math"

const tradingDaysPerYear = 252

// StdDev is the annualized standard deviation of daily percentage returns
// over window, expressed as a percentage (matches the source's
// `returns.rolling(window).std() * sqrt(252) * 100`).
func StdDev(close []float64, window int) []float64 {
	returns := pctChange(close, 1)
	std := rollingStd(returns, window)
	out := nanSeries(len(close))
	for i := range std {
		if isFinite(std[i]) {
			out[i] = std[i] * math.Sqrt(tradingDaysPerYear) * 100
		}
	}
	return out
}

// StdDevPrice is the rolling standard deviation of price itself (no
// annualization, no percentage scaling).
func StdDevPrice(close []float64, window int) []float64 {
	return rollingStd(close, window)
}

// HistoricalVolatility is the annualized standard deviation of
// log-returns over window, as a percentage.
func HistoricalVolatility(close []float64, window int) []float64 {
	n := len(close)
	logReturns := nanSeries(n)
	for i := 1; i < n; i++ {
		if close[i-1] > 0 && close[i] > 0 {
			logReturns[i] = math.Log(close[i] / close[i-1])
		}
	}
	std := rollingStd(logReturns, window)
	out := nanSeries(n)
	for i := range std {
		if isFinite(std[i]) {
			out[i] = std[i] * math.Sqrt(tradingDaysPerYear) * 100
		}
	}
	return out
}

// drawdownPercent returns, for each index, 100*(close-rollingMax)/rollingMax
// where rollingMax is the trailing max over window (min_periods=1, i.e.
// it is defined from index 0 onward).
func drawdownPercent(close []float64, window int) []float64 {
	rollingMaxV := rollingMax(close, window, 1)
	out := nanSeries(len(close))
	for i := range close {
		if rollingMaxV[i] == 0 {
			continue
		}
		out[i] = (close[i] - rollingMaxV[i]) / rollingMaxV[i] * 100
	}
	return out
}

// Drawdown is the current percentage drawdown from the trailing high over
// window. See the package doc for the drawdown-convention distinction
// from internal/perf's max_drawdown metric.
func Drawdown(close []float64, window int) []float64 {
	return drawdownPercent(close, window)
}

// MaxDrawdown is the most negative drawdown percentage observed within
// each trailing window (i.e. the rolling minimum of Drawdown). See the
// package doc for the drawdown-convention distinction from internal/perf's
// max_drawdown metric.
func MaxDrawdown(close []float64, window int) []float64 {
	dd := drawdownPercent(close, window)
	out := nanSeries(len(close))
	for i := window - 1; i < len(close); i++ {
		m := dd[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if isFinite(dd[j]) && (!isFinite(m) || dd[j] < m) {
				m = dd[j]
			}
		}
		out[i] = m
	}
	return out
}

// UlcerIndex is sqrt(mean(drawdownPercent^2)) over window.
func UlcerIndex(close []float64, window int) []float64 {
	dd := drawdownPercent(close, window)
	sq := make([]float64, len(dd))
	for i, v := range dd {
		if isFinite(v) {
			sq[i] = v * v
		} else {
			sq[i] = math.NaN()
		}
	}
	mean := rollingMean(sq, window)
	out := nanSeries(len(close))
	for i, v := range mean {
		if isFinite(v) {
			out[i] = math.Sqrt(v)
		}
	}
	return out
}

// bollinger returns the (lower, middle, upper) bands for close over
// window with a 2-standard-deviation envelope.
func bollinger(close []float64, window int) (lower, middle, upper []float64) {
	middle = rollingMean(close, window)
	std := rollingStd(close, window)
	lower = nanSeries(len(close))
	upper = nanSeries(len(close))
	for i := range close {
		if !isFinite(middle[i]) || !isFinite(std[i]) {
			continue
		}
		lower[i] = middle[i] - 2*std[i]
		upper[i] = middle[i] + 2*std[i]
	}
	return
}

// BollingerPercentB is the position of close within its Bollinger band,
// 0 at the lower band and 1 at the upper band.
func BollingerPercentB(close []float64, window int) []float64 {
	lower, _, upper := bollinger(close, window)
	out := nanSeries(len(close))
	for i := range close {
		if !isFinite(lower[i]) || !isFinite(upper[i]) {
			continue
		}
		span := upper[i] - lower[i]
		if span == 0 {
			continue
		}
		out[i] = (close[i] - lower[i]) / span
	}
	return out
}

// BollingerBandwidth is the normalized band width as a percentage of the
// middle band.
func BollingerBandwidth(close []float64, window int) []float64 {
	lower, middle, upper := bollinger(close, window)
	out := nanSeries(len(close))
	for i := range close {
		if !isFinite(lower[i]) || !isFinite(upper[i]) || !isFinite(middle[i]) || middle[i] == 0 {
			continue
		}
		out[i] = (upper[i] - lower[i]) / middle[i] * 100
	}
	return out
}

// ATR is the average true range over window, Wilder-smoothed.
func ATR(high, low, close []float64, window int) []float64 {
	tr := trueRange(high, low, close)
	return wilderSmooth(tr, window)
}

// ATRPercent is ATR expressed as a percentage of the current close.
func ATRPercent(high, low, close []float64, window int) []float64 {
	atr := ATR(high, low, close, window)
	out := nanSeries(len(close))
	for i := range close {
		if isFinite(atr[i]) && close[i] != 0 {
			out[i] = atr[i] / close[i] * 100
		}
	}
	return out
}
