package indicator

// CumulativeReturn is the percentage change in close over window bars:
// 100*(close[i]/close[i-window] - 1).
func CumulativeReturn(close []float64, window int) []float64 {
	out := pctChange(close, window)
	for i := range out {
		if isFinite(out[i]) {
			out[i] *= 100
		}
	}
	return out
}

// SMAOfReturns is the simple moving average of daily percentage returns
// over window, as a percentage.
func SMAOfReturns(close []float64, window int) []float64 {
	returns := pctChange(close, 1)
	sma := rollingMean(returns, window)
	out := nanSeries(len(close))
	for i := range sma {
		if isFinite(sma[i]) {
			out[i] = sma[i] * 100
		}
	}
	return out
}

// TrendClarity is the R² of an ordinary least-squares fit of close against
// bar index, over window. 1 means a perfectly linear trend; near 0 means
// no linear trend.
func TrendClarity(close []float64, window int) []float64 {
	out := nanSeries(len(close))
	for i := window - 1; i < len(close); i++ {
		y := close[i-window+1 : i+1]
		slope, intercept, ok := linregFit(y)
		if !ok {
			continue
		}
		var ssRes, ssTot, mean float64
		for _, v := range y {
			mean += v
		}
		mean /= float64(len(y))
		for j, v := range y {
			pred := slope*float64(j) + intercept
			ssRes += (v - pred) * (v - pred)
			ssTot += (v - mean) * (v - mean)
		}
		if ssTot == 0 {
			continue
		}
		out[i] = 1 - ssRes/ssTot
	}
	return out
}

// LinRegSlope is the slope of the OLS fit of close against bar index, over
// window.
func LinRegSlope(close []float64, window int) []float64 {
	out := nanSeries(len(close))
	for i := window - 1; i < len(close); i++ {
		slope, _, ok := linregFit(close[i-window+1 : i+1])
		if ok {
			out[i] = slope
		}
	}
	return out
}

// LinRegValue is the OLS-fitted value at the most recent bar in each
// trailing window.
func LinRegValue(close []float64, window int) []float64 {
	out := nanSeries(len(close))
	for i := window - 1; i < len(close); i++ {
		slope, intercept, ok := linregFit(close[i-window+1 : i+1])
		if ok {
			out[i] = slope*float64(window-1) + intercept
		}
	}
	return out
}

// PriceVsSMA is close divided by its window-period SMA.
func PriceVsSMA(close []float64, window int) []float64 {
	sma := SMA(close, window)
	out := nanSeries(len(close))
	for i := range close {
		if isFinite(sma[i]) && sma[i] != 0 {
			out[i] = close[i] / sma[i]
		}
	}
	return out
}
