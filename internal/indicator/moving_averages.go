package indicator

import "math"

// SMA is the simple moving average of close over window.
func SMA(close []float64, window int) []float64 {
	return rollingMean(close, window)
}

// EMA is the exponential moving average of close over window, seeded with
// an SMA over the first window values per the spec's warm-up convention.
func EMA(close []float64, window int) []float64 {
	return emaSMASeed(close, window)
}

// WilderMA is Wilder's smoothing (ta.rma), the seed for Wilder-style RSI
// and ATR.
func WilderMA(close []float64, window int) []float64 {
	return wilderSmooth(close, window)
}

// WMA is the linearly weighted moving average: weight i+1 given to the
// i-th-from-oldest point in the window.
func WMA(close []float64, window int) []float64 {
	out := nanSeries(len(close))
	if window <= 0 {
		return out
	}
	denom := float64(window*(window+1)) / 2
	for i := window - 1; i < len(close); i++ {
		var sum float64
		for j := 0; j < window; j++ {
			sum += close[i-window+1+j] * float64(j+1)
		}
		out[i] = sum / denom
	}
	return out
}

// HMA is the Hull moving average: WMA(2*WMA(n/2) - WMA(n), sqrt(n)).
func HMA(close []float64, window int) []float64 {
	if window <= 0 {
		return nanSeries(len(close))
	}
	half := WMA(close, window/2)
	full := WMA(close, window)
	diffSeries := nanSeries(len(close))
	for i := range close {
		if isFinite(half[i]) && isFinite(full[i]) {
			diffSeries[i] = 2*half[i] - full[i]
		}
	}
	sqrtWindow := int(math.Round(math.Sqrt(float64(window))))
	if sqrtWindow < 1 {
		sqrtWindow = 1
	}
	return WMA(diffSeries, sqrtWindow)
}

// DEMA is the double exponential moving average: 2*EMA(n) - EMA(EMA(n)).
func DEMA(close []float64, window int) []float64 {
	ema1 := EMA(close, window)
	ema2 := emaOfSeries(ema1, window)
	out := nanSeries(len(close))
	for i := range close {
		if isFinite(ema1[i]) && isFinite(ema2[i]) {
			out[i] = 2*ema1[i] - ema2[i]
		}
	}
	return out
}

// TEMA is the triple exponential moving average:
// 3*EMA(n) - 3*EMA(EMA(n)) + EMA(EMA(EMA(n))).
func TEMA(close []float64, window int) []float64 {
	ema1 := EMA(close, window)
	ema2 := emaOfSeries(ema1, window)
	ema3 := emaOfSeries(ema2, window)
	out := nanSeries(len(close))
	for i := range close {
		if isFinite(ema1[i]) && isFinite(ema2[i]) && isFinite(ema3[i]) {
			out[i] = 3*ema1[i] - 3*ema2[i] + ema3[i]
		}
	}
	return out
}

// emaOfSeries applies EMA's SMA-seed recurrence to an already-NaN-prefixed
// series, treating the first finite value as the start of the window.
func emaOfSeries(xs []float64, window int) []float64 {
	start := -1
	for i, x := range xs {
		if isFinite(x) {
			start = i
			break
		}
	}
	out := nanSeries(len(xs))
	if start < 0 {
		return out
	}
	tail := EMA(xs[start:], window)
	copy(out[start:], tail)
	return out
}

// KAMA is Kaufman's adaptive moving average: an EMA whose smoothing
// constant adapts to the efficiency ratio (signal/noise) over window.
func KAMA(close []float64, window int) []float64 {
	out := nanSeries(len(close))
	if window <= 0 || len(close) <= window {
		return out
	}
	const fastSC = 2.0 / (2.0 + 1.0)
	const slowSC = 2.0 / (30.0 + 1.0)

	out[window] = close[window]
	for i := window + 1; i < len(close); i++ {
		change := math.Abs(close[i] - close[i-window])
		var volatility float64
		for j := i - window + 1; j <= i; j++ {
			volatility += math.Abs(close[j] - close[j-1])
		}
		var er float64
		if volatility != 0 {
			er = change / volatility
		}
		sc := math.Pow(er*(fastSC-slowSC)+slowSC, 2)
		out[i] = out[i-1] + sc*(close[i]-out[i-1])
	}
	return out
}
