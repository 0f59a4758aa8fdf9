package indicator

import "math"

func gainLoss(close []float64) (gain, loss []float64) {
	gain = nanSeries(len(close))
	loss = nanSeries(len(close))
	for i := 1; i < len(close); i++ {
		d := close[i] - close[i-1]
		if d > 0 {
			gain[i] = d
			loss[i] = 0
		} else {
			gain[i] = 0
			loss[i] = -d
		}
	}
	if len(close) > 0 {
		gain[0] = 0
		loss[0] = 0
	}
	return
}

func rsiFromAverages(avgGain, avgLoss []float64) []float64 {
	out := nanSeries(len(avgGain))
	for i := range avgGain {
		if !isFinite(avgGain[i]) || !isFinite(avgLoss[i]) {
			continue
		}
		if avgLoss[i] == 0 {
			if avgGain[i] == 0 {
				out[i] = 50
			} else {
				out[i] = 100
			}
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - (100 / (1 + rs))
	}
	return out
}

// RSIWilder is the classic Wilder-smoothed RSI.
func RSIWilder(close []float64, window int) []float64 {
	gain, loss := gainLoss(close)
	return rsiFromAverages(wilderSmooth(gain, window), wilderSmooth(loss, window))
}

// RSISMA is RSI using a simple moving average of gains/losses instead of
// Wilder smoothing.
func RSISMA(close []float64, window int) []float64 {
	gain, loss := gainLoss(close)
	return rsiFromAverages(rollingMean(gain, window), rollingMean(loss, window))
}

// RSIEMA is RSI using ewm(adjust=False) of gains/losses.
func RSIEMA(close []float64, window int) []float64 {
	gain, loss := gainLoss(close)
	alpha := 2.0 / (float64(window) + 1)
	return rsiFromAverages(ewmAdjustFalse(gain, alpha), ewmAdjustFalse(loss, alpha))
}

// StochRSI is the stochastic oscillator applied to RSI itself: the
// position of the current RSI within its own rolling high-low range.
func StochRSI(close []float64, window int) []float64 {
	rsi := RSIWilder(close, window)
	lo := rollingMin(rsi, window)
	hi := rollingMax(rsi, window, window)
	out := nanSeries(len(close))
	for i := range rsi {
		if !isFinite(rsi[i]) || !isFinite(lo[i]) || !isFinite(hi[i]) {
			continue
		}
		span := hi[i] - lo[i]
		if span == 0 {
			out[i] = 0
			continue
		}
		out[i] = (rsi[i] - lo[i]) / span * 100
	}
	return out
}

// WilliamsR is Williams %R over window.
func WilliamsR(high, low, close []float64, window int) []float64 {
	hh := rollingMax(high, window, window)
	ll := rollingMin(low, window)
	out := nanSeries(len(close))
	for i := range close {
		if !isFinite(hh[i]) || !isFinite(ll[i]) {
			continue
		}
		span := hh[i] - ll[i]
		if span == 0 {
			out[i] = 0
			continue
		}
		out[i] = (hh[i] - close[i]) / span * -100
	}
	return out
}

// CCI is the Commodity Channel Index over window, using the (H+L+C)/3
// typical price and a constant of 0.015.
func CCI(high, low, close []float64, window int) []float64 {
	n := len(close)
	tp := make([]float64, n)
	for i := 0; i < n; i++ {
		tp[i] = (high[i] + low[i] + close[i]) / 3
	}
	sma := rollingMean(tp, window)
	out := nanSeries(n)
	for i := window - 1; i < n; i++ {
		var meanDev float64
		for j := i - window + 1; j <= i; j++ {
			meanDev += math.Abs(tp[j] - sma[i])
		}
		meanDev /= float64(window)
		if meanDev == 0 {
			out[i] = 0
			continue
		}
		out[i] = (tp[i] - sma[i]) / (0.015 * meanDev)
	}
	return out
}

// CMO is the Chande Momentum Oscillator over window.
func CMO(close []float64, window int) []float64 {
	gain, loss := gainLoss(close)
	sumGain := rollingSum(gain, window)
	sumLoss := rollingSum(loss, window)
	out := nanSeries(len(close))
	for i := range close {
		if !isFinite(sumGain[i]) || !isFinite(sumLoss[i]) {
			continue
		}
		denom := sumGain[i] + sumLoss[i]
		if denom == 0 {
			out[i] = 0
			continue
		}
		out[i] = 100 * (sumGain[i] - sumLoss[i]) / denom
	}
	return out
}

func rollingSum(xs []float64, window int) []float64 {
	out := nanSeries(len(xs))
	if window <= 0 {
		return out
	}
	var sum float64
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
		}
		if i >= window-1 {
			out[i] = sum
		}
	}
	return out
}

// StochK is the fast stochastic %K over window, smoothed by smoothK.
func StochK(high, low, close []float64, window, smoothK int) []float64 {
	hh := rollingMax(high, window, window)
	ll := rollingMin(low, window)
	raw := nanSeries(len(close))
	for i := range close {
		if !isFinite(hh[i]) || !isFinite(ll[i]) {
			continue
		}
		span := hh[i] - ll[i]
		if span == 0 {
			raw[i] = 0
			continue
		}
		raw[i] = (close[i] - ll[i]) / span * 100
	}
	if smoothK <= 1 {
		return raw
	}
	return rollingMean(raw, smoothK)
}

// StochD is %D, the moving average of %K over window d.
func StochD(high, low, close []float64, window, smoothK, d int) []float64 {
	k := StochK(high, low, close, window, smoothK)
	return rollingMean(k, d)
}
