package indicator

import "math"

// ROC is the rate of change (percentage) over window.
func ROC(close []float64, window int) []float64 {
	out := pctChange(close, window)
	for i := range out {
		if isFinite(out[i]) {
			out[i] *= 100
		}
	}
	return out
}

// MomentumWeighted is the 1-3-6-12 weighted momentum blend the source
// defines (weights 12-4-2-1 over a denominator of 19), expressed as a
// percentage.
func MomentumWeighted(close []float64) []float64 {
	m1 := pctChange(close, 1)
	m3 := pctChange(close, 3)
	m6 := pctChange(close, 6)
	m12 := pctChange(close, 12)
	out := nanSeries(len(close))
	for i := range close {
		if !isFinite(m1[i]) || !isFinite(m3[i]) || !isFinite(m6[i]) || !isFinite(m12[i]) {
			continue
		}
		out[i] = (m1[i]*12 + m3[i]*4 + m6[i]*2 + m12[i]) / 19 * 100
	}
	return out
}

// MomentumUnweighted is the unweighted average of 1/3/6/12-period
// percentage changes.
func MomentumUnweighted(close []float64) []float64 {
	m1 := pctChange(close, 1)
	m3 := pctChange(close, 3)
	m6 := pctChange(close, 6)
	m12 := pctChange(close, 12)
	out := nanSeries(len(close))
	for i := range close {
		if !isFinite(m1[i]) || !isFinite(m3[i]) || !isFinite(m6[i]) || !isFinite(m12[i]) {
			continue
		}
		out[i] = (m1[i] + m3[i] + m6[i] + m12[i]) / 4 * 100
	}
	return out
}

// MACDHistogram is the (12,26,9) MACD histogram: MACD line minus its
// 9-period signal line, where the MACD line is EMA(12) - EMA(26).
func MACDHistogram(close []float64) []float64 {
	fast := EMA(close, 12)
	slow := EMA(close, 26)
	macd := nanSeries(len(close))
	for i := range close {
		if isFinite(fast[i]) && isFinite(slow[i]) {
			macd[i] = fast[i] - slow[i]
		}
	}
	signal := emaOfSeries(macd, 9)
	out := nanSeries(len(close))
	for i := range close {
		if isFinite(macd[i]) && isFinite(signal[i]) {
			out[i] = macd[i] - signal[i]
		}
	}
	return out
}

// PPOHistogram is the percentage price oscillator histogram: PPO line
// minus its 9-period signal, where PPO = 100*(EMA(12)-EMA(26))/EMA(26).
func PPOHistogram(close []float64) []float64 {
	fast := EMA(close, 12)
	slow := EMA(close, 26)
	ppo := nanSeries(len(close))
	for i := range close {
		if isFinite(fast[i]) && isFinite(slow[i]) && slow[i] != 0 {
			ppo[i] = 100 * (fast[i] - slow[i]) / slow[i]
		}
	}
	signal := emaOfSeries(ppo, 9)
	out := nanSeries(len(close))
	for i := range close {
		if isFinite(ppo[i]) && isFinite(signal[i]) {
			out[i] = ppo[i] - signal[i]
		}
	}
	return out
}

// aroonUpDown returns the periods since the highest high / lowest low
// within window, expressed as the Aroon Up/Down percentages.
func aroonUpDown(high, low []float64, window int) (up, down []float64) {
	n := len(high)
	up = nanSeries(n)
	down = nanSeries(n)
	for i := window; i < n; i++ {
		hiIdx, loIdx := i-window, i-window
		hiVal, loVal := high[i-window], low[i-window]
		for j := i - window + 1; j <= i; j++ {
			if high[j] >= hiVal {
				hiVal, hiIdx = high[j], j
			}
			if low[j] <= loVal {
				loVal, loIdx = low[j], j
			}
		}
		up[i] = float64(window-(i-hiIdx)) / float64(window) * 100
		down[i] = float64(window-(i-loIdx)) / float64(window) * 100
	}
	return
}

// AroonUp/AroonDown/AroonOscillator expose the Aroon family over window.
func AroonUp(high, low []float64, window int) []float64 {
	up, _ := aroonUpDown(high, low, window)
	return up
}

func AroonDown(high, low []float64, window int) []float64 {
	_, down := aroonUpDown(high, low, window)
	return down
}

func AroonOscillator(high, low []float64, window int) []float64 {
	up, down := aroonUpDown(high, low, window)
	out := nanSeries(len(high))
	for i := range up {
		if isFinite(up[i]) && isFinite(down[i]) {
			out[i] = up[i] - down[i]
		}
	}
	return out
}

// trueRange returns the per-bar true range: max(H-L, |H-Cprev|, |L-Cprev|).
func trueRange(high, low, close []float64) []float64 {
	n := len(close)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
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

// directionalMovement returns the +DM/-DM series feeding ADX/+DI/-DI.
func directionalMovement(high, low []float64) (plusDM, minusDM []float64) {
	n := len(high)
	plusDM = make([]float64, n)
	minusDM = make([]float64, n)
	for i := 1; i < n; i++ {
		upMove := high[i] - high[i-1]
		downMove := low[i-1] - low[i]
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}
	return
}

// PlusDI/MinusDI/ADX implement Wilder's directional movement system.
func PlusDI(high, low, close []float64, window int) []float64 {
	plusDM, _ := directionalMovement(high, low)
	tr := trueRange(high, low, close)
	smoothDM := wilderSmooth(plusDM, window)
	atr := wilderSmooth(tr, window)
	return ratioPercent(smoothDM, atr)
}

func MinusDI(high, low, close []float64, window int) []float64 {
	_, minusDM := directionalMovement(high, low)
	tr := trueRange(high, low, close)
	smoothDM := wilderSmooth(minusDM, window)
	atr := wilderSmooth(tr, window)
	return ratioPercent(smoothDM, atr)
}

func ratioPercent(num, denom []float64) []float64 {
	out := nanSeries(len(num))
	for i := range num {
		if !isFinite(num[i]) || !isFinite(denom[i]) || denom[i] == 0 {
			continue
		}
		out[i] = 100 * num[i] / denom[i]
	}
	return out
}

// ADX is the average directional index over window: Wilder's smoothing of
// the DX series, DX = 100*|+DI - -DI| / (+DI + -DI).
func ADX(high, low, close []float64, window int) []float64 {
	plusDI := PlusDI(high, low, close, window)
	minusDI := MinusDI(high, low, close, window)
	dx := nanSeries(len(close))
	for i := range close {
		if !isFinite(plusDI[i]) || !isFinite(minusDI[i]) {
			continue
		}
		sum := plusDI[i] + minusDI[i]
		if sum == 0 {
			dx[i] = 0
			continue
		}
		dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
	}
	return wilderOfSeries(dx, window)
}

// wilderOfSeries applies Wilder's smoothing recurrence starting at the
// first finite value of an already-NaN-prefixed series.
func wilderOfSeries(xs []float64, window int) []float64 {
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
	tail := wilderSmooth(xs[start:], window)
	copy(out[start:], tail)
	return out
}
