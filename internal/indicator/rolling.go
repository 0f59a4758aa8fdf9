package indicator

import "math"

// rollingMean returns the simple moving average over window, NaN before
// the window fills.
func rollingMean(xs []float64, window int) []float64 {
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
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollingStd returns the sample rolling standard deviation (pandas
// default: ddof=1), NaN before the window fills.
func rollingStd(xs []float64, window int) []float64 {
	out := nanSeries(len(xs))
	if window <= 1 {
		return out
	}
	for i := window - 1; i < len(xs); i++ {
		window_ := xs[i-window+1 : i+1]
		mean := 0.0
		for _, v := range window_ {
			mean += v
		}
		mean /= float64(window)
		var ss float64
		for _, v := range window_ {
			d := v - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

// rollingMax mirrors pandas' rolling(window, min_periods=minPeriods).max();
// rollingMin mirrors rolling(window).min(), defined only once a full
// window is available.
func rollingMax(xs []float64, window, minPeriods int) []float64 {
	out := nanSeries(len(xs))
	for i := range xs {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		count := i - lo + 1
		if count < minPeriods {
			continue
		}
		m := xs[lo]
		for j := lo + 1; j <= i; j++ {
			if xs[j] > m {
				m = xs[j]
			}
		}
		out[i] = m
	}
	return out
}

func rollingMin(xs []float64, window int) []float64 {
	out := nanSeries(len(xs))
	for i := window - 1; i < len(xs); i++ {
		m := xs[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if xs[j] < m {
				m = xs[j]
			}
		}
		out[i] = m
	}
	return out
}

// diff returns xs[i] - xs[i-n], NaN for the first n positions.
func diff(xs []float64, n int) []float64 {
	out := nanSeries(len(xs))
	for i := n; i < len(xs); i++ {
		out[i] = xs[i] - xs[i-n]
	}
	return out
}

// pctChange returns (xs[i]-xs[i-n])/xs[i-n], NaN for the first n positions.
func pctChange(xs []float64, n int) []float64 {
	out := nanSeries(len(xs))
	for i := n; i < len(xs); i++ {
		out[i] = xs[i]/xs[i-n] - 1
	}
	return out
}

// ewmAdjustFalse replicates pandas' ewm(alpha=a, adjust=False).mean(): the
// recurrence y[i] = a*x[i] + (1-a)*y[i-1], seeded with y[0] = x[0].
func ewmAdjustFalse(xs []float64, alpha float64) []float64 {
	out := nanSeries(len(xs))
	if len(xs) == 0 {
		return out
	}
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = alpha*xs[i] + (1-alpha)*out[i-1]
	}
	return out
}

// emaSMASeed computes EMA seeded with an SMA over the first `window`
// values (the classic TA-lib convention the spec calls out explicitly),
// NaN before the seed window fills.
func emaSMASeed(xs []float64, window int) []float64 {
	out := nanSeries(len(xs))
	if window <= 0 || len(xs) < window {
		return out
	}
	alpha := 2.0 / float64(window+1)
	var sum float64
	for i := 0; i < window; i++ {
		sum += xs[i]
	}
	out[window-1] = sum / float64(window)
	for i := window; i < len(xs); i++ {
		out[i] = alpha*xs[i] + (1-alpha)*out[i-1]
	}
	return out
}

// wilderSmooth replicates ta.rma: seed with the SMA over the first
// `window` values, then recurrence y[i] = (y[i-1]*(window-1) + x[i]) / window.
func wilderSmooth(xs []float64, window int) []float64 {
	out := nanSeries(len(xs))
	if window <= 0 || len(xs) < window {
		return out
	}
	var sum float64
	for i := 0; i < window; i++ {
		sum += xs[i]
	}
	out[window-1] = sum / float64(window)
	for i := window; i < len(xs); i++ {
		out[i] = (out[i-1]*float64(window-1) + xs[i]) / float64(window)
	}
	return out
}

// linregFit returns (slope, intercept) of an ordinary least-squares fit of
// y against x = 0..len(y)-1, ignoring NaNs. ok is false if fewer than 2
// finite points are available.
func linregFit(y []float64) (slope, intercept float64, ok bool) {
	var sumX, sumY, sumXY, sumXX float64
	var n float64
	for i, v := range y {
		if !isFinite(v) {
			continue
		}
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
		n++
	}
	if n < 2 {
		return 0, 0, false
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0, false
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, true
}
