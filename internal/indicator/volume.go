package indicator

// obv is the On-Balance Volume running total.
func obv(close, volume []float64) []float64 {
	n := len(close)
	out := make([]float64, n)
	for i := 1; i < n; i++ {
		switch {
		case close[i] > close[i-1]:
			out[i] = out[i-1] + volume[i]
		case close[i] < close[i-1]:
			out[i] = out[i-1] - volume[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// OBVROC is the percentage rate of change of On-Balance Volume over
// window.
func OBVROC(close, volume []float64, window int) []float64 {
	o := obv(close, volume)
	out := nanSeries(len(close))
	for i := window; i < len(close); i++ {
		if o[i-window] == 0 {
			continue
		}
		out[i] = (o[i]/o[i-window] - 1) * 100
	}
	return out
}

// VWAPRatio is close divided by the rolling volume-weighted average price
// over window.
func VWAPRatio(high, low, close, volume []float64, window int) []float64 {
	n := len(close)
	typical := make([]float64, n)
	for i := 0; i < n; i++ {
		typical[i] = (high[i] + low[i] + close[i]) / 3
	}
	pv := make([]float64, n)
	for i := range typical {
		pv[i] = typical[i] * volume[i]
	}
	sumPV := rollingSum(pv, window)
	sumV := rollingSum(volume, window)
	out := nanSeries(n)
	for i := range close {
		if !isFinite(sumPV[i]) || !isFinite(sumV[i]) || sumV[i] == 0 {
			continue
		}
		vwap := sumPV[i] / sumV[i]
		if vwap == 0 {
			continue
		}
		out[i] = close[i] / vwap
	}
	return out
}

// MFI is the Money Flow Index over window.
func MFI(high, low, close, volume []float64, window int) []float64 {
	n := len(close)
	typical := make([]float64, n)
	for i := 0; i < n; i++ {
		typical[i] = (high[i] + low[i] + close[i]) / 3
	}
	rawMF := make([]float64, n)
	for i := range typical {
		rawMF[i] = typical[i] * volume[i]
	}

	posFlow := make([]float64, n)
	negFlow := make([]float64, n)
	for i := 1; i < n; i++ {
		if typical[i] > typical[i-1] {
			posFlow[i] = rawMF[i]
		} else if typical[i] < typical[i-1] {
			negFlow[i] = rawMF[i]
		}
	}

	sumPos := rollingSum(posFlow, window)
	sumNeg := rollingSum(negFlow, window)
	out := nanSeries(n)
	for i := range close {
		if !isFinite(sumPos[i]) || !isFinite(sumNeg[i]) {
			continue
		}
		if sumNeg[i] == 0 {
			out[i] = 100
			continue
		}
		ratio := sumPos[i] / sumNeg[i]
		out[i] = 100 - 100/(1+ratio)
	}
	return out
}
