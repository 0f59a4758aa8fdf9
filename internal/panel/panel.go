// Package panel builds the aligned, gap-free Price Panel that every other
// component reads from: one dense array per (ticker, field) pair, all
// sharing a single `dates` axis, with cold-start rows trimmed away.
package panel

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/atlasforge/flowback/internal/barstore"
	"github.com/atlasforge/flowback/internal/bterrors"
)

// Panel is an aligned, dense view over one or more tickers' OHLCV history.
type Panel struct {
	Dates         []int64 // Unix-day timestamps, strictly increasing
	Open          map[string][]float64
	High          map[string][]float64
	Low           map[string][]float64
	Close         map[string][]float64
	AdjustedClose map[string][]float64
	Volume        map[string][]float64
}

// Len returns the number of bars (T) in the panel.
func (p *Panel) Len() int { return len(p.Dates) }

// Tickers returns the set of tickers present in the panel, sorted.
func (p *Panel) Tickers() []string {
	out := make([]string, 0, len(p.Close))
	for t := range p.Close {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Build loads priceTickers ∪ indicatorTickers from store, aligns them onto
// the date intersection of indicatorTickers (or, if that set is empty
// after loading, onto the intersection of everything loaded), forward-
// then backward-fills gaps, and trims to the first row where every
// ticker's close is finite.
func Build(ctx context.Context, store barstore.Store, priceTickers, indicatorTickers []string) (*Panel, error) {
	all := normalizeUnion(priceTickers, indicatorTickers)
	if len(all) == 0 {
		return nil, bterrors.InsufficientData("no tickers requested")
	}

	series := make(map[string][]barstore.Bar, len(all))
	for _, ticker := range all {
		bars, err := store.Get(ctx, ticker)
		if err != nil {
			return nil, bterrors.Wrap(bterrors.KindInsufficientData, "loading "+ticker, err)
		}
		if len(bars) == 0 {
			continue
		}
		series[ticker] = bars
	}
	if len(series) == 0 {
		return nil, bterrors.InsufficientData("no requested ticker had data")
	}

	indicatorSet := normalizeUnion(indicatorTickers, nil)
	intersectOver := make([]string, 0, len(series))
	for _, t := range indicatorSet {
		if _, ok := series[t]; ok {
			intersectOver = append(intersectOver, t)
		}
	}
	if len(intersectOver) == 0 {
		for t := range series {
			intersectOver = append(intersectOver, t)
		}
	}

	dates := dateIntersection(series, intersectOver)
	if len(dates) == 0 {
		return nil, bterrors.InsufficientData("ticker date sets do not overlap")
	}

	p := &Panel{
		Dates:         dates,
		Open:          map[string][]float64{},
		High:          map[string][]float64{},
		Low:           map[string][]float64{},
		Close:         map[string][]float64{},
		AdjustedClose: map[string][]float64{},
		Volume:        map[string][]float64{},
	}
	for ticker, bars := range series {
		o, h, l, c, a, v := reindexFillFields(bars, dates)
		p.Open[ticker] = o
		p.High[ticker] = h
		p.Low[ticker] = l
		p.Close[ticker] = c
		p.AdjustedClose[ticker] = a
		p.Volume[ticker] = v
	}

	k, ok := firstFullyFiniteClose(p)
	if !ok || p.Len()-k < 3 {
		return nil, bterrors.InsufficientData("fewer than 3 bars remain after cold-start trim")
	}
	trim(p, k)
	return p, nil
}

func normalizeUnion(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// dateIntersection returns the sorted set of Unix-day timestamps common to
// every ticker in tickers.
func dateIntersection(series map[string][]barstore.Bar, tickers []string) []int64 {
	if len(tickers) == 0 {
		return nil
	}
	counts := map[int64]int{}
	for _, ticker := range tickers {
		seenThisTicker := map[int64]bool{}
		for _, b := range series[ticker] {
			d := unixDay(b.Date)
			if seenThisTicker[d] {
				continue
			}
			seenThisTicker[d] = true
			counts[d]++
		}
	}
	var out []int64
	need := len(tickers)
	for d, n := range counts {
		if n == need {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func unixDay(t interface{ Unix() int64 }) int64 {
	return t.Unix() / 86400
}

// reindexFillFields maps bars onto dates (by unix-day key), then
// forward-fills followed by a backward-fill pass over each field.
func reindexFillFields(bars []barstore.Bar, dates []int64) (open, high, low, close, adjClose, volume []float64) {
	byDate := make(map[int64]barstore.Bar, len(bars))
	for _, b := range bars {
		byDate[unixDay(b.Date)] = b
	}

	n := len(dates)
	open = make([]float64, n)
	high = make([]float64, n)
	low = make([]float64, n)
	close = make([]float64, n)
	adjClose = make([]float64, n)
	volume = make([]float64, n)

	for i, d := range dates {
		if b, ok := byDate[d]; ok {
			open[i], high[i], low[i] = b.Open, b.High, b.Low
			close[i], adjClose[i], volume[i] = b.Close, b.AdjustedClose, b.Volume
		} else {
			open[i] = math.NaN()
			high[i] = math.NaN()
			low[i] = math.NaN()
			close[i] = math.NaN()
			adjClose[i] = math.NaN()
			volume[i] = math.NaN()
		}
	}

	ffill(open)
	ffill(high)
	ffill(low)
	ffill(close)
	ffill(adjClose)
	ffill(volume)
	bfill(open)
	bfill(high)
	bfill(low)
	bfill(close)
	bfill(adjClose)
	bfill(volume)
	return
}

func ffill(xs []float64) {
	last := math.NaN()
	for i, x := range xs {
		if math.IsNaN(x) {
			xs[i] = last
		} else {
			last = x
		}
	}
}

func bfill(xs []float64) {
	next := math.NaN()
	for i := len(xs) - 1; i >= 0; i-- {
		if math.IsNaN(xs[i]) {
			xs[i] = next
		} else {
			next = xs[i]
		}
	}
}

func firstFullyFiniteClose(p *Panel) (int, bool) {
	for i := 0; i < p.Len(); i++ {
		allFinite := true
		for _, closes := range p.Close {
			if math.IsNaN(closes[i]) || math.IsInf(closes[i], 0) {
				allFinite = false
				break
			}
		}
		if allFinite {
			return i, true
		}
	}
	return 0, false
}

func trim(p *Panel, k int) {
	p.Dates = p.Dates[k:]
	for _, m := range []map[string][]float64{p.Open, p.High, p.Low, p.Close, p.AdjustedClose, p.Volume} {
		for ticker, xs := range m {
			m[ticker] = xs[k:]
		}
	}
}
