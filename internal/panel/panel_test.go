package panel

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasforge/flowback/internal/barstore"
	"github.com/atlasforge/flowback/internal/bterrors"
)

func day(n int) time.Time {
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func bar(n int, close float64) barstore.Bar {
	return barstore.Bar{Date: day(n), Open: close, High: close, Low: close, Close: close, AdjustedClose: close, Volume: 100}
}

func TestBuildAlignsOnIndicatorTickerIntersection(t *testing.T) {
	store := barstore.NewMemory(map[string][]barstore.Bar{
		"SPY": {bar(0, 100), bar(1, 101), bar(2, 102), bar(3, 103)},
		"VIX": {bar(1, 20), bar(2, 21), bar(3, 22)}, // missing day 0
	})

	p, err := Build(context.Background(), store, []string{"SPY"}, []string{"SPY", "VIX"})
	require.NoError(t, err)

	// Intersection over indicator tickers {SPY, VIX} excludes day 0.
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, day(1).Unix()/86400, p.Dates[0])
}

func TestBuildForwardThenBackwardFills(t *testing.T) {
	store := barstore.NewMemory(map[string][]barstore.Bar{
		"SPY": {bar(0, 100), bar(2, 102), bar(3, 103)}, // day 1 missing
		"VIX": {bar(0, 20), bar(1, 21), bar(2, 22)},    // sets the date axis to days 0-2
	})
	p, err := Build(context.Background(), store, []string{"SPY"}, []string{"VIX"})
	require.NoError(t, err)
	require.Equal(t, 3, p.Len())
	assert.Equal(t, 100.0, p.Close["SPY"][1]) // forward-filled from day 0
}

func TestBuildTrimsColdStartRows(t *testing.T) {
	store := barstore.NewMemory(map[string][]barstore.Bar{
		"SPY": {bar(0, 100), bar(1, 101), bar(2, 102), bar(5, 105)},
		"QQQ": {bar(0, 50), bar(2, 52), bar(5, 55)}, // QQQ has no day 1
	})
	// Intersect over both price tickers since no indicator tickers given.
	p, err := Build(context.Background(), store, []string{"SPY", "QQQ"}, nil)
	require.NoError(t, err)
	// Dates present for both: 0, 2, 5 (day 1 absent from QQQ, dropped by intersection).
	require.Equal(t, 3, p.Len())
	for _, closes := range p.Close {
		for _, c := range closes {
			assert.False(t, math.IsNaN(c))
		}
	}
}

func TestBuildFailsBelowThreeBars(t *testing.T) {
	store := barstore.NewMemory(map[string][]barstore.Bar{
		"SPY": {bar(0, 100), bar(1, 101)},
	})
	_, err := Build(context.Background(), store, []string{"SPY"}, nil)
	require.Error(t, err)
	var btErr *bterrors.Error
	require.ErrorAs(t, err, &btErr)
	assert.Equal(t, bterrors.KindInsufficientData, btErr.Kind)
}

func TestBuildFailsOnUnknownTickers(t *testing.T) {
	store := barstore.NewMemory(map[string][]barstore.Bar{})
	_, err := Build(context.Background(), store, []string{"NOPE"}, nil)
	require.Error(t, err)
}

func TestBuildIsIdempotentOnAlreadyAlignedPanel(t *testing.T) {
	store := barstore.NewMemory(map[string][]barstore.Bar{
		"SPY": {bar(0, 100), bar(1, 101), bar(2, 102), bar(3, 103)},
	})
	p, err := Build(context.Background(), store, []string{"SPY"}, nil)
	require.NoError(t, err)

	rebuiltBars := make([]barstore.Bar, p.Len())
	for i, d := range p.Dates {
		rebuiltBars[i] = barstore.Bar{
			Date: time.Unix(d*86400, 0).UTC(), Close: p.Close["SPY"][i], Open: p.Open["SPY"][i],
			High: p.High["SPY"][i], Low: p.Low["SPY"][i], AdjustedClose: p.AdjustedClose["SPY"][i],
			Volume: p.Volume["SPY"][i],
		}
	}
	rebuilt := barstore.NewMemory(map[string][]barstore.Bar{"SPY": rebuiltBars})
	p2, err := Build(context.Background(), rebuilt, []string{"SPY"}, nil)
	require.NoError(t, err)
	assert.Equal(t, p.Close["SPY"], p2.Close["SPY"])
}
