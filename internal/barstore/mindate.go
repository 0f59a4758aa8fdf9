package barstore

import (
	"context"
	"sort"
	"time"
)

// MinDate wraps a Store and trims every Get result to bars on or after a
// configured floor date, the spec's "Bar Store returns its series from a
// configured minimum date" contract. A zero floor disables filtering.
type MinDate struct {
	underlying Store
	floor      time.Time
}

// NewMinDate wraps underlying with a floor parsed from a YYYY-MM-DD
// string. An empty or unparseable floor disables filtering rather than
// erroring, since it is a config default, not caller input.
func NewMinDate(underlying Store, floor string) *MinDate {
	t, err := time.Parse("2006-01-02", floor)
	if err != nil {
		t = time.Time{}
	}
	return &MinDate{underlying: underlying, floor: t}
}

func (m *MinDate) Get(ctx context.Context, ticker string) ([]Bar, error) {
	bars, err := m.underlying.Get(ctx, ticker)
	if err != nil || m.floor.IsZero() {
		return bars, err
	}
	cut := sort.Search(len(bars), func(i int) bool { return !bars[i].Date.Before(m.floor) })
	return bars[cut:], nil
}

var _ Store = (*MinDate)(nil)
