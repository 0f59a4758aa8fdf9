// Package walkforward partitions the bar indices of a completed
// simulation into in-sample (IS) and out-of-sample (OOS) sets, for
// per-slice metrics computed by internal/perf on the same equity curve.
// It never re-runs the simulator.
package walkforward

import (
	"sort"
	"time"
)

// Strategy names one of the three IS/OOS partitioning modes handled by
// SplitByStrategy; the expanding walk-forward is the separate Expanding.
type Strategy string

const (
	EvenOddMonth  Strategy = "even_odd_month"
	EvenOddYear   Strategy = "even_odd_year"
	Chronological Strategy = "chronological"
)

// Split is one IS/OOS partition of a timeline, as sorted bar indices.
type Split struct {
	InSample    []int
	OutOfSample []int
}

// ChronologicalOptions configures the Chronological strategy: split
// either at an absolute unix-day date, or at a fraction of total bars.
// Exactly one of OOSStartDate or OOSStartFraction should be set; if both
// are zero, a 70/30 split is used, matching the reference split's
// default fallback.
type ChronologicalOptions struct {
	OOSStartDate   int64
	OOSStartFraction float64
}

func dayToTime(unixDay int64) time.Time {
	return time.Unix(unixDay*86400, 0).UTC()
}

// SplitByStrategy partitions dates (unix-day timestamps, ascending)
// under even_odd_month, even_odd_year, or chronological.
func SplitByStrategy(dates []int64, strategy Strategy, chrono ChronologicalOptions) Split {
	switch strategy {
	case EvenOddMonth:
		return splitByPredicate(dates, func(t time.Time) bool { return int(t.Month())%2 == 1 })
	case EvenOddYear:
		return splitByPredicate(dates, func(t time.Time) bool { return t.Year()%2 == 1 })
	case Chronological:
		return splitChronological(dates, chrono)
	default:
		return Split{}
	}
}

func splitByPredicate(dates []int64, isInSample func(time.Time) bool) Split {
	var s Split
	for i, d := range dates {
		if isInSample(dayToTime(d)) {
			s.InSample = append(s.InSample, i)
		} else {
			s.OutOfSample = append(s.OutOfSample, i)
		}
	}
	return s
}

func splitChronological(dates []int64, opts ChronologicalOptions) Split {
	var cut int
	switch {
	case opts.OOSStartDate != 0:
		cut = sort.Search(len(dates), func(i int) bool { return dates[i] >= opts.OOSStartDate })
	case opts.OOSStartFraction > 0:
		cut = int(float64(len(dates)) * opts.OOSStartFraction)
	default:
		cut = int(float64(len(dates)) * 0.7)
	}
	if cut < 0 {
		cut = 0
	}
	if cut > len(dates) {
		cut = len(dates)
	}

	var s Split
	for i := 0; i < cut; i++ {
		s.InSample = append(s.InSample, i)
	}
	for i := cut; i < len(dates); i++ {
		s.OutOfSample = append(s.OutOfSample, i)
	}
	return s
}

// Period names the rolling window granularity of an expanding-window
// walk-forward.
type Period string

const (
	PeriodYearly  Period = "yearly"
	PeriodMonthly Period = "monthly"
	PeriodDaily   Period = "daily"
)

// Window is one step of an expanding walk-forward: OOS is the window's
// own bars, IS is every bar strictly before the window started.
type Window struct {
	InSample    []int
	OutOfSample []int
}

// Expanding partitions dates into sequential OOS windows of the given
// period, each paired with an IS set of every bar before that window's
// start.
func Expanding(dates []int64, period Period) []Window {
	if len(dates) == 0 {
		return nil
	}

	boundaries := windowBoundaries(dates, period)
	windows := make([]Window, 0, len(boundaries))
	for _, b := range boundaries {
		w := Window{OutOfSample: indexRange(b.start, b.end)}
		if b.start > 0 {
			w.InSample = indexRange(0, b.start)
		}
		windows = append(windows, w)
	}
	return windows
}

type boundary struct{ start, end int }

func indexRange(start, end int) []int {
	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}

func windowBoundaries(dates []int64, period Period) []boundary {
	keyOf := func(t time.Time) (int, int) {
		switch period {
		case PeriodYearly:
			return t.Year(), 0
		case PeriodMonthly:
			return t.Year(), int(t.Month())
		default: // daily
			return 0, 0
		}
	}

	if period == PeriodDaily {
		out := make([]boundary, len(dates))
		for i := range dates {
			out[i] = boundary{start: i, end: i + 1}
		}
		return out
	}

	var out []boundary
	start := 0
	curYear, curMonth := keyOf(dayToTime(dates[0]))
	for i := 1; i < len(dates); i++ {
		y, m := keyOf(dayToTime(dates[i]))
		if y != curYear || m != curMonth {
			out = append(out, boundary{start: start, end: i})
			start = i
			curYear, curMonth = y, m
		}
	}
	out = append(out, boundary{start: start, end: len(dates)})
	return out
}
