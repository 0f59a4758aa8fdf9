// Package cliload adapts the teacher's CSV candle loader (originally
// single-ticker, in backtest.go's loadCSV) to the multi-ticker directory
// layout the engine's CLI reads panels from, plus a small JSON loader for
// strategy tree files.
package cliload

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/atlasforge/flowback/internal/barstore"
)

// LoadCSVDir reads "<dir>/<TICKER>.csv" for every ticker in tickers,
// each file holding a header row and time/open/high/low/close/volume
// columns (time as RFC3339 or unix seconds; headers case-insensitive,
// per the teacher's loader). A missing file yields an empty slice for
// that ticker rather than an error, matching barstore.Store's contract
// for unknown tickers.
func LoadCSVDir(dir string, tickers []string) (map[string][]barstore.Bar, error) {
	out := make(map[string][]barstore.Bar, len(tickers))
	for _, ticker := range tickers {
		path := filepath.Join(dir, strings.ToUpper(ticker)+".csv")
		bars, err := loadCSVFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				out[ticker] = nil
				continue
			}
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		out[ticker] = bars
	}
	return out, nil
}

func loadCSVFile(path string) ([]barstore.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var out []barstore.Bar
	var headers []string
	rowIdx := 0

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if rowIdx == 0 {
			headers = rec
			rowIdx++
			continue
		}
		row := map[string]string{}
		for j, h := range headers {
			k := strings.ToLower(strings.TrimSpace(h))
			if j < len(rec) {
				row[k] = strings.TrimSpace(rec[j])
			}
		}
		ts := first(row, "date", "time", "timestamp")
		op := first(row, "open")
		hp := first(row, "high")
		lp := first(row, "low")
		cp := first(row, "close")
		ap := first(row, "adj close", "adjusted_close", "adjclose")
		vp := first(row, "volume", "vol")
		if ts == "" || cp == "" {
			continue
		}
		tt, err := parseTimeFlexible(ts)
		if err != nil {
			continue
		}
		o, _ := strconv.ParseFloat(op, 64)
		h, _ := strconv.ParseFloat(hp, 64)
		l, _ := strconv.ParseFloat(lp, 64)
		c, _ := strconv.ParseFloat(cp, 64)
		a, aok := strconv.ParseFloat(ap, 64)
		if aok != nil {
			a = c
		}
		v, _ := strconv.ParseFloat(vp, 64)
		out = append(out, barstore.Bar{Date: tt, Open: o, High: h, Low: l, Close: c, AdjustedClose: a, Volume: v})
		rowIdx++
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func parseTimeFlexible(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("bad time: %s", s)
}

func first(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != "" {
			return v
		}
	}
	return ""
}
