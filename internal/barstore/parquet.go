package barstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
)

// Record is the on-disk Parquet schema for one bar, one file per ticker.
type Record struct {
	Timestamp     int64   `parquet:"timestamp,timestamp(millisecond)"`
	Open          float64 `parquet:"open"`
	High          float64 `parquet:"high"`
	Low           float64 `parquet:"low"`
	Close         float64 `parquet:"close"`
	AdjustedClose float64 `parquet:"adjusted_close"`
	Volume        float64 `parquet:"volume"`
}

// Parquet is a read-only Store backed by one Parquet file per ticker,
// laid out as <DataDir>/<TICKER>.parquet.
type Parquet struct {
	DataDir string
}

// NewParquet roots a Parquet store at dataDir.
func NewParquet(dataDir string) *Parquet {
	return &Parquet{DataDir: dataDir}
}

func (p *Parquet) path(ticker string) string {
	return filepath.Join(p.DataDir, strings.ToUpper(ticker)+".parquet")
}

// Get reads a ticker's bar file. A missing file is treated as "no data",
// matching Store's unknown-ticker contract; any other read failure is
// returned as an error.
func (p *Parquet) Get(_ context.Context, ticker string) ([]Bar, error) {
	path := p.path(ticker)
	rows, err := parquet.ReadFile[Record](path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading bars for %s: %w", ticker, err)
	}

	bars := make([]Bar, len(rows))
	for i, r := range rows {
		bars[i] = Bar{
			Date:          time.UnixMilli(r.Timestamp).UTC(),
			Open:          r.Open,
			High:          r.High,
			Low:           r.Low,
			Close:         r.Close,
			AdjustedClose: r.AdjustedClose,
			Volume:        r.Volume,
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// WriteTicker writes a ticker's full bar history to its Parquet file,
// overwriting any existing file. Exists for test fixture setup and for
// ingestion tooling outside the backtest path itself.
func (p *Parquet) WriteTicker(ticker string, bars []Bar) error {
	if err := os.MkdirAll(p.DataDir, 0o755); err != nil {
		return err
	}
	records := make([]Record, len(bars))
	for i, b := range bars {
		records[i] = Record{
			Timestamp:     b.Date.UnixMilli(),
			Open:          b.Open,
			High:          b.High,
			Low:           b.Low,
			Close:         b.Close,
			AdjustedClose: b.AdjustedClose,
			Volume:        b.Volume,
		}
	}
	return parquet.WriteFile(p.path(ticker), records)
}

var _ Store = (*Parquet)(nil)
