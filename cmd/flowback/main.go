// Command flowback is the engine's CLI entrypoint. It exposes three
// subcommands mirroring the three consumer operations — backtest,
// sweep, walkforward — each reading a JSON strategy tree and a panel
// source, and writing a JSON result to stdout.
//
// Boot sequence, mirroring the teacher's main.go:
//  1. cfg := config.FromEnv(), overlaid by the YAML file named in
//     FLOWBACK_CONFIG, if set
//  2. start Prometheus /metrics and /healthz on cfg.MetricsPort
//     (FLOWBACK_METRICS_PORT or metrics_port in YAML), if > 0
//  3. wire the bar store (CSV directory or Parquet directory) behind an LRU
//  4. dispatch to the requested subcommand
//  5. graceful shutdown of the metrics server on completion or SIGINT/SIGTERM
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atlasforge/flowback/internal/barstore"
	"github.com/atlasforge/flowback/internal/btlog"
	"github.com/atlasforge/flowback/internal/cliload"
	"github.com/atlasforge/flowback/internal/config"
	"github.com/atlasforge/flowback/internal/indicator"
	"github.com/atlasforge/flowback/internal/panel"
	"github.com/atlasforge/flowback/internal/perf"
	"github.com/atlasforge/flowback/internal/simulator"
	"github.com/atlasforge/flowback/internal/sweep"
	"github.com/atlasforge/flowback/internal/telemetry"
	"github.com/atlasforge/flowback/internal/tree"
	"github.com/atlasforge/flowback/internal/walkforward"
)

var logf = btlog.Component("flowback")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var srv *http.Server
	if cfg.MetricsPort > 0 {
		srv = startMetricsServer(cfg.MetricsPort)
	}

	switch os.Args[1] {
	case "backtest":
		err = runBacktestCmd(ctx, cfg, os.Args[2:])
	case "sweep":
		err = runSweepCmd(ctx, cfg, os.Args[2:])
	case "walkforward":
		err = runWalkforwardCmd(ctx, cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}

	if srv != nil {
		shutdownCtx, c := context.WithTimeout(context.Background(), 2*time.Second)
		defer c()
		_ = srv.Shutdown(shutdownCtx)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: flowback <backtest|sweep|walkforward> [flags]")
}

func loadConfig() (config.Engine, error) {
	cfg := config.FromEnv()
	if path := os.Getenv("FLOWBACK_CONFIG"); path != "" {
		var err error
		cfg, err = config.LoadYAML(path, cfg)
		if err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func startMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		logf("serving metrics on :%d/metrics", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics server: %v", err)
		}
	}()
	return srv
}

// commonFlags are shared by every subcommand: where the tree and panel
// data live.
type commonFlags struct {
	treePath    string
	csvDir      string
	parquetDir  string
	costBps     float64
	cacheCap    int
	barCacheCap int
	minBarDate  string
	benchmark   string
}

func bindCommonFlags(fs *flag.FlagSet, cfg config.Engine) *commonFlags {
	f := &commonFlags{}
	fs.StringVar(&f.treePath, "tree", "", "path to the strategy tree JSON file")
	fs.StringVar(&f.csvDir, "csv-dir", "", "directory of <TICKER>.csv files")
	fs.StringVar(&f.parquetDir, "parquet-dir", "", "directory of <TICKER>.parquet files")
	fs.Float64Var(&f.costBps, "cost-bps", cfg.CostBps, "per-rebalance proportional cost in basis points")
	fs.IntVar(&f.cacheCap, "indicator-cache-capacity", cfg.IndicatorCacheCapacity, "indicator cache entry bound")
	fs.IntVar(&f.barCacheCap, "bar-store-cache-capacity", cfg.BarStoreCacheCapacity, "bar store LRU entry bound")
	fs.StringVar(&f.minBarDate, "min-bar-date", cfg.MinBarDate, "earliest date (YYYY-MM-DD) the bar store will return")
	fs.StringVar(&f.benchmark, "benchmark", "", "ticker to compute Beta/Treynor against; empty disables both")
	return f
}

// buildPanel loads and aligns every ticker the tree touches, plus the
// benchmark ticker (if set) so its close series rides along in the panel
// even though nothing in the tree references it.
func (f *commonFlags) buildPanel(ctx context.Context, root *tree.Node) (*panel.Panel, error) {
	positions, indicators := tree.CollectTickers(root)
	if f.benchmark != "" {
		positions = append(positions, f.benchmark)
	}
	all := dedupeUnion(positions, indicators)

	var underlying barstore.Store
	switch {
	case f.csvDir != "":
		data, err := cliload.LoadCSVDir(f.csvDir, all)
		if err != nil {
			return nil, err
		}
		underlying = barstore.NewMemory(data)
	case f.parquetDir != "":
		underlying = barstore.NewParquet(f.parquetDir)
	default:
		return nil, errors.New("one of -csv-dir or -parquet-dir is required")
	}

	store := barstore.NewLRU(barstore.NewMinDate(underlying, f.minBarDate), f.barCacheCap)
	return panel.Build(ctx, store, positions, indicators)
}

// benchmarkSeries returns p's close series for f.benchmark, or nil if no
// benchmark ticker was set.
func (f *commonFlags) benchmarkSeries(p *panel.Panel) []float64 {
	if f.benchmark == "" {
		return nil
	}
	return p.Close[f.benchmark]
}

func dedupeUnion(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

func runBacktestCmd(ctx context.Context, cfg config.Engine, args []string) error {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	f := bindCommonFlags(fs, cfg)
	verbose := fs.Bool("verbose", false, "log per-bar allocations")
	if err := fs.Parse(args); err != nil {
		return err
	}

	root, err := cliload.LoadTree(f.treePath)
	if err != nil {
		return err
	}
	if err := tree.Validate(root); err != nil {
		return err
	}

	p, err := f.buildPanel(ctx, root)
	if err != nil {
		return err
	}

	cache := indicator.NewCache(f.cacheCap)
	var traceFn simulator.Trace
	if *verbose {
		traceFn = func(barIndex int, date int64, alloc tree.Allocation, equity float64) {
			logf("bar=%d date=%d alloc=%v equity=%.2f", barIndex, date, alloc, equity)
		}
	}

	result, err := simulator.Run(root, p, cache, f.costBps, traceFn)
	if err != nil {
		return err
	}

	final := 0.0
	if n := len(result.Equity); n > 0 {
		final = result.Equity[n-1].Equity
	}
	telemetry.BacktestEquity.Set(final)

	rec := perf.Compute(perf.Input{
		Dates:     result.Dates(),
		Values:    result.Values(),
		Invested:  result.Invested(),
		Benchmark: f.benchmarkSeries(p),
	})
	return writeJSON(struct {
		Equity  []simulator.Point `json:"equity"`
		Metrics perf.Record       `json:"metrics"`
	}{Equity: result.Equity, Metrics: rec})
}

func runSweepCmd(ctx context.Context, cfg config.Engine, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	f := bindCommonFlags(fs, cfg)
	rangesPath := fs.String("ranges", "", "path to the parameter-ranges JSON file")
	workers := fs.Int("workers", cfg.SweepWorkers, "worker pool size; 0 means GOMAXPROCS")
	if err := fs.Parse(args); err != nil {
		return err
	}

	root, err := cliload.LoadTree(f.treePath)
	if err != nil {
		return err
	}
	ranges, err := cliload.LoadRanges(*rangesPath)
	if err != nil {
		return err
	}

	p, err := f.buildPanel(ctx, root)
	if err != nil {
		return err
	}

	start := time.Now()
	cache := indicator.NewCache(f.cacheCap)
	results, err := sweep.Run(ctx, root, ranges, p, f.benchmarkSeries(p), f.costBps, *workers, cache)
	telemetry.SweepDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	for _, r := range results {
		outcome := "ok"
		if r.Err != nil {
			outcome = "error"
		}
		telemetry.VariantsTotal.WithLabelValues(outcome).Inc()
	}

	return writeJSON(results)
}

func runWalkforwardCmd(ctx context.Context, cfg config.Engine, args []string) error {
	fs := flag.NewFlagSet("walkforward", flag.ExitOnError)
	f := bindCommonFlags(fs, cfg)
	strategy := fs.String("strategy", string(walkforward.EvenOddMonth), "even_odd_month|even_odd_year|chronological")
	oosFraction := fs.Float64("oos-fraction", 0, "chronological split fraction (0 uses 70/30 default)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	root, err := cliload.LoadTree(f.treePath)
	if err != nil {
		return err
	}
	if err := tree.Validate(root); err != nil {
		return err
	}

	p, err := f.buildPanel(ctx, root)
	if err != nil {
		return err
	}

	cache := indicator.NewCache(f.cacheCap)
	result, err := simulator.Run(root, p, cache, f.costBps, nil)
	if err != nil {
		return err
	}

	split := walkforward.SplitByStrategy(p.Dates, walkforward.Strategy(*strategy), walkforward.ChronologicalOptions{OOSStartFraction: *oosFraction})

	in := perf.Input{
		Dates:     result.Dates(),
		Values:    result.Values(),
		Invested:  result.Invested(),
		Benchmark: f.benchmarkSeries(p),
	}
	return writeJSON(struct {
		InSample    perf.Record `json:"in_sample"`
		OutOfSample perf.Record `json:"out_of_sample"`
	}{
		InSample:    perf.Slice(in, split.InSample),
		OutOfSample: perf.Slice(in, split.OutOfSample),
	})
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
