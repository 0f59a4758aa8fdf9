// Package telemetry registers the Prometheus collectors the CLI exposes
// while a sweep or backtest runs, matching the teacher's metrics.go idiom
// of package-level vars registered in init() and served at /metrics.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	// VariantsTotal counts sweep variants by outcome (ok|error).
	VariantsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowback_sweep_variants_total",
			Help: "Sweep variants evaluated, by outcome.",
		},
		[]string{"outcome"},
	)

	// IndicatorCacheHits/Misses track C4's hit rate.
	IndicatorCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flowback_indicator_cache_hits_total",
			Help: "Indicator cache lookups served from the memoized store.",
		},
	)
	IndicatorCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flowback_indicator_cache_misses_total",
			Help: "Indicator cache lookups that required computation.",
		},
	)

	// BacktestEquity reports the most recently completed simulation's
	// final equity, for a long-running CLI session.
	BacktestEquity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowback_backtest_equity_usd",
			Help: "Final equity of the most recently completed simulation.",
		},
	)

	// SweepDurationSeconds observes wall-clock time per sweep.
	SweepDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowback_sweep_duration_seconds",
			Help:    "Wall-clock duration of a completed sweep.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(VariantsTotal, IndicatorCacheHits, IndicatorCacheMisses, BacktestEquity, SweepDurationSeconds)
}
