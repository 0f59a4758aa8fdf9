// Package config loads the engine's runtime knobs from environment
// variables (with sane defaults, teacher's getEnv* idiom) and an optional
// YAML file that overlays the same fields.
package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Engine holds the knobs shared by the backtest/sweep/walk-forward CLI
// subcommands. Field-level defaults mirror spec.md where one is given
// (e.g. starting equity of 10,000, minimum bar-store date of 1993-01-01).
type Engine struct {
	// MinBarDate is the earliest date the Bar Store will return, in
	// YYYY-MM-DD form.
	MinBarDate string `yaml:"min_bar_date"`

	// StartingEquity defaults to 10,000. It is loaded but not passed to the
	// simulator, which always starts from simulator.StartingEquity.
	StartingEquity float64 `yaml:"starting_equity"`

	// CostBps is the flat per-rebalance cost in basis points.
	CostBps float64 `yaml:"cost_bps"`

	// IndicatorCacheCapacity bounds the C4 cache's entry count.
	IndicatorCacheCapacity int `yaml:"indicator_cache_capacity"`

	// BarStoreCacheCapacity bounds the C1 LRU decorator's entry count.
	BarStoreCacheCapacity int `yaml:"bar_store_cache_capacity"`

	// SweepWorkers bounds the C8 worker pool; 0 means "use GOMAXPROCS".
	SweepWorkers int `yaml:"sweep_workers"`

	// MetricsPort serves Prometheus /metrics and /healthz when > 0.
	MetricsPort int `yaml:"metrics_port"`
}

// Default returns an Engine populated with spec.md's fixed constants.
func Default() Engine {
	return Engine{
		MinBarDate:             "1993-01-01",
		StartingEquity:         10_000,
		CostBps:                0,
		IndicatorCacheCapacity: 5000,
		BarStoreCacheCapacity:  256,
		SweepWorkers:           0,
		MetricsPort:            0,
	}
}

// FromEnv overlays process environment variables onto defaults, following
// the teacher's getEnv/getEnvFloat/getEnvInt convention: a present-but-empty
// variable falls back to the existing value rather than erroring.
func FromEnv() Engine {
	cfg := Default()
	cfg.MinBarDate = getEnv("FLOWBACK_MIN_BAR_DATE", cfg.MinBarDate)
	cfg.StartingEquity = getEnvFloat("FLOWBACK_STARTING_EQUITY", cfg.StartingEquity)
	cfg.CostBps = getEnvFloat("FLOWBACK_COST_BPS", cfg.CostBps)
	cfg.IndicatorCacheCapacity = getEnvInt("FLOWBACK_INDICATOR_CACHE_CAPACITY", cfg.IndicatorCacheCapacity)
	cfg.BarStoreCacheCapacity = getEnvInt("FLOWBACK_BAR_STORE_CACHE_CAPACITY", cfg.BarStoreCacheCapacity)
	cfg.SweepWorkers = getEnvInt("FLOWBACK_SWEEP_WORKERS", cfg.SweepWorkers)
	cfg.MetricsPort = getEnvInt("FLOWBACK_METRICS_PORT", cfg.MetricsPort)
	return cfg
}

// LoadYAML overlays a YAML file's fields onto base, leaving fields absent
// from the file untouched. A missing file is not an error; it is treated
// as "no overrides".
func LoadYAML(path string, base Engine) (Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, err
	}
	out := base
	if err := yaml.Unmarshal(data, &out); err != nil {
		return base, err
	}
	return out, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
