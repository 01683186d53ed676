// Package config loads the solver's tunable parameters from a YAML or
// JSON file, with environment-variable overrides, using the same
// koanf-based layering the teacher uses for its own configuration.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/go-viper/mapstructure/v2"

	"github.com/alderwick/gridsched/core/anneal"
)

// moveKindNames maps the move_weights config keys to anneal.Kind values.
var moveKindNames = map[string]anneal.Kind{
	"shift_constant":      anneal.ShiftConstant,
	"reallocate_variable": anneal.ReallocateVariable,
	"perturb_battery":     anneal.PerturbBattery,
}

// AnnealerConfig holds the cooling-schedule and search parameters named
// in spec.md §6.
type AnnealerConfig struct {
	Delta        time.Duration      `json:"delta"`
	Alpha        float64            `json:"alpha"`
	T0Multiplier float64            `json:"t0_multiplier"`
	T0Samples    int                `json:"t0_samples"`
	CoolEvery    int                `json:"cool_every"`
	TMin         float64            `json:"t_min"`
	StallLimit   int                `json:"stall_limit"`
	IterationCap int                `json:"iteration_cap"`
	AuditEvery   int                `json:"audit_every"`
	Seed         int64              `json:"seed"`
	MoveWeights  map[string]float64 `json:"move_weights"`
	// DisableWarmStart turns off the LP-based variable-action warm start,
	// falling back to InitialState's plain uniform fill. Warm start is on
	// by default.
	DisableWarmStart bool `json:"disable_warm_start"`
}

// SetDefaults fills unset fields with the typical values named in
// spec.md §4.7.
func (c *AnnealerConfig) SetDefaults() {
	if c.Delta == 0 {
		c.Delta = 15 * time.Minute
	}
	if c.Alpha == 0 {
		c.Alpha = 0.995
	}
	if c.T0Multiplier == 0 {
		c.T0Multiplier = 2
	}
	if c.T0Samples == 0 {
		c.T0Samples = 64
	}
	if c.CoolEvery == 0 {
		c.CoolEvery = 1
	}
	if c.TMin == 0 {
		c.TMin = 1e-6
	}
	if c.StallLimit == 0 {
		c.StallLimit = 2000
	}
	if c.IterationCap == 0 {
		c.IterationCap = 100000
	}
	if c.AuditEvery == 0 {
		c.AuditEvery = 500
	}
}

// Validate checks the invariants Load does not already enforce by type.
func (c AnnealerConfig) Validate() error {
	if c.Delta <= 0 {
		return fmt.Errorf("config: delta must be positive")
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("config: alpha must be in (0,1)")
	}
	if c.StallLimit <= 0 {
		return fmt.Errorf("config: stall_limit must be positive")
	}
	if c.IterationCap <= 0 {
		return fmt.Errorf("config: iteration_cap must be positive")
	}
	return nil
}

// ToAnnealConfig converts the on-disk representation to anneal.Config,
// resolving the string move_weights keys to anneal.Kind values.
func (c AnnealerConfig) ToAnnealConfig() (anneal.Config, error) {
	cfg := anneal.Config{
		Seed:         c.Seed,
		Alpha:        c.Alpha,
		T0Multiplier: c.T0Multiplier,
		T0Samples:    c.T0Samples,
		CoolEvery:    c.CoolEvery,
		TMin:         c.TMin,
		StallLimit:   c.StallLimit,
		IterationCap: c.IterationCap,
		AuditEvery:   c.AuditEvery,
		WarmStart:    !c.DisableWarmStart,
	}
	if len(c.MoveWeights) > 0 {
		cfg.Weights = make(map[anneal.Kind]float64, len(c.MoveWeights))
		for name, w := range c.MoveWeights {
			k, ok := moveKindNames[name]
			if !ok {
				return anneal.Config{}, fmt.Errorf("config: unknown move kind %q", name)
			}
			cfg.Weights[k] = w
		}
	}
	return cfg, nil
}

// MetricsConfig controls whether solve progress is exposed via a
// Prometheus HTTP endpoint.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
}

// SetDefaults fills in the default scrape address.
func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}

// Config is the top-level configuration document.
type Config struct {
	Annealer AnnealerConfig `json:"annealer"`
	Logging  LoggingConfig  `json:"logging"`
	Metrics  MetricsConfig  `json:"metrics"`
}

// Load reads a YAML or JSON config file at path, applies G_-prefixed
// environment overrides (by analogy to the teacher's K_ prefix), fills
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("G_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "g_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			TagName:          "json",
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, err
	}
	cfg.Annealer.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Annealer.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
