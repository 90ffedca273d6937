package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/coherencegate/internal/coherence"
	"github.com/danmuck/coherencegate/internal/logging"
)

// Output selects how gatectl renders results.
type Output string

const (
	OutputJSON  Output = "json"
	OutputYAML  Output = "yaml"
	OutputTable Output = "table"
)

func ParseOutput(raw string) (Output, error) {
	switch o := Output(strings.ToLower(strings.TrimSpace(raw))); o {
	case OutputJSON, OutputYAML, OutputTable:
		return o, nil
	default:
		return "", fmt.Errorf("unknown output %q (must be json, yaml or table)", raw)
	}
}

type LogConfig struct {
	Level     string
	Format    string
	Timestamp bool
}

type GateConfig struct {
	Threshold   float64
	Output      Output
	MetricsFile string
	Log         LogConfig
}

func DefaultGateConfig() GateConfig {
	return GateConfig{
		Threshold: coherence.DefaultThreshold,
		Output:    OutputJSON,
		Log: LogConfig{
			Level:     "info",
			Format:    string(logging.FormatConsole),
			Timestamp: true,
		},
	}
}

type fileLogConfig struct {
	Level     string `toml:"level"`
	Format    string `toml:"format"`
	Timestamp bool   `toml:"timestamp"`
}

type fileConfig struct {
	Threshold   float64       `toml:"threshold"`
	Output      string        `toml:"output"`
	MetricsFile string        `toml:"metrics_file"`
	Log         fileLogConfig `toml:"log"`
}

// LoadGateConfig overlays the keys defined in the TOML file at path onto
// DefaultGateConfig and validates the result.
func LoadGateConfig(path string) (GateConfig, error) {
	cfg := DefaultGateConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return GateConfig{}, fmt.Errorf("load gate config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return GateConfig{}, fmt.Errorf("load gate config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("threshold") {
		cfg.Threshold = raw.Threshold
	}
	if meta.IsDefined("output") {
		out, err := ParseOutput(raw.Output)
		if err != nil {
			return GateConfig{}, fmt.Errorf("parse output: %w", err)
		}
		cfg.Output = out
	}
	if meta.IsDefined("metrics_file") {
		cfg.MetricsFile = strings.TrimSpace(raw.MetricsFile)
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "format") {
		cfg.Log.Format = strings.TrimSpace(raw.Log.Format)
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Log.Timestamp = raw.Log.Timestamp
	}

	if err := ValidateGateConfig(cfg); err != nil {
		return GateConfig{}, err
	}
	return cfg, nil
}

func ValidateGateConfig(cfg GateConfig) error {
	if math.IsNaN(cfg.Threshold) || cfg.Threshold <= 0 || cfg.Threshold > 1 {
		return fmt.Errorf("gate config threshold must be in (0, 1], got %v", cfg.Threshold)
	}
	if _, err := ParseOutput(string(cfg.Output)); err != nil {
		return fmt.Errorf("gate config: %w", err)
	}
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("gate config log level %q is not recognised", cfg.Log.Level)
	}
	if _, ok := logging.ParseFormat(cfg.Log.Format); !ok {
		return fmt.Errorf("gate config log format %q is not recognised", cfg.Log.Format)
	}
	return nil
}

// LoggingConfig converts the log section into a logging.Config for the
// runtime profile.
func (c GateConfig) LoggingConfig() logging.Config {
	out := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(c.Log.Level); ok {
		out.Level = lvl
	}
	if f, ok := logging.ParseFormat(c.Log.Format); ok {
		out.Format = f
	}
	out.Timestamp = c.Log.Timestamp
	return out
}

// Builder returns a record builder bound to the configured threshold.
func (c GateConfig) Builder() coherence.Builder {
	return coherence.NewBuilder(c.Threshold)
}
