package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config is the gpucaps command configuration. It is loaded from the
// file given by --config or GPUCAPS_CONFIG; flags set on the command
// line override file values.
type Config struct {
	// Signals is a JSONC file with recorded client signals. Empty means
	// collect them from the local host.
	Signals string `yaml:"signals"`

	Submit SubmitConfig `yaml:"submit"`
	Probe  ProbeConfig  `yaml:"probe"`
	Output OutputConfig `yaml:"output"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// SubmitConfig configures report upload. Nothing is uploaded while
// Endpoint is empty.
type SubmitConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
	Gzip     bool          `yaml:"gzip"`
}

// ProbeConfig selects which probes run.
type ProbeConfig struct {
	SkipGPU    bool          `yaml:"skip_gpu"`
	SkipRaster bool          `yaml:"skip_raster"`
	HDRBudget  time.Duration `yaml:"hdr_budget"`
}

// OutputConfig configures where and how the report is written.
type OutputConfig struct {
	// Format is json, yaml or cbor.
	Format string `yaml:"format"`
	// Path is the output file. Empty or "-" means stdout.
	Path string `yaml:"path"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Submit: SubmitConfig{
			Enabled: true,
			Timeout: 30 * time.Second,
		},
		Probe: ProbeConfig{
			HDRBudget: 1500 * time.Millisecond,
		},
		Output: OutputConfig{
			Format: formatJSON,
		},
		LogLevel: "warn",
	}
}

// LoadConfig reads path over the defaults. An empty path returns the
// defaults unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// flags holds the command-line values before they are merged into a Config.
type flags struct {
	config     string
	signals    string
	endpoint   string
	timeout    time.Duration
	gzip       bool
	noSubmit   bool
	skipGPU    bool
	skipRaster bool
	format     string
	output     string
	logLevel   string
}

func (f *flags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.config, "config", "", "YAML configuration file (default: $GPUCAPS_CONFIG)")
	fs.StringVar(&f.signals, "signals", "", "JSONC file with recorded client signals (default: collect from this host)")
	fs.StringVar(&f.endpoint, "endpoint", "", "report collection endpoint URL")
	fs.DurationVar(&f.timeout, "timeout", 30*time.Second, "upload timeout")
	fs.BoolVar(&f.gzip, "gzip", false, "gzip the upload body")
	fs.BoolVar(&f.noSubmit, "no-submit", false, "do not upload the report")
	fs.BoolVar(&f.skipGPU, "skip-gpu", false, "skip the GPU texture format probe")
	fs.BoolVar(&f.skipRaster, "skip-raster", false, "skip the GL context probe")
	fs.StringVarP(&f.format, "format", "f", formatJSON, "report encoding: json, yaml or cbor")
	fs.StringVarP(&f.output, "output", "o", "", "write the report to this file (default: stdout)")
	fs.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
}

// apply overrides cfg with every flag the user set explicitly.
func (f *flags) apply(fs *pflag.FlagSet, cfg *Config) {
	if fs.Changed("signals") {
		cfg.Signals = f.signals
	}
	if fs.Changed("endpoint") {
		cfg.Submit.Endpoint = f.endpoint
	}
	if fs.Changed("timeout") {
		cfg.Submit.Timeout = f.timeout
	}
	if fs.Changed("gzip") {
		cfg.Submit.Gzip = f.gzip
	}
	if fs.Changed("no-submit") {
		cfg.Submit.Enabled = !f.noSubmit
	}
	if fs.Changed("skip-gpu") {
		cfg.Probe.SkipGPU = f.skipGPU
	}
	if fs.Changed("skip-raster") {
		cfg.Probe.SkipRaster = f.skipRaster
	}
	if fs.Changed("format") {
		cfg.Output.Format = f.format
	}
	if fs.Changed("output") {
		cfg.Output.Path = f.output
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
}

// submits reports whether a report should be uploaded.
func (c *Config) submits() bool {
	return c.Submit.Enabled && c.Submit.Endpoint != ""
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case formatJSON, formatYAML, formatCBOR:
	default:
		return fmt.Errorf("unknown output format %q (want json, yaml or cbor)", c.Output.Format)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Submit.Timeout < 0 {
		return fmt.Errorf("negative upload timeout %s", c.Submit.Timeout)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
