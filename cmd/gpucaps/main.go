// Command gpucaps probes the GPU, GL and display capabilities of this
// machine, prints the report, and optionally uploads it to a collection
// endpoint.
//
// Client signals are collected from the local host by default. A signals
// file recorded elsewhere (JSONC, comments allowed) can be replayed with
// --signals to re-run identity resolution against it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/gogpu/gpucaps"
	"github.com/gogpu/gpucaps/gpuprobe"
	"github.com/gogpu/gpucaps/platform"
	"github.com/gogpu/gpucaps/raster"
	"github.com/gogpu/gpucaps/signals"
	"github.com/gogpu/gpucaps/submit"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var f flags
	flagSet := newFlagSet(&f)
	flagSet.SetOutput(stderr)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet, stderr)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet, stderr)
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	configPath := f.config
	if configPath == "" {
		configPath = os.Getenv("GPUCAPS_CONFIG")
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	f.apply(flagSet, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	gpucaps.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := loadSignals(ctx, cfg.Signals)
	if err != nil {
		return err
	}

	eng := gpucaps.New(engineOptions(cfg, logger)...)
	rep, err := eng.Run(ctx, &s)
	if err != nil {
		return err
	}

	uploaded := ""
	if cfg.submits() {
		client := submit.New(cfg.Submit.Endpoint,
			submit.WithGzip(cfg.Submit.Gzip),
			submit.WithTimeout(cfg.Submit.Timeout))
		res, err := client.Submit(ctx, rep)
		if err != nil {
			logger.Warn("upload failed", "endpoint", client.Endpoint(), "error", err)
		}
		rep.ApplySubmission(res)
		uploaded = res.Describe()
	}

	data, err := encode(rep, cfg.Output.Format)
	if err != nil {
		return err
	}
	if err := writeOutput(cfg.Output.Path, data, stdout); err != nil {
		return err
	}

	line := rep.StatusLine()
	if uploaded != "" {
		line += " " + uploaded
	}
	fmt.Fprintln(stderr, line)
	return nil
}

// loadSignals replays a recorded signals file, or collects signals from
// this host. Host collection failures are partial and only logged.
func loadSignals(ctx context.Context, path string) (platform.Signals, error) {
	if path != "" {
		return signals.LoadFile(path)
	}
	s, err := signals.Host(ctx)
	if err != nil {
		gpucaps.Logger().Warn("host signals incomplete", "error", err)
	}
	return s, nil
}

func engineOptions(cfg *Config, logger *slog.Logger) []gpucaps.Option {
	opts := []gpucaps.Option{
		gpucaps.WithHDRBudget(cfg.Probe.HDRBudget),
		gpucaps.WithProgress(func(percent int, message string) {
			logger.Debug("progress", "percent", percent, "message", message)
		}),
	}
	if !cfg.Probe.SkipGPU {
		opts = append(opts, gpucaps.WithGPU(gpuprobe.Native()))
	}
	if !cfg.Probe.SkipRaster {
		opts = append(opts, gpucaps.WithRaster(raster.Native()))
	}
	return opts
}

func newFlagSet(f *flags) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("gpucaps", pflag.ContinueOnError)
	f.register(flagSet)
	flagSet.BoolP("help", "h", false, "show help")
	return flagSet
}

func printHelp(flagSet *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `gpucaps reports the texture formats, GL capabilities and display
features of this machine.

The report is written to stdout (or --output) as JSON, YAML or CBOR, and
uploaded to --endpoint unless --no-submit is given. A one-line summary
goes to stderr.

Usage:
  gpucaps [flags]

Examples:
  # Probe everything and print JSON
  gpucaps --no-submit

  # Replay signals recorded on another client, identity only
  gpucaps --signals client.jsonc --skip-gpu --skip-raster --format yaml

  # Probe and upload
  gpucaps --endpoint https://caps.example.com/api/report --gzip

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
