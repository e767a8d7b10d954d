package gpucaps

import (
	"time"

	"github.com/gogpu/gpucaps/gpuprobe"
	"github.com/gogpu/gpucaps/hdr"
	"github.com/gogpu/gpucaps/raster"
)

// Option configures an Engine.
//
// Example:
//
//	// Identity and HDR only; no GPU or raster probing
//	eng := gpucaps.New()
//
//	// Full run against the native stack
//	eng := gpucaps.New(gpucaps.WithGPU(gpuprobe.Native()), gpucaps.WithRaster(raster.Native()))
type Option func(*options)

// ProgressFunc receives coarse run progress, 0 to 100.
type ProgressFunc func(percent int, message string)

type options struct {
	gpu       gpuprobe.Opener
	gpuOpts   []gpuprobe.Option
	raster    raster.Opener
	decoder   hdr.DecodeQuerier
	media     hdr.MediaMatcher
	progress  ProgressFunc
	now       func() time.Time
	hdrBudget time.Duration
	workers   int
}

// defaultOptions returns the default engine options.
func defaultOptions() options {
	return options{
		now:       time.Now,
		hdrBudget: hdr.DefaultProbeBudget,
		workers:   3,
	}
}

// WithGPU sets the adapter source for the format probe. Without it the
// GPU sub-report is available:false.
func WithGPU(o gpuprobe.Opener, opts ...gpuprobe.Option) Option {
	return func(c *options) {
		c.gpu = o
		c.gpuOpts = opts
	}
}

// WithRaster sets the context source for the raster gatherer. Without it
// both tiers are available:false.
func WithRaster(o raster.Opener) Option {
	return func(c *options) { c.raster = o }
}

// WithDecoder sets the video-decode capability source for HDR fusion.
// Without it the decode answers recorded in the signals are replayed.
func WithDecoder(q hdr.DecodeQuerier) Option {
	return func(c *options) { c.decoder = q }
}

// WithMedia overrides the media queries recorded in the signals.
func WithMedia(m hdr.MediaMatcher) Option {
	return func(c *options) { c.media = m }
}

// WithProgress sets the progress callback. It may be called from several
// goroutines, never concurrently.
func WithProgress(fn ProgressFunc) Option {
	return func(c *options) { c.progress = fn }
}

// WithClock sets the clock used for the report timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *options) {
		if now != nil {
			c.now = now
		}
	}
}

// WithHDRBudget bounds each HDR decode sub-probe.
func WithHDRBudget(d time.Duration) Option {
	return func(c *options) {
		if d > 0 {
			c.hdrBudget = d
		}
	}
}
