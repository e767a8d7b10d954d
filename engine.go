package gpucaps

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gogpu/gpucaps/fingerprint"
	"github.com/gogpu/gpucaps/gpuprobe"
	"github.com/gogpu/gpucaps/hdr"
	"github.com/gogpu/gpucaps/internal/logging"
	"github.com/gogpu/gpucaps/internal/parallel"
	"github.com/gogpu/gpucaps/platform"
	"github.com/gogpu/gpucaps/raster"
)

// Engine runs capability probes and assembles reports. An Engine may be
// reused; each Run owns its own GPU device and raster contexts.
type Engine struct {
	opts options
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{opts: o}
}

// Results holds the raw outputs of the concurrent probes.
type Results struct {
	GPU    gpuprobe.Report
	HDR    hdr.Verdict
	Raster raster.Report
}

// Run resolves identity from s, probes the GPU, the raster tiers and HDR
// concurrently, and assembles the report. It returns ErrNoReport only when
// ctx is already done or s is nil.
func (e *Engine) Run(ctx context.Context, s *platform.Signals) (*Report, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: no signals", ErrNoReport)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoReport, err)
	}
	log := logging.Logger()
	e.progress(0, "Resolving platform...")
	id := platform.Resolve(s)

	res := e.probe(ctx, s)

	e.progress(96, "Normalizing platform details...")
	rep, err := Assemble(id, s, res)
	if err != nil {
		return nil, err
	}
	rep.GeneratedAt = e.opts.now().UTC()
	e.progress(100, "Complete!")

	n, m := rep.SupportedFormats()
	log.Info("gpucaps: report assembled", "id", rep.ID, "platform", rep.Client.Platform.Summary,
		"formats", n, "probed", m, "hdr", rep.HDRLabel())
	return rep, nil
}

// probe fans out the three probes and joins them.
func (e *Engine) probe(ctx context.Context, s *platform.Signals) Results {
	var res Results
	pool := parallel.NewPool(e.opts.workers)
	defer pool.Close()
	logging.Logger().Debug("gpucaps: probing", "workers", pool.Workers())

	media := e.opts.media
	if media == nil {
		media = s
	}
	decoder := e.opts.decoder
	if decoder == nil {
		decoder = hdr.Recorded(s.MediaCapabilities)
	}

	gpuOpts := append([]gpuprobe.Option{
		gpuprobe.WithSecureContext(s.SecureContext),
		gpuprobe.WithProgress(func(pct int, msg string) {
			// The format sweep covers 5..95 of the run.
			e.progress(5+pct*90/100, msg)
		}),
	}, e.opts.gpuOpts...)

	errs := pool.Run(
		func() error {
			res.GPU = gpuprobe.New(e.opts.gpu, gpuOpts...).Probe(ctx)
			return nil
		},
		func() error {
			res.HDR = hdr.Fuse(ctx, hdr.Input{
				Media:      media,
				Decoder:    decoder,
				ColorDepth: s.Screen.ColorDepth,
				Budget:     e.opts.hdrBudget,
			})
			return nil
		},
		func() error {
			if e.opts.raster == nil {
				unavailable := raster.Capability{Error: raster.ErrSurfaceUnavailable.Error()}
				res.Raster = raster.Report{Modern: unavailable, Legacy: unavailable}
				return nil
			}
			res.Raster = raster.GatherAll(e.opts.raster)
			return nil
		},
	)

	// A crashed probe degrades to its unavailable form.
	names := []string{"gpu", "hdr", "raster"}
	for i, err := range errs {
		if err == nil {
			continue
		}
		logging.Logger().Warn("gpucaps: probe failed", "probe", names[i], "err", err)
		switch i {
		case 0:
			res.GPU = gpuprobe.Report{Errors: []string{err.Error()}}
		case 1:
			res.HDR = hdr.Resolve(hdr.Evidence{})
		case 2:
			res.Raster = raster.Report{
				Modern: raster.Capability{Error: err.Error()},
				Legacy: raster.Capability{Error: err.Error()},
			}
		}
	}
	return res
}

func (e *Engine) progress(pct int, msg string) {
	if e.opts.progress != nil {
		e.opts.progress(pct, msg)
	}
}

// Assemble joins probe results into a report, applies the correction pass
// and computes the fingerprint. GeneratedAt is left zero.
func Assemble(id platform.Identity, s *platform.Signals, res Results) (*Report, error) {
	if s == nil {
		s = &platform.Signals{}
	}
	rep := &Report{
		ID:            uuid.New(),
		UserAgent:     s.UserAgent,
		SecureContext: s.SecureContext,
		Client:        newClient(id, s, res.HDR),
		Display:       summarize(res.HDR),
		WebGPU:        res.GPU,
		WebGL2:        res.Raster.Modern,
		WebGL1:        res.Raster.Legacy,
	}

	correctAppleSilicon(&rep.Client, gpuHints(rep))
	upgradeASTCHDR(rep)

	hashes, err := fingerprint.Sum(fingerprint.NewInput(rep.Client.Identity, s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoReport, err)
	}
	rep.Client.Fingerprint = hashes
	return rep, nil
}
