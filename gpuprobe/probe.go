// Package gpuprobe tests every WebGPU texture format against four capability
// axes: sampled, filterable, renderable and storage.
//
// Each axis test builds the minimal resource graph that exercises it inside
// a validation error scope. A test passes only if nothing failed locally and
// the popped scope captured no error. Transient resources are released
// before the next test starts, so at most one test resource set is alive.
//
// Basic usage:
//
//	p := gpuprobe.New(gpuprobe.Native(), gpuprobe.WithProgress(func(pct int, msg string) {
//		fmt.Println(pct, msg)
//	}))
//	report := p.Probe(ctx)
package gpuprobe

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpucaps/internal/logging"
)

// progressEvery is the format stride between progress callbacks.
const progressEvery = 4

// Capability is the probe result for one format.
//
// Filterable is nil when the sample class does not admit filtering or when
// the format could not be sampled at all.
type Capability struct {
	Format     string `json:"format"`
	Kind       Kind   `json:"kind"`
	HDR        bool   `json:"hdr"`
	Compressed bool   `json:"compressed"`
	Sampled    bool   `json:"sampled"`
	Filterable *bool  `json:"filterable"`
	Renderable bool   `json:"renderable"`
	Storage    bool   `json:"storage"`
}

// Report is the complete GPU probe result.
type Report struct {
	Available             bool              `json:"available"`
	SecureContext         bool              `json:"secureContext"`
	PreferredCanvasFormat *string           `json:"preferredCanvasFormat"`
	AdapterInfo           *AdapterInfo      `json:"adapterInfo"`
	AdapterFeatures       []string          `json:"adapterFeatures"`
	DeviceFeatures        []string          `json:"deviceFeatures"`
	Limits                map[string]uint64 `json:"limits"`
	Formats               []Capability      `json:"formats"`
	Warnings              []string          `json:"warnings"`
	Errors                []string          `json:"errors"`
}

// Supported counts formats that passed at least one axis.
func (r *Report) Supported() int {
	n := 0
	for _, f := range r.Formats {
		if f.Sampled || f.Renderable || f.Storage {
			n++
		}
	}
	return n
}

// ProgressFunc receives coarse probe progress.
type ProgressFunc func(percent int, message string)

// Option configures a Prober.
type Option func(*options)

type options struct {
	progress      ProgressFunc
	secureContext bool
	formats       []Format
}

func defaultOptions() options {
	return options{secureContext: true, formats: Formats}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// WithSecureContext records whether the caller runs in a secure context.
// An insecure context adds a warning but does not stop the probe.
func WithSecureContext(secure bool) Option {
	return func(o *options) { o.secureContext = secure }
}

// WithFormats restricts the probe to fs.
func WithFormats(fs []Format) Option {
	return func(o *options) { o.formats = fs }
}

// Prober runs the format probe against adapters from an Opener.
type Prober struct {
	opener Opener
	opts   options
}

// New creates a Prober. A nil opener yields reports with Available=false.
func New(opener Opener, opts ...Option) *Prober {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Prober{opener: opener, opts: o}
}

// Probe acquires an adapter and device, tests every format and releases
// the device. Acquisition failures end the probe early with Errors set;
// per-format failures only mark that axis false.
func (p *Prober) Probe(ctx context.Context) Report {
	log := logging.Logger()
	rep := Report{
		Available:       p.opener != nil,
		SecureContext:   p.opts.secureContext,
		AdapterFeatures: []string{},
		DeviceFeatures:  []string{},
		Formats:         []Capability{},
		Warnings:        []string{},
		Errors:          []string{},
	}
	if !rep.Available {
		return rep
	}
	if !rep.SecureContext {
		rep.Warnings = append(rep.Warnings, "WebGPU requires a secure context (https or localhost).")
	}

	adapter, err := p.opener.Open(ctx)
	switch {
	case errors.Is(err, ErrUnavailable):
		rep.Available = false
		return rep
	case errors.Is(err, ErrNoAdapter):
		log.Warn("gpuprobe: no adapter", "err", err)
		rep.Errors = append(rep.Errors, "requestAdapter() returned null.")
		return rep
	case err != nil:
		rep.Errors = append(rep.Errors, fmt.Sprintf("requestAdapter() failed: %v", err))
		return rep
	case adapter == nil:
		rep.Errors = append(rep.Errors, "requestAdapter() returned null.")
		return rep
	}
	defer adapter.Release()

	info := adapter.Info()
	rep.AdapterInfo = &info
	rep.AdapterFeatures = FeatureNames(adapter.Features())
	rep.Limits = LimitsMap(adapter.Limits())
	if cf, ok := adapter.(CanvasFormatter); ok {
		if name := FormatName(cf.PreferredCanvasFormat()); name != "" {
			rep.PreferredCanvasFormat = &name
		}
	}
	log.Info("gpuprobe: adapter selected", "description", info.Description, "vendor", info.Vendor, "backend", info.Backend)

	dev, err := adapter.RequestDevice(adapter.Features())
	if err != nil {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("requestDevice(all features) failed, retrying minimal: %v", err))
		log.Warn("gpuprobe: full-feature device request failed", "err", err)
		dev, err = adapter.RequestDevice(0)
		if err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("requestDevice() failed: %v", err))
			return rep
		}
	}
	defer dev.Release()
	rep.DeviceFeatures = FeatureNames(dev.Features())

	rep.Formats = p.probeFormats(ctx, dev, &rep)
	return rep
}

func (p *Prober) probeFormats(ctx context.Context, dev Device, rep *Report) []Capability {
	formats := p.opts.formats
	out := make([]Capability, 0, len(formats))
	t := tester{dev: dev, features: dev.Features()}
	for i, f := range formats {
		if err := ctx.Err(); err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("format probe interrupted after %d/%d formats: %v", i, len(formats), err))
			break
		}
		if i%progressEvery == 0 && p.opts.progress != nil {
			pct := int(math.Round(float64(i+1) / float64(len(formats)) * 100))
			p.opts.progress(pct, fmt.Sprintf("Checking format %d/%d: %s", i+1, len(formats), f.Name))
		}
		// A scope per format collects errors raised outside the axis scopes,
		// so every uncaptured error is recorded, not only the first.
		dev.PushErrorScope()
		out = append(out, t.probe(f))
		if uncaptured := dev.PopErrorScope(); uncaptured != nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("Uncaptured WebGPU error: %v", uncaptured))
		}
	}
	return out
}

// tester runs the three axis tests for one device.
type tester struct {
	dev      Device
	features gputypes.Features
}

func (t *tester) probe(f Format) Capability {
	c := Capability{
		Format:     f.Name,
		Kind:       KindOf(f.Name),
		HDR:        IsHDR(f.Name),
		Compressed: IsCompressed(f.Name),
	}
	switch ClassOf(f.Name) {
	case ClassDepth:
		c.Sampled = t.sampled(f, gputypes.TextureSampleTypeDepth, gputypes.SamplerBindingTypeComparison, gputypes.FilterModeLinear)
	case ClassSint:
		c.Sampled = t.sampled(f, gputypes.TextureSampleTypeSint, gputypes.SamplerBindingTypeNonFiltering, gputypes.FilterModeNearest)
	case ClassUint:
		c.Sampled = t.sampled(f, gputypes.TextureSampleTypeUint, gputypes.SamplerBindingTypeNonFiltering, gputypes.FilterModeNearest)
	default:
		if t.sampled(f, gputypes.TextureSampleTypeFloat, gputypes.SamplerBindingTypeFiltering, gputypes.FilterModeLinear) {
			c.Sampled = true
			c.Filterable = boolPtr(true)
		} else if t.sampled(f, gputypes.TextureSampleTypeUnfilterableFloat, gputypes.SamplerBindingTypeNonFiltering, gputypes.FilterModeNearest) {
			c.Sampled = true
			c.Filterable = boolPtr(false)
		}
	}
	c.Renderable = t.renderable(f)
	c.Storage = t.storage(f)
	logging.Logger().Debug("gpuprobe: format probed", "format", f.Name,
		"sampled", c.Sampled, "renderable", c.Renderable, "storage", c.Storage)
	return c
}

func boolPtr(b bool) *bool { return &b }

// errMissingFeature fails a test locally without touching the device.
type errMissingFeature gputypes.Feature

func (e errMissingFeature) Error() string {
	return "gpuprobe: device lacks feature " + gputypes.Feature(e).String()
}

func (t *tester) texture(c *cleanup, f Format, usage gputypes.TextureUsage) (Resource, error) {
	if feat, ok := RequiredFeature(f.Name); ok && !t.features.Contains(feat) {
		return nil, errMissingFeature(feat)
	}
	w, h := BlockSize(f.Name)
	tex, err := t.dev.CreateTexture(TextureSpec{Format: f.GPU, Width: w, Height: h, Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	c.add(tex)
	return tex, nil
}

func (t *tester) sampled(f Format, st gputypes.TextureSampleType, bt gputypes.SamplerBindingType, filter gputypes.FilterMode) bool {
	out := withValidation(t.dev, func(c *cleanup) error {
		tex, err := t.texture(c, f, gputypes.TextureUsageTextureBinding)
		if err != nil {
			return err
		}
		view, err := t.dev.CreateView(tex)
		if err != nil {
			return fmt.Errorf("create view: %w", err)
		}
		c.add(view)
		spec := SamplerSpec{Filter: filter}
		if bt == gputypes.SamplerBindingTypeComparison {
			spec.Compare = gputypes.CompareFunctionLess
		}
		sampler, err := t.dev.CreateSampler(spec)
		if err != nil {
			return fmt.Errorf("create sampler: %w", err)
		}
		c.add(sampler)
		layout, err := t.dev.CreateBindGroupLayout([]gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture:    &gputypes.TextureBindingLayout{SampleType: st, ViewDimension: gputypes.TextureViewDimension2D},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: bt},
			},
		})
		if err != nil {
			return fmt.Errorf("create bind group layout: %w", err)
		}
		c.add(layout)
		group, err := t.dev.CreateBindGroup(layout, []Binding{{Slot: 0, View: view}, {Slot: 1, Sampler: sampler}})
		if err != nil {
			return fmt.Errorf("create bind group: %w", err)
		}
		c.add(group)
		return nil
	})
	t.trace(f, "sampled/"+st.String(), out)
	return out.OK()
}

func (t *tester) renderable(f Format) bool {
	out := withValidation(t.dev, func(c *cleanup) error {
		_, err := t.texture(c, f, gputypes.TextureUsageRenderAttachment)
		return err
	})
	t.trace(f, "renderable", out)
	return out.OK()
}

func (t *tester) storage(f Format) bool {
	out := withValidation(t.dev, func(c *cleanup) error {
		tex, err := t.texture(c, f, gputypes.TextureUsageStorageBinding)
		if err != nil {
			return err
		}
		view, err := t.dev.CreateView(tex)
		if err != nil {
			return fmt.Errorf("create view: %w", err)
		}
		c.add(view)
		layout, err := t.dev.CreateBindGroupLayout([]gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageCompute,
			StorageTexture: &gputypes.StorageTextureBindingLayout{
				Access:        gputypes.StorageTextureAccessWriteOnly,
				Format:        f.GPU,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		}})
		if err != nil {
			return fmt.Errorf("create bind group layout: %w", err)
		}
		c.add(layout)
		group, err := t.dev.CreateBindGroup(layout, []Binding{{Slot: 0, View: view}})
		if err != nil {
			return fmt.Errorf("create bind group: %w", err)
		}
		c.add(group)
		return nil
	})
	t.trace(f, "storage", out)
	return out.OK()
}

func (t *tester) trace(f Format, axis string, out Outcome) {
	if out.OK() {
		return
	}
	logging.Logger().Debug("gpuprobe: axis failed", "format", f.Name, "axis", axis, "err", out.Err())
}
