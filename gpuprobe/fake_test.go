package gpuprobe

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// fakeCaps lists what a fake device accepts for one format.
type fakeCaps struct {
	filterable   bool
	unfilterable bool
	depth        bool
	integer      bool
	render       bool
	storage      bool
	// throwOnCreate makes CreateTexture fail synchronously.
	throwOnCreate bool
}

type fakeResource struct {
	dev      *fakeDevice
	format   gputypes.TextureFormat
	released bool
}

func (r *fakeResource) Release() {
	if r.released {
		panic("double release")
	}
	r.released = true
	r.dev.live--
}

// fakeDevice validates like a WebGPU device: most failures are captured by
// the innermost error scope instead of being returned.
type fakeDevice struct {
	caps     map[gputypes.TextureFormat]fakeCaps
	features gputypes.Features

	scopes     []error
	uncaptured []error
	live       int
	maxLive    int
	pushes     int
	released   bool
	// strays are raised outside any per-test scope, one per outermost push.
	strays []error
}

func newFakeDevice(caps map[gputypes.TextureFormat]fakeCaps) *fakeDevice {
	return &fakeDevice{caps: caps, features: ^gputypes.Features(0)}
}

func (d *fakeDevice) PushErrorScope() {
	d.pushes++
	d.scopes = append(d.scopes, nil)
	if len(d.strays) > 0 && len(d.scopes) == 1 {
		d.capture(d.strays[0])
		d.strays = d.strays[1:]
	}
}

func (d *fakeDevice) PopErrorScope() error {
	if len(d.scopes) == 0 {
		return errors.New("pop without push")
	}
	err := d.scopes[len(d.scopes)-1]
	d.scopes = d.scopes[:len(d.scopes)-1]
	return err
}

func (d *fakeDevice) capture(err error) {
	if len(d.scopes) == 0 {
		d.uncaptured = append(d.uncaptured, err)
		return
	}
	if d.scopes[len(d.scopes)-1] == nil {
		d.scopes[len(d.scopes)-1] = &ValidationError{Message: err.Error()}
	}
}

func (d *fakeDevice) Features() gputypes.Features { return d.features }

func (d *fakeDevice) newResource(f gputypes.TextureFormat) *fakeResource {
	d.live++
	d.maxLive = max(d.maxLive, d.live)
	return &fakeResource{dev: d, format: f}
}

func (d *fakeDevice) CreateTexture(spec TextureSpec) (Resource, error) {
	c := d.caps[spec.Format]
	if c.throwOnCreate {
		return nil, errors.New("synchronous texture failure")
	}
	switch spec.Usage {
	case gputypes.TextureUsageRenderAttachment:
		if !c.render {
			d.capture(fmt.Errorf("format %v not renderable", spec.Format))
		}
	case gputypes.TextureUsageStorageBinding:
		if !c.storage {
			d.capture(fmt.Errorf("format %v not storage", spec.Format))
		}
	}
	return d.newResource(spec.Format), nil
}

func (d *fakeDevice) CreateView(texture Resource) (Resource, error) {
	return d.newResource(texture.(*fakeResource).format), nil
}

func (d *fakeDevice) CreateSampler(SamplerSpec) (Resource, error) {
	return d.newResource(gputypes.TextureFormatUndefined), nil
}

func (d *fakeDevice) CreateBindGroupLayout(entries []gputypes.BindGroupLayoutEntry) (Resource, error) {
	return &fakeLayout{fakeResource: d.newResource(gputypes.TextureFormatUndefined), entries: entries}, nil
}

type fakeLayout struct {
	*fakeResource
	entries []gputypes.BindGroupLayoutEntry
}

func (d *fakeDevice) CreateBindGroup(layout Resource, entries []Binding) (Resource, error) {
	l := layout.(*fakeLayout)
	for _, b := range entries {
		if b.View == nil {
			continue
		}
		format := b.View.(*fakeResource).format
		c := d.caps[format]
		for _, e := range l.entries {
			if e.Binding != b.Slot {
				continue
			}
			if e.Texture != nil && !sampleTypeOK(c, e.Texture.SampleType) {
				d.capture(fmt.Errorf("sample type %v invalid for %v", e.Texture.SampleType, format))
			}
		}
	}
	return d.newResource(gputypes.TextureFormatUndefined), nil
}

func sampleTypeOK(c fakeCaps, st gputypes.TextureSampleType) bool {
	switch st {
	case gputypes.TextureSampleTypeFloat:
		return c.filterable
	case gputypes.TextureSampleTypeUnfilterableFloat:
		return c.unfilterable || c.filterable
	case gputypes.TextureSampleTypeDepth:
		return c.depth
	case gputypes.TextureSampleTypeSint, gputypes.TextureSampleTypeUint:
		return c.integer
	}
	return false
}

func (d *fakeDevice) Release() { d.released = true }

type fakeAdapter struct {
	info      AdapterInfo
	features  gputypes.Features
	device    *fakeDevice
	deviceErr []error
	requests  []gputypes.Features
	released  bool
	canvas    gputypes.TextureFormat
}

func (a *fakeAdapter) Info() AdapterInfo           { return a.info }
func (a *fakeAdapter) Features() gputypes.Features { return a.features }
func (a *fakeAdapter) Limits() gputypes.Limits     { return gputypes.DefaultLimits() }
func (a *fakeAdapter) Release()                    { a.released = true }

func (a *fakeAdapter) PreferredCanvasFormat() gputypes.TextureFormat { return a.canvas }

func (a *fakeAdapter) RequestDevice(required gputypes.Features) (Device, error) {
	a.requests = append(a.requests, required)
	if len(a.deviceErr) > 0 {
		err := a.deviceErr[0]
		a.deviceErr = a.deviceErr[1:]
		if err != nil {
			return nil, err
		}
	}
	return a.device, nil
}

func openerFor(a Adapter, err error) Opener {
	return OpenerFunc(func(context.Context) (Adapter, error) { return a, err })
}
