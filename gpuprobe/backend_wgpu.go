//go:build !nogpu

package gpuprobe

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	// Register the native HAL backends.
	_ "github.com/gogpu/wgpu/hal/allbackends"
)

const probeLabel = "gpucaps-probe"

var errForeignResource = errors.New("gpuprobe: resource not created by this device")

// Native returns an Opener backed by gogpu/wgpu that requests the
// high-performance adapter across all registered backends.
func Native() Opener {
	return OpenerFunc(openNative)
}

func openNative(ctx context.Context) (Adapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	instance, err := wgpu.CreateInstance(&wgpu.InstanceDescriptor{Backends: wgpu.BackendsAll})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: %w", ErrNoAdapter, err)
	}
	return &wgpuAdapter{instance: instance, adapter: adapter}, nil
}

type wgpuAdapter struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
}

func (a *wgpuAdapter) Info() AdapterInfo           { return adapterInfo(a.adapter.Info()) }
func (a *wgpuAdapter) Features() gputypes.Features { return a.adapter.Features() }
func (a *wgpuAdapter) Limits() gputypes.Limits     { return a.adapter.Limits() }

func (a *wgpuAdapter) RequestDevice(required gputypes.Features) (Device, error) {
	dev, err := a.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            probeLabel,
		RequiredFeatures: required,
	})
	if err != nil {
		return nil, err
	}
	return &wgpuDevice{dev: dev}, nil
}

func (a *wgpuAdapter) Release() {
	a.adapter.Release()
	a.instance.Release()
}

func adapterInfo(info wgpu.AdapterInfo) AdapterInfo {
	out := AdapterInfo{
		Vendor:      info.Vendor,
		Description: info.Name,
		Type:        info.DeviceType.String(),
		Backend:     info.Backend.String(),
		Driver:      info.Driver,
	}
	if info.DeviceID != 0 {
		out.Device = fmt.Sprintf("0x%04x", info.DeviceID)
	}
	if out.Vendor == "" && info.VendorID != 0 {
		out.Vendor = fmt.Sprintf("0x%04x", info.VendorID)
	}
	if info.DriverInfo != "" {
		out.Architecture = info.DriverInfo
	}
	return out
}

// wgpuDevice adapts *wgpu.Device to Device. A borrowed device is never
// released by the probe.
type wgpuDevice struct {
	dev      *wgpu.Device
	borrowed bool
}

func (d *wgpuDevice) PushErrorScope() { d.dev.PushErrorScope(wgpu.ErrorFilterValidation) }

func (d *wgpuDevice) PopErrorScope() error {
	if gpuErr := d.dev.PopErrorScope(); gpuErr != nil {
		return &ValidationError{Message: gpuErr.Message}
	}
	return nil
}

func (d *wgpuDevice) Features() gputypes.Features { return d.dev.Features() }

func (d *wgpuDevice) CreateTexture(spec TextureSpec) (Resource, error) {
	tex, err := d.dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         probeLabel,
		Size:          wgpu.Extent3D{Width: spec.Width, Height: spec.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        spec.Format,
		Usage:         spec.Usage,
	})
	if err != nil {
		return nil, err
	}
	return tex, nil
}

func (d *wgpuDevice) CreateView(texture Resource) (Resource, error) {
	tex, ok := texture.(*wgpu.Texture)
	if !ok {
		return nil, errForeignResource
	}
	view, err := d.dev.CreateTextureView(tex, &wgpu.TextureViewDescriptor{
		Label:           probeLabel,
		Format:          tex.Format(),
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (d *wgpuDevice) CreateSampler(spec SamplerSpec) (Resource, error) {
	s, err := d.dev.CreateSampler(&wgpu.SamplerDescriptor{
		Label:        probeLabel,
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    spec.Filter,
		MinFilter:    spec.Filter,
		MipmapFilter: spec.Filter,
		LodMaxClamp:  32,
		Compare:      spec.Compare,
		Anisotropy:   1,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (d *wgpuDevice) CreateBindGroupLayout(entries []gputypes.BindGroupLayoutEntry) (Resource, error) {
	l, err := d.dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{Label: probeLabel, Entries: entries})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (d *wgpuDevice) CreateBindGroup(layout Resource, entries []Binding) (Resource, error) {
	l, ok := layout.(*wgpu.BindGroupLayout)
	if !ok {
		return nil, errForeignResource
	}
	out := make([]wgpu.BindGroupEntry, 0, len(entries))
	for _, b := range entries {
		e := wgpu.BindGroupEntry{Binding: b.Slot}
		switch {
		case b.View != nil:
			v, ok := b.View.(*wgpu.TextureView)
			if !ok {
				return nil, errForeignResource
			}
			e.TextureView = v
		case b.Sampler != nil:
			s, ok := b.Sampler.(*wgpu.Sampler)
			if !ok {
				return nil, errForeignResource
			}
			e.Sampler = s
		}
		out = append(out, e)
	}
	g, err := d.dev.CreateBindGroup(&wgpu.BindGroupDescriptor{Label: probeLabel, Layout: l, Entries: out})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (d *wgpuDevice) Release() {
	if !d.borrowed {
		d.dev.Release()
	}
}
