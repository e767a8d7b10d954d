//go:build !nogpu

package gpuprobe

import (
	"context"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
)

// FromProvider returns an Opener that probes the device owned by a host
// application. The device is borrowed: the probe never releases it, and
// RequestDevice hands back the host device with its existing features.
func FromProvider(p gpucontext.DeviceProvider) Opener {
	return OpenerFunc(func(ctx context.Context) (Adapter, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrNoAdapter
		}
		dev, ok := p.Device().(*wgpu.Device)
		if !ok || dev == nil {
			return nil, fmt.Errorf("%w: provider device is %T", ErrNoAdapter, p.Device())
		}
		a := &providerAdapter{provider: p, dev: dev}
		if ad, ok := p.Adapter().(*wgpu.Adapter); ok {
			a.adapter = ad
		}
		return a, nil
	})
}

type providerAdapter struct {
	provider gpucontext.DeviceProvider
	dev      *wgpu.Device
	adapter  *wgpu.Adapter
}

func (a *providerAdapter) Info() AdapterInfo {
	if a.adapter != nil {
		return adapterInfo(a.adapter.Info())
	}
	info := a.provider.AdapterInfo()
	return AdapterInfo{Description: info.Name, Type: AdapterTypeName(info.Type)}
}

func (a *providerAdapter) Features() gputypes.Features {
	if a.adapter != nil {
		return a.adapter.Features()
	}
	return a.dev.Features()
}

func (a *providerAdapter) Limits() gputypes.Limits { return a.dev.Limits() }

func (a *providerAdapter) RequestDevice(gputypes.Features) (Device, error) {
	return &wgpuDevice{dev: a.dev, borrowed: true}, nil
}

func (a *providerAdapter) Release() {}

func (a *providerAdapter) PreferredCanvasFormat() gputypes.TextureFormat {
	return a.provider.SurfaceFormat()
}
