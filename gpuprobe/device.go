package gpuprobe

import (
	"context"
	"errors"

	"github.com/gogpu/gputypes"
)

// Sentinel errors.
var (
	// ErrNoAdapter is returned by an Opener when no adapter matches.
	ErrNoAdapter = errors.New("gpuprobe: no adapter")

	// ErrUnavailable is returned by an Opener when no GPU API is present.
	ErrUnavailable = errors.New("gpuprobe: GPU API unavailable")
)

// Resource is any transient GPU object created by a test.
type Resource interface {
	Release()
}

// TextureSpec describes a single-mip 2D test texture.
type TextureSpec struct {
	Format gputypes.TextureFormat
	Width  uint32
	Height uint32
	Usage  gputypes.TextureUsage
}

// SamplerSpec describes a test sampler. Compare is undefined for
// non-comparison samplers.
type SamplerSpec struct {
	Filter  gputypes.FilterMode
	Compare gputypes.CompareFunction
}

// Binding is one bind group entry; exactly one of View and Sampler is set.
type Binding struct {
	Slot    uint32
	View    Resource
	Sampler Resource
}

// Device is the slice of a GPU device the probe exercises.
type Device interface {
	Scope
	Features() gputypes.Features
	CreateTexture(spec TextureSpec) (Resource, error)
	CreateView(texture Resource) (Resource, error)
	CreateSampler(spec SamplerSpec) (Resource, error)
	CreateBindGroupLayout(entries []gputypes.BindGroupLayoutEntry) (Resource, error)
	CreateBindGroup(layout Resource, entries []Binding) (Resource, error)
	// Release destroys the device. Borrowed devices ignore it.
	Release()
}

// AdapterInfo describes the selected adapter.
type AdapterInfo struct {
	Vendor       string `json:"vendor"`
	Architecture string `json:"architecture"`
	Device       string `json:"device"`
	Description  string `json:"description"`
	Type         string `json:"type,omitempty"`
	Backend      string `json:"backend,omitempty"`
	Driver       string `json:"driver,omitempty"`
}

// Hints returns the identifying strings of the adapter.
func (a *AdapterInfo) Hints() []string {
	if a == nil {
		return nil
	}
	return []string{a.Description, a.Architecture, a.Device, a.Vendor}
}

// Adapter is a selected physical GPU.
type Adapter interface {
	Info() AdapterInfo
	Features() gputypes.Features
	Limits() gputypes.Limits
	RequestDevice(required gputypes.Features) (Device, error)
	Release()
}

// Opener acquires the high-performance adapter of the environment.
type Opener interface {
	Open(ctx context.Context) (Adapter, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context) (Adapter, error)

// Open calls f(ctx).
func (f OpenerFunc) Open(ctx context.Context) (Adapter, error) { return f(ctx) }

// CanvasFormatter is implemented by adapters that know the preferred
// presentation format.
type CanvasFormatter interface {
	PreferredCanvasFormat() gputypes.TextureFormat
}
