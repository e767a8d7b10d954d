//go:build linux

package raster

import (
	"fmt"
	"sync"

	"github.com/gogpu/wgpu/hal/gles/egl"
	"github.com/gogpu/wgpu/hal/gles/gl"
)

var (
	eglOnce sync.Once
	eglErr  error
)

// Native returns an Opener that creates surfaceless EGL contexts: GLES 3.0
// for the modern tier, GLES 2.0 for the legacy tier.
func Native() Opener {
	return OpenerFunc(openEGL)
}

func openEGL(tier Tier) (Context, func(), error) {
	eglOnce.Do(func() { eglErr = egl.Init() })
	if eglErr != nil {
		return nil, nil, fmt.Errorf("%w: egl init: %w", ErrSurfaceUnavailable, eglErr)
	}

	major := 3
	if tier == Legacy {
		major = 2
	}
	ec, err := egl.NewContext(egl.ContextConfig{
		GLVersionMajor: major,
		GLES:           true,
		Surfaceless:    true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s context: %w", ErrSurfaceUnavailable, tier, err)
	}
	if err := ec.MakeCurrent(); err != nil {
		ec.Destroy()
		return nil, nil, fmt.Errorf("%w: make current: %w", ErrSurfaceUnavailable, err)
	}

	s := &eglSurface{Context: &gl.Context{}}
	if err := s.Load(egl.GetGLProcAddress); err != nil {
		ec.Destroy()
		return nil, nil, fmt.Errorf("%w: load gl: %w", ErrSurfaceUnavailable, err)
	}
	return s, ec.Destroy, nil
}

// eglSurface is a loaded GLES context. Native GL reports the unmasked
// strings directly through VENDOR and RENDERER.
type eglSurface struct {
	*gl.Context
}

func (s *eglSurface) UnmaskedVendor() string   { return s.GetString(gl.VENDOR) }
func (s *eglSurface) UnmaskedRenderer() string { return s.GetString(gl.RENDERER) }

var _ UnmaskedInfo = (*eglSurface)(nil)
