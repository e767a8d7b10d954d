//go:build !linux

package raster

// Native returns an Opener that reports no surface on this platform.
func Native() Opener {
	return OpenerFunc(func(Tier) (Context, func(), error) {
		return nil, nil, ErrSurfaceUnavailable
	})
}
