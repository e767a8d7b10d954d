//go:build nogpu

package gpuprobe

import "context"

// Native returns an Opener that always reports the GPU API as unavailable.
func Native() Opener {
	return OpenerFunc(func(context.Context) (Adapter, error) {
		return nil, ErrUnavailable
	})
}
