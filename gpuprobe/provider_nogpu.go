//go:build nogpu

package gpuprobe

import (
	"context"

	"github.com/gogpu/gpucontext"
)

// FromProvider reports the GPU API as unavailable in nogpu builds.
func FromProvider(gpucontext.DeviceProvider) Opener {
	return OpenerFunc(func(context.Context) (Adapter, error) {
		return nil, ErrUnavailable
	})
}
