package gpuprobe

import "github.com/gogpu/gpucontext"

// AdapterTypeName maps a host adapter classification to the device type
// names used in reports.
func AdapterTypeName(t gpucontext.AdapterType) string {
	switch t {
	case gpucontext.AdapterTypeDiscrete:
		return "DiscreteGPU"
	case gpucontext.AdapterTypeIntegrated:
		return "IntegratedGPU"
	case gpucontext.AdapterTypeSoftware:
		return "CPU"
	default:
		return "Other"
	}
}
