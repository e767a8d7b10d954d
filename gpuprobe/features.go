package gpuprobe

import (
	"slices"

	"github.com/gogpu/gputypes"
)

var featureNames = map[gputypes.Feature]string{
	gputypes.FeatureDepthClipControl:                     "depth-clip-control",
	gputypes.FeatureDepth32FloatStencil8:                 "depth32float-stencil8",
	gputypes.FeatureTextureCompressionBC:                 "texture-compression-bc",
	gputypes.FeatureTextureCompressionETC2:               "texture-compression-etc2",
	gputypes.FeatureTextureCompressionASTC:               "texture-compression-astc",
	gputypes.FeatureIndirectFirstInstance:                "indirect-first-instance",
	gputypes.FeatureShaderF16:                            "shader-f16",
	gputypes.FeatureRG11B10UfloatRenderable:              "rg11b10ufloat-renderable",
	gputypes.FeatureBGRA8UnormStorage:                    "bgra8unorm-storage",
	gputypes.FeatureFloat32Filterable:                    "float32-filterable",
	gputypes.FeatureTimestampQuery:                       "timestamp-query",
	gputypes.FeaturePipelineStatisticsQuery:              "pipeline-statistics-query",
	gputypes.FeatureMultiDrawIndirect:                    "multi-draw-indirect",
	gputypes.FeatureMultiDrawIndirectCount:               "multi-draw-indirect-count",
	gputypes.FeaturePushConstants:                        "push-constants",
	gputypes.FeatureTextureAdapterSpecificFormatFeatures: "texture-adapter-specific-format-features",
	gputypes.FeatureShaderFloat64:                        "shader-f64",
	gputypes.FeatureVertexAttribute64bit:                 "vertex-attribute-64bit",
	gputypes.FeatureSubgroupOperations:                   "subgroups",
	gputypes.FeatureSubgroupBarrier:                      "subgroup-barrier",
}

// FeatureNames lists the WebGPU names of every feature in fs, sorted.
func FeatureNames(fs gputypes.Features) []string {
	names := make([]string, 0, fs.Count())
	for f, name := range featureNames {
		if fs.Contains(f) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// LimitsMap flattens texture and binding limits into WebGPU-named entries.
func LimitsMap(l gputypes.Limits) map[string]uint64 {
	return map[string]uint64{
		"maxTextureDimension1D":             uint64(l.MaxTextureDimension1D),
		"maxTextureDimension2D":             uint64(l.MaxTextureDimension2D),
		"maxTextureDimension3D":             uint64(l.MaxTextureDimension3D),
		"maxTextureArrayLayers":             uint64(l.MaxTextureArrayLayers),
		"maxBindGroups":                     uint64(l.MaxBindGroups),
		"maxBindingsPerBindGroup":           uint64(l.MaxBindingsPerBindGroup),
		"maxSampledTexturesPerShaderStage":  uint64(l.MaxSampledTexturesPerShaderStage),
		"maxSamplersPerShaderStage":         uint64(l.MaxSamplersPerShaderStage),
		"maxStorageTexturesPerShaderStage":  uint64(l.MaxStorageTexturesPerShaderStage),
		"maxStorageBuffersPerShaderStage":   uint64(l.MaxStorageBuffersPerShaderStage),
		"maxUniformBuffersPerShaderStage":   uint64(l.MaxUniformBuffersPerShaderStage),
		"maxUniformBufferBindingSize":       l.MaxUniformBufferBindingSize,
		"maxStorageBufferBindingSize":       l.MaxStorageBufferBindingSize,
		"maxBufferSize":                     l.MaxBufferSize,
		"maxVertexBuffers":                  uint64(l.MaxVertexBuffers),
		"maxVertexAttributes":               uint64(l.MaxVertexAttributes),
		"maxColorAttachments":               uint64(l.MaxColorAttachments),
		"maxComputeWorkgroupStorageSize":    uint64(l.MaxComputeWorkgroupStorageSize),
		"maxComputeInvocationsPerWorkgroup": uint64(l.MaxComputeInvocationsPerWorkgroup),
	}
}
