package gpuprobe

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
)

// Kind buckets a texture format by encoding family.
type Kind string

// Format kinds, checked in this order.
const (
	KindCompressedBC   Kind = "compressed-bc"
	KindCompressedETC2 Kind = "compressed-etc2/eac"
	KindCompressedASTC Kind = "compressed-astc"
	KindDepthStencil   Kind = "depth/stencil"
	KindSRGB           Kind = "srgb"
	KindSnorm          Kind = "snorm"
	KindUnorm          Kind = "unorm"
	KindSint           Kind = "sint"
	KindUint           Kind = "uint"
	KindFloat          Kind = "float"
	KindOther          Kind = "other"
)

// SampleClass selects the sample type, sampler type and filter mode used to
// test texture binding for a format.
type SampleClass uint8

const (
	// ClassFloatLike tries a filtering sampler first, then a non-filtering one.
	ClassFloatLike SampleClass = iota
	ClassDepth
	ClassSint
	ClassUint
)

// String returns the class name.
func (c SampleClass) String() string {
	switch c {
	case ClassDepth:
		return "depth"
	case ClassSint:
		return "sint"
	case ClassUint:
		return "uint"
	default:
		return "floatLike"
	}
}

// Format pairs a WebGPU format name with its gputypes constant.
type Format struct {
	Name string
	GPU  gputypes.TextureFormat
}

// Formats is every probed texture format, in report order.
var Formats = []Format{
	// 8-bit
	{"r8unorm", gputypes.TextureFormatR8Unorm},
	{"r8snorm", gputypes.TextureFormatR8Snorm},
	{"r8uint", gputypes.TextureFormatR8Uint},
	{"r8sint", gputypes.TextureFormatR8Sint},
	// 16-bit
	{"r16uint", gputypes.TextureFormatR16Uint},
	{"r16sint", gputypes.TextureFormatR16Sint},
	{"r16float", gputypes.TextureFormatR16Float},
	{"rg8unorm", gputypes.TextureFormatRG8Unorm},
	{"rg8snorm", gputypes.TextureFormatRG8Snorm},
	{"rg8uint", gputypes.TextureFormatRG8Uint},
	{"rg8sint", gputypes.TextureFormatRG8Sint},
	// 32-bit
	{"r32uint", gputypes.TextureFormatR32Uint},
	{"r32sint", gputypes.TextureFormatR32Sint},
	{"r32float", gputypes.TextureFormatR32Float},
	{"rg16uint", gputypes.TextureFormatRG16Uint},
	{"rg16sint", gputypes.TextureFormatRG16Sint},
	{"rg16float", gputypes.TextureFormatRG16Float},
	{"rg32uint", gputypes.TextureFormatRG32Uint},
	{"rg32sint", gputypes.TextureFormatRG32Sint},
	{"rg32float", gputypes.TextureFormatRG32Float},
	{"rgba8unorm", gputypes.TextureFormatRGBA8Unorm},
	{"rgba8unorm-srgb", gputypes.TextureFormatRGBA8UnormSrgb},
	{"rgba8snorm", gputypes.TextureFormatRGBA8Snorm},
	{"rgba8uint", gputypes.TextureFormatRGBA8Uint},
	{"rgba8sint", gputypes.TextureFormatRGBA8Sint},
	{"bgra8unorm", gputypes.TextureFormatBGRA8Unorm},
	{"bgra8unorm-srgb", gputypes.TextureFormatBGRA8UnormSrgb},
	// packed
	{"rgb9e5ufloat", gputypes.TextureFormatRGB9E5Ufloat},
	{"rgb10a2uint", gputypes.TextureFormatRGB10A2Uint},
	{"rgb10a2unorm", gputypes.TextureFormatRGB10A2Unorm},
	{"rg11b10ufloat", gputypes.TextureFormatRG11B10Ufloat},
	// 64/128-bit
	{"rgba16uint", gputypes.TextureFormatRGBA16Uint},
	{"rgba16sint", gputypes.TextureFormatRGBA16Sint},
	{"rgba16float", gputypes.TextureFormatRGBA16Float},
	{"rgba32uint", gputypes.TextureFormatRGBA32Uint},
	{"rgba32sint", gputypes.TextureFormatRGBA32Sint},
	{"rgba32float", gputypes.TextureFormatRGBA32Float},
	// depth/stencil
	{"stencil8", gputypes.TextureFormatStencil8},
	{"depth16unorm", gputypes.TextureFormatDepth16Unorm},
	{"depth24plus", gputypes.TextureFormatDepth24Plus},
	{"depth24plus-stencil8", gputypes.TextureFormatDepth24PlusStencil8},
	{"depth32float", gputypes.TextureFormatDepth32Float},
	{"depth32float-stencil8", gputypes.TextureFormatDepth32FloatStencil8},
	// BC
	{"bc1-rgba-unorm", gputypes.TextureFormatBC1RGBAUnorm},
	{"bc1-rgba-unorm-srgb", gputypes.TextureFormatBC1RGBAUnormSrgb},
	{"bc2-rgba-unorm", gputypes.TextureFormatBC2RGBAUnorm},
	{"bc2-rgba-unorm-srgb", gputypes.TextureFormatBC2RGBAUnormSrgb},
	{"bc3-rgba-unorm", gputypes.TextureFormatBC3RGBAUnorm},
	{"bc3-rgba-unorm-srgb", gputypes.TextureFormatBC3RGBAUnormSrgb},
	{"bc4-r-unorm", gputypes.TextureFormatBC4RUnorm},
	{"bc4-r-snorm", gputypes.TextureFormatBC4RSnorm},
	{"bc5-rg-unorm", gputypes.TextureFormatBC5RGUnorm},
	{"bc5-rg-snorm", gputypes.TextureFormatBC5RGSnorm},
	{"bc6h-rgb-ufloat", gputypes.TextureFormatBC6HRGBUfloat},
	{"bc6h-rgb-float", gputypes.TextureFormatBC6HRGBFloat},
	{"bc7-rgba-unorm", gputypes.TextureFormatBC7RGBAUnorm},
	{"bc7-rgba-unorm-srgb", gputypes.TextureFormatBC7RGBAUnormSrgb},
	// ETC2/EAC
	{"etc2-rgb8unorm", gputypes.TextureFormatETC2RGB8Unorm},
	{"etc2-rgb8unorm-srgb", gputypes.TextureFormatETC2RGB8UnormSrgb},
	{"etc2-rgb8a1unorm", gputypes.TextureFormatETC2RGB8A1Unorm},
	{"etc2-rgb8a1unorm-srgb", gputypes.TextureFormatETC2RGB8A1UnormSrgb},
	{"etc2-rgba8unorm", gputypes.TextureFormatETC2RGBA8Unorm},
	{"etc2-rgba8unorm-srgb", gputypes.TextureFormatETC2RGBA8UnormSrgb},
	{"eac-r11unorm", gputypes.TextureFormatEACR11Unorm},
	{"eac-r11snorm", gputypes.TextureFormatEACR11Snorm},
	{"eac-rg11unorm", gputypes.TextureFormatEACRG11Unorm},
	{"eac-rg11snorm", gputypes.TextureFormatEACRG11Snorm},
	// ASTC
	{"astc-4x4-unorm", gputypes.TextureFormatASTC4x4Unorm},
	{"astc-4x4-unorm-srgb", gputypes.TextureFormatASTC4x4UnormSrgb},
	{"astc-5x4-unorm", gputypes.TextureFormatASTC5x4Unorm},
	{"astc-5x4-unorm-srgb", gputypes.TextureFormatASTC5x4UnormSrgb},
	{"astc-5x5-unorm", gputypes.TextureFormatASTC5x5Unorm},
	{"astc-5x5-unorm-srgb", gputypes.TextureFormatASTC5x5UnormSrgb},
	{"astc-6x5-unorm", gputypes.TextureFormatASTC6x5Unorm},
	{"astc-6x5-unorm-srgb", gputypes.TextureFormatASTC6x5UnormSrgb},
	{"astc-6x6-unorm", gputypes.TextureFormatASTC6x6Unorm},
	{"astc-6x6-unorm-srgb", gputypes.TextureFormatASTC6x6UnormSrgb},
	{"astc-8x5-unorm", gputypes.TextureFormatASTC8x5Unorm},
	{"astc-8x5-unorm-srgb", gputypes.TextureFormatASTC8x5UnormSrgb},
	{"astc-8x6-unorm", gputypes.TextureFormatASTC8x6Unorm},
	{"astc-8x6-unorm-srgb", gputypes.TextureFormatASTC8x6UnormSrgb},
	{"astc-8x8-unorm", gputypes.TextureFormatASTC8x8Unorm},
	{"astc-8x8-unorm-srgb", gputypes.TextureFormatASTC8x8UnormSrgb},
	{"astc-10x5-unorm", gputypes.TextureFormatASTC10x5Unorm},
	{"astc-10x5-unorm-srgb", gputypes.TextureFormatASTC10x5UnormSrgb},
	{"astc-10x6-unorm", gputypes.TextureFormatASTC10x6Unorm},
	{"astc-10x6-unorm-srgb", gputypes.TextureFormatASTC10x6UnormSrgb},
	{"astc-10x8-unorm", gputypes.TextureFormatASTC10x8Unorm},
	{"astc-10x8-unorm-srgb", gputypes.TextureFormatASTC10x8UnormSrgb},
	{"astc-10x10-unorm", gputypes.TextureFormatASTC10x10Unorm},
	{"astc-10x10-unorm-srgb", gputypes.TextureFormatASTC10x10UnormSrgb},
	{"astc-12x10-unorm", gputypes.TextureFormatASTC12x10Unorm},
	{"astc-12x10-unorm-srgb", gputypes.TextureFormatASTC12x10UnormSrgb},
	{"astc-12x12-unorm", gputypes.TextureFormatASTC12x12Unorm},
	{"astc-12x12-unorm-srgb", gputypes.TextureFormatASTC12x12UnormSrgb},
}

// FormatName returns the WebGPU name of f, or "" if it is not probed.
func FormatName(f gputypes.TextureFormat) string {
	for _, e := range Formats {
		if e.GPU == f {
			return e.Name
		}
	}
	return ""
}

func isDepthStencil(name string) bool {
	return strings.HasPrefix(name, "depth") || strings.HasPrefix(name, "stencil")
}

// KindOf classifies a format name.
func KindOf(name string) Kind {
	switch {
	case strings.HasPrefix(name, "bc"):
		return KindCompressedBC
	case strings.HasPrefix(name, "etc2"), strings.HasPrefix(name, "eac"):
		return KindCompressedETC2
	case strings.HasPrefix(name, "astc"):
		return KindCompressedASTC
	case isDepthStencil(name):
		return KindDepthStencil
	case strings.Contains(name, "-srgb"):
		return KindSRGB
	case strings.Contains(name, "snorm"):
		return KindSnorm
	case strings.Contains(name, "unorm"):
		return KindUnorm
	case strings.Contains(name, "sint"):
		return KindSint
	case strings.Contains(name, "uint"):
		return KindUint
	case strings.Contains(name, "float"):
		return KindFloat
	}
	return KindOther
}

// IsCompressed reports whether name is a block-compressed format.
func IsCompressed(name string) bool {
	switch KindOf(name) {
	case KindCompressedBC, KindCompressedETC2, KindCompressedASTC:
		return true
	}
	return false
}

// IsHDR reports whether the format can carry values beyond 8-bit SDR.
func IsHDR(name string) bool {
	return strings.Contains(name, "float") || name == "rgb10a2unorm"
}

var astcBlock = regexp.MustCompile(`^astc-(\d+)x(\d+)-`)

// BlockSize returns the test texture size for name: the ASTC footprint,
// 4x4 for other compressed formats, and 1x1 otherwise.
func BlockSize(name string) (width, height uint32) {
	if !IsCompressed(name) {
		return 1, 1
	}
	if m := astcBlock.FindStringSubmatch(name); m != nil {
		w, errW := strconv.ParseUint(m[1], 10, 32)
		h, errH := strconv.ParseUint(m[2], 10, 32)
		if errW == nil && errH == nil {
			return uint32(w), uint32(h)
		}
	}
	return 4, 4
}

// ClassOf returns the sample class of name.
func ClassOf(name string) SampleClass {
	switch {
	case isDepthStencil(name):
		return ClassDepth
	case strings.Contains(name, "sint"):
		return ClassSint
	case strings.Contains(name, "uint") && !strings.HasSuffix(name, "unorm"):
		return ClassUint
	}
	return ClassFloatLike
}

// RequiredFeature returns the device feature a format depends on, if any.
func RequiredFeature(name string) (gputypes.Feature, bool) {
	switch {
	case name == "depth32float-stencil8":
		return gputypes.FeatureDepth32FloatStencil8, true
	case strings.HasPrefix(name, "bc"):
		return gputypes.FeatureTextureCompressionBC, true
	case strings.HasPrefix(name, "etc2"), strings.HasPrefix(name, "eac"):
		return gputypes.FeatureTextureCompressionETC2, true
	case strings.HasPrefix(name, "astc"):
		return gputypes.FeatureTextureCompressionASTC, true
	}
	return 0, false
}
