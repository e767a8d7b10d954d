package raster

import "fmt"

// GL enums the hal/gles/gl package does not define.
const (
	glMaxCubeMapTextureSize       = 0x851C
	glMaxVertexTextureImageUnits  = 0x8B4C
	glMax3DTextureSize            = 0x8073
	glMaxArrayTextureLayers       = 0x88FF
	glNumCompressedTextureFormats = 0x86A2
	glCompressedTextureFormats    = 0x86A3
	glMaxTextureMaxAnisotropyEXT  = 0x84FF
	glHalfFloatOES                = 0x8D61
)

const (
	maxCompressedFormats = 1024
	maxErrorDrain        = 16
)

// compressedNames maps compressed texture format enums to their names.
var compressedNames = map[int32]string{
	// S3TC / DXT
	0x83f0: "COMPRESSED_RGB_S3TC_DXT1_EXT",
	0x83f1: "COMPRESSED_RGBA_S3TC_DXT1_EXT",
	0x83f2: "COMPRESSED_RGBA_S3TC_DXT3_EXT",
	0x83f3: "COMPRESSED_RGBA_S3TC_DXT5_EXT",
	// S3TC sRGB
	0x8c4c: "COMPRESSED_SRGB_S3TC_DXT1_EXT",
	0x8c4d: "COMPRESSED_SRGB_ALPHA_S3TC_DXT1_EXT",
	0x8c4e: "COMPRESSED_SRGB_ALPHA_S3TC_DXT3_EXT",
	0x8c4f: "COMPRESSED_SRGB_ALPHA_S3TC_DXT5_EXT",
	// ETC1
	0x8d64: "COMPRESSED_RGB_ETC1_WEBGL",
	// ETC2/EAC
	0x9270: "COMPRESSED_R11_EAC",
	0x9271: "COMPRESSED_SIGNED_R11_EAC",
	0x9272: "COMPRESSED_RG11_EAC",
	0x9273: "COMPRESSED_SIGNED_RG11_EAC",
	0x9274: "COMPRESSED_RGB8_ETC2",
	0x9275: "COMPRESSED_SRGB8_ETC2",
	0x9276: "COMPRESSED_RGB8_PUNCHTHROUGH_ALPHA1_ETC2",
	0x9277: "COMPRESSED_SRGB8_PUNCHTHROUGH_ALPHA1_ETC2",
	0x9278: "COMPRESSED_RGBA8_ETC2_EAC",
	0x9279: "COMPRESSED_SRGB8_ALPHA8_ETC2_EAC",
	// BPTC
	0x8e8c: "COMPRESSED_RGBA_BPTC_UNORM_EXT",
	0x8e8d: "COMPRESSED_SRGB_ALPHA_BPTC_UNORM_EXT",
	0x8e8e: "COMPRESSED_RGB_BPTC_SIGNED_FLOAT_EXT",
	0x8e8f: "COMPRESSED_RGB_BPTC_UNSIGNED_FLOAT_EXT",
	// RGTC
	0x8dbb: "COMPRESSED_RED_RGTC1_EXT",
	0x8dbc: "COMPRESSED_SIGNED_RED_RGTC1_EXT",
	0x8dbd: "COMPRESSED_RED_GREEN_RGTC2_EXT",
	0x8dbe: "COMPRESSED_SIGNED_RED_GREEN_RGTC2_EXT",
	// ASTC
	0x93b0: "COMPRESSED_RGBA_ASTC_4x4_KHR",
	0x93b1: "COMPRESSED_RGBA_ASTC_5x4_KHR",
	0x93b2: "COMPRESSED_RGBA_ASTC_5x5_KHR",
	0x93b3: "COMPRESSED_RGBA_ASTC_6x5_KHR",
	0x93b4: "COMPRESSED_RGBA_ASTC_6x6_KHR",
	0x93b5: "COMPRESSED_RGBA_ASTC_8x5_KHR",
	0x93b6: "COMPRESSED_RGBA_ASTC_8x6_KHR",
	0x93b7: "COMPRESSED_RGBA_ASTC_8x8_KHR",
	0x93b8: "COMPRESSED_RGBA_ASTC_10x5_KHR",
	0x93b9: "COMPRESSED_RGBA_ASTC_10x6_KHR",
	0x93ba: "COMPRESSED_RGBA_ASTC_10x8_KHR",
	0x93bb: "COMPRESSED_RGBA_ASTC_10x10_KHR",
	0x93bc: "COMPRESSED_RGBA_ASTC_12x10_KHR",
	0x93bd: "COMPRESSED_RGBA_ASTC_12x12_KHR",
	0x93d0: "COMPRESSED_SRGB8_ALPHA8_ASTC_4x4_KHR",
	0x93d1: "COMPRESSED_SRGB8_ALPHA8_ASTC_5x4_KHR",
	0x93d2: "COMPRESSED_SRGB8_ALPHA8_ASTC_5x5_KHR",
	0x93d3: "COMPRESSED_SRGB8_ALPHA8_ASTC_6x5_KHR",
	0x93d4: "COMPRESSED_SRGB8_ALPHA8_ASTC_6x6_KHR",
	0x93d5: "COMPRESSED_SRGB8_ALPHA8_ASTC_8x5_KHR",
	0x93d6: "COMPRESSED_SRGB8_ALPHA8_ASTC_8x6_KHR",
	0x93d7: "COMPRESSED_SRGB8_ALPHA8_ASTC_8x8_KHR",
	0x93d8: "COMPRESSED_SRGB8_ALPHA8_ASTC_10x5_KHR",
	0x93d9: "COMPRESSED_SRGB8_ALPHA8_ASTC_10x6_KHR",
	0x93da: "COMPRESSED_SRGB8_ALPHA8_ASTC_10x8_KHR",
	0x93db: "COMPRESSED_SRGB8_ALPHA8_ASTC_10x10_KHR",
	0x93dc: "COMPRESSED_SRGB8_ALPHA8_ASTC_12x10_KHR",
	0x93dd: "COMPRESSED_SRGB8_ALPHA8_ASTC_12x12_KHR",
}

// CompressedName returns the name of a compressed format enum, or its raw
// hex encoding when the enum is not in the table.
func CompressedName(v int32) string {
	if name, ok := compressedNames[v]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", uint32(v))
}
