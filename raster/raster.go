// Package raster gathers the legacy raster GPU capability surface: basic
// strings, limits, extensions, compressed formats, anisotropy and
// float/half-float texture support.
//
// Each tier runs against a throwaway off-screen context obtained from an
// Opener. The modern tier corresponds to WebGL 2 / GLES 3, the legacy tier
// to WebGL 1 / GLES 2. A tier whose context cannot be created reports
// Available=false.
package raster

import (
	"errors"
	"runtime"
	"slices"
	"strings"

	"github.com/gogpu/wgpu/hal/gles/gl"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gogpu/gpucaps/internal/logging"
)

// ErrSurfaceUnavailable is returned by an Opener that cannot create a
// context for the requested tier.
var ErrSurfaceUnavailable = errors.New("raster: surface unavailable")

// Tier selects the context generation to open.
type Tier uint8

const (
	// Modern is the WebGL 2 / GLES 3 tier.
	Modern Tier = iota
	// Legacy is the WebGL 1 / GLES 2 tier.
	Legacy
)

// String returns the report key of the tier.
func (t Tier) String() string {
	if t == Modern {
		return "webgl2"
	}
	return "webgl1"
}

// Context is the GL entry point subset the gatherer calls. Its method set
// matches *gl.Context from gogpu/wgpu/hal/gles/gl.
type Context interface {
	GetError() uint32
	GetString(name uint32) string
	GetIntegerv(pname uint32, data *int32)
	GenTextures(n int32) uint32
	DeleteTextures(textures ...uint32)
	BindTexture(target, texture uint32)
	TexParameteri(target, pname uint32, param int32)
	TexImage2D(target uint32, level, internalformat, width, height, border int32, format, typ uint32, pixels uintptr)
	GenFramebuffers(n int32) uint32
	DeleteFramebuffers(framebuffers ...uint32)
	BindFramebuffer(target, framebuffer uint32)
	FramebufferTexture2D(target, attachment, textarget, texture uint32, level int32)
	CheckFramebufferStatus(target uint32) uint32
}

// UnmaskedInfo is implemented by contexts that expose the unmasked
// vendor and renderer strings.
type UnmaskedInfo interface {
	UnmaskedVendor() string
	UnmaskedRenderer() string
}

// ASTCProfiler is implemented by contexts that list ASTC profiles directly.
type ASTCProfiler interface {
	ASTCProfiles() []string
}

// Opener creates a context for a tier. The release function destroys it.
type Opener interface {
	Open(tier Tier) (ctx Context, release func(), err error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(tier Tier) (Context, func(), error)

// Open calls f(tier).
func (f OpenerFunc) Open(tier Tier) (Context, func(), error) { return f(tier) }

// Basic holds the identification strings of a context.
type Basic struct {
	Version                string `json:"version"`
	ShadingLanguageVersion string `json:"shadingLanguageVersion"`
	Vendor                 string `json:"vendor"`
	Renderer               string `json:"renderer"`
}

// DebugInfo holds the unmasked vendor and renderer.
type DebugInfo struct {
	UnmaskedVendor   string `json:"UNMASKED_VENDOR_WEBGL"`
	UnmaskedRenderer string `json:"UNMASKED_RENDERER_WEBGL"`
}

// Anisotropy reports anisotropic filtering support.
type Anisotropy struct {
	Supported bool     `json:"supported"`
	Max       *float64 `json:"max"`
}

// ASTC reports the ASTC profiles. Profiles is nil when the context cannot
// enumerate them.
type ASTC struct {
	Profiles   []string `json:"profiles"`
	HDRProfile bool     `json:"hdrProfile"`
	LDRProfile bool     `json:"ldrProfile"`
}

// TextureTests are the direct construction results, independent of the
// advertised extensions.
type TextureTests struct {
	FloatTexture        bool `json:"floatTexture"`
	HalfFloatTexture    bool `json:"halfFloatTexture"`
	FloatRenderable     bool `json:"floatRenderable"`
	HalfFloatRenderable bool `json:"halfFloatRenderable"`
}

// Capability is the gathered surface of one tier.
type Capability struct {
	Available         bool             `json:"available"`
	WebGL2            bool             `json:"webgl2"`
	Basic             *Basic           `json:"basic,omitempty"`
	Limits            map[string]int32 `json:"limits,omitempty"`
	Extensions        map[string]bool  `json:"extensions,omitempty"`
	DebugInfo         *DebugInfo       `json:"debugInfo,omitempty"`
	CompressedFormats []string         `json:"compressedFormats,omitempty"`
	ASTC              *ASTC            `json:"astc,omitempty"`
	Anisotropy        *Anisotropy      `json:"anisotropy,omitempty"`
	TextureTests      *TextureTests    `json:"textureTests,omitempty"`
	Error             string           `json:"error,omitempty"`
}

// Hints returns the renderer strings of the tier.
func (c *Capability) Hints() []string {
	if c == nil || !c.Available {
		return nil
	}
	var out []string
	if c.DebugInfo != nil {
		out = append(out, c.DebugInfo.UnmaskedRenderer)
	}
	if c.Basic != nil {
		out = append(out, c.Basic.Renderer)
	}
	return out
}

// Report holds both tiers.
type Report struct {
	Modern Capability `json:"webgl2"`
	Legacy Capability `json:"webgl1"`
}

// GatherAll gathers the modern tier, then the legacy tier.
func GatherAll(o Opener) Report {
	return Report{Modern: Gather(o, Modern), Legacy: Gather(o, Legacy)}
}

// Gather opens a context for tier, reads its capabilities and releases it.
// The calling goroutine is locked to its OS thread for the duration, since
// GL contexts are thread-bound.
func Gather(o Opener, tier Tier) Capability {
	if o == nil {
		return Capability{Error: ErrSurfaceUnavailable.Error()}
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ctx, release, err := o.Open(tier)
	if err != nil {
		logging.Logger().Warn("raster: context unavailable", "tier", tier, "err", err)
		return Capability{Error: err.Error()}
	}
	if release != nil {
		defer release()
	}
	c := gather(ctx, tier == Modern)
	logging.Logger().Info("raster: tier gathered", "tier", tier,
		"renderer", c.Basic.Renderer, "extensions", len(c.Extensions))
	return c
}

func gather(ctx Context, modern bool) Capability {
	c := Capability{
		Available: true,
		WebGL2:    modern,
		Basic: &Basic{
			Version:                ctx.GetString(gl.VERSION),
			ShadingLanguageVersion: ctx.GetString(gl.SHADING_LANGUAGE_VERSION),
			Vendor:                 ctx.GetString(gl.VENDOR),
			Renderer:               ctx.GetString(gl.RENDERER),
		},
		Limits:     readLimits(ctx, modern),
		Extensions: readExtensions(ctx),
	}

	c.Anisotropy = &Anisotropy{}
	for _, name := range []string{
		"EXT_texture_filter_anisotropic",
		"MOZ_EXT_texture_filter_anisotropic",
		"WEBKIT_EXT_texture_filter_anisotropic",
	} {
		if c.Extensions[name] {
			c.Extensions["EXT_texture_filter_anisotropic"] = true
			var v int32
			ctx.GetIntegerv(glMaxTextureMaxAnisotropyEXT, &v)
			maxAniso := float64(v)
			c.Anisotropy = &Anisotropy{Supported: true, Max: &maxAniso}
			break
		}
	}

	c.ASTC = readASTC(ctx, c.Extensions)
	if u, ok := ctx.(UnmaskedInfo); ok {
		c.DebugInfo = &DebugInfo{UnmaskedVendor: u.UnmaskedVendor(), UnmaskedRenderer: u.UnmaskedRenderer()}
	}
	c.CompressedFormats = readCompressed(ctx)
	tests := testTextures(ctx, modern, c.Extensions)
	c.TextureTests = &tests
	return c
}

func readLimits(ctx Context, modern bool) map[string]int32 {
	type limit struct {
		name string
		enum uint32
	}
	limits := []limit{
		{"MAX_TEXTURE_SIZE", gl.MAX_TEXTURE_SIZE},
		{"MAX_CUBE_MAP_TEXTURE_SIZE", glMaxCubeMapTextureSize},
		{"MAX_RENDERBUFFER_SIZE", gl.MAX_RENDERBUFFER_SIZE},
		{"MAX_TEXTURE_IMAGE_UNITS", gl.MAX_TEXTURE_IMAGE_UNITS},
		{"MAX_VERTEX_TEXTURE_IMAGE_UNITS", glMaxVertexTextureImageUnits},
		{"MAX_COMBINED_TEXTURE_IMAGE_UNITS", gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS},
	}
	if modern {
		limits = append(limits,
			limit{"MAX_3D_TEXTURE_SIZE", glMax3DTextureSize},
			limit{"MAX_ARRAY_TEXTURE_LAYERS", glMaxArrayTextureLayers},
		)
	}
	out := make(map[string]int32, len(limits))
	for _, l := range limits {
		var v int32
		ctx.GetIntegerv(l.enum, &v)
		out[l.name] = v
	}
	drainErrors(ctx)
	return out
}

// readExtensions returns the advertised extensions with any "GL_" prefix
// removed. Lookups are exact and case-sensitive.
func readExtensions(ctx Context) map[string]bool {
	out := make(map[string]bool)
	for name := range strings.FieldsSeq(ctx.GetString(gl.EXTENSIONS)) {
		out[strings.TrimPrefix(name, "GL_")] = true
	}
	drainErrors(ctx)
	return out
}

var lower = cases.Lower(language.Und)

func readASTC(ctx Context, ext map[string]bool) *ASTC {
	webgl := ext["WEBGL_compressed_texture_astc"]
	ldr := ext["KHR_texture_compression_astc_ldr"]
	hdr := ext["KHR_texture_compression_astc_hdr"]
	if !webgl && !ldr && !hdr {
		return nil
	}
	var raw []string
	switch p, ok := ctx.(ASTCProfiler); {
	case ok:
		raw = p.ASTCProfiles()
	case ldr || hdr:
		if ldr {
			raw = append(raw, "ldr")
		}
		if hdr {
			raw = append(raw, "hdr")
		}
	default:
		return &ASTC{}
	}
	profiles := NormalizeProfiles(raw)
	return &ASTC{
		Profiles:   profiles,
		HDRProfile: slices.Contains(profiles, "hdr"),
		LDRProfile: slices.Contains(profiles, "ldr"),
	}
}

// NormalizeProfiles trims, lower-cases, deduplicates and sorts profile
// names, dropping empty entries.
func NormalizeProfiles(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = lower.String(strings.TrimSpace(p))
		if p != "" && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}

func readCompressed(ctx Context) []string {
	var n int32
	ctx.GetIntegerv(glNumCompressedTextureFormats, &n)
	if n <= 0 {
		drainErrors(ctx)
		return []string{}
	}
	n = min(n, maxCompressedFormats)
	enums := make([]int32, n)
	ctx.GetIntegerv(glCompressedTextureFormats, &enums[0])
	drainErrors(ctx)
	out := make([]string, 0, n)
	for _, v := range enums {
		out = append(out, CompressedName(v))
	}
	slices.Sort(out)
	return out
}

func drainErrors(ctx Context) {
	for range maxErrorDrain {
		if ctx.GetError() == gl.NO_ERROR {
			return
		}
	}
}

func testTextures(ctx Context, modern bool, ext map[string]bool) TextureTests {
	var r TextureTests
	if modern || ext["OES_texture_float"] {
		internal := int32(gl.RGBA)
		if modern {
			internal = gl.RGBA32F
		}
		r.FloatTexture, r.FloatRenderable = constructTexture(ctx, internal, gl.FLOAT)
	}
	var halfType uint32
	switch {
	case modern:
		halfType = gl.HALF_FLOAT
	case ext["OES_texture_half_float"]:
		halfType = glHalfFloatOES
	}
	if halfType != 0 {
		internal := int32(gl.RGBA)
		if modern {
			internal = gl.RGBA16F
		}
		r.HalfFloatTexture, r.HalfFloatRenderable = constructTexture(ctx, internal, halfType)
	}
	return r
}

// constructTexture allocates a 1x1 RGBA texture of the given type and, if
// that succeeds, checks whether it completes a framebuffer.
func constructTexture(ctx Context, internal int32, typ uint32) (ok, renderable bool) {
	drainErrors(ctx)
	tex := ctx.GenTextures(1)
	defer ctx.DeleteTextures(tex)

	ctx.BindTexture(gl.TEXTURE_2D, tex)
	ctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	ctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	ctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	ctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	ctx.TexImage2D(gl.TEXTURE_2D, 0, internal, 1, 1, 0, gl.RGBA, typ, 0)
	ok = ctx.GetError() == gl.NO_ERROR
	ctx.BindTexture(gl.TEXTURE_2D, 0)
	if !ok {
		return false, false
	}

	fb := ctx.GenFramebuffers(1)
	ctx.BindFramebuffer(gl.FRAMEBUFFER, fb)
	ctx.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	renderable = ctx.CheckFramebufferStatus(gl.FRAMEBUFFER) == gl.FRAMEBUFFER_COMPLETE
	ctx.BindFramebuffer(gl.FRAMEBUFFER, 0)
	ctx.DeleteFramebuffers(fb)
	return true, renderable
}
