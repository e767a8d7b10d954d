package gpuprobe

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func TestFormatsTable(t *testing.T) {
	if len(Formats) != 95 {
		t.Errorf("len(Formats) = %d, want 95", len(Formats))
	}
	seen := make(map[string]bool)
	for _, f := range Formats {
		if seen[f.Name] {
			t.Errorf("duplicate format %q", f.Name)
		}
		seen[f.Name] = true
		if f.GPU == gputypes.TextureFormatUndefined {
			t.Errorf("%s maps to undefined", f.Name)
		}
		if got := FormatName(f.GPU); got != f.Name {
			t.Errorf("FormatName(%v) = %q, want %q", f.GPU, got, f.Name)
		}
	}
	if Formats[0].Name != "r8unorm" || Formats[len(Formats)-1].Name != "astc-12x12-unorm-srgb" {
		t.Error("unexpected table order")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"bc6h-rgb-ufloat", KindCompressedBC},
		{"etc2-rgb8a1unorm", KindCompressedETC2},
		{"eac-r11snorm", KindCompressedETC2},
		{"astc-10x5-unorm-srgb", KindCompressedASTC},
		{"depth24plus-stencil8", KindDepthStencil},
		{"stencil8", KindDepthStencil},
		{"rgba8unorm-srgb", KindSRGB},
		{"rg8snorm", KindSnorm},
		{"rgb10a2unorm", KindUnorm},
		{"r16sint", KindSint},
		{"rgb10a2uint", KindUint},
		{"rgba16float", KindFloat},
		{"rg11b10ufloat", KindFloat},
		{"r8", KindOther},
	}
	for _, tt := range tests {
		if got := KindOf(tt.name); got != tt.want {
			t.Errorf("KindOf(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestIsHDR(t *testing.T) {
	for name, want := range map[string]bool{
		"rgba16float":    true,
		"rgb9e5ufloat":   true,
		"rg11b10ufloat":  true,
		"rgb10a2unorm":   true,
		"bc6h-rgb-float": true,
		"depth32float":   true,
		"rgba8unorm":     false,
		"rgb10a2uint":    false,
		"astc-4x4-unorm": false,
	} {
		if got := IsHDR(name); got != want {
			t.Errorf("IsHDR(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestBlockSize(t *testing.T) {
	tests := []struct {
		name string
		w, h uint32
	}{
		{"rgba8unorm", 1, 1},
		{"depth32float", 1, 1},
		{"bc1-rgba-unorm", 4, 4},
		{"etc2-rgba8unorm", 4, 4},
		{"astc-4x4-unorm", 4, 4},
		{"astc-10x6-unorm-srgb", 10, 6},
		{"astc-12x12-unorm", 12, 12},
	}
	for _, tt := range tests {
		w, h := BlockSize(tt.name)
		if w != tt.w || h != tt.h {
			t.Errorf("BlockSize(%q) = %dx%d, want %dx%d", tt.name, w, h, tt.w, tt.h)
		}
	}
}

func TestClassOf(t *testing.T) {
	tests := []struct {
		name string
		want SampleClass
	}{
		{"depth16unorm", ClassDepth},
		{"stencil8", ClassDepth},
		{"rgba32sint", ClassSint},
		{"r8uint", ClassUint},
		{"rgb10a2uint", ClassUint},
		{"rgba8unorm", ClassFloatLike},
		{"bc4-r-unorm", ClassFloatLike},
		{"rgba16float", ClassFloatLike},
	}
	for _, tt := range tests {
		if got := ClassOf(tt.name); got != tt.want {
			t.Errorf("ClassOf(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRequiredFeature(t *testing.T) {
	if f, ok := RequiredFeature("bc7-rgba-unorm"); !ok || f != gputypes.FeatureTextureCompressionBC {
		t.Errorf("bc7: %v %v", f, ok)
	}
	if f, ok := RequiredFeature("eac-rg11unorm"); !ok || f != gputypes.FeatureTextureCompressionETC2 {
		t.Errorf("eac: %v %v", f, ok)
	}
	if _, ok := RequiredFeature("rgba8unorm"); ok {
		t.Error("rgba8unorm needs no feature")
	}
}

func TestFeatureNames(t *testing.T) {
	fs := gputypes.Features(gputypes.FeatureShaderF16) | gputypes.Features(gputypes.FeatureDepthClipControl)
	got := FeatureNames(fs)
	if !slices.Equal(got, []string{"depth-clip-control", "shader-f16"}) {
		t.Errorf("FeatureNames = %v", got)
	}
	if got := FeatureNames(0); len(got) != 0 {
		t.Errorf("FeatureNames(0) = %v", got)
	}
}

func TestAdapterTypeName(t *testing.T) {
	tests := []struct {
		in   gpucontext.AdapterType
		want string
	}{
		{gpucontext.AdapterTypeDiscrete, "DiscreteGPU"},
		{gpucontext.AdapterTypeIntegrated, "IntegratedGPU"},
		{gpucontext.AdapterTypeSoftware, "CPU"},
		{gpucontext.AdapterTypeUnknown, "Other"},
	}
	for _, tt := range tests {
		if got := AdapterTypeName(tt.in); got != tt.want {
			t.Errorf("AdapterTypeName(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type stackScope struct {
	pushed, popped int
	err            error
}

func (s *stackScope) PushErrorScope() { s.pushed++ }

func (s *stackScope) PopErrorScope() error {
	s.popped++
	return s.err
}

type orderResource struct {
	id    int
	order *[]int
}

func (r orderResource) Release() { *r.order = append(*r.order, r.id) }

func TestWithValidation(t *testing.T) {
	t.Run("both gates", func(t *testing.T) {
		s := &stackScope{}
		if out := withValidation(s, func(*cleanup) error { return nil }); !out.OK() {
			t.Errorf("clean attempt failed: %+v", out)
		}
		s.err = &ValidationError{Message: "bad format"}
		out := withValidation(s, func(*cleanup) error { return nil })
		var ve *ValidationError
		if out.OK() || !errors.As(out.Err(), &ve) {
			t.Errorf("captured error not reported: %+v", out)
		}
		s.err = nil
		thrown := errors.New("boom")
		if out := withValidation(s, func(*cleanup) error { return thrown }); out.OK() || out.Err() != thrown {
			t.Errorf("thrown error not reported: %+v", out)
		}
		if s.pushed != 3 || s.popped != 3 {
			t.Errorf("push/pop = %d/%d", s.pushed, s.popped)
		}
	})

	t.Run("cleanup runs in reverse even on panic", func(t *testing.T) {
		s := &stackScope{}
		var order []int
		out := withValidation(s, func(c *cleanup) error {
			c.add(orderResource{1, &order})
			c.add(orderResource{2, &order})
			panic("driver crash")
		})
		if out.Thrown == nil {
			t.Error("panic not converted to error")
		}
		if !slices.Equal(order, []int{2, 1}) {
			t.Errorf("release order = %v", order)
		}
		if s.popped != 1 {
			t.Error("scope not popped after panic")
		}
	})
}
