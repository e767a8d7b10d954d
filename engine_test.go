package gpucaps

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/gpucaps/fingerprint"
	"github.com/gogpu/gpucaps/gpuprobe"
	"github.com/gogpu/gpucaps/hdr"
	"github.com/gogpu/gpucaps/platform"
	"github.com/gogpu/gpucaps/raster"
	"github.com/gogpu/gpucaps/submit"
)

const chromeMacUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

func ptr[T any](v T) *T { return &v }

// macSignals is Chrome on macOS with the architecture hint withheld.
func macSignals() *platform.Signals {
	return &platform.Signals{
		UserAgent: chromeMacUA,
		Platform:  "MacIntel",
		UAData: &platform.UAData{
			Platform:    "macOS",
			Brands:      []platform.Brand{{Brand: "Google Chrome", Version: "126"}},
			Mobile:      ptr(false),
			HighEntropy: &platform.HighEntropy{PlatformVersion: "14.5.0"},
		},
		Media:               map[string]bool{platform.QueryGamutP3: true},
		Screen:              platform.Screen{Width: 1470, Height: 956, ColorDepth: 30},
		DevicePixelRatio:    ptr(2.0),
		HardwareConcurrency: ptr(8),
		DeviceMemory:        ptr(8.0),
		MaxTouchPoints:      ptr(0),
		SecureContext:       true,
	}
}

func appleAdapter() gpuprobe.Report {
	return gpuprobe.Report{
		Available:   true,
		AdapterInfo: &gpuprobe.AdapterInfo{Vendor: "apple", Architecture: "metal-3", Description: "Apple M2 Pro"},
	}
}

func TestCorrectAppleSilicon(t *testing.T) {
	x86 := func(c *platform.CPU) {
		c.Architecture = ptr(platform.ArchX8664)
		c.Source = platform.SourceStructured
		c.IsAppleSilicon = ptr(false)
	}
	arm := func(c *platform.CPU) {
		c.Architecture = ptr(platform.ArchARM64)
		c.Source = platform.SourceStructured
		c.IsAppleSilicon = ptr(true)
		c.Evidence = "structured"
	}
	tests := []struct {
		name       string
		os         string
		cpu        func(*platform.CPU)
		hints      []string
		changed    bool
		wantArch   string
		wantSource platform.Source
		wantApple  *bool
	}{
		{"unresolved cpu", platform.OSMacOS, nil, []string{"Apple M2 Pro"}, true, platform.ArchARM64, platform.SourceGPUHints, ptr(true)},
		{"generic apple gpu", platform.OSMacOS, nil, []string{"ANGLE (Apple, ANGLE Metal Renderer: Apple GPU, Unspecified Version)"}, true, platform.ArchARM64, platform.SourceGPUHints, ptr(true)},
		{"full-width hint", platform.OSMacOS, nil, []string{"ＡＰＰＬＥ Ｍ１"}, true, platform.ArchARM64, platform.SourceGPUHints, ptr(true)},
		{"agx token", platform.OSMacOS, nil, []string{"AGX G14X"}, true, platform.ArchARM64, platform.SourceGPUHints, ptr(true)},
		{"x86 from structured data", platform.OSMacOS, x86, []string{"Apple M1"}, false, platform.ArchX8664, platform.SourceStructured, ptr(false)},
		{"arm keeps source", platform.OSMacOS, arm, []string{"Apple M3 Max"}, true, platform.ArchARM64, platform.SourceStructured, ptr(true)},
		{"not macOS", platform.OSWindows, nil, []string{"Apple M2"}, false, "", platform.SourceUnknown, nil},
		{"intel gpu", platform.OSMacOS, nil, []string{"Intel(R) Iris(TM) Plus Graphics 655", "AMD Radeon Pro 5500M"}, false, "", platform.SourceUnknown, nil},
		{"no hints", platform.OSMacOS, nil, nil, false, "", platform.SourceUnknown, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Client{Identity: platform.Identity{
				OS:  platform.OS{Name: tt.os, Version: ptr("14.5"), Source: platform.SourceStructured},
				CPU: platform.CPU{Source: platform.SourceUnknown},
			}}
			if tt.cpu != nil {
				tt.cpu(&c.Identity.CPU)
			}
			before := c.Identity.CPU.Evidence

			if got := correctAppleSilicon(&c, tt.hints); got != tt.changed {
				t.Fatalf("changed = %v, want %v", got, tt.changed)
			}
			cpu := c.Identity.CPU
			arch := ""
			if cpu.Architecture != nil {
				arch = *cpu.Architecture
			}
			if arch != tt.wantArch || cpu.Source != tt.wantSource {
				t.Errorf("cpu = %s/%s, want %s/%s", arch, cpu.Source, tt.wantArch, tt.wantSource)
			}
			if (cpu.IsAppleSilicon == nil) != (tt.wantApple == nil) ||
				(tt.wantApple != nil && *cpu.IsAppleSilicon != *tt.wantApple) {
				t.Errorf("isAppleSilicon = %v, want %v", cpu.IsAppleSilicon, tt.wantApple)
			}
			if tt.changed {
				if !strings.HasSuffix(cpu.Evidence, tt.hints[len(tt.hints)-1]) {
					t.Errorf("evidence = %q", cpu.Evidence)
				}
				if before != "" && !strings.HasPrefix(cpu.Evidence, before+" | ") {
					t.Errorf("evidence = %q, want prior evidence kept", cpu.Evidence)
				}
				if c.Platform.Summary != "macOS 14.5 • Apple Silicon (arm64)" {
					t.Errorf("summary = %q", c.Platform.Summary)
				}
			} else if cpu.Evidence != before {
				t.Errorf("evidence changed to %q", cpu.Evidence)
			}
		})
	}
}

func TestAssembleRecomputesFingerprint(t *testing.T) {
	s := macSignals()
	id := platform.Resolve(s)
	if id.CPU.Architecture != nil {
		t.Fatalf("precondition: architecture resolved to %s", *id.CPU.Architecture)
	}

	plain, err := Assemble(id, s, Results{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	corrected, err := Assemble(id, s, Results{GPU: appleAdapter()})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if plain.Client.Fingerprint.Key() == corrected.Client.Fingerprint.Key() {
		t.Error("fingerprint not recomputed after correction")
	}
	want, err := fingerprint.Sum(fingerprint.NewInput(corrected.Client.Identity, s))
	if err != nil {
		t.Fatal(err)
	}
	if corrected.Client.Fingerprint.Key() != want.Key() || corrected.Client.Fingerprint.FNV1a != want.FNV1a {
		t.Errorf("fingerprint = %+v, want %+v", corrected.Client.Fingerprint, want)
	}
	if corrected.Client.Platform.Summary != "macOS 14.5.0 • Apple Silicon (arm64)" {
		t.Errorf("summary = %q", corrected.Client.Platform.Summary)
	}
	if id.CPU.Architecture != nil {
		t.Error("Assemble mutated the caller's identity")
	}
}

func TestAssembleUpgradesASTC(t *testing.T) {
	formats := func() []gpuprobe.Capability {
		return []gpuprobe.Capability{
			{Format: "astc-4x4-unorm", Kind: gpuprobe.KindCompressedASTC, Compressed: true, Renderable: true},
			{Format: "astc-4x4-unorm-srgb", Kind: gpuprobe.KindCompressedASTC, Compressed: true, Renderable: true},
			{Format: "astc-6x6-unorm", Kind: gpuprobe.KindCompressedASTC, Compressed: true},
			{Format: "bc1-rgba-unorm", Kind: gpuprobe.KindCompressedBC, Compressed: true, Sampled: true},
		}
	}
	hdrProfile := raster.Capability{Available: true, ASTC: &raster.ASTC{Profiles: []string{"hdr", "ldr"}, HDRProfile: true, LDRProfile: true}}
	ldrOnly := raster.Capability{Available: true, ASTC: &raster.ASTC{Profiles: []string{"ldr"}, LDRProfile: true}}

	tests := []struct {
		name   string
		raster raster.Report
		want   []bool
	}{
		// The profile covers the codec, so unsupported ASTC formats are upgraded too.
		{"modern hdr profile", raster.Report{Modern: hdrProfile}, []bool{true, false, true, false}},
		{"legacy hdr profile", raster.Report{Modern: ldrOnly, Legacy: hdrProfile}, []bool{true, false, true, false}},
		{"ldr only", raster.Report{Modern: ldrOnly}, []bool{false, false, false, false}},
		{"no astc", raster.Report{}, []bool{false, false, false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := Assemble(platform.Identity{}, nil, Results{
				GPU:    gpuprobe.Report{Available: true, Formats: formats()},
				Raster: tt.raster,
			})
			if err != nil {
				t.Fatalf("Assemble: %v", err)
			}
			var got []bool
			for _, f := range rep.WebGPU.Formats {
				got = append(got, f.HDR)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("hdr flags = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunWithoutBackends(t *testing.T) {
	s := macSignals()
	s.Media[platform.QueryDynamicRangeHigh] = true
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var mu sync.Mutex
	var progress []int
	eng := New(
		WithClock(func() time.Time { return at }),
		WithProgress(func(pct int, _ string) {
			mu.Lock()
			progress = append(progress, pct)
			mu.Unlock()
		}),
	)
	rep, err := eng.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.WebGPU.Available || rep.WebGL2.Available || rep.WebGL1.Available {
		t.Errorf("backends reported available: %v %v %v", rep.WebGPU.Available, rep.WebGL2.Available, rep.WebGL1.Available)
	}
	if rep.WebGL2.Error != raster.ErrSurfaceUnavailable.Error() {
		t.Errorf("webgl2 error = %q", rep.WebGL2.Error)
	}
	if !rep.Display.HDRCapable || rep.Display.HDRSource != hdr.SourceDynamicRange || rep.HDRLabel() != "HDR" {
		t.Errorf("display = %+v", rep.Display)
	}
	if !rep.GeneratedAt.Equal(at) || rep.UserAgent != chromeMacUA {
		t.Errorf("report header = %v %q", rep.GeneratedAt, rep.UserAgent)
	}
	if rep.Client.Identity.OS.Name != platform.OSMacOS || rep.Client.Platform.NavigatorPlatform != "MacIntel" {
		t.Errorf("client = %+v", rep.Client.Platform)
	}
	if rep.Client.Hardware.DeviceMemoryNote != memoryNote {
		t.Errorf("deviceMemoryNote = %q", rep.Client.Hardware.DeviceMemoryNote)
	}
	if rep.Client.Fingerprint.SHA256 == nil || rep.Client.Fingerprint.FNV1a == "" {
		t.Errorf("fingerprint = %+v", rep.Client.Fingerprint)
	}
	if rep.StatusLine() != "Detection complete. 0/0 formats supported." {
		t.Errorf("StatusLine = %q", rep.StatusLine())
	}
	if len(progress) < 3 || progress[0] != 0 || progress[len(progress)-1] != 100 || !slices.IsSorted(progress) {
		t.Errorf("progress = %v", progress)
	}
}

func TestRunNoAdapter(t *testing.T) {
	opener := gpuprobe.OpenerFunc(func(context.Context) (gpuprobe.Adapter, error) {
		return nil, gpuprobe.ErrNoAdapter
	})
	rep, err := New(WithGPU(opener)).Run(context.Background(), macSignals())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rep.WebGPU.Available || len(rep.WebGPU.Formats) != 0 {
		t.Errorf("webgpu = %+v", rep.WebGPU)
	}
	if want := []string{"requestAdapter() returned null."}; !slices.Equal(rep.WebGPU.Errors, want) {
		t.Errorf("errors = %q, want %q", rep.WebGPU.Errors, want)
	}
}

func TestRunReplaysRecordedDecoding(t *testing.T) {
	s := macSignals()
	s.Screen.ColorDepth = 24
	s.MediaCapabilities = map[string]platform.DecodeAnswer{
		hdr.Variants[1].Config.ContentType: {Supported: true, Smooth: true},
	}
	rep, err := New().Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := hdr.SourceMediaCapabilities + ":" + hdr.Variants[1].Key
	if !rep.Display.HDRCapable || rep.Display.HDRSource != want {
		t.Errorf("display = %+v, want source %q", rep.Display, want)
	}
	if d := rep.Client.Display.Evidence.Decoding; !d.Available || len(d.Results) != len(hdr.Variants) {
		t.Errorf("decoding evidence = %+v", d)
	}
}

func TestRunRasterPanicDegrades(t *testing.T) {
	opener := raster.OpenerFunc(func(raster.Tier) (raster.Context, func(), error) {
		panic("driver crashed")
	})
	rep, err := New(WithRaster(opener)).Run(context.Background(), macSignals())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.WebGL2.Available || !strings.Contains(rep.WebGL2.Error, "driver crashed") {
		t.Errorf("webgl2 = %+v", rep.WebGL2)
	}
}

func TestRunNoReport(t *testing.T) {
	if _, err := New().Run(context.Background(), nil); !errors.Is(err, ErrNoReport) {
		t.Errorf("nil signals: err = %v, want ErrNoReport", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Run(ctx, macSignals())
	if !errors.Is(err, ErrNoReport) || !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: err = %v", err)
	}
}

func TestApplySubmissionIsDisplayOnly(t *testing.T) {
	rep, err := New().Run(context.Background(), macSignals())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	before := rep.Client.Fingerprint.Key()

	rep.ApplySubmission(submit.Result{OK: false, CountryCode: "FR"})
	if rep.Geo != nil {
		t.Errorf("failed submission set geo %+v", rep.Geo)
	}
	rep.ApplySubmission(submit.Result{OK: true, Status: 200, CountryCode: "DE"})
	if rep.Geo == nil || rep.Geo.CountryCode != "DE" {
		t.Errorf("geo = %+v", rep.Geo)
	}
	if rep.Client.Fingerprint.Key() != before {
		t.Error("submission changed the fingerprint")
	}
}
