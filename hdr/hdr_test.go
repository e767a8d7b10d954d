package hdr

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/gpucaps/platform"
)

type mediaSet map[string]bool

func (m mediaSet) MatchMedia(q string) bool { return m[q] }

// fakeDecoder answers per content type; missing entries are unsupported.
type fakeDecoder struct {
	answers map[string]DecodingInfo
	errs    map[string]error
	block   map[string]bool
	calls   atomic.Int32
}

func (f *fakeDecoder) DecodingInfo(ctx context.Context, cfg VideoConfig) (DecodingInfo, error) {
	f.calls.Add(1)
	if f.block[cfg.ContentType] {
		<-ctx.Done()
		return DecodingInfo{}, ctx.Err()
	}
	if err := f.errs[cfg.ContentType]; err != nil {
		return DecodingInfo{}, err
	}
	return f.answers[cfg.ContentType], nil
}

func variantType(key string) string {
	for _, v := range Variants {
		if v.Key == key {
			return v.Config.ContentType
		}
	}
	return ""
}

func TestVariantsShape(t *testing.T) {
	want := []string{"vp9-pq", "av1-pq", "hevc-pq"}
	if len(Variants) != len(want) {
		t.Fatalf("len(Variants) = %d, want %d", len(Variants), len(want))
	}
	for i, v := range Variants {
		if v.Key != want[i] {
			t.Errorf("Variants[%d].Key = %q, want %q", i, v.Key, want[i])
		}
		c := v.Config
		if c.Width != 3840 || c.Height != 2160 || c.TransferFunction != "pq" || c.ColorGamut != "rec2020" {
			t.Errorf("%s: unexpected config %+v", v.Key, c)
		}
	}
}

func TestDetectDecodingNilQuerier(t *testing.T) {
	d := DetectDecoding(context.Background(), nil, 0)
	if d.Available || d.Supported || d.Best != nil {
		t.Errorf("DetectDecoding(nil) = %+v, want unavailable", d)
	}
}

func TestDetectDecodingBestIsFirstSupportedInOrder(t *testing.T) {
	dec := &fakeDecoder{answers: map[string]DecodingInfo{
		variantType("av1-pq"):  {Supported: true, Smooth: true},
		variantType("hevc-pq"): {Supported: true, Smooth: true, PowerEfficient: true},
	}}
	d := DetectDecoding(context.Background(), dec, time.Second)
	if !d.Available || !d.Supported {
		t.Fatalf("got %+v, want available and supported", d)
	}
	if d.Best == nil || d.Best.Key != "av1-pq" {
		t.Fatalf("Best = %+v, want av1-pq", d.Best)
	}
	if len(d.Results) != 3 || d.Results[0].Key != "vp9-pq" || d.Results[0].Supported {
		t.Errorf("Results = %+v", d.Results)
	}
	if got := dec.calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestDetectDecodingErrorsAndTimeouts(t *testing.T) {
	dec := &fakeDecoder{
		errs:  map[string]error{variantType("vp9-pq"): errors.New("unsupported codec string")},
		block: map[string]bool{variantType("av1-pq"): true},
		answers: map[string]DecodingInfo{
			variantType("hevc-pq"): {Supported: true},
		},
	}
	start := time.Now()
	d := DetectDecoding(context.Background(), dec, 20*time.Millisecond)
	if time.Since(start) > 2*time.Second {
		t.Fatalf("DetectDecoding did not honour the budget")
	}
	if d.Results[0].Supported || d.Results[0].Error != "unsupported codec string" {
		t.Errorf("vp9 result = %+v", d.Results[0])
	}
	if d.Results[1].Supported || d.Results[1].Error == "" {
		t.Errorf("av1 result = %+v, want timed-out failure", d.Results[1])
	}
	if d.Best == nil || d.Best.Key != "hevc-pq" {
		t.Errorf("Best = %+v, want hevc-pq", d.Best)
	}
}

type stuckDecoder struct{}

func (stuckDecoder) DecodingInfo(context.Context, VideoConfig) (DecodingInfo, error) {
	time.Sleep(200 * time.Millisecond)
	return DecodingInfo{Supported: true}, nil
}

func TestDetectDecodingIgnoresContextBlindQuerier(t *testing.T) {
	d := DetectDecoding(context.Background(), stuckDecoder{}, 10*time.Millisecond)
	for _, r := range d.Results {
		if r.Supported || !strings.Contains(r.Error, "timed out") {
			t.Errorf("result %+v, want timeout", r)
		}
	}
	if d.Supported {
		t.Error("Supported = true, want false")
	}
}

func TestFusePrecedence(t *testing.T) {
	supportedHEVC := &fakeDecoder{answers: map[string]DecodingInfo{
		variantType("hevc-pq"): {Supported: true},
	}}
	tests := []struct {
		name       string
		media      mediaSet
		decoder    DecodeQuerier
		depth      int
		wantHDR    bool
		wantSource string
	}{
		{"dynamic range wins", mediaSet{platform.QueryDynamicRangeHigh: true, platform.QueryVideoDynamicRangeHigh: true}, supportedHEVC, 30, true, SourceDynamicRange},
		{"video dynamic range", mediaSet{platform.QueryVideoDynamicRangeHigh: true}, supportedHEVC, 30, true, SourceVideoDynamicRange},
		{"decode variant", mediaSet{}, supportedHEVC, 30, true, "mediaCapabilities:hevc-pq"},
		{"deep color with p3", mediaSet{platform.QueryGamutP3: true}, nil, 30, true, SourceDeepColorGamut},
		{"deep color with rec2020", mediaSet{platform.QueryGamutRec2020: true}, nil, 48, true, SourceDeepColorGamut},
		{"deep color srgb only", mediaSet{platform.QueryGamutSRGB: true}, nil, 30, false, ""},
		{"wide gamut shallow", mediaSet{platform.QueryGamutP3: true}, nil, 24, false, ""},
		{"nothing", nil, nil, 0, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{Decoder: tt.decoder, ColorDepth: tt.depth, Budget: time.Second}
			if tt.media != nil {
				in.Media = tt.media
			}
			v := Fuse(context.Background(), in)
			if v.HDRCapable != tt.wantHDR || v.Source != tt.wantSource {
				t.Errorf("Fuse() = (%v, %q), want (%v, %q)", v.HDRCapable, v.Source, tt.wantHDR, tt.wantSource)
			}
		})
	}
}

func TestFuseWithSignals(t *testing.T) {
	s := &platform.Signals{Media: map[string]bool{platform.QueryGamutP3: true}}
	v := Fuse(context.Background(), Input{Media: s, ColorDepth: 30})
	if !v.HDRCapable || v.Source != SourceDeepColorGamut {
		t.Errorf("Fuse() = %+v", v)
	}
	if !v.Evidence.ColorGamutP3 || v.Evidence.Decoding.Available {
		t.Errorf("evidence = %+v", v.Evidence)
	}
}

func TestFuseRecordsDecodingWhenMediaDecides(t *testing.T) {
	dec := &fakeDecoder{answers: map[string]DecodingInfo{
		variantType("av1-pq"): {Supported: true, Smooth: true},
	}}
	v := Fuse(context.Background(), Input{
		Media:   mediaSet{platform.QueryDynamicRangeHigh: true},
		Decoder: dec,
		Budget:  time.Second,
	})
	if v.Source != SourceDynamicRange {
		t.Errorf("Source = %q, want %q", v.Source, SourceDynamicRange)
	}
	if got := dec.calls.Load(); got != int32(len(Variants)) {
		t.Errorf("calls = %d, want %d", got, len(Variants))
	}
	d := v.Evidence.Decoding
	if !d.Available || !d.Supported || len(d.Results) != len(Variants) {
		t.Errorf("decoding = %+v", d)
	}
	if d.Best == nil || d.Best.Key != "av1-pq" {
		t.Errorf("best = %+v, want av1-pq", d.Best)
	}
}

func TestRecordedDecoder(t *testing.T) {
	if Recorded(nil) != nil {
		t.Fatal("Recorded(nil) must leave decoding unavailable")
	}
	q := Recorded(map[string]platform.DecodeAnswer{
		variantType("hevc-pq"): {Supported: true, PowerEfficient: true},
	})
	d := DetectDecoding(context.Background(), q, time.Second)
	if !d.Available || !d.Supported || d.Best == nil || d.Best.Key != "hevc-pq" || !d.Best.PowerEfficient {
		t.Errorf("decoding = %+v", d)
	}
	for _, r := range d.Results {
		if r.Key != "hevc-pq" && (r.Supported || r.Error != "") {
			t.Errorf("unrecorded variant %s = %+v, want plain unsupported", r.Key, r)
		}
	}

	v := Fuse(context.Background(), Input{Decoder: q})
	if !v.HDRCapable || v.Source != "mediaCapabilities:hevc-pq" {
		t.Errorf("Fuse() = (%v, %q)", v.HDRCapable, v.Source)
	}
}

func TestResolveNotCapableHasEmptySource(t *testing.T) {
	v := Resolve(Evidence{ColorDepth: 24})
	if v.HDRCapable || v.Source != "" {
		t.Errorf("Resolve() = %+v", v)
	}
}
