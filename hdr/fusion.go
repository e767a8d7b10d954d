// Package hdr fuses media-query, decode-capability and color-depth signals
// into a single HDR verdict.
//
// Signals are consulted in fixed precedence order and the first satisfied one
// becomes the verdict source:
//
//  1. "dynamic-range"            (dynamic-range: high)
//  2. "video-dynamic-range"      (video-dynamic-range: high)
//  3. "mediaCapabilities:<key>"  a 10-bit PQ Rec.2020 4K decode variant
//  4. "colorDepth+gamut"         color depth >= 30 with P3 or Rec.2020
//
// The last tier is a best-effort heuristic and never outranks the others.
package hdr

import (
	"context"
	"time"

	"github.com/gogpu/gpucaps/platform"
)

// Verdict sources.
const (
	SourceDynamicRange      = "dynamic-range"
	SourceVideoDynamicRange = "video-dynamic-range"
	SourceMediaCapabilities = "mediaCapabilities"
	SourceDeepColorGamut    = "colorDepth+gamut"
)

// deepColorBits is the minimum screen color depth counted as deep color.
const deepColorBits = 30

// MediaMatcher evaluates media queries.
type MediaMatcher interface {
	MatchMedia(query string) bool
}

// Evidence is every per-check observation behind a Verdict.
type Evidence struct {
	DynamicRangeHigh      bool     `json:"dynamicRangeHigh"`
	VideoDynamicRangeHigh bool     `json:"videoDynamicRangeHigh"`
	ColorGamutRec2020     bool     `json:"colorGamutRec2020"`
	ColorGamutP3          bool     `json:"colorGamutP3"`
	ColorGamutSRGB        bool     `json:"colorGamutSRGB"`
	ColorDepth            int      `json:"colorDepth,omitempty"`
	Decoding              Decoding `json:"hdrVideoDecoding"`
}

// DeepColor reports a color depth of at least 30 bits.
func (e Evidence) DeepColor() bool { return e.ColorDepth >= deepColorBits }

// WideGamut reports a P3 or Rec.2020 match.
func (e Evidence) WideGamut() bool { return e.ColorGamutRec2020 || e.ColorGamutP3 }

// Verdict is the fused HDR conclusion.
type Verdict struct {
	HDRCapable bool     `json:"hdrCapable"`
	Source     string   `json:"hdrSource"`
	Evidence   Evidence `json:"evidence"`
}

// Input carries the collaborators Fuse consults. Any field may be nil/zero.
type Input struct {
	Media      MediaMatcher
	Decoder    DecodeQuerier
	ColorDepth int
	// Budget bounds each decode sub-probe; zero means DefaultProbeBudget.
	Budget time.Duration
}

// Fuse gathers the evidence and resolves the verdict. It never fails.
func Fuse(ctx context.Context, in Input) Verdict {
	match := func(q string) bool { return in.Media != nil && in.Media.MatchMedia(q) }
	ev := Evidence{
		DynamicRangeHigh:      match(platform.QueryDynamicRangeHigh),
		VideoDynamicRangeHigh: match(platform.QueryVideoDynamicRangeHigh),
		ColorGamutRec2020:     match(platform.QueryGamutRec2020),
		ColorGamutP3:          match(platform.QueryGamutP3),
		ColorGamutSRGB:        match(platform.QueryGamutSRGB),
		ColorDepth:            in.ColorDepth,
	}
	// Decoding always runs so the evidence is complete; precedence alone
	// decides whether it affects the verdict.
	ev.Decoding = DetectDecoding(ctx, in.Decoder, in.Budget)
	return Resolve(ev)
}

// Resolve applies the precedence order to already-gathered evidence.
func Resolve(ev Evidence) Verdict {
	tiers := []struct {
		ok     bool
		source func() string
	}{
		{ev.DynamicRangeHigh, func() string { return SourceDynamicRange }},
		{ev.VideoDynamicRangeHigh, func() string { return SourceVideoDynamicRange }},
		{ev.Decoding.Supported, func() string {
			key := "hdr"
			if ev.Decoding.Best != nil {
				key = ev.Decoding.Best.Key
			}
			return SourceMediaCapabilities + ":" + key
		}},
		{ev.DeepColor() && ev.WideGamut(), func() string { return SourceDeepColorGamut }},
	}
	for _, t := range tiers {
		if t.ok {
			return Verdict{HDRCapable: true, Source: t.source(), Evidence: ev}
		}
	}
	return Verdict{Evidence: ev}
}
