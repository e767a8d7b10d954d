package hdr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/gpucaps/internal/logging"
)

// DefaultProbeBudget bounds each decode sub-probe.
const DefaultProbeBudget = 1200 * time.Millisecond

// ErrProbeTimeout is recorded when a decode sub-probe exceeds its budget.
var ErrProbeTimeout = errors.New("hdr: decode probe timed out")

// VideoConfig describes the stream a decode query asks about.
type VideoConfig struct {
	ContentType      string  `json:"contentType"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Bitrate          int     `json:"bitrate"`
	Framerate        float64 `json:"framerate"`
	TransferFunction string  `json:"transferFunction"`
	ColorGamut       string  `json:"colorGamut"`
	HDRMetadataType  string  `json:"hdrMetadataType"`
}

// DecodingInfo is the platform answer for one VideoConfig.
type DecodingInfo struct {
	Supported      bool `json:"supported"`
	Smooth         bool `json:"smooth"`
	PowerEfficient bool `json:"powerEfficient"`
}

// DecodeQuerier asks the platform whether it can decode a stream.
type DecodeQuerier interface {
	DecodingInfo(ctx context.Context, cfg VideoConfig) (DecodingInfo, error)
}

// Variant is one HDR codec profile probed by DetectDecoding.
type Variant struct {
	Key    string
	Config VideoConfig
}

func pq4K(contentType string) VideoConfig {
	return VideoConfig{
		ContentType:      contentType,
		Width:            3840,
		Height:           2160,
		Bitrate:          20_000_000,
		Framerate:        30,
		TransferFunction: "pq",
		ColorGamut:       "rec2020",
		HDRMetadataType:  "smpteSt2086",
	}
}

// Variants are the 10-bit 4K PQ Rec.2020 profiles, in preference order.
var Variants = []Variant{
	{Key: "vp9-pq", Config: pq4K(`video/webm; codecs="vp09.02.10.10"`)},
	{Key: "av1-pq", Config: pq4K(`video/mp4; codecs="av01.0.10M.10"`)},
	{Key: "hevc-pq", Config: pq4K(`video/mp4; codecs="hvc1.2.4.L150.B0"`)},
}

// DecodeResult is the outcome of one variant.
type DecodeResult struct {
	Key            string `json:"key"`
	Supported      bool   `json:"supported"`
	Smooth         bool   `json:"smooth"`
	PowerEfficient bool   `json:"powerEfficient"`
	Error          string `json:"error,omitempty"`
}

// Decoding summarises all variants. Best is the first supported variant.
type Decoding struct {
	Available bool           `json:"available"`
	Supported bool           `json:"supported"`
	Best      *DecodeResult  `json:"best"`
	Results   []DecodeResult `json:"results,omitempty"`
}

// DetectDecoding runs every variant concurrently, each bounded by budget.
// A nil querier yields Available=false. A variant that errors or times out
// counts as unsupported; DetectDecoding itself never fails.
func DetectDecoding(ctx context.Context, q DecodeQuerier, budget time.Duration) Decoding {
	if q == nil {
		return Decoding{}
	}
	if budget <= 0 {
		budget = DefaultProbeBudget
	}

	results := make([]DecodeResult, len(Variants))
	var g errgroup.Group
	for i, v := range Variants {
		g.Go(func() error {
			results[i] = queryVariant(ctx, q, v, budget)
			return nil
		})
	}
	_ = g.Wait()

	out := Decoding{Available: true, Results: results}
	for i := range results {
		if results[i].Supported {
			best := results[i]
			best.Error = ""
			out.Best = &best
			out.Supported = true
			break
		}
	}
	return out
}

func queryVariant(ctx context.Context, q DecodeQuerier, v Variant, budget time.Duration) DecodeResult {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	type answer struct {
		info DecodingInfo
		err  error
	}
	done := make(chan answer, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- answer{err: fmt.Errorf("hdr: decode query panicked: %v", r)}
			}
		}()
		info, err := q.DecodingInfo(ctx, v.Config)
		done <- answer{info: info, err: err}
	}()

	res := DecodeResult{Key: v.Key}
	select {
	case a := <-done:
		if a.err != nil {
			res.Error = a.err.Error()
			break
		}
		res.Supported = a.info.Supported
		res.Smooth = a.info.Smooth
		res.PowerEfficient = a.info.PowerEfficient
	case <-ctx.Done():
		res.Error = ErrProbeTimeout.Error()
		logging.Logger().Warn("hdr: decode probe abandoned", "variant", v.Key, "budget", budget)
	}
	return res
}
