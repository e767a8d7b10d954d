package hdr

import (
	"context"

	"github.com/gogpu/gpucaps/platform"
)

// Recorded returns a DecodeQuerier that replays answers recorded on a
// client, keyed by content type. A content type without an answer is
// unsupported. Recorded returns nil when answers is nil, so the decode
// axis stays unavailable.
func Recorded(answers map[string]platform.DecodeAnswer) DecodeQuerier {
	if answers == nil {
		return nil
	}
	return recordedDecoder(answers)
}

type recordedDecoder map[string]platform.DecodeAnswer

func (r recordedDecoder) DecodingInfo(ctx context.Context, cfg VideoConfig) (DecodingInfo, error) {
	if err := ctx.Err(); err != nil {
		return DecodingInfo{}, err
	}
	a := r[cfg.ContentType]
	return DecodingInfo{Supported: a.Supported, Smooth: a.Smooth, PowerEfficient: a.PowerEfficient}, nil
}
