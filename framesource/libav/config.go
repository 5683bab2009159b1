package libav

import (
	"github.com/xaionaro-go/scrollrate/types"
	"github.com/xaionaro-go/typing"
)

const (
	// DefaultMaxForwardDecode is how many frames the source is willing to
	// decode and throw away before it prefers seeking.
	DefaultMaxForwardDecode = 120
)

type Config struct {
	// FPSOverride replaces the frame rate reported by the container. Frame
	// indexes then follow presentation time at this rate and the frame count
	// is derived from the duration; indexes with no frame of their own are
	// served by the next decoded frame, and indexes past the last decoded
	// frame end in an EndOfStream notice.
	FPSOverride *types.Rational

	// StreamIndex selects the video stream; the first one is used by default.
	StreamIndex typing.Optional[int]

	// MaxForwardDecode is DefaultMaxForwardDecode if zero.
	MaxForwardDecode int
}

func (cfg Config) maxForwardDecode() int {
	if cfg.MaxForwardDecode > 0 {
		return cfg.MaxForwardDecode
	}
	return DefaultMaxForwardDecode
}
