package types

import (
	"image"
)

// FrameResult is the outcome of a single frame access.
//
// Found is false whenever Notice is set; Frame is nil in that case.
type FrameResult struct {
	Found      bool
	FrameIndex int
	Frame      image.Image
	Notice     *AccessNotice
}

func FrameFound(frameIndex int, frame image.Image) FrameResult {
	return FrameResult{
		Found:      true,
		FrameIndex: frameIndex,
		Frame:      frame,
	}
}

func FrameNotFound(kind AccessKind, requested, limit float64) FrameResult {
	return FrameResult{
		FrameIndex: -1,
		Notice: &AccessNotice{
			Kind:      kind,
			Requested: requested,
			Limit:     limit,
		},
	}
}
