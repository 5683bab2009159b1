// framesource.go defines the FrameSource interface.

// Package framesource provides random access to the frames of a video.
package framesource

import (
	"context"

	"github.com/xaionaro-go/scrollrate/types"
)

// FrameSource is a random-access reader of decoded video frames.
//
// Sources are typically fastest under monotonically increasing indexes;
// seeking backwards is legal but may be costly.
type FrameSource interface {
	Metadata() types.VideoMetadata

	// FrameAt returns the frame at the given index. An index outside of
	// [0, FrameCount) is reported through FrameResult.Notice, not as an error;
	// errors are reserved for failures of the underlying decoder or storage.
	FrameAt(ctx context.Context, index int) (types.FrameResult, error)

	Close(ctx context.Context) error
}

// CheckIndex returns a not-found result if index is outside of the video.
func CheckIndex(md types.VideoMetadata, index int) (types.FrameResult, bool) {
	if index < 0 || index >= md.FrameCount {
		return types.FrameNotFound(types.AccessKindFrameIndex, float64(index), float64(md.FrameCount)), false
	}
	return types.FrameResult{}, true
}
