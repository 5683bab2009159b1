package avconv

import (
	"context"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/scrollrate/logger"
)

func FindStreamByIndex(
	ctx context.Context,
	fmtCtx *astiav.FormatContext,
	streamIndex int,
) *astiav.Stream {
	for _, stream := range fmtCtx.Streams() {
		if stream.Index() == streamIndex {
			return stream
		}
	}
	return nil
}

// FindFirstStream returns the first stream of the given media type, or nil.
func FindFirstStream(
	ctx context.Context,
	fmtCtx *astiav.FormatContext,
	mediaType astiav.MediaType,
) *astiav.Stream {
	for _, stream := range fmtCtx.Streams() {
		if stream.CodecParameters().MediaType() == mediaType {
			return stream
		}
		logger.Tracef(ctx, "skipping stream #%d: %v", stream.Index(), stream.CodecParameters().MediaType())
	}
	return nil
}
