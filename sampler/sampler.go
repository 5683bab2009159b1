// sampler.go defines Sampler, the owner of a schedule and its cursor.

// Package sampler maps a desired sampling rate onto a deterministic grid of
// frame indexes over a sub-range of a video, and walks that grid.
package sampler

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/xaionaro-go/scrollrate/framesource"
	"github.com/xaionaro-go/scrollrate/logger"
	"github.com/xaionaro-go/scrollrate/types"
)

// timeEpsilon absorbs floating point error when an instant is converted
// into a frame index, so that e.g. (121/30)s + 1s maps onto frame 151.
const timeEpsilon = 1e-6

// Sampler is not safe for concurrent use: every access moves the cursor.
type Sampler struct {
	Source   framesource.FrameSource
	metadata types.VideoMetadata
	schedule *Schedule
	cursor   Cursor
}

func New(
	ctx context.Context,
	source framesource.FrameSource,
) (*Sampler, error) {
	md := source.Metadata()
	if md.FPS <= 0 || math.IsNaN(md.FPS) || math.IsInf(md.FPS, 0) {
		return nil, fmt.Errorf("the source reports an invalid FPS value: %v", md.FPS)
	}
	if md.FrameCount <= 0 {
		return nil, fmt.Errorf("the source reports no frames")
	}
	logger.Debugf(ctx, "new sampler over %s", md)
	return &Sampler{
		Source:   source,
		metadata: md,
		cursor:   newCursor(),
	}, nil
}

func (s *Sampler) String() string {
	return fmt.Sprintf("Sampler(%s)", s.Source)
}

func (s *Sampler) Metadata() types.VideoMetadata {
	return s.metadata
}

// Schedule returns the current schedule, and false if none was generated yet.
func (s *Sampler) Schedule() (Schedule, bool) {
	if s.schedule == nil {
		return Schedule{}, false
	}
	return *s.schedule, true
}

func (s *Sampler) Cursor() Cursor {
	return s.cursor
}

// frameForTime never lets timeEpsilon alone move an instant past the last frame.
func (s *Sampler) frameForTime(t time.Duration) int {
	x := t.Seconds() * s.metadata.FPS
	idx := int(math.Floor(x + timeEpsilon))
	if idx >= s.metadata.FrameCount && int(math.Floor(x)) < s.metadata.FrameCount {
		return s.metadata.FrameCount - 1
	}
	return idx
}

func (s *Sampler) Close(ctx context.Context) error {
	return s.Source.Close(ctx)
}
