package types

import (
	"fmt"
	"time"
)

// VideoMetadata describes a video as reported by its frame source. It is
// filled once when the source is opened and never changes afterwards.
type VideoMetadata struct {
	Width      int
	Height     int
	FPS        float64
	Duration   time.Duration
	FrameCount int
}

func (m VideoMetadata) String() string {
	return fmt.Sprintf("%dx%d@%.3ffps, %v, %d frames", m.Width, m.Height, m.FPS, m.Duration, m.FrameCount)
}

// FrameTime returns the presentation instant of the given frame index.
func (m VideoMetadata) FrameTime(frameIndex int) time.Duration {
	return time.Duration(float64(frameIndex) / m.FPS * float64(time.Second))
}

// FrameStep is the time between two consecutive frames.
func (m VideoMetadata) FrameStep() time.Duration {
	return time.Duration(float64(time.Second) / m.FPS)
}
