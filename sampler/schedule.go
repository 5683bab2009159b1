package sampler

import (
	"fmt"
	"math"
	"time"

	"github.com/xaionaro-go/typing"
)

// Schedule is a fixed-step grid of frame indexes: sample i is frame
// StartFrame + i*Step, for i in [0, NumSamples).
//
// EndFrame is always the last frame on the grid, which may be before the
// end frame that was requested when the schedule was generated.
type Schedule struct {
	StartFrame int
	EndFrame   int
	Step       int
	NumSamples int

	StartTime    time.Duration
	EndTime      time.Duration
	StepDuration time.Duration
}

func (s Schedule) String() string {
	return fmt.Sprintf(
		"frames [%d..%d] every %d frame(s) (%d samples; %v..%v every %v)",
		s.StartFrame, s.EndFrame, s.Step, s.NumSamples,
		s.StartTime, s.EndTime, s.StepDuration,
	)
}

// FrameForSample maps a (possibly fractional) sample index onto a frame index.
func (s Schedule) FrameForSample(sampleIndex float64) int {
	return s.StartFrame + int(math.Floor(sampleIndex*float64(s.Step)))
}

// SampleForFrame maps a frame index onto a sample index. The result is
// integral only for frames on the grid; it is negative for frames before
// StartFrame and may exceed NumSamples for frames past the grid.
func (s Schedule) SampleForFrame(frameIndex int) float64 {
	return float64(frameIndex-s.StartFrame) / float64(s.Step)
}

func (s Schedule) IsOnGrid(frameIndex int) bool {
	return (frameIndex-s.StartFrame)%s.Step == 0
}

func (s Schedule) Contains(sampleIndex float64) bool {
	return sampleIndex >= 0 && sampleIndex < float64(s.NumSamples)
}

// NextSampleIndex decides where to resume after the cursor was left at
// the given sample index, which might be unset or off the grid:
//   - unset or negative: start from the first sample;
//   - past NumSamples: step on by one (the range check rejects it later);
//   - integral: the next sample;
//   - fractional: the first on-grid sample after it.
func (s Schedule) NextSampleIndex(current typing.Optional[float64]) float64 {
	if !current.IsSet() {
		return 0
	}
	v := current.Get()
	switch {
	case v < 0:
		return 0
	case v > float64(s.NumSamples):
		return v + 1
	case v == math.Trunc(v):
		return v + 1
	default:
		return math.Ceil(v)
	}
}
