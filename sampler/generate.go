package sampler

import (
	"context"
	"math"
	"time"

	"github.com/facebookincubator/go-belt/pkg/field"
	"github.com/xaionaro-go/scrollrate/logger"
	"github.com/xaionaro-go/scrollrate/types"
	"github.com/xaionaro-go/typing"
)

// GenerateByFrames replaces the schedule with a grid over frames
// [start, end] that picks roughly samplesPerSecond frames per second of video.
//
// An unset start means the first frame; an unset end means the last one.
// With resetCursor the sample index of the cursor is forgotten, otherwise it
// is recomputed against the new grid from the frame the cursor points at.
//
// On error (always an *types.ErrValidation) nothing is changed.
func (s *Sampler) GenerateByFrames(
	ctx context.Context,
	start typing.Optional[int],
	end typing.Optional[int],
	samplesPerSecond float64,
	resetCursor bool,
) (_err error) {
	logger.Debugf(ctx, "GenerateByFrames(ctx, %v, %v, %v, %t)", start, end, samplesPerSecond, resetCursor)
	defer func() { logger.Debugf(ctx, "/GenerateByFrames(ctx, %v, %v, %v, %t): %v", start, end, samplesPerSecond, resetCursor, _err) }()

	md := s.metadata

	startFrame := 0
	if start.IsSet() {
		startFrame = start.Get()
		if startFrame < 0 {
			return types.NewErrValidation("start frame", startFrame, "must not be negative")
		}
		if startFrame >= md.FrameCount {
			return types.NewErrValidation("start frame", startFrame, "the video has only %d frames", md.FrameCount)
		}
	}

	if math.IsNaN(samplesPerSecond) || math.IsInf(samplesPerSecond, 0) {
		return types.NewErrValidation("samples per second", samplesPerSecond, "must be a finite number")
	}
	if samplesPerSecond <= 0 {
		return types.NewErrValidation("samples per second", samplesPerSecond, "must be positive")
	}
	if samplesPerSecond > md.FPS {
		return types.NewErrValidation("samples per second", samplesPerSecond, "must not exceed the frame rate (%v)", md.FPS)
	}
	step := int(math.Floor(md.FPS / samplesPerSecond))

	endFrame := md.FrameCount - 1
	if end.IsSet() {
		endFrame = end.Get()
		if endFrame < startFrame {
			return types.NewErrValidation("end frame", endFrame, "must not be before the start frame (%d)", startFrame)
		}
		if endFrame >= md.FrameCount {
			return types.NewErrValidation("end frame", endFrame, "the video has only %d frames", md.FrameCount)
		}
	}

	numSamples := (endFrame - startFrame + step) / step
	schedule := Schedule{
		StartFrame:   startFrame,
		EndFrame:     startFrame + (numSamples-1)*step,
		Step:         step,
		NumSamples:   numSamples,
		StepDuration: md.FrameTime(step),
	}
	schedule.StartTime = md.FrameTime(schedule.StartFrame)
	schedule.EndTime = md.FrameTime(schedule.EndFrame)
	s.schedule = &schedule

	switch {
	case resetCursor:
		s.cursor.SampleIndex = typing.Optional[float64]{}
	case s.cursor.FrameIndex != NoFrameIndex:
		s.cursor.SampleIndex = typing.Opt(schedule.SampleForFrame(s.cursor.FrameIndex))
	default:
		s.cursor.SampleIndex = typing.Optional[float64]{}
	}

	logger.DebugFields(ctx, "generated a sampling schedule", field.Map[string]{
		"schedule": schedule.String(),
		"cursor":   s.cursor.String(),
	})
	return nil
}

// GenerateByTime is GenerateByFrames with the range given as instants.
//
// An unset end means the presentation instant of the last frame. Instants are
// mapped onto the frame that is being displayed at that moment.
func (s *Sampler) GenerateByTime(
	ctx context.Context,
	start typing.Optional[time.Duration],
	end typing.Optional[time.Duration],
	samplesPerSecond float64,
	resetCursor bool,
) error {
	md := s.metadata

	var startTime time.Duration
	if start.IsSet() {
		startTime = start.Get()
		if startTime < 0 {
			return types.NewErrValidation("start time", startTime, "must not be negative")
		}
		if startTime >= md.Duration {
			return types.NewErrValidation("start time", startTime, "the video lasts only %v", md.Duration)
		}
	}

	var endFrame int
	if end.IsSet() {
		endTime := end.Get()
		if endTime < startTime {
			return types.NewErrValidation("end time", endTime, "must not be before the start time (%v)", startTime)
		}
		if endTime >= md.Duration {
			return types.NewErrValidation("end time", endTime, "the video lasts only %v", md.Duration)
		}
		endFrame = s.frameForTime(endTime)
	} else {
		endFrame = min(s.frameForTime(md.Duration-md.FrameStep()), md.FrameCount-1)
	}

	return s.GenerateByFrames(
		ctx,
		typing.Opt(s.frameForTime(startTime)),
		typing.Opt(endFrame),
		samplesPerSecond,
		resetCursor,
	)
}
