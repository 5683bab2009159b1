package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/xaionaro-go/scrollrate/logger"
	"github.com/xaionaro-go/scrollrate/types"
	"github.com/xaionaro-go/typing"
)

// FrameByIndex reads a frame and, if found, moves the cursor onto it.
//
// The sample index of the cursor is moved only if updateCursor is set and a
// schedule exists; the frame index and time are moved regardless.
func (s *Sampler) FrameByIndex(
	ctx context.Context,
	frameIndex int,
	updateCursor bool,
) (types.FrameResult, error) {
	result, err := s.Source.FrameAt(ctx, frameIndex)
	if err != nil {
		return types.FrameResult{FrameIndex: -1}, fmt.Errorf("unable to get frame %d: %w", frameIndex, err)
	}
	if !result.Found {
		logger.Debugf(ctx, "frame %d is not available: %s", frameIndex, result.Notice)
		return result, nil
	}

	s.cursor.FrameIndex = result.FrameIndex
	s.cursor.Time = s.metadata.FrameTime(result.FrameIndex)
	if updateCursor && s.schedule != nil {
		s.cursor.SampleIndex = typing.Opt(s.schedule.SampleForFrame(result.FrameIndex))
	}
	logger.Tracef(ctx, "cursor: %s", s.cursor)
	return result, nil
}

// FrameByTime reads the frame displayed at instant t.
func (s *Sampler) FrameByTime(
	ctx context.Context,
	t time.Duration,
	updateCursor bool,
) (types.FrameResult, error) {
	if t < 0 || t >= s.metadata.Duration {
		result := types.FrameNotFound(types.AccessKindFrameTime, t.Seconds(), s.metadata.Duration.Seconds())
		logger.Debugf(ctx, "%s", result.Notice)
		return result, nil
	}
	return s.FrameByIndex(ctx, s.frameForTime(t), updateCursor)
}

// AdvanceFrameByIndex reads the frame that is increment frames after the
// cursor. With an unset cursor, an increment of 1 yields the first frame.
func (s *Sampler) AdvanceFrameByIndex(
	ctx context.Context,
	increment int,
) (types.FrameResult, error) {
	return s.FrameByIndex(ctx, s.cursor.FrameIndex+increment, true)
}

// AdvanceFrameByTime reads the frame displayed increment after the cursor.
// With an unset cursor, an increment of one second yields the first frame.
func (s *Sampler) AdvanceFrameByTime(
	ctx context.Context,
	increment time.Duration,
) (types.FrameResult, error) {
	return s.FrameByTime(ctx, s.cursor.Time+increment, true)
}

// SampleAtIndex reads the frame at the given (possibly fractional) sample
// index of the current schedule.
func (s *Sampler) SampleAtIndex(
	ctx context.Context,
	sampleIndex float64,
	updateCursor bool,
) (types.FrameResult, error) {
	if s.schedule == nil {
		result := types.FrameNotFound(types.AccessKindNoSchedule, sampleIndex, 0)
		logger.Debugf(ctx, "%s", result.Notice)
		return result, nil
	}
	if !s.schedule.Contains(sampleIndex) {
		result := types.FrameNotFound(types.AccessKindSampleIndex, sampleIndex, float64(s.schedule.NumSamples))
		logger.Debugf(ctx, "%s", result.Notice)
		return result, nil
	}
	return s.FrameByIndex(ctx, s.schedule.FrameForSample(sampleIndex), updateCursor)
}

// AdvanceToNextSample reads the next sample after the cursor, see
// Schedule.NextSampleIndex.
func (s *Sampler) AdvanceToNextSample(
	ctx context.Context,
	updateCursor bool,
) (types.FrameResult, error) {
	if s.schedule == nil {
		result := types.FrameNotFound(types.AccessKindNoSchedule, 0, 0)
		logger.Debugf(ctx, "%s", result.Notice)
		return result, nil
	}
	return s.SampleAtIndex(ctx, s.schedule.NextSampleIndex(s.cursor.SampleIndex), updateCursor)
}
