package shift

import (
	"context"
	"fmt"
	"image"

	"github.com/xaionaro-go/scrollrate/logger"
	"github.com/xaionaro-go/scrollrate/mask"
	"github.com/xaionaro-go/scrollrate/preprocess"
	"github.com/xaionaro-go/scrollrate/types"
	"github.com/xaionaro-go/scrollrate/vote"
)

const (
	DefaultBinarizeThreshold = 90
	DefaultVoteThreshold     = 10
)

// FrameSequence is a one-shot pull sequence of frames, e.g. *sampler.Sequence.
type FrameSequence interface {
	Next(ctx context.Context) (image.Image, bool, error)
}

type RateParams struct {
	Crop              preprocess.Bounds
	BinarizeThreshold uint8
	VoteThreshold     int
}

func DefaultRateParams() RateParams {
	return RateParams{
		BinarizeThreshold: DefaultBinarizeThreshold,
		VoteThreshold:     DefaultVoteThreshold,
	}
}

type RateResult struct {
	// Shift is the number of rows the content moves between two samples.
	Shift int

	// Definite is true if Shift reached the vote threshold; otherwise it is
	// only the best guess and Notice is set.
	Definite bool

	// Frames is the number of frames pulled from the sequence.
	Frames int

	// Pairs is the number of frame pairs that were compared.
	Pairs int

	Standings []vote.Standing[int]
	Notice    *types.ConvergenceNotice
}

func (r RateResult) String() string {
	if r.Definite {
		return fmt.Sprintf("%d (definite after %d pairs)", r.Shift, r.Pairs)
	}
	return fmt.Sprintf("%d (best guess after %d pairs: %s)", r.Shift, r.Pairs, r.Notice)
}

// FindRate compares every consecutive pair of frames of the sequence and
// votes on the estimated shift, stopping as soon as one shift was seen
// params.VoteThreshold times. An exhausted sequence without a decision
// yields the leader as a best guess, with a ConvergenceNotice.
func FindRate(
	ctx context.Context,
	seq FrameSequence,
	prep preprocess.Preprocessor,
	params RateParams,
) (_ret RateResult, _err error) {
	ctx = logger.CtxWithField(ctx, "preprocessor", prep.String())
	logger.Debugf(ctx, "FindRate(ctx, %s, %#+v)", prep, params)
	defer func() { logger.Debugf(ctx, "/FindRate(ctx, %s, %#+v): %v %v", prep, params, _ret, _err) }()

	ballot, err := vote.New[int](params.VoteThreshold)
	if err != nil {
		return RateResult{}, types.NewErrValidation("vote threshold", params.VoteThreshold, "%v", err)
	}

	var frames int
	nextMask := func() (*mask.Mask, bool, error) {
		img, ok, err := seq.Next(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("unable to get frame #%d of the sequence: %w", frames, err)
		}
		if !ok {
			return nil, false, nil
		}
		frames++
		m, err := preprocess.BinaryCrop(prep, img, params.Crop, params.BinarizeThreshold)
		if err != nil {
			return nil, false, fmt.Errorf("unable to preprocess frame #%d of the sequence: %w", frames-1, err)
		}
		return m, true, nil
	}

	prev, ok, err := nextMask()
	if err != nil {
		return RateResult{}, err
	}
	if !ok {
		return RateResult{}, ErrNotEnoughFrames{Frames: frames}
	}

	for {
		select {
		case <-ctx.Done():
			return RateResult{}, ctx.Err()
		default:
		}

		curr, ok, err := nextMask()
		if err != nil {
			return RateResult{}, err
		}
		if !ok {
			break
		}

		shift, err := Estimate(prev, curr)
		if err != nil {
			return RateResult{}, fmt.Errorf("unable to estimate the shift between frames #%d and #%d: %w", frames-2, frames-1, err)
		}
		logger.Tracef(ctx, "frames #%d -> #%d: shift %d", frames-2, frames-1, shift)
		if ballot.Cast(shift) {
			break
		}
		prev = curr
	}

	if ballot.Casts() == 0 {
		return RateResult{}, ErrNotEnoughFrames{Frames: frames}
	}

	leader, count, _ := ballot.Leader()
	result := RateResult{
		Shift:     leader,
		Definite:  ballot.Decided(),
		Frames:    frames,
		Pairs:     ballot.Casts(),
		Standings: ballot.Standings(),
	}
	if !result.Definite {
		result.Notice = &types.ConvergenceNotice{
			Leader:    leader,
			Count:     count,
			Threshold: ballot.Threshold(),
		}
		logger.Warnf(ctx, "%s", result.Notice)
	}
	return result, nil
}
