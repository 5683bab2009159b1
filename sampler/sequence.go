package sampler

import (
	"context"
	"image"
)

// Sequence is a single pass over the samples of a Sampler, starting after
// its cursor. It is not restartable: once it ended it stays ended.
type Sequence struct {
	sampler *Sampler
	pulls   int
	ended   bool
}

func (s *Sampler) Samples() *Sequence {
	return &Sequence{sampler: s}
}

// Next returns the next sampled frame, or false when the schedule is
// exhausted (or was never generated) or the source failed.
func (seq *Sequence) Next(ctx context.Context) (image.Image, bool, error) {
	if seq.ended {
		return nil, false, nil
	}
	seq.pulls++
	result, err := seq.sampler.AdvanceToNextSample(ctx, true)
	if err != nil {
		seq.ended = true
		return nil, false, err
	}
	if !result.Found {
		seq.ended = true
		return nil, false, nil
	}
	return result.Frame, true, nil
}

// Pulls is the number of times the underlying sampler was advanced.
func (seq *Sequence) Pulls() int {
	return seq.pulls
}
