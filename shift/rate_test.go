package shift

import (
	"context"
	"errors"
	"image"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/scrollrate/framesource"
	"github.com/xaionaro-go/scrollrate/preprocess"
	"github.com/xaionaro-go/scrollrate/sampler"
	"github.com/xaionaro-go/scrollrate/types"
	"github.com/xaionaro-go/typing"
)

// scrollingFrames renders frameCount grayscale frames of a random document
// which scrolls by rowsPerFrame rows per frame, with a static header.
func scrollingFrames(seed uint64, width, height, header, rowsPerFrame, frameCount int) []image.Image {
	rng := rand.New(rand.NewPCG(seed, seed))
	doc := randomDocument(rng, width, height+rowsPerFrame*frameCount)
	frames := make([]image.Image, frameCount)
	for idx := range frames {
		top := doc.Height - height - idx*rowsPerFrame
		img := image.NewGray(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				switch {
				case y < header:
					img.Pix[y*img.Stride+x] = 250
				case doc.Get(x, top+y):
					img.Pix[y*img.Stride+x] = 200
				default:
					img.Pix[y*img.Stride+x] = 30
				}
			}
		}
		frames[idx] = img
	}
	return frames
}

func newSequence(
	t *testing.T,
	fps float64,
	samplesPerSecond float64,
	frames []image.Image,
) (*sampler.Sequence, *framesource.Memory) {
	t.Helper()
	ctx := context.Background()
	src, err := framesource.NewMemory(fps, frames...)
	require.NoError(t, err)
	s, err := sampler.New(ctx, src)
	require.NoError(t, err)
	require.NoError(t, s.GenerateByFrames(ctx, typing.Optional[int]{}, typing.Optional[int]{}, samplesPerSecond, true))
	return s.Samples(), src
}

type staticSequence []image.Image

func (s *staticSequence) Next(ctx context.Context) (image.Image, bool, error) {
	if len(*s) == 0 {
		return nil, false, nil
	}
	img := (*s)[0]
	*s = (*s)[1:]
	return img, true, nil
}

type failingSequence struct{}

var errTestDecode = errors.New("decode failed")

func (failingSequence) Next(ctx context.Context) (image.Image, bool, error) {
	return nil, false, errTestDecode
}

func cropHeader(header int) preprocess.Bounds {
	return preprocess.Bounds{Top: typing.Opt(header)}
}

func TestFindRate(t *testing.T) {
	ctx := context.Background()
	prep := preprocess.NewBild()

	t.Run("definite", func(t *testing.T) {
		frames := scrollingFrames(1, 48, 64, 6, 7, 30)
		seq, src := newSequence(t, 10, 10, frames)
		params := DefaultRateParams()
		params.Crop = cropHeader(6)

		result, err := FindRate(ctx, seq, prep, params)
		require.NoError(t, err)
		require.Equal(t, 7, result.Shift)
		require.True(t, result.Definite)
		require.Nil(t, result.Notice)
		require.Equal(t, 10, result.Pairs)
		require.Equal(t, 11, result.Frames)
		require.Equal(t, 11, seq.Pulls())
		require.Len(t, src.Accesses, 11)
		require.Equal(t, 7, result.Standings[0].Candidate)
	})

	t.Run("subsampled", func(t *testing.T) {
		frames := scrollingFrames(2, 48, 96, 0, 2, 60)
		seq, src := newSequence(t, 30, 10, frames)
		params := DefaultRateParams()
		params.VoteThreshold = 5

		result, err := FindRate(ctx, seq, prep, params)
		require.NoError(t, err)
		require.Equal(t, 6, result.Shift)
		require.True(t, result.Definite)
		require.Equal(t, []int{0, 3, 6, 9, 12, 15}, src.Accesses)
	})

	t.Run("not_converged", func(t *testing.T) {
		frames := scrollingFrames(3, 48, 64, 6, 7, 6)
		seq, _ := newSequence(t, 10, 10, frames)
		params := DefaultRateParams()
		params.Crop = cropHeader(6)

		result, err := FindRate(ctx, seq, prep, params)
		require.NoError(t, err)
		require.Equal(t, 7, result.Shift)
		require.False(t, result.Definite)
		require.Equal(t, 5, result.Pairs)
		require.Equal(t, 6, result.Frames)
		require.Equal(t, &types.ConvergenceNotice{Leader: 7, Count: 5, Threshold: 10}, result.Notice)
	})

	t.Run("one_frame", func(t *testing.T) {
		frames := scrollingFrames(4, 8, 8, 0, 1, 1)
		seq, _ := newSequence(t, 10, 10, frames)
		_, err := FindRate(ctx, seq, prep, DefaultRateParams())
		require.ErrorAs(t, err, &ErrNotEnoughFrames{})
	})

	t.Run("no_frames", func(t *testing.T) {
		_, err := FindRate(ctx, &staticSequence{}, prep, DefaultRateParams())
		var errNotEnough ErrNotEnoughFrames
		require.ErrorAs(t, err, &errNotEnough)
		require.Equal(t, 0, errNotEnough.Frames)
	})

	t.Run("invalid_crop", func(t *testing.T) {
		seq := staticSequence(scrollingFrames(5, 8, 8, 0, 1, 3))
		params := DefaultRateParams()
		params.Crop = preprocess.Bounds{Top: typing.Opt(6), Bottom: typing.Opt(2)}
		_, err := FindRate(ctx, &seq, prep, params)
		var errValidation *types.ErrValidation
		require.ErrorAs(t, err, &errValidation)
	})

	t.Run("invalid_vote_threshold", func(t *testing.T) {
		seq := staticSequence(scrollingFrames(6, 8, 8, 0, 1, 3))
		params := DefaultRateParams()
		params.VoteThreshold = 0
		_, err := FindRate(ctx, &seq, prep, params)
		var errValidation *types.ErrValidation
		require.ErrorAs(t, err, &errValidation)
	})

	t.Run("source_failure", func(t *testing.T) {
		_, err := FindRate(ctx, failingSequence{}, prep, DefaultRateParams())
		require.ErrorIs(t, err, errTestDecode)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		seq := staticSequence(scrollingFrames(7, 8, 8, 0, 1, 3))
		_, err := FindRate(ctx, &seq, prep, DefaultRateParams())
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("mask_frames", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(8, 8))
		doc := randomDocument(rng, 32, 200)
		var seq staticSequence
		for idx := range 4 {
			seq = append(seq, window(doc, 150-idx*4, 40))
		}
		params := DefaultRateParams()
		params.VoteThreshold = 3
		result, err := FindRate(ctx, &seq, prep, params)
		require.NoError(t, err)
		require.Equal(t, 4, result.Shift)
		require.True(t, result.Definite)
	})
}
