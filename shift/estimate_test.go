package shift

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/scrollrate/mask"
)

// randomDocument returns a width x height mask with roughly half the pixels set.
func randomDocument(rng *rand.Rand, width, height int) *mask.Mask {
	m := mask.New(width, height)
	for idx := range m.Pix {
		m.Pix[idx] = rng.IntN(2) == 1
	}
	return m
}

// window returns rows [top, top+height) of doc.
func window(doc *mask.Mask, top, height int) *mask.Mask {
	m := mask.New(doc.Width, height)
	copy(m.Pix, doc.Pix[top*doc.Width:(top+height)*doc.Width])
	return m
}

func TestEstimate(t *testing.T) {
	t.Run("hand_made", func(t *testing.T) {
		prev := mask.FromRows(
			"#..",
			".#.",
			"..#",
			"...",
		)
		curr := mask.FromRows(
			"...",
			"#..",
			".#.",
			"..#",
		)
		shift, err := Estimate(prev, curr)
		require.NoError(t, err)
		require.Equal(t, 1, shift)
	})

	t.Run("round_trip", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(1, 2))
		const height = 48
		for _, width := range []int{64, 100} {
			doc := randomDocument(rng, width, 2*height)
			for k := 1; k < height; k++ {
				prev := window(doc, height, height)
				curr := window(doc, height-k, height)
				shift, err := Estimate(prev, curr)
				require.NoError(t, err)
				require.Equal(t, k, shift, "width %d", width)
			}
		}
	})

	t.Run("range", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(3, 4))
		for height := 2; height < 20; height++ {
			for range 5 {
				shift, err := Estimate(randomDocument(rng, 7, height), randomDocument(rng, 7, height))
				require.NoError(t, err)
				require.GreaterOrEqual(t, shift, 1)
				require.Less(t, shift, height)
			}
		}
	})

	t.Run("empty_masks_pick_the_smallest_offset", func(t *testing.T) {
		shift, err := Estimate(mask.New(10, 10), mask.New(10, 10))
		require.NoError(t, err)
		require.Equal(t, 1, shift)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := Estimate(nil, mask.New(3, 3))
		require.Error(t, err)
		_, err = Estimate(mask.New(3, 3), nil)
		require.Error(t, err)

		_, err = Estimate(mask.New(3, 3), mask.New(3, 4))
		require.ErrorAs(t, err, &ErrShapeMismatch{})
		_, err = Estimate(mask.New(4, 3), mask.New(3, 3))
		require.ErrorAs(t, err, &ErrShapeMismatch{})

		_, err = Estimate(mask.New(3, 1), mask.New(3, 1))
		require.ErrorAs(t, err, &ErrMaskTooSmall{})
	})
}

func BenchmarkEstimate(b *testing.B) {
	rng := rand.New(rand.NewPCG(5, 6))
	doc := randomDocument(rng, 640, 1000)
	prev := window(doc, 500, 480)
	curr := window(doc, 414, 480)
	b.ResetTimer()
	for b.Loop() {
		if _, err := Estimate(prev, curr); err != nil {
			b.Fatal(err)
		}
	}
}
