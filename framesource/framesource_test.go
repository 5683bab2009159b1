package framesource

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/scrollrate/types"
)

func solidGray(v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestMemory(t *testing.T) {
	ctx := context.Background()

	_, err := NewMemory(0, solidGray(0))
	require.Error(t, err)
	_, err = NewMemory(30)
	require.Error(t, err)

	m, err := NewMemory(30, solidGray(0), solidGray(1), solidGray(2))
	require.NoError(t, err)
	require.Equal(t, types.VideoMetadata{
		Width:      4,
		Height:     3,
		FPS:        30,
		Duration:   100 * time.Millisecond,
		FrameCount: 3,
	}, m.Metadata())

	r, err := m.FrameAt(ctx, 1)
	require.NoError(t, err)
	require.True(t, r.Found)
	require.Nil(t, r.Notice)
	require.Equal(t, 1, r.FrameIndex)
	require.Equal(t, uint8(1), r.Frame.(*image.Gray).Pix[0])

	for _, idx := range []int{-1, 3} {
		r, err := m.FrameAt(ctx, idx)
		require.NoError(t, err)
		require.False(t, r.Found)
		require.Nil(t, r.Frame)
		require.NotNil(t, r.Notice)
		require.Equal(t, types.AccessKindFrameIndex, r.Notice.Kind)
		require.Equal(t, float64(idx), r.Notice.Requested)
	}

	require.Equal(t, []int{1, -1, 3}, m.Accesses)
	require.Equal(t, types.SourceStatistics{FramesServed: 1, Misses: 2}, m.GetStats())
	require.NoError(t, m.Close(ctx))
}

func TestImageSequence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for i := 0; i < 3; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 5, 2))
		img.SetRGBA(i, 0, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
		require.NoError(t, imgio.Save(filepath.Join(dir, fmt.Sprintf("frame_%04d.png", i)), img, imgio.PNGEncoder()))
	}

	s, err := NewImageSequenceFromGlob(ctx, filepath.Join(dir, "frame_*.png"), 15)
	require.NoError(t, err)
	require.Equal(t, 3, s.Metadata().FrameCount)
	require.Equal(t, 5, s.Metadata().Width)
	require.Equal(t, 2, s.Metadata().Height)
	require.Equal(t, 200*time.Millisecond, s.Metadata().Duration)

	r, err := s.FrameAt(ctx, 2)
	require.NoError(t, err)
	require.True(t, r.Found)
	red, _, _, _ := r.Frame.At(2, 0).RGBA()
	require.Equal(t, uint32(0xFFFF), red)

	r, err = s.FrameAt(ctx, 3)
	require.NoError(t, err)
	require.False(t, r.Found)

	require.Equal(t, uint64(1), s.GetStats().FramesDecoded)

	_, err = NewImageSequenceFromGlob(ctx, filepath.Join(dir, "missing_*.png"), 15)
	require.Error(t, err)
}
