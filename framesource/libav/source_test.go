package libav

import (
	"context"
	"image"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/scrollrate/types"
)

const testVideoEnv = "SCROLLRATE_TEST_VIDEO"

func testVideo(t *testing.T) string {
	path := os.Getenv(testVideoEnv)
	if path == "" {
		t.Skipf("%s is not set", testVideoEnv)
	}
	return path
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(context.Background(), "/nonexistent/video.mp4", Config{})
	require.Error(t, err)
}

func TestSource(t *testing.T) {
	ctx := context.Background()
	path := testVideo(t)

	src, err := Open(ctx, path, Config{})
	require.NoError(t, err)
	defer src.Close(ctx)

	md := src.Metadata()
	require.Greater(t, md.Width, 0)
	require.Greater(t, md.Height, 0)
	require.Greater(t, md.FPS, 0.0)
	require.Greater(t, md.Duration, time.Duration(0))
	require.Greater(t, md.FrameCount, 10)

	get := func(idx int) image.Image {
		result, err := src.FrameAt(ctx, idx)
		require.NoError(t, err)
		require.True(t, result.Found, "frame %d", idx)
		require.Equal(t, idx, result.FrameIndex)
		require.Equal(t, image.Rect(0, 0, md.Width, md.Height), result.Frame.Bounds())
		return result.Frame
	}

	seeks := src.GetStats().Seeks
	get(0)
	get(1)
	fifth := get(5)
	get(10)
	require.Equal(t, seeks, src.GetStats().Seeks)

	require.Equal(t, fifth, get(5))
	require.Equal(t, seeks+1, src.GetStats().Seeks)

	for _, idx := range []int{-1, md.FrameCount} {
		result, err := src.FrameAt(ctx, idx)
		require.NoError(t, err)
		require.False(t, result.Found)
		require.Equal(t, types.AccessKindFrameIndex, result.Notice.Kind)
	}

	require.NoError(t, src.Close(ctx))
	_, err = src.FrameAt(ctx, 0)
	require.Error(t, err)
}

func TestSourceFPSOverride(t *testing.T) {
	ctx := context.Background()
	path := testVideo(t)

	native, err := Open(ctx, path, Config{})
	require.NoError(t, err)
	nativeFPS := native.Metadata().FPS
	require.NoError(t, native.Close(ctx))

	src, err := Open(ctx, path, Config{FPSOverride: &types.Rational{Num: 5, Den: 1}})
	require.NoError(t, err)
	defer src.Close(ctx)
	md := src.Metadata()
	require.Equal(t, 5.0, md.FPS)
	require.Equal(t, framesInDuration(md.Duration, 5), md.FrameCount)

	if nativeFPS >= 5 {
		result, err := src.FrameAt(ctx, md.FrameCount-1)
		require.NoError(t, err)
		require.True(t, result.Found)
		require.Equal(t, md.FrameCount-1, result.FrameIndex)
	}
}

func TestFramesInDuration(t *testing.T) {
	require.Equal(t, 50, framesInDuration(10*time.Second, 5))
	require.Equal(t, 131, framesInDuration(131733333333*time.Nanosecond, 1))
	require.Equal(t, 0, framesInDuration(100*time.Millisecond, 5))
}
