package framesource

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/xaionaro-go/scrollrate/logger"
	"github.com/xaionaro-go/scrollrate/types"
)

// ImageSequence serves a video stored as one image file per frame
// (PNG, JPEG or BMP), decoding each file only when it is requested.
type ImageSequence struct {
	Paths    []string
	metadata types.VideoMetadata
	counters types.SourceCounters
}

var _ FrameSource = (*ImageSequence)(nil)

// NewImageSequenceFromGlob opens the files matching the pattern, in lexical order.
func NewImageSequenceFromGlob(
	ctx context.Context,
	pattern string,
	fps float64,
) (*ImageSequence, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}
	sort.Strings(paths)
	return NewImageSequence(ctx, paths, fps)
}

func NewImageSequence(
	ctx context.Context,
	paths []string,
	fps float64,
) (*ImageSequence, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %v", fps)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no image files provided")
	}

	first, err := imgio.Open(paths[0])
	if err != nil {
		return nil, fmt.Errorf("unable to open the first frame '%s': %w", paths[0], err)
	}
	b := first.Bounds()

	s := &ImageSequence{
		Paths: paths,
		metadata: types.VideoMetadata{
			Width:      b.Dx(),
			Height:     b.Dy(),
			FPS:        fps,
			Duration:   time.Duration(float64(len(paths)) / fps * float64(time.Second)),
			FrameCount: len(paths),
		},
	}
	logger.Debugf(ctx, "opened an image sequence: %s", s.metadata)
	return s, nil
}

func (s *ImageSequence) String() string {
	return fmt.Sprintf("ImageSequence(%d files)", len(s.Paths))
}

func (s *ImageSequence) Metadata() types.VideoMetadata {
	return s.metadata
}

func (s *ImageSequence) FrameAt(
	ctx context.Context,
	index int,
) (types.FrameResult, error) {
	if result, ok := CheckIndex(s.metadata, index); !ok {
		s.counters.CountResult(result)
		return result, nil
	}

	path := s.Paths[index]
	logger.Tracef(ctx, "decoding frame %d from '%s'", index, path)
	img, err := imgio.Open(path)
	if err != nil {
		return types.FrameResult{}, fmt.Errorf("unable to decode frame %d from '%s': %w", index, path, err)
	}
	s.counters.FramesDecoded.Inc()

	result := types.FrameFound(index, img)
	s.counters.CountResult(result)
	return result, nil
}

func (s *ImageSequence) GetStats() types.SourceStatistics {
	return s.counters.ToStats()
}

func (s *ImageSequence) Close(ctx context.Context) error {
	return nil
}
