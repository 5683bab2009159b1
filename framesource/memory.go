package framesource

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/xaionaro-go/scrollrate/types"
)

// Memory serves frames that are already decoded, e.g. synthetic test footage.
type Memory struct {
	Frames   []image.Image
	metadata types.VideoMetadata
	counters types.SourceCounters

	// Accesses records every requested index, in order.
	Accesses []int
}

var _ FrameSource = (*Memory)(nil)

func NewMemory(fps float64, frames ...image.Image) (*Memory, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %v", fps)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("at least one frame is required")
	}
	b := frames[0].Bounds()
	return &Memory{
		Frames: frames,
		metadata: types.VideoMetadata{
			Width:      b.Dx(),
			Height:     b.Dy(),
			FPS:        fps,
			Duration:   time.Duration(float64(len(frames)) / fps * float64(time.Second)),
			FrameCount: len(frames),
		},
	}, nil
}

func (m *Memory) String() string {
	return fmt.Sprintf("Memory(%d frames)", len(m.Frames))
}

func (m *Memory) Metadata() types.VideoMetadata {
	return m.metadata
}

func (m *Memory) FrameAt(
	ctx context.Context,
	index int,
) (types.FrameResult, error) {
	m.Accesses = append(m.Accesses, index)
	if result, ok := CheckIndex(m.metadata, index); !ok {
		m.counters.CountResult(result)
		return result, nil
	}
	result := types.FrameFound(index, m.Frames[index])
	m.counters.CountResult(result)
	return result, nil
}

func (m *Memory) GetStats() types.SourceStatistics {
	return m.counters.ToStats()
}

func (m *Memory) Close(ctx context.Context) error {
	return nil
}
