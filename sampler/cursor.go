package sampler

import (
	"fmt"
	"time"

	"github.com/xaionaro-go/typing"
)

const (
	NoFrameIndex = -1
	NoTime       = -time.Second
)

// Cursor is the most recently accessed position. It is moved only by
// successful frame accesses and, for SampleIndex, by schedule generation.
type Cursor struct {
	// FrameIndex is NoFrameIndex until a frame was read.
	FrameIndex int

	// Time is NoTime until a frame was read.
	Time time.Duration

	// SampleIndex is unset until a sample was read through a schedule. It is
	// fractional whenever the last read frame is off the grid.
	SampleIndex typing.Optional[float64]
}

func newCursor() Cursor {
	return Cursor{
		FrameIndex: NoFrameIndex,
		Time:       NoTime,
	}
}

func (c Cursor) String() string {
	sampleIndex := "<unset>"
	if c.SampleIndex.IsSet() {
		sampleIndex = fmt.Sprint(c.SampleIndex.Get())
	}
	return fmt.Sprintf("frame:%d time:%v sample:%s", c.FrameIndex, c.Time, sampleIndex)
}
