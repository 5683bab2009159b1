package shift

import (
	"fmt"
	"image"
)

type ErrShapeMismatch struct {
	Prev image.Point
	Curr image.Point
}

func (e ErrShapeMismatch) Error() string {
	return fmt.Sprintf("the masks have different shapes: %v vs %v", e.Prev, e.Curr)
}

type ErrMaskTooSmall struct {
	Height int
}

func (e ErrMaskTooSmall) Error() string {
	return fmt.Sprintf("a mask must have at least 2 rows to estimate a shift, got %d", e.Height)
}

type ErrNotEnoughFrames struct {
	Frames int
}

func (e ErrNotEnoughFrames) Error() string {
	return fmt.Sprintf("at least 2 frames are required to find a shift rate, got %d", e.Frames)
}
