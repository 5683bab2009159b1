// preprocess.go defines the frame preprocessing contract and crop bounds.

// Package preprocess turns decoded frames into binary masks: crop a region,
// reduce it to 8-bit grayscale, then threshold it.
package preprocess

import (
	"fmt"
	"image"
	"math"

	"github.com/xaionaro-go/scrollrate/mask"
	"github.com/xaionaro-go/scrollrate/types"
	"github.com/xaionaro-go/typing"
)

type Preprocessor interface {
	fmt.Stringer

	// Crop returns the region of img selected by bounds; unset bounds default to the full extent.
	Crop(img image.Image, bounds Bounds) (image.Image, error)

	// Grayscale returns an 8-bit single-channel copy of img; it returns
	// *image.Gray input as is and renders masks as {0, 255}.
	Grayscale(img image.Image) *image.Gray

	// Binarize marks every pixel brighter than threshold, converting to grayscale first if needed.
	Binarize(img image.Image, threshold uint8) *mask.Mask
}

// Luminance weights of ITU-R BT.709.
const (
	WeightRed   = 0.2125
	WeightGreen = 0.7154
	WeightBlue  = 0.0721
)

// lumaEpsilon keeps white at 255 despite the weights not summing to exactly 1 in float64.
const lumaEpsilon = 1e-9

// Luma is the weighted luminance of an 8-bit RGB triple, truncated (not
// rounded) to an integer level.
func Luma(r, g, b uint8) uint8 {
	return uint8(math.Floor(WeightRed*float64(r) + WeightGreen*float64(g) + WeightBlue*float64(b) + lumaEpsilon))
}

// Bounds selects rows [Top, Bottom) and columns [Left, Right), relative to
// the top-left corner of the frame.
type Bounds struct {
	Top    typing.Optional[int]
	Bottom typing.Optional[int]
	Left   typing.Optional[int]
	Right  typing.Optional[int]
}

func (b Bounds) String() string {
	return fmt.Sprintf("rows [%s, %s) cols [%s, %s)",
		optString(b.Top), optString(b.Bottom), optString(b.Left), optString(b.Right))
}

func optString(v typing.Optional[int]) string {
	if !v.IsSet() {
		return "*"
	}
	return fmt.Sprint(v.Get())
}

// Rectangle resolves the bounds against the frame bounds and validates them.
func (b Bounds) Rectangle(frame image.Rectangle) (image.Rectangle, error) {
	height, width := frame.Dy(), frame.Dx()

	top, bottom := 0, height
	if b.Top.IsSet() {
		top = b.Top.Get()
	}
	if b.Bottom.IsSet() {
		bottom = b.Bottom.Get()
	}
	left, right := 0, width
	if b.Left.IsSet() {
		left = b.Left.Get()
	}
	if b.Right.IsSet() {
		right = b.Right.Get()
	}

	switch {
	case top < 0 || top >= height:
		return image.Rectangle{}, types.NewErrValidation("crop top", top, "outside of limits [0, %d]", height-1)
	case bottom < 1 || bottom > height:
		return image.Rectangle{}, types.NewErrValidation("crop bottom", bottom, "outside of limits [1, %d]", height)
	case bottom <= top:
		return image.Rectangle{}, types.NewErrValidation("crop bottom", bottom, "should be at least one more than the top %d", top)
	case left < 0 || left >= width:
		return image.Rectangle{}, types.NewErrValidation("crop left", left, "outside of limits [0, %d]", width-1)
	case right < 1 || right > width:
		return image.Rectangle{}, types.NewErrValidation("crop right", right, "outside of limits [1, %d]", width)
	case right <= left:
		return image.Rectangle{}, types.NewErrValidation("crop right", right, "should be at least one more than the left %d", left)
	}

	return image.Rect(left, top, right, bottom).Add(frame.Min), nil
}

// BinaryCrop runs the full chain: crop, grayscale, threshold.
func BinaryCrop(
	prep Preprocessor,
	img image.Image,
	bounds Bounds,
	threshold uint8,
) (*mask.Mask, error) {
	cropped, err := prep.Crop(img, bounds)
	if err != nil {
		return nil, fmt.Errorf("unable to crop the frame: %w", err)
	}
	return prep.Binarize(prep.Grayscale(cropped), threshold), nil
}

func cropMask(m *mask.Mask, rect image.Rectangle) *mask.Mask {
	result := mask.New(rect.Dx(), rect.Dy())
	for y := 0; y < result.Height; y++ {
		copy(result.Row(y), m.Row(rect.Min.Y + y)[rect.Min.X:rect.Max.X])
	}
	return result
}

func normalizedGray(img *image.Gray) *image.Gray {
	if img.Rect.Min == (image.Point{}) {
		return img
	}
	b := img.Bounds()
	result := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		offset := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(result.Pix[y*result.Stride:], img.Pix[offset:offset+b.Dx()])
	}
	return result
}
