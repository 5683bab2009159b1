package preprocess

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/transform"
	"github.com/xaionaro-go/scrollrate/mask"
)

// Bild is the pure-Go Preprocessor backed by github.com/anthonynsimon/bild.
type Bild struct{}

var _ Preprocessor = Bild{}

func NewBild() Bild {
	return Bild{}
}

func (Bild) String() string {
	return "Bild"
}

func (Bild) Crop(img image.Image, bounds Bounds) (image.Image, error) {
	rect, err := bounds.Rectangle(img.Bounds())
	if err != nil {
		return nil, err
	}

	switch img := img.(type) {
	case *mask.Mask:
		return cropMask(img, rect), nil
	case *image.Gray:
		return normalizedGray(img.SubImage(rect).(*image.Gray)), nil
	default:
		return transform.Crop(img, rect), nil
	}
}

func (Bild) Grayscale(img image.Image) *image.Gray {
	switch img := img.(type) {
	case *image.Gray:
		return img
	case *mask.Mask:
		return img.ToGray()
	}

	b := img.Bounds()
	result := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if b.Empty() {
		return result
	}

	rgba := adjust.Apply(img, func(c color.RGBA) color.RGBA {
		y := Luma(c.R, c.G, c.B)
		return color.RGBA{R: y, G: y, B: y, A: c.A}
	})
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			result.Pix[y*result.Stride+x] = rgba.Pix[y*rgba.Stride+x*4]
		}
	}
	return result
}

func (p Bild) Binarize(img image.Image, threshold uint8) *mask.Mask {
	return mask.FromGray(p.Grayscale(img), threshold)
}
