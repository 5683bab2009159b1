//go:build with_cv
// +build with_cv

package preprocess

import (
	"fmt"
	"image"
	"math"

	"github.com/xaionaro-go/scrollrate/mask"
	"gocv.io/x/gocv"
)

// CV is the OpenCV-backed Preprocessor; it is available only with the with_cv build tag.
type CV struct{}

var _ Preprocessor = CV{}

func NewCV() CV {
	return CV{}
}

func (CV) String() string {
	return "CV"
}

func toMat(img image.Image) (gocv.Mat, error) {
	switch img := img.(type) {
	case *image.Gray:
		return gocv.ImageGrayToMatGray(img)
	case *mask.Mask:
		return gocv.ImageGrayToMatGray(img.ToGray())
	default:
		return gocv.ImageToMatRGB(img)
	}
}

func (CV) Crop(img image.Image, bounds Bounds) (image.Image, error) {
	rect, err := bounds.Rectangle(img.Bounds())
	if err != nil {
		return nil, err
	}
	if m, ok := img.(*mask.Mask); ok {
		return cropMask(m, rect), nil
	}

	mat, err := toMat(img)
	if err != nil {
		return nil, fmt.Errorf("unable to convert the image to a matrix: %w", err)
	}
	defer mat.Close()

	region := mat.Region(rect.Sub(img.Bounds().Min))
	defer region.Close()

	// Region shares memory with mat, so the result has to be materialized before closing.
	result, err := region.ToImage()
	if err != nil {
		return nil, fmt.Errorf("unable to convert the matrix region to an image: %w", err)
	}
	if gray, ok := result.(*image.Gray); ok {
		return normalizedGray(gray), nil
	}
	return result, nil
}

func (CV) Grayscale(img image.Image) *image.Gray {
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

	gray, err := cvLuma(img)
	if err != nil {
		// only exotic color models fail here, and bild still handles them
		return Bild{}.Grayscale(img)
	}
	copy(result.Pix, gray)
	return result
}

// cvLuma weights the channels in float64 and truncates, matching Luma.
func cvLuma(img image.Image) ([]uint8, error) {
	bgr, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("unable to convert the image to a matrix: %w", err)
	}
	defer bgr.Close()

	bgrF := gocv.NewMat()
	defer bgrF.Close()
	if err := bgr.ConvertTo(&bgrF, gocv.MatTypeCV64F); err != nil {
		return nil, fmt.Errorf("unable to convert the matrix to float64: %w", err)
	}

	weights := gocv.NewMatWithSize(1, 3, gocv.MatTypeCV64F)
	defer weights.Close()
	weights.SetDoubleAt(0, 0, WeightBlue)
	weights.SetDoubleAt(0, 1, WeightGreen)
	weights.SetDoubleAt(0, 2, WeightRed)

	luma := gocv.NewMat()
	defer luma.Close()
	if err := gocv.Transform(bgrF, &luma, weights); err != nil {
		return nil, fmt.Errorf("unable to weight the channels: %w", err)
	}

	values, err := luma.DataPtrFloat64()
	if err != nil {
		return nil, fmt.Errorf("unable to access the luminance values: %w", err)
	}
	result := make([]uint8, len(values))
	for i, v := range values {
		result[i] = uint8(math.Floor(v + lumaEpsilon))
	}
	return result, nil
}

func (p CV) Binarize(img image.Image, threshold uint8) *mask.Mask {
	gray := p.Grayscale(img)
	if gray.Bounds().Empty() {
		return mask.New(0, 0)
	}

	src, err := gocv.ImageGrayToMatGray(normalizedGray(gray))
	if err != nil {
		return mask.FromGray(gray, threshold)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Threshold(src, &dst, float32(threshold), 255, gocv.ThresholdBinary)

	b := gray.Bounds()
	result := mask.New(b.Dx(), b.Dy())
	for i, v := range dst.ToBytes() {
		result.Pix[i] = v != 0
	}
	return result
}
