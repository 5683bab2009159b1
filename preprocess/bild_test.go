package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/scrollrate/mask"
	"github.com/xaionaro-go/scrollrate/types"
	"github.com/xaionaro-go/typing"
)

func newRGBA(w, h int, fill color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	return img
}

func TestBoundsRectangle(t *testing.T) {
	frame := image.Rect(0, 0, 10, 6)

	t.Run("defaults", func(t *testing.T) {
		rect, err := Bounds{}.Rectangle(frame)
		require.NoError(t, err)
		require.Equal(t, frame, rect)
	})

	t.Run("explicit", func(t *testing.T) {
		rect, err := Bounds{
			Top:    typing.Opt(1),
			Bottom: typing.Opt(5),
			Left:   typing.Opt(2),
		}.Rectangle(frame)
		require.NoError(t, err)
		require.Equal(t, image.Rect(2, 1, 10, 5), rect)
	})

	for name, bounds := range map[string]Bounds{
		"negative top":         {Top: typing.Opt(-1)},
		"top at height":        {Top: typing.Opt(6)},
		"bottom beyond":        {Bottom: typing.Opt(7)},
		"bottom zero":          {Bottom: typing.Opt(0)},
		"bottom equals top":    {Top: typing.Opt(3), Bottom: typing.Opt(3)},
		"negative left":        {Left: typing.Opt(-1)},
		"right beyond":         {Right: typing.Opt(11)},
		"right less than left": {Left: typing.Opt(5), Right: typing.Opt(4)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := bounds.Rectangle(frame)
			var errValidation *types.ErrValidation
			require.ErrorAs(t, err, &errValidation)
		})
	}
}

func TestBildCrop(t *testing.T) {
	p := NewBild()

	t.Run("rgba", func(t *testing.T) {
		img := newRGBA(4, 4, color.RGBA{A: 0xFF})
		img.SetRGBA(2, 1, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
		cropped, err := p.Crop(img, Bounds{Top: typing.Opt(1), Left: typing.Opt(2)})
		require.NoError(t, err)
		require.Equal(t, 2, cropped.Bounds().Dx())
		require.Equal(t, 3, cropped.Bounds().Dy())
		r, _, _, _ := cropped.At(cropped.Bounds().Min.X, cropped.Bounds().Min.Y).RGBA()
		require.Equal(t, uint32(0xFFFF), r)
	})

	t.Run("gray", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 3, 3))
		img.SetGray(1, 1, color.Gray{Y: 42})
		cropped, err := p.Crop(img, Bounds{Top: typing.Opt(1), Left: typing.Opt(1)})
		require.NoError(t, err)
		gray, ok := cropped.(*image.Gray)
		require.True(t, ok)
		require.Equal(t, image.Rect(0, 0, 2, 2), gray.Bounds())
		require.Equal(t, uint8(42), gray.GrayAt(0, 0).Y)
	})

	t.Run("mask", func(t *testing.T) {
		m := mask.FromRows(
			"#..",
			".#.",
			"..#",
		)
		cropped, err := p.Crop(m, Bounds{Top: typing.Opt(1), Bottom: typing.Opt(3), Left: typing.Opt(1)})
		require.NoError(t, err)
		require.Equal(t, mask.FromRows("#.", ".#"), cropped)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := p.Crop(newRGBA(2, 2, color.RGBA{}), Bounds{Bottom: typing.Opt(3)})
		require.Error(t, err)
	})
}

func TestBildGrayscale(t *testing.T) {
	p := NewBild()

	t.Run("idempotent", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 2, 2))
		require.Same(t, img, p.Grayscale(img))
	})

	t.Run("mask", func(t *testing.T) {
		require.Equal(t, []uint8{0xFF, 0}, p.Grayscale(mask.FromRows("#.")).Pix)
	})

	t.Run("color", func(t *testing.T) {
		img := newRGBA(3, 1, color.RGBA{A: 0xFF})
		img.SetRGBA(1, 0, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
		img.SetRGBA(2, 0, color.RGBA{R: 0xFF, A: 0xFF})
		gray := p.Grayscale(img)
		require.Equal(t, image.Rect(0, 0, 3, 1), gray.Bounds())
		require.Equal(t, uint8(0), gray.Pix[0])
		require.Equal(t, uint8(0xFF), gray.Pix[1])
		require.Equal(t, uint8(54), gray.Pix[2])
	})

	t.Run("truncates", func(t *testing.T) {
		// 0.7154*127 = 90.8558
		img := newRGBA(1, 1, color.RGBA{G: 127, A: 0xFF})
		require.Equal(t, uint8(90), p.Grayscale(img).Pix[0])
		require.Equal(t, []bool{false}, p.Binarize(img, 90).Pix)
	})
}

func TestLuma(t *testing.T) {
	require.Equal(t, uint8(0), Luma(0, 0, 0))
	require.Equal(t, uint8(255), Luma(255, 255, 255))
	require.Equal(t, uint8(54), Luma(255, 0, 0))
	require.Equal(t, uint8(182), Luma(0, 255, 0))
	require.Equal(t, uint8(18), Luma(0, 0, 255))
	for v := 0; v < 256; v++ {
		require.Equal(t, uint8(v), Luma(uint8(v), uint8(v), uint8(v)))
	}
}

func TestBildBinarize(t *testing.T) {
	p := NewBild()
	img := image.NewGray(image.Rect(0, 0, 4, 1))
	img.Pix = []uint8{0, 90, 91, 255}
	require.Equal(t, []bool{false, false, true, true}, p.Binarize(img, 90).Pix)

	white := newRGBA(2, 1, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	require.Equal(t, []bool{true, true}, p.Binarize(white, 90).Pix)
	require.Equal(t, []bool{false, false}, p.Binarize(white, 255).Pix)
}

func TestBinaryCrop(t *testing.T) {
	img := newRGBA(4, 4, color.RGBA{A: 0xFF})
	img.SetRGBA(1, 2, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})

	m, err := BinaryCrop(NewBild(), img, Bounds{Top: typing.Opt(2), Right: typing.Opt(2)}, 90)
	require.NoError(t, err)
	require.Equal(t, mask.FromRows(".#", ".."), m)

	_, err = BinaryCrop(NewBild(), img, Bounds{Left: typing.Opt(4)}, 90)
	var errValidation *types.ErrValidation
	require.ErrorAs(t, err, &errValidation)
}
