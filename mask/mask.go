// Package mask provides a boolean per-pixel foreground map.
package mask

import (
	"fmt"
	"image"
	"image/color"
)

// Mask is a row-major boolean 2-D grid. It implements image.Image (as
// 8-bit grayscale, set pixels being 255) so it can be fed back to any
// image-processing step.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

var _ image.Image = (*Mask)(nil)

func New(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// FromRows builds a mask from a textual picture, e.g. {"#..", ".#."};
// '#' (or '1') is a set pixel, anything else is unset.
func FromRows(rows ...string) *Mask {
	if len(rows) == 0 {
		return New(0, 0)
	}
	m := New(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != m.Width {
			panic(fmt.Sprintf("row %d has length %d, expected %d", y, len(row), m.Width))
		}
		for x := 0; x < len(row); x++ {
			m.Set(x, y, row[x] == '#' || row[x] == '1')
		}
	}
	return m
}

func (m *Mask) String() string {
	return fmt.Sprintf("Mask(%dx%d)", m.Width, m.Height)
}

func (m *Mask) Get(x, y int) bool {
	return m.Pix[y*m.Width+x]
}

func (m *Mask) Set(x, y int, v bool) {
	m.Pix[y*m.Width+x] = v
}

// Row returns the y-th row; the slice aliases the mask storage.
func (m *Mask) Row(y int) []bool {
	return m.Pix[y*m.Width : (y+1)*m.Width]
}

// RowCounts returns the number of set pixels in each row.
func (m *Mask) RowCounts() []int {
	counts := make([]int, m.Height)
	for y := range counts {
		for _, v := range m.Row(y) {
			if v {
				counts[y]++
			}
		}
	}
	return counts
}

func (m *Mask) Count() int {
	var count int
	for _, v := range m.Pix {
		if v {
			count++
		}
	}
	return count
}

func (m *Mask) SameShape(other *Mask) bool {
	return m.Width == other.Width && m.Height == other.Height
}

func (m *Mask) ColorModel() color.Model {
	return color.GrayModel
}

func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

func (m *Mask) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(m.Bounds())) {
		return color.Gray{}
	}
	if m.Get(x, y) {
		return color.Gray{Y: 0xFF}
	}
	return color.Gray{}
}

// FromGray sets every pixel that is strictly brighter than the threshold.
func FromGray(img *image.Gray, threshold uint8) *Mask {
	b := img.Bounds()
	m := New(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		offset := img.PixOffset(b.Min.X, b.Min.Y+y)
		row := img.Pix[offset : offset+m.Width]
		for x, v := range row {
			m.Pix[y*m.Width+x] = v > threshold
		}
	}
	return m
}

// ToGray renders the mask as {0, 255} grayscale.
func (m *Mask) ToGray() *image.Gray {
	img := image.NewGray(m.Bounds())
	for i, v := range m.Pix {
		if v {
			img.Pix[i] = 0xFF
		}
	}
	return img
}
