// Package shift estimates how many rows the content of a scrolling video
// moves between two consecutive samples.
package shift

import (
	"fmt"
	"image"
	"math/bits"

	"github.com/xaionaro-go/scrollrate/mask"
	"gonum.org/v1/gonum/floats"
)

// Estimate returns the vertical offset i in [1, height) that maximizes the
// intersection-over-union of prev rows [0, height-i) and curr rows
// [i, height), i.e. how many rows the content moved down from prev to curr.
//
// The IoU is computed as inter/(union+1), so empty overlaps score zero
// instead of being undefined. If several offsets share the best score, the
// smallest one wins.
func Estimate(prev, curr *mask.Mask) (int, error) {
	if prev == nil || curr == nil {
		return 0, fmt.Errorf("a mask is nil (prev: %v, curr: %v)", prev == nil, curr == nil)
	}
	if !prev.SameShape(curr) {
		return 0, ErrShapeMismatch{
			Prev: image.Pt(prev.Width, prev.Height),
			Curr: image.Pt(curr.Width, curr.Height),
		}
	}
	height := prev.Height
	if height < 2 {
		return 0, ErrMaskTooSmall{Height: height}
	}

	prevRows, prevCounts := packRows(prev)
	currRows, currCounts := packRows(curr)

	// prevHead[k] is the number of set pixels in prev rows [0, k);
	// currTail[k] is the number of set pixels in curr rows [k, height).
	prevHead := make([]int, height+1)
	for y, c := range prevCounts {
		prevHead[y+1] = prevHead[y] + c
	}
	currTail := make([]int, height+1)
	for y := height - 1; y >= 0; y-- {
		currTail[y] = currTail[y+1] + currCounts[y]
	}

	scores := make([]float64, height-1)
	for offset := 1; offset < height; offset++ {
		var inter int
		for y := 0; y < height-offset; y++ {
			inter += andCount(prevRows[y], currRows[y+offset])
		}
		union := prevHead[height-offset] + currTail[offset] - inter
		scores[offset-1] = float64(inter) / float64(union+1)
	}

	return floats.MaxIdx(scores) + 1, nil
}

// packRows packs every row into 64-pixel words and counts set pixels per row.
func packRows(m *mask.Mask) ([][]uint64, []int) {
	wordsPerRow := (m.Width + 63) / 64
	buf := make([]uint64, wordsPerRow*m.Height)
	rows := make([][]uint64, m.Height)
	counts := make([]int, m.Height)
	for y := range rows {
		row := buf[y*wordsPerRow : (y+1)*wordsPerRow]
		for x, v := range m.Row(y) {
			if v {
				row[x/64] |= uint64(1) << (x % 64)
			}
		}
		for _, w := range row {
			counts[y] += bits.OnesCount64(w)
		}
		rows[y] = row
	}
	return rows, counts
}

func andCount(a, b []uint64) int {
	var count int
	for idx := range a {
		count += bits.OnesCount64(a[idx] & b[idx])
	}
	return count
}
