package systems

import (
	"image"
	"math/bits"
)

// alphaThreshold is the minimum alpha for a pixel to count as solid.
const alphaThreshold = 127

// Mask is a 1-bit-per-pixel opacity map, stored row-major in 64-bit words.
type Mask struct {
	W, H   int
	stride int // words per row
	words  []uint64
}

// NewMask builds a mask from the opaque pixels of img.
func NewMask(img *image.NRGBA) *Mask {
	b := img.Bounds()
	m := newEmptyMask(b.Dx(), b.Dy())
	for y := 0; y < m.H; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < m.W; x++ {
			if row[x*4+3] > alphaThreshold {
				m.set(x, y)
			}
		}
	}
	return m
}

func newEmptyMask(w, h int) *Mask {
	stride := (w + 63) / 64
	return &Mask{W: w, H: h, stride: stride, words: make([]uint64, stride*h)}
}

func (m *Mask) set(x, y int) {
	m.words[y*m.stride+x/64] |= 1 << uint(x%64)
}

// At reports whether the pixel at (x, y) is solid. Out of range is empty.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.words[y*m.stride+x/64]&(1<<uint(x%64)) != 0
}

// Count returns the number of solid pixels.
func (m *Mask) Count() int {
	n := 0
	for _, w := range m.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Overlap reports whether any solid pixel of m coincides with a solid pixel
// of other, when other's top-left corner is placed at (dx, dy) in m's
// coordinates.
func (m *Mask) Overlap(other *Mask, dx, dy int) bool {
	x0, x1 := max(0, dx), min(m.W, dx+other.W)
	y0, y1 := max(0, dy), min(m.H, dy+other.H)
	if x0 >= x1 || y0 >= y1 {
		return false
	}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; {
			// Fetch up to 64 bits of m's row starting at x and the matching bits of other
			n := min(64, x1-x)
			if m.rowBits(x, y, n)&other.rowBits(x-dx, y-dy, n) != 0 {
				return true
			}
			x += n
		}
	}
	return false
}

// rowBits returns n (<= 64) bits of row y starting at column x, LSB first.
func (m *Mask) rowBits(x, y, n int) uint64 {
	base := y * m.stride
	word, shift := x/64, uint(x%64)
	v := m.words[base+word] >> shift
	if shift != 0 && word+1 < m.stride {
		v |= m.words[base+word+1] << (64 - shift)
	}
	if n < 64 {
		v &= (1 << uint(n)) - 1
	}
	return v
}
