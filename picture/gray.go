package picture

import (
	"errors"
	"fmt"
)

var ErrSizeMismatch = errors.New("image dimensions differ")

// Gray is an 8-bit grayscale image stored row-major.
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGray returns a black image.
func NewGray(width, height int) *Gray {
	return &Gray{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

func (g *Gray) At(x, y int) uint8 {
	return g.Pix[x+y*g.Width]
}

func (g *Gray) Set(x, y int, v uint8) {
	g.Pix[x+y*g.Width] = v
}

// Lookup is At with bounds checking.
func (g *Gray) Lookup(x, y int) (uint8, bool) {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return 0, false
	}
	return g.Pix[x+y*g.Width], true
}

func (g *Gray) Len() int {
	return len(g.Pix)
}

func (g *Gray) SameSize(o *Gray) bool {
	return g.Width == o.Width && g.Height == o.Height
}

func (g *Gray) Clone() *Gray {
	out := &Gray{Width: g.Width, Height: g.Height, Pix: make([]uint8, len(g.Pix))}
	copy(out.Pix, g.Pix)
	return out
}

func mustMatch(goal, gen *Gray) {
	if !goal.SameSize(gen) {
		panic(fmt.Errorf("%w: goal %dx%d, generated %dx%d", ErrSizeMismatch, goal.Width, goal.Height, gen.Width, gen.Height))
	}
}

// SideBySide places the goal on the left and the generated image on the
// right, for inspection snapshots.
func SideBySide(goal, gen *Gray) *Gray {
	mustMatch(goal, gen)
	out := NewGray(goal.Width*2, goal.Height)
	for y := 0; y < goal.Height; y++ {
		row := y * out.Width
		copy(out.Pix[row:row+goal.Width], goal.Pix[y*goal.Width:(y+1)*goal.Width])
		copy(out.Pix[row+goal.Width:row+out.Width], gen.Pix[y*gen.Width:(y+1)*gen.Width])
	}
	return out
}
