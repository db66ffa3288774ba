package picture

import (
	"github.com/pixapprox/pixapprox/interp"
	"github.com/pixapprox/pixapprox/vm"
)

// ImageVars is the number of registers a rendered program may read: x and
// y.
const ImageVars = 2

// Render evaluates p once per pixel of a width x height image.
func Render(p *vm.Program, width, height int) *Gray {
	out := NewGray(width, height)
	RenderInto(out, p, interp.NewState(ImageVars))
	return out
}

// RenderInto overwrites dst using the caller's state, so workers can reuse
// both between programs. Register 0 holds x and register 1 holds y, each
// mapped from the pixel grid to [-1, 1).
func RenderInto(dst *Gray, p *vm.Program, st *interp.State) {
	w, h := float32(dst.Width), float32(dst.Height)
	i := 0
	for y := 0; y < dst.Height; y++ {
		st.Vars[1] = float32(y)/h*2 - 1
		for x := 0; x < dst.Width; x++ {
			st.Vars[0] = float32(x)/w*2 - 1
			dst.Pix[i] = ToSample(interp.Eval(p, st))
			i++
		}
	}
}

// ToSample clamps v to [-1, 1] and maps it onto 1..255. NaN maps to white.
func ToSample(v float32) uint8 {
	switch {
	case v != v:
		v = 1
	case v > 1:
		v = 1
	case v < -1:
		v = -1
	}
	return uint8(v*127 + 128)
}
