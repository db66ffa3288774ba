// Package pixapprox approximates grayscale images with evolved arithmetic
// programs. The work is split across vm (instructions and compilation),
// interp (evaluation), mutate, optimize, picture (rendering and image
// error), model (the evolutionary loop) and session (runs with artifacts).
package pixapprox

const Version = "0.3.0"
