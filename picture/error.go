package picture

import "fmt"

// BaselineError is the sum of squared per-pixel differences.
func BaselineError(goal, gen *Gray) uint64 {
	mustMatch(goal, gen)
	var sum uint64
	for i, g := range goal.Pix {
		d := absDiff(g, gen.Pix[i])
		sum += d * d
	}
	return sum
}

// Ring weights for the pixel itself and the rings at Chebyshev distance 1,
// 2 and 3.
var ringWeights = [4]float64{7.0 / 16, 5.0 / 16, 3.0 / 16, 1.0 / 16}

// PerceptualError weighs each pixel's error together with the mean error of
// the three rings around it. Each weighted term is cubed, so concentrated
// errors cost more than the same amount of error spread thinly. Rings only
// average over in-bounds pixels.
func PerceptualError(goal, gen *Gray) float64 {
	mustMatch(goal, gen)
	w, h := goal.Width, goal.Height
	diff := make([]float64, len(goal.Pix))
	for i, g := range goal.Pix {
		diff[i] = float64(absDiff(g, gen.Pix[i]))
	}

	var total float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var terms [4]float64
			terms[0] = diff[x+y*w]
			for d := 1; d <= 3; d++ {
				terms[d] = ringMean(diff, w, h, x, y, d)
			}
			for i, term := range terms {
				v := ringWeights[i] * term
				total += v * v * v
			}
		}
	}
	return total
}

// ringMean averages diff over the in-bounds cells at Chebyshev distance
// exactly d from (cx, cy). A ring entirely outside the image counts as 0.
func ringMean(diff []float64, w, h, cx, cy, d int) float64 {
	var sum float64
	n := 0
	add := func(x, y int) {
		if x < 0 || y < 0 || x >= w || y >= h {
			return
		}
		sum += diff[x+y*w]
		n++
	}
	for x := cx - d; x <= cx+d; x++ {
		add(x, cy-d)
		add(x, cy+d)
	}
	for y := cy - d + 1; y <= cy+d-1; y++ {
		add(cx-d, y)
		add(cx+d, y)
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func absDiff(a, b uint8) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}

// Metric names an error model.
type Metric string

const (
	Perceptual Metric = "perceptual"
	Baseline   Metric = "baseline"
)

// MetricFunc scores a generated image against the goal; lower is better.
type MetricFunc func(goal, gen *Gray) float64

func (m Metric) Func() (MetricFunc, error) {
	switch m {
	case "", Perceptual:
		return PerceptualError, nil
	case Baseline:
		return func(goal, gen *Gray) float64 {
			return float64(BaselineError(goal, gen))
		}, nil
	}
	return nil, fmt.Errorf("unknown error metric %q", string(m))
}
