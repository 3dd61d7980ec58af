package audio

import (
	"math"
)

// han is the i-th of n Hann window coefficients.
func han(i, n int) float64 {
	x := float64(i) / float64(n)
	return 0.5 - 0.5*math.Cos(2.0*math.Pi*x)
}
