package utils

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// tolerance when comparing a rounded prediction with a {0,1} label
const labelTolerance = 1e-6

// Classify thresholds sigmoid outputs at 0.5 into {0,1} classes
func Classify(scores *mat.Dense) []float64 {
	nsamples, _ := scores.Dims()
	class := make([]float64, nsamples)
	for r := range class {
		if scores.At(r, 0) >= 0.5 {
			class[r] = 1
		}
	}
	return class
}

// ComputeAccuracy returns the fraction of classified samples matching y, in [0,1]
func ComputeAccuracy(c []float64, y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	accuracy := 0.
	for i := range y {
		if math.Abs(c[i]-y[i]) < labelTolerance {
			accuracy++
		}
	}
	return accuracy / float64(len(y))
}
