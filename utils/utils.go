package utils

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ********************************** ACTIVATION FUNCTIONS **********************************

// Relu is the rectifier function: max(0,x)
func Relu(x float64) float64 {
	return math.Max(0, x)
}

// ReluD is the derivative of the Relu function, taken as 0 at the origin
// {0: if x <= 0, 1: if x > 0}
func ReluD(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// One is the constant derivative used by an output layer whose incoming error
// already combines the sigmoid and cross-entropy derivatives
func One(x float64) float64 {
	return 1
}

// ToApply makes a function float -> float into a function to apply to a matrix (int, int, float -> float)
func ToApply(f func(float64) float64) func(i, j int, v float64) float64 {
	return func(i, j int, v float64) float64 {
		return f(v)
	}
}

// ********************************** MATRIX HELPERS **********************************

// FillNorm returns a slice of given length filled with values taken from the normal distrib
func FillNorm(length int, mean float64, std float64) []float64 {
	a := make([]float64, length)
	for i := range a {
		a[i] = rand.NormFloat64()*std + mean
	}
	return a
}

// ColSums returns the column sums of m as a 1 x c row vector
func ColSums(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	sums := mat.NewDense(1, c, nil)
	for j := 0; j < c; j++ {
		s := 0.
		for i := 0; i < r; i++ {
			s += m.At(i, j)
		}
		sums.Set(0, j, s)
	}
	return sums
}
