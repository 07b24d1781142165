package centralized

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// PredictionResult is the network's verdict for a single water sample
type PredictionResult struct {
	Probability float64
	Potable     bool
}

// Predict runs the forward pass on one sample. The sample must already be
// normalized with the statistics of the training dataset.
// Not safe to call while the same Network is training.
func (n *Network) Predict(sample []float64) (PredictionResult, error) {
	inputs, _ := n.layers[0].Dims()
	if len(sample) != inputs {
		return PredictionResult{}, fmt.Errorf("expected %d features, got %d", inputs, len(sample))
	}

	row := make([]float64, len(sample))
	copy(row, sample)
	out := n.Forward(mat.NewDense(1, inputs, row))

	p := out.At(0, 0)
	return PredictionResult{Probability: p, Potable: p >= 0.5}, nil
}
