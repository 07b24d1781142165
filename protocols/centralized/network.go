package centralized

import (
	"errors"
	"time"

	"github.com/montanaflynn/stats"
	"go.dedis.ch/onet/v3/log"
	"gonum.org/v1/gonum/mat"

	"github.com/hydroml/potanet/layers"
	"github.com/hydroml/potanet/protocols/common"
	"github.com/hydroml/potanet/utils"
)

// operator visibility: one log line every logEvery epochs
const logEvery = 100

// Network is a multi layer perceptron with Relu hidden layers and a single
// sigmoid output, trained full batch. A Network lives for exactly one run:
// it is built fresh from a parameter request and discarded when superseded.
type Network struct {
	layers []*layers.Dense
}

// NewNetwork builds p.HiddenLayers+1 layers mapping
// inputFeatures -> k -> ... -> k -> 1, with k = p.NeuronsPerLayer.
// The parameters are validated before any weights are allocated.
func NewNetwork(inputFeatures int, p common.TrainingParameters) (*Network, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	ls := make([]*layers.Dense, 0, p.HiddenLayers+1)
	inputs := inputFeatures
	for i := 0; i < p.HiddenLayers; i++ {
		ls = append(ls, layers.NewDense(inputs, p.NeuronsPerLayer, false))
		inputs = p.NeuronsPerLayer
	}
	ls = append(ls, layers.NewDense(inputs, 1, true))

	return &Network{layers: ls}, nil
}

// Layers exposes the layer stack
func (n *Network) Layers() []*layers.Dense {
	return n.layers
}

// Forward computes the prediction column vector for a batch of samples,
// one value in (0,1) per row
func (n *Network) Forward(x *mat.Dense) *mat.Dense {
	out := x
	for _, l := range n.layers {
		out = l.Forward(out)
	}
	return out
}

// EffectiveRate returns the staged learning rate for the given epoch:
// the full rate for the first tenth of the run, half of it until the midpoint
// and a tenth of it afterwards
func EffectiveRate(epoch, epochs int, learnRate float64) float64 {
	fraction := float64(epoch) / float64(epochs)
	switch {
	case fraction < common.WarmupFraction:
		return learnRate
	case fraction < common.DecayFraction:
		return learnRate * common.MidRateFactor
	default:
		return learnRate * common.LateRateFactor
	}
}

// Train runs p.Epochs full-batch iterations over the dataset, reporting the
// accuracy of every epoch through onEpoch.
//
// The error at the output is y_pred - y_true, the closed form of the sigmoid
// derivative combined with the gradient of the implicit cross-entropy loss.
// The loss itself is never computed.
func (n *Network) Train(data common.Dataset, p common.TrainingParameters, onEpoch func(epoch int, accuracy float64)) error {
	nsamples := data.NumSamples()
	if nsamples == 0 {
		return errors.New("training on an empty dataset")
	}

	accuracies := make([]float64, 0, p.Epochs)
	start := time.Now()

	for epoch := 0; epoch < p.Epochs; epoch++ {
		out := n.Forward(data.X)

		delta := mat.NewDense(nsamples, 1, nil)
		for i := 0; i < nsamples; i++ {
			delta.Set(i, 0, out.At(i, 0)-data.Y[i])
		}

		rate := EffectiveRate(epoch, p.Epochs, p.LearningRate)
		err := delta
		for i := len(n.layers) - 1; i >= 0; i-- {
			err = n.layers[i].Backward(err, rate)
		}

		accuracy := utils.ComputeAccuracy(utils.Classify(out), data.Y)
		accuracies = append(accuracies, accuracy)
		if onEpoch != nil {
			onEpoch(epoch, accuracy)
		}
		if (epoch+1)%logEvery == 0 {
			log.Lvlf2("epoch %d/%d: accuracy %.4f, rate %.4f", epoch+1, p.Epochs, accuracy, rate)
		}
	}

	logRunSummary(accuracies, time.Since(start))
	return nil
}

func logRunSummary(accuracies []float64, elapsed time.Duration) {
	if len(accuracies) == 0 {
		return
	}
	mean, _ := stats.Mean(accuracies)
	best, _ := stats.Max(accuracies)
	log.Lvlf1("run finished: %d epochs in %s, final accuracy %.4f, best %.4f, mean %.4f",
		len(accuracies), elapsed, accuracies[len(accuracies)-1], best, mean)
}
