package layers

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hydroml/potanet/utils"
)

// a fully connected layer
type Dense struct {
	weights   *mat.Dense // inputs x outputs
	bias      *mat.Dense // 1 x outputs
	lastInput *mat.Dense // nsamples x inputs
	u         *mat.Dense // pre-activation, nsamples x outputs

	activation  func(float64) float64
	dActivation func(float64) float64
}

// NewDense builds a layer mapping inputs to outputs. Hidden layers use Relu;
// the output layer uses the sigmoid with a constant derivative, since the
// error it receives is already the combined sigmoid/cross-entropy gradient.
// Weights are sampled from a standard normal scaled by 0.1, biases start at zero.
func NewDense(inputs, outputs int, output bool) *Dense {
	d := &Dense{
		weights: mat.NewDense(inputs, outputs, utils.FillNorm(inputs*outputs, 0, 0.1)),
		bias:    mat.NewDense(1, outputs, nil),
	}
	if output {
		d.activation = utils.Sigmoid
		d.dActivation = utils.One
	} else {
		d.activation = utils.Relu
		d.dActivation = utils.ReluD
	}
	return d
}

// Dims returns the (inputs, outputs) shape of the weight matrix
func (d *Dense) Dims() (int, int) {
	return d.weights.Dims()
}

func (d *Dense) Weights() *mat.Dense {
	return d.weights
}

func (d *Dense) Bias() *mat.Dense {
	return d.bias
}

// SetWeights replaces the layer weights and bias, used to resume from a known state
func (d *Dense) SetWeights(weights, bias *mat.Dense) {
	d.weights = weights
	d.bias = bias
}

// Forward computes activation(input*W + b), remembering the input and the
// pre-activation for the backward pass
func (d *Dense) Forward(input *mat.Dense) *mat.Dense {
	nsamples, _ := input.Dims()
	_, outputs := d.weights.Dims()

	d.lastInput = mat.DenseCopyOf(input)
	d.u = mat.NewDense(nsamples, outputs, nil)
	d.u.Mul(input, d.weights)
	for i := 0; i < nsamples; i++ {
		for j := 0; j < outputs; j++ {
			d.u.Set(i, j, d.u.At(i, j)+d.bias.At(0, j))
		}
	}

	out := mat.NewDense(nsamples, outputs, nil)
	out.Apply(utils.ToApply(d.activation), d.u)
	return out
}

// Backward masks the incoming error by the activation derivative, computes the
// batch-averaged gradients, propagates the error through the pre-update
// weights and then applies the update with the given rate.
// Returns the error for the previous layer.
func (d *Dense) Backward(err *mat.Dense, learnRate float64) *mat.Dense {
	nsamples, _ := err.Dims()
	inputs, outputs := d.weights.Dims()

	masked := mat.NewDense(nsamples, outputs, nil)
	masked.Apply(utils.ToApply(d.dActivation), d.u)
	masked.MulElem(masked, err)

	dW := mat.NewDense(inputs, outputs, nil)
	dW.Mul(d.lastInput.T(), masked)
	dW.Scale(1/float64(nsamples), dW)

	db := utils.ColSums(masked)
	db.Scale(1/float64(nsamples), db)

	next := mat.NewDense(nsamples, inputs, nil)
	next.Mul(masked, d.weights.T())

	dW.Scale(learnRate, dW)
	d.weights.Sub(d.weights, dW)
	db.Scale(learnRate, db)
	d.bias.Sub(d.bias, db)

	return next
}
