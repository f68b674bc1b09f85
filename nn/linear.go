package nn

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Linear is a fully-connected layer/classifier: out = x·Wᵀ + b.
type Linear struct {
	W *mat.Dense // outDim×inDim
	B []float64  // outDim

	lastInput *mat.Dense
	gradW     *mat.Dense
	gradB     []float64
}

// randomArray draws size values uniform in ±1/sqrt(v).
func randomArray(size int, v float64, rnd *rand.Rand) []float64 {
	dist := distuv.Uniform{
		Min: -1 / math.Sqrt(v),
		Max: 1 / math.Sqrt(v),
		Src: rnd,
	}
	data := make([]float64, size)
	for i := range data {
		data[i] = dist.Rand()
	}
	return data
}

// NewLinear builds an inDim→outDim layer with uniform random weights
// and zero bias.
func NewLinear(inDim, outDim int, rnd *rand.Rand) *Linear {
	return &Linear{
		W: mat.NewDense(outDim, inDim, randomArray(outDim*inDim, float64(inDim), rnd)),
		B: make([]float64, outDim),
	}
}

// Forward computes out = x·Wᵀ + b for a batch with one sample per row.
// The input is cached for Backward.
func (l *Linear) Forward(x *mat.Dense) (*mat.Dense, error) {
	n, inDim := x.Dims()
	outDim, win := l.W.Dims()
	if inDim != win {
		return nil, fmt.Errorf("linear: input has %d features, weights expect %d", inDim, win)
	}
	l.lastInput = mat.DenseCopyOf(x)

	out := mat.NewDense(n, outDim, nil)
	out.Mul(x, l.W.T())
	for i := 0; i < n; i++ {
		for j := 0; j < outDim; j++ {
			out.Set(i, j, out.At(i, j)+l.B[j])
		}
	}
	return out, nil
}

// Backward computes the input gradient dL/dx = gradOut·W and records
// weight/bias gradients for Update.
func (l *Linear) Backward(gradOut *mat.Dense) (*mat.Dense, error) {
	if l.lastInput == nil {
		return nil, fmt.Errorf("linear: no cached input for backward pass")
	}
	n, outDim := gradOut.Dims()
	wOut, inDim := l.W.Dims()
	if outDim != wOut {
		return nil, fmt.Errorf("linear: gradient has %d outputs, weights expect %d", outDim, wOut)
	}
	in, _ := l.lastInput.Dims()
	if n != in {
		return nil, fmt.Errorf("linear: gradient batch %d does not match cached input batch %d", n, in)
	}

	// dL/dW = gradOutᵀ · x, dL/db = column sums of gradOut
	l.gradW = mat.NewDense(outDim, inDim, nil)
	l.gradW.Mul(gradOut.T(), l.lastInput)
	l.gradB = make([]float64, outDim)
	for j := 0; j < outDim; j++ {
		for i := 0; i < n; i++ {
			l.gradB[j] += gradOut.At(i, j)
		}
	}

	gradIn := mat.NewDense(n, inDim, nil)
	gradIn.Mul(gradOut, l.W)
	return gradIn, nil
}

// Update applies one SGD step from the gradients recorded by the last
// Backward call.
func (l *Linear) Update(lr float64) error {
	if l.gradW == nil {
		return fmt.Errorf("linear: no gradients to update")
	}
	var step mat.Dense
	step.Scale(-lr, l.gradW)
	l.W.Add(l.W, &step)
	for j := range l.B {
		l.B[j] -= lr * l.gradB[j]
	}
	return nil
}
