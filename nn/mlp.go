package nn

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// MLP is a two-layer perceptron: Linear → ReLU → Linear.
type MLP struct {
	Hidden *Linear
	Output *Linear

	preAct *mat.Dense // hidden pre-activation, cached for Backward
}

// NewMLP builds an inDim→hiddenDim→outDim network.
func NewMLP(inDim, hiddenDim, outDim int, rnd *rand.Rand) *MLP {
	return &MLP{
		Hidden: NewLinear(inDim, hiddenDim, rnd),
		Output: NewLinear(hiddenDim, outDim, rnd),
	}
}

func (m *MLP) Forward(x *mat.Dense) (*mat.Dense, error) {
	h, err := m.Hidden.Forward(x)
	if err != nil {
		return nil, err
	}
	m.preAct = h
	r, c := h.Dims()
	a := mat.NewDense(r, c, nil)
	a.Apply(func(_, _ int, v float64) float64 {
		if v > 0 {
			return v
		}
		return 0
	}, h)
	return m.Output.Forward(a)
}

func (m *MLP) Backward(gradOut *mat.Dense) (*mat.Dense, error) {
	if m.preAct == nil {
		return nil, fmt.Errorf("mlp: no cached activation for backward pass")
	}
	gradA, err := m.Output.Backward(gradOut)
	if err != nil {
		return nil, err
	}
	// gate through ReLU
	r, c := gradA.Dims()
	gradH := mat.NewDense(r, c, nil)
	gradH.Apply(func(i, j int, v float64) float64 {
		if m.preAct.At(i, j) > 0 {
			return v
		}
		return 0
	}, gradA)
	return m.Hidden.Backward(gradH)
}

// Update steps both layers with the gradients from the last Backward.
func (m *MLP) Update(lr float64) error {
	if err := m.Output.Update(lr); err != nil {
		return err
	}
	return m.Hidden.Update(lr)
}
