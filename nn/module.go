// Package nn holds the differentiable-classifier contracts the attack
// package searches against, plus two concrete implementations with
// analytic backprop. Batches are *mat.Dense with one sample per row.
package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Model maps a batch of feature vectors to a batch of output scores and
// can backpropagate a scalar derived from its output to its input.
type Model interface {
	Forward(x *mat.Dense) (*mat.Dense, error)
	// Backward takes the gradient of some scalar with respect to the
	// output of the last Forward call and returns the gradient of that
	// scalar with respect to the input of that call.
	Backward(gradOut *mat.Dense) (*mat.Dense, error)
}

// Loss scores model output against labels, one value per batch row.
type Loss interface {
	PerRow(out *mat.Dense, y []int) ([]float64, error)
	// Backward returns the gradient of the MEAN per-row loss with
	// respect to out.
	Backward(out *mat.Dense, y []int) (*mat.Dense, error)
}
