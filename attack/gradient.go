package attack

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"advmax/nn"
)

// perRowLoss runs a forward pass and returns the per-row loss at x.
func perRowLoss(model nn.Model, loss nn.Loss, x *mat.Dense, y []int, st *Stats) ([]float64, error) {
	out, err := model.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("forward pass: %w", err)
	}
	rows, err := loss.PerRow(out, y)
	if err != nil {
		return nil, fmt.Errorf("loss: %w", err)
	}
	if st != nil {
		st.Forwards++
	}
	return rows, nil
}

// lossGradient is the gradient query shared by the search strategies:
// per-row loss at x and the gradient of the mean loss with respect to
// x. It must be re-invoked whenever the candidate changes.
func lossGradient(model nn.Model, loss nn.Loss, x *mat.Dense, y []int, st *Stats) ([]float64, *mat.Dense, error) {
	out, err := model.Forward(x)
	if err != nil {
		return nil, nil, fmt.Errorf("forward pass: %w", err)
	}
	rows, err := loss.PerRow(out, y)
	if err != nil {
		return nil, nil, fmt.Errorf("loss: %w", err)
	}
	gradOut, err := loss.Backward(out, y)
	if err != nil {
		return nil, nil, fmt.Errorf("loss gradient: %w", err)
	}
	grad, err := model.Backward(gradOut)
	if err != nil {
		return nil, nil, fmt.Errorf("input gradient: %w", err)
	}
	if st != nil {
		st.Forwards++
		st.Gradients++
	}
	return rows, grad, nil
}

// outputChannelGradient backpropagates the mean of a single designated
// output channel instead of the loss. The per-row loss at x is still
// returned for best-seen bookkeeping.
func outputChannelGradient(model nn.Model, loss nn.Loss, x *mat.Dense, y []int, channel int, st *Stats) ([]float64, *mat.Dense, error) {
	out, err := model.Forward(x)
	if err != nil {
		return nil, nil, fmt.Errorf("forward pass: %w", err)
	}
	rows, err := loss.PerRow(out, y)
	if err != nil {
		return nil, nil, fmt.Errorf("loss: %w", err)
	}
	n, c := out.Dims()
	if channel < 0 || channel >= c {
		return nil, nil, fmt.Errorf("output channel %d out of range [0,%d)", channel, c)
	}
	gradOut := mat.NewDense(n, c, nil)
	for i := 0; i < n; i++ {
		gradOut.Set(i, channel, 1/float64(n))
	}
	grad, err := model.Backward(gradOut)
	if err != nil {
		return nil, nil, fmt.Errorf("input gradient: %w", err)
	}
	if st != nil {
		st.Forwards++
		st.Gradients++
	}
	return rows, grad, nil
}
