package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CrossEntropy is softmax cross-entropy over class-index labels.
type CrossEntropy struct{}

// softmaxRow computes a numerically stable softmax of one output row.
func softmaxRow(out *mat.Dense, i int) []float64 {
	_, c := out.Dims()
	maxLogit := out.At(i, 0)
	for j := 1; j < c; j++ {
		if v := out.At(i, j); v > maxLogit {
			maxLogit = v
		}
	}
	exps := make([]float64, c)
	sum := 0.0
	for j := 0; j < c; j++ {
		e := math.Exp(out.At(i, j) - maxLogit)
		exps[j] = e
		sum += e
	}
	for j := range exps {
		exps[j] /= sum
	}
	return exps
}

func checkLabels(out *mat.Dense, y []int) error {
	n, c := out.Dims()
	if len(y) != n {
		return fmt.Errorf("cross entropy: %d labels for %d rows", len(y), n)
	}
	for i, label := range y {
		if label < 0 || label >= c {
			return fmt.Errorf("cross entropy: label %d at row %d out of range [0,%d)", label, i, c)
		}
	}
	return nil
}

// PerRow returns -log softmax(out)[y] for every row.
func (CrossEntropy) PerRow(out *mat.Dense, y []int) ([]float64, error) {
	if err := checkLabels(out, y); err != nil {
		return nil, err
	}
	n, _ := out.Dims()
	losses := make([]float64, n)
	for i := 0; i < n; i++ {
		p := softmaxRow(out, i)[y[i]]
		losses[i] = -math.Log(p)
	}
	return losses, nil
}

// Backward returns the gradient of the mean loss with respect to out:
// (softmax − onehot)/n.
func (CrossEntropy) Backward(out *mat.Dense, y []int) (*mat.Dense, error) {
	if err := checkLabels(out, y); err != nil {
		return nil, err
	}
	n, c := out.Dims()
	grad := mat.NewDense(n, c, nil)
	for i := 0; i < n; i++ {
		sm := softmaxRow(out, i)
		for j := 0; j < c; j++ {
			g := sm[j]
			if j == y[i] {
				g -= 1
			}
			grad.Set(i, j, g/float64(n))
		}
	}
	return grad, nil
}
