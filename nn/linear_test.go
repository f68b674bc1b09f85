package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func TestLinearForward(t *testing.T) {
	l := &Linear{
		W: mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
		B: []float64{0.5, -0.5},
	}
	x := mat.NewDense(1, 3, []float64{1, 1, 1})

	out, err := l.Forward(x)
	require.NoError(t, err)

	assert.InDelta(t, 6.5, out.At(0, 0), 1e-12)
	assert.InDelta(t, 14.5, out.At(0, 1), 1e-12)
}

func TestLinearForwardShapeMismatch(t *testing.T) {
	l := NewLinear(3, 2, rand.New(rand.NewSource(1)))
	_, err := l.Forward(mat.NewDense(1, 4, nil))
	require.Error(t, err)
}

func TestLinearBackward(t *testing.T) {
	l := &Linear{
		W: mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
		B: []float64{0, 0},
	}
	x := mat.NewDense(2, 3, []float64{1, 0, 1, 0, 1, 0})
	_, err := l.Forward(x)
	require.NoError(t, err)

	gradOut := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	gradIn, err := l.Backward(gradOut)
	require.NoError(t, err)

	// dL/dx = gradOut·W: row0 picks W row0, row1 picks W row1
	assert.True(t, mat.EqualApprox(gradIn,
		mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}), 1e-12))

	// dL/dW = gradOutᵀ·x
	assert.True(t, mat.EqualApprox(l.gradW,
		mat.NewDense(2, 3, []float64{1, 0, 1, 0, 1, 0}), 1e-12))
	assert.Equal(t, []float64{1, 1}, l.gradB)
}

func TestLinearBackwardWithoutForward(t *testing.T) {
	l := NewLinear(3, 2, rand.New(rand.NewSource(1)))
	_, err := l.Backward(mat.NewDense(1, 2, nil))
	require.Error(t, err)
}

func TestLinearUpdate(t *testing.T) {
	l := &Linear{
		W: mat.NewDense(1, 2, []float64{1, 1}),
		B: []float64{1},
	}
	x := mat.NewDense(1, 2, []float64{2, 3})
	_, err := l.Forward(x)
	require.NoError(t, err)
	_, err = l.Backward(mat.NewDense(1, 1, []float64{1}))
	require.NoError(t, err)

	require.NoError(t, l.Update(0.1))
	assert.True(t, mat.EqualApprox(l.W, mat.NewDense(1, 2, []float64{0.8, 0.7}), 1e-12))
	assert.InDelta(t, 0.9, l.B[0], 1e-12)
}

// Central-difference check that the analytic input gradient of mean
// cross-entropy through the MLP matches the numeric one.
func TestMLPGradientNumeric(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	model := NewMLP(5, 4, 3, rnd)
	loss := CrossEntropy{}

	x := mat.NewDense(2, 5, nil)
	for i := 0; i < 2; i++ {
		for j := 0; j < 5; j++ {
			x.Set(i, j, rnd.Float64())
		}
	}
	y := []int{0, 2}

	meanLoss := func(x *mat.Dense) float64 {
		out, err := model.Forward(x)
		require.NoError(t, err)
		rows, err := loss.PerRow(out, y)
		require.NoError(t, err)
		sum := 0.0
		for _, l := range rows {
			sum += l
		}
		return sum / float64(len(rows))
	}

	out, err := model.Forward(x)
	require.NoError(t, err)
	gradOut, err := loss.Backward(out, y)
	require.NoError(t, err)
	grad, err := model.Backward(gradOut)
	require.NoError(t, err)

	const h = 1e-6
	for i := 0; i < 2; i++ {
		for j := 0; j < 5; j++ {
			orig := x.At(i, j)
			x.Set(i, j, orig+h)
			plus := meanLoss(x)
			x.Set(i, j, orig-h)
			minus := meanLoss(x)
			x.Set(i, j, orig)

			numeric := (plus - minus) / (2 * h)
			assert.InDelta(t, numeric, grad.At(i, j), 1e-5,
				"gradient mismatch at (%d,%d)", i, j)
		}
	}
}
