package attack

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"advmax/feature"
	"advmax/nn"
)

// bestSeen tracks, per batch row, the highest loss observed so far and
// the candidate that produced it. It is initialized from the natural
// input and never reset during a search.
type bestSeen struct {
	loss []float64
	x    *mat.Dense
}

func newBestSeen(natural []float64, x *mat.Dense) *bestSeen {
	return &bestSeen{
		loss: append([]float64(nil), natural...),
		x:    mat.DenseCopyOf(x),
	}
}

// update replaces rows whose new loss is strictly higher.
func (b *bestSeen) update(loss []float64, x *mat.Dense) {
	for i, l := range loss {
		if l > b.loss[i] {
			b.loss[i] = l
			b.x.SetRow(i, mat.Row(nil, i, x))
		}
	}
}

// bga is multi-step bit gradient ascent: every iteration toggles the
// SET of components whose score sqrt(m)*(1-2x)*g clears the row's
// gradient L2 norm, then projects back into the feasible set. The
// best-seen candidate across all iterations is returned, not the last.
func bga(x *mat.Dense, y []int, model nn.Model, loss nn.Loss, cfg Config) (*mat.Dense, error) {
	natural, err := perRowLoss(model, loss, x, y, cfg.Stats)
	if err != nil {
		return nil, err
	}
	best := newBestSeen(natural, x)

	n, m := x.Dims()
	sqrtM := math.Sqrt(float64(m))

	var next, grad *mat.Dense
	for t := 0; t < cfg.Iterations; t++ {
		if t == 0 {
			next = feature.Init(x, cfg.Sample, cfg.Rand)
		} else {
			// gradient taken at the previous candidate
			toggle := mat.NewDense(n, m, nil)
			row := make([]float64, m)
			for i := 0; i < n; i++ {
				mat.Row(row, i, grad)
				norm := floats.Norm(row, 2)
				for j := 0; j < m; j++ {
					if sqrtM*(1-2*next.At(i, j))*row[j] >= norm {
						toggle.Set(i, j, 1)
					}
				}
			}
			next = feature.Or(feature.Xor(toggle, next), x)
		}

		var rows []float64
		rows, grad, err = lossGradient(model, loss, next, y, cfg.Stats)
		if err != nil {
			return nil, err
		}
		best.update(rows, next)
		if cfg.Stats != nil {
			cfg.Stats.Iterations++
		}
	}

	reportLossDiff(cfg, natural, best.loss)
	return best.x, nil
}

// argmaxRow returns the index of the row's highest score; the lowest
// index wins ties.
func argmaxRow(score []float64) int {
	maxIdx := 0
	for j := 1; j < len(score); j++ {
		if score[j] > score[maxIdx] {
			maxIdx = j
		}
	}
	return maxIdx
}

// bca is multi-step bit coordinate ascent: like bga but each iteration
// toggles only the single highest-scoring component per row, scored by
// (1-2x)*g.
func bca(x *mat.Dense, y []int, model nn.Model, loss nn.Loss, cfg Config) (*mat.Dense, error) {
	natural, err := perRowLoss(model, loss, x, y, cfg.Stats)
	if err != nil {
		return nil, err
	}
	best := newBestSeen(natural, x)

	n, m := x.Dims()
	var next, grad *mat.Dense
	score := make([]float64, m)
	for t := 0; t < cfg.Iterations; t++ {
		if t == 0 {
			next = feature.Init(x, cfg.Sample, cfg.Rand)
		} else {
			toggle := mat.NewDense(n, m, nil)
			for i := 0; i < n; i++ {
				for j := 0; j < m; j++ {
					score[j] = (1 - 2*next.At(i, j)) * grad.At(i, j)
				}
				toggle.Set(i, argmaxRow(score), 1)
			}
			next = feature.Or(feature.Xor(toggle, next), x)
		}

		var rows []float64
		rows, grad, err = lossGradient(model, loss, next, y, cfg.Stats)
		if err != nil {
			return nil, err
		}
		best.update(rows, next)
		if cfg.Stats != nil {
			cfg.Stats.Iterations++
		}
	}

	reportLossDiff(cfg, natural, best.loss)
	return best.x, nil
}

// grosse is coordinate ascent on the gradient of output channel 0
// rather than the loss. Scoring masks out active components with
// (1-x)*g so an already-set feature is never selected; one component
// per row is turned on each iteration.
func grosse(x *mat.Dense, y []int, model nn.Model, loss nn.Loss, cfg Config) (*mat.Dense, error) {
	natural, err := perRowLoss(model, loss, x, y, cfg.Stats)
	if err != nil {
		return nil, err
	}
	best := newBestSeen(natural, x)

	n, m := x.Dims()
	var next, grad *mat.Dense
	score := make([]float64, m)
	for t := 0; t < cfg.Iterations; t++ {
		if t == 0 {
			next = feature.Init(x, cfg.Sample, cfg.Rand)
		} else {
			toggle := mat.NewDense(n, m, nil)
			for i := 0; i < n; i++ {
				for j := 0; j < m; j++ {
					score[j] = (1 - next.At(i, j)) * grad.At(i, j)
				}
				toggle.Set(i, argmaxRow(score), 1)
			}
			next = feature.Or(feature.Xor(toggle, next), x)
		}

		var rows []float64
		rows, grad, err = outputChannelGradient(model, loss, next, y, 0, cfg.Stats)
		if err != nil {
			return nil, err
		}
		best.update(rows, next)
		if cfg.Stats != nil {
			cfg.Stats.Iterations++
		}
	}

	reportLossDiff(cfg, natural, best.loss)
	return best.x, nil
}
