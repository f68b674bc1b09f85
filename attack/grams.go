package attack

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"advmax/nn"
)

// topkRow returns the indices of the k highest scores; equal scores
// are ordered by ascending index.
func topkRow(score []float64, k int) []int {
	idx := make([]int, len(score))
	for j := range idx {
		idx[j] = j
	}
	sort.Slice(idx, func(a, b int) bool {
		if score[idx[a]] != score[idx[b]] {
			return score[idx[a]] > score[idx[b]]
		}
		return idx[a] < idx[b]
	})
	if k > len(idx) {
		k = len(idx)
	}
	return idx[:k]
}

// grams is greedy search with an adaptive perturbation width. Each step
// scores the positive gradient over currently-inactive components,
// flips the top width components of a persistent working point, and
// accepts improved rows into the best-seen batch. The width doubles on
// any improvement and halves otherwise; the search stops after the
// step budget or once the width collapses below a single component.
// The working point keeps its mutations even when a step is rejected.
func grams(x *mat.Dense, y []int, model nn.Model, loss nn.Loss, cfg Config) (*mat.Dense, error) {
	n, m := x.Dims()

	next := mat.DenseCopyOf(x)
	best := mat.DenseCopyOf(x)
	bestLoss, err := perRowLoss(model, loss, x, y, cfg.Stats)
	if err != nil {
		return nil, err
	}
	natural := append([]float64(nil), bestLoss...)

	width := float64(cfg.GramsWidth)
	score := make([]float64, m)
	target := make([]float64, m)
	for step := 0; step < cfg.GramsSteps; step++ {
		_, grad, err := lossGradient(model, loss, next, y, cfg.Stats)
		if err != nil {
			return nil, err
		}

		k := int(width)
		if k < 1 {
			k = 1
		}
		if k > maxGramsWidth {
			k = maxGramsWidth
		}
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				xv := next.At(i, j)
				g := (1 - xv) * grad.At(i, j) // active components score zero
				sign := 0.0
				if g > 0 {
					sign = 1
				}
				score[j] = (sign - xv) * g
				// active components target 1, so a tied selection
				// never unsets an original feature
				target[j] = sign + xv
			}
			for _, j := range topkRow(score, k) {
				next.Set(i, j, target[j])
			}
		}

		cur, err := perRowLoss(model, loss, next, y, cfg.Stats)
		if err != nil {
			return nil, err
		}
		improved := false
		for i, l := range cur {
			if l > bestLoss[i] {
				bestLoss[i] = l
				best.SetRow(i, mat.Row(nil, i, next))
				improved = true
			}
		}
		if improved {
			width *= 2
		} else {
			width *= 0.5
		}
		if cfg.Stats != nil {
			cfg.Stats.Iterations++
		}
		if width < 0.5 {
			break
		}
	}

	reportLossDiff(cfg, natural, bestLoss)
	return best, nil
}
