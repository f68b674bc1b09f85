package attack

import (
	"gonum.org/v1/gonum/mat"

	"advmax/feature"
	"advmax/nn"
)

// fgsm is FGSM^k: k continuous sign-steps on the loss gradient with
// clipping into [0,1], a single rounding step, the feasibility OR
// merge, and a per-row fallback to the natural input whenever the
// adversarial loss came out below the natural loss. dfgsm_k rounds at
// the fixed Alpha threshold; rfgsm_k draws one random threshold per
// component.
func fgsm(x *mat.Dense, y []int, model nn.Model, loss nn.Loss, cfg Config, randomRound bool) (*mat.Dense, error) {
	natural, err := perRowLoss(model, loss, x, y, cfg.Stats)
	if err != nil {
		return nil, err
	}

	next := feature.Init(x, cfg.Sample, cfg.Rand)

	// relaxed multi-step: components may go fractional here
	for t := 0; t < cfg.Iterations; t++ {
		_, grad, err := lossGradient(model, loss, next, y, cfg.Stats)
		if err != nil {
			return nil, err
		}
		next = feature.Clip(feature.SignStep(next, grad, cfg.Epsilon))
		if cfg.Stats != nil {
			cfg.Stats.Iterations++
		}
	}

	if randomRound {
		next = feature.RoundRand(next, cfg.Rand)
	} else {
		next = feature.Round(next, cfg.Alpha)
	}
	next = feature.Or(next, x)

	adversarial, err := perRowLoss(model, loss, next, y, cfg.Stats)
	if err != nil {
		return nil, err
	}
	// never return a row that scores worse than doing nothing
	for i, l := range adversarial {
		if l < natural[i] {
			next.SetRow(i, mat.Row(nil, i, x))
			adversarial[i] = natural[i]
		}
	}

	reportLossDiff(cfg, natural, adversarial)
	return next, nil
}
