// Package attack implements inner maximizers for adversarial training
// over binary feature vectors: feasibility-constrained searches that
// mutate a batch of samples to maximize classifier loss. Adversarial
// candidates may only ADD features present in the original sample,
// never remove them, and every returned batch is binary-valued.
package attack

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"advmax/nn"
)

// Method identifies one of the inner-maximizer search strategies.
type Method string

const (
	// DFGSM is FGSM^k with deterministic rounding.
	DFGSM Method = "dfgsm_k"
	// RFGSM is FGSM^k with randomized rounding.
	RFGSM Method = "rfgsm_k"
	// BGA is multi-step bit gradient ascent.
	BGA Method = "bga_k"
	// BCA is multi-step bit coordinate ascent.
	BCA Method = "bca_k"
	// Grosse is coordinate ascent on the gradient of one output channel.
	Grosse Method = "grosse"
	// GRAMS is greedy search with an adaptive perturbation width.
	GRAMS Method = "grams"
	// Natural returns the input unmodified.
	Natural Method = "natural"
)

// Methods lists every valid method identifier.
func Methods() []Method {
	return []Method{DFGSM, RFGSM, BGA, BCA, Grosse, GRAMS, Natural}
}

const (
	defaultEpsilon    = 0.02
	defaultAlpha      = 0.5
	defaultGramsWidth = 8
	defaultGramsSteps = 1000
	maxGramsWidth     = 1024
)

// Config carries the knobs of a single Maximize call.
type Config struct {
	Method     Method
	Iterations int     // step count k; ignored by grams and natural
	Epsilon    float64 // continuous step size for dfgsm_k/rfgsm_k (default 0.02)
	Alpha      float64 // deterministic rounding threshold for dfgsm_k (default 0.5)
	Sample     bool    // start from a random feasible point instead of x

	GramsWidth int // initial components flipped per grams step (default 8)
	GramsSteps int // grams step budget (default 1000)

	Rand   *rand.Rand  // randomness source; seeded from the clock when nil
	Logger *zap.Logger // loss-diff reporting; Nop when nil
	Stats  *Stats      // filled during the search when non-nil
}

func (c Config) withDefaults() Config {
	if c.Epsilon == 0 {
		c.Epsilon = defaultEpsilon
	}
	if c.Alpha == 0 {
		c.Alpha = defaultAlpha
	}
	if c.GramsWidth == 0 {
		c.GramsWidth = defaultGramsWidth
	}
	if c.GramsSteps == 0 {
		c.GramsSteps = defaultGramsSteps
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Maximize dispatches to the configured search strategy and returns a
// batch of binary adversarial feature vectors with the same shape as x.
// Every returned row contains all originally active features of the
// corresponding input row. An unknown method is a configuration error
// reported before any model work happens.
func Maximize(x *mat.Dense, y []int, model nn.Model, loss nn.Loss, cfg Config) (*mat.Dense, error) {
	switch cfg.Method {
	case DFGSM, RFGSM, BGA, BCA, Grosse, GRAMS, Natural:
	default:
		return nil, fmt.Errorf("attack: unknown inner maximizer method %q", cfg.Method)
	}
	cfg = cfg.withDefaults()
	if cfg.Stats != nil {
		cfg.Stats.Method = cfg.Method
		start := time.Now()
		defer func() { cfg.Stats.Elapsed = time.Since(start) }()
	}

	switch cfg.Method {
	case DFGSM:
		return fgsm(x, y, model, loss, cfg, false)
	case RFGSM:
		return fgsm(x, y, model, loss, cfg, true)
	case BGA:
		return bga(x, y, model, loss, cfg)
	case BCA:
		return bca(x, y, model, loss, cfg)
	case Grosse:
		return grosse(x, y, model, loss, cfg)
	case GRAMS:
		return grams(x, y, model, loss, cfg)
	default: // Natural
		return mat.DenseCopyOf(x), nil
	}
}
