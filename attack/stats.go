package attack

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// Verbose controls whether PrintStats produces output.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where search statistics are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// Stats records what a single Maximize call did.
type Stats struct {
	Method          Method
	Iterations      int // iterations actually run
	Forwards        int // model forward passes
	Gradients       int // input-gradient queries
	NaturalLoss     float64
	AdversarialLoss float64
	Elapsed         time.Duration
}

// PrintStats prints search statistics. Respects the Verbose flag -
// does nothing if Verbose is false.
func PrintStats(st *Stats) {
	if !Verbose || st == nil {
		return
	}
	fmt.Fprintf(Output, "\n=== Inner Maximizer Statistics ===\n")
	fmt.Fprintf(Output, "Method:           %s\n", st.Method)
	fmt.Fprintf(Output, "Iterations:       %d\n", st.Iterations)
	fmt.Fprintf(Output, "Forward passes:   %d\n", st.Forwards)
	fmt.Fprintf(Output, "Gradient queries: %d\n", st.Gradients)
	fmt.Fprintf(Output, "Natural loss:     %.4f\n", st.NaturalLoss)
	fmt.Fprintf(Output, "Adversarial loss: %.4f\n", st.AdversarialLoss)
	fmt.Fprintf(Output, "Elapsed:          %v\n", st.Elapsed)
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Sum(v) / float64(len(v))
}

// reportLossDiff logs natural vs adversarial mean loss and records
// both in the Stats, when either sink is configured.
func reportLossDiff(cfg Config, natural, adversarial []float64) {
	nat, adv := mean(natural), mean(adversarial)
	if cfg.Stats != nil {
		cfg.Stats.NaturalLoss = nat
		cfg.Stats.AdversarialLoss = adv
	}
	cfg.Logger.Info("inner maximizer finished",
		zap.String("method", string(cfg.Method)),
		zap.Float64("natural_loss", nat),
		zap.Float64("adversarial_loss", adv),
		zap.Float64("delta", adv-nat),
	)
}
