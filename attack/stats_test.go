package attack

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintStatsRespectsVerbose(t *testing.T) {
	var buf bytes.Buffer
	oldOut, oldVerbose := Output, Verbose
	defer func() { Output, Verbose = oldOut, oldVerbose }()
	Output = &buf

	st := &Stats{Method: BCA, Iterations: 5, Forwards: 6, Gradients: 5}

	Verbose = false
	PrintStats(st)
	assert.Zero(t, buf.Len())

	Verbose = true
	PrintStats(st)
	assert.Contains(t, buf.String(), "bca_k")
	assert.Contains(t, buf.String(), "Iterations:       5")
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.InDelta(t, 2.0, mean([]float64{1, 2, 3}), 1e-12)
}
