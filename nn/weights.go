package nn

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// WeightData is a serializable weight matrix.
type WeightData struct {
	Name string    `json:"name"`
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// LayerWeight holds the weight and bias of one layer.
type LayerWeight struct {
	Weight *WeightData `json:"weight,omitempty"`
	Bias   *WeightData `json:"bias,omitempty"`
}

// ModelWeights holds every layer of a model by name.
type ModelWeights struct {
	Version string                 `json:"version"`
	Layers  map[string]LayerWeight `json:"layers"`
}

// SaveWeights writes model weights to a JSON file.
func SaveWeights(path string, weights *ModelWeights) error {
	data, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadWeights reads model weights from a JSON file.
func LoadWeights(path string) (*ModelWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	return &weights, nil
}

// LinearWeights snapshots a Linear layer into serializable form.
func LinearWeights(name string, l *Linear) LayerWeight {
	r, c := l.W.Dims()
	w := &WeightData{
		Name: name + ".weight",
		Rows: r,
		Cols: c,
		Data: append([]float64(nil), l.W.RawMatrix().Data...),
	}
	b := &WeightData{
		Name: name + ".bias",
		Rows: 1,
		Cols: len(l.B),
		Data: append([]float64(nil), l.B...),
	}
	return LayerWeight{Weight: w, Bias: b}
}

// ApplyLinearWeights loads a snapshot back into a Linear layer.
func ApplyLinearWeights(l *Linear, lw LayerWeight) error {
	if lw.Weight == nil {
		return fmt.Errorf("layer weight missing weight matrix")
	}
	r, c := l.W.Dims()
	if lw.Weight.Rows != r || lw.Weight.Cols != c {
		return fmt.Errorf("weight shape %dx%d does not match layer %dx%d",
			lw.Weight.Rows, lw.Weight.Cols, r, c)
	}
	l.W = mat.NewDense(r, c, append([]float64(nil), lw.Weight.Data...))
	if lw.Bias != nil {
		if len(lw.Bias.Data) != len(l.B) {
			return fmt.Errorf("bias length %d does not match layer %d", len(lw.Bias.Data), len(l.B))
		}
		copy(l.B, lw.Bias.Data)
	}
	return nil
}
