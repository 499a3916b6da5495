package network

import (
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// HiddenConfig controls free-hidden-unit augmentation.
type HiddenConfig struct {
	Count      int
	NamePrefix string
}

// DefaultHiddenConfig returns the standard three extra hidden units.
func DefaultHiddenConfig() *HiddenConfig {
	return &HiddenConfig{Count: 3, NamePrefix: "head"}
}

// AddInputUnits appends the dataset features the rule set never mentions
// to the first input layer, with all-zero weight rows so they start with
// no effect. A rule set that is only approximately correct may not name
// every input needed to learn the concept; training decides whether the
// new inputs matter.
func (p *Params) AddInputUnits(featureNames []string) error {
	covered := make(map[string]bool)
	for _, layer := range p.Layers {
		for _, unit := range layer {
			covered[unit] = true
		}
	}

	var uncovered []string
	for _, name := range featureNames {
		if !covered[name] {
			uncovered = append(uncovered, name)
		}
	}
	if len(uncovered) == 0 {
		return nil
	}

	w := p.Weights[0]
	_, cols := w.Dims()
	var grown mat.Dense
	grown.Stack(w, mat.NewDense(len(uncovered), cols, nil))
	p.Weights[0] = &grown
	p.Layers[0] = append(p.Layers[0], uncovered...)

	return p.Validate()
}

// AddHiddenUnits inserts rule-free hidden units between the first two
// layers: zero columns widen the first weight matrix, zero rows widen the
// second, and the first bias vector grows by zero entries. The fresh
// names are appended to the first output layer and inserted into the
// second input layer right after its carried-forward block, keeping the
// second weight matrix's rows aligned with activations-then-raw-features
// layer inputs. These units give training capacity for logic the initial
// rules cannot express.
func (p *Params) AddHiddenUnits(cfg *HiddenConfig) error {
	if cfg == nil {
		cfg = DefaultHiddenConfig()
	}
	if cfg.Count <= 0 {
		return nil
	}
	if len(p.Weights) < 2 {
		return errors.Wrap(ErrShapeMismatch,
			"hidden unit augmentation needs at least two layers")
	}

	names := make([]string, cfg.Count)
	for i := range names {
		names[i] = cfg.NamePrefix + strconv.Itoa(i+1)
	}

	// The second input layer leads with every first-output unit, so the
	// carried-forward block ends where the output layer does.
	carried := len(p.Layers[1])

	w0 := p.Weights[0]
	rows0, _ := w0.Dims()
	var wide mat.Dense
	wide.Augment(w0, mat.NewDense(rows0, cfg.Count, nil))
	p.Weights[0] = &wide

	w1 := p.Weights[1]
	rows1, cols1 := w1.Dims()
	zero := mat.NewDense(cfg.Count, cols1, nil)
	var tall mat.Dense
	if carried == rows1 {
		tall.Stack(w1, zero)
	} else {
		var top mat.Dense
		top.Stack(w1.Slice(0, carried, 0, cols1), zero)
		tall.Stack(&top, w1.Slice(carried, rows1, 0, cols1))
	}
	p.Weights[1] = &tall

	b0 := p.Biases[0]
	grown := mat.NewVecDense(b0.Len()+cfg.Count, nil)
	for i := 0; i < b0.Len(); i++ {
		grown.SetVec(i, b0.AtVec(i))
	}
	p.Biases[0] = grown

	p.Layers[1] = append(p.Layers[1], names...)
	inserted := make([]string, 0, len(p.Layers[2])+cfg.Count)
	inserted = append(inserted, p.Layers[2][:carried]...)
	inserted = append(inserted, names...)
	inserted = append(inserted, p.Layers[2][carried:]...)
	p.Layers[2] = inserted

	return p.Validate()
}
