// Package network translates layered rule sets into feed-forward network
// parameters (Towell's rules-to-network mapping), augments the resulting
// structure, aligns raw data to it, and translates trained, clustered
// parameters back into symbolic rules.
package network

import (
	goerrors "errors"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrShapeMismatch reports weight/bias/layer-name dimensions that
// disagree after synthesis or augmentation.
var ErrShapeMismatch = goerrors.New("weight, bias and layer shapes disagree")

// Params holds the parameters of a synthesized network. Weights[i] maps
// the units of Layers[2i] (rows) to the units of Layers[2i+1] (columns);
// Biases[i] holds one threshold per column. The layer-name stack
// alternates input and output layers: [in0, out0, in1, out1, ...], where
// an output layer's units carry forward into the next input layer.
type Params struct {
	Weights []*mat.Dense
	Biases  []*mat.VecDense
	Layers  [][]string
}

// Validate checks that every weight matrix and bias vector matches the
// unit counts of the layer names it connects.
func (p *Params) Validate() error {
	if len(p.Layers) != 2*len(p.Weights) || len(p.Biases) != len(p.Weights) {
		return errors.Wrapf(ErrShapeMismatch,
			"%d weight matrices, %d bias vectors, %d name layers",
			len(p.Weights), len(p.Biases), len(p.Layers))
	}
	for i, w := range p.Weights {
		rows, cols := w.Dims()
		if rows != len(p.Layers[2*i]) {
			return errors.Wrapf(ErrShapeMismatch,
				"layer %d: %d weight rows for %d input units", i, rows, len(p.Layers[2*i]))
		}
		if cols != len(p.Layers[2*i+1]) {
			return errors.Wrapf(ErrShapeMismatch,
				"layer %d: %d weight columns for %d output units", i, cols, len(p.Layers[2*i+1]))
		}
		if p.Biases[i].Len() != cols {
			return errors.Wrapf(ErrShapeMismatch,
				"layer %d: %d bias entries for %d output units", i, p.Biases[i].Len(), cols)
		}
	}
	return nil
}
