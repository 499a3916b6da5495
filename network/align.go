package network

import (
	goerrors "errors"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrUnknownFeature reports a unit name that does not appear in the
// dataset's feature-name list.
var ErrUnknownFeature = goerrors.New("unit is not a dataset feature")

// hiddenInputNoise breaks ties among structurally identical augmented
// units so their gradients diverge during training.
const hiddenInputNoise = 1e-5

// AlignData reorders raw feature columns to match the per-layer unit
// ordering of the layer-name stack. The result has one slot per weight
// layer: slot 0 holds the first input layer's columns; a later slot is
// populated only when its input layer introduces units that are not
// carried forward from the previous output layer, with small uniform
// noise added. Carried-forward units are satisfied by the previous
// layer's activations at training time and contribute nothing here.
func AlignData(x *mat.Dense, featureNames []string, layers [][]string, rng *rand.Rand) ([]*mat.Dense, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	colOf := indexOf(featureNames)
	rows, _ := x.Dims()

	aligned := make([]*mat.Dense, len(layers)/2)
	var lastOutput []string

	for pos, layer := range layers {
		if pos%2 != 0 {
			// Output layer: its units carry forward.
			lastOutput = layer
			continue
		}

		var units []string
		if pos == 0 {
			units = layer
		} else {
			carried := make(map[string]bool, len(lastOutput))
			for _, name := range lastOutput {
				carried[name] = true
			}
			for _, name := range layer {
				if !carried[name] {
					units = append(units, name)
				}
			}
			if len(units) == 0 {
				continue
			}
		}

		sel := mat.NewDense(rows, len(units), nil)
		for j, unit := range units {
			col, ok := colOf[unit]
			if !ok {
				return nil, errors.Wrapf(ErrUnknownFeature, "unit %q", unit)
			}
			for i := 0; i < rows; i++ {
				v := x.At(i, col)
				if pos > 0 {
					v += hiddenInputNoise * rng.Float64()
				}
				sel.Set(i, j, v)
			}
		}
		aligned[pos/2] = sel
	}

	return aligned, nil
}
