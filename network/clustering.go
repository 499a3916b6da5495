package network

import (
	goerrors "errors"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrDegenerateClusterInput reports an output unit with no incoming
// weights to cluster. Rule bodies are non-empty, so hitting this means
// the parameter stack is inconsistent.
var ErrDegenerateClusterInput = goerrors.New("no weights to cluster")

// MixtureEstimator is the 1-D Gaussian mixture collaborator used to group
// weight values.
type MixtureEstimator interface {
	Fit(samples []float64) error
	Predict(samples []float64) []int
	BIC(samples []float64) float64
}

// EliminateWeights clusters the incoming weights of every output unit and
// replaces each cluster's members with the cluster mean, converting
// noisy trained weights into a small number of discrete coefficients.
// Columns with more than two weights are fitted with mixtures of 2 up to
// n-1 components and the component count with the lowest BIC wins.
// Two-weight columns become singleton clusters unless the values are
// identical (a two-point mixture is not well-posed), and a lone weight is
// its own cluster.
//
// Weight matrices are updated in place. The returned assignment is
// indexed [layer][output unit][antecedent].
func EliminateWeights(p *Params, newEstimator func(components int) MixtureEstimator) ([][][]int, error) {
	clusterIDs := make([][][]int, len(p.Weights))
	for i, w := range p.Weights {
		_, cols := w.Dims()
		clusterIDs[i] = make([][]int, cols)
		for j := 0; j < cols; j++ {
			column := mat.Col(nil, j, w)
			ids, err := clusterColumn(column, newEstimator)
			if err != nil {
				return nil, errors.Wrapf(err, "layer %d unit %d", i, j)
			}
			w.SetCol(j, column)
			clusterIDs[i][j] = ids
		}
	}
	return clusterIDs, nil
}

// clusterColumn clusters one unit's incoming weights in place and returns
// the per-weight cluster ids.
func clusterColumn(weights []float64, newEstimator func(components int) MixtureEstimator) ([]int, error) {
	switch n := len(weights); {
	case n == 0:
		return nil, ErrDegenerateClusterInput
	case n == 1:
		return []int{0}, nil
	case n == 2:
		if weights[0] == weights[1] {
			return []int{0, 0}, nil
		}
		return []int{0, 1}, nil
	}

	var best MixtureEstimator
	bestBIC := math.Inf(1)
	for k := 2; k < len(weights); k++ {
		est := newEstimator(k)
		if err := est.Fit(weights); err != nil {
			return nil, errors.Wrapf(err, "fitting %d components", k)
		}
		if bic := est.BIC(weights); bic < bestBIC {
			bestBIC = bic
			best = est
		}
	}

	ids := best.Predict(weights)

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i, id := range ids {
		sums[id] += weights[i]
		counts[id]++
	}
	for i, id := range ids {
		weights[i] = sums[id] / float64(counts[id])
	}
	return ids, nil
}
