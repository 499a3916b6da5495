// Package mixture fits one-dimensional Gaussian mixture models by
// expectation-maximization and scores them with the Bayesian information
// criterion. KBANN uses it to group the trained weights feeding a unit
// into a small number of interpretable clusters.
package mixture

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// varianceFloor keeps components from collapsing onto a single sample.
const varianceFloor = 1e-6

// Model is a 1-D Gaussian mixture with a fixed number of components.
type Model struct {
	Components int

	// Per-component parameters, valid after Fit.
	Weights   []float64
	Means     []float64
	Variances []float64

	// EM controls.
	MaxIter int
	Tol     float64

	logLikelihood float64
}

// New returns an unfitted mixture model with the given component count.
func New(components int) *Model {
	return &Model{
		Components: components,
		MaxIter:    200,
		Tol:        1e-6,
	}
}

// Fit estimates component weights, means and variances from samples using
// expectation-maximization. Initialization is deterministic (component
// means start at sample quantiles), so repeated fits of the same data
// produce the same clustering.
func (m *Model) Fit(samples []float64) error {
	n := len(samples)
	k := m.Components
	if k < 1 {
		return errors.Errorf("mixture: invalid component count %d", k)
	}
	if n < k {
		return errors.Errorf("mixture: %d samples cannot support %d components", n, k)
	}

	sorted := make([]float64, n)
	copy(sorted, samples)
	sort.Float64s(sorted)

	m.Weights = make([]float64, k)
	m.Means = make([]float64, k)
	m.Variances = make([]float64, k)

	pooled := stat.Variance(samples, nil)
	if pooled < varianceFloor {
		pooled = varianceFloor
	}
	for c := 0; c < k; c++ {
		m.Weights[c] = 1.0 / float64(k)
		m.Means[c] = sorted[(2*c+1)*n/(2*k)]
		m.Variances[c] = pooled
	}

	resp := make([][]float64, n)
	for i := range resp {
		resp[i] = make([]float64, k)
	}

	prevLL := math.Inf(-1)
	for iter := 0; iter < m.MaxIter; iter++ {
		// E-step: posterior responsibilities in log space.
		ll := 0.0
		for i, x := range samples {
			for c := 0; c < k; c++ {
				resp[i][c] = math.Log(m.Weights[c]) + m.logProb(c, x)
			}
			norm := floats.LogSumExp(resp[i])
			ll += norm
			for c := 0; c < k; c++ {
				resp[i][c] = math.Exp(resp[i][c] - norm)
			}
		}

		// M-step: reestimate parameters from responsibilities.
		for c := 0; c < k; c++ {
			nc := 0.0
			for i := range samples {
				nc += resp[i][c]
			}
			if nc < 1e-12 {
				// Empty component: park it on the pooled variance.
				m.Weights[c] = 1e-12
				m.Variances[c] = pooled
				continue
			}

			mean := 0.0
			for i, x := range samples {
				mean += resp[i][c] * x
			}
			mean /= nc

			variance := 0.0
			for i, x := range samples {
				d := x - mean
				variance += resp[i][c] * d * d
			}
			variance /= nc
			if variance < varianceFloor {
				variance = varianceFloor
			}

			m.Weights[c] = nc / float64(n)
			m.Means[c] = mean
			m.Variances[c] = variance
		}

		m.logLikelihood = ll
		if math.Abs(ll-prevLL) < m.Tol {
			break
		}
		prevLL = ll
	}

	return nil
}

// Predict assigns each sample to its most probable component. The model
// must have been fitted.
func (m *Model) Predict(samples []float64) []int {
	ids := make([]int, len(samples))
	for i, x := range samples {
		best := math.Inf(-1)
		for c := 0; c < m.Components; c++ {
			p := math.Log(m.Weights[c]) + m.logProb(c, x)
			if p > best {
				best = p
				ids[i] = c
			}
		}
	}
	return ids
}

// BIC scores the fitted model on samples: -2*logL + p*ln(n), with
// p = 3k-1 free parameters (k-1 weights, k means, k variances). Lower is
// better.
func (m *Model) BIC(samples []float64) float64 {
	ll := 0.0
	logp := make([]float64, m.Components)
	for _, x := range samples {
		for c := 0; c < m.Components; c++ {
			logp[c] = math.Log(m.Weights[c]) + m.logProb(c, x)
		}
		ll += floats.LogSumExp(logp)
	}
	p := float64(3*m.Components - 1)
	return -2*ll + p*math.Log(float64(len(samples)))
}

// LogLikelihood returns the total log-likelihood from the last Fit.
func (m *Model) LogLikelihood() float64 {
	return m.logLikelihood
}

func (m *Model) logProb(c int, x float64) float64 {
	normal := distuv.Normal{Mu: m.Means[c], Sigma: math.Sqrt(m.Variances[c])}
	return normal.LogProb(x)
}
