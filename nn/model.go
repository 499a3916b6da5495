// Package nn implements the trainable model KBANN refines: a stack of
// sigmoid(xW - b) layers initialized from rule-derived parameters. Layers
// past the first can concatenate an extra raw-input block, supporting
// networks whose hidden layers read both earlier activations and fresh
// dataset features. A network built with FixWeights only trains its
// biases, which is how the second KBANN pass refines thresholds without
// disturbing clustered weights.
package nn

import (
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Config controls network construction.
type Config struct {
	// FixWeights freezes weight matrices; only biases receive updates.
	FixWeights bool
	// InitNoise scales the uniform noise added to every parameter at
	// construction to break symmetry.
	InitNoise float64
	// Dropout is the probability of dropping a hidden-layer input during
	// training.
	Dropout float64
	// Rand drives noise and dropout; nil means time-seeded.
	Rand *rand.Rand
}

// DefaultConfig returns the standard KBANN initialization: 0.1 noise and
// 0.1 dropout.
func DefaultConfig() *Config {
	return &Config{InitNoise: 0.1, Dropout: 0.1}
}

// Network is a feed-forward sigmoid network. Biases are thresholds:
// each layer computes sigmoid(x*W - b).
type Network struct {
	weights []*mat.Dense
	biases  []*mat.VecDense

	fixWeights bool
	dropout    float64
	rng        *rand.Rand
}

// New builds a network from initial weight matrices and bias vectors.
// Parameters are deep-copied, with InitNoise-scaled uniform noise added.
func New(weights []*mat.Dense, biases []*mat.VecDense, cfg *Config) *Network {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	n := &Network{
		weights:    make([]*mat.Dense, len(weights)),
		biases:     make([]*mat.VecDense, len(biases)),
		fixWeights: cfg.FixWeights,
		dropout:    cfg.Dropout,
		rng:        rng,
	}
	for i, w := range weights {
		cw := mat.DenseCopyOf(w)
		cw.Apply(func(_, _ int, v float64) float64 {
			return v + cfg.InitNoise*rng.Float64()
		}, cw)
		n.weights[i] = cw
	}
	for i, b := range biases {
		cb := mat.VecDenseCopyOf(b)
		for j := 0; j < cb.Len(); j++ {
			cb.SetVec(j, cb.AtVec(j)+cfg.InitNoise*rng.Float64())
		}
		n.biases[i] = cb
	}
	return n
}

// NumLayers returns the number of weight layers.
func (n *Network) NumLayers() int {
	return len(n.weights)
}

// Weights returns copies of the current weight matrices.
func (n *Network) Weights() []*mat.Dense {
	out := make([]*mat.Dense, len(n.weights))
	for i, w := range n.weights {
		out[i] = mat.DenseCopyOf(w)
	}
	return out
}

// Biases returns copies of the current bias vectors.
func (n *Network) Biases() []*mat.VecDense {
	out := make([]*mat.VecDense, len(n.biases))
	for i, b := range n.biases {
		out[i] = mat.VecDenseCopyOf(b)
	}
	return out
}

// Forward evaluates the network. inputs[0] feeds the first layer; a
// non-nil inputs[i] is concatenated onto layer i's incoming activations.
// With train set, hidden-layer inputs are subject to dropout.
func (n *Network) Forward(inputs []*mat.Dense, train bool) (*mat.Dense, error) {
	cache, err := n.forwardPass(inputs, train)
	if err != nil {
		return nil, err
	}
	return cache.acts[len(cache.acts)-1], nil
}

type forwardCache struct {
	ins   []*mat.Dense // effective layer inputs, after concat and dropout
	acts  []*mat.Dense
	masks []*mat.Dense // dropout scale masks, nil where unused
}

func (n *Network) forwardPass(inputs []*mat.Dense, train bool) (*forwardCache, error) {
	if len(inputs) == 0 || inputs[0] == nil {
		return nil, errors.New("nn: first-layer input is required")
	}

	cache := &forwardCache{
		ins:   make([]*mat.Dense, len(n.weights)),
		acts:  make([]*mat.Dense, len(n.weights)),
		masks: make([]*mat.Dense, len(n.weights)),
	}

	for i, w := range n.weights {
		var in *mat.Dense
		if i == 0 {
			in = inputs[0]
		} else {
			in = cache.acts[i-1]
			if i < len(inputs) && inputs[i] != nil {
				var cat mat.Dense
				cat.Augment(in, inputs[i])
				in = &cat
			}
			if train && n.dropout > 0 {
				mask := n.dropoutMask(in)
				var dropped mat.Dense
				dropped.MulElem(in, mask)
				in = &dropped
				cache.masks[i] = mask
			}
		}

		_, inCols := in.Dims()
		rows, _ := w.Dims()
		if inCols != rows {
			return nil, errors.Errorf("nn: layer %d input width %d does not match %d weight rows",
				i, inCols, rows)
		}

		b := n.biases[i]
		var z mat.Dense
		z.Mul(in, w)
		z.Apply(func(_, c int, v float64) float64 {
			return sigmoid(v - b.AtVec(c))
		}, &z)

		cache.ins[i] = in
		cache.acts[i] = &z
	}

	return cache, nil
}

// dropoutMask builds an inverted-dropout mask: dropped entries are zero,
// kept entries are scaled by 1/(1-p) so expected activations match
// evaluation mode.
func (n *Network) dropoutMask(in *mat.Dense) *mat.Dense {
	rows, cols := in.Dims()
	keep := 1.0 - n.dropout
	mask := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if n.rng.Float64() < keep {
				mask.Set(i, j, 1.0/keep)
			}
		}
	}
	return mask
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
