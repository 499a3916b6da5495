package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// beta1 is the exponential decay rate for first moment estimates.
	beta1 = 0.9
	// beta2 is the exponential decay rate for second moment estimates.
	beta2 = 0.999
	// epsilon guards the denominator.
	epsilon = 1e-8
)

// adam holds per-parameter moment estimates for the Adam optimizer.
type adam struct {
	t  int
	mw []*mat.Dense
	vw []*mat.Dense
	mb []*mat.VecDense
	vb []*mat.VecDense
}

func newAdam(n *Network) *adam {
	opt := &adam{
		mw: make([]*mat.Dense, len(n.weights)),
		vw: make([]*mat.Dense, len(n.weights)),
		mb: make([]*mat.VecDense, len(n.biases)),
		vb: make([]*mat.VecDense, len(n.biases)),
	}
	for i, w := range n.weights {
		rows, cols := w.Dims()
		opt.mw[i] = mat.NewDense(rows, cols, nil)
		opt.vw[i] = mat.NewDense(rows, cols, nil)
	}
	for i, b := range n.biases {
		opt.mb[i] = mat.NewVecDense(b.Len(), nil)
		opt.vb[i] = mat.NewVecDense(b.Len(), nil)
	}
	return opt
}

// step applies one Adam update. Frozen weights are skipped; biases always
// move.
func (opt *adam) step(n *Network, gradW []*mat.Dense, gradB []*mat.VecDense, lr float64) {
	opt.t++
	c1 := 1 - math.Pow(beta1, float64(opt.t))
	c2 := 1 - math.Pow(beta2, float64(opt.t))

	if !n.fixWeights {
		for i, w := range n.weights {
			rows, cols := w.Dims()
			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					g := gradW[i].At(r, c)
					m := beta1*opt.mw[i].At(r, c) + (1-beta1)*g
					v := beta2*opt.vw[i].At(r, c) + (1-beta2)*g*g
					opt.mw[i].Set(r, c, m)
					opt.vw[i].Set(r, c, v)
					w.Set(r, c, w.At(r, c)-lr*(m/c1)/(math.Sqrt(v/c2)+epsilon))
				}
			}
		}
	}

	for i, b := range n.biases {
		for j := 0; j < b.Len(); j++ {
			g := gradB[i].AtVec(j)
			m := beta1*opt.mb[i].AtVec(j) + (1-beta1)*g
			v := beta2*opt.vb[i].AtVec(j) + (1-beta2)*g*g
			opt.mb[i].SetVec(j, m)
			opt.vb[i].SetVec(j, v)
			b.SetVec(j, b.AtVec(j)-lr*(m/c1)/(math.Sqrt(v/c2)+epsilon))
		}
	}
}
