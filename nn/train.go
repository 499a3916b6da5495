package nn

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// TrainConfig holds configuration for training.
type TrainConfig struct {
	Epochs       int
	LearningRate float64
	Verbose      bool
	PrintEvery   int // print progress every N epochs
}

// DefaultTrainConfig returns the KBANN refinement defaults.
func DefaultTrainConfig() *TrainConfig {
	return &TrainConfig{
		Epochs:       2000,
		LearningRate: 0.1,
		Verbose:      true,
		PrintEvery:   100,
	}
}

// TrainResult contains training statistics.
type TrainResult struct {
	FinalLoss   float64
	BestLoss    float64
	LossHistory []float64
	TotalTime   time.Duration
}

// Train runs full-batch gradient descent with Adam against a mean squared
// error loss. With FixWeights set at construction, weight matrices are
// left untouched and only biases move.
func (n *Network) Train(inputs []*mat.Dense, target *mat.Dense, cfg *TrainConfig) (*TrainResult, error) {
	if cfg == nil {
		cfg = DefaultTrainConfig()
	}
	if len(inputs) == 0 || inputs[0] == nil {
		return nil, errors.New("nn: no training data provided")
	}

	samples, _ := inputs[0].Dims()
	targetRows, targetCols := target.Dims()
	if targetRows != samples {
		return nil, errors.Errorf("nn: %d input rows but %d target rows", samples, targetRows)
	}
	_, outCols := n.weights[len(n.weights)-1].Dims()
	if targetCols != outCols {
		return nil, errors.Errorf("nn: %d output units but %d target columns", outCols, targetCols)
	}

	result := &TrainResult{
		BestLoss:    math.MaxFloat64,
		LossHistory: make([]float64, 0, cfg.Epochs),
	}
	opt := newAdam(n)
	start := time.Now()

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		cache, err := n.forwardPass(inputs, true)
		if err != nil {
			return nil, err
		}

		loss := mseLoss(cache.acts[len(cache.acts)-1], target)
		result.LossHistory = append(result.LossHistory, loss)
		if loss < result.BestLoss {
			result.BestLoss = loss
		}

		gradW, gradB := n.backward(cache, target)
		opt.step(n, gradW, gradB, cfg.LearningRate)

		if cfg.Verbose && cfg.PrintEvery > 0 && epoch%cfg.PrintEvery == 0 {
			fmt.Printf("  Epoch %d/%d - Loss: %.9f\n", epoch, cfg.Epochs, loss)
		}
	}

	result.FinalLoss = result.LossHistory[len(result.LossHistory)-1]
	result.TotalTime = time.Since(start)
	return result, nil
}

// backward computes parameter gradients for the MSE loss captured by a
// forward pass. The bias gradient carries a sign flip because biases are
// subtracted in the forward computation.
func (n *Network) backward(cache *forwardCache, target *mat.Dense) ([]*mat.Dense, []*mat.VecDense) {
	last := len(n.weights) - 1
	gradW := make([]*mat.Dense, len(n.weights))
	gradB := make([]*mat.VecDense, len(n.weights))

	out := cache.acts[last]
	rows, cols := out.Dims()
	dA := mat.NewDense(rows, cols, nil)
	dA.Sub(out, target)
	dA.Scale(2.0/float64(rows*cols), dA)

	for i := last; i >= 0; i-- {
		a := cache.acts[i]
		var dZ mat.Dense
		dZ.Apply(func(r, c int, v float64) float64 {
			s := a.At(r, c)
			return v * s * (1 - s)
		}, dA)

		var gw mat.Dense
		gw.Mul(cache.ins[i].T(), &dZ)
		gradW[i] = &gw

		_, zCols := dZ.Dims()
		gb := mat.NewVecDense(zCols, nil)
		zRows, _ := dZ.Dims()
		for c := 0; c < zCols; c++ {
			sum := 0.0
			for r := 0; r < zRows; r++ {
				sum += dZ.At(r, c)
			}
			gb.SetVec(c, -sum)
		}
		gradB[i] = gb

		if i == 0 {
			break
		}

		var dIn mat.Dense
		dIn.Mul(&dZ, n.weights[i].T())
		if cache.masks[i] != nil {
			dIn.MulElem(&dIn, cache.masks[i])
		}
		// Only the carried-forward activation columns propagate; the
		// concatenated raw-input block absorbs the rest.
		_, prevCols := cache.acts[i-1].Dims()
		dInRows, _ := dIn.Dims()
		next := mat.NewDense(dInRows, prevCols, nil)
		next.Copy(dIn.Slice(0, dInRows, 0, prevCols))
		dA = next
	}

	return gradW, gradB
}

func mseLoss(output, target *mat.Dense) float64 {
	rows, cols := output.Dims()
	sum := 0.0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			d := output.At(r, c) - target.At(r, c)
			sum += d * d
		}
	}
	return sum / float64(rows*cols)
}
