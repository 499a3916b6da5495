// Command kbann refines a symbolic rule base with a neural network:
// it compiles rules into the initial parameters of a feed-forward
// network, trains the network on labeled examples, clusters the trained
// weights, refines the thresholds with a second fixed-weight pass, and
// writes the extracted rules back out.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/openfluke/kbann/mixture"
	"github.com/openfluke/kbann/network"
	"github.com/openfluke/kbann/nn"
	"github.com/openfluke/kbann/rules"
)

func main() {
	rulesPath := flag.String("rules", "", "rule-set file (Head : Body1, Body2, ...)")
	dataPath := flag.String("data", "", "dataset file (feature names header, numeric rows, label column)")
	outPath := flag.String("out", "refined_rules.txt", "output file for extracted rules")
	epochs := flag.Int("epochs", 2000, "training epochs per pass")
	lr := flag.Float64("lr", 0.1, "learning rate")
	omega := flag.Float64("omega", 4.0, "rule weight constant")
	hidden := flag.Int("hidden", 3, "free hidden units to add (0 disables)")
	seed := flag.Int64("seed", 0, "random seed (0 means time-based)")
	plotPath := flag.String("plot", "", "optional loss-curve PNG")
	quiet := flag.Bool("quiet", false, "suppress progress output")
	flag.Parse()

	if *rulesPath == "" || *dataPath == "" {
		fmt.Fprintln(os.Stderr, "kbann: -rules and -data are required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*rulesPath, *dataPath, *outPath, *plotPath,
		*epochs, *hidden, *lr, *omega, *seed, !*quiet); err != nil {
		fmt.Fprintf(os.Stderr, "kbann: %v\n", err)
		os.Exit(1)
	}
}

func run(rulesPath, dataPath, outPath, plotPath string,
	epochs, hidden int, lr, omega float64, seed int64, verbose bool) error {

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	x, labels, featureNames, err := network.LoadDataset(dataPath)
	if err != nil {
		return err
	}
	y, err := network.LabelVector(labels)
	if err != nil {
		return err
	}
	samples, _ := x.Dims()
	target := mat.NewDense(samples, 1, nil)
	for i := 0; i < samples; i++ {
		target.Set(i, 0, y.AtVec(i))
	}

	ruleset, err := rules.Load(rulesPath)
	if err != nil {
		return err
	}
	rewritten := ruleset.Rewrite()
	ruleLayers, err := rewritten.Layers()
	if err != nil {
		return err
	}

	p, err := network.Synthesize(ruleLayers, &network.SynthesisConfig{Omega: omega})
	if err != nil {
		return err
	}
	if err := p.AddInputUnits(featureNames); err != nil {
		return err
	}
	if hidden > 0 {
		cfg := network.DefaultHiddenConfig()
		cfg.Count = hidden
		if err := p.AddHiddenUnits(cfg); err != nil {
			return err
		}
	}

	if verbose {
		fmt.Printf("=== KBANN Rule Refinement ===\n")
		fmt.Printf("Rules: %d (%d after rewriting), %d network layers\n",
			len(ruleset), len(rewritten), len(p.Weights))
		for i, layer := range p.Layers {
			kind := "in"
			if i%2 == 1 {
				kind = "out"
			}
			fmt.Printf("  layer %d (%s): %s\n", i/2, kind, strings.Join(layer, ", "))
		}
	}

	aligned, err := network.AlignData(x, featureNames, p.Layers, rng)
	if err != nil {
		return err
	}

	trainCfg := &nn.TrainConfig{
		Epochs:       epochs,
		LearningRate: lr,
		Verbose:      verbose,
		PrintEvery:   epochs / 10,
	}

	if verbose {
		fmt.Println("--- Pass 1: free training ---")
	}
	model := nn.New(p.Weights, p.Biases, &nn.Config{
		InitNoise: 0.1,
		Dropout:   0.1,
		Rand:      rng,
	})
	free, err := model.Train(aligned, target, trainCfg)
	if err != nil {
		return err
	}
	p.Weights = model.Weights()
	p.Biases = model.Biases()

	if verbose {
		fmt.Printf("Pass 1 final loss: %.9f\n--- Weight clustering ---\n", free.FinalLoss)
	}
	clusterIDs, err := network.EliminateWeights(p, func(components int) network.MixtureEstimator {
		return mixture.New(components)
	})
	if err != nil {
		return err
	}

	if verbose {
		fmt.Println("--- Pass 2: bias refinement with fixed weights ---")
	}
	model = nn.New(p.Weights, p.Biases, &nn.Config{
		FixWeights: true,
		InitNoise:  0.1,
		Dropout:    0.1,
		Rand:       rng,
	})
	fixed, err := model.Train(aligned, target, trainCfg)
	if err != nil {
		return err
	}
	p.Biases = model.Biases()

	extracted := network.ExtractRules(p, clusterIDs)
	if err := network.SaveRules(extracted, outPath); err != nil {
		return err
	}

	if verbose {
		fmt.Printf("Pass 2 final loss: %.9f\n--- Extracted rules ---\n", fixed.FinalLoss)
		for _, r := range extracted {
			fmt.Println(r)
		}
		fmt.Printf("Wrote %d rules to %s\n", len(extracted), outPath)
	}

	if plotPath != "" {
		if err := plotLoss(plotPath, free.LossHistory, fixed.LossHistory); err != nil {
			return err
		}
		if verbose {
			fmt.Printf("Wrote loss curves to %s\n", plotPath)
		}
	}
	return nil
}

// plotLoss renders both training passes' loss histories.
func plotLoss(path string, free, fixed []float64) error {
	pl := plot.New()
	pl.Title.Text = "KBANN training loss"
	pl.X.Label.Text = "epoch"
	pl.Y.Label.Text = "MSE"

	if err := plotutil.AddLines(pl, "free", toXYs(free), "fixed weights", toXYs(fixed)); err != nil {
		return errors.Wrap(err, "plotting loss")
	}
	return errors.Wrap(pl.Save(8*vg.Inch, 5*vg.Inch, path), "saving plot")
}

func toXYs(history []float64) plotter.XYs {
	xys := make(plotter.XYs, len(history))
	for i, v := range history {
		xys[i].X = float64(i)
		xys[i].Y = v
	}
	return xys
}
