package network

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/openfluke/kbann/mixture"
)

func gaussianFactory(components int) MixtureEstimator {
	return mixture.New(components)
}

func TestEliminateWeightsReducesDistinctValues(t *testing.T) {
	// Two tight groups plus an outlier-free middle value.
	column := []float64{4.1, 3.9, -4.05, -3.95, 4.0}
	p := &Params{
		Weights: []*mat.Dense{mat.NewDense(5, 1, column)},
		Biases:  []*mat.VecDense{mat.NewVecDense(1, []float64{2.0})},
		Layers:  [][]string{{"a", "b", "c", "d", "e"}, {"h"}},
	}

	ids, err := EliminateWeights(p, gaussianFactory)
	if err != nil {
		t.Fatalf("EliminateWeights failed: %v", err)
	}

	assignments := ids[0][0]
	if len(assignments) != 5 {
		t.Fatalf("Expected 5 assignments, got %d", len(assignments))
	}

	clusters := make(map[int][]float64)
	for i, id := range assignments {
		clusters[id] = append(clusters[id], p.Weights[0].At(i, 0))
	}

	// Distinct weight values cannot exceed the selected cluster count.
	distinct := make(map[float64]bool)
	for i := 0; i < 5; i++ {
		distinct[p.Weights[0].At(i, 0)] = true
	}
	if len(distinct) > len(clusters) {
		t.Errorf("Expected at most %d distinct values, got %d", len(clusters), len(distinct))
	}

	// Every member of a cluster holds exactly the cluster mean.
	for id, members := range clusters {
		sum := 0.0
		for _, v := range members {
			sum += v
		}
		mean := sum / float64(len(members))
		for _, v := range members {
			if v != mean {
				t.Errorf("Cluster %d: expected every weight to equal the mean %g, got %g", id, mean, v)
			}
		}
	}
}

func TestEliminateWeightsTwoEntryColumn(t *testing.T) {
	p := &Params{
		Weights: []*mat.Dense{mat.NewDense(2, 1, []float64{3.0, -3.0})},
		Biases:  []*mat.VecDense{mat.NewVecDense(1, nil)},
		Layers:  [][]string{{"a", "b"}, {"h"}},
	}

	ids, err := EliminateWeights(p, gaussianFactory)
	if err != nil {
		t.Fatalf("EliminateWeights failed: %v", err)
	}
	got := ids[0][0]
	if got[0] == got[1] {
		t.Errorf("Expected two singleton clusters for distinct values, got %v", got)
	}
	// No averaging in the degenerate case.
	if p.Weights[0].At(0, 0) != 3.0 || p.Weights[0].At(1, 0) != -3.0 {
		t.Errorf("Expected weights untouched, got %v", mat.Formatted(p.Weights[0]))
	}
}

func TestEliminateWeightsEqualPairSharesCluster(t *testing.T) {
	p := &Params{
		Weights: []*mat.Dense{mat.NewDense(2, 1, []float64{4.0, 4.0})},
		Biases:  []*mat.VecDense{mat.NewVecDense(1, nil)},
		Layers:  [][]string{{"a", "b"}, {"h"}},
	}

	ids, err := EliminateWeights(p, gaussianFactory)
	if err != nil {
		t.Fatalf("EliminateWeights failed: %v", err)
	}
	got := ids[0][0]
	if got[0] != got[1] {
		t.Errorf("Expected identical weights in one cluster, got %v", got)
	}
}

func TestEliminateWeightsSingleEntryColumn(t *testing.T) {
	p := &Params{
		Weights: []*mat.Dense{mat.NewDense(1, 1, []float64{4.0})},
		Biases:  []*mat.VecDense{mat.NewVecDense(1, nil)},
		Layers:  [][]string{{"a"}, {"h"}},
	}

	ids, err := EliminateWeights(p, gaussianFactory)
	if err != nil {
		t.Fatalf("EliminateWeights failed: %v", err)
	}
	if len(ids[0][0]) != 1 || ids[0][0][0] != 0 {
		t.Errorf("Expected the lone weight in cluster 0, got %v", ids[0][0])
	}
}

func TestClusterColumnEmptyIsDegenerate(t *testing.T) {
	_, err := clusterColumn(nil, gaussianFactory)
	if !errors.Is(err, ErrDegenerateClusterInput) {
		t.Errorf("Expected ErrDegenerateClusterInput, got %v", err)
	}
}
