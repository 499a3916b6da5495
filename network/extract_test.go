package network

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestExtractRoundTrip(t *testing.T) {
	// Target :- A, B with omega 4 synthesizes the column [4 4], bias 3.5.
	layers := mustLayers(t, "Target : A, B\n")
	p, err := Synthesize(layers, nil)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if got := p.Biases[0].AtVec(0); got != 6.0 {
		t.Fatalf("Expected synthesized bias 6 for two antecedents, got %f", got)
	}

	// Stand in for bias refinement, leaving the weights unperturbed:
	// both antecedents then share one cluster with mean weight 4.
	p.Biases[0].SetVec(0, 3.5)
	ids, err := EliminateWeights(p, gaussianFactory)
	if err != nil {
		t.Fatalf("EliminateWeights failed: %v", err)
	}

	out := ExtractRules(p, ids)
	if len(out) != 1 {
		t.Fatalf("Expected 1 rule, got %d", len(out))
	}
	want := "Target :- 3.5 < 4 * nt(A,B)"
	if out[0] != want {
		t.Errorf("Expected %q, got %q", want, out[0])
	}
}

func TestExtractClusterOrderIsFirstAppearance(t *testing.T) {
	p := &Params{
		Weights: []*mat.Dense{mat.NewDense(3, 1, []float64{2, -1, 2})},
		Biases:  []*mat.VecDense{mat.NewVecDense(1, []float64{0.5})},
		Layers:  [][]string{{"a", "b", "c"}, {"h"}},
	}
	ids := [][][]int{{{1, 0, 1}}}

	out := ExtractRules(p, ids)
	want := "h :- 0.5 < 2 * nt(a,c) + -1 * nt(b)"
	if out[0] != want {
		t.Errorf("Expected %q, got %q", want, out[0])
	}
}

func TestExtractOneRulePerOutputUnit(t *testing.T) {
	layers := mustLayers(t, "mid : a, b\ntop : mid, c\n")
	p, err := Synthesize(layers, nil)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	ids, err := EliminateWeights(p, gaussianFactory)
	if err != nil {
		t.Fatalf("EliminateWeights failed: %v", err)
	}

	out := ExtractRules(p, ids)
	if len(out) != 2 {
		t.Fatalf("Expected one rule per output unit, got %d", len(out))
	}
}

func TestSaveRulesQuotesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.txt")
	rulesOut := []string{`h :- 0.5 < 2 * nt(a)`}

	if err := SaveRules(rulesOut, path); err != nil {
		t.Fatalf("SaveRules failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatal("Expected one line of output")
	}
	unquoted, err := strconv.Unquote(scanner.Text())
	if err != nil {
		t.Fatalf("Expected a quoted line, got %q: %v", scanner.Text(), err)
	}
	if unquoted != rulesOut[0] {
		t.Errorf("Expected %q, got %q", rulesOut[0], unquoted)
	}
}
