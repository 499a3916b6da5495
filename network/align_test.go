package network

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAlignDataSelectsColumnsByName(t *testing.T) {
	// Features stored as [a b c]; the input layer wants [c, a].
	x := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	layers := [][]string{{"c", "a"}, {"h"}}

	aligned, err := AlignData(x, []string{"a", "b", "c"}, layers, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("AlignData failed: %v", err)
	}
	if len(aligned) != 1 {
		t.Fatalf("Expected 1 aligned block, got %d", len(aligned))
	}

	want := mat.NewDense(2, 2, []float64{
		3, 1,
		6, 4,
	})
	if !mat.Equal(aligned[0], want) {
		t.Errorf("Expected %v, got %v", mat.Formatted(want), mat.Formatted(aligned[0]))
	}
}

func TestAlignDataHiddenInputsGetNoise(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{
		1, 0,
		0, 1,
	})
	// Second input layer carries "h" forward and introduces raw feature "b".
	layers := [][]string{{"a"}, {"h"}, {"h", "b"}, {"top"}}

	aligned, err := AlignData(x, []string{"a", "b"}, layers, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("AlignData failed: %v", err)
	}
	if len(aligned) != 2 {
		t.Fatalf("Expected 2 aligned slots, got %d", len(aligned))
	}
	if aligned[1] == nil {
		t.Fatal("Expected a block for the new hidden input")
	}

	rows, cols := aligned[1].Dims()
	if rows != 2 || cols != 1 {
		t.Fatalf("Expected a 2x1 block, got %dx%d", rows, cols)
	}
	for i := 0; i < rows; i++ {
		raw := x.At(i, 1)
		got := aligned[1].At(i, 0)
		diff := math.Abs(got - raw)
		if diff == 0 || diff > 1e-4 {
			t.Errorf("Expected small non-zero noise on row %d, diff = %g", i, diff)
		}
	}
}

func TestAlignDataCarriedForwardContributesNothing(t *testing.T) {
	x := mat.NewDense(1, 1, []float64{1})
	// The second input layer only carries the previous output forward.
	layers := [][]string{{"a"}, {"mid"}, {"mid"}, {"top"}}

	aligned, err := AlignData(x, []string{"a"}, layers, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("AlignData failed: %v", err)
	}
	if aligned[1] != nil {
		t.Errorf("Expected no block for a carried-forward layer, got %v", mat.Formatted(aligned[1]))
	}
}

func TestAlignDataUnknownFeature(t *testing.T) {
	x := mat.NewDense(1, 1, []float64{1})
	layers := [][]string{{"missing"}, {"h"}}

	_, err := AlignData(x, []string{"a"}, layers, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrUnknownFeature) {
		t.Errorf("Expected ErrUnknownFeature, got %v", err)
	}
}
