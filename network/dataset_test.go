package network

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadDataset(t *testing.T) {
	x, labels, featureNames, err := LoadDataset(filepath.Join("testdata", "tiny.txt"))
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}

	if !reflect.DeepEqual(featureNames, []string{"a", "b", "c"}) {
		t.Errorf("Expected features [a b c], got %v", featureNames)
	}
	rows, cols := x.Dims()
	if rows != 3 || cols != 3 {
		t.Errorf("Expected a 3x3 matrix, got %dx%d", rows, cols)
	}
	if x.At(0, 0) != 1 || x.At(1, 1) != 1 || x.At(1, 0) != 0 {
		t.Errorf("Unexpected matrix contents: %v", x)
	}
	if !reflect.DeepEqual(labels, []string{"1", "0", "1"}) {
		t.Errorf("Expected labels [1 0 1], got %v", labels)
	}

	y, err := LabelVector(labels)
	if err != nil {
		t.Fatalf("LabelVector failed: %v", err)
	}
	if y.Len() != 3 || y.AtVec(0) != 1 || y.AtVec(1) != 0 {
		t.Errorf("Unexpected label vector: %v", y)
	}
}

func TestLabelVectorRejectsNonNumeric(t *testing.T) {
	if _, err := LabelVector([]string{"yes"}); err == nil {
		t.Error("Expected an error for a non-numeric label")
	}
}
