package network

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LoadDataset reads a comma-separated dataset: the first line names the
// feature columns (plus a final label column), every other line holds
// numeric feature values followed by the string-valued label.
func LoadDataset(path string) (x *mat.Dense, labels []string, featureNames []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "opening dataset")
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "reading %s", path)
	}
	if len(records) < 2 {
		return nil, nil, nil, errors.Errorf("dataset %s has no sample rows", path)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, nil, nil, errors.Errorf("dataset %s needs at least one feature and a label column", path)
	}
	featureNames = make([]string, len(header)-1)
	for i, name := range header[:len(header)-1] {
		featureNames[i] = strings.TrimSpace(name)
	}

	rows := len(records) - 1
	cols := len(featureNames)
	x = mat.NewDense(rows, cols, nil)
	labels = make([]string, rows)

	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, nil, nil, errors.Errorf("dataset row %d has %d columns, expected %d",
				i+2, len(record), len(header))
		}
		for j := 0; j < cols; j++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[j]), 64)
			if err != nil {
				return nil, nil, nil, errors.Wrapf(err, "dataset row %d column %s", i+2, featureNames[j])
			}
			x.Set(i, j, v)
		}
		labels[i] = strings.TrimSpace(record[cols])
	}

	return x, labels, featureNames, nil
}

// LabelVector converts string labels to a numeric target vector.
func LabelVector(labels []string) (*mat.VecDense, error) {
	y := mat.NewVecDense(len(labels), nil)
	for i, label := range labels {
		v, err := strconv.ParseFloat(label, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "label %d %q is not numeric", i, label)
		}
		y.SetVec(i, v)
	}
	return y, nil
}
