package network

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ExtractRules reconstructs one symbolic rule per output unit from
// clustered weights, biases and the layer-name stack. Each rule has the
// form
//
//	Head :- bias < w1 * nt(a,b) + w2 * nt(c)
//
// where nt(...) counts how many of a cluster's antecedents are true, so a
// cluster contributes its shared weight times that count. Clusters appear
// in first-appearance order of their ids. The reconstruction is
// deliberately literal: no boolean minimization, no coefficient rounding.
func ExtractRules(p *Params, clusterIDs [][][]int) []string {
	var out []string
	for i, w := range p.Weights {
		current := p.Layers[2*i]
		next := p.Layers[2*i+1]
		_, cols := w.Dims()
		for j := 0; j < cols; j++ {
			column := mat.Col(nil, j, w)
			ids := clusterIDs[i][j]

			var order []int
			seen := make(map[int]bool)
			for _, id := range ids {
				if !seen[id] {
					seen[id] = true
					order = append(order, id)
				}
			}

			var terms []string
			for _, id := range order {
				var members []string
				weight := 0.0
				for idx, assigned := range ids {
					if assigned != id {
						continue
					}
					if len(members) == 0 {
						weight = column[idx]
					}
					members = append(members, current[idx])
				}
				terms = append(terms, fmt.Sprintf("%s * nt(%s)",
					formatWeight(weight), strings.Join(members, ",")))
			}

			out = append(out, fmt.Sprintf("%s :- %s < %s",
				next[j], formatWeight(p.Biases[i].AtVec(j)), strings.Join(terms, " + ")))
		}
	}
	return out
}

// SaveRules writes one quoted rule per line.
func SaveRules(ruleStrings []string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating rule output file")
	}
	for _, r := range ruleStrings {
		if _, err := fmt.Fprintf(f, "%q\n", r); err != nil {
			f.Close()
			return errors.Wrap(err, "writing rules")
		}
	}
	return errors.Wrap(f.Close(), "closing rule output file")
}

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
