package network

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/openfluke/kbann/rules"
)

// SynthesisConfig controls the rules-to-network mapping.
type SynthesisConfig struct {
	// Omega is the magnitude given to every rule-derived weight.
	Omega float64
}

// DefaultSynthesisConfig returns the standard KBANN weight constant.
func DefaultSynthesisConfig() *SynthesisConfig {
	return &SynthesisConfig{Omega: 4.0}
}

// Synthesize maps an ordered stack of rule layers onto network
// parameters. For each rule `H :- l1,...,lp`, every body literal
// contributes +omega (or -omega when negated) to H's column. The bias
// encodes the logical threshold: (p-0.5)*omega for a conjunctive head
// (single definition in the layer), 0.5*omega for a disjunctive head, so
// the untrained network computes exactly the Boolean function the rules
// describe.
//
// Input layers carry forward: each layer's input units are the previous
// output units followed by any newly referenced antecedents, letting
// later layers reuse earlier unit identities.
func Synthesize(ruleLayers []rules.RuleSet, cfg *SynthesisConfig) (*Params, error) {
	if cfg == nil {
		cfg = DefaultSynthesisConfig()
	}
	if len(ruleLayers) == 0 {
		return nil, errors.Wrap(ErrShapeMismatch, "no rule layers to synthesize")
	}

	p := &Params{}
	var lastLayer []string

	for _, layer := range ruleLayers {
		current := append([]string(nil), lastLayer...)
		seen := make(map[string]bool, len(current))
		for _, name := range current {
			seen[name] = true
		}
		for _, name := range layer.Antecedents() {
			if !seen[name] {
				seen[name] = true
				current = append(current, name)
			}
		}
		next := layer.Consequents()

		rowOf := indexOf(current)
		colOf := indexOf(next)

		counts := make(map[string]int, len(layer))
		for _, r := range layer {
			counts[r.Head.Name]++
		}

		w := mat.NewDense(len(current), len(next), nil)
		b := mat.NewVecDense(len(next), nil)
		for _, r := range layer {
			j := colOf[r.Head.Name]
			for _, l := range r.Body {
				if l.Negated {
					w.Set(rowOf[l.Name], j, -cfg.Omega)
				} else {
					w.Set(rowOf[l.Name], j, cfg.Omega)
				}
			}
			if counts[r.Head.Name] > 1 {
				b.SetVec(j, 0.5*cfg.Omega)
			} else {
				b.SetVec(j, (float64(len(r.Body))-0.5)*cfg.Omega)
			}
		}

		p.Weights = append(p.Weights, w)
		p.Biases = append(p.Biases, b)
		p.Layers = append(p.Layers, current, next)
		lastLayer = next
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func indexOf(names []string) map[string]int {
	idx := make(map[string]int, len(names))
	for i, name := range names {
		idx[name] = i
	}
	return idx
}
