package rules

import (
	goerrors "errors"
	"strings"

	"github.com/pkg/errors"
)

// ErrCyclicRuleDependency reports a rule set in which some literal
// depends, transitively, on itself. Such a set cannot be ordered into
// network layers.
var ErrCyclicRuleDependency = goerrors.New("cyclic rule dependency")

// Layers orders a rewritten rule set into a stack of rule layers, inputs
// first. Each pass extracts the frontier: the rules whose heads are not
// referenced as antecedents by any rule still remaining. The frontier is
// collected output-to-input and the collected layers are reversed at the
// end, so layer k's rules only depend on heads defined in layers before k.
//
// An empty frontier while rules remain means the dependency graph has a
// cycle; Layers returns ErrCyclicRuleDependency naming the stuck heads
// rather than looping forever.
func (rs RuleSet) Layers() ([]RuleSet, error) {
	remaining := make(RuleSet, len(rs))
	copy(remaining, rs)

	var collected []RuleSet
	for len(remaining) > 0 {
		antecedents := make(map[string]bool)
		for _, name := range remaining.Antecedents() {
			antecedents[name] = true
		}

		var frontier, rest RuleSet
		for _, r := range remaining {
			if antecedents[r.Head.Name] {
				rest = append(rest, r)
			} else {
				frontier = append(frontier, r)
			}
		}
		if len(frontier) == 0 {
			return nil, errors.Wrapf(ErrCyclicRuleDependency,
				"no progress with heads %s", strings.Join(remaining.Consequents(), ", "))
		}

		collected = append(collected, frontier)
		remaining = rest
	}

	// Collected output-to-input; flip to input-to-output.
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return collected, nil
}
