// Package rules implements the symbolic side of KBANN: propositional
// Horn-like rules with negation, Towell's rewriting of shared consequents
// into disjunctions, and topological layering of a rule set so it can be
// mapped onto a feed-forward network.
package rules

import "strings"

// Literal is a named atomic proposition, optionally negated.
type Literal struct {
	Name    string
	Negated bool
}

func (l Literal) String() string {
	if l.Negated {
		return "not " + l.Name
	}
	return l.Name
}

// Rule is an implication from a conjunction of body literals to a single
// head literal. The head is never negated.
type Rule struct {
	Head Literal
	Body []Literal
}

func (r Rule) String() string {
	parts := make([]string, len(r.Body))
	for i, l := range r.Body {
		parts[i] = l.String()
	}
	return r.Head.Name + " :- " + strings.Join(parts, ", ")
}

// RuleSet is an ordered collection of rules.
type RuleSet []Rule

// Antecedents returns the names of all body literals across the set,
// deduplicated, in first-appearance order.
func (rs RuleSet) Antecedents() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range rs {
		for _, l := range r.Body {
			if !seen[l.Name] {
				seen[l.Name] = true
				names = append(names, l.Name)
			}
		}
	}
	return names
}

// Consequents returns the names of all rule heads across the set,
// deduplicated, in first-appearance order.
func (rs RuleSet) Consequents() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range rs {
		if !seen[r.Head.Name] {
			seen[r.Head.Name] = true
			names = append(names, r.Head.Name)
		}
	}
	return names
}

// headCounts tallies how many rules define each head name.
func (rs RuleSet) headCounts() map[string]int {
	counts := make(map[string]int, len(rs))
	for _, r := range rs {
		counts[r.Head.Name]++
	}
	return counts
}
