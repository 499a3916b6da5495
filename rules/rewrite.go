package rules

import "strconv"

// Rewrite resolves heads defined by more than one rule into disjunctions,
// following Towell's rewriting algorithm. Each rule `H :- B` whose head
// has multiple definitions becomes the pair `H :- H<n>` and `H<n> :- B`,
// where H<n> is a fresh intermediate literal. The counter n is seeded at
// the input rule count, so fresh names cannot collide with existing ones.
//
// The result is a newly built RuleSet in which every head has at most one
// defining rule reachable through a chain of intermediates; the receiver
// is left untouched. Rewriting a set whose heads are already unique
// returns an equivalent copy.
func (rs RuleSet) Rewrite() RuleSet {
	counts := rs.headCounts()

	out := make(RuleSet, 0, len(rs))
	for _, r := range rs {
		if counts[r.Head.Name] == 1 {
			out = append(out, r)
		}
	}

	counter := len(rs)
	for _, r := range rs {
		if counts[r.Head.Name] == 1 {
			continue
		}
		fresh := Literal{Name: r.Head.Name + strconv.Itoa(counter)}
		counter++
		out = append(out,
			Rule{Head: r.Head, Body: []Literal{fresh}},
			Rule{Head: fresh, Body: r.Body},
		)
	}

	return out
}
