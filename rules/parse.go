package rules

import (
	"bufio"
	goerrors "errors"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedRuleLine reports a rule line without the head/body colon
// separator.
var ErrMalformedRuleLine = goerrors.New("rule line is missing the head/body separator")

// cleanser strips the characters the rule format treats as noise:
// whitespace, hyphens and periods.
var cleanser = strings.NewReplacer(" ", "", "\t", "", "-", "", ".", "")

func cleanse(s string) string {
	return cleanser.Replace(s)
}

// Parse reads a rule set, one rule per line, in the form
//
//	Head : Body1, Body2, not Body3.
//
// A body literal prefixed with the token "not" is negated. Whitespace,
// hyphens and periods are stripped from names. Blank lines are skipped.
func Parse(r io.Reader) (RuleSet, error) {
	var ruleset RuleSet

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		head, rest, found := strings.Cut(line, ":")
		if !found {
			return nil, errors.Wrapf(ErrMalformedRuleLine, "line %d: %q", lineNum, line)
		}

		rule := Rule{Head: Literal{Name: cleanse(head)}}
		for _, tok := range strings.Split(rest, ",") {
			tok = strings.TrimSpace(tok)
			negated := false
			if strings.HasPrefix(tok, "not ") {
				negated = true
				tok = strings.TrimPrefix(tok, "not ")
			}
			rule.Body = append(rule.Body, Literal{Name: cleanse(tok), Negated: negated})
		}
		ruleset = append(ruleset, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading rules")
	}

	return ruleset, nil
}

// Load reads a rule set from a file.
func Load(path string) (RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening rule file")
	}
	defer f.Close()

	rs, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return rs, nil
}
