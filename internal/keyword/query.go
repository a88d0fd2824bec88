package keyword

import (
	"strings"
	"unicode"

	"github.com/hyperjump/ti4lookup/pkg/utils"
)

// Operator is the match mode of a query term.
type Operator int

const (
	// OpFuzzy matches the term within the edit distance allowed by the threshold.
	OpFuzzy Operator = iota
	// OpInclude ('term) matches the term as an exact substring.
	OpInclude
	// OpExact (=term) matches a name or text equal to the term.
	OpExact
	// OpPrefix (^term) matches a name or text starting with the term.
	OpPrefix
	// OpSuffix (term$) matches a name or text ending with the term.
	OpSuffix
	// OpNot (!term) excludes documents containing the term.
	OpNot
	// OpNotPrefix (!^term) excludes documents starting with the term.
	OpNotPrefix
	// OpNotSuffix (!term$) excludes documents ending with the term.
	OpNotSuffix
)

// Negated reports whether the operator excludes documents.
func (o Operator) Negated() bool {
	return o == OpNot || o == OpNotPrefix || o == OpNotSuffix
}

func (o Operator) String() string {
	switch o {
	case OpFuzzy:
		return "fuzzy"
	case OpInclude:
		return "include"
	case OpExact:
		return "exact"
	case OpPrefix:
		return "prefix"
	case OpSuffix:
		return "suffix"
	case OpNot:
		return "not"
	case OpNotPrefix:
		return "not-prefix"
	case OpNotSuffix:
		return "not-suffix"
	}
	return "unknown"
}

// Term is one operand of a query. Text is folded (lowercase, no diacritics).
type Term struct {
	Op   Operator
	Text string
}

// Query is a disjunction of groups; every term of a group must match.
type Query struct {
	Groups [][]Term
}

// Empty reports whether the query has no terms.
func (q Query) Empty() bool {
	return len(q.Groups) == 0
}

// Terms returns every term of every group in order.
func (q Query) Terms() []Term {
	var out []Term
	for _, g := range q.Groups {
		out = append(out, g...)
	}
	return out
}

// ParseQuery parses the extended syntax. Whitespace separates terms that must all match;
// a standalone "|" separates alternatives. Double quotes keep spaces inside one term.
// Operators with nothing to apply to are kept as literal text.
func ParseQuery(s string) Query {
	var q Query
	var group []Term
	for _, tok := range tokenize(s) {
		if tok == "|" {
			if len(group) > 0 {
				q.Groups = append(q.Groups, group)
			}
			group = nil
			continue
		}
		if t, ok := parseTerm(tok); ok {
			group = append(group, t)
		}
	}
	if len(group) > 0 {
		q.Groups = append(q.Groups, group)
	}
	return q
}

// tokenize splits on whitespace outside double quotes. Quote characters are kept.
func tokenize(s string) []string {
	var (
		out     []string
		b       strings.Builder
		inQuote bool
	)
	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			b.WriteRune(r)
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}

func parseTerm(tok string) (Term, bool) {
	op := OpFuzzy
	body := tok
	switch {
	case strings.HasPrefix(body, "!^"):
		op, body = OpNotPrefix, body[2:]
	case strings.HasPrefix(body, "!"):
		op, body = OpNot, body[1:]
		if len(body) > 1 && strings.HasSuffix(body, "$") {
			op, body = OpNotSuffix, strings.TrimSuffix(body, "$")
		}
	case strings.HasPrefix(body, "^"):
		op, body = OpPrefix, body[1:]
	case strings.HasPrefix(body, "="):
		op, body = OpExact, body[1:]
	case strings.HasPrefix(body, "'"):
		op, body = OpInclude, body[1:]
	case len(body) > 1 && strings.HasSuffix(body, "$"):
		op, body = OpSuffix, strings.TrimSuffix(body, "$")
	}

	text := clean(unquote(body))
	if text == "" {
		// A bare operator is a literal.
		op, text = OpFuzzy, clean(unquote(tok))
	}
	if text == "" {
		return Term{}, false
	}
	return Term{Op: op, Text: text}, true
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return strings.Trim(s, `"`)
}

// clean folds text and drops wildcard characters, which the index would otherwise interpret.
func clean(s string) string {
	s = strings.NewReplacer("*", "", "?", "").Replace(s)
	return utils.CollapseSpace(utils.Fold(s))
}
