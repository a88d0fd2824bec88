package keyword

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/hyperjump/ti4lookup/pkg/utils"
)

// Suggestion is a vocabulary word proposed for a query word.
type Suggestion struct {
	Term      string // The suggested word
	Distance  int    // Edit distance from the original word
	Frequency int    // Number of documents containing the word
}

// Suggester proposes corrected queries from the vocabulary of a document set.
type Suggester struct {
	vocab       []string
	freq        map[string]int
	maxDistance int
	minLength   int
}

// SuggesterOption is a functional option for configuring Suggester.
type SuggesterOption func(*Suggester)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SuggesterOption {
	return func(s *Suggester) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinLength sets the shortest word that is checked at all.
func WithMinLength(n int) SuggesterOption {
	return func(s *Suggester) {
		if n > 0 {
			s.minLength = n
		}
	}
}

// NewSuggester builds a vocabulary from the words of docs.
func NewSuggester(docs []Document, opts ...SuggesterOption) *Suggester {
	s := &Suggester{
		freq:        make(map[string]int),
		maxDistance: 2,
		minLength:   3,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, d := range docs {
		seen := make(map[string]struct{})
		for _, w := range utils.Words(utils.Fold(d.Name + " " + d.SearchText)) {
			if len([]rune(w)) < 2 {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			s.freq[w]++
		}
	}
	s.vocab = make([]string, 0, len(s.freq))
	for w := range s.freq {
		s.vocab = append(s.vocab, w)
	}
	sort.Strings(s.vocab)
	return s
}

// Known reports whether word occurs in the vocabulary.
func (s *Suggester) Known(word string) bool {
	_, ok := s.freq[utils.Fold(word)]
	return ok
}

// Candidates returns up to n vocabulary words close to word, best first. Words containing
// the input's letters in order are allowed twice the edit budget.
func (s *Suggester) Candidates(word string, n int) []Suggestion {
	word = utils.Fold(word)
	if len([]rune(word)) < s.minLength || s.Known(word) {
		return nil
	}

	byTerm := make(map[string]Suggestion)
	for _, r := range fuzzy.RankFind(word, s.vocab) {
		if r.Distance <= 2*s.maxDistance {
			byTerm[r.Target] = Suggestion{Term: r.Target, Distance: r.Distance, Frequency: s.freq[r.Target]}
		}
	}
	for _, v := range s.vocab {
		if _, ok := byTerm[v]; ok {
			continue
		}
		if abs(len(v)-len(word)) > s.maxDistance {
			continue
		}
		if d := fuzzy.LevenshteinDistance(word, v); d <= s.maxDistance {
			byTerm[v] = Suggestion{Term: v, Distance: d, Frequency: s.freq[v]}
		}
	}

	out := make([]Suggestion, 0, len(byTerm))
	for _, sg := range byTerm {
		out = append(out, sg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Term < out[j].Term
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Suggest returns up to n corrected forms of query. The first unknown word varies across
// the alternatives; later unknown words take their best candidate. Negated terms and
// operators are left as written. Returns nil when nothing can be corrected.
func (s *Suggester) Suggest(query string, n int) []string {
	if n <= 0 {
		return nil
	}
	words := strings.Fields(query)
	first := -1
	var alternatives []Suggestion
	corrected := make([]string, len(words))
	for i, w := range words {
		corrected[i] = w
		if !isPlainWord(w) {
			continue
		}
		cands := s.Candidates(w, n)
		if len(cands) == 0 {
			continue
		}
		if first < 0 {
			first = i
			alternatives = cands
		}
		corrected[i] = cands[0].Term
	}
	if first < 0 {
		return nil
	}

	out := make([]string, 0, len(alternatives))
	for _, alt := range alternatives {
		corrected[first] = alt.Term
		out = append(out, strings.Join(corrected, " "))
	}
	return out
}

// isPlainWord reports whether w is an operator-free term made only of letters and digits.
func isPlainWord(w string) bool {
	parts := utils.Words(w)
	return len(parts) == 1 && parts[0] == w
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
