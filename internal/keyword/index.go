// Package keyword provides the fuzzy card index: an in-memory bleve index over card names
// and search text with an extended query syntax.
package keyword

import (
	"context"
)

// Document is one searchable entry. Its position in the slice passed to Build is its identity.
type Document struct {
	Name       string
	SearchText string
}

// Hit is a single query match.
type Hit struct {
	// Position is the index of the matching document in the built slice.
	Position int
	Score    float64
}

// Builder constructs an Index over a fixed set of documents.
type Builder interface {
	Build(ctx context.Context, docs []Document) (Index, error)
}

// Index answers queries over the documents it was built from. It is not updatable;
// build a new one when the documents change.
type Index interface {
	// Query returns at most limit hits ordered by descending score, ties by position.
	// A limit of zero or less returns every hit.
	Query(ctx context.Context, text string, limit int) ([]Hit, error)
	// Len returns the number of indexed documents.
	Len() int
	Close() error
}

// Options tune matching.
type Options struct {
	// Threshold scales the allowed edit distance per term: floor(Threshold * len(term)), at most 2.
	Threshold float64
	// NameWeight and SearchTextWeight are relative field boosts.
	NameWeight       float64
	SearchTextWeight float64
}

// DefaultOptions returns the standard matching options.
func DefaultOptions() Options {
	return Options{
		Threshold:        0.3,
		NameWeight:       0.5,
		SearchTextWeight: 0.5,
	}
}

const maxFuzziness = 2

// Fuzziness returns the allowed edit distance for a term under threshold.
func Fuzziness(term string, threshold float64) int {
	if threshold <= 0 {
		return 0
	}
	n := int(threshold * float64(len([]rune(term))))
	if n > maxFuzziness {
		n = maxFuzziness
	}
	return n
}
