package keyword

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/ti4lookup/pkg/utils"
)

const (
	fieldName       = "name"
	fieldSearchText = "search_text"
	// whole-value copies, used by substring and anchored operators
	fieldNameKey   = "name_key"
	fieldSearchKey = "search_key"
)

// fieldQuery is a leaf query that can be targeted at one field and boosted.
type fieldQuery interface {
	blevequery.FieldableQuery
	SetBoost(b float64)
}

// BleveBuilder builds in-memory bleve indexes.
type BleveBuilder struct {
	opts Options
}

// NewBleveBuilder returns a builder using opts. Zero weights fall back to the defaults.
func NewBleveBuilder(opts Options) *BleveBuilder {
	def := DefaultOptions()
	if opts.NameWeight <= 0 {
		opts.NameWeight = def.NameWeight
	}
	if opts.SearchTextWeight <= 0 {
		opts.SearchTextWeight = def.SearchTextWeight
	}
	if opts.Threshold < 0 {
		opts.Threshold = def.Threshold
	}
	return &BleveBuilder{opts: opts}
}

func newIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.Dynamic = false
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) keeps card terms matchable by edit distance.
	textFieldMapping.Analyzer = standard.Name
	textFieldMapping.Store = false
	textFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(fieldName, textFieldMapping)
	docMapping.AddFieldMappingsAt(fieldSearchText, textFieldMapping)

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	keywordFieldMapping.Store = false
	keywordFieldMapping.IncludeTermVectors = false
	keywordFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(fieldNameKey, keywordFieldMapping)
	docMapping.AddFieldMappingsAt(fieldSearchKey, keywordFieldMapping)

	im.DefaultMapping = docMapping
	im.DefaultAnalyzer = standard.Name
	return im
}

// Build indexes docs into a fresh in-memory index.
func (b *BleveBuilder) Build(ctx context.Context, docs []Document) (Index, error) {
	index, err := bleve.NewMemOnly(newIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	batch := index.NewBatch()
	for i, d := range docs {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				_ = index.Close()
				return nil, err
			}
		}
		name := utils.CollapseSpace(utils.Fold(d.Name))
		text := utils.CollapseSpace(utils.Fold(d.SearchText))
		if err := batch.Index(strconv.Itoa(i), map[string]interface{}{
			fieldName:       name,
			fieldSearchText: text,
			fieldNameKey:    name,
			fieldSearchKey:  text,
		}); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to index document %d: %w", i, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to commit Bleve batch: %w", err)
	}
	return &BleveIndex{index: index, opts: b.opts, size: len(docs)}, nil
}

// BleveIndex implements Index using an in-memory bleve index.
type BleveIndex struct {
	index bleve.Index
	opts  Options
	size  int
}

// Len returns the number of indexed documents.
func (b *BleveIndex) Len() int { return b.size }

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// Query parses text with ParseQuery and runs it. All hits are ranked before truncation so
// that equal scores keep document order.
func (b *BleveIndex) Query(ctx context.Context, text string, limit int) ([]Hit, error) {
	parsed := ParseQuery(text)
	if parsed.Empty() || b.size == 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequest(b.buildQuery(parsed))
	req.Size = b.size
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	hits := make([]Hit, 0, len(results.Hits))
	for _, h := range results.Hits {
		pos, err := strconv.Atoi(h.ID)
		if err != nil {
			continue
		}
		hits = append(hits, Hit{Position: pos, Score: h.Score})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Position < hits[j].Position
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (b *BleveIndex) buildQuery(q Query) blevequery.Query {
	groups := make([]blevequery.Query, 0, len(q.Groups))
	for _, g := range q.Groups {
		groups = append(groups, b.groupQuery(g))
	}
	if len(groups) == 1 {
		return groups[0]
	}
	return bleve.NewDisjunctionQuery(groups...)
}

// groupQuery requires every positive term and rejects every negated one.
func (b *BleveIndex) groupQuery(terms []Term) blevequery.Query {
	var must, mustNot []blevequery.Query
	for _, t := range terms {
		if t.Op.Negated() {
			mustNot = append(mustNot, b.termQuery(t))
		} else {
			must = append(must, b.termQuery(t))
		}
	}
	if len(mustNot) == 0 {
		if len(must) == 1 {
			return must[0]
		}
		return bleve.NewConjunctionQuery(must...)
	}
	if len(must) == 0 {
		must = append(must, bleve.NewMatchAllQuery())
	}
	return blevequery.NewBooleanQuery(must, nil, mustNot)
}

func (b *BleveIndex) termQuery(t Term) blevequery.Query {
	switch t.Op {
	case OpInclude, OpNot:
		return b.keyQuery(func() fieldQuery { return bleve.NewWildcardQuery("*" + t.Text + "*") })
	case OpExact:
		return b.keyQuery(func() fieldQuery { return bleve.NewTermQuery(t.Text) })
	case OpPrefix, OpNotPrefix:
		return b.keyQuery(func() fieldQuery { return bleve.NewPrefixQuery(t.Text) })
	case OpSuffix, OpNotSuffix:
		return b.keyQuery(func() fieldQuery { return bleve.NewWildcardQuery("*" + t.Text) })
	}
	return b.fuzzyQuery(t.Text)
}

// fuzzyQuery matches a word by edit distance or as a substring of any token. Multi-word
// terms match as phrases, or as substrings of the whole field.
func (b *BleveIndex) fuzzyQuery(text string) blevequery.Query {
	substring := b.keyQuery(func() fieldQuery { return bleve.NewWildcardQuery("*" + text + "*") })
	words := utils.Words(text)
	if len(words) == 0 {
		return substring
	}

	qs := []blevequery.Query{substring}
	for _, f := range []struct {
		field string
		boost float64
	}{
		{fieldName, b.opts.NameWeight},
		{fieldSearchText, b.opts.SearchTextWeight},
	} {
		if len(words) > 1 {
			pq := bleve.NewMatchPhraseQuery(text)
			pq.SetField(f.field)
			pq.SetBoost(f.boost)
			qs = append(qs, pq)
			continue
		}
		w := words[0]
		var exact fieldQuery
		if fz := Fuzziness(w, b.opts.Threshold); fz > 0 {
			fq := bleve.NewFuzzyQuery(w)
			fq.SetFuzziness(fz)
			exact = fq
		} else {
			exact = bleve.NewTermQuery(w)
		}
		exact.SetField(f.field)
		exact.SetBoost(f.boost)
		wq := bleve.NewWildcardQuery("*" + w + "*")
		wq.SetField(f.field)
		wq.SetBoost(f.boost)
		qs = append(qs, exact, wq)
	}
	return bleve.NewDisjunctionQuery(qs...)
}

// keyQuery applies one query shape to both whole-value fields.
func (b *BleveIndex) keyQuery(mk func() fieldQuery) blevequery.Query {
	name := mk()
	name.SetField(fieldNameKey)
	name.SetBoost(b.opts.NameWeight)
	text := mk()
	text.SetField(fieldSearchKey)
	text.SetBoost(b.opts.SearchTextWeight)
	return bleve.NewDisjunctionQuery(name, text)
}
