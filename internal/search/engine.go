// Package search runs card queries: visibility filtering, fuzzy index lookup, and
// partitioned ordering, with built indexes cached per visibility selection.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/hyperjump/ti4lookup/internal/catalog"
	"github.com/hyperjump/ti4lookup/internal/config"
	"github.com/hyperjump/ti4lookup/internal/keyword"
	"github.com/hyperjump/ti4lookup/internal/metrics"
	"github.com/hyperjump/ti4lookup/internal/models"
	"github.com/hyperjump/ti4lookup/internal/ranking"
	"github.com/hyperjump/ti4lookup/internal/visibility"
)

const defaultCacheSize = 16

// view is the visible collection for one set of options together with its index.
type view struct {
	cards     []*models.Card
	index     keyword.Index
	suggester *keyword.Suggester
	sorter    *ranking.Sorter
}

func (v *view) close(logger *zap.Logger) {
	if err := v.index.Close(); err != nil {
		logger.Warn("failed to close index", zap.Error(err))
	}
}

// Engine answers searches over a catalog. It is safe for concurrent use; Reload swaps
// the catalog while readers keep using the previous snapshot until they return.
type Engine struct {
	mu         sync.RWMutex
	catalog    *catalog.Catalog
	sorter     *ranking.Sorter
	generation uint64
	cache      *lru.Cache

	builder    keyword.Builder
	config     *config.SearchConfig
	sortConfig ranking.SortConfig
	logger     *zap.Logger
}

// Option is a functional option for configuring Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBuilder replaces the bleve index builder.
func WithBuilder(b keyword.Builder) Option {
	return func(e *Engine) {
		if b != nil {
			e.builder = b
		}
	}
}

// WithSortConfig sets the bucket ordering configuration. An empty faction order falls
// back to the order of the catalog's faction table.
func WithSortConfig(sc ranking.SortConfig) Option {
	return func(e *Engine) {
		e.sortConfig = sc
	}
}

// NewEngine creates an engine over cat. cfg may be nil for defaults.
func NewEngine(cat *catalog.Catalog, cfg *config.SearchConfig, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = &config.SearchConfig{}
	}
	e := &Engine{
		config: cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.builder == nil {
		e.builder = keyword.NewBleveBuilder(keyword.Options{
			Threshold:        cfg.Threshold,
			NameWeight:       cfg.NameWeight,
			SearchTextWeight: cfg.SearchTextWeight,
		})
	}

	size := cfg.IndexCacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.NewWithEvict(size, func(key interface{}, value interface{}) {
		if v, ok := value.(*view); ok {
			v.close(e.logger)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index cache: %w", err)
	}
	e.cache = cache
	e.swap(cat)
	return e, nil
}

// Reload replaces the catalog and drops every cached index.
func (e *Engine) Reload(cat *catalog.Catalog) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.swap(cat)
	e.cache.Purge()
	e.logger.Info("catalog reloaded", zap.Int("cards", len(e.catalog.Cards)), zap.Uint64("generation", e.generation))
}

// swap installs cat; callers hold the write lock or own e exclusively.
func (e *Engine) swap(cat *catalog.Catalog) {
	if cat == nil {
		cat = catalog.New(nil)
	}
	sc := e.sortConfig
	if len(sc.FactionOrder) == 0 {
		sc.FactionOrder = cat.FactionOrder()
	}
	e.catalog = cat
	e.sorter = ranking.NewSorter(&sc)
	e.generation++
	metrics.SetCards(len(cat.Cards))
}

// Catalog returns the current catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog
}

// CachedIndexes returns the number of indexes currently held.
func (e *Engine) CachedIndexes() int {
	return e.cache.Len()
}

// Visible returns the cards visible under opts, in catalog order.
func (e *Engine) Visible(opts visibility.Options) []*models.Card {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return visibility.Filter(e.catalog.Cards, opts)
}

// Search runs req. An empty query lists every visible card in the category sorted by
// name; otherwise hits are ranked by score and truncated to the limit.
func (e *Engine) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	if err := ProcessRequest(&req, e.config); err != nil {
		return nil, err
	}

	var (
		resp *Response
		err  error
	)
	mode := ModeQuery
	if req.Query == "" {
		mode = ModeBrowse
		resp = e.browse(req)
	} else {
		resp, err = e.query(ctx, req)
	}
	metrics.IncSearch(string(mode))
	if err != nil {
		metrics.IncSearchError(string(mode))
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.ObserveSearchDuration(string(mode), elapsed)
	resp.QueryTime = elapsed.Milliseconds()
	if req.Category != "" {
		resp.Category = req.Category.Slug()
	}
	e.logger.Debug("search",
		zap.String("query", req.Query),
		zap.String("mode", string(mode)),
		zap.Int("total", resp.Total),
		zap.Duration("elapsed", elapsed),
	)
	return resp, nil
}

func (e *Engine) browse(req Request) *Response {
	e.mu.RLock()
	cards := visibility.Filter(e.catalog.Cards, req.Options)
	sorter := e.sorter
	e.mu.RUnlock()

	cards = inCategory(cards, req.Category)
	sorted := ranking.SortByName(cards)
	results := make([]*Result, len(sorted))
	for i, c := range sorted {
		results[i] = &Result{Card: c, Rank: i + 1}
	}
	return &Response{
		Mode:    ModeBrowse,
		Results: results,
		Buckets: buckets(sorter.Partition(sorted)),
		Total:   len(sorted),
	}
}

func (e *Engine) query(ctx context.Context, req Request) (*Response, error) {
	v, release, err := e.acquire(ctx, req.Options)
	if err != nil {
		return nil, err
	}
	defer release()

	hits, err := v.index.Query(ctx, req.Query, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}
	matched := make([]keyword.Hit, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(v.cards) {
			continue
		}
		if req.Category != "" && !req.Category.Contains(v.cards[h.Position]) {
			continue
		}
		matched = append(matched, h)
	}
	total := len(matched)
	if len(matched) > req.Limit {
		matched = matched[:req.Limit]
	}

	scores := NormalizeScores(matched)
	results := make([]*Result, len(matched))
	cards := make([]*models.Card, len(matched))
	for i, h := range matched {
		cards[i] = v.cards[h.Position]
		results[i] = &Result{Card: cards[i], Score: scores[i], Rank: i + 1}
	}

	resp := &Response{
		Query:   req.Query,
		Mode:    ModeQuery,
		Results: results,
		Buckets: buckets(v.sorter.Partition(cards)),
		Total:   total,
	}
	if total == 0 && e.config.Suggestions > 0 && v.suggester != nil {
		resp.Suggestions = v.suggester.Suggest(req.Query, e.config.Suggestions)
	}
	return resp, nil
}

// acquire returns the cached view for opts, building it on a miss. The returned release
// must be called once the view is no longer used; the view is not closed before that.
func (e *Engine) acquire(ctx context.Context, opts visibility.Options) (*view, func(), error) {
	key := opts.Key()
	for {
		e.mu.RLock()
		if v, ok := e.cache.Get(key); ok {
			return v.(*view), e.mu.RUnlock, nil
		}
		cat, sorter, gen := e.catalog, e.sorter, e.generation
		e.mu.RUnlock()

		built, err := e.build(ctx, cat, sorter, opts)
		if err != nil {
			return nil, nil, err
		}

		e.mu.Lock()
		_, exists := e.cache.Peek(key)
		if gen != e.generation || exists {
			e.mu.Unlock()
			built.close(e.logger)
			continue
		}
		e.cache.Add(key, built)
		e.mu.Unlock()
	}
}

func (e *Engine) build(ctx context.Context, cat *catalog.Catalog, sorter *ranking.Sorter, opts visibility.Options) (*view, error) {
	start := time.Now()
	cards := visibility.Filter(cat.Cards, opts)
	docs := make([]keyword.Document, len(cards))
	for i, c := range cards {
		docs[i] = keyword.Document{Name: c.Name, SearchText: c.SearchText}
	}
	index, err := e.builder.Build(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}
	metrics.IncIndexBuild()
	e.logger.Debug("index built",
		zap.String("key", opts.Key()),
		zap.Int("cards", len(cards)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &view{cards: cards, index: index, suggester: keyword.NewSuggester(docs), sorter: sorter}, nil
}

func inCategory(cards []*models.Card, category models.Category) []*models.Card {
	if category == "" {
		return cards
	}
	out := make([]*models.Card, 0, len(cards))
	for _, c := range cards {
		if category.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}
