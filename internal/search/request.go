package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/ti4lookup/internal/config"
	"github.com/hyperjump/ti4lookup/internal/models"
	"github.com/hyperjump/ti4lookup/internal/ranking"
	"github.com/hyperjump/ti4lookup/internal/visibility"
)

// ErrUnknownCategory is returned for a category that is neither a card type nor relic.
var ErrUnknownCategory = errors.New("unknown category")

// Mode tells whether a response lists every visible card or ranks query hits.
type Mode string

const (
	ModeBrowse Mode = "browse"
	ModeQuery  Mode = "query"
)

// Request is one search over the visible collection.
type Request struct {
	Query string
	// Limit caps ranked results; zero picks the category or global default. Browse mode ignores it.
	Limit int
	// Category restricts results when non-empty.
	Category models.Category
	Options  visibility.Options
}

// Result is one ranked card.
type Result struct {
	Card *models.Card `json:"card"`
	// Score is the match score relative to the best hit, 0 in browse mode.
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// BucketResult is one non-empty display bucket.
type BucketResult struct {
	Bucket ranking.Bucket `json:"bucket"`
	Cards  []*models.Card `json:"cards"`
}

// Response is the outcome of a search.
type Response struct {
	Query       string          `json:"query"`
	Mode        Mode            `json:"mode"`
	Category    string          `json:"category,omitempty"`
	Results     []*Result       `json:"results"`
	Buckets     []*BucketResult `json:"buckets"`
	Total       int             `json:"total"`
	QueryTime   int64           `json:"query_time_ms"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

// ProcessRequest validates req and applies defaults from cfg.
func ProcessRequest(req *Request, cfg *config.SearchConfig) error {
	req.Query = strings.TrimSpace(req.Query)
	if req.Limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", req.Limit)
	}
	if req.Category != "" && req.Category.Slug() == "" {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, req.Category)
	}
	if req.Limit == 0 {
		req.Limit = DefaultLimit(req.Category, cfg)
	}
	req.Options.FactionID = strings.ToLower(strings.TrimSpace(req.Options.FactionID))
	if req.Options.Selection == nil {
		req.Options.Selection = visibility.NewSelection()
	}
	return nil
}

// DefaultLimit returns the result cap for a category (50) or for all cards (120).
func DefaultLimit(category models.Category, cfg *config.SearchConfig) int {
	categoryLimit, globalLimit := 50, 120
	if cfg != nil {
		if cfg.CategoryLimit > 0 {
			categoryLimit = cfg.CategoryLimit
		}
		if cfg.GlobalLimit > 0 {
			globalLimit = cfg.GlobalLimit
		}
	}
	if category != "" {
		return categoryLimit
	}
	return globalLimit
}

// buckets converts a partition to display order, dropping empty buckets.
func buckets(p ranking.Partitioned) []*BucketResult {
	out := make([]*BucketResult, 0, len(p))
	for _, b := range ranking.Order {
		if cards := p[b]; len(cards) > 0 {
			out = append(out, &BucketResult{Bucket: b, Cards: cards})
		}
	}
	return out
}
