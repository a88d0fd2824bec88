package watcher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/ti4lookup/internal/catalog"
	"github.com/hyperjump/ti4lookup/internal/data"
	"github.com/hyperjump/ti4lookup/internal/metrics"
	"github.com/hyperjump/ti4lookup/internal/search"
)

// Reloader loads the tables at path and swaps the resulting catalog into an engine.
// A failed load keeps the previous catalog.
type Reloader struct {
	mu     sync.Mutex
	path   string
	engine *search.Engine
	logger *zap.Logger
}

// NewReloader returns a Reloader for the data at path.
func NewReloader(path string, engine *search.Engine, logger *zap.Logger) *Reloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reloader{path: path, engine: engine, logger: logger}
}

// Reload reads the data and replaces the engine's catalog. Concurrent calls run one at a time.
func (r *Reloader) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := time.Now()
	tables, err := data.LoadPath(ctx, r.path, r.logger)
	if err != nil {
		metrics.IncReload(false)
		r.logger.Warn("reload failed, keeping previous catalog", zap.String("path", r.path), zap.Error(err))
		return err
	}
	r.engine.Reload(catalog.New(tables))
	metrics.IncReload(true)
	r.logger.Info("data reloaded", zap.String("path", r.path), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// OnChange returns a callback for Watcher that reloads with a bounded context.
func (r *Reloader) OnChange(timeout time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = r.Reload(ctx)
	}
}
