package search

import (
	"context"
	"sync"
	"time"

	"github.com/hyperjump/ti4lookup/internal/visibility"
)

// ResultFunc receives the response of a live query. It runs with the session locked and
// must not call back into the session.
type ResultFunc func(*Response, error)

// Session is a live query: every change is debounced and only the response to the
// latest state is delivered. A superseded search is canceled.
type Session struct {
	engine    *Engine
	debouncer *Debouncer
	onResult  ResultFunc

	mu     sync.Mutex
	req    Request
	seq    uint64
	cancel context.CancelFunc
	closed bool
}

// NewSession starts a session with base as the initial request. A delay of zero or less
// uses 50ms.
func NewSession(engine *Engine, base Request, delay time.Duration, onResult ResultFunc) *Session {
	if delay <= 0 {
		delay = 50 * time.Millisecond
	}
	return &Session{
		engine:    engine,
		debouncer: NewDebouncer(delay),
		onResult:  onResult,
		req:       base,
	}
}

// SetQuery changes the query text.
func (s *Session) SetQuery(q string) {
	s.update(func(r *Request) { r.Query = q })
}

// SetOptions changes the visibility options.
func (s *Session) SetOptions(opts visibility.Options) {
	s.update(func(r *Request) { r.Options = opts })
}

// Request returns the current request.
func (s *Session) Request() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.req
}

// Close cancels pending and running searches. No callback fires after Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.seq++
	s.debouncer.Cancel()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) update(change func(*Request)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	change(&s.req)
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.debouncer.Trigger(s.run)
}

func (s *Session) run() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	req, seq := s.req, s.seq
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	resp, err := s.engine.Search(ctx, req)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.seq {
		return
	}
	s.onResult(resp, err)
}
