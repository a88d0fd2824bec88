package search

import (
	"testing"
	"time"
)

func TestSession_DeliversLatestOnly(t *testing.T) {
	e := newTestEngine(t)
	got := make(chan *Response, 8)
	s := NewSession(e, Request{}, 20*time.Millisecond, func(resp *Response, err error) {
		if err != nil {
			t.Errorf("session search: %v", err)
			return
		}
		got <- resp
	})
	defer s.Close()

	for _, q := range []string{"s", "sa", "sab", "sabotage"} {
		s.SetQuery(q)
	}

	select {
	case resp := <-got:
		if resp.Query != "sabotage" {
			t.Errorf("delivered query %q, want sabotage", resp.Query)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no result delivered")
	}
	select {
	case resp := <-got:
		t.Errorf("unexpected extra delivery for %q", resp.Query)
	case <-time.After(100 * time.Millisecond):
	}
	if s.Request().Query != "sabotage" {
		t.Errorf("Request().Query = %q", s.Request().Query)
	}
}

func TestSession_CloseStopsDelivery(t *testing.T) {
	e := newTestEngine(t)
	delivered := make(chan struct{}, 1)
	s := NewSession(e, Request{}, 30*time.Millisecond, func(*Response, error) {
		delivered <- struct{}{}
	})
	s.SetQuery("carrier")
	s.Close()
	s.SetQuery("genesis")
	select {
	case <-delivered:
		t.Error("callback fired after Close")
	case <-time.After(120 * time.Millisecond):
	}
}
