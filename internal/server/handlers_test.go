package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/ti4lookup/internal/catalog"
	"github.com/hyperjump/ti4lookup/internal/config"
	"github.com/hyperjump/ti4lookup/internal/models"
	"github.com/hyperjump/ti4lookup/internal/search"
	"github.com/hyperjump/ti4lookup/internal/storage"
)

func testTables() *models.Tables {
	return &models.Tables{
		ActionCards: []models.ActionCard{
			{Name: "Sabotage", Effect: "Cancel an action card.", Version: "base game"},
			{Name: "Mercenary Contract", Effect: "Place 1 ship.", Version: "pok"},
		},
		Technologies: []models.Technology{
			{Name: "Neural Motivator", TechType: "green", Version: "base game"},
			{Name: "Spec Ops II", FactionID: "sol", TechType: "unit upgrade", Version: "base game"},
		},
		Units: []models.Unit{
			{Name: "Carrier", Unit: "carrier", Cost: "3", Version: "base game"},
			{Name: "Genesis", FactionID: "sol", Unit: "flagship", Cost: "8", Version: "base game"},
		},
		Factions: []models.Faction{
			{ID: "sol", Name: "The Federation of Sol", Version: "base game", StartingTechnologies: "Neural Motivator, Antimass Deflectors"},
			{ID: "hacan", Name: "The Emirates of Hacan", Version: "base game"},
		},
	}
}

type fakeReloader struct {
	calls int
	err   error
}

func (f *fakeReloader) Reload(context.Context) error {
	f.calls++
	return f.err
}

func newTestServer(t *testing.T, reloader Reloader) *Server {
	t.Helper()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Data.Path = t.TempDir()

	engine, err := search.NewEngine(catalog.New(testTables()), &cfg.Search)
	if err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewServer(engine, store, reloader, cfg, zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

type searchOut struct {
	Mode    string `json:"mode"`
	Total   int    `json:"total"`
	Results []struct {
		Card struct {
			Name      string `json:"name"`
			FactionID string `json:"faction_id"`
		} `json:"card"`
	} `json:"results"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestHandleHealthAndStatus(t *testing.T) {
	h := newTestServer(t, nil).Router()

	w := do(t, h, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health status: got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/api/v1/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		Cards    int `json:"cards"`
		Factions int `json:"factions"`
	}
	decode(t, w, &out)
	if out.Cards != 6 || out.Factions != 2 {
		t.Errorf("status = %+v", out)
	}

	if w := do(t, h, http.MethodGet, "/metrics", nil); w.Code != http.StatusOK {
		t.Errorf("metrics status: got %d", w.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	h := newTestServer(t, nil).Router()

	tests := []struct {
		name      string
		body      interface{}
		wantCode  int
		wantFirst string
		wantTotal int
	}{
		{"query", map[string]interface{}{"query": "sabotage"}, http.StatusOK, "Sabotage", -1},
		{"browse", map[string]interface{}{"query": ""}, http.StatusOK, "Carrier", 5},
		{"expansions", map[string]interface{}{"query": "mercenary", "expansions": []string{"pok"}}, http.StatusOK, "Mercenary Contract", -1},
		{"faction name", map[string]interface{}{"faction": "federation of sol"}, http.StatusOK, "Genesis", 2},
		{"category", map[string]interface{}{"category": "units"}, http.StatusOK, "Carrier", 2},
		{"bad body", "{", http.StatusBadRequest, "", 0},
		{"bad category", map[string]interface{}{"category": "spells"}, http.StatusBadRequest, "", 0},
		{"bad expansion", map[string]interface{}{"expansions": []string{"pok5"}}, http.StatusBadRequest, "", 0},
		{"unknown faction", map[string]interface{}{"faction": "zzzzqqq"}, http.StatusNotFound, "", 0},
		{"unknown profile", map[string]interface{}{"profile": "7d444840-9dc0-11d1-b245-5ffdce74fad2"}, http.StatusNotFound, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/search", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var out searchOut
			decode(t, w, &out)
			if len(out.Results) == 0 || out.Results[0].Card.Name != tt.wantFirst {
				t.Errorf("results = %+v, want first %s", out.Results, tt.wantFirst)
			}
			if tt.wantTotal >= 0 && out.Total != tt.wantTotal {
				t.Errorf("total = %d, want %d", out.Total, tt.wantTotal)
			}
		})
	}
}

func TestHandleCategories(t *testing.T) {
	h := newTestServer(t, nil).Router()

	w := do(t, h, http.MethodGet, "/api/v1/categories/action_cards?expansions=pok", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	var out searchOut
	decode(t, w, &out)
	if out.Total != 2 || out.Mode != "browse" {
		t.Errorf("action cards with pok = %+v", out)
	}

	if w := do(t, h, http.MethodGet, "/api/v1/categories/spells", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown slug: code = %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/v1/categories/units?limit=x", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: code = %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/api/v1/categories", nil)
	var list struct {
		Categories []struct {
			Slug  string `json:"slug"`
			Count int    `json:"count"`
		} `json:"categories"`
	}
	decode(t, w, &list)
	counts := map[string]int{}
	for _, c := range list.Categories {
		counts[c.Slug] = c.Count
	}
	if len(list.Categories) != len(models.Categories) || counts["technologies"] != 2 || counts["action_cards"] != 1 {
		t.Errorf("categories = %+v", list.Categories)
	}
}

func TestHandleFactions(t *testing.T) {
	h := newTestServer(t, nil).Router()

	w := do(t, h, http.MethodGet, "/api/v1/factions", nil)
	var list struct {
		Factions []models.Faction `json:"factions"`
	}
	decode(t, w, &list)
	if len(list.Factions) != 2 || list.Factions[0].ID != "sol" {
		t.Errorf("factions = %+v", list.Factions)
	}

	w = do(t, h, http.MethodGet, "/api/v1/factions/sol", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	var view struct {
		Faction       models.Faction         `json:"faction"`
		StartingTechs []catalog.StartingTech `json:"starting_techs"`
		Search        searchOut              `json:"search"`
	}
	decode(t, w, &view)
	if view.Faction.ID != "sol" || view.Search.Total != 2 {
		t.Errorf("faction view = %+v", view)
	}
	if len(view.StartingTechs) != 2 || view.StartingTechs[0].Color != "green" || view.StartingTechs[1].Color != "" {
		t.Errorf("starting techs = %+v", view.StartingTechs)
	}

	if w := do(t, h, http.MethodGet, "/api/v1/factions/zzzzqqq", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown faction: code = %d", w.Code)
	}
}

func TestHandleProfiles(t *testing.T) {
	h := newTestServer(t, nil).Router()

	w := do(t, h, http.MethodPost, "/api/v1/profiles", map[string]string{"name": "me"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: code = %d", w.Code)
	}
	var p models.Profile
	decode(t, w, &p)
	if p.ID == "" || p.Name != "me" {
		t.Fatalf("profile = %+v", p)
	}
	base := "/api/v1/profiles/" + p.ID

	w = do(t, h, http.MethodPost, base+"/expansions/thundersEdge/toggle", nil)
	decode(t, w, &p)
	if len(p.Preferences.Expansions) != 5 {
		t.Errorf("after toggle on: %v", p.Preferences.Expansions)
	}
	w = do(t, h, http.MethodPost, base+"/expansions/thundersEdge/toggle", nil)
	p = models.Profile{}
	decode(t, w, &p)
	if len(p.Preferences.Expansions) != 0 {
		t.Errorf("after toggle off: %v", p.Preferences.Expansions)
	}
	if w := do(t, h, http.MethodPost, base+"/expansions/pok9/toggle", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad expansion: code = %d", w.Code)
	}

	update := map[string]interface{}{"preferences": map[string]interface{}{
		"theme": "light", "expansions": []string{"pok"}, "include_retired": false,
	}}
	if w := do(t, h, http.MethodPut, base, update); w.Code != http.StatusOK {
		t.Fatalf("update: code = %d", w.Code)
	}

	// profile expansions apply when the request leaves them out, and the query is recorded
	w = do(t, h, http.MethodPost, "/api/v1/search", map[string]string{"query": "mercenary", "profile": p.ID})
	var out searchOut
	decode(t, w, &out)
	if len(out.Results) == 0 || out.Results[0].Card.Name != "Mercenary Contract" {
		t.Errorf("profile search = %+v", out.Results)
	}

	w = do(t, h, http.MethodGet, base, nil)
	p = models.Profile{}
	decode(t, w, &p)
	if p.Preferences.Theme != models.ThemeLight {
		t.Errorf("theme = %q", p.Preferences.Theme)
	}
	if len(p.Preferences.RecentSearches) != 1 || p.Preferences.RecentSearches[0] != "mercenary" {
		t.Errorf("recent = %v", p.Preferences.RecentSearches)
	}

	if w := do(t, h, http.MethodGet, "/api/v1/profiles/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing profile: code = %d", w.Code)
	}
}

func TestHandleSearch_ConcurrentRecents(t *testing.T) {
	h := newTestServer(t, nil).Router()
	w := do(t, h, http.MethodPost, "/api/v1/profiles", map[string]string{"name": "busy"})
	var p models.Profile
	decode(t, w, &p)

	const n = 8
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"query":"sabotage %d","profile":%q}`, i, p.ID)
			r := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()
	for i, code := range codes {
		if code != http.StatusOK {
			t.Fatalf("search %d: code = %d", i, code)
		}
	}

	w = do(t, h, http.MethodGet, "/api/v1/profiles/"+p.ID, nil)
	p = models.Profile{}
	decode(t, w, &p)
	if len(p.Preferences.RecentSearches) != n {
		t.Errorf("recent = %v, want %d entries", p.Preferences.RecentSearches, n)
	}
}

func TestHandleReload(t *testing.T) {
	if w := do(t, newTestServer(t, nil).Router(), http.MethodPost, "/api/v1/reload", nil); w.Code != http.StatusNotImplemented {
		t.Errorf("no reloader: code = %d", w.Code)
	}

	fr := &fakeReloader{}
	h := newTestServer(t, fr).Router()
	if w := do(t, h, http.MethodPost, "/api/v1/reload", nil); w.Code != http.StatusOK || fr.calls != 1 {
		t.Errorf("reload: code = %d, calls = %d", w.Code, fr.calls)
	}
	fr.err = errors.New("boom")
	if w := do(t, h, http.MethodPost, "/api/v1/reload", nil); w.Code != http.StatusInternalServerError {
		t.Errorf("failing reload: code = %d", w.Code)
	}
}
