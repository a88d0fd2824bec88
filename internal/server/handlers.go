package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/ti4lookup/internal/catalog"
	"github.com/hyperjump/ti4lookup/internal/models"
	"github.com/hyperjump/ti4lookup/internal/search"
	"github.com/hyperjump/ti4lookup/internal/storage"
	"github.com/hyperjump/ti4lookup/internal/visibility"
)

type searchRequest struct {
	Query    string `json:"query"`
	Limit    int    `json:"limit"`
	Category string `json:"category"`
	// Faction is a faction id or name; names are resolved fuzzily.
	Faction        string   `json:"faction"`
	Expansions     []string `json:"expansions"`
	IncludeRetired *bool    `json:"include_retired"`
	// Profile supplies defaults for expansions and include_retired and records the query.
	Profile string `json:"profile"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", body.Query), zap.Int("limit", body.Limit))

	var category models.Category
	if body.Category != "" {
		c, ok := models.CategoryFromSlug(body.Category)
		if !ok {
			s.respondError(w, http.StatusBadRequest, "unknown category: "+body.Category)
			return
		}
		category = c
	}
	factionID := ""
	if body.Faction != "" {
		f, ok := catalog.ResolveFaction(s.engine.Catalog().Factions, body.Faction)
		if !ok {
			s.respondError(w, http.StatusNotFound, "faction not found: "+body.Faction)
			return
		}
		factionID = f.ID
	}
	opts := queryOptions{
		Query:          body.Query,
		Limit:          body.Limit,
		Expansions:     body.Expansions,
		IncludeRetired: body.IncludeRetired,
		Profile:        body.Profile,
	}
	s.runSearch(w, r, opts, category, factionID)
}

// runSearch resolves visibility from opts and the optional profile, runs the search, and
// records non-empty queries in the profile's recent searches.
func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, opts queryOptions, category models.Category, factionID string) {
	ctx := r.Context()
	visOpts, profile, status, err := s.visibility(ctx, opts)
	if err != nil {
		s.respondError(w, status, err.Error())
		return
	}
	visOpts.FactionID = factionID

	resp, err := s.engine.Search(ctx, search.Request{
		Query:    opts.Query,
		Limit:    opts.Limit,
		Category: category,
		Options:  visOpts,
	})
	if err != nil {
		if errors.Is(err, search.ErrUnknownCategory) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile != nil && resp.Mode == search.ModeQuery {
		if _, err := s.updateProfile(ctx, profile.ID, func(p *models.Profile) {
			p.Preferences.AddRecent(opts.Query)
		}); err != nil {
			s.logger.Warn("failed to record recent search", zap.String("profile", profile.ID), zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// visibility builds filter options. Explicit parameters win over the profile's preferences.
func (s *Server) visibility(ctx context.Context, opts queryOptions) (visibility.Options, *models.Profile, int, error) {
	var out visibility.Options
	var profile *models.Profile
	if opts.Profile != "" {
		if s.store == nil {
			return out, nil, http.StatusNotImplemented, errors.New("preferences not enabled")
		}
		p, err := s.store.GetProfile(ctx, opts.Profile)
		if errors.Is(err, storage.ErrNotFound) {
			return out, nil, http.StatusNotFound, err
		}
		if err != nil {
			return out, nil, http.StatusInternalServerError, err
		}
		profile = p
		out.Selection = visibility.NewSelection(p.Preferences.Expansions...)
		out.IncludeRetired = p.Preferences.IncludeRetired
	}
	if opts.Expansions != nil {
		sel, err := visibility.ParseSelection(opts.Expansions)
		if err != nil {
			return out, nil, http.StatusBadRequest, err
		}
		out.Selection = sel
	}
	if opts.IncludeRetired != nil {
		out.IncludeRetired = *opts.IncludeRetired
	}
	return out, profile, http.StatusOK, nil
}

type categoryInfo struct {
	Slug  string `json:"slug"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	opts, err := parseQueryOptions(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	visOpts, _, status, err := s.visibility(r.Context(), opts)
	if err != nil {
		s.respondError(w, status, err.Error())
		return
	}
	cards := s.engine.Visible(visOpts)
	out := make([]categoryInfo, 0, len(models.Categories))
	for _, c := range models.Categories {
		n := 0
		for _, card := range cards {
			if c.Contains(card) {
				n++
			}
		}
		out = append(out, categoryInfo{Slug: c.Slug(), Type: string(c), Count: n})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"categories": out})
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	category, ok := models.CategoryFromSlug(slug)
	if !ok {
		s.respondError(w, http.StatusNotFound, "unknown category: "+slug)
		return
	}
	opts, err := parseQueryOptions(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.runSearch(w, r, opts, category, "")
}

func (s *Server) handleFactions(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"factions": s.engine.Catalog().Factions})
}

type factionResponse struct {
	Faction            models.Faction         `json:"faction"`
	StartingTechPrefix string                 `json:"starting_tech_prefix,omitempty"`
	StartingTechs      []catalog.StartingTech `json:"starting_techs"`
	Search             *search.Response       `json:"search"`
}

func (s *Server) handleFaction(w http.ResponseWriter, r *http.Request) {
	cat := s.engine.Catalog()
	f, ok := catalog.ResolveFaction(cat.Factions, chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "faction not found")
		return
	}
	opts, err := parseQueryOptions(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	visOpts, _, status, err := s.visibility(r.Context(), opts)
	if err != nil {
		s.respondError(w, status, err.Error())
		return
	}
	visOpts.FactionID = f.ID
	resp, err := s.engine.Search(r.Context(), search.Request{Query: opts.Query, Limit: opts.Limit, Options: visOpts})
	if err != nil {
		s.logger.Error("faction search failed", zap.String("faction", f.ID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	prefix, techs := cat.StartingTechs(f)
	s.respondJSON(w, http.StatusOK, factionResponse{
		Faction:            f,
		StartingTechPrefix: prefix,
		StartingTechs:      techs,
		Search:             resp,
	})
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotImplemented, "preferences not enabled")
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	p, err := s.store.CreateProfile(r.Context(), body.Name)
	if err != nil {
		s.logger.Error("create profile failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotImplemented, "preferences not enabled")
		return
	}
	var body struct {
		Name        string              `json:"name"`
		Preferences *models.Preferences `json:"preferences"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := s.updateProfile(r.Context(), chi.URLParam(r, "id"), func(p *models.Profile) {
		if body.Name != "" {
			p.Name = body.Name
		}
		if body.Preferences != nil {
			p.Preferences = *body.Preferences
		}
	})
	if err != nil {
		s.respondProfileError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleToggleExpansion(w http.ResponseWriter, r *http.Request) {
	id, ok := models.ParseExpansionID(chi.URLParam(r, "expansion"))
	if !ok {
		s.respondError(w, http.StatusBadRequest, "unknown expansion: "+chi.URLParam(r, "expansion"))
		return
	}
	if s.store == nil {
		s.respondError(w, http.StatusNotImplemented, "preferences not enabled")
		return
	}
	p, err := s.updateProfile(r.Context(), chi.URLParam(r, "id"), func(p *models.Profile) {
		p.Preferences.Expansions = visibility.NewSelection(p.Preferences.Expansions...).Toggle(id).IDs()
	})
	if err != nil {
		s.respondProfileError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

// updateProfile reads, changes and saves one profile while holding profileMu.
func (s *Server) updateProfile(ctx context.Context, id string, change func(*models.Profile)) (*models.Profile, error) {
	s.profileMu.Lock()
	defer s.profileMu.Unlock()
	p, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	change(p)
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save profile %s: %w", id, err)
	}
	return p, nil
}

func (s *Server) respondProfileError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "profile not found")
		return
	}
	s.logger.Error("save profile failed", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) loadProfile(w http.ResponseWriter, r *http.Request) (*models.Profile, bool) {
	if s.store == nil {
		s.respondError(w, http.StatusNotImplemented, "preferences not enabled")
		return nil, false
	}
	p, err := s.store.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "profile not found")
		return nil, false
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return p, true
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reloader == nil {
		s.respondError(w, http.StatusNotImplemented, "reload not enabled")
		return
	}
	if err := s.reloader.Reload(r.Context()); err != nil {
		s.logger.Error("reload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "reloaded",
		"cards":  len(s.engine.Catalog().Cards),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cat := s.engine.Catalog()
	resp := map[string]interface{}{
		"cards":          len(cat.Cards),
		"factions":       len(cat.Factions),
		"cached_indexes": s.engine.CachedIndexes(),
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	}
	if s.config != nil {
		resp["config"] = map[string]interface{}{
			"data_path":           s.config.Data.Path,
			"watch":               s.config.Data.WatchOrDefault(),
			"preferences_backend": s.config.Preferences.Backend,
			"threshold":           s.config.Search.Threshold,
			"category_limit":      s.config.Search.CategoryLimit,
			"global_limit":        s.config.Search.GlobalLimit,
		}
		if n, err := storage.PathSize(s.config.Data.Path); err == nil {
			resp["data_bytes"] = n
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
