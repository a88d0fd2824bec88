package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/ti4lookup/internal/models"
)

// YAMLStore implements Store as a single YAML file, rewritten on every change.
type YAMLStore struct {
	mu       sync.Mutex
	path     string
	profiles map[string]*models.Profile
}

type yamlFile struct {
	Profiles []*models.Profile `yaml:"profiles"`
}

// NewYAMLStore opens the file at path, creating parent directories. A missing file is an
// empty store.
func NewYAMLStore(path string) (*YAMLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create preferences directory: %w", err)
		}
	}
	s := &YAMLStore{path: path, profiles: make(map[string]*models.Profile)}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}
	for _, p := range f.Profiles {
		if p == nil || p.ID == "" {
			continue
		}
		p.Preferences.Normalize()
		s.profiles[p.ID] = p
	}
	return s, nil
}

// CreateProfile adds a new profile with default preferences.
func (s *YAMLStore) CreateProfile(ctx context.Context, name string) (*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := newProfile(name)
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	if err := s.flush(); err != nil {
		delete(s.profiles, p.ID)
		return nil, err
	}
	return clone(p), nil
}

// GetProfile returns a copy of the profile with id.
func (s *YAMLStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(p), nil
}

// SaveProfile upserts p.
func (s *YAMLStore) SaveProfile(ctx context.Context, p *models.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.Preferences.Normalize()
	p.UpdatedAt = time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.profiles[p.ID]
	s.profiles[p.ID] = clone(p)
	if err := s.flush(); err != nil {
		if had {
			s.profiles[p.ID] = prev
		} else {
			delete(s.profiles, p.ID)
		}
		return err
	}
	return nil
}

// DeleteProfile removes a profile.
func (s *YAMLStore) DeleteProfile(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.profiles[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.profiles, id)
	if err := s.flush(); err != nil {
		s.profiles[id] = prev
		return err
	}
	return nil
}

// ListProfiles returns all profiles, oldest first.
func (s *YAMLStore) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Profile, 0, len(s.profiles))
	for _, p := range s.sorted() {
		out = append(out, clone(p))
	}
	return out, nil
}

// Close is a no-op; every change is already on disk.
func (s *YAMLStore) Close() error { return nil }

func (s *YAMLStore) sorted() []*models.Profile {
	list := make([]*models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// flush writes the store through a temp file and rename; callers hold mu.
func (s *YAMLStore) flush() error {
	data, err := yaml.Marshal(yamlFile{Profiles: s.sorted()})
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}

func clone(p *models.Profile) *models.Profile {
	c := *p
	c.Preferences.Expansions = append([]models.ExpansionID(nil), p.Preferences.Expansions...)
	c.Preferences.RecentSearches = append([]string(nil), p.Preferences.RecentSearches...)
	return &c
}
