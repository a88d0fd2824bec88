package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/ti4lookup/internal/models"
)

// Manager holds one profile in memory, loaded at construction and saved on every change.
type Manager struct {
	mu       sync.Mutex
	store    Store
	profile  *models.Profile
	onChange []func(models.Preferences)
	logger   *zap.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager loads profileID from store. An empty id selects the oldest profile, creating
// a default one when the store is empty. A well-formed id that is not stored yet is
// created with default preferences.
func NewManager(ctx context.Context, store Store, profileID string, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	p, err := m.resolve(ctx, profileID)
	if err != nil {
		return nil, err
	}
	m.profile = p
	m.logger.Debug("preferences loaded", zap.String("profile", p.ID))
	return m, nil
}

func (m *Manager) resolve(ctx context.Context, id string) (*models.Profile, error) {
	if id == "" {
		list, err := m.store.ListProfiles(ctx)
		if err != nil {
			return nil, err
		}
		if len(list) > 0 {
			return list[0], nil
		}
		return m.store.CreateProfile(ctx, "")
	}

	p, err := m.store.GetProfile(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if !ValidID(id) {
		return nil, fmt.Errorf("invalid profile id %q: %w", id, ErrNotFound)
	}
	p = &models.Profile{ID: id, Name: "default", Preferences: models.DefaultPreferences()}
	if err := m.store.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Profile returns a copy of the managed profile.
func (m *Manager) Profile() models.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *clone(m.profile)
}

// Preferences returns a copy of the current preferences.
func (m *Manager) Preferences() models.Preferences {
	return m.Profile().Preferences
}

// OnChange registers fn to run after every saved change.
func (m *Manager) OnChange(fn func(models.Preferences)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// Update applies change and saves when the preferences differ afterwards.
func (m *Manager) Update(ctx context.Context, change func(*models.Preferences)) error {
	m.mu.Lock()
	next := clone(m.profile)
	change(&next.Preferences)
	next.Preferences.Normalize()
	if samePreferences(next.Preferences, m.profile.Preferences) {
		m.mu.Unlock()
		return nil
	}
	if err := m.store.SaveProfile(ctx, next); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	m.profile = next
	prefs := *clone(next)
	callbacks := slices.Clone(m.onChange)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(prefs.Preferences)
	}
	return nil
}

// AddRecent records q as the latest search.
func (m *Manager) AddRecent(ctx context.Context, q string) error {
	return m.Update(ctx, func(p *models.Preferences) { p.AddRecent(q) })
}

func samePreferences(a, b models.Preferences) bool {
	return a.Theme == b.Theme &&
		a.IncludeRetired == b.IncludeRetired &&
		slices.Equal(a.Expansions, b.Expansions) &&
		slices.Equal(a.RecentSearches, b.RecentSearches)
}
