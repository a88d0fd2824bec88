// Package storage persists preference profiles.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hyperjump/ti4lookup/internal/models"
)

// ErrNotFound is returned when a profile does not exist.
var ErrNotFound = errors.New("profile not found")

// Store defines profile persistence operations.
type Store interface {
	CreateProfile(ctx context.Context, name string) (*models.Profile, error)
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	// SaveProfile inserts or replaces a profile and sets UpdatedAt.
	SaveProfile(ctx context.Context, p *models.Profile) error
	DeleteProfile(ctx context.Context, id string) error
	ListProfiles(ctx context.Context) ([]*models.Profile, error)

	Close() error
}

// Backends
const (
	BackendSQLite = "sqlite"
	BackendYAML   = "yaml"
)

// Open returns the store for backend at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendSQLite, "":
		return NewSQLiteStore(path)
	case BackendYAML:
		return NewYAMLStore(path)
	default:
		return nil, fmt.Errorf("unknown preferences backend: %s", backend)
	}
}

// ValidID reports whether id is a well-formed profile id.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func newProfile(name string) *models.Profile {
	if name == "" {
		name = "default"
	}
	return &models.Profile{
		ID:          uuid.New().String(),
		Name:        name,
		Preferences: models.DefaultPreferences(),
	}
}
