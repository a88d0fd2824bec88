package models

import (
	"strings"
	"time"
)

// MaxRecentSearches caps Preferences.RecentSearches.
const MaxRecentSearches = 10

// Themes
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Preferences are the per-profile settings that survive restarts.
type Preferences struct {
	Theme          string        `json:"theme" yaml:"theme"`
	Expansions     []ExpansionID `json:"expansions" yaml:"expansions"`
	IncludeRetired bool          `json:"include_retired" yaml:"include_retired"`
	RecentSearches []string      `json:"recent_searches" yaml:"recent_searches"`
}

// DefaultPreferences returns the preferences of a new profile: dark theme, base game only.
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeDark}
}

// AddRecent moves q to the front of the recent searches. Blank queries are ignored and
// the list is capped at MaxRecentSearches.
func (p *Preferences) AddRecent(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}
	next := make([]string, 0, MaxRecentSearches)
	next = append(next, q)
	for _, r := range p.RecentSearches {
		if r != q && len(next) < MaxRecentSearches {
			next = append(next, r)
		}
	}
	p.RecentSearches = next
}

// Normalize drops unknown and duplicate expansions and fills an empty theme.
func (p *Preferences) Normalize() {
	if p.Theme != ThemeLight {
		p.Theme = ThemeDark
	}
	seen := make(map[ExpansionID]struct{}, len(p.Expansions))
	valid := p.Expansions[:0:0]
	for _, id := range p.Expansions {
		if _, dup := seen[id]; dup || !id.Valid() {
			continue
		}
		seen[id] = struct{}{}
		valid = append(valid, id)
	}
	p.Expansions = valid
	if len(p.RecentSearches) > MaxRecentSearches {
		p.RecentSearches = p.RecentSearches[:MaxRecentSearches]
	}
}

// Profile is a named set of preferences.
type Profile struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Preferences Preferences `json:"preferences" yaml:"preferences"`
	CreatedAt   time.Time   `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" yaml:"updated_at"`
}
