// Package visibility narrows the full card collection to what a player sees under their
// expansion selection, faction context and retirement policy.
package visibility

import (
	"fmt"
	"strings"

	"github.com/hyperjump/ti4lookup/internal/models"
)

// BaseGameVersion is the version label of cards that are always included.
const BaseGameVersion = "base game"

var expansionVersions = map[models.ExpansionID]string{
	models.ExpansionPoK:          "pok",
	models.ExpansionCodex1:       "codex 1",
	models.ExpansionCodex2:       "codex 2",
	models.ExpansionCodex3:       "codex 3",
	models.ExpansionCodex4:       "codex 4",
	models.ExpansionThundersEdge: "thunders edge",
}

// cascaded are selected and deselected together with Thunder's Edge.
var cascaded = []models.ExpansionID{
	models.ExpansionCodex1,
	models.ExpansionCodex2,
	models.ExpansionCodex3,
	models.ExpansionCodex4,
}

// Selection is a set of selected expansions. The zero value selects nothing.
type Selection map[models.ExpansionID]bool

// NewSelection returns a selection of ids. Unknown ids are ignored. No cascade is applied;
// use Toggle for user-driven changes.
func NewSelection(ids ...models.ExpansionID) Selection {
	s := make(Selection, len(ids))
	for _, id := range ids {
		if id.Valid() {
			s[id] = true
		}
	}
	return s
}

// ParseSelection parses expansion ids such as "pok" or "codex1"; "all" selects every
// expansion. Blank entries are skipped and unknown ids are an error.
func ParseSelection(ids []string) (Selection, error) {
	sel := NewSelection()
	for _, raw := range ids {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.EqualFold(raw, "all") {
			return AllExpansions(), nil
		}
		id, ok := models.ParseExpansionID(raw)
		if !ok {
			return nil, fmt.Errorf("unknown expansion: %s", raw)
		}
		sel[id] = true
	}
	return sel, nil
}

// AllExpansions selects every expansion.
func AllExpansions() Selection {
	return NewSelection(models.Expansions...)
}

// Has reports whether id is selected.
func (s Selection) Has(id models.ExpansionID) bool {
	return s[id]
}

// Toggle returns a copy of s with id flipped. Selecting Thunder's Edge also selects the four
// codices; deselecting it deselects them. No other expansion is affected.
func (s Selection) Toggle(id models.ExpansionID) Selection {
	next := s.clone()
	if !id.Valid() {
		return next
	}
	on := !next[id]
	set := func(e models.ExpansionID) {
		if on {
			next[e] = true
		} else {
			delete(next, e)
		}
	}
	set(id)
	if id == models.ExpansionThundersEdge {
		for _, c := range cascaded {
			set(c)
		}
	}
	return next
}

func (s Selection) clone() Selection {
	next := make(Selection, len(s))
	for id, on := range s {
		if on {
			next[id] = true
		}
	}
	return next
}

// IDs returns the selected ids in release order.
func (s Selection) IDs() []models.ExpansionID {
	ids := make([]models.ExpansionID, 0, len(s))
	for _, id := range models.Expansions {
		if s[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// Versions maps the selection to the version labels used on cards.
func (s Selection) Versions() map[string]struct{} {
	versions := make(map[string]struct{}, len(s))
	for _, id := range s.IDs() {
		versions[expansionVersions[id]] = struct{}{}
	}
	return versions
}

// Key is a stable string form of the selection.
func (s Selection) Key() string {
	ids := s.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

// VersionFor returns the card version label of an expansion.
func VersionFor(id models.ExpansionID) string {
	return expansionVersions[id]
}

func normalizeVersion(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// thresholdIndex returns the position in release order from which a version label counts as
// reached. "base game" is reached by any selection. Unknown labels return -1.
func thresholdIndex(label string) int {
	label = normalizeVersion(label)
	if label == BaseGameVersion {
		return 0
	}
	for i, id := range models.Expansions {
		if expansionVersions[id] == label {
			return i
		}
	}
	return -1
}

// reached reports whether any expansion at or after the threshold label is selected.
func (s Selection) reached(label string) bool {
	idx := thresholdIndex(label)
	if idx < 0 {
		return false
	}
	for _, id := range models.Expansions[idx:] {
		if s[id] {
			return true
		}
	}
	return false
}
