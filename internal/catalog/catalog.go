package catalog

import (
	"regexp"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/hyperjump/ti4lookup/internal/models"
)

// Catalog is the immutable, normalized card collection of one application load.
type Catalog struct {
	Cards    []*models.Card
	Factions []models.Faction

	factionByID map[string]models.Faction
}

// New normalizes t into a Catalog.
func New(t *models.Tables) *Catalog {
	c := &Catalog{
		Cards:       Normalize(t),
		factionByID: make(map[string]models.Faction),
	}
	if t != nil {
		c.Factions = append([]models.Faction(nil), t.Factions...)
	}
	for _, f := range c.Factions {
		c.factionByID[f.ID] = f
	}
	return c
}

// Faction returns the faction with the given id.
func (c *Catalog) Faction(id string) (models.Faction, bool) {
	f, ok := c.factionByID[id]
	return f, ok
}

// FactionOrder returns faction ids in table (display) order.
func (c *Catalog) FactionOrder() []string {
	ids := make([]string, 0, len(c.Factions))
	for _, f := range c.Factions {
		ids = append(ids, f.ID)
	}
	return ids
}

type factionNames []models.Faction

func (f factionNames) String(i int) string { return f[i].Name }
func (f factionNames) Len() int            { return len(f) }

// ResolveFaction finds the faction a user meant: exact id, then case-insensitive name,
// then the best fuzzy name match.
func ResolveFaction(factions []models.Faction, input string) (models.Faction, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return models.Faction{}, false
	}
	for _, f := range factions {
		if f.ID == input {
			return f, true
		}
	}
	for _, f := range factions {
		if strings.EqualFold(f.Name, input) || strings.EqualFold(f.ID, input) {
			return f, true
		}
	}
	matches := fuzzy.FindFrom(input, factionNames(factions))
	if len(matches) == 0 {
		return models.Faction{}, false
	}
	return factions[matches[0].Index], true
}

var chooseTechsPrefix = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Choose\s+\d+\s+of\s*:\s*`),
	regexp.MustCompile(`(?i)^Choose\s+\d+\s*:\s*of\s*`),
}

// ParseStartingTechs splits a faction's starting technology text into an optional
// "Choose N of:" prefix and the listed technology names.
func ParseStartingTechs(raw string) (prefix string, names []string) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	for _, re := range chooseTechsPrefix {
		if loc := re.FindStringIndex(s); loc != nil {
			prefix = s[:loc[1]]
			s = strings.TrimSpace(s[loc[1]:])
			break
		}
	}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return prefix, names
}

// TechColors maps technology name to its color. Names are also registered without their
// reprint markers so starting-tech text that omits them still resolves.
func TechColors(cards []*models.Card) map[string]string {
	colors := make(map[string]string)
	for _, c := range cards {
		t, ok := c.Record.(models.Technology)
		if !ok || t.TechType == "" {
			continue
		}
		colors[c.Name] = t.TechType
		if base := models.BaseName(c.Name); base != c.Name {
			if _, exists := colors[base]; !exists {
				colors[base] = t.TechType
			}
		}
	}
	return colors
}

// StartingTech is one technology a faction starts with (or may choose).
type StartingTech struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// StartingTechs describes f's starting technologies with their colors, looked up among
// the catalog's technology cards. Unknown names have no color.
func (c *Catalog) StartingTechs(f models.Faction) (prefix string, techs []StartingTech) {
	prefix, names := ParseStartingTechs(f.StartingTechnologies)
	colors := TechColors(c.Cards)
	for _, n := range names {
		techs = append(techs, StartingTech{Name: n, Color: colors[n]})
	}
	return prefix, techs
}
