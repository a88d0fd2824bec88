// Package models defines the card records, factions and expansions shared by the catalog,
// visibility filter, search index and partition engine.
package models

import "strings"

// CardType discriminates the card variants.
type CardType string

const (
	TypeAction          CardType = "action"
	TypeAgenda          CardType = "agenda"
	TypeStrategy        CardType = "strategy"
	TypePublicObjective CardType = "public_objective"
	TypeSecretObjective CardType = "secret_objective"
	TypeLegendaryPlanet CardType = "legendary_planet"
	TypeExploration     CardType = "exploration"
	TypeFactionAbility  CardType = "faction_ability"
	TypeFactionLeader   CardType = "faction_leader"
	TypePromissoryNote  CardType = "promissory_note"
	TypeBreakthrough    CardType = "breakthrough"
	TypeTechnology      CardType = "technology"
	TypeGalacticEvent   CardType = "galactic_event"
	TypePlot            CardType = "plot"
	TypeUnit            CardType = "unit"
)

// CardTypes lists every card type in catalog order.
var CardTypes = []CardType{
	TypeAction,
	TypeAgenda,
	TypeStrategy,
	TypePublicObjective,
	TypeSecretObjective,
	TypeLegendaryPlanet,
	TypeExploration,
	TypeFactionAbility,
	TypeFactionLeader,
	TypePromissoryNote,
	TypeBreakthrough,
	TypeTechnology,
	TypeGalacticEvent,
	TypePlot,
	TypeUnit,
}

// ReprintMarker is appended to a card name once per reprint; more markers means a newer printing.
const ReprintMarker = "Ω"

// Meta holds the fields every record exposes to the filter and the normalizer.
type Meta struct {
	Name         string
	Version      string
	ExcludeAfter string
	FactionID    string
	FactionIDs   []string
}

// Record is implemented by every source row type. A row that does not implement it
// cannot be stored in a Card.
type Record interface {
	Kind() CardType
	Meta() Meta
	// SearchFields returns the searchable fields in a fixed order, name first.
	SearchFields() []string
}

// Card is one normalized record of any category. Cards are immutable once built.
type Card struct {
	Type         CardType `json:"type"`
	Name         string   `json:"name"`
	Version      string   `json:"version,omitempty"`
	ExcludeAfter string   `json:"exclude_after,omitempty"`
	FactionID    string   `json:"faction_id,omitempty"`
	FactionIDs   []string `json:"faction_ids,omitempty"`
	FactionName  string   `json:"faction_name,omitempty"`
	SearchText   string   `json:"search_text"`
	Record       Record   `json:"record"`
}

// IsRelic reports whether c is a relic-subtype exploration card.
func (c *Card) IsRelic() bool {
	e, ok := c.Record.(Exploration)
	return ok && e.IsRelic()
}

// HasFaction reports whether c is tied to factionID, either directly or as one of several factions.
func (c *Card) HasFaction(factionID string) bool {
	if factionID == "" {
		return false
	}
	if c.FactionID == factionID {
		return true
	}
	for _, id := range c.FactionIDs {
		if id == factionID {
			return true
		}
	}
	return false
}

// IsFactionSpecific reports whether c is tied to any faction.
func (c *Card) IsFactionSpecific() bool {
	return c.FactionID != "" || len(c.FactionIDs) > 0
}

// BaseName returns name with reprint markers removed and whitespace collapsed.
func BaseName(name string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(name, ReprintMarker, "")), " ")
}

// ReprintCount returns the number of reprint markers in name.
func ReprintCount(name string) int {
	return strings.Count(name, ReprintMarker)
}
