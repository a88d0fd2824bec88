// Package catalog turns the loader's per-category rows into one ordered, searchable card
// collection and answers faction lookups against it.
package catalog

import (
	"strings"

	"github.com/hyperjump/ti4lookup/internal/models"
)

// Normalize converts every table row into a Card. Categories follow models.CardTypes order;
// rows keep their table order. Faction names are denormalized onto faction-scoped cards
// and folded into their search text.
func Normalize(t *models.Tables) []*models.Card {
	if t == nil {
		return nil
	}
	names := FactionNames(t.Factions)
	cards := make([]*models.Card, 0, t.RowCount())
	add := func(r models.Record) {
		cards = append(cards, newCard(r, names))
	}
	for _, r := range t.ActionCards {
		add(r)
	}
	for _, r := range t.Agendas {
		add(r)
	}
	for _, r := range t.StrategyCards {
		add(r)
	}
	for _, r := range t.PublicObjectives {
		add(r)
	}
	for _, r := range t.SecretObjectives {
		add(r)
	}
	for _, r := range t.LegendaryPlanets {
		add(r)
	}
	for _, r := range t.Explorations {
		add(r)
	}
	for _, r := range t.FactionAbilities {
		add(r)
	}
	for _, r := range t.FactionLeaders {
		add(r)
	}
	for _, r := range t.PromissoryNotes {
		add(r)
	}
	for _, r := range t.Breakthroughs {
		add(r)
	}
	for _, r := range t.Technologies {
		add(r)
	}
	for _, r := range t.GalacticEvents {
		add(r)
	}
	for _, r := range t.Plots {
		add(r)
	}
	for _, r := range t.Units {
		add(r)
	}
	return cards
}

// FactionNames maps faction id to display name.
func FactionNames(factions []models.Faction) map[string]string {
	names := make(map[string]string, len(factions))
	for _, f := range factions {
		if f.ID != "" {
			names[f.ID] = f.Name
		}
	}
	return names
}

func newCard(r models.Record, names map[string]string) *models.Card {
	m := r.Meta()
	c := &models.Card{
		Type:         r.Kind(),
		Name:         m.Name,
		Version:      m.Version,
		ExcludeAfter: m.ExcludeAfter,
		FactionID:    m.FactionID,
		Record:       r,
	}
	if len(m.FactionIDs) > 0 {
		c.FactionIDs = append([]string(nil), m.FactionIDs...)
	}

	fields := r.SearchFields()
	switch {
	case c.FactionID != "":
		c.FactionName = names[c.FactionID]
	case len(c.FactionIDs) > 0:
		parts := make([]string, 0, len(c.FactionIDs))
		for _, id := range c.FactionIDs {
			if n := names[id]; n != "" {
				parts = append(parts, n)
			}
		}
		c.FactionName = strings.Join(parts, ", ")
	}
	fields = append(fields, c.FactionName)
	if l, ok := r.(models.FactionLeader); ok && l.TribuniID != "" {
		fields = append(fields, names[l.TribuniID])
	}
	c.SearchText = JoinFields(fields)
	return c
}

// JoinFields space-joins the trimmed, non-empty fields.
func JoinFields(fields []string) string {
	var b strings.Builder
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f)
	}
	return b.String()
}
