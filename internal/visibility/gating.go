package visibility

import "github.com/hyperjump/ti4lookup/internal/models"

// Gated reports whether a card belongs to an expansion mechanic whose expansion is not
// selected, independent of the card's own version label. The first failing gate decides.
func Gated(c *models.Card, sel Selection) bool {
	pok := sel.Has(models.ExpansionPoK)
	te := sel.Has(models.ExpansionThundersEdge)

	switch r := c.Record.(type) {
	case models.FactionLeader:
		return !pok
	case models.Exploration:
		return r.IsRelic() && !pok
	case models.Unit:
		return r.IsMech() && !pok
	case models.GalacticEvent:
		if r.RequiresPok && !pok {
			return true
		}
		return !te
	case models.Breakthrough, models.Plot:
		return !te
	}
	return false
}
