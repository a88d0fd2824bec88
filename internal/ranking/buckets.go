// Package ranking groups cards into display buckets and orders each bucket.
package ranking

import "github.com/hyperjump/ti4lookup/internal/models"

// Bucket is a display group of cards.
type Bucket string

const (
	BucketStrategy              Bucket = "strategy"
	BucketFactionAbility        Bucket = "faction_ability"
	BucketTechnology            Bucket = "technology"
	BucketFactionTechnology     Bucket = "faction_technology"
	BucketFactionLeader         Bucket = "faction_leader"
	BucketPromissoryNote        Bucket = "promissory_note"
	BucketFactionPromissoryNote Bucket = "faction_promissory_note"
	BucketBreakthrough          Bucket = "breakthrough"
	BucketPublicObjective       Bucket = "public_objective"
	BucketSecretObjective       Bucket = "secret_objective"
	BucketAgenda                Bucket = "agenda"
	BucketAction                Bucket = "action"
	BucketLegendaryPlanet       Bucket = "legendary_planet"
	BucketExploration           Bucket = "exploration"
	BucketRelic                 Bucket = "relic"
	BucketGalacticEvent         Bucket = "galactic_event"
	BucketPlot                  Bucket = "plot"
	BucketUnit                  Bucket = "unit"
	BucketFactionUnit           Bucket = "faction_unit"
)

// Order is the display order of buckets.
var Order = []Bucket{
	BucketStrategy,
	BucketFactionAbility,
	BucketTechnology,
	BucketFactionTechnology,
	BucketFactionLeader,
	BucketPromissoryNote,
	BucketFactionPromissoryNote,
	BucketBreakthrough,
	BucketPublicObjective,
	BucketSecretObjective,
	BucketAgenda,
	BucketAction,
	BucketLegendaryPlanet,
	BucketExploration,
	BucketRelic,
	BucketGalacticEvent,
	BucketPlot,
	BucketUnit,
	BucketFactionUnit,
}

// BucketOf returns the bucket a card is displayed in.
func BucketOf(c *models.Card) Bucket {
	switch r := c.Record.(type) {
	case models.StrategyCard:
		return BucketStrategy
	case models.FactionAbility:
		return BucketFactionAbility
	case models.Technology:
		if r.FactionID != "" {
			return BucketFactionTechnology
		}
		return BucketTechnology
	case models.FactionLeader:
		return BucketFactionLeader
	case models.PromissoryNote:
		if r.FactionID != "" {
			return BucketFactionPromissoryNote
		}
		return BucketPromissoryNote
	case models.Breakthrough:
		return BucketBreakthrough
	case models.PublicObjective:
		return BucketPublicObjective
	case models.SecretObjective:
		return BucketSecretObjective
	case models.Agenda:
		return BucketAgenda
	case models.ActionCard:
		return BucketAction
	case models.LegendaryPlanet:
		return BucketLegendaryPlanet
	case models.Exploration:
		if r.IsRelic() {
			return BucketRelic
		}
		return BucketExploration
	case models.GalacticEvent:
		return BucketGalacticEvent
	case models.Plot:
		return BucketPlot
	case models.Unit:
		if r.FactionID != "" {
			return BucketFactionUnit
		}
		return BucketUnit
	}
	return Bucket(c.Type)
}

// Partitioned maps buckets to their ordered cards. Empty buckets are absent.
type Partitioned map[Bucket][]*models.Card

// Len returns the number of cards across all buckets.
func (p Partitioned) Len() int {
	n := 0
	for _, cards := range p {
		n += len(cards)
	}
	return n
}

// Flatten concatenates the buckets in display order.
func (p Partitioned) Flatten() []*models.Card {
	out := make([]*models.Card, 0, p.Len())
	for _, b := range Order {
		out = append(out, p[b]...)
	}
	return out
}
