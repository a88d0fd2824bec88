package models

// Category is a browsable category: a card type, or the relic subset of exploration.
type Category string

// CategoryRelic is the relic-subtype exploration category.
const CategoryRelic Category = "relic"

// Categories lists every category in catalog order, relics after exploration.
var Categories = []Category{
	Category(TypeAction),
	Category(TypeAgenda),
	Category(TypeStrategy),
	Category(TypePublicObjective),
	Category(TypeSecretObjective),
	Category(TypeLegendaryPlanet),
	Category(TypeExploration),
	CategoryRelic,
	Category(TypeFactionAbility),
	Category(TypeFactionLeader),
	Category(TypePromissoryNote),
	Category(TypeBreakthrough),
	Category(TypeTechnology),
	Category(TypeGalacticEvent),
	Category(TypePlot),
	Category(TypeUnit),
}

var categorySlugs = map[Category]string{
	Category(TypeAction):          "action_cards",
	Category(TypeAgenda):          "agendas",
	Category(TypeStrategy):        "strategy_cards",
	Category(TypePublicObjective): "public_objectives",
	Category(TypeSecretObjective): "secret_objectives",
	Category(TypeLegendaryPlanet): "legendary_planets",
	Category(TypeExploration):     "exploration",
	CategoryRelic:                 "relics",
	Category(TypeFactionAbility):  "faction_abilities",
	Category(TypeFactionLeader):   "faction_leaders",
	Category(TypePromissoryNote):  "promissory_notes",
	Category(TypeBreakthrough):    "breakthroughs",
	Category(TypeTechnology):      "technologies",
	Category(TypeGalacticEvent):   "galactic_events",
	Category(TypePlot):            "plots",
	Category(TypeUnit):            "units",
}

var slugCategories = func() map[string]Category {
	m := make(map[string]Category, len(categorySlugs))
	for c, s := range categorySlugs {
		m[s] = c
	}
	return m
}()

// Slug returns the URL slug for c, or "" when c is unknown.
func (c Category) Slug() string {
	return categorySlugs[c]
}

// CategoryFromSlug resolves a URL slug.
func CategoryFromSlug(slug string) (Category, bool) {
	c, ok := slugCategories[slug]
	return c, ok
}

// Contains reports whether card belongs to c. Exploration excludes relics.
func (c Category) Contains(card *Card) bool {
	switch c {
	case CategoryRelic:
		return card.IsRelic()
	case Category(TypeExploration):
		return card.Type == TypeExploration && !card.IsRelic()
	default:
		return Category(card.Type) == c
	}
}
