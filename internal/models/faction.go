package models

// Faction is a playable faction.
type Faction struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Version              string `json:"version"`
	StartingFleet        string `json:"starting_fleet,omitempty"`
	StartingTechnologies string `json:"starting_technologies,omitempty"`
}

// Tables holds the decoded rows of every source table, in file order.
type Tables struct {
	ActionCards      []ActionCard
	Agendas          []Agenda
	StrategyCards    []StrategyCard
	PublicObjectives []PublicObjective
	SecretObjectives []SecretObjective
	LegendaryPlanets []LegendaryPlanet
	Explorations     []Exploration
	FactionAbilities []FactionAbility
	FactionLeaders   []FactionLeader
	PromissoryNotes  []PromissoryNote
	Breakthroughs    []Breakthrough
	Technologies     []Technology
	GalacticEvents   []GalacticEvent
	Plots            []Plot
	Units            []Unit
	Factions         []Faction
}

// RowCount returns the number of card rows (factions excluded).
func (t *Tables) RowCount() int {
	return len(t.ActionCards) + len(t.Agendas) + len(t.StrategyCards) +
		len(t.PublicObjectives) + len(t.SecretObjectives) + len(t.LegendaryPlanets) +
		len(t.Explorations) + len(t.FactionAbilities) + len(t.FactionLeaders) +
		len(t.PromissoryNotes) + len(t.Breakthroughs) + len(t.Technologies) +
		len(t.GalacticEvents) + len(t.Plots) + len(t.Units)
}
