package models

import "strings"

// ActionCard is a row of the action card table.
type ActionCard struct {
	Name         string `json:"name"`
	Quantity     string `json:"quantity"`
	Timing       string `json:"timing"`
	Effect       string `json:"effect"`
	Version      string `json:"version"`
	ExcludeAfter string `json:"exclude_after,omitempty"`
}

func (r ActionCard) Kind() CardType { return TypeAction }
func (r ActionCard) Meta() Meta {
	return Meta{Name: r.Name, Version: r.Version, ExcludeAfter: r.ExcludeAfter}
}
func (r ActionCard) SearchFields() []string {
	return []string{r.Name, r.Timing, r.Effect, r.Version}
}

// StrategyCard is a row of the strategy card table.
type StrategyCard struct {
	Name         string `json:"name"`
	Initiative   string `json:"initiative"`
	Primary      string `json:"primary"`
	Secondary    string `json:"secondary"`
	Color        string `json:"color"`
	Version      string `json:"version"`
	ExcludeAfter string `json:"exclude_after,omitempty"`
}

func (r StrategyCard) Kind() CardType { return TypeStrategy }
func (r StrategyCard) Meta() Meta {
	return Meta{Name: r.Name, Version: r.Version, ExcludeAfter: r.ExcludeAfter}
}
func (r StrategyCard) SearchFields() []string {
	return []string{r.Name, r.Initiative, r.Primary, r.Secondary, r.Version}
}

// Agenda is a row of the agenda table. AgendaType holds the CSV "type" column (law, directive).
type Agenda struct {
	Name         string `json:"name"`
	AgendaType   string `json:"agenda_type"`
	Elect        string `json:"elect"`
	Effect       string `json:"effect"`
	Version      string `json:"version"`
	RemovedInPok string `json:"removed_in_pok,omitempty"`
	ExcludeAfter string `json:"exclude_after,omitempty"`
	ExcludeIn    string `json:"exclude_in,omitempty"`
}

func (r Agenda) Kind() CardType { return TypeAgenda }
func (r Agenda) Meta() Meta {
	return Meta{Name: r.Name, Version: r.Version, ExcludeAfter: r.ExcludeAfter}
}
func (r Agenda) SearchFields() []string {
	return []string{r.Name, r.AgendaType, r.Elect, r.Effect, r.Version}
}

// PublicObjective is a stage 1 or stage 2 public objective.
type PublicObjective struct {
	Name        string `json:"name"`
	Condition   string `json:"condition"`
	Points      string `json:"points"`
	Stage       string `json:"stage"`
	WhenToScore string `json:"when_to_score"`
	Version     string `json:"version"`
}

func (r PublicObjective) Kind() CardType { return TypePublicObjective }
func (r PublicObjective) Meta() Meta      { return Meta{Name: r.Name, Version: r.Version} }
func (r PublicObjective) SearchFields() []string {
	return []string{r.Name, r.Condition, r.Points, r.Stage, r.WhenToScore, r.Version}
}

// SecretObjective is a secret objective.
type SecretObjective struct {
	Name         string `json:"name"`
	Condition    string `json:"condition"`
	Points       string `json:"points"`
	WhenToScore  string `json:"when_to_score"`
	Version      string `json:"version"`
	ExcludeAfter string `json:"exclude_after,omitempty"`
}

func (r SecretObjective) Kind() CardType { return TypeSecretObjective }
func (r SecretObjective) Meta() Meta {
	return Meta{Name: r.Name, Version: r.Version, ExcludeAfter: r.ExcludeAfter}
}
func (r SecretObjective) SearchFields() []string {
	return []string{r.Name, r.Condition, r.Points, r.WhenToScore, r.Version}
}

// LegendaryPlanet is a row of the legendary planet table.
type LegendaryPlanet struct {
	Name         string `json:"name"`
	FactionID    string `json:"faction_id,omitempty"`
	Trait        string `json:"trait"`
	Technology   string `json:"technology"`
	Resources    string `json:"resources"`
	Influence    string `json:"influence"`
	Ability      string `json:"ability"`
	HowToAcquire string `json:"how_to_acquire"`
	Version      string `json:"version"`
	ExcludeAfter string `json:"exclude_after,omitempty"`
}

func (r LegendaryPlanet) Kind() CardType { return TypeLegendaryPlanet }
func (r LegendaryPlanet) Meta() Meta {
	return Meta{Name: r.Name, Version: r.Version, ExcludeAfter: r.ExcludeAfter, FactionID: r.FactionID}
}
func (r LegendaryPlanet) SearchFields() []string {
	return []string{r.Name, r.Trait, r.Technology, r.Resources, r.Influence, r.Ability, r.HowToAcquire, r.Version}
}

// Exploration is an exploration card. ExplorationType is a planet trait or "relic".
type Exploration struct {
	Name            string `json:"name"`
	ExplorationType string `json:"exploration_type"`
	Quantity        string `json:"quantity"`
	Effect          string `json:"effect"`
	Version         string `json:"version"`
}

func (r Exploration) Kind() CardType { return TypeExploration }
func (r Exploration) Meta() Meta      { return Meta{Name: r.Name, Version: r.Version} }
func (r Exploration) SearchFields() []string {
	return []string{r.Name, r.ExplorationType, r.Effect, r.Version}
}

// IsRelic reports whether the card is a relic fragment draw rather than a trait exploration.
func (r Exploration) IsRelic() bool {
	return strings.EqualFold(strings.TrimSpace(r.ExplorationType), "relic")
}

// FactionAbility is a faction's printed ability.
type FactionAbility struct {
	FactionID    string `json:"faction_id"`
	Name         string `json:"name"`
	Text         string `json:"text"`
	TechType     string `json:"tech_type,omitempty"`
	Version      string `json:"version"`
	ExcludeAfter string `json:"exclude_after,omitempty"`
}

func (r FactionAbility) Kind() CardType { return TypeFactionAbility }
func (r FactionAbility) Meta() Meta {
	return Meta{Name: r.Name, Version: r.Version, ExcludeAfter: r.ExcludeAfter, FactionID: r.FactionID}
}
func (r FactionAbility) SearchFields() []string {
	return []string{r.Name, r.Text, r.TechType, r.Version}
}

// FactionLeader is an agent, commander or hero. TribuniID names a second faction the
// leader represents.
type FactionLeader struct {
	FactionID       string `json:"faction_id"`
	TribuniID       string `json:"tribuni_id,omitempty"`
	LeaderType      string `json:"leader_type"`
	Name            string `json:"name"`
	UnlockCondition string `json:"unlock_condition"`
	AbilityName     string `json:"ability_name"`
	Ability         string `json:"ability"`
	Version         string `json:"version"`
	ExcludeAfter    string `json:"exclude_after,omitempty"`
}

func (r FactionLeader) Kind() CardType { return TypeFactionLeader }
func (r FactionLeader) Meta() Meta {
	return Meta{Name: r.Name, Version: r.Version, ExcludeAfter: r.ExcludeAfter, FactionID: r.FactionID}
}
func (r FactionLeader) SearchFields() []string {
	return []string{r.Name, r.LeaderType, r.UnlockCondition, r.AbilityName, r.Ability, r.Version}
}

// PromissoryNote is a promissory note; empty FactionID is a generic note.
type PromissoryNote struct {
	Name         string `json:"name"`
	FactionID    string `json:"faction_id"`
	Effect       string `json:"effect"`
	Version      string `json:"version"`
	ExcludeAfter string `json:"exclude_after,omitempty"`
}

func (r PromissoryNote) Kind() CardType { return TypePromissoryNote }
func (r PromissoryNote) Meta() Meta {
	return Meta{Name: r.Name, Version: r.Version, ExcludeAfter: r.ExcludeAfter, FactionID: r.FactionID}
}
func (r PromissoryNote) SearchFields() []string {
	return []string{r.Name, r.Effect, r.Version}
}

// Breakthrough is a faction breakthrough.
type Breakthrough struct {
	FactionID string `json:"faction_id"`
	Name      string `json:"name"`
	Synergy   string `json:"synergy"`
	Effect    string `json:"effect"`
	Version   string `json:"version"`
}

func (r Breakthrough) Kind() CardType { return TypeBreakthrough }
func (r Breakthrough) Meta() Meta {
	return Meta{Name: r.Name, Version: r.Version, FactionID: r.FactionID}
}
func (r Breakthrough) SearchFields() []string {
	return []string{r.Name, r.Synergy, r.Effect, r.Version}
}

// Technology is a technology card. TechType is blue, green, red, yellow or unit upgrade;
// Prerequisites is the loader's list string, e.g. "[blue,blue,yellow]".
type Technology struct {
	Name          string `json:"name"`
	FactionID     string `json:"faction_id"`
	TechType      string `json:"tech_type"`
	Unit          string `json:"unit"`
	Prerequisites string `json:"prerequisites"`
	Effect        string `json:"effect"`
	Version       string `json:"version"`
	ExcludeAfter  string `json:"exclude_after,omitempty"`
}

func (r Technology) Kind() CardType { return TypeTechnology }
func (r Technology) Meta() Meta {
	return Meta{Name: r.Name, Version: r.Version, ExcludeAfter: r.ExcludeAfter, FactionID: r.FactionID}
}
func (r Technology) SearchFields() []string {
	return []string{r.Name, r.TechType, r.Unit, r.Prerequisites, r.Effect, r.Version}
}

// GalacticEvent is a galactic event. RequiresPok marks events that only make sense with
// Prophecy of Kings in play.
type GalacticEvent struct {
	Name        string `json:"name"`
	Effect      string `json:"effect"`
	Version     string `json:"version"`
	RequiresPok bool   `json:"requires_pok,omitempty"`
}

func (r GalacticEvent) Kind() CardType { return TypeGalacticEvent }
func (r GalacticEvent) Meta() Meta      { return Meta{Name: r.Name, Version: r.Version} }
func (r GalacticEvent) SearchFields() []string {
	return []string{r.Name, r.Effect, r.Version}
}

// Plot is a plot card shared by one or more factions.
type Plot struct {
	Name       string   `json:"name"`
	FactionIDs []string `json:"faction_ids"`
	Effect     string   `json:"effect"`
	Version    string   `json:"version"`
}

func (r Plot) Kind() CardType { return TypePlot }
func (r Plot) Meta() Meta {
	return Meta{Name: r.Name, Version: r.Version, FactionIDs: r.FactionIDs}
}
func (r Plot) SearchFields() []string {
	return []string{r.Name, r.Effect, r.Version}
}

// Unit is a unit card; empty FactionID is a general unit.
type Unit struct {
	Name          string `json:"name"`
	FactionID     string `json:"faction_id"`
	Unit          string `json:"unit"`
	Cost          string `json:"cost"`
	Move          string `json:"move"`
	Combat        string `json:"combat"`
	Capacity      string `json:"capacity"`
	TextAbilities string `json:"text_abilities"`
	UnitAbilities string `json:"unit_abilities"`
	Version       string `json:"version"`
	ExcludeAfter  string `json:"exclude_after,omitempty"`
}

func (r Unit) Kind() CardType { return TypeUnit }
func (r Unit) Meta() Meta {
	return Meta{Name: r.Name, Version: r.Version, ExcludeAfter: r.ExcludeAfter, FactionID: r.FactionID}
}
func (r Unit) SearchFields() []string {
	return []string{r.Name, r.Unit, r.Cost, r.Move, r.Combat, r.Capacity, r.TextAbilities, r.UnitAbilities, r.Version}
}

// IsMech reports whether the unit is a mech.
func (r Unit) IsMech() bool {
	return strings.EqualFold(strings.TrimSpace(r.Unit), "mech")
}

// IsFlagship reports whether the unit is a flagship.
func (r Unit) IsFlagship() bool {
	return strings.EqualFold(strings.TrimSpace(r.Unit), "flagship")
}
