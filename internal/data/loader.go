// Package data loads the card tables from CSV files or a spreadsheet workbook.
package data

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/ti4lookup/internal/models"
)

// ErrNoTables is returned when a source contains none of the known tables.
var ErrNoTables = errors.New("no card tables found")

// Table names, used as CSV file stems and workbook sheet names.
const (
	TableActionCards      = "action_cards"
	TableAgendas          = "agendas"
	TableStrategyCards    = "strategy_cards"
	TableObjectives       = "objectives"
	TableLegendaryPlanets = "legendary_planets"
	TableExploration      = "exploration"
	TableFactionAbilities = "faction_abilities"
	TableFactionLeaders   = "faction_leaders"
	TablePromissoryNotes  = "promissory_notes"
	TableBreakthroughs    = "breakthroughs"
	TableTechnologies     = "technologies"
	TableGalacticEvents   = "galactic_events"
	TablePlots            = "plots"
	TableUnits            = "units"
	TableFactions         = "factions"
)

// TableNames lists every table the loader reads.
var TableNames = []string{
	TableActionCards,
	TableAgendas,
	TableStrategyCards,
	TableObjectives,
	TableLegendaryPlanets,
	TableExploration,
	TableFactionAbilities,
	TableFactionLeaders,
	TablePromissoryNotes,
	TableBreakthroughs,
	TableTechnologies,
	TableGalacticEvents,
	TablePlots,
	TableUnits,
	TableFactions,
}

// Loader reads all tables from a Source.
type Loader struct {
	source Source
	logger *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// NewLoader returns a Loader over source.
func NewLoader(source Source, opts ...Option) *Loader {
	l := &Loader{source: source, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadPath opens path and loads its tables.
func LoadPath(ctx context.Context, path string, logger *zap.Logger) (*models.Tables, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewLoader(src, WithLogger(logger)).Load(ctx)
}

// Load reads every table concurrently and decodes the rows. Missing tables are empty;
// ErrNoTables is returned when none is present.
func (l *Loader) Load(ctx context.Context) (*models.Tables, error) {
	start := time.Now()
	raw := make([][]Row, len(TableNames))
	found := make([]bool, len(TableNames))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range TableNames {
		g.Go(func() error {
			rows, ok, err := l.source.ReadTable(gctx, name)
			if err != nil {
				return fmt.Errorf("failed to read table %s: %w", name, err)
			}
			raw[i], found[i] = rows, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byName := make(map[string][]Row, len(TableNames))
	for i, name := range TableNames {
		if !found[i] {
			l.logger.Debug("table not present", zap.String("table", name), zap.String("source", l.source.Describe()))
			continue
		}
		byName[name] = raw[i]
	}
	if len(byName) == 0 {
		return nil, fmt.Errorf("%s: %w", l.source.Describe(), ErrNoTables)
	}

	t := decode(byName)
	l.logger.Info("loaded card tables",
		zap.String("source", l.source.Describe()),
		zap.Int("tables", len(byName)),
		zap.Int("rows", t.RowCount()),
		zap.Int("factions", len(t.Factions)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return t, nil
}

func decode(byName map[string][]Row) *models.Tables {
	t := &models.Tables{}
	for _, r := range byName[TableActionCards] {
		t.ActionCards = append(t.ActionCards, models.ActionCard{
			Name:         r.Get("name"),
			Quantity:     r.Get("quantity"),
			Timing:       r.Get("timing"),
			Effect:       r.Get("effect"),
			Version:      r.Get("version"),
			ExcludeAfter: r.Get("excludeAfter"),
		})
	}
	for _, r := range byName[TableAgendas] {
		t.Agendas = append(t.Agendas, models.Agenda{
			Name:         r.Get("name"),
			AgendaType:   r.Get("agendaType", "type"),
			Elect:        r.Get("elect"),
			Effect:       r.Get("effect"),
			Version:      r.Get("version"),
			RemovedInPok: r.Get("removedInPok"),
			ExcludeAfter: r.Get("excludeAfter"),
			ExcludeIn:    r.Get("excludeIn"),
		})
	}
	for _, r := range byName[TableStrategyCards] {
		t.StrategyCards = append(t.StrategyCards, models.StrategyCard{
			Name:         r.Get("name"),
			Initiative:   r.Get("initiative", "initative"),
			Primary:      r.Get("primary"),
			Secondary:    r.Get("secondary"),
			Color:        r.Get("color"),
			Version:      r.Get("version"),
			ExcludeAfter: r.Get("excludeAfter"),
		})
	}
	for _, r := range byName[TableObjectives] {
		decodeObjective(t, r)
	}
	for _, r := range byName[TableLegendaryPlanets] {
		t.LegendaryPlanets = append(t.LegendaryPlanets, models.LegendaryPlanet{
			Name:         r.Get("name"),
			FactionID:    factionID(r.Get("factionId")),
			Trait:        r.Get("trait"),
			Technology:   r.Get("technology"),
			Resources:    r.Get("resources"),
			Influence:    r.Get("influence"),
			Ability:      r.Get("ability"),
			HowToAcquire: r.Get("howToAcquire"),
			Version:      r.Get("version"),
			ExcludeAfter: r.Get("excludeAfter"),
		})
	}
	for _, r := range byName[TableExploration] {
		t.Explorations = append(t.Explorations, models.Exploration{
			Name:            r.Get("name"),
			ExplorationType: r.Get("explorationType", "type"),
			Quantity:        r.Get("quantity"),
			Effect:          r.Get("effect"),
			Version:         r.Get("version"),
		})
	}
	for _, r := range byName[TableFactionAbilities] {
		t.FactionAbilities = append(t.FactionAbilities, models.FactionAbility{
			FactionID:    factionID(r.Get("factionId")),
			Name:         r.Get("name"),
			Text:         r.Get("text"),
			TechType:     r.Get("techType"),
			Version:      r.Get("version"),
			ExcludeAfter: r.Get("excludeAfter"),
		})
	}
	for _, r := range byName[TableFactionLeaders] {
		t.FactionLeaders = append(t.FactionLeaders, models.FactionLeader{
			FactionID:       factionID(r.Get("factionId")),
			TribuniID:       factionID(r.Get("tribuniId")),
			LeaderType:      r.Get("leaderType", "type"),
			Name:            r.Get("name"),
			UnlockCondition: r.Get("unlockCondition"),
			AbilityName:     r.Get("abilityName"),
			Ability:         r.Get("ability"),
			Version:         r.Get("version"),
			ExcludeAfter:    r.Get("excludeAfter"),
		})
	}
	for _, r := range byName[TablePromissoryNotes] {
		t.PromissoryNotes = append(t.PromissoryNotes, models.PromissoryNote{
			Name:         r.Get("name"),
			FactionID:    factionID(r.Get("factionId")),
			Effect:       r.Get("effect"),
			Version:      r.Get("version"),
			ExcludeAfter: r.Get("excludeAfter"),
		})
	}
	for _, r := range byName[TableBreakthroughs] {
		t.Breakthroughs = append(t.Breakthroughs, models.Breakthrough{
			FactionID: factionID(r.Get("factionId")),
			Name:      r.Get("name"),
			Synergy:   r.Get("synergy"),
			Effect:    r.Get("effect"),
			Version:   r.Get("version"),
		})
	}
	for _, r := range byName[TableTechnologies] {
		t.Technologies = append(t.Technologies, models.Technology{
			Name:          r.Get("name"),
			FactionID:     factionID(r.Get("factionId")),
			TechType:      r.Get("techType", "type"),
			Unit:          r.Get("unit"),
			Prerequisites: r.Get("prerequisites"),
			Effect:        r.Get("effect"),
			Version:       r.Get("version"),
			ExcludeAfter:  r.Get("excludeAfter"),
		})
	}
	for _, r := range byName[TableGalacticEvents] {
		t.GalacticEvents = append(t.GalacticEvents, models.GalacticEvent{
			Name:        r.Get("name"),
			Effect:      r.Get("effect"),
			Version:     r.Get("version"),
			RequiresPok: parseBool(r.Get("requiresPok")),
		})
	}
	for _, r := range byName[TablePlots] {
		t.Plots = append(t.Plots, models.Plot{
			Name:       r.Get("name"),
			FactionIDs: parseList(r.Get("factionIds", "factionId")),
			Effect:     r.Get("effect"),
			Version:    r.Get("version"),
		})
	}
	for _, r := range byName[TableUnits] {
		t.Units = append(t.Units, models.Unit{
			Name:          r.Get("name"),
			FactionID:     factionID(r.Get("factionId")),
			Unit:          r.Get("unit"),
			Cost:          r.Get("cost"),
			Move:          r.Get("move"),
			Combat:        r.Get("combat"),
			Capacity:      r.Get("capacity"),
			TextAbilities: r.Get("textAbilities"),
			UnitAbilities: r.Get("unitAbilities"),
			Version:       r.Get("version"),
			ExcludeAfter:  r.Get("excludeAfter"),
		})
	}
	for _, r := range byName[TableFactions] {
		t.Factions = append(t.Factions, models.Faction{
			ID:                   factionID(r.Get("id", "factionId")),
			Name:                 r.Get("name"),
			Version:              r.Get("version"),
			StartingFleet:        r.Get("startingFleet"),
			StartingTechnologies: r.Get("startingTechnologies", "startingTech"),
		})
	}
	return t
}

// decodeObjective splits the objectives table: "secret" rows become secret objectives,
// everything else public, with the stage taken from the stage column or the type.
func decodeObjective(t *models.Tables, r Row) {
	kind := strings.ToLower(r.Get("type", "objectiveType"))
	if strings.Contains(kind, "secret") {
		t.SecretObjectives = append(t.SecretObjectives, models.SecretObjective{
			Name:         r.Get("name"),
			Condition:    r.Get("condition"),
			Points:       r.Get("points"),
			WhenToScore:  r.Get("whenToScore"),
			Version:      r.Get("version"),
			ExcludeAfter: r.Get("excludeAfter"),
		})
		return
	}
	stage := r.Get("stage")
	if stage == "" {
		switch {
		case strings.Contains(kind, "stage 1"):
			stage = "1"
		case strings.Contains(kind, "stage 2"):
			stage = "2"
		}
	}
	t.PublicObjectives = append(t.PublicObjectives, models.PublicObjective{
		Name:        r.Get("name"),
		Condition:   r.Get("condition"),
		Points:      r.Get("points"),
		Stage:       stage,
		WhenToScore: r.Get("whenToScore"),
		Version:     r.Get("version"),
	})
}
