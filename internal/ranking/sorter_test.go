package ranking

import (
	"math"
	"reflect"
	"testing"

	"github.com/hyperjump/ti4lookup/internal/models"
)

func mk(r models.Record) *models.Card {
	m := r.Meta()
	return &models.Card{Type: r.Kind(), Name: m.Name, FactionID: m.FactionID, FactionIDs: m.FactionIDs, Record: r}
}

func names(cards []*models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Name
	}
	return out
}

func TestPartition_Strategy(t *testing.T) {
	cards := []*models.Card{
		mk(models.StrategyCard{Name: "Trade", Initiative: "3"}),
		mk(models.StrategyCard{Name: "Warfare", Initiative: "1"}),
		mk(models.StrategyCard{Name: "Homebrew", Initiative: "x"}),
	}
	got := names(Partition(cards)[BucketStrategy])
	want := []string{"Homebrew", "Warfare", "Trade"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("strategy = %v, want %v", got, want)
	}
}

func TestPartition_Buckets(t *testing.T) {
	cards := []*models.Card{
		mk(models.Technology{Name: "Gravity Drive", TechType: "blue"}),
		mk(models.Technology{Name: "Spec Ops II", FactionID: "sol", TechType: "unit upgrade"}),
		mk(models.PromissoryNote{Name: "Ceasefire"}),
		mk(models.PromissoryNote{Name: "Military Support", FactionID: "sol"}),
		mk(models.Exploration{Name: "Freelancers", ExplorationType: "industrial"}),
		mk(models.Exploration{Name: "The Obsidian", ExplorationType: "relic"}),
		mk(models.Unit{Name: "Carrier", Unit: "carrier", Cost: "3"}),
		mk(models.Unit{Name: "Genesis", FactionID: "sol", Unit: "flagship", Cost: "8"}),
		{Type: models.TypeAction, Name: "Bare"},
	}
	p := Partition(cards)
	tests := map[Bucket]string{
		BucketTechnology:            "Gravity Drive",
		BucketFactionTechnology:     "Spec Ops II",
		BucketPromissoryNote:        "Ceasefire",
		BucketFactionPromissoryNote: "Military Support",
		BucketExploration:           "Freelancers",
		BucketRelic:                 "The Obsidian",
		BucketUnit:                  "Carrier",
		BucketFactionUnit:           "Genesis",
		BucketAction:                "Bare",
	}
	for b, name := range tests {
		if got := names(p[b]); !reflect.DeepEqual(got, []string{name}) {
			t.Errorf("%s = %v, want [%s]", b, got, name)
		}
	}
	if p.Len() != len(cards) {
		t.Errorf("Len = %d, want %d", p.Len(), len(cards))
	}
	if len(p.Flatten()) != len(cards) {
		t.Errorf("Flatten lost cards: %v", names(p.Flatten()))
	}
}

func TestPartition_Technology(t *testing.T) {
	cards := []*models.Card{
		mk(models.Technology{Name: "Valefar Assimilator X", FactionID: "nekro", TechType: "none"}),
		mk(models.Technology{Name: "War Sun", TechType: "unit upgrade", Prerequisites: "[red,red,red,yellow]"}),
		mk(models.Technology{Name: "Fleet Logistics", TechType: "blue", Prerequisites: "[blue,blue]"}),
		mk(models.Technology{Name: "Antimass Deflectors", TechType: "blue", Prerequisites: "[]"}),
		mk(models.Technology{Name: "Neural Motivator", TechType: "green", Prerequisites: "none"}),
		mk(models.Technology{Name: "Gravity Drive", TechType: "Blue", Prerequisites: "[blue]"}),
		mk(models.Technology{Name: "Mystery", TechType: "purple"}),
		mk(models.Technology{Name: "Plasma Scoring", TechType: "red", Prerequisites: "[red]"}),
		mk(models.Technology{Name: "Sarween Tools", TechType: "yellow", Prerequisites: "[]"}),
	}
	want := []string{
		"Antimass Deflectors",
		"Gravity Drive",
		"Fleet Logistics",
		"Neural Motivator",
		"Sarween Tools",
		"Plasma Scoring",
		"War Sun",
		"Mystery",
	}
	// the nekro tech has a faction id, so it lands in the faction bucket
	if got := names(Partition(cards)[BucketTechnology]); !reflect.DeepEqual(got, want) {
		t.Errorf("technology = %v\nwant %v", got, want)
	}

	s := NewSorter(nil)
	if s.TechClass(models.Technology{FactionID: "nekro", TechType: "red"}) <= s.TechClass(models.Technology{TechType: "other"}) {
		t.Error("last faction techs should sort after every other class")
	}
}

func TestPartition_FactionTechnology(t *testing.T) {
	cards := []*models.Card{
		mk(models.Technology{Name: "Spec Ops II", FactionID: "sol", TechType: "unit upgrade"}),
		mk(models.Technology{Name: "Advanced Carrier II", FactionID: "sol", TechType: "unit upgrade", Prerequisites: "[blue,blue]"}),
		mk(models.Technology{Name: "Quantum Datahub Node", FactionID: "hacan", TechType: "yellow"}),
		mk(models.Technology{Name: "Production Biomes", FactionID: "hacan", TechType: "green"}),
	}
	got := names(Partition(cards)[BucketFactionTechnology])
	want := []string{"Production Biomes", "Quantum Datahub Node", "Spec Ops II", "Advanced Carrier II"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("faction technology = %v, want %v", got, want)
	}
}

func TestPartition_FactionTechnologyLastFaction(t *testing.T) {
	cards := []*models.Card{
		mk(models.Technology{Name: "Valefar Assimilator X", FactionID: "nekro", TechType: "none"}),
		mk(models.Technology{Name: "Bioplasmosis", FactionID: "arborec", TechType: "green"}),
		mk(models.Technology{Name: "Transparasteel Plating", FactionID: "yssaril", TechType: "green"}),
	}
	tests := []struct {
		last string
		want []string
	}{
		{"nekro", []string{"Bioplasmosis", "Transparasteel Plating", "Valefar Assimilator X"}},
		{"arborec", []string{"Valefar Assimilator X", "Transparasteel Plating", "Bioplasmosis"}},
	}
	for _, tt := range tests {
		t.Run(tt.last, func(t *testing.T) {
			s := NewSorter(&SortConfig{LastTechFaction: tt.last})
			got := names(s.Partition(cards)[BucketFactionTechnology])
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("faction technology = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewSorter_DoesNotModifyConfig(t *testing.T) {
	cfg := &SortConfig{}
	NewSorter(cfg)
	if cfg.LastTechFaction != "" {
		t.Errorf("LastTechFaction = %q, want caller config untouched", cfg.LastTechFaction)
	}
}

func TestPartition_Leaders(t *testing.T) {
	cards := []*models.Card{
		mk(models.FactionLeader{Name: "Jace X", FactionID: "sol", LeaderType: "hero"}),
		mk(models.FactionLeader{Name: "Evelyn", FactionID: "sol", LeaderType: "agent"}),
		mk(models.FactionLeader{Name: "Claire", FactionID: "sol", LeaderType: "commander"}),
		mk(models.FactionLeader{Name: "Odd", FactionID: "sol", LeaderType: "envoy"}),
		mk(models.FactionLeader{Name: "Carth", FactionID: "hacan", LeaderType: "agent"}),
	}
	got := names(Partition(cards)[BucketFactionLeader])
	want := []string{"Carth", "Evelyn", "Claire", "Jace X", "Odd"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("leaders = %v, want %v", got, want)
	}
}

func TestPartition_Exploration(t *testing.T) {
	cards := []*models.Card{
		mk(models.Exploration{Name: "Derelict Vessel", ExplorationType: "frontier"}),
		mk(models.Exploration{Name: "Freelancers", ExplorationType: "industrial"}),
		mk(models.Exploration{Name: "Abandoned Warehouses", ExplorationType: "industrial"}),
		mk(models.Exploration{Name: "Core Mine", ExplorationType: "hazardous"}),
		mk(models.Exploration{Name: "Gamma Relay", ExplorationType: "cultural"}),
		mk(models.Exploration{Name: "Strange", ExplorationType: ""}),
		mk(models.Exploration{Name: "Stellar Converter", ExplorationType: "relic"}),
		mk(models.Exploration{Name: "Dominus Orb", ExplorationType: "Relic"}),
	}
	p := Partition(cards)
	want := []string{"Gamma Relay", "Core Mine", "Abandoned Warehouses", "Freelancers", "Derelict Vessel", "Strange"}
	if got := names(p[BucketExploration]); !reflect.DeepEqual(got, want) {
		t.Errorf("exploration = %v, want %v", got, want)
	}
	if got := names(p[BucketRelic]); !reflect.DeepEqual(got, []string{"Dominus Orb", "Stellar Converter"}) {
		t.Errorf("relic = %v", got)
	}
}

func TestPartition_Units(t *testing.T) {
	cards := []*models.Card{
		mk(models.Unit{Name: "War Sun", Unit: "war sun", Cost: "12"}),
		mk(models.Unit{Name: "Fighter", Unit: "fighter", Cost: "1 (x2)"}),
		mk(models.Unit{Name: "PDS", Unit: "pds", Cost: ""}),
		mk(models.Unit{Name: "Carrier", Unit: "carrier", Cost: "3"}),
		mk(models.Unit{Name: "Cruiser", Unit: "cruiser", Cost: "2"}),
	}
	got := names(Partition(cards)[BucketUnit])
	want := []string{"Fighter", "Cruiser", "Carrier", "War Sun", "PDS"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("units = %v, want %v", got, want)
	}
}

func TestPartition_FactionUnits(t *testing.T) {
	s := NewSorter(&SortConfig{FactionOrder: []string{"sol", "hacan"}})
	cards := []*models.Card{
		mk(models.Unit{Name: "ZS Thunderbolt M2", FactionID: "sol", Unit: "mech", Cost: "2"}),
		mk(models.Unit{Name: "Wrath of Kenara", FactionID: "hacan", Unit: "flagship", Cost: "8"}),
		mk(models.Unit{Name: "Genesis", FactionID: "sol", Unit: "flagship", Cost: "8"}),
		mk(models.Unit{Name: "Spec Ops", FactionID: "sol", Unit: "infantry", Cost: "1 (x2)"}),
		mk(models.Unit{Name: "Advanced Carrier", FactionID: "sol", Unit: "carrier", Cost: "3"}),
		mk(models.Unit{Name: "Zeta", FactionID: "zzz", Unit: "flagship", Cost: "8"}),
		mk(models.Unit{Name: "Arbiter", FactionID: "arborec", Unit: "flagship", Cost: "8"}),
	}
	got := names(s.Partition(cards)[BucketFactionUnit])
	want := []string{
		"Spec Ops",
		"Advanced Carrier",
		"ZS Thunderbolt M2",
		"Genesis",
		"Wrath of Kenara",
		"Arbiter",
		"Zeta",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("faction units = %v\nwant %v", got, want)
	}
}

func TestPartition_StableAndFresh(t *testing.T) {
	first := mk(models.ActionCard{Name: "Sabotage", Effect: "first"})
	second := mk(models.ActionCard{Name: "Sabotage", Effect: "second"})
	cards := []*models.Card{first, second}

	got := Partition(cards)[BucketAction]
	if got[0] != first || got[1] != second {
		t.Error("equal keys should keep input order")
	}
	got[0] = nil
	if cards[0] != first {
		t.Error("partition shares backing array with input")
	}
}

func TestSortByName(t *testing.T) {
	cards := []*models.Card{
		{Name: "beta"},
		{Name: "Alpha"},
		{Name: "alpha"},
		{Name: "Gamma"},
	}
	got := names(SortByName(cards))
	want := []string{"Alpha", "alpha", "beta", "Gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortByName = %v, want %v", got, want)
	}
	if cards[0].Name != "beta" {
		t.Error("SortByName modified input")
	}
}

func TestParsers(t *testing.T) {
	if PrerequisiteCount("[blue, blue ,yellow]") != 3 || PrerequisiteCount("") != 0 || PrerequisiteCount("[none]") != 0 {
		t.Error("PrerequisiteCount wrong")
	}
	if Initiative(" 8 ") != 8 || Initiative("eight") != 0 {
		t.Error("Initiative wrong")
	}
	if Cost("1 (x2)") != 1 || Cost("0.5") != 0.5 || !math.IsInf(Cost("-"), 1) {
		t.Error("Cost wrong")
	}
}
