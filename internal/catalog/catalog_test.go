package catalog

import (
	"testing"

	"github.com/hyperjump/ti4lookup/internal/models"
)

func TestCatalog_New(t *testing.T) {
	c := New(testTables())
	if len(c.Cards) != 5 {
		t.Errorf("cards: got %d", len(c.Cards))
	}
	f, ok := c.Faction("sol")
	if !ok || f.Name != "The Federation of Sol" {
		t.Errorf("Faction(sol) = %+v, %v", f, ok)
	}
	order := c.FactionOrder()
	if len(order) != 5 || order[0] != "sol" || order[4] != "obsidian" {
		t.Errorf("FactionOrder = %v", order)
	}
}

func TestResolveFaction(t *testing.T) {
	factions := testTables().Factions
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"exact id", "mentak", "mentak", true},
		{"name case-insensitive", "the federation of sol", "sol", true},
		{"fuzzy name", "keleres", "keleres", true},
		{"fuzzy partial", "obsid", "obsidian", true},
		{"empty", "  ", "", false},
		{"no match", "zzzzqqq", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := ResolveFaction(factions, tt.input)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if f.ID != tt.want {
				t.Errorf("got %q, want %q", f.ID, tt.want)
			}
		})
	}
}

func TestParseStartingTechs(t *testing.T) {
	tests := []struct {
		raw        string
		wantPrefix string
		wantNames  []string
	}{
		{"", "", nil},
		{"Neural Motivator", "", []string{"Neural Motivator"}},
		{"Antimass Deflectors, Sarween Tools", "", []string{"Antimass Deflectors", "Sarween Tools"}},
		{"Choose 2 of: Plasma Scoring, Graviton Laser System, Neural Motivator", "Choose 2 of: ", []string{"Plasma Scoring", "Graviton Laser System", "Neural Motivator"}},
	}
	for _, tt := range tests {
		prefix, names := ParseStartingTechs(tt.raw)
		if prefix != tt.wantPrefix {
			t.Errorf("ParseStartingTechs(%q) prefix = %q, want %q", tt.raw, prefix, tt.wantPrefix)
		}
		if len(names) != len(tt.wantNames) {
			t.Errorf("ParseStartingTechs(%q) names = %v, want %v", tt.raw, names, tt.wantNames)
			continue
		}
		for i := range names {
			if names[i] != tt.wantNames[i] {
				t.Errorf("names[%d] = %q, want %q", i, names[i], tt.wantNames[i])
			}
		}
	}
}

func TestTechColors(t *testing.T) {
	cards := Normalize(&models.Tables{
		Technologies: []models.Technology{
			{Name: "Neural Motivator", TechType: "green"},
			{Name: "Magen Defense Grid Ω", TechType: "red"},
		},
	})
	colors := TechColors(cards)
	if colors["Neural Motivator"] != "green" {
		t.Errorf("Neural Motivator color = %q", colors["Neural Motivator"])
	}
	if colors["Magen Defense Grid"] != "red" {
		t.Errorf("base name lookup = %q", colors["Magen Defense Grid"])
	}
}

func TestCatalog_StartingTechs(t *testing.T) {
	tables := testTables()
	tables.Technologies = append(tables.Technologies,
		models.Technology{Name: "Neural Motivator", TechType: "green"},
		models.Technology{Name: "Antimass Deflectors Ω", TechType: "blue"},
	)
	tables.Factions[0].StartingTechnologies = "Choose 1 of: Neural Motivator, Antimass Deflectors, Unknown Tech"
	c := New(tables)

	f, _ := c.Faction("sol")
	prefix, techs := c.StartingTechs(f)
	if prefix == "" {
		t.Error("expected choose prefix")
	}
	want := []StartingTech{
		{Name: "Neural Motivator", Color: "green"},
		{Name: "Antimass Deflectors", Color: "blue"},
		{Name: "Unknown Tech"},
	}
	if len(techs) != len(want) {
		t.Fatalf("techs = %+v", techs)
	}
	for i := range want {
		if techs[i] != want[i] {
			t.Errorf("techs[%d] = %+v, want %+v", i, techs[i], want[i])
		}
	}
}
