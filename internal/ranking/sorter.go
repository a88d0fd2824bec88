package ranking

import (
	"cmp"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperjump/ti4lookup/internal/models"
)

// Sorter partitions cards and orders each bucket. It holds no mutable state after
// construction and is safe for concurrent use.
type Sorter struct {
	lastTechFaction string
	factionRank     map[string]int
}

// NewSorter creates a Sorter from config; nil uses the defaults. config is not modified.
func NewSorter(config *SortConfig) *Sorter {
	if config == nil {
		config = DefaultSortConfig()
	}
	cfg := *config
	cfg.ApplyDefaults()
	config = &cfg

	rank := make(map[string]int, len(config.FactionOrder))
	for i, id := range config.FactionOrder {
		id = strings.ToLower(strings.TrimSpace(id))
		if _, dup := rank[id]; !dup {
			rank[id] = i
		}
	}
	return &Sorter{
		lastTechFaction: strings.ToLower(strings.TrimSpace(config.LastTechFaction)),
		factionRank:     rank,
	}
}

// Partition partitions cards with the default Sorter.
func Partition(cards []*models.Card) Partitioned {
	return NewSorter(nil).Partition(cards)
}

// Partition splits cards into buckets, each a fresh slice sorted stably by the bucket's order.
func (s *Sorter) Partition(cards []*models.Card) Partitioned {
	out := make(Partitioned)
	for _, c := range cards {
		b := BucketOf(c)
		out[b] = append(out[b], c)
	}
	for b, list := range out {
		compare := s.comparator(b)
		sort.SliceStable(list, func(i, j int) bool {
			return compare(list[i], list[j]) < 0
		})
	}
	return out
}

// SortByName returns a copy of cards ordered by name.
func SortByName(cards []*models.Card) []*models.Card {
	out := make([]*models.Card, len(cards))
	copy(out, cards)
	sort.SliceStable(out, func(i, j int) bool {
		return compareName(out[i], out[j]) < 0
	})
	return out
}

type comparator func(a, b *models.Card) int

func (s *Sorter) comparator(b Bucket) comparator {
	switch b {
	case BucketStrategy:
		return compareStrategy
	case BucketTechnology:
		return s.compareTechnology
	case BucketFactionTechnology:
		return s.compareFactionTechnology
	case BucketFactionLeader:
		return compareLeader
	case BucketExploration:
		return compareExploration
	case BucketUnit:
		return compareUnit
	case BucketFactionUnit:
		return s.compareFactionUnit
	}
	return compareName
}

// compareName orders case-insensitively, then by raw bytes.
func compareName(a, b *models.Card) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

func compareStrategy(a, b *models.Card) int {
	ia, ib := 0, 0
	if r, ok := a.Record.(models.StrategyCard); ok {
		ia = Initiative(r.Initiative)
	}
	if r, ok := b.Record.(models.StrategyCard); ok {
		ib = Initiative(r.Initiative)
	}
	if c := cmp.Compare(ia, ib); c != 0 {
		return c
	}
	return compareName(a, b)
}

func (s *Sorter) compareTechnology(a, b *models.Card) int {
	ta, _ := a.Record.(models.Technology)
	tb, _ := b.Record.(models.Technology)
	if c := cmp.Compare(s.TechClass(ta), s.TechClass(tb)); c != 0 {
		return c
	}
	if c := cmp.Compare(PrerequisiteCount(ta.Prerequisites), PrerequisiteCount(tb.Prerequisites)); c != 0 {
		return c
	}
	return compareName(a, b)
}

// compareFactionTechnology groups by faction with the last tech faction's group at the end.
func (s *Sorter) compareFactionTechnology(a, b *models.Card) int {
	if la, lb := s.isLastTechFaction(a.FactionID), s.isLastTechFaction(b.FactionID); la != lb {
		if la {
			return 1
		}
		return -1
	}
	if c := strings.Compare(a.FactionID, b.FactionID); c != 0 {
		return c
	}
	return s.compareTechnology(a, b)
}

func compareLeader(a, b *models.Card) int {
	if c := strings.Compare(a.FactionID, b.FactionID); c != 0 {
		return c
	}
	la, _ := a.Record.(models.FactionLeader)
	lb, _ := b.Record.(models.FactionLeader)
	if c := cmp.Compare(rankOf(leaderOrder, la.LeaderType), rankOf(leaderOrder, lb.LeaderType)); c != 0 {
		return c
	}
	return compareName(a, b)
}

func compareExploration(a, b *models.Card) int {
	ea, _ := a.Record.(models.Exploration)
	eb, _ := b.Record.(models.Exploration)
	if c := cmp.Compare(rankOf(traitOrder, ea.ExplorationType), rankOf(traitOrder, eb.ExplorationType)); c != 0 {
		return c
	}
	return compareName(a, b)
}

func compareUnit(a, b *models.Card) int {
	ua, _ := a.Record.(models.Unit)
	ub, _ := b.Record.(models.Unit)
	if c := cmp.Compare(Cost(ua.Cost), Cost(ub.Cost)); c != 0 {
		return c
	}
	return compareName(a, b)
}

func (s *Sorter) compareFactionUnit(a, b *models.Card) int {
	if c := s.compareFaction(a.FactionID, b.FactionID); c != 0 {
		return c
	}
	ua, _ := a.Record.(models.Unit)
	ub, _ := b.Record.(models.Unit)
	if c := cmp.Compare(unitClass(ua), unitClass(ub)); c != 0 {
		return c
	}
	return compareUnit(a, b)
}

// compareFaction orders listed factions by display rank, then unlisted ones by id.
func (s *Sorter) compareFaction(a, b string) int {
	ra, okA := s.factionRank[a]
	rb, okB := s.factionRank[b]
	switch {
	case okA && okB:
		if c := cmp.Compare(ra, rb); c != 0 {
			return c
		}
	case okA:
		return -1
	case okB:
		return 1
	}
	return strings.Compare(a, b)
}

var (
	techColorOrder = []string{"blue", "green", "yellow", "red", "unitupgrade"}
	leaderOrder    = []string{"agent", "commander", "hero"}
	traitOrder     = []string{"cultural", "hazardous", "industrial", "frontier"}
)

// rankOf returns the position of v in order, or len(order) when absent. Comparison folds
// case and ignores spaces and underscores.
func rankOf(order []string, v string) int {
	v = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(v)))
	for i, o := range order {
		if o == v {
			return i
		}
	}
	return len(order)
}

// TechClass returns the color class of a technology: the four colors, unit upgrades,
// anything else, and finally the configured last faction's technologies.
func (s *Sorter) TechClass(t models.Technology) int {
	if s.isLastTechFaction(t.FactionID) {
		return len(techColorOrder) + 1
	}
	return rankOf(techColorOrder, t.TechType)
}

func (s *Sorter) isLastTechFaction(id string) bool {
	return s.lastTechFaction != "" && strings.EqualFold(strings.TrimSpace(id), s.lastTechFaction)
}

// PrerequisiteCount counts entries of a list such as "[blue,blue,yellow]". Empty lists,
// "[]" and "none" count zero.
func PrerequisiteCount(raw string) int {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	n := 0
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" || strings.EqualFold(p, "none") {
			continue
		}
		n++
	}
	return n
}

var leadingNumber = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)

// Initiative parses a strategy card initiative; non-numeric values are 0.
func Initiative(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// Cost parses the leading number of a unit cost such as "1 (x2)". Missing or non-numeric
// costs sort last.
func Cost(raw string) float64 {
	m := leadingNumber.FindStringSubmatch(raw)
	if m == nil {
		return math.Inf(1)
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return math.Inf(1)
	}
	return f
}

// unitClass puts regular units first; flagships and mechs tie after them.
func unitClass(u models.Unit) int {
	if u.IsFlagship() || u.IsMech() {
		return 1
	}
	return 0
}
