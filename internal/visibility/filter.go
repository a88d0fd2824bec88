package visibility

import (
	"strconv"
	"strings"

	"github.com/hyperjump/ti4lookup/internal/models"
)

// Options are the inputs of the visibility filter.
type Options struct {
	Selection Selection
	// FactionID scopes the result to one faction when non-empty.
	FactionID string
	// IncludeRetired disables the retirement and reprint-dedup stages.
	IncludeRetired bool
}

// Key is a stable string form of the options, used to cache derived indexes.
func (o Options) Key() string {
	return o.Selection.Key() + "|" + o.FactionID + "|" + strconv.FormatBool(o.IncludeRetired)
}

// Filter returns the visible subset of cards. The input is not modified and the output
// keeps the input's relative order. Stages run in order: edition match, faction scope,
// retirement, reprint dedup, content-pack gating.
func Filter(cards []*models.Card, opts Options) []*models.Card {
	versions := opts.Selection.Versions()
	out := make([]*models.Card, 0, len(cards))
	for _, c := range cards {
		if !MatchesEdition(c.Version, versions) {
			continue
		}
		if opts.FactionID != "" && !c.HasFaction(opts.FactionID) {
			continue
		}
		if !opts.IncludeRetired && Retired(c, opts.Selection) {
			continue
		}
		out = append(out, c)
	}
	if !opts.IncludeRetired {
		out = LatestReprints(out)
	}
	gated := make([]*models.Card, 0, len(out))
	for _, c := range out {
		if !Gated(c, opts.Selection) {
			gated = append(gated, c)
		}
	}
	return gated
}

// MatchesEdition reports whether a card of the given version is visible. Empty and
// "base game" versions are always visible; anything else must be a selected version label.
func MatchesEdition(version string, selected map[string]struct{}) bool {
	v := normalizeVersion(version)
	if v == "" || v == BaseGameVersion {
		return true
	}
	_, ok := selected[v]
	return ok
}

// Retired reports whether a card is hidden by the retirement rules.
func Retired(c *models.Card, sel Selection) bool {
	if ExcludedByThreshold(c.ExcludeAfter, sel) {
		return true
	}
	if a, ok := c.Record.(models.Agenda); ok {
		return ExcludedByRemoval(a, sel)
	}
	return false
}

// ExcludedByThreshold reports whether an "exclude after" version has been reached by the
// selection. Empty or unknown thresholds never exclude.
func ExcludedByThreshold(excludeAfter string, sel Selection) bool {
	if normalizeVersion(excludeAfter) == "" {
		return false
	}
	return sel.reached(excludeAfter)
}

// ExcludedByRemoval reports whether an agenda removed by a named expansion is hidden: it is
// when that expansion, or any later one, is selected.
func ExcludedByRemoval(a models.Agenda, sel Selection) bool {
	if strings.EqualFold(strings.TrimSpace(a.RemovedInPok), "true") && sel.reached(VersionFor(models.ExpansionPoK)) {
		return true
	}
	if normalizeVersion(a.ExcludeIn) != "" {
		return sel.reached(a.ExcludeIn)
	}
	return false
}

type reprintKey struct {
	cardType  models.CardType
	baseName  string
	factionID string
}

// LatestReprints keeps, per (type, base name, faction), the card with the most reprint
// markers. Ties keep the first one encountered. Output is a subsequence of cards.
func LatestReprints(cards []*models.Card) []*models.Card {
	best := make(map[reprintKey]int, len(cards))
	for i, c := range cards {
		k := reprintKey{cardType: c.Type, baseName: models.BaseName(c.Name), factionID: c.FactionID}
		j, seen := best[k]
		if !seen || models.ReprintCount(c.Name) > models.ReprintCount(cards[j].Name) {
			best[k] = i
		}
	}
	keep := make([]bool, len(cards))
	for _, i := range best {
		keep[i] = true
	}
	out := make([]*models.Card, 0, len(best))
	for i, c := range cards {
		if keep[i] {
			out = append(out, c)
		}
	}
	return out
}
