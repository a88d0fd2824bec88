// Package cli provides output formatting for the ti4lookup command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/ti4lookup/internal/catalog"
	"github.com/hyperjump/ti4lookup/internal/models"
	"github.com/hyperjump/ti4lookup/internal/search"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text grouped by bucket (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact is one line per card.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// ParseFormat resolves a -format flag value.
func ParseFormat(s string) (SearchOutputFormat, error) {
	switch f := SearchOutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

const snippetLen = 200

// WriteSearchResults writes a search response to w in the given format.
func WriteSearchResults(w io.Writer, response *search.Response, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for _, r := range response.Results {
			fmt.Fprintln(w, compactLine(r.Card))
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *search.Response) {
	if response.Mode == search.ModeBrowse {
		fmt.Fprintf(w, "\n%d cards in %dms\n", response.Total, response.QueryTime)
	} else {
		fmt.Fprintf(w, "\nFound %d results for %q in %dms (showing %d)\n", response.Total, response.Query, response.QueryTime, len(response.Results))
	}
	if response.Total == 0 && len(response.Suggestions) > 0 {
		fmt.Fprintf(w, "Did you mean: %s\n", strings.Join(response.Suggestions, ", "))
	}
	for _, b := range response.Buckets {
		fmt.Fprintf(w, "\n=== %s (%d) ===\n", bucketTitle(string(b.Bucket)), len(b.Cards))
		for _, c := range b.Cards {
			writeOneCard(w, c, response.Query)
		}
	}
	fmt.Fprintln(w)
}

func writeOneCard(w io.Writer, c *models.Card, query string) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	header := c.Name
	if c.FactionName != "" {
		header += " | " + c.FactionName
	}
	if c.Version != "" {
		header += " | " + c.Version
	}
	fmt.Fprintln(w, search.Highlight(header, query, "*", "*"))
	if body := strings.TrimSpace(strings.TrimPrefix(c.SearchText, c.Name)); body != "" {
		fmt.Fprintf(w, "%s\n", search.Highlight(search.Snippet(body, snippetLen), query, "*", "*"))
	}
}

func compactLine(c *models.Card) string {
	line := fmt.Sprintf("%s [%s]", c.Name, c.Type)
	if c.FactionName != "" {
		line += " (" + c.FactionName + ")"
	}
	return line
}

func bucketTitle(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// WriteFactions lists factions as "id  name" lines, or JSON.
func WriteFactions(w io.Writer, factions []models.Faction, format SearchOutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, factions)
	}
	for _, f := range factions {
		fmt.Fprintf(w, "%-12s %s\n", f.ID, f.Name)
	}
	return nil
}

// FactionView is the faction setup summary printed before its cards.
type FactionView struct {
	Faction            models.Faction         `json:"faction"`
	StartingTechPrefix string                 `json:"starting_tech_prefix,omitempty"`
	StartingTechs      []catalog.StartingTech `json:"starting_techs"`
	Search             *search.Response       `json:"search"`
}

// WriteFactionView writes a faction summary followed by its cards.
func WriteFactionView(w io.Writer, v FactionView, format SearchOutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, v)
	}
	fmt.Fprintf(w, "%s (%s)\n", v.Faction.Name, v.Faction.ID)
	if v.Faction.StartingFleet != "" {
		fmt.Fprintf(w, "Starting fleet: %s\n", v.Faction.StartingFleet)
	}
	if len(v.StartingTechs) > 0 {
		names := make([]string, len(v.StartingTechs))
		for i, t := range v.StartingTechs {
			names[i] = t.Name
			if t.Color != "" {
				names[i] += " (" + t.Color + ")"
			}
		}
		fmt.Fprintf(w, "Starting technologies: %s%s\n", v.StartingTechPrefix, strings.Join(names, ", "))
	}
	if v.Search == nil {
		return nil
	}
	return WriteSearchResults(w, v.Search, format)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
