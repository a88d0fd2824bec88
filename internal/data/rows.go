package data

import (
	"strings"
)

// Row is one decoded table row keyed by normalized header.
type Row map[string]string

var headerReplacer = strings.NewReplacer(" ", "", "_", "", "-", "", "\ufeff", "")

// normalizeKey lowercases a header or table name and drops spaces, underscores and dashes,
// so "Faction ID", "faction_id" and "factionId" are the same column.
func normalizeKey(s string) string {
	return headerReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Get returns the trimmed value of the first listed column that is present and non-empty.
func (r Row) Get(keys ...string) string {
	for _, k := range keys {
		if v, ok := r[normalizeKey(k)]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// rowsFromRecords maps records to rows using the first record as header. Rows whose cells
// are all blank are skipped; short rows leave the missing columns empty.
func rowsFromRecords(records [][]string) []Row {
	if len(records) == 0 {
		return nil
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = normalizeKey(h)
	}
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		blank := true
		for i, h := range header {
			if h == "" || i >= len(rec) {
				continue
			}
			row[h] = rec[i]
			if strings.TrimSpace(rec[i]) != "" {
				blank = false
			}
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows
}

// factionID normalizes a faction id cell.
func factionID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// parseList parses "[a, b]" (brackets and quotes optional) into trimmed, lowercased items.
func parseList(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = factionID(strings.Trim(strings.TrimSpace(p), `"'`))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "x":
		return true
	}
	return false
}
