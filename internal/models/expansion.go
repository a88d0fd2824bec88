package models

import "strings"

// ExpansionID identifies a content pack the user can select.
type ExpansionID string

const (
	ExpansionPoK          ExpansionID = "pok"
	ExpansionCodex1       ExpansionID = "codex1"
	ExpansionCodex2       ExpansionID = "codex2"
	ExpansionCodex3       ExpansionID = "codex3"
	ExpansionCodex4       ExpansionID = "codex4"
	ExpansionThundersEdge ExpansionID = "thundersEdge"
)

// Expansions lists every expansion in release order.
var Expansions = []ExpansionID{
	ExpansionPoK,
	ExpansionCodex1,
	ExpansionCodex2,
	ExpansionCodex3,
	ExpansionCodex4,
	ExpansionThundersEdge,
}

var expansionLabels = map[ExpansionID]string{
	ExpansionPoK:          "Prophecy of Kings",
	ExpansionCodex1:       "Codex 1",
	ExpansionCodex2:       "Codex 2",
	ExpansionCodex3:       "Codex 3",
	ExpansionCodex4:       "Codex 4",
	ExpansionThundersEdge: "Thunder's Edge",
}

// Label returns the display name of the expansion, or the raw id when unknown.
func (e ExpansionID) Label() string {
	if l, ok := expansionLabels[e]; ok {
		return l
	}
	return string(e)
}

// Valid reports whether e is a known expansion.
func (e ExpansionID) Valid() bool {
	_, ok := expansionLabels[e]
	return ok
}

// ParseExpansionID matches s case-insensitively against expansion ids.
func ParseExpansionID(s string) (ExpansionID, bool) {
	s = strings.TrimSpace(s)
	for _, id := range Expansions {
		if strings.EqualFold(string(id), s) {
			return id, true
		}
	}
	return "", false
}
