package ranking

// SortConfig holds the configurable parts of bucket ordering.
type SortConfig struct {
	// LastTechFaction is the faction whose technologies sort after every color class.
	LastTechFaction string `yaml:"last_tech_faction"` // default: nekro
	// FactionOrder is the display order of factions for faction units. Factions not
	// listed sort after, by id.
	FactionOrder []string `yaml:"faction_order"`
}

// DefaultSortConfig returns the default sort configuration.
func DefaultSortConfig() *SortConfig {
	return &SortConfig{
		LastTechFaction: "nekro",
	}
}

// ApplyDefaults fills zero values with defaults.
func (c *SortConfig) ApplyDefaults() {
	defaults := DefaultSortConfig()
	if c.LastTechFaction == "" {
		c.LastTechFaction = defaults.LastTechFaction
	}
}
