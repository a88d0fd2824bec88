package config

// Preference store backends.
const (
	BackendSQLite = "sqlite"
	BackendYAML   = "yaml"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Data.Path == "" {
		cfg.Data.Path = "./data"
	}
	if cfg.Data.WatchDebounceMS == 0 {
		cfg.Data.WatchDebounceMS = 500
	}
	if cfg.Search.Threshold == 0 {
		cfg.Search.Threshold = 0.3
	}
	if cfg.Search.NameWeight == 0 {
		cfg.Search.NameWeight = 0.5
	}
	if cfg.Search.SearchTextWeight == 0 {
		cfg.Search.SearchTextWeight = 0.5
	}
	if cfg.Search.CategoryLimit == 0 {
		cfg.Search.CategoryLimit = 50
	}
	if cfg.Search.GlobalLimit == 0 {
		cfg.Search.GlobalLimit = 120
	}
	if cfg.Search.DebounceMS == 0 {
		cfg.Search.DebounceMS = 50
	}
	if cfg.Search.IndexCacheSize == 0 {
		cfg.Search.IndexCacheSize = 16
	}
	if cfg.Search.Suggestions == 0 {
		cfg.Search.Suggestions = 3
	}
	if cfg.Preferences.Backend == "" {
		cfg.Preferences.Backend = BackendSQLite
	}
	if cfg.Preferences.Path == "" {
		switch cfg.Preferences.Backend {
		case BackendYAML:
			cfg.Preferences.Path = "/usr/local/var/ti4lookup/preferences.yaml"
		default:
			cfg.Preferences.Path = "/usr/local/var/ti4lookup/preferences.db"
		}
	}
	cfg.Sort.ApplyDefaults()
}
