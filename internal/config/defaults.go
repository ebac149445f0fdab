package config

const (
	DefaultBaseURL               = "http://localhost:8080/api"
	DefaultAPITimeout            = "30s"
	DefaultMetadataTTL           = "5m"
	DefaultEstimateDelay         = "500ms"
	DefaultPollInterval          = "3s"
	DefaultBadgeInterval         = "30s"
	DefaultDiscoveryPollInterval = "2s"
	DefaultStateDB               = "~/.zenem/state.db"
	DefaultLogLevel              = "warn"
)

// DefaultConfig returns a Config with all default values applied.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultAPITimeout,
		},
		Cache: CacheConfig{
			MetadataTTL: DefaultMetadataTTL,
		},
		Refresh: RefreshConfig{
			EstimateDelay: DefaultEstimateDelay,
			PollInterval:  DefaultPollInterval,
			BadgeInterval: DefaultBadgeInterval,
		},
		Wizard: WizardConfig{
			DiscoveryPollInterval: DefaultDiscoveryPollInterval,
		},
		Notify: NotifyConfig{
			Backends: []string{"terminal"},
		},
		StateDB:  DefaultStateDB,
		LogLevel: DefaultLogLevel,
	}
}
