package config

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:      8080,
		DataDir:   "data",
		ExportDir: "exports",
		Scheduler: SchedulerConfig{
			CleanupIntervalMinutes: 60,
			MarketIntervalMinutes:  360,
			MaxIdleDays:            30,
		},
	}
}
