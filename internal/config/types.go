package config

// Config is the top-level kisanmitra configuration, corresponding to
// .kisanmitra.yml.
type Config struct {
	Port         int             `yaml:"port" koanf:"port"`
	DataDir      string          `yaml:"data_dir" koanf:"data_dir"`
	CORSAllowAll bool            `yaml:"cors_allow_all" koanf:"cors_allow_all"`
	RulePaths    []string        `yaml:"rule_paths" koanf:"rule_paths"`
	ExportDir    string          `yaml:"export_dir" koanf:"export_dir"`
	Scheduler    SchedulerConfig `yaml:"scheduler" koanf:"scheduler"`
}

// SchedulerConfig holds background maintenance settings.
type SchedulerConfig struct {
	CleanupIntervalMinutes int `yaml:"cleanup_interval_minutes" koanf:"cleanup_interval_minutes"`
	MarketIntervalMinutes  int `yaml:"market_interval_minutes" koanf:"market_interval_minutes"`
	MaxIdleDays            int `yaml:"max_idle_days" koanf:"max_idle_days"`
}
