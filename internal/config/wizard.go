package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .kisanmitra.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to kisanmitra! Let's configure your assistant.")
	fmt.Println()

	defaults := DefaultConfig()

	// 1. HTTP port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(defaults.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n > 65535 {
				return fmt.Errorf("enter a port between 0 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	// 2. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory for the SQLite database",
		Default: defaults.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 3. Rule overlay paths.
	rulesPrompt := promptui.Prompt{
		Label:   "Rule overlay globs (comma-separated, leave blank for built-in rules only)",
		Default: "",
	}
	rulesStr, err := rulesPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("rule paths: %w", err)
	}

	// 4. Session retention.
	retentionPrompt := promptui.Select{
		Label: "Retire idle sessions after",
		Items: []string{"7 days", "30 days", "90 days"},
	}
	retentionIdx, _, err := retentionPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("retention: %w", err)
	}
	retentionDays := []int{7, 30, 90}[retentionIdx]

	cfg := &Config{
		Port:      port,
		DataDir:   dataDir,
		RulePaths: splitAndTrim(rulesStr),
		ExportDir: defaults.ExportDir,
		Scheduler: SchedulerConfig{
			CleanupIntervalMinutes: defaults.Scheduler.CleanupIntervalMinutes,
			MarketIntervalMinutes:  defaults.Scheduler.MarketIntervalMinutes,
			MaxIdleDays:            retentionDays,
		},
	}

	configPath := ".kisanmitra.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
