package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Retire conversations that have been idle too long",
	Long:  `Marks sessions inactive once they have seen no messages for the retention period and evicts them from memory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		engine, _, database, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		days := cleanupDays
		if days <= 0 {
			days = cfg.Scheduler.MaxIdleDays
		}

		retired, err := engine.Manager().CleanupOldSessions(cmd.Context(), days)
		if err != nil {
			return err
		}

		fmt.Printf("Retired %d sessions idle for more than %d days\n", retired, days)
		return nil
	},
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "Idle days before a session is retired (defaults to config)")
	rootCmd.AddCommand(cleanupCmd)
}
