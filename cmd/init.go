package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kisanmitra/kisanmitra/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize kisanmitra configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure kisanmitra and generates a .kisanmitra.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
