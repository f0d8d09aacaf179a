package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "kisanmitra",
	Short: "Rule-based agricultural assistant for Indian farmers",
	Long: `KisanMitra understands farmers' questions about crops, diseases,
pests, soil, weather, and market prices. It classifies each message
with transparent keyword rules, tracks the conversation across turns,
and generates personalized advice. No cloud AI involved; everything
runs locally against a SQLite database.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".kisanmitra.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
