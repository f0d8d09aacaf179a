package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kisanmitra/kisanmitra/internal/classifier"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Classify a message without starting a conversation",
	Long:  `Runs the intent classifier on the given text and prints the classification as JSON.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		catalog, err := buildCatalog(cfg)
		if err != nil {
			return err
		}
		cls, err := classifier.New(catalog)
		if err != nil {
			return err
		}

		result := cls.Classify(strings.Join(args, " "))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encoding classification: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
