package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kisanmitra/kisanmitra/internal/db"
	"github.com/kisanmitra/kisanmitra/internal/market"
	"github.com/kisanmitra/kisanmitra/internal/progress"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the baseline market price dataset",
	Long:  `Writes the bundled mandi price dataset into the local database. Existing quotes for the same crop and mandi are overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "kisanmitra.db"))
		if err != nil {
			return err
		}
		defer database.Close()

		prices := market.NewStore(database)

		reporter := progress.NewReporter("Seeding market prices")
		reporter.Start(len(market.SeedPrices))
		for i, p := range market.SeedPrices {
			if err := prices.Upsert(cmd.Context(), p); err != nil {
				reporter.Finish()
				return fmt.Errorf("seeding %s (%s): %w", p.Crop, p.Mandi, err)
			}
			reporter.Update(i+1, fmt.Sprintf("%s @ %s", p.Crop, p.Mandi))
		}
		reporter.Finish()

		fmt.Printf("Seeded %d market quotes into %s\n", len(market.SeedPrices), database.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
