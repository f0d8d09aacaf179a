package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kisanmitra/kisanmitra/internal/conversation"
	"github.com/kisanmitra/kisanmitra/internal/transcript"
)

var (
	exportFormat string
	exportDir    string
)

var exportCmd = &cobra.Command{
	Use:   "export [session-id]",
	Short: "Export a conversation transcript",
	Long:  `Writes the transcript of a stored conversation to a Markdown or HTML file.`,
	Args:  cobra.ExactArgs(1),
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

		convo, err := engine.Manager().LookupSession(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, conversation.ErrSessionNotFound) {
				return fmt.Errorf("no session found with id %q", args[0])
			}
			return err
		}

		dir := exportDir
		if dir == "" {
			dir = cfg.ExportDir
		}

		path, err := transcript.WriteFile(convo, dir, exportFormat)
		if err != nil {
			return err
		}

		fmt.Printf("Exported transcript to %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "md", "Output format: md or html")
	exportCmd.Flags().StringVar(&exportDir, "out", "", "Output directory (defaults to export_dir from config)")
	rootCmd.AddCommand(exportCmd)
}
