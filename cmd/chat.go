package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var chatUserID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long:  `Starts an interactive conversation with the assistant. Type 'exit' or press Ctrl+C to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		engine, prices, database, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		if _, err := prices.EnsureSeeded(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not seed market prices: %v\n", err)
		}

		userID := strings.TrimSpace(chatUserID)
		if userID == "" {
			namePrompt := promptui.Prompt{
				Label:   "Your name",
				Default: "farmer",
			}
			userID, err = namePrompt.Run()
			if err != nil {
				return promptErr(err)
			}
		}

		fmt.Printf("\n🌾 Namaste %s! Ask me about crops, pests, diseases, soil, weather, or market prices.\n\n", userID)

		sessionID := ""
		for {
			input := promptui.Prompt{Label: "You"}
			message, err := input.Run()
			if err != nil {
				if isPromptExit(err) {
					break
				}
				return err
			}
			message = strings.TrimSpace(message)
			if message == "" {
				continue
			}
			if message == "exit" || message == "quit" {
				break
			}

			reply, err := engine.ProcessMessage(cmd.Context(), userID, sessionID, message)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			sessionID = reply.SessionID

			fmt.Printf("\n%s\n", reply.Content)
			if len(reply.Response.FollowUpQuestions) > 0 {
				fmt.Println()
				for _, q := range reply.Response.FollowUpQuestions {
					fmt.Printf("  • %s\n", q)
				}
			}
			fmt.Println()
		}

		fmt.Println("\nGoodbye! 🙏")
		return nil
	},
}

func promptErr(err error) error {
	if isPromptExit(err) {
		return nil
	}
	return err
}

func isPromptExit(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, io.EOF)
}

func init() {
	chatCmd.Flags().StringVar(&chatUserID, "user", "", "User id for the conversation (prompted if empty)")
	rootCmd.AddCommand(chatCmd)
}
