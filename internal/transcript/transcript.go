// Package transcript exports conversation sessions as Markdown or
// standalone HTML documents.
package transcript

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/kisanmitra/kisanmitra/internal/conversation"
)

const timeLayout = "2006-01-02 15:04:05"

// Markdown renders a session as a Markdown transcript.
func Markdown(c *conversation.Context) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Conversation %s\n\n", c.SessionID)
	fmt.Fprintf(&b, "- **User:** %s\n", c.UserID)
	if c.CurrentTopic != "" {
		fmt.Fprintf(&b, "- **Topic:** %s\n", c.CurrentTopic)
	}
	fmt.Fprintf(&b, "- **Started:** %s\n", c.CreatedAt.Format(timeLayout))
	fmt.Fprintf(&b, "- **Last activity:** %s\n", c.LastInteraction.Format(timeLayout))
	b.WriteString("\n")

	if c.ConversationSummary != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(c.ConversationSummary)
		b.WriteString("\n\n")
	}

	if hasProfileFacts(c) {
		b.WriteString("## Farmer profile\n\n")
		writeFact(&b, "Location", c.Profile.Location)
		writeFact(&b, "Farm size", c.Profile.FarmSize)
		writeFact(&b, "Soil type", c.Profile.SoilType)
		writeFact(&b, "Experience", c.Profile.FarmingExperience)
		if len(c.Profile.PreferredCrops) > 0 {
			writeFact(&b, "Preferred crops", strings.Join(c.Profile.PreferredCrops, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Transcript\n\n")
	if len(c.History) == 0 {
		b.WriteString("_No messages yet._\n")
	}
	for _, t := range c.History {
		speaker := "👨‍🌾 Farmer"
		if t.Speaker == conversation.SpeakerBot {
			speaker = "🤖 KisanMitra"
		}
		fmt.Fprintf(&b, "**%s** (%s):\n\n", speaker, t.CreatedAt.Format(timeLayout))
		fmt.Fprintf(&b, "%s\n\n", t.Content)
	}

	if len(c.FollowUpQuestions) > 0 {
		b.WriteString("## Open follow-ups\n\n")
		for _, q := range c.FollowUpQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}

	return b.String()
}

// HTML renders a session as a standalone HTML page.
func HTML(c *conversation.Context) ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(c)), &body); err != nil {
		return nil, fmt.Errorf("converting transcript: %w", err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, pageShell, c.SessionID, body.String())
	return page.Bytes(), nil
}

// WriteFile exports the session into dir as <session>.md or <session>.html
// and returns the written path.
func WriteFile(c *conversation.Context, dir, format string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	var (
		data []byte
		ext  string
		err  error
	)
	switch format {
	case "html":
		ext = ".html"
		data, err = HTML(c)
		if err != nil {
			return "", err
		}
	case "md", "markdown", "":
		ext = ".md"
		data = []byte(Markdown(c))
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}

	path := filepath.Join(dir, c.SessionID+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing transcript: %w", err)
	}
	return path, nil
}

func hasProfileFacts(c *conversation.Context) bool {
	return c.Profile.Location != "" || c.Profile.FarmSize != "" ||
		c.Profile.SoilType != "" || c.Profile.FarmingExperience != "" ||
		len(c.Profile.PreferredCrops) > 0
}

func writeFact(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "- **%s:** %s\n", label, value)
	}
}

const pageShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Conversation %s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; }
h1, h2 { color: #1a5632; }
</style>
</head>
<body>
%s
</body>
</html>
`
