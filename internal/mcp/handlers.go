package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kisanmitra/kisanmitra/internal/conversation"
)

// handleChatMessage runs one full assistant turn.
func (s *Server) handleChatMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: user_id"), nil
	}
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: message"), nil
	}
	sessionID := request.GetString("session_id", "")

	reply, err := s.engine.ProcessMessage(ctx, userID, sessionID, message)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("processing failed: %v", err)), nil
	}

	out, err := json.MarshalIndent(reply, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding reply: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// handleClassifyText classifies text without a session.
func (s *Server) handleClassifyText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	cls := s.engine.Classifier().Classify(text)
	out, err := json.MarshalIndent(cls, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding classification: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// handleGetSession returns the stored conversation context.
func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}

	convo, err := s.engine.Manager().LookupSession(ctx, sessionID)
	if errors.Is(err, conversation.ErrSessionNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("no session found with id %q", sessionID)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading session: %v", err)), nil
	}

	out, err := json.MarshalIndent(convo, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding session: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// handleGetMarketPrice lists quotes for a crop.
func (s *Server) handleGetMarketPrice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	crop, err := request.RequireString("crop")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: crop"), nil
	}
	if s.prices == nil {
		return mcp.NewToolResultError("market prices are not configured on this server"), nil
	}

	quotes, err := s.prices.List(ctx, strings.ToLower(crop))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing prices: %v", err)), nil
	}
	if len(quotes) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No quotes found for %q. Run `kisanmitra seed` to load the baseline dataset.", crop)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Market prices for %s:\n", crop)
	for _, q := range quotes {
		fmt.Fprintf(&b, "- %s, %s: ₹%.0f/quintal (%s)\n", q.Mandi, q.State, q.PricePerQuintal, q.Trend)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleGetPreferences returns a farmer's learned preferences.
func (s *Server) handleGetPreferences(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: user_id"), nil
	}

	prefs, err := s.engine.Manager().GetUserPreferences(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading preferences: %v", err)), nil
	}
	if len(prefs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No preferences learned for %q yet.", userID)), nil
	}

	out, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding preferences: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
