// Package assistant wires the classifier, conversation manager, and
// response generator into the single entry point every surface (HTTP,
// websocket, CLI chat, MCP) calls to process a farmer's message.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/kisanmitra/kisanmitra/internal/classifier"
	"github.com/kisanmitra/kisanmitra/internal/conversation"
	"github.com/kisanmitra/kisanmitra/internal/responder"
)

// Reply is the complete outcome of processing one message.
type Reply struct {
	SessionID   string                      `json:"session_id"`
	UserID      string                      `json:"user_id"`
	Content     string                      `json:"content"`
	Response    responder.GeneratedResponse `json:"response"`
	Summary     string                      `json:"conversation_summary"`
	Suggestions []string                    `json:"suggestions"`
}

// Engine orchestrates one conversational turn end to end.
type Engine struct {
	classifier *classifier.Classifier
	manager    *conversation.Manager
	generator  *responder.Generator
}

// NewEngine assembles the engine from its three stages.
func NewEngine(cls *classifier.Classifier, mgr *conversation.Manager, gen *responder.Generator) *Engine {
	return &Engine{classifier: cls, manager: mgr, generator: gen}
}

// Manager exposes the conversation manager for surfaces that need
// session-level operations directly.
func (e *Engine) Manager() *conversation.Manager { return e.manager }

// Classifier exposes the classifier for classification-only surfaces.
func (e *Engine) Classifier() *classifier.Classifier { return e.classifier }

// ProcessMessage runs one turn: classify the utterance, resolve the
// session, render the reply against the pre-turn context, then fold the
// completed exchange back into the session. A failed durable write is
// logged and tolerated; the reply is still returned from memory.
func (e *Engine) ProcessMessage(ctx context.Context, userID, sessionID, message string) (*Reply, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	cls := e.classifier.Classify(message)

	convo, err := e.manager.GetOrCreateSession(ctx, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolving session: %w", err)
	}

	resp := e.generator.Generate(ctx, cls, convo)

	updated, err := e.manager.UpdateContext(ctx, convo.SessionID, cls, message, resp.Content)
	if err != nil {
		var pe *conversation.PersistError
		if !errors.As(err, &pe) {
			return nil, fmt.Errorf("updating context: %w", err)
		}
		log.Printf("assistant: context for session %s kept in memory only: %v", convo.SessionID, pe)
		if updated == nil {
			updated = convo
		}
	}

	return &Reply{
		SessionID:   updated.SessionID,
		UserID:      userID,
		Content:     resp.Content,
		Response:    resp,
		Summary:     updated.ConversationSummary,
		Suggestions: e.manager.Suggestions(updated),
	}, nil
}
