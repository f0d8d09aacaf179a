package mcp

import "github.com/mark3labs/mcp-go/mcp"

// chatMessageTool defines the chat_message MCP tool.
var chatMessageTool = mcp.NewTool("chat_message",
	mcp.WithDescription("Send a farmer's message to the agricultural assistant and get the full reply, including suggested actions and follow-up questions."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("Stable identifier for the farmer"),
	),
	mcp.WithString("session_id",
		mcp.Description("Existing conversation session to continue; omit to start a new one"),
	),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("The farmer's message"),
	),
)

// classifyTextTool defines the classify_text MCP tool.
var classifyTextTool = mcp.NewTool("classify_text",
	mcp.WithDescription("Classify a message without touching any session: intent, entities, sentiment, and urgency."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Text to classify"),
	),
)

// getSessionTool defines the get_session MCP tool.
var getSessionTool = mcp.NewTool("get_session",
	mcp.WithDescription("Get a conversation session's current topic, summary, active entities, and follow-up questions."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session identifier"),
	),
)

// getMarketPriceTool defines the get_market_price MCP tool.
var getMarketPriceTool = mcp.NewTool("get_market_price",
	mcp.WithDescription("Get current mandi prices for a crop."),
	mcp.WithString("crop",
		mcp.Required(),
		mcp.Description("Crop name, lower case (e.g. wheat, rice, cotton)"),
	),
)

// getPreferencesTool defines the get_user_preferences MCP tool.
var getPreferencesTool = mcp.NewTool("get_user_preferences",
	mcp.WithDescription("Get the learned preferences for a farmer, grouped by preference type."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("Stable identifier for the farmer"),
	),
)
