package drilltools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/csoneira/solfeo-bot/internal/messages"
)

// SessionsTool handles the solfeo_sessions MCP tool.
type SessionsTool struct {
	drill *Drill
}

// NewSessionsTool creates a SessionsTool over the shared drill state.
func NewSessionsTool(drill *Drill) *SessionsTool {
	return &SessionsTool{drill: drill}
}

// Definition returns the MCP tool definition for solfeo_sessions.
func (t *SessionsTool) Definition() mcp.Tool {
	return mcp.NewTool("solfeo_sessions",
		mcp.WithDescription(
			"List the most recent saved practice sessions: file name, rounds, correct answers and mean answer time.",
		),
		mcp.WithNumber("count",
			mcp.Description("How many sessions to list (default 10)"),
		),
	)
}

// Handle processes the solfeo_sessions tool call.
func (t *SessionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count := req.GetInt("count", 10)
	if count < 1 {
		count = 1
	}

	d := t.drill
	d.mu.Lock()
	defer d.mu.Unlock()

	infos, err := d.history.Recent(d.user, count)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %v", err)), nil
	}
	if len(infos) == 0 {
		return mcp.NewToolResultText(messages.NoSessions(d.lang())), nil
	}

	var b strings.Builder
	b.WriteString(messages.RecentSessions(d.lang(), len(infos)))
	for _, info := range infos {
		fmt.Fprintf(&b, "\n%s — %d rounds, %d correct, %.2fs mean",
			info.File, info.Rounds, info.Corrects, info.MeanSeconds)
	}
	return mcp.NewToolResultText(b.String()), nil
}
