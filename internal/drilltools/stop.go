package drilltools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/csoneira/solfeo-bot/internal/messages"
	"github.com/csoneira/solfeo-bot/internal/session"
)

// StopTool handles the solfeo_stop MCP tool.
type StopTool struct {
	drill *Drill
}

// NewStopTool creates a StopTool over the shared drill state.
func NewStopTool(drill *Drill) *StopTool {
	return &StopTool{drill: drill}
}

// Definition returns the MCP tool definition for solfeo_stop.
func (t *StopTool) Definition() mcp.Tool {
	return mcp.NewTool("solfeo_stop",
		mcp.WithDescription(
			"End the running timed session and save its rounds as a CSV session file. "+
				"Free mode has nothing to save and is simply left.",
		),
	)
}

// Handle processes the solfeo_stop tool call.
func (t *StopTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d := t.drill
	d.mu.Lock()
	defer d.mu.Unlock()

	lang := d.lang()

	rounds, err := d.sess.Stop()
	if err != nil {
		if errors.Is(err, session.ErrNoTimedSession) {
			return mcp.NewToolResultText(messages.NoTimedSession(lang)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rounds) == 0 {
		return mcp.NewToolResultText(messages.NothingToSave(lang)), nil
	}

	path, err := d.save(rounds)
	if err != nil {
		return mcp.NewToolResultError(messages.SaveFailed(lang, err)), nil
	}
	return mcp.NewToolResultText(messages.SessionSaved(lang, path)), nil
}
