package drilltools

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/csoneira/solfeo-bot/internal/messages"
	"github.com/csoneira/solfeo-bot/internal/render"
	"github.com/csoneira/solfeo-bot/internal/session"
)

// DealTool handles the solfeo_deal MCP tool.
type DealTool struct {
	drill *Drill
}

// NewDealTool creates a DealTool over the shared drill state.
func NewDealTool(drill *Drill) *DealTool {
	return &DealTool{drill: drill}
}

// Definition returns the MCP tool definition for solfeo_deal.
func (t *DealTool) Definition() mcp.Tool {
	return mcp.NewTool("solfeo_deal",
		mcp.WithDescription(
			"Deal a random note on a treble or bass staff and return it as a PNG image. "+
				"The client answers with solfeo_answer. In timed mode the response clock starts now "+
				"and correct/incorrect rounds are recorded for the session.",
		),
		mcp.WithString("mode",
			mcp.Description("Drill mode: 'timed' records rounds and latencies, 'free' just judges (default: current mode, or timed)"),
		),
	)
}

// Handle processes the solfeo_deal tool call.
func (t *DealTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d := t.drill
	d.mu.Lock()
	defer d.mu.Unlock()

	mode := req.GetString("mode", "")
	switch mode {
	case "free":
		if d.sess.Mode() != session.ModeFree {
			d.sess.StartFree()
		}
	case "timed":
		if d.sess.Mode() != session.ModeTimed {
			d.sess.StartTimed()
		}
	case "":
		if d.sess.Mode() == session.ModeIdle {
			d.sess.StartTimed()
		}
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown mode %q, want 'free' or 'timed'", mode)), nil
	}

	note, err := d.sess.Deal()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to deal a note: %v", err)), nil
	}

	img, err := render.StaffPNG(note)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render staff: %v", err)), nil
	}

	question := messages.Question(d.lang(), note.Clef.Label())
	return mcp.NewToolResultImage(question, base64.StdEncoding.EncodeToString(img), "image/png"), nil
}
