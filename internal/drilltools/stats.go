package drilltools

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/csoneira/solfeo-bot/internal/analytics"
	"github.com/csoneira/solfeo-bot/internal/history"
	"github.com/csoneira/solfeo-bot/internal/messages"
	"github.com/csoneira/solfeo-bot/internal/music"
)

// StatsTool handles the solfeo_stats MCP tool.
type StatsTool struct {
	drill *Drill
}

// NewStatsTool creates a StatsTool over the shared drill state.
func NewStatsTool(drill *Drill) *StatsTool {
	return &StatsTool{drill: drill}
}

// Definition returns the MCP tool definition for solfeo_stats.
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("solfeo_stats",
		mcp.WithDescription(
			"Aggregate recent saved sessions per note and clef. Returns a text summary by default, "+
				"or a chart image: 'time' for mean answer time with spread, 'success' for success rate with error bars.",
		),
		mcp.WithString("chart",
			mcp.Description("Chart to render: 'time' or 'success' (omit for a text summary)"),
		),
		mcp.WithNumber("sessions",
			mcp.Description("How many recent sessions to aggregate (default 10)"),
		),
	)
}

// Handle processes the solfeo_stats tool call.
func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count := req.GetInt("sessions", 10)
	if count < 1 {
		count = 1
	}
	chart := req.GetString("chart", "")

	d := t.drill
	d.mu.Lock()
	defer d.mu.Unlock()

	rounds, err := d.history.LoadRecent(d.user, count)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load history: %v", err)), nil
	}
	if len(rounds) == 0 {
		return mcp.NewToolResultText(messages.NoSessions(d.lang())), nil
	}
	agg := history.Aggregate(rounds)

	switch chart {
	case "":
		return mcp.NewToolResultText(summarize(agg)), nil
	case "time", "success":
		var img []byte
		if chart == "time" {
			img, err = analytics.TimeChart(agg)
		} else {
			img, err = analytics.SuccessChart(agg)
		}
		if errors.Is(err, analytics.ErrNoData) {
			return mcp.NewToolResultText(messages.NoChartData(d.lang())), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to render chart: %v", err)), nil
		}
		return mcp.NewToolResultImage(
			fmt.Sprintf("%s chart over the last %d sessions", chart, count),
			base64.StdEncoding.EncodeToString(img), "image/png"), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown chart %q, want 'time' or 'success'", chart)), nil
	}
}

// summarize renders the aggregation as a compact per-clef table.
func summarize(agg history.Aggregation) string {
	var b strings.Builder
	for _, clef := range music.Clefs {
		fmt.Fprintf(&b, "%s clef:\n", clef)
		for _, letter := range music.LetterOrder {
			stats := agg.Get(clef, letter)
			if stats.Attempts == 0 {
				continue
			}
			fmt.Fprintf(&b, "  %s: %d/%d correct (%.0f%% ± %.0f), %.2fs ± %.2fs\n",
				letter, stats.Corrects, stats.Attempts,
				stats.SuccessRate, stats.SuccessSE,
				stats.AvgSeconds, stats.StdSeconds)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
