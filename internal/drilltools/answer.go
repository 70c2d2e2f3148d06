package drilltools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/csoneira/solfeo-bot/internal/messages"
	"github.com/csoneira/solfeo-bot/internal/session"
)

// AnswerTool handles the solfeo_answer MCP tool.
type AnswerTool struct {
	drill *Drill
}

// NewAnswerTool creates an AnswerTool over the shared drill state.
func NewAnswerTool(drill *Drill) *AnswerTool {
	return &AnswerTool{drill: drill}
}

// Definition returns the MCP tool definition for solfeo_answer.
func (t *AnswerTool) Definition() mcp.Tool {
	return mcp.NewTool("solfeo_answer",
		mcp.WithDescription(
			"Answer the note dealt by solfeo_deal. Accepts solfège names (do, re, mi, fa, sol, la, si) "+
				"or letter names (c..g, a, b), with or without an octave digit. "+
				"Two unrecognized answers in a row end the session; in timed mode an answer slower than "+
				"the timeout ends and saves the session without recording the slow attempt.",
		),
		mcp.WithString("answer",
			mcp.Required(),
			mcp.Description("The note name, e.g. 'sol', 'mi', 'c4', 'F'"),
		),
	)
}

// Handle processes the solfeo_answer tool call.
func (t *AnswerTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	answer := req.GetString("answer", "")
	if answer == "" {
		return mcp.NewToolResultError("'answer' is required"), nil
	}

	d := t.drill
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.sess.Answer(answer)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no note to answer: %v", err)), nil
	}

	lang := d.lang()
	switch res.Outcome {
	case session.OutcomeCorrect:
		return mcp.NewToolResultText(messages.Correct(lang, res.Note.Pitch, res.Note.Solfege)), nil
	case session.OutcomeIncorrect:
		return mcp.NewToolResultText(messages.Incorrect(lang, res.Note.Pitch, res.Note.Solfege)), nil
	case session.OutcomeUnrecognized:
		return mcp.NewToolResultText(messages.Unrecognized(lang)), nil
	case session.OutcomeReset:
		text := messages.TooManyInvalid(lang)
		if path, err := d.save(res.Saved); err != nil {
			text += "\n" + messages.SaveFailed(lang, err)
		} else if path != "" {
			text += "\n" + messages.SessionSaved(lang, path)
		}
		return mcp.NewToolResultText(text), nil
	case session.OutcomeTimedOut:
		text := messages.TimedOut(lang, d.defaults.AnswerTimeoutSeconds)
		if path, err := d.save(res.Saved); err != nil {
			text += "\n" + messages.SaveFailed(lang, err)
		} else if path != "" {
			text += "\n" + messages.SessionSaved(lang, path)
		}
		return mcp.NewToolResultText(text), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unhandled outcome %d", res.Outcome)), nil
	}
}
