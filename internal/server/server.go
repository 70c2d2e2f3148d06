// Package server wires the MCP front end and creates the server instance.
//
// This is the composition root: it creates the concrete stores and the
// shared drill state and injects them into the tools. No business logic
// lives here — only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/csoneira/solfeo-bot/internal/config"
	"github.com/csoneira/solfeo-bot/internal/drilltools"
	"github.com/csoneira/solfeo-bot/internal/history"
	"github.com/csoneira/solfeo-bot/internal/settings"
)

// Version is set at build time via ldflags.
var Version = "dev"

// mcpUser names the settings and session files for the MCP front end.
// MCP serves one client over stdio, so a fixed name is enough.
const mcpUser = "mcp_local"

// New creates and configures the MCP server with the drill tools
// registered. The returned cleanup function closes the history index
// and must be called on shutdown (typically via defer). It is always
// non-nil and safe to call.
func New(cfg config.Config) (*server.MCPServer, func(), error) {
	hist, err := history.NewStore(cfg.DataDir)
	if err != nil {
		return nil, noop, fmt.Errorf("creating history store: %w", err)
	}
	cleanup := func() {
		if err := hist.Close(); err != nil {
			log.Printf("WARNING: history store close: %v", err)
		}
	}
	if !hist.HasIndex() {
		log.Printf("WARNING: session index disabled, falling back to directory scans")
	}

	drill := drilltools.NewDrill(cfg, hist, settings.NewStore(cfg.DataDir), mcpUser)

	s := server.NewMCPServer(
		"solfeo",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	dealTool := drilltools.NewDealTool(drill)
	s.AddTool(dealTool.Definition(), dealTool.Handle)

	answerTool := drilltools.NewAnswerTool(drill)
	s.AddTool(answerTool.Definition(), answerTool.Handle)

	stopTool := drilltools.NewStopTool(drill)
	s.AddTool(stopTool.Definition(), stopTool.Handle)

	sessionsTool := drilltools.NewSessionsTool(drill)
	s.AddTool(sessionsTool.Definition(), sessionsTool.Handle)

	statsTool := drilltools.NewStatsTool(drill)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	return s, cleanup, nil
}

// noop is the default cleanup when store creation failed.
func noop() {}

func serverInstructions() string {
	return `Solfeo is a sight-reading drill: solfeo_deal shows a random note on a
staff, solfeo_answer judges the user's note name. Run the loop on the
user's behalf — deal, show the image, relay their answer, deal again.
Timed mode records latency per round; solfeo_stop saves the session and
solfeo_stats / solfeo_sessions report on saved history.`
}
