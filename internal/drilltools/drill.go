// Package drilltools exposes the solfège drill over MCP: dealing notes
// as staff images, judging answers, saving timed sessions and reporting
// history, so any MCP client can run a practice loop.
package drilltools

import (
	"sync"

	"github.com/csoneira/solfeo-bot/internal/config"
	"github.com/csoneira/solfeo-bot/internal/history"
	"github.com/csoneira/solfeo-bot/internal/messages"
	"github.com/csoneira/solfeo-bot/internal/session"
	"github.com/csoneira/solfeo-bot/internal/settings"
)

// Drill is the shared state behind all drill tools: one session for the
// MCP client plus the stores it saves to. MCP servers may handle calls
// concurrently, so every tool takes the mutex.
type Drill struct {
	mu       sync.Mutex
	user     string
	sess     *session.Session
	history  *history.Store
	settings *settings.Store
	defaults config.Config
}

// NewDrill creates the drill state for a single MCP client identified
// by user (its settings and history live under that name).
func NewDrill(cfg config.Config, hist *history.Store, set *settings.Store, user string) *Drill {
	return &Drill{
		user: user,
		sess: session.New(user, session.Options{
			Timeout:  cfg.Timeout(),
			MinIndex: cfg.MinStaffIndex,
			MaxIndex: cfg.MaxStaffIndex,
		}),
		history:  hist,
		settings: set,
		defaults: cfg,
	}
}

// lang resolves the reply language from the user's stored preference,
// falling back to the configured default.
func (d *Drill) lang() messages.Lang {
	if l := d.settings.Language(d.user); l != "" {
		return messages.Lang(l)
	}
	return messages.Lang(d.defaults.DefaultLanguage)
}

// save persists finished rounds, ignoring empty sets.
func (d *Drill) save(rounds []session.Round) (string, error) {
	if len(rounds) == 0 {
		return "", nil
	}
	return d.history.Save(d.user, rounds)
}
