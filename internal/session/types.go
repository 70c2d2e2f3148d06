// Package session implements the per-user drill state machine.
//
// A session moves between three modes: idle (no drill running), free
// (notes are dealt and judged but nothing is recorded) and timed (every
// judged answer becomes a Round with its response latency; stopping the
// session hands the rounds to the caller for persistence).
//
// The package is pure state: it never touches the filesystem or any
// transport. Front ends own I/O — they deal notes, pass answers in, and
// save whatever rounds a transition returns.
package session

import (
	"errors"
	"time"

	"github.com/csoneira/solfeo-bot/internal/music"
)

// Mode is the drill mode a session is currently in.
type Mode string

const (
	ModeIdle  Mode = "idle"
	ModeFree  Mode = "free"
	ModeTimed Mode = "timed"
)

// Round is one judged answer in a timed session.
type Round struct {
	Timestamp time.Time
	Clef      music.Clef
	Letter    string
	Solfege   string
	Correct   bool
	Seconds   float64
}

// Outcome classifies what an answer did to the session.
type Outcome int

const (
	// OutcomeCorrect and OutcomeIncorrect are ordinary judged answers;
	// the caller should deal the next note.
	OutcomeCorrect Outcome = iota
	OutcomeIncorrect
	// OutcomeUnrecognized means the text was not a note name and the
	// session is still running; the caller should re-prompt.
	OutcomeUnrecognized
	// OutcomeReset means a second consecutive unrecognized answer ended
	// the session. Result.Saved carries any timed rounds to persist.
	OutcomeReset
	// OutcomeTimedOut means a timed answer arrived after the answer
	// timeout. The session ended, the slow attempt was not recorded, and
	// Result.Saved carries the earlier rounds.
	OutcomeTimedOut
)

// Result describes the effect of feeding an answer to the session.
type Result struct {
	Outcome Outcome
	// Note is the note that was being asked (zero for idle answers).
	Note music.Note
	// Saved holds rounds to persist when the answer ended a timed
	// session (reset or timeout). Nil otherwise.
	Saved []Round
}

// Errors returned by invalid state transitions.
var (
	ErrNoTimedSession = errors.New("no timed session in progress")
	ErrNoActiveNote   = errors.New("no note has been dealt")
	ErrIdle           = errors.New("session is idle")
)
