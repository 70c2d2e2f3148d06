package session

import (
	"math/rand"
	"time"

	"github.com/csoneira/solfeo-bot/internal/music"
)

// maxInvalid is how many consecutive unrecognized answers end the session.
const maxInvalid = 2

// Session is the drill state for one user. Not safe for concurrent use;
// each front end drives one session per user from a single goroutine.
type Session struct {
	User string

	mode    Mode
	current *music.Note
	shownAt time.Time
	rounds  []Round
	invalid int

	timeout  time.Duration
	minIndex int
	maxIndex int
	rng      *rand.Rand
}

// Options tunes a new session. Zero values fall back to the drill
// defaults (60s answer timeout, staff indices -2..12).
type Options struct {
	Timeout  time.Duration
	MinIndex int
	MaxIndex int
	Seed     int64
}

// New creates an idle session for a user.
func New(user string, opts Options) *Session {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MinIndex == 0 && opts.MaxIndex == 0 {
		opts.MinIndex, opts.MaxIndex = -2, 12
	}
	seed := opts.Seed
	if seed == 0 {
		seed = timeNow().UnixNano()
	}
	return &Session{
		User:     user,
		mode:     ModeIdle,
		timeout:  opts.Timeout,
		minIndex: opts.MinIndex,
		maxIndex: opts.MaxIndex,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Mode returns the current drill mode.
func (s *Session) Mode() Mode { return s.mode }

// Current returns the note awaiting an answer, or nil.
func (s *Session) Current() *music.Note { return s.current }

// RoundCount returns how many rounds the timed session has recorded.
func (s *Session) RoundCount() int { return len(s.rounds) }

// StartFree switches to free mode, discarding any prior state.
func (s *Session) StartFree() {
	s.mode = ModeFree
	s.rounds = nil
	s.current = nil
	s.invalid = 0
}

// StartTimed switches to timed mode with an empty round list,
// discarding any prior state.
func (s *Session) StartTimed() {
	s.mode = ModeTimed
	s.rounds = nil
	s.current = nil
	s.invalid = 0
}

// Deal draws a new random note and makes it the active question.
// In timed mode the deal timestamp starts the response clock.
func (s *Session) Deal() (music.Note, error) {
	if s.mode == ModeIdle {
		return music.Note{}, ErrIdle
	}
	n := music.RandomNote(s.rng, s.minIndex, s.maxIndex)
	s.current = &n
	s.invalid = 0
	if s.mode == ModeTimed {
		s.shownAt = timeNow()
	}
	return n, nil
}

// Stop ends a timed session and returns its rounds for persistence.
// It is an error to stop when no timed session is running.
func (s *Session) Stop() ([]Round, error) {
	if s.mode != ModeTimed {
		return nil, ErrNoTimedSession
	}
	rounds := s.rounds
	s.reset()
	return rounds, nil
}

// Answer judges a typed answer against the active note.
//
// In timed mode an answer that arrives later than the session timeout
// ends the session: the slow attempt is not recorded and the earlier
// rounds come back in Result.Saved. A second consecutive unrecognized
// answer likewise ends the session (OutcomeReset). Otherwise a judged
// answer is appended as a Round (timed mode only) and the caller is
// expected to deal the next note.
func (s *Session) Answer(text string) (Result, error) {
	if s.mode == ModeIdle {
		return Result{}, ErrIdle
	}
	if s.current == nil {
		return Result{}, ErrNoActiveNote
	}

	note := *s.current

	var elapsed float64
	if s.mode == ModeTimed {
		elapsed = timeNow().Sub(s.shownAt).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
		if elapsed > s.timeout.Seconds() {
			saved := s.rounds
			s.reset()
			return Result{Outcome: OutcomeTimedOut, Note: note, Saved: saved}, nil
		}
	}

	letter, ok := music.NormalizeAnswer(text)
	if !ok {
		s.invalid++
		if s.invalid >= maxInvalid {
			saved := s.rounds
			s.reset()
			return Result{Outcome: OutcomeReset, Note: note, Saved: saved}, nil
		}
		return Result{Outcome: OutcomeUnrecognized, Note: note}, nil
	}

	s.invalid = 0
	correct := letter == note.Letter

	if s.mode == ModeTimed {
		s.rounds = append(s.rounds, Round{
			Timestamp: timeNow(),
			Clef:      note.Clef,
			Letter:    note.Letter,
			Solfege:   note.Solfege,
			Correct:   correct,
			Seconds:   elapsed,
		})
	}

	s.current = nil
	if correct {
		return Result{Outcome: OutcomeCorrect, Note: note}, nil
	}
	return Result{Outcome: OutcomeIncorrect, Note: note}, nil
}

// NoteIdleInput counts an unrecognized input while idle. It returns true
// when the caller should show the full help menu (second consecutive
// miss) and resets the counter at that point.
func (s *Session) NoteIdleInput() bool {
	s.invalid++
	if s.invalid >= maxInvalid {
		s.invalid = 0
		return true
	}
	return false
}

// reset returns the session to idle, dropping all drill state.
func (s *Session) reset() {
	s.mode = ModeIdle
	s.current = nil
	s.rounds = nil
	s.invalid = 0
}
