package session

import (
	"testing"
	"time"
)

// fakeClock replaces timeNow with a controllable clock and returns an
// advance function plus a restore function for defer.
func fakeClock(start time.Time) (advance func(d time.Duration), restore func()) {
	current := start
	old := timeNow
	timeNow = func() time.Time { return current }
	return func(d time.Duration) { current = current.Add(d) },
		func() { timeNow = old }
}

// --- Mode transitions ---

func TestNew_StartsIdle(t *testing.T) {
	s := New("ana", Options{})
	if s.Mode() != ModeIdle {
		t.Errorf("Mode = %s, want idle", s.Mode())
	}
	if s.Current() != nil {
		t.Error("Current should be nil before any deal")
	}
}

func TestDeal_WhileIdle(t *testing.T) {
	s := New("ana", Options{})
	if _, err := s.Deal(); err != ErrIdle {
		t.Errorf("Deal while idle: err = %v, want ErrIdle", err)
	}
}

func TestStop_WithoutTimedSession(t *testing.T) {
	s := New("ana", Options{})
	if _, err := s.Stop(); err != ErrNoTimedSession {
		t.Errorf("Stop while idle: err = %v, want ErrNoTimedSession", err)
	}

	s.StartFree()
	if _, err := s.Stop(); err != ErrNoTimedSession {
		t.Errorf("Stop in free mode: err = %v, want ErrNoTimedSession", err)
	}
}

func TestAnswer_WithoutNote(t *testing.T) {
	s := New("ana", Options{})
	s.StartFree()
	if _, err := s.Answer("do"); err != ErrNoActiveNote {
		t.Errorf("Answer without note: err = %v, want ErrNoActiveNote", err)
	}
}

// --- Free mode ---

func TestFreeMode_JudgesWithoutRecording(t *testing.T) {
	s := New("ana", Options{Seed: 3})
	s.StartFree()

	n, err := s.Deal()
	if err != nil {
		t.Fatalf("Deal error: %v", err)
	}

	res, err := s.Answer(n.Solfege)
	if err != nil {
		t.Fatalf("Answer error: %v", err)
	}
	if res.Outcome != OutcomeCorrect {
		t.Errorf("Outcome = %v, want correct", res.Outcome)
	}
	if s.RoundCount() != 0 {
		t.Errorf("RoundCount = %d, want 0 in free mode", s.RoundCount())
	}
}

func TestFreeMode_WrongAnswer(t *testing.T) {
	s := New("ana", Options{Seed: 3})
	s.StartFree()
	n, _ := s.Deal()

	// Answer with a letter that is guaranteed wrong.
	wrong := "C"
	if n.Letter == "C" {
		wrong = "D"
	}
	res, err := s.Answer(wrong)
	if err != nil {
		t.Fatalf("Answer error: %v", err)
	}
	if res.Outcome != OutcomeIncorrect {
		t.Errorf("Outcome = %v, want incorrect", res.Outcome)
	}
	if res.Note.Pitch != n.Pitch {
		t.Errorf("result note = %s, want %s", res.Note.Pitch, n.Pitch)
	}
}

// --- Timed mode ---

func TestTimedMode_RecordsRounds(t *testing.T) {
	advance, restore := fakeClock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	defer restore()

	s := New("ana", Options{Seed: 5})
	s.StartTimed()

	n, _ := s.Deal()
	advance(2 * time.Second)
	if _, err := s.Answer(n.Letter); err != nil {
		t.Fatalf("Answer error: %v", err)
	}

	n, _ = s.Deal()
	advance(3 * time.Second)
	wrong := "C"
	if n.Letter == "C" {
		wrong = "D"
	}
	if _, err := s.Answer(wrong); err != nil {
		t.Fatalf("Answer error: %v", err)
	}

	rounds, err := s.Stop()
	if err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if len(rounds) != 2 {
		t.Fatalf("len(rounds) = %d, want 2", len(rounds))
	}
	if !rounds[0].Correct {
		t.Error("first round should be correct")
	}
	if rounds[0].Seconds != 2 {
		t.Errorf("first round Seconds = %v, want 2", rounds[0].Seconds)
	}
	if rounds[1].Correct {
		t.Error("second round should be incorrect")
	}
	if rounds[1].Seconds != 3 {
		t.Errorf("second round Seconds = %v, want 3", rounds[1].Seconds)
	}
	if s.Mode() != ModeIdle {
		t.Errorf("Mode after Stop = %s, want idle", s.Mode())
	}
}

func TestTimedMode_SlowAnswerEndsSession(t *testing.T) {
	advance, restore := fakeClock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	defer restore()

	s := New("ana", Options{Seed: 5, Timeout: 60 * time.Second})
	s.StartTimed()

	n, _ := s.Deal()
	advance(time.Second)
	if _, err := s.Answer(n.Letter); err != nil {
		t.Fatalf("Answer error: %v", err)
	}

	s.Deal()
	advance(61 * time.Second)
	res, err := s.Answer("do")
	if err != nil {
		t.Fatalf("Answer error: %v", err)
	}
	if res.Outcome != OutcomeTimedOut {
		t.Fatalf("Outcome = %v, want timed out", res.Outcome)
	}
	// The slow attempt itself is not recorded.
	if len(res.Saved) != 1 {
		t.Errorf("len(Saved) = %d, want 1", len(res.Saved))
	}
	if s.Mode() != ModeIdle {
		t.Errorf("Mode = %s, want idle after timeout", s.Mode())
	}
}

// --- Invalid answer handling ---

func TestUnrecognized_TwiceResetsSession(t *testing.T) {
	advance, restore := fakeClock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	defer restore()

	s := New("ana", Options{Seed: 5})
	s.StartTimed()

	n, _ := s.Deal()
	advance(time.Second)
	s.Answer(n.Letter)
	s.Deal()

	res, err := s.Answer("???")
	if err != nil {
		t.Fatalf("Answer error: %v", err)
	}
	if res.Outcome != OutcomeUnrecognized {
		t.Fatalf("first nonsense: Outcome = %v, want unrecognized", res.Outcome)
	}
	if s.Mode() != ModeTimed {
		t.Error("session should survive a single unrecognized answer")
	}

	res, err = s.Answer("zzz")
	if err != nil {
		t.Fatalf("Answer error: %v", err)
	}
	if res.Outcome != OutcomeReset {
		t.Fatalf("second nonsense: Outcome = %v, want reset", res.Outcome)
	}
	if len(res.Saved) != 1 {
		t.Errorf("len(Saved) = %d, want the recorded round back", len(res.Saved))
	}
	if s.Mode() != ModeIdle {
		t.Errorf("Mode = %s, want idle after reset", s.Mode())
	}
}

func TestUnrecognized_CounterClearsOnValidAnswer(t *testing.T) {
	s := New("ana", Options{Seed: 5})
	s.StartFree()
	n, _ := s.Deal()

	if res, _ := s.Answer("???"); res.Outcome != OutcomeUnrecognized {
		t.Fatal("expected unrecognized outcome")
	}
	if res, _ := s.Answer(n.Letter); res.Outcome != OutcomeCorrect {
		t.Fatal("expected correct outcome")
	}
	s.Deal()

	// Counter was cleared, so one more nonsense answer must not reset.
	if res, _ := s.Answer("???"); res.Outcome != OutcomeUnrecognized {
		t.Error("counter should have been cleared by the valid answer")
	}
}

func TestNoteIdleInput(t *testing.T) {
	s := New("ana", Options{})
	if s.NoteIdleInput() {
		t.Error("first idle miss should not trigger help")
	}
	if !s.NoteIdleInput() {
		t.Error("second idle miss should trigger help")
	}
	if s.NoteIdleInput() {
		t.Error("counter should reset after triggering help")
	}
}

// --- Restart semantics ---

func TestStartTimed_DiscardsPriorRounds(t *testing.T) {
	advance, restore := fakeClock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	defer restore()

	s := New("ana", Options{Seed: 5})
	s.StartTimed()
	n, _ := s.Deal()
	advance(time.Second)
	s.Answer(n.Letter)

	s.StartTimed()
	if s.RoundCount() != 0 {
		t.Errorf("RoundCount = %d, want 0 after restart", s.RoundCount())
	}
}
