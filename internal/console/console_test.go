package console

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/csoneira/solfeo-bot/internal/config"
	"github.com/csoneira/solfeo-bot/internal/history"
	"github.com/csoneira/solfeo-bot/internal/session"
	"github.com/csoneira/solfeo-bot/internal/settings"
)

// newTestConsole builds a console over temp-dir stores with a captured
// output buffer.
func newTestConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	hist, err := history.NewStore(dir)
	if err != nil {
		t.Fatalf("history store: %v", err)
	}
	t.Cleanup(func() { _ = hist.Close() })

	cfg := config.Default()
	cfg.DataDir = dir

	out := &bytes.Buffer{}
	c := &Console{
		cfg:      cfg,
		history:  hist,
		settings: settings.NewStore(dir),
		log:      zap.NewNop(),
		user:     "tester",
		in:       strings.NewReader(""),
		out:      out,
	}
	c.sess = session.New(c.user, session.Options{
		Timeout:  cfg.Timeout(),
		MinIndex: cfg.MinStaffIndex,
		MaxIndex: cfg.MaxStaffIndex,
	})
	return c, out
}

// --- command handling ---

func TestHandleLine_TimedRoundAndStop(t *testing.T) {
	c, out := newTestConsole(t)

	c.handleLine("time")
	note := c.sess.Current()
	if note == nil {
		t.Fatal("no note dealt after 'time'")
	}
	if !strings.Contains(out.String(), "●") {
		t.Error("staff not drawn after dealing")
	}

	c.handleLine(note.Solfege)
	if c.sess.RoundCount() != 1 {
		t.Fatalf("rounds = %d, want 1", c.sess.RoundCount())
	}

	c.handleLine("/stop")
	if c.sess.Mode() != session.ModeIdle {
		t.Errorf("mode = %v, want idle after stop", c.sess.Mode())
	}

	infos, err := c.history.Recent("tester", 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(infos) != 1 {
		t.Errorf("saved sessions = %d, want 1", len(infos))
	}
}

func TestHandleLine_FreeModeSavesNothing(t *testing.T) {
	c, _ := newTestConsole(t)

	c.handleLine("free")
	note := c.sess.Current()
	c.handleLine(note.Solfege)
	c.handleLine("/stop")

	infos, err := c.history.Recent("tester", 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("saved sessions = %d, want 0 in free mode", len(infos))
	}
}

func TestHandleLine_IdleNonsenseShowsMenu(t *testing.T) {
	c, out := newTestConsole(t)

	c.handleLine("zzz")
	first := out.String()
	out.Reset()
	c.handleLine("???")

	if first == out.String() {
		t.Error("second nonsense input should escalate to the full menu")
	}
	if !strings.Contains(out.String(), "/play") {
		t.Errorf("menu not shown after two nonsense inputs:\n%s", out.String())
	}
}

func TestHandleLine_IdleNoteNameHintsWithoutCounting(t *testing.T) {
	c, out := newTestConsole(t)

	// Note names typed with no note in play get the start hint and never
	// escalate to the full menu, no matter how often.
	c.handleLine("do")
	c.handleLine("Fa")
	c.handleLine("b")

	if strings.Contains(out.String(), "/play") {
		t.Errorf("note names should not escalate to the menu:\n%s", out.String())
	}
	if out.Len() == 0 {
		t.Error("no hint printed for idle note name")
	}
}

func TestHandleLine_BareSlash(t *testing.T) {
	c, out := newTestConsole(t)

	c.handleLine("/")
	if out.Len() == 0 {
		t.Error("no reply for a bare slash")
	}
}

func TestHandleLine_SetLanguageInline(t *testing.T) {
	c, _ := newTestConsole(t)

	c.handleLine("/set_language en")
	if got := c.settings.Language("tester"); got != "en" {
		t.Errorf("stored language = %q, want en", got)
	}
}

func TestHandleLine_ChartWithoutSessions(t *testing.T) {
	c, out := newTestConsole(t)
	c.handleLine("tiempos")
	if out.Len() == 0 {
		t.Error("no reply for tiempos without sessions")
	}
}

// --- helpers ---

func TestIsQuit(t *testing.T) {
	for _, line := range []string{"q", "quit", "exit", "/quit", "Q"} {
		if !isQuit(line) {
			t.Errorf("isQuit(%q) = false, want true", line)
		}
	}
	if isQuit("query") {
		t.Error("isQuit(query) = true, want false")
	}
}

func TestCountArg(t *testing.T) {
	cases := []struct {
		fields []string
		def    int
		want   int
	}{
		{[]string{"tiempos"}, 1, 1},
		{[]string{"tiempos", "3"}, 1, 3},
		{[]string{"old_games", "nope"}, 5, 5},
		{[]string{"tiempos", "0"}, 1, 1},
	}
	for _, tc := range cases {
		if got := countArg(tc.fields, tc.def); got != tc.want {
			t.Errorf("countArg(%v) = %d, want %d", tc.fields, got, tc.want)
		}
	}
}
