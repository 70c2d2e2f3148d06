// Package console runs the default front end: a terminal drill loop
// that renders the staff as styled text and writes chart PNGs next to
// the session data.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/csoneira/solfeo-bot/internal/analytics"
	"github.com/csoneira/solfeo-bot/internal/config"
	"github.com/csoneira/solfeo-bot/internal/history"
	"github.com/csoneira/solfeo-bot/internal/messages"
	"github.com/csoneira/solfeo-bot/internal/music"
	"github.com/csoneira/solfeo-bot/internal/render"
	"github.com/csoneira/solfeo-bot/internal/session"
	"github.com/csoneira/solfeo-bot/internal/settings"
)

const prompt = "local> "

var timeNow = time.Now

// Console drives one drill session over a line-based terminal loop.
type Console struct {
	cfg      config.Config
	history  *history.Store
	settings *settings.Store
	sess     *session.Session
	log      *zap.Logger
	user     string

	in  io.Reader
	out io.Writer
}

// New creates a console bound to stdin/stdout. The session and settings
// live under a local_<os user> name so they never collide with chat
// users sharing the data directory.
func New(cfg config.Config, hist *history.Store, set *settings.Store, log *zap.Logger) *Console {
	c := &Console{
		cfg:      cfg,
		history:  hist,
		settings: set,
		log:      log,
		user:     localUser(),
		in:       os.Stdin,
		out:      os.Stdout,
	}
	c.sess = session.New(c.user, session.Options{
		Timeout:  cfg.Timeout(),
		MinIndex: cfg.MinStaffIndex,
		MaxIndex: cfg.MaxStaffIndex,
	})
	return c
}

// localUser names the console player after the OS account.
func localUser() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "local"
	}
	name := u.Username
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		name = name[i+1:] // strip a Windows domain prefix
	}
	return "local_" + name
}

// Run reads commands and answers until EOF, q or a cancelled context.
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)

	lang := c.ensureLanguage(scanner)
	fmt.Fprintln(c.out, messages.ConsoleWelcome(lang))
	fmt.Fprintln(c.out, messages.MainMenu(lang))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, prompt)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isQuit(line) {
			c.finish(c.lang())
			return scanner.Err()
		}
		c.handleLine(line)
	}
	c.finish(c.lang())
	return scanner.Err()
}

// ensureLanguage asks for a language on first run and returns the
// active one.
func (c *Console) ensureLanguage(scanner *bufio.Scanner) messages.Lang {
	if c.settings.Language(c.user) != "" {
		return c.lang()
	}
	fmt.Fprintln(c.out, messages.AskLanguage(messages.Lang(c.cfg.DefaultLanguage)))
	fmt.Fprint(c.out, prompt)
	if !scanner.Scan() {
		return messages.Lang(c.cfg.DefaultLanguage)
	}
	code, err := settings.NormalizeLanguage(scanner.Text())
	if err != nil {
		code = c.cfg.DefaultLanguage
	}
	if _, err := c.settings.SetLanguage(c.user, code); err != nil {
		c.log.Warn("store language", zap.Error(err))
	}
	fmt.Fprintln(c.out, messages.LanguageStored(messages.Lang(code), code))
	return messages.Lang(code)
}

func isQuit(line string) bool {
	switch strings.ToLower(strings.TrimPrefix(line, "/")) {
	case "q", "quit", "exit":
		return true
	}
	return false
}

// finish saves a running timed session before leaving.
func (c *Console) finish(lang messages.Lang) {
	if c.sess.Mode() == session.ModeTimed {
		c.stopSession(lang)
	}
	fmt.Fprintln(c.out, messages.Goodbye(lang))
}

// handleLine routes one input line: an answer when a note is active,
// otherwise a command (the leading slash is optional).
func (c *Console) handleLine(line string) {
	lang := c.lang()

	if c.sess.Current() != nil && !strings.HasPrefix(line, "/") {
		c.judgeAnswer(lang, line)
		return
	}

	fields := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(fields) == 0 {
		c.unknownInput(lang, line)
		return
	}
	cmd := strings.ToLower(fields[0])
	switch cmd {
	case "start", "help":
		fmt.Fprintln(c.out, messages.MainMenu(lang))
	case "play":
		fmt.Fprintln(c.out, messages.PlayMenu(lang))
	case "free":
		c.sess.StartFree()
		fmt.Fprintln(c.out, messages.FreeModeStarted(lang))
		c.showNote(lang)
	case "time":
		c.sess.StartTimed()
		fmt.Fprintln(c.out, messages.TimedModeStarted(lang))
		c.showNote(lang)
	case "stop":
		c.stopSession(lang)
	case "historial":
		fmt.Fprintln(c.out, messages.HistoryMenu(lang))
	case "tiempos":
		c.writeChart(lang, "tiempos", analytics.TimeChart, countArg(fields, 1))
	case "aciertos":
		c.writeChart(lang, "aciertos", analytics.SuccessChart, countArg(fields, 1))
	case "old_games":
		c.listSessions(lang, countArg(fields, 5))
	case "settings":
		fmt.Fprintln(c.out, messages.SettingsMenu(lang))
	case "set_language":
		c.setLanguage(lang, fields[1:])
	case "set_system":
		c.setSystem(lang, fields[1:])
	default:
		c.unknownInput(lang, line)
	}
}

// unknownInput handles text that is no command: an answer when a note
// is active, otherwise idle chatter. A note name typed while idle gets
// the start hint; only unrecognizable input counts toward the menu
// escalation.
func (c *Console) unknownInput(lang messages.Lang, line string) {
	if c.sess.Current() != nil {
		c.judgeAnswer(lang, line)
		return
	}
	if _, ok := music.NormalizeAnswer(line); ok {
		fmt.Fprintln(c.out, messages.StartHint(lang))
		return
	}
	if c.sess.NoteIdleInput() {
		fmt.Fprintln(c.out, messages.TooManyInvalid(lang))
		fmt.Fprintln(c.out, messages.MainMenu(lang))
		return
	}
	fmt.Fprintln(c.out, messages.StartHint(lang))
}

func (c *Console) judgeAnswer(lang messages.Lang, text string) {
	res, err := c.sess.Answer(text)
	if err != nil {
		fmt.Fprintln(c.out, messages.StartHint(lang))
		return
	}

	switch res.Outcome {
	case session.OutcomeCorrect:
		fmt.Fprintln(c.out, render.Feedback(true, messages.Correct(lang, res.Note.Pitch, res.Note.Solfege)))
		c.showNote(lang)
	case session.OutcomeIncorrect:
		fmt.Fprintln(c.out, render.Feedback(false, messages.Incorrect(lang, res.Note.Pitch, res.Note.Solfege)))
		c.showNote(lang)
	case session.OutcomeUnrecognized:
		fmt.Fprintln(c.out, messages.Unrecognized(lang))
	case session.OutcomeReset:
		c.saveRounds(lang, res.Saved)
		fmt.Fprintln(c.out, messages.TooManyInvalid(lang))
		fmt.Fprintln(c.out, messages.MainMenu(lang))
	case session.OutcomeTimedOut:
		fmt.Fprintln(c.out, messages.TimedOut(lang, c.cfg.AnswerTimeoutSeconds))
		c.saveRounds(lang, res.Saved)
		fmt.Fprintln(c.out, messages.MainMenu(lang))
	}
}

// showNote deals the next note and draws the staff.
func (c *Console) showNote(lang messages.Lang) {
	note, err := c.sess.Deal()
	if err != nil {
		fmt.Fprintln(c.out, messages.StartHint(lang))
		return
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, render.TerminalStaff(note))
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, messages.Question(lang, note.Clef.Label()))
}

func (c *Console) stopSession(lang messages.Lang) {
	rounds, err := c.sess.Stop()
	if err != nil {
		if errors.Is(err, session.ErrNoTimedSession) {
			fmt.Fprintln(c.out, messages.NoTimedSession(lang))
		}
		return
	}
	if len(rounds) == 0 {
		fmt.Fprintln(c.out, messages.NothingToSave(lang))
		return
	}
	c.saveRounds(lang, rounds)
}

func (c *Console) saveRounds(lang messages.Lang, rounds []session.Round) {
	if len(rounds) == 0 {
		return
	}
	path, err := c.history.Save(c.user, rounds)
	if err != nil {
		c.log.Error("save session", zap.Error(err))
		fmt.Fprintln(c.out, messages.SaveFailed(lang, err))
		return
	}
	fmt.Fprintln(c.out, messages.SessionSaved(lang, path))
}

// writeChart aggregates the last n sessions and writes the chart as a
// PNG next to the session data, printing its path.
func (c *Console) writeChart(lang messages.Lang, name string,
	chart func(history.Aggregation) ([]byte, error), n int) {

	rounds, err := c.history.LoadRecent(c.user, n)
	if err != nil || len(rounds) == 0 {
		fmt.Fprintln(c.out, messages.NoSessions(lang))
		return
	}

	img, err := chart(history.Aggregate(rounds))
	if errors.Is(err, analytics.ErrNoData) {
		fmt.Fprintln(c.out, messages.NoChartData(lang))
		return
	}
	if err != nil {
		c.log.Error("render chart", zap.Error(err))
		return
	}

	path := filepath.Join(c.cfg.DataDir, "SESSIONS",
		fmt.Sprintf("%s_%s.png", name, timeNow().Format("20060102_150405")))
	if err := os.WriteFile(path, img, 0o644); err != nil {
		c.log.Error("write chart", zap.String("path", path), zap.Error(err))
		fmt.Fprintln(c.out, messages.SaveFailed(lang, err))
		return
	}
	fmt.Fprintln(c.out, messages.ChartWritten(lang, path))
}

func (c *Console) listSessions(lang messages.Lang, n int) {
	infos, err := c.history.Recent(c.user, n)
	if err != nil || len(infos) == 0 {
		fmt.Fprintln(c.out, messages.NoSessions(lang))
		return
	}
	fmt.Fprintln(c.out, messages.RecentSessions(lang, len(infos)))
	for _, info := range infos {
		fmt.Fprintln(c.out, info.File)
	}
}

func (c *Console) setLanguage(lang messages.Lang, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, messages.AskLanguage(lang))
		return
	}
	code, err := settings.NormalizeLanguage(args[0])
	if err != nil {
		fmt.Fprintln(c.out, messages.InvalidLanguage(lang))
		return
	}
	if _, err := c.settings.SetLanguage(c.user, code); err != nil {
		fmt.Fprintln(c.out, messages.SaveFailed(lang, err))
		return
	}
	fmt.Fprintln(c.out, messages.LanguageStored(messages.Lang(code), code))
}

func (c *Console) setSystem(lang messages.Lang, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, messages.AskSystem(lang))
		return
	}
	system, err := settings.NormalizeSystem(args[0])
	if err != nil {
		fmt.Fprintln(c.out, messages.InvalidSystem(lang))
		return
	}
	if _, err := c.settings.SetSystem(c.user, system); err != nil {
		fmt.Fprintln(c.out, messages.SaveFailed(lang, err))
		return
	}
	fmt.Fprintln(c.out, messages.SystemStored(lang, system))
}

func (c *Console) lang() messages.Lang {
	if l := c.settings.Language(c.user); l != "" {
		return messages.Lang(l)
	}
	return messages.Lang(c.cfg.DefaultLanguage)
}

// countArg parses an optional trailing count, e.g. "tiempos 3".
func countArg(fields []string, def int) int {
	if len(fields) < 2 {
		return def
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 {
		return def
	}
	return n
}
