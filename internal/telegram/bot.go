// Package telegram runs the chat front end: a long-polling bot that
// drives one drill session per chat and answers the same commands the
// original Spanish-speaking audience knows (/play, /historial, ...).
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
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

// awaiting marks what a chat's next plain-text message should be.
type awaiting int

const (
	awaitNothing awaiting = iota
	awaitLanguage
	awaitSystem
)

// chatState is the per-chat drill state.
type chatState struct {
	user  string
	sess  *session.Session
	await awaiting
}

// Bot long-polls Telegram and routes updates to per-chat sessions.
type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      config.Config
	history  *history.Store
	settings *settings.Store
	log      *zap.Logger
	send     func(c tgbotapi.Chattable) (tgbotapi.Message, error)

	mu    sync.Mutex
	chats map[int64]*chatState
}

// New authenticates against the Bot API with the given token.
func New(token string, cfg config.Config, hist *history.Store, set *settings.Store, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	log.Info("telegram bot authorized", zap.String("username", api.Self.UserName))
	return &Bot{
		api:      api,
		cfg:      cfg,
		history:  hist,
		settings: set,
		log:      log,
		send:     api.Send,
		chats:    make(map[int64]*chatState),
	}, nil
}

// Run long-polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.handleMessage(update.Message)
		}
	}
}

// state returns (creating if needed) the drill state for a chat.
func (b *Bot) state(msg *tgbotapi.Message) *chatState {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.chats[msg.Chat.ID]
	if !ok {
		user := safeUsername(msg.From)
		st = &chatState{
			user: user,
			sess: session.New(user, session.Options{
				Timeout:  b.cfg.Timeout(),
				MinIndex: b.cfg.MinStaffIndex,
				MaxIndex: b.cfg.MaxStaffIndex,
			}),
		}
		b.chats[msg.Chat.ID] = st
	}
	return st
}

// safeUsername derives a filesystem-safe name from the Telegram user:
// the handle if set, otherwise first name and numeric ID.
func safeUsername(from *tgbotapi.User) string {
	if from == nil {
		return "user"
	}
	name := from.UserName
	if name == "" {
		first := from.FirstName
		if first == "" {
			first = "user"
		}
		name = fmt.Sprintf("%s_%d", first, from.ID)
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	st := b.state(msg)
	lang := b.lang(st.user)

	if msg.IsCommand() {
		b.handleCommand(msg, st, lang)
		return
	}
	b.handleText(msg, st, lang)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message, st *chatState, lang messages.Lang) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		b.reply(chatID, messages.MainMenu(lang))
	case "play":
		b.reply(chatID, messages.PlayMenu(lang))
	case "free":
		st.sess.StartFree()
		b.reply(chatID, messages.FreeModeStarted(lang))
		b.sendNote(chatID, st, lang)
	case "time":
		st.sess.StartTimed()
		b.reply(chatID, messages.TimedModeStarted(lang))
		b.sendNote(chatID, st, lang)
	case "stop":
		b.stopSession(chatID, st, lang)
	case "historial":
		b.reply(chatID, messages.HistoryMenu(lang))
	case "tiempos":
		b.sendChart(chatID, st, lang, analytics.TimeChart, countArg(msg, 1))
	case "aciertos":
		b.sendChart(chatID, st, lang, analytics.SuccessChart, countArg(msg, 1))
	case "old_games":
		b.listSessions(chatID, st, lang, countArg(msg, 5))
	case "settings":
		b.reply(chatID, messages.SettingsMenu(lang))
	case "set_language":
		st.await = awaitLanguage
		b.reply(chatID, messages.AskLanguage(lang))
	case "set_system":
		st.await = awaitSystem
		b.reply(chatID, messages.AskSystem(lang))
	default:
		b.reply(chatID, messages.StartHint(lang))
	}
}

// handleText processes a non-command message: a settings reply when one
// is awaited, an answer when a note is active, otherwise idle chatter.
func (b *Bot) handleText(msg *tgbotapi.Message, st *chatState, lang messages.Lang) {
	chatID := msg.Chat.ID

	if st.sess.Current() == nil {
		// First contact without a stored language: ask for it once.
		if st.await == awaitNothing && b.settings.Language(st.user) == "" {
			st.await = awaitLanguage
			b.reply(chatID, messages.LanguageNotConfigured(lang))
			return
		}
		switch st.await {
		case awaitLanguage:
			b.storeLanguage(chatID, st, lang, msg.Text)
			return
		case awaitSystem:
			b.storeSystem(chatID, st, lang, msg.Text)
			return
		}
		if b.idleMenu(chatID, st, lang, msg.Text) {
			return
		}
		// A note name typed with no note in play is not nonsense: hint
		// instead of counting it toward the menu escalation.
		if _, ok := music.NormalizeAnswer(msg.Text); ok {
			b.reply(chatID, messages.StartHint(lang))
			return
		}
		if st.sess.NoteIdleInput() {
			b.reply(chatID, messages.TooManyInvalid(lang))
			b.reply(chatID, messages.MainMenu(lang))
			return
		}
		b.reply(chatID, messages.StartHint(lang))
		return
	}

	b.judgeAnswer(chatID, st, lang, msg.Text)
}

// idleMenu intercepts menu words typed without the leading slash.
func (b *Bot) idleMenu(chatID int64, st *chatState, lang messages.Lang, text string) bool {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(text), "/")) {
	case "play":
		b.reply(chatID, messages.PlayMenu(lang))
	case "historial":
		b.reply(chatID, messages.HistoryMenu(lang))
	case "help", "start":
		b.reply(chatID, messages.MainMenu(lang))
	case "settings":
		b.reply(chatID, messages.SettingsMenu(lang))
	default:
		return false
	}
	return true
}

func (b *Bot) judgeAnswer(chatID int64, st *chatState, lang messages.Lang, text string) {
	res, err := st.sess.Answer(text)
	if err != nil {
		b.reply(chatID, messages.StartHint(lang))
		return
	}

	switch res.Outcome {
	case session.OutcomeCorrect:
		b.reply(chatID, messages.Correct(lang, res.Note.Pitch, res.Note.Solfege))
		b.sendNote(chatID, st, lang)
	case session.OutcomeIncorrect:
		b.reply(chatID, messages.Incorrect(lang, res.Note.Pitch, res.Note.Solfege))
		b.sendNote(chatID, st, lang)
	case session.OutcomeUnrecognized:
		b.reply(chatID, messages.Unrecognized(lang))
	case session.OutcomeReset:
		b.saveRounds(chatID, st, lang, res.Saved)
		b.reply(chatID, messages.TooManyInvalid(lang))
		b.reply(chatID, messages.MainMenu(lang))
	case session.OutcomeTimedOut:
		b.reply(chatID, messages.TimedOut(lang, b.cfg.AnswerTimeoutSeconds))
		b.saveRounds(chatID, st, lang, res.Saved)
		b.reply(chatID, messages.MainMenu(lang))
	}
}

func (b *Bot) stopSession(chatID int64, st *chatState, lang messages.Lang) {
	rounds, err := st.sess.Stop()
	if err != nil {
		if errors.Is(err, session.ErrNoTimedSession) {
			b.reply(chatID, messages.NoTimedSession(lang))
			return
		}
		b.log.Error("stop session", zap.Error(err))
		return
	}
	if len(rounds) == 0 {
		b.reply(chatID, messages.NothingToSave(lang))
		return
	}
	b.saveRounds(chatID, st, lang, rounds)
}

func (b *Bot) saveRounds(chatID int64, st *chatState, lang messages.Lang, rounds []session.Round) {
	if len(rounds) == 0 {
		return
	}
	path, err := b.history.Save(st.user, rounds)
	if err != nil {
		b.log.Error("save session", zap.String("user", st.user), zap.Error(err))
		b.reply(chatID, messages.SaveFailed(lang, err))
		return
	}
	b.reply(chatID, messages.SessionSaved(lang, path))
}

// sendNote deals the next note and sends it as a staff photo.
func (b *Bot) sendNote(chatID int64, st *chatState, lang messages.Lang) {
	note, err := st.sess.Deal()
	if err != nil {
		b.reply(chatID, messages.StartHint(lang))
		return
	}
	img, err := render.StaffPNG(note)
	if err != nil {
		b.log.Error("render staff", zap.Error(err))
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "staff.png", Bytes: img})
	photo.Caption = messages.Question(lang, note.Clef.Label())
	if _, err := b.send(photo); err != nil {
		b.log.Error("send photo", zap.Error(err))
	}
}

// sendChart aggregates the last n sessions and sends the chart PNG.
func (b *Bot) sendChart(chatID int64, st *chatState, lang messages.Lang,
	chart func(history.Aggregation) ([]byte, error), n int) {

	rounds, err := b.history.LoadRecent(st.user, n)
	if err != nil {
		b.log.Error("load history", zap.String("user", st.user), zap.Error(err))
		b.reply(chatID, messages.NoSessions(lang))
		return
	}
	if len(rounds) == 0 {
		b.reply(chatID, messages.NoSessions(lang))
		return
	}

	img, err := chart(history.Aggregate(rounds))
	if errors.Is(err, analytics.ErrNoData) {
		b.reply(chatID, messages.NoChartData(lang))
		return
	}
	if err != nil {
		b.log.Error("render chart", zap.Error(err))
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "chart.png", Bytes: img})
	if _, err := b.send(photo); err != nil {
		b.log.Error("send chart", zap.Error(err))
	}
}

func (b *Bot) listSessions(chatID int64, st *chatState, lang messages.Lang, n int) {
	infos, err := b.history.Recent(st.user, n)
	if err != nil {
		b.log.Error("list sessions", zap.String("user", st.user), zap.Error(err))
		return
	}
	if len(infos) == 0 {
		b.reply(chatID, messages.NoSessions(lang))
		return
	}
	lines := []string{messages.RecentSessions(lang, len(infos))}
	for _, info := range infos {
		lines = append(lines, info.File)
	}
	b.reply(chatID, strings.Join(lines, "\n"))
}

func (b *Bot) storeLanguage(chatID int64, st *chatState, lang messages.Lang, text string) {
	code, err := settings.NormalizeLanguage(text)
	if err != nil {
		b.reply(chatID, messages.InvalidLanguage(lang))
		return
	}
	if _, err := b.settings.SetLanguage(st.user, code); err != nil {
		b.reply(chatID, messages.SaveFailed(lang, err))
		return
	}
	st.await = awaitNothing
	b.reply(chatID, messages.LanguageStored(messages.Lang(code), code))
}

func (b *Bot) storeSystem(chatID int64, st *chatState, lang messages.Lang, text string) {
	system, err := settings.NormalizeSystem(text)
	if err != nil {
		b.reply(chatID, messages.InvalidSystem(lang))
		return
	}
	if _, err := b.settings.SetSystem(st.user, system); err != nil {
		b.reply(chatID, messages.SaveFailed(lang, err))
		return
	}
	st.await = awaitNothing
	b.reply(chatID, messages.SystemStored(lang, system))
}

// lang resolves the reply language for a user.
func (b *Bot) lang(user string) messages.Lang {
	if l := b.settings.Language(user); l != "" {
		return messages.Lang(l)
	}
	return messages.Lang(b.cfg.DefaultLanguage)
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("send message", zap.Error(err))
	}
}

// countArg parses the command's numeric argument, e.g. "/tiempos 3".
func countArg(msg *tgbotapi.Message, def int) int {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		return def
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return def
	}
	return n
}
