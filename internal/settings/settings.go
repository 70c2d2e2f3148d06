// Package settings stores per-user preferences as small flat files under
// SESSIONS/SETTINGS/: <user>.lang for the message language and
// <user>.system for the preferred notation system.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Language codes. Any other two-letter code is stored as typed.
const (
	LangSpanish = "es"
	LangEnglish = "en"
)

// Notation systems.
const (
	SystemLetter  = "letter"
	SystemSolfege = "solfege"
)

// Store reads and writes user preference files.
type Store struct {
	dataDir string
}

// NewStore creates a settings store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) settingsDir() (string, error) {
	dir := filepath.Join(s.dataDir, "SESSIONS", "SETTINGS")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating settings directory: %w", err)
	}
	return dir, nil
}

// Language returns the user's stored language, or "" if not configured.
func (s *Store) Language(user string) string {
	return s.read(user + ".lang")
}

// SetLanguage normalizes and stores the user's language choice.
func (s *Store) SetLanguage(user, lang string) (string, error) {
	normalized, err := NormalizeLanguage(lang)
	if err != nil {
		return "", err
	}
	return normalized, s.write(user+".lang", normalized)
}

// System returns the user's stored notation system, or "" if not set.
func (s *Store) System(user string) string {
	return s.read(user + ".system")
}

// SetSystem normalizes and stores the user's notation system choice.
func (s *Store) SetSystem(user, system string) (string, error) {
	normalized, err := NormalizeSystem(system)
	if err != nil {
		return "", err
	}
	return normalized, s.write(user+".system", normalized)
}

func (s *Store) read(name string) string {
	dir := filepath.Join(s.dataDir, "SESSIONS", "SETTINGS")
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *Store) write(name, value string) error {
	dir, err := s.settingsDir()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// NormalizeLanguage maps free-form input to a stored language code.
// "español", "spanish" and anything starting with "es"/"span" become
// "es"; likewise for English. Other input is truncated to a raw
// two-letter code; empty input is an error.
func NormalizeLanguage(input string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(input))
	if t == "" {
		return "", fmt.Errorf("empty language")
	}
	switch {
	case strings.HasPrefix(t, "es"), strings.HasPrefix(t, "span"):
		return LangSpanish, nil
	case strings.HasPrefix(t, "en"), strings.HasPrefix(t, "eng"):
		return LangEnglish, nil
	}
	if len(t) < 2 {
		return "", fmt.Errorf("unrecognized language %q", input)
	}
	return t[:2], nil
}

// NormalizeSystem maps free-form input to a notation system.
func NormalizeSystem(input string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(input))
	switch {
	case strings.HasPrefix(t, "let"), t == "abc", t == "letters":
		return SystemLetter, nil
	case strings.HasPrefix(t, "sol"), t == "solfeo", t == "do", t == "doremi":
		return SystemSolfege, nil
	}
	return "", fmt.Errorf("unrecognized notation system %q (want 'letter' or 'solfege')", input)
}
