// Package history persists timed drill sessions and computes the
// per-note statistics behind the analytics charts.
//
// Each saved session is one CSV file under
// SESSIONS/SAVED_GAMES/<user>/session_YYYYmmdd_HHMMSS.csv. The CSV files
// are the round-level source of truth; a small SQLite index alongside
// them speeds up "recent sessions" queries and survives as metadata even
// when individual files are deleted. Index failures degrade to a
// directory scan — the store keeps working without it.
package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/csoneira/solfeo-bot/internal/music"
	"github.com/csoneira/solfeo-bot/internal/session"
)

const (
	// sessionsDir is the subdirectory under the data dir for all
	// drill persistence.
	sessionsDir = "SESSIONS"
	// savedGamesDir holds per-user session CSV files.
	savedGamesDir = "SAVED_GAMES"
)

// csvHeader is the column layout of a session file.
var csvHeader = []string{"timestamp", "clef", "letter", "solfege", "correct", "time_seconds"}

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Store persists timed sessions for all users under one data directory.
type Store struct {
	dataDir string
	index   *Index
}

// NewStore opens a session store rooted at dataDir. The SQLite index is
// opened best-effort: on failure the store still works from directory
// scans and the returned error is nil (the caller may log idx == nil).
func NewStore(dataDir string) (*Store, error) {
	base := filepath.Join(dataDir, sessionsDir)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("creating sessions directory: %w", err)
	}

	s := &Store{dataDir: dataDir}
	if idx, err := OpenIndex(filepath.Join(base, "sessions.db")); err == nil {
		s.index = idx
	}
	return s, nil
}

// HasIndex reports whether the SQLite index is available.
func (s *Store) HasIndex() bool { return s.index != nil }

// Close releases the index database, if open.
func (s *Store) Close() error {
	if s.index == nil {
		return nil
	}
	return s.index.Close()
}

// UserDir returns the session directory for a user, creating it.
func (s *Store) UserDir(user string) (string, error) {
	dir := filepath.Join(s.dataDir, sessionsDir, savedGamesDir, user)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating user directory: %w", err)
	}
	return dir, nil
}

// Save writes a session's rounds to a new CSV file and registers it in
// the index. Saving an empty session is an error.
func (s *Store) Save(user string, rounds []session.Round) (string, error) {
	if len(rounds) == 0 {
		return "", fmt.Errorf("no rounds to save")
	}

	dir, err := s.UserDir(user)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("session_%s.csv", timeNow().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating session file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}
	corrects := 0
	var totalSeconds float64
	for _, r := range rounds {
		correct := "0"
		if r.Correct {
			correct = "1"
			corrects++
		}
		totalSeconds += r.Seconds
		row := []string{
			r.Timestamp.Format(time.RFC3339),
			string(r.Clef),
			r.Letter,
			r.Solfege,
			correct,
			strconv.FormatFloat(r.Seconds, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing round: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing session file: %w", err)
	}

	if s.index != nil {
		// Best effort: a failed index insert must not lose the CSV.
		_ = s.index.Add(SessionInfo{
			User:        user,
			File:        name,
			SavedAt:     timeNow().UTC(),
			Rounds:      len(rounds),
			Corrects:    corrects,
			MeanSeconds: totalSeconds / float64(len(rounds)),
		})
	}

	return path, nil
}

// Read parses a session CSV back into rounds. Unparseable rows are an
// error; these files are written by us and should round-trip exactly.
func (s *Store) Read(path string) ([]session.Round, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening session file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var rounds []session.Round
	for i, row := range records[1:] { // skip header
		if len(row) != len(csvHeader) {
			return nil, fmt.Errorf("row %d: %d columns, want %d", i+1, len(row), len(csvHeader))
		}
		ts, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: timestamp: %w", i+1, err)
		}
		correct, err := strconv.Atoi(row[4])
		if err != nil {
			return nil, fmt.Errorf("row %d: correct flag: %w", i+1, err)
		}
		seconds, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: time_seconds: %w", i+1, err)
		}
		rounds = append(rounds, session.Round{
			Timestamp: ts,
			Clef:      music.Clef(row[1]),
			Letter:    row[2],
			Solfege:   row[3],
			Correct:   correct != 0,
			Seconds:   seconds,
		})
	}
	return rounds, nil
}

// Recent lists a user's saved sessions, newest first, capped at n.
// It prefers the index and falls back to scanning the user directory
// by modification time.
func (s *Store) Recent(user string, n int) ([]SessionInfo, error) {
	if n < 1 {
		n = 1
	}
	if s.index != nil {
		infos, err := s.index.Recent(user, n)
		if err == nil {
			return infos, nil
		}
	}
	return s.scanRecent(user, n)
}

// LoadRecent reads and concatenates the rounds of the user's last n
// saved sessions.
func (s *Store) LoadRecent(user string, n int) ([]session.Round, error) {
	infos, err := s.Recent(user, n)
	if err != nil {
		return nil, err
	}

	var combined []session.Round
	for _, info := range infos {
		rounds, err := s.Read(filepath.Join(s.dataDir, sessionsDir, savedGamesDir, user, info.File))
		if err != nil {
			continue // best effort: skip unreadable files
		}
		combined = append(combined, rounds...)
	}
	return combined, nil
}

// scanRecent is the index-free fallback: list CSV files by mtime.
func (s *Store) scanRecent(user string, n int) ([]SessionInfo, error) {
	dir := filepath.Join(s.dataDir, sessionsDir, savedGamesDir, user)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading user directory: %w", err)
	}

	var infos []SessionInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, SessionInfo{
			User:    user,
			File:    entry.Name(),
			SavedAt: fi.ModTime().UTC(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].SavedAt.After(infos[j].SavedAt)
	})
	if len(infos) > n {
		infos = infos[:n]
	}
	return infos, nil
}
