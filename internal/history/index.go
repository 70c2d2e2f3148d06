package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SessionInfo is one saved session's metadata as recorded in the index.
// Round counts and the mean latency are zero when the entry came from a
// directory scan instead of the index.
type SessionInfo struct {
	User        string
	File        string
	SavedAt     time.Time
	Rounds      int
	Corrects    int
	MeanSeconds float64
}

// Index is the SQLite-backed session catalog.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (or creates) the session index at path with WAL mode
// and runs the schema migration.
func OpenIndex(path string) (*Index, error) {
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open index: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			user         TEXT NOT NULL,
			file         TEXT NOT NULL,
			saved_at     TEXT NOT NULL,
			rounds       INTEGER NOT NULL,
			corrects     INTEGER NOT NULL,
			mean_seconds REAL NOT NULL,
			UNIQUE(user, file)
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_user_saved
			ON sessions(user, saved_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: migration: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the underlying database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Add registers a saved session.
func (ix *Index) Add(info SessionInfo) error {
	_, err := ix.db.Exec(
		`INSERT OR REPLACE INTO sessions (user, file, saved_at, rounds, corrects, mean_seconds)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		info.User, info.File, info.SavedAt.Format(time.RFC3339),
		info.Rounds, info.Corrects, info.MeanSeconds,
	)
	if err != nil {
		return fmt.Errorf("history: insert session: %w", err)
	}
	return nil
}

// Recent returns a user's sessions, newest first, capped at n.
func (ix *Index) Recent(user string, n int) ([]SessionInfo, error) {
	rows, err := ix.db.Query(
		`SELECT user, file, saved_at, rounds, corrects, mean_seconds
		 FROM sessions WHERE user = ?
		 ORDER BY saved_at DESC LIMIT ?`,
		user, n,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var savedAt string
		if err := rows.Scan(&info.User, &info.File, &savedAt,
			&info.Rounds, &info.Corrects, &info.MeanSeconds); err != nil {
			return nil, fmt.Errorf("history: scan session: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, savedAt); err == nil {
			info.SavedAt = ts
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate sessions: %w", err)
	}
	return infos, nil
}
