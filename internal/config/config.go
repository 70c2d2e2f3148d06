// Package config loads the drill's YAML configuration and the Telegram
// bot token file. A missing config file is not an error: defaults cover
// everything, the file only overrides.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoToken is returned when the token file exists but holds no token,
// or was just created as a template for the user to fill in.
var ErrNoToken = errors.New("config: no telegram token configured")

// tokenTemplate is written when the token file does not exist yet.
const tokenTemplate = "# Paste your Telegram bot token on a non-commented line below this comment and save the file.\n"

// Config holds the runtime knobs for every front end.
type Config struct {
	// DataDir is the directory the SESSIONS tree (session CSVs and
	// per-user settings) is created under.
	DataDir string `yaml:"data_dir"`
	// TokenFile is the path of the Telegram bot token file.
	TokenFile string `yaml:"token_file"`
	// AnswerTimeoutSeconds is how long a timed-mode answer may take
	// before the attempt is discarded and the session auto-saves.
	AnswerTimeoutSeconds int `yaml:"answer_timeout_seconds"`
	// MinStaffIndex and MaxStaffIndex bound the random note range.
	MinStaffIndex int `yaml:"min_staff_index"`
	MaxStaffIndex int `yaml:"max_staff_index"`
	// DefaultLanguage is used before a user picks one ("es" or "en").
	DefaultLanguage string `yaml:"default_language"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		DataDir:              ".",
		TokenFile:            "telegram_token.txt",
		AnswerTimeoutSeconds: 60,
		MinStaffIndex:        -2,
		MaxStaffIndex:        12,
		DefaultLanguage:      "es",
	}
}

// Load reads the YAML config at path, filling unset fields with
// defaults. A missing file yields the defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.AnswerTimeoutSeconds <= 0 {
		cfg.AnswerTimeoutSeconds = Default().AnswerTimeoutSeconds
	}
	if cfg.MinStaffIndex >= cfg.MaxStaffIndex {
		return cfg, fmt.Errorf("config %s: staff index range [%d, %d] is empty",
			path, cfg.MinStaffIndex, cfg.MaxStaffIndex)
	}
	return cfg, nil
}

// Timeout returns the answer timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.AnswerTimeoutSeconds) * time.Second
}

// LoadOrCreateToken reads the first non-empty, non-comment line of the
// token file. If the file does not exist it is created with a commented
// instruction line and ErrNoToken is returned.
func LoadOrCreateToken(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("open token file: %w", err)
		}
		if err := os.WriteFile(path, []byte(tokenTemplate), 0o600); err != nil {
			return "", fmt.Errorf("create token file: %w", err)
		}
		return "", fmt.Errorf("%w: template written to %s", ErrNoToken, path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return "", fmt.Errorf("%w: %s has no token line", ErrNoToken, path)
}
