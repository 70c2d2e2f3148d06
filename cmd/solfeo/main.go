// Solfeo: a sight-reading drill for the terminal, Telegram and MCP.
//
// It shows a random note on a treble or bass staff and judges your
// answer (do, re, mi... or C, D, E...), tracking correctness and answer
// time per timed session.
//
// Usage:
//
//	solfeo           # practice in the terminal
//	solfeo telegram  # run the Telegram bot front end
//	solfeo mcp       # serve the drill over MCP (stdio transport)
//	solfeo update    # update to the latest version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/csoneira/solfeo-bot/internal/config"
	"github.com/csoneira/solfeo-bot/internal/console"
	"github.com/csoneira/solfeo-bot/internal/history"
	"github.com/csoneira/solfeo-bot/internal/server"
	"github.com/csoneira/solfeo-bot/internal/settings"
	"github.com/csoneira/solfeo-bot/internal/telegram"
	"github.com/csoneira/solfeo-bot/internal/updater"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dataDir    string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "solfeo",
	Short: "Solfeo — a solfège sight-reading drill",
	Long: `Solfeo shows a random note on a treble or bass staff and judges your
answer, spoken as solfège (do, re, mi...) or letters (C, D, E...).

Timed sessions record correctness and answer time per round and are
saved as CSV files; /tiempos and /aciertos chart the saved history.

Run without arguments to practice in the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}

		// Logs go to stderr so they never mix with the MCP stdio
		// transport or the terminal drill on stdout.
		zcfg := zap.NewProductionConfig()
		zcfg.OutputPaths = []string{"stderr"}
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole()
	},
}

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Run the Telegram bot front end",
	Long: `Long-polls the Telegram Bot API and drives one drill session per chat.

The bot token is read from the token file (default telegram_token.txt);
a template is created on first run for you to paste the token into.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTelegram()
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the drill over MCP (stdio transport)",
	Long: `Exposes the drill as MCP tools (solfeo_deal, solfeo_answer, ...) so any
MCP client can run the practice loop. Speaks the protocol on stdio.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update solfeo to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpdate()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the solfeo version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("solfeo v%s\n", server.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "solfeo.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override the session data directory")

	rootCmd.AddCommand(telegramCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext cancels on interrupt or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

func runConsole() error {
	hist, err := history.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("creating history store: %w", err)
	}
	defer hist.Close()

	ctx, cancel := signalContext()
	defer cancel()

	c := console.New(cfg, hist, settings.NewStore(cfg.DataDir), logger)
	if err := c.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func runTelegram() error {
	token, err := config.LoadOrCreateToken(cfg.TokenFile)
	if err != nil {
		return err
	}

	hist, err := history.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("creating history store: %w", err)
	}
	defer hist.Close()

	bot, err := telegram.New(token, cfg, hist, settings.NewStore(cfg.DataDir), logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("telegram front end running", zap.String("data_dir", cfg.DataDir))
	if err := bot.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func runMCP() error {
	s, cleanup, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	return mcpserver.ServeStdio(s)
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. Best-effort: network failures
// are silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(server.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\nUpdate available: v%s → v%s\nRun: solfeo update\nRelease: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest release.
func runUpdate() error {
	fmt.Fprintln(os.Stderr, "Checking for updates...")

	result := updater.CheckVersion(server.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "Already at the latest version (v%s)\n", result.CurrentVersion)
		return nil
	}

	fmt.Fprintf(os.Stderr, "New version available: v%s → v%s\nDownloading...\n",
		result.CurrentVersion, result.LatestVersion)

	if err := updater.SelfUpdate(server.Version); err != nil {
		fmt.Fprintf(os.Stderr, "You can download manually from:\n%s\n", result.ReleaseURL)
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Updated to v%s. Restart solfeo to use the new version.\n", result.LatestVersion)
	return nil
}
