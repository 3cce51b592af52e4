package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cbegin/scoredraft-go"
	"github.com/cbegin/scoredraft-go/internal/config"
	"github.com/cbegin/scoredraft-go/internal/scorefile"
)

var (
	// Global flags
	configFile    string
	extensionsDir string
	verbose       bool

	// Set up by the root command before any subcommand runs.
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scoredraft",
	Short: "Render declarative scores to audio",
	Long: `scoredraft renders song documents (YAML, JSON or MessagePack) into WAV files.

A song lists tracks; each track names an instrument, a list of percussion
classes or a singer, and carries a score. Extension manifests found in
<extensions>/Extensions add classes derived from the built-in ones.

Settings are read from --config, then SCOREDRAFT_* environment variables
(a .env file in the working directory is honored).

Examples:
  scoredraft render -f song.yaml -o song.wav
  scoredraft duration -f song.yaml
  scoredraft classes
  scoredraft codegen -o ScoreDraftGenerated.py`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&extensionsDir, "extensions", "", "root directory holding Extensions/ (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if extensionsDir != "" {
		c.ExtensionsDir = extensionsDir
	}
	level := c.Level()
	if verbose {
		level = slog.LevelDebug
	}
	cfg = c
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// newEngine builds an engine with built-ins and every extension found under
// the configured directory. Extensions that fail to load are logged and
// skipped.
func newEngine() *scoredraft.Engine {
	e := scoredraft.New(scoredraft.WithLogger(logger), scoredraft.WithNormalize(cfg.Normalize))
	n, err := e.ScanExtensions(cfg.ExtensionsDir)
	if err != nil {
		logger.Warn("scoredraft: some extensions failed to load", "err", err)
	}
	logger.Debug("scoredraft: extensions scanned", "dir", cfg.ExtensionsDir, "loaded", n)
	return e
}

func readSong(path string) (*scoredraft.Song, error) {
	if path == "" {
		return nil, errors.New("flag -f is required")
	}
	return scorefile.ReadWith(path, scorefile.Defaults{
		Tempo:    cfg.Tempo,
		RefFreq:  cfg.RefFreq,
		Channels: cfg.Channels,
	})
}
