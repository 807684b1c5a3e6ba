package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"svw.info/sudokucoach/internal/config"
	"svw.info/sudokucoach/internal/generator"
	"svw.info/sudokucoach/internal/hint"
	"svw.info/sudokucoach/internal/infrastructure/storage"
	"svw.info/sudokucoach/internal/logging"
	"svw.info/sudokucoach/internal/ports"
	"svw.info/sudokucoach/internal/solver"
	"svw.info/sudokucoach/internal/usecase"
	"svw.info/sudokucoach/internal/validator"
)

var (
	rootConfigPath string
	rootLogLevel   string
	rootDataDir    string
)

var rootCmd = &cobra.Command{
	Use:           "sudoku-coach",
	Short:         "Sudoku with a guided first-run lesson",
	Long:          "sudoku-coach plays Sudoku in the terminal, walks new players through a scripted lesson and serves a small web API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to the YAML configuration")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "debug|info|warn|error (overrides the config)")
	rootCmd.PersistentFlags().StringVar(&rootDataDir, "data-dir", "", "Directory for puzzles, flags and logs (overrides the config)")
	rootCmd.AddCommand(coachCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(skipCmd)
}

// loadConfig reads the config file and applies the persistent overrides.
func loadConfig() (*config.Config, slog.Level, error) {
	cfg, err := config.Load(rootConfigPath)
	if err != nil {
		return nil, 0, err
	}
	if rootLogLevel != "" {
		cfg.LogLevel = rootLogLevel
	}
	if rootDataDir != "" {
		cfg.DataDir = rootDataDir
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, 0, fmt.Errorf("create data dir: %w", err)
	}
	return cfg, logging.ParseLevel(cfg.LogLevel), nil
}

// newService wires solver, generator, validator, hinter and storage.
// DLX is the default solver; backtracking is kept as a fallback.
func newService(cfg *config.Config) *usecase.Service {
	var s ports.Solver
	switch strings.ToLower(strings.TrimSpace(cfg.Solver)) {
	case "backtrack", "backtracking":
		s = solver.NewBacktrackingSolver()
	default:
		s = solver.NewDLXSolver()
	}
	return usecase.NewService(s, generator.NewUniqueGenerator(s), validator.New(), hint.NewSingles(), storage.NewFS(cfg.DataDir))
}
