// Package cmd implements the econcoach command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/priyam/econcoach/internal/coach"
	"github.com/priyam/econcoach/internal/llm"
	"github.com/priyam/econcoach/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "econcoach",
	Short: "AI exam coach for A-level economics",
	Long: "Econcoach generates model answers, grades essays, coaches drafts, and\n" +
		"builds practice exercises from a catalog of past-paper economics questions.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ECONCOACH_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(deconstructCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(coachCmd)
	rootCmd.AddCommand(clozeCmd)
	rootCmd.AddCommand(improveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// viperForCmd binds a command's flags, ECONCOACH_* environment variables,
// and an optional config file to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("ECONCOACH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("econcoach")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/econcoach")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	}

	return v
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var level slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// resolveDBPath returns the database path using the --db flag (highest
// priority), then ECONCOACH_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p := viperForCmd(cmd).GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the SQLite store for a command invocation.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// newService builds a coach service over the environment-configured
// provider. A missing credential surfaces as the user-facing instruction,
// not a stack trace.
func newService(ctx context.Context, st *store.Store) (*coach.Service, error) {
	provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo())
	if err != nil {
		return nil, fmt.Errorf("%s", coach.UserMessage(err))
	}
	return coach.New(provider, st, coach.DefaultConfig()), nil
}
