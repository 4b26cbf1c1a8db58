package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/tripwise-agent/internal/config"
	"github.com/PabloGalante/tripwise-agent/internal/observability"
)

var (
	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "tripwise",
	Short: "Tripwise - conversational travel planning agent",
	Long: `Tripwise turns a chat about a trip into a budget-checked plan with a flight,
a hotel and a day-by-day itinerary, and can book the result.`,
	SilenceUsage: true,
}

func main() {
	addPersistentFlags()
	registerCommands()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (YAML)")
	flags.String("storage", "memory", "storage backend: memory, sqlite or firestore")
	flags.String("sqlite-path", "data/tripwise.db", "SQLite database file")
	flags.Bool("mock-llm", true, "use the offline rule-based language model instead of Vertex AI")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "json", "log format: json or text")
	flags.String("booking-policy", "report", "on hotel failure: report or compensate")

	_ = v.BindPFlag("storage.backend", flags.Lookup("storage"))
	_ = v.BindPFlag("storage.sqlite_path", flags.Lookup("sqlite-path"))
	_ = v.BindPFlag("use_mock_llm", flags.Lookup("mock-llm"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindPFlag("planner.booking_policy", flags.Lookup("booking-policy"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(chatCmd())
}

// loadConfig reads configuration and initialises logging to logOut.
func loadConfig(logOut io.Writer) (*config.Config, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	if err := observability.Init(logOut, cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}
