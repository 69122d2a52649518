// Command agentcore drives the phase orchestrator from the command line:
// run a single turn, resume a suspended one, or list registered tools.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	envPath    string
	dbPath     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "agentcore",
		Short:         "Phase-driven tool-use agent orchestrator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to agentcore.yaml")
	cmd.PersistentFlags().StringVar(&flags.envPath, "env", ".env", "path to a .env file (optional)")
	cmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path (overrides config storage.path and selects SQLite; empty uses the configured backend)")
	cmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "enable debug-level logging")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newResumeCmd(flags))
	cmd.AddCommand(newToolsCmd(flags))
	return cmd
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
