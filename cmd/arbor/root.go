package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. Commands are created fresh on every call
// so tests can run them in isolation.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "arbor",
		Short: "Arbor explores branching game dialogue",
		Long: `Arbor reads a dialogue database (or a YAML/JSON fixture) and answers questions about it:
the tree of branches below a line, the links around it, and the outcomes of its skill checks.`,
		SilenceUsage: true,
	}

	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to an arbor.yaml configuration file")
	pf.String("db", "", "SQLite dialogue database (overrides config)")
	pf.String("fixture", "", "YAML/JSON dataset served from memory (overrides --db)")
	pf.String("redis", "", "Redis address for the read-through cache")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		newTreeCmd(),
		newConnectionsCmd(),
		newOutcomesCmd(),
		newActorsCmd(),
		newSearchCmd(),
		newServeCmd(),
		newMCPCmd(),
		newImportCmd(),
		newValidateCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
