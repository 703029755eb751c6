package main

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/sqlite"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <fixture> <database>",
		Short: "Build a SQLite dialogue database from a YAML/JSON fixture",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := memory.LoadFile(args[0])
			if err != nil {
				return err
			}

			db, err := sqlite.Create(args[1])
			if err != nil {
				return err
			}
			if err := db.Seed(cmd.Context(), ds); err != nil {
				db.Close()
				return fmt.Errorf("seed %s: %w", args[1], err)
			}
			if err := db.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d lines, %d links, %d checks into %s\n",
				len(ds.Nodes), len(ds.Edges), len(ds.Checks), args[1])
			return nil
		},
	}
}
