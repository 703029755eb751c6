package main

import (
	"fmt"

	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [fixture]",
		Short: "Check a dataset for dangling links",
		Long: `Without --from, checks every row of a fixture file (the argument, or --fixture).
With --from, crawls the configured dataset from that line and reports links to missing entries.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")

			if from != "" {
				key, err := parseKey([]string{from})
				if err != nil {
					return err
				}
				a, err := openApp(cmd)
				if err != nil {
					return err
				}
				defer a.Close()
				if err := validator.ValidateGraph(cmd.Context(), a.engine.Source(), key); err != nil {
					return fmt.Errorf("validation failed: %w", err)
				}
			} else {
				path, _ := cmd.Flags().GetString("fixture")
				if len(args) > 0 {
					path = args[0]
				}
				if path == "" {
					return fmt.Errorf("nothing to validate: pass a fixture or --from <conversation>:<dialogue>")
				}
				ds, err := memory.LoadFile(path)
				if err != nil {
					return err
				}
				if err := validator.ValidateDataset(ds); err != nil {
					return fmt.Errorf("validation failed: %w", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Dataset is valid! ✅")
			return nil
		},
	}
	cmd.Flags().String("from", "", "Crawl the configured dataset from this line")
	return cmd
}
