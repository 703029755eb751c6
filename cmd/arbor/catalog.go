package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newActorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actors",
		Short: "List the speakers of the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			actors, err := a.engine.ListActors(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(cmd.OutOrStdout(), actors)
			}
			for _, name := range actors {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print a JSON array")
	return cmd
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Find lines containing a keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			actor, _ := cmd.Flags().GetString("actor")
			matches, err := a.engine.SearchDialogues(cmd.Context(), actor, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(cmd.OutOrStdout(), matches)
			}
			for _, m := range matches {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", m.Actor, m.Dialogue)
			}
			return nil
		},
	}
	cmd.Flags().StringP("actor", "a", "", "Only lines spoken by this actor (case-insensitive)")
	cmd.Flags().Bool("json", false, "Print a JSON array")
	return cmd
}
