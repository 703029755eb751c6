package main

import (
	"fmt"

	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newConnectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connections <conversation>:<dialogue>",
		Short: "Show a line with its links, check, alternates and outcomes",
		Args:  keyArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args)
			if err != nil {
				return err
			}
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			view, err := a.engine.Connections(cmd.Context(), key)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), view)
		},
	}
}

func newOutcomesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outcomes <conversation>:<dialogue>",
		Short: "List the success and failure lines of a skill check",
		Long: `Correlates the check on the given line with the conditional lines of its conversation
that test the check's flag. Markdown reports are rendered with glamour on terminals.`,
		Args: keyArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args)
			if err != nil {
				return err
			}
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			outcomes, err := a.engine.Outcomes(cmd.Context(), key)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			format, _ := cmd.Flags().GetString("format")
			switch resolveFormat(format, out) {
			case "json":
				return printJSON(out, outcomes)
			case "text", "markdown":
				view, err := a.engine.Connections(cmd.Context(), key)
				if err != nil {
					return err
				}
				report := tui.OutcomeReport(key, view.Check, outcomes)
				if !isTerminal(out) {
					fmt.Fprint(out, report)
					return nil
				}
				render, err := tui.NewRenderer(0)
				if err != nil {
					return err
				}
				rendered, err := render(report)
				if err != nil {
					return err
				}
				fmt.Fprint(out, rendered)
				return nil
			default:
				return unknownFormat(format, "auto", "markdown", "json")
			}
		},
	}
	cmd.Flags().StringP("format", "f", "auto", "Output format: auto, markdown, json")
	return cmd
}
