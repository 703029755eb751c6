package main

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/spf13/cobra"
)

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <conversation>:<dialogue>",
		Short: "Print the branching tree below a dialogue line",
		Long: `Explores every branch reachable from the given line, up to --depth levels.
Cycles are cut at the first revisit. Output is an outline on terminals and JSON otherwise;
--format mermaid exports a flowchart and --outcomes colors check results in it.`,
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

			depth := a.cfg.MaxDepth
			if cmd.Flags().Changed("depth") {
				depth, _ = cmd.Flags().GetInt("depth")
			}
			format, _ := cmd.Flags().GetString("format")
			withOutcomes, _ := cmd.Flags().GetBool("outcomes")

			tree, err := a.engine.Explore(cmd.Context(), key, depth)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch resolveFormat(format, out) {
			case "json":
				return printJSON(out, tree)
			case "text":
				tui.NewTreePrinter(out, !isTerminal(out)).Print(tree)
				return nil
			case "mermaid":
				var overlay *graph.Overlay
				if withOutcomes {
					if overlay, err = collectOutcomes(cmd.Context(), a.engine, tree); err != nil {
						return err
					}
				}
				fmt.Fprint(out, graph.GenerateMermaid(tree, overlay))
				return nil
			default:
				return unknownFormat(format, "auto", "text", "json", "mermaid")
			}
		},
	}
	cmd.Flags().IntP("depth", "d", domain.DefaultMaxDepth, "Maximum exploration depth")
	cmd.Flags().StringP("format", "f", "auto", "Output format: auto, text, json, mermaid")
	cmd.Flags().Bool("outcomes", false, "Highlight check outcomes (mermaid only)")
	return cmd
}

// collectOutcomes resolves the outcomes of every check line in the tree once.
func collectOutcomes(ctx context.Context, engine *arbor.Engine, tree *domain.TreeNode) (*graph.Overlay, error) {
	overlay := &graph.Overlay{}
	seen := make(map[domain.NodeKey]bool)
	var err error
	tree.Walk(func(n *domain.TreeNode, _ int) bool {
		if err != nil {
			return false
		}
		if n.SkillCheck == nil || seen[n.Key()] {
			return true
		}
		seen[n.Key()] = true
		var outcomes []domain.Outcome
		outcomes, err = engine.Outcomes(ctx, n.Key())
		overlay.Outcomes = append(overlay.Outcomes, outcomes...)
		return err == nil
	})
	return overlay, err
}
