// ABOUTME: Visualization CLI commands
// ABOUTME: Writes Graphviz DOT for a campaign's outreach or a board's columns
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harperreed/zala/handlers"
	"github.com/harperreed/zala/pages"
	"github.com/harperreed/zala/viz"
)

func newVizCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz",
		Short: "Generate Graphviz graphs",
	}
	cmd.AddCommand(
		newGraphCmd(g, "campaign", "Graph a campaign and the outreach to each lead", handlers.CampaignGraph),
		newGraphCmd(g, "board", "Graph a board's columns and cards", handlers.BoardGraph),
	)
	return cmd
}

type graphFunc func(ctx context.Context, d pages.Deps, id int) (viz.Graph, error)

func newGraphCmd(g *globalFlags, kind, short string, build graphFunc) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <%s-id>", kind, kind),
		Short: short,
		Example: fmt.Sprintf(`  zala viz %s 7 --output %s.dot
  zala viz %s 7 | dot -Tsvg > %s.svg`, kind, kind, kind, kind),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(kind, args[0])
			if err != nil {
				return err
			}
			return g.withUser(cmd, func(rt *runtime) error {
				graph, err := build(cmd.Context(), rt.deps, id)
				if err != nil {
					return err
				}
				if output != "" {
					if err := os.WriteFile(output, []byte(graph.DOT), 0644); err != nil {
						return fmt.Errorf("failed to write graph: %w", err)
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s (%d nodes, %d edges)\n", output, graph.Nodes, graph.Edges)
					return nil
				}
				fmt.Fprintln(rt.out, graph.DOT)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
