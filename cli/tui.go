// ABOUTME: TUI and cleanup subcommands
// ABOUTME: Launches the full-screen interface and deletes rows left by failed lead saves
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/zala/pages"
	"github.com/harperreed/zala/tui"
)

func newTUICmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.open(cmd, openOptions{logToFile: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			if _, err := rt.login(cmd.Context()); err != nil {
				return err
			}
			return tui.Run(cmd.Context(), rt.deps, rt.store)
		},
	}
}

func newCleanupCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete partial leads left on the server by failed saves",
		Long: `When saving a lead fails halfway, the contact, address or lead already
created is deleted again. Rows that could not be deleted then are
remembered locally; this command retries them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withUser(cmd, func(rt *runtime) error {
				res, err := pages.CleanupOrphans(cmd.Context(), rt.deps, rt.store)
				if err != nil {
					return fmt.Errorf("failed to clean up: %w", err)
				}
				if res.Deleted+res.Failed == 0 {
					fmt.Fprintln(rt.out, "Nothing to clean up")
					return nil
				}
				fmt.Fprintf(rt.out, "✓ Deleted %d record(s)\n", res.Deleted)
				if res.Failed > 0 {
					fmt.Fprintln(rt.out, color.YellowString("  %d record(s) could not be deleted; they will be retried next time", res.Failed))
				}
				return nil
			})
		},
	}
}
