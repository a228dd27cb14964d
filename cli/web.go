// ABOUTME: Web dashboard subcommand
// ABOUTME: Serves a read-only view of campaigns, boards and searches until interrupted
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/zala/web"
)

func newWebCmd(g *globalFlags) *cobra.Command {
	var (
		port int
		host string
	)
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve a read-only dashboard in the browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withUser(cmd, func(rt *runtime) error {
				server, err := web.NewServer(rt.deps, rt.store)
				if err != nil {
					return err
				}
				addr := fmt.Sprintf("%s:%d", host, port)
				fmt.Fprintf(rt.out, "Dashboard at http://%s (Ctrl+C to stop)\n", addr)
				return server.Start(cmd.Context(), addr)
			})
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on")
	cmd.Flags().StringVar(&host, "host", "localhost", "Interface to listen on")
	return cmd
}
