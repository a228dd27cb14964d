// ABOUTME: Lead search CLI commands
// ABOUTME: Runs a location search across lead sources and shows recent searches
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harperreed/zala/handlers"
)

type searchFlags struct {
	sources []string
	sortBy  string
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.sources, "source", nil, "Lead source: db, google_places, rapidapi, gpt (repeatable, default all)")
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "Sort results by: name, email, address")
}

func (f *searchFlags) input(args []string) handlers.SearchLeadsInput {
	return handlers.SearchLeadsInput{
		Query:   strings.Join(args, " "),
		Sources: f.sources,
		SortBy:  f.sortBy,
	}
}

func newSearchCmd(g *globalFlags) *cobra.Command {
	f := &searchFlags{}
	cmd := &cobra.Command{
		Use:   "search <location>",
		Short: "Find leads around a location",
		Example: `  zala search Rochester, NY
  zala search 14623 --source db --source gpt --sort name`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withUser(cmd, func(rt *runtime) error {
				_, out, err := handlers.NewLeadHandlers(rt.deps, rt.store).SearchLeads(cmd.Context(), nil, f.input(args))
				if err != nil {
					return err
				}
				if out.Count == 0 {
					fmt.Fprintf(rt.out, "No leads found for %s\n", out.Query)
					return nil
				}
				printSearchResults(rt.out, out.Results)
				fmt.Fprintf(rt.out, "\nTotal: %d lead(s). Start a campaign with 'zala campaign start %s --pick 0,1,...'\n", out.Count, out.Query)
				return nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func printSearchResults(w io.Writer, results []handlers.LeadOutput) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tNAME\tBUSINESS\tEMAIL\tADDRESS\tSOURCE\tMILES")
	_, _ = fmt.Fprintln(tw, "-\t----\t--------\t-----\t-------\t------\t-----")
	for _, r := range results {
		miles := "-"
		if r.DistanceMiles != nil {
			miles = fmt.Sprintf("%.1f", *r.DistanceMiles)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Index, orDash(r.Name), orDash(r.Business), orDash(r.Email), orDash(r.Address), r.Source, miles)
	}
	_ = tw.Flush()
}

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show searches run from this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.open(cmd, openOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()

			records, err := rt.store.RecentSearches(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to read search history: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(rt.out, "No searches yet")
				return nil
			}

			tw := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "WHEN\tQUERY\tSOURCES\tRESULTS")
			_, _ = fmt.Fprintln(tw, "----\t-----\t-------\t-------")
			for _, r := range records {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
					r.SearchedAt.Local().Format("2006-01-02 15:04"), r.Query, strings.Join(r.Sources, ","), r.ResultCount)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum searches to show")
	return cmd
}
