// ABOUTME: Campaign CLI commands
// ABOUTME: Start campaigns from a search, then rename, track outreach, take notes and send email
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/zala/handlers"
	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/pages"
	"github.com/harperreed/zala/viz"
)

func newCampaignCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "campaign",
		Aliases: []string{"campaigns"},
		Short:   "Manage outreach campaigns",
	}
	cmd.AddCommand(
		newCampaignStartCmd(g),
		newCampaignListCmd(g),
		newCampaignShowCmd(g),
		newCampaignRenameCmd(g),
		newCampaignToggleCmd(g),
		newCampaignNotesCmd(g),
		newCampaignEmailCmd(g),
	)
	return cmd
}

func newCampaignStartCmd(g *globalFlags) *cobra.Command {
	f := &searchFlags{}
	var (
		picks []int
		all   bool
		title string
	)
	cmd := &cobra.Command{
		Use:   "start <location>",
		Short: "Search a location and start a campaign from the picked results",
		Long: `Runs the search again, saves the picked leads and creates a campaign
containing every lead that was saved. Indexes are the # column of
'zala search'.`,
		Example: `  zala campaign start Rochester, NY --pick 0,2,3 --title "Spring push"
  zala campaign start 14623 --source db --all`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(picks) == 0 && !all {
				return fmt.Errorf("pick leads with --pick or use --all")
			}
			return g.withUser(cmd, func(rt *runtime) error {
				leads := handlers.NewLeadHandlers(rt.deps, rt.store)
				_, found, err := leads.SearchLeads(cmd.Context(), nil, f.input(args))
				if err != nil {
					return err
				}
				if found.Count == 0 {
					return fmt.Errorf("no leads found for %s", found.Query)
				}
				if all {
					picks = picks[:0]
					for i := range found.Count {
						picks = append(picks, i)
					}
				}

				_, out, err := leads.StartCampaign(cmd.Context(), nil, handlers.StartCampaignInput{Indexes: picks, Title: title})
				if err != nil {
					return err
				}
				fmt.Fprintf(rt.out, "✓ Campaign created: %s (ID: %d)\n", out.CampaignName, out.CampaignID)
				fmt.Fprintf(rt.out, "  Leads: %d\n", len(out.Leads))
				if out.Failed > 0 {
					fmt.Fprintln(rt.out, color.YellowString("  %d lead(s) could not be saved and were left out", out.Failed))
				}
				if len(out.Orphans) > 0 {
					fmt.Fprintln(rt.out, color.YellowString("  %d partial record(s) remain on the server; run 'zala cleanup'", len(out.Orphans)))
				}
				return nil
			})
		},
	}
	f.register(cmd)
	cmd.Flags().IntSliceVar(&picks, "pick", nil, "Result indexes to include")
	cmd.Flags().BoolVar(&all, "all", false, "Include every result")
	cmd.Flags().StringVar(&title, "title", "", "Campaign title (default: today's date)")
	return cmd
}

func newCampaignListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your campaigns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withUser(cmd, func(rt *runtime) error {
				camps, err := pages.PastCampaigns(cmd.Context(), rt.deps)
				if err != nil {
					return fmt.Errorf("failed to list campaigns: %w", err)
				}
				if len(camps) == 0 {
					fmt.Fprintln(rt.out, "No campaigns found")
					return nil
				}

				tw := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tNAME\tLEADS\tPHONE\tSMS\tEMAIL\tNOT CONTACTED")
				_, _ = fmt.Fprintln(tw, "--\t----\t-----\t-----\t---\t-----\t-------------")
				for _, c := range camps {
					s := viz.GenerateCampaignStats(c)
					_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\n",
						c.CampaignID, c.CampaignName, s.Leads, s.Contacted[models.ContactPhone],
						s.Contacted[models.ContactSMS], s.Contacted[models.ContactEmail], s.Untouched)
				}
				_ = tw.Flush()
				fmt.Fprintf(rt.out, "\nTotal: %d campaign(s)\n", len(camps))
				return nil
			})
		},
	}
}

func newCampaignShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <campaign-id>",
		Short: "Show a campaign with its leads and outreach",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("campaign", args[0])
			if err != nil {
				return err
			}
			return g.withUser(cmd, func(rt *runtime) error {
				c := pages.NewCampaignController(rt.deps, id, nil)
				defer c.Close()
				if err := c.Load(cmd.Context()); err != nil {
					return fmt.Errorf("failed to load campaign: %w", err)
				}
				printCampaign(rt.out, c.Campaign(), c.Leads())
				return nil
			})
		},
	}
}

func printCampaign(w io.Writer, camp models.Campaign, leads []models.Lead) {
	fmt.Fprintf(w, "%s (ID: %d)\n\n", color.New(color.Bold).Sprint(camp.CampaignName), camp.CampaignID)

	byID := make(map[int]models.Lead, len(leads))
	for _, l := range leads {
		byID[l.LeadID] = l
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LEAD\tBUSINESS\tNAME\tEMAIL\tPHONE\tCONTACTED")
	_, _ = fmt.Fprintln(tw, "----\t--------\t----\t-----\t-----\t---------")
	for _, cl := range camp.Leads {
		l := byID[cl.LeadID]
		methods := make([]string, 0, len(cl.ContactMethods))
		for _, m := range cl.ContactMethods {
			methods = append(methods, string(m))
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			cl.LeadID, orDash(l.Buisness), orDash(l.Contact.FullName()), orDash(l.Contact.Email),
			orDash(l.Contact.Phone), orDash(strings.Join(methods, ",")))
	}
	_ = tw.Flush()
	fmt.Fprintln(w)
	fmt.Fprint(w, viz.RenderCampaign(viz.GenerateCampaignStats(camp)))
}

func newCampaignRenameCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <campaign-id> <title>",
		Short: "Rename a campaign",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("campaign", args[0])
			if err != nil {
				return err
			}
			return g.withUser(cmd, func(rt *runtime) error {
				_, out, err := handlers.NewCampaignHandlers(rt.deps).RenameCampaign(cmd.Context(), nil, handlers.RenameCampaignInput{
					CampaignID: id,
					Title:      strings.Join(args[1:], " "),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(rt.out, "✓ Campaign %d renamed to %s\n", out.CampaignID, out.CampaignName)
				return nil
			})
		},
	}
}

func newCampaignToggleCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <campaign-id> <lead-id> <phone|sms>",
		Short: "Mark or unmark a lead as called or texted",
		Long: `Flips one contact method for a campaign lead. Email is marked when a
message is sent with 'zala campaign email'.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			campaignID, err := parseID("campaign", args[0])
			if err != nil {
				return err
			}
			leadID, err := parseID("lead", args[1])
			if err != nil {
				return err
			}
			return g.withUser(cmd, func(rt *runtime) error {
				_, out, err := handlers.NewCampaignHandlers(rt.deps).ToggleContact(cmd.Context(), nil, handlers.ToggleContactInput{
					CampaignID: campaignID,
					LeadID:     leadID,
					Method:     args[2],
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(rt.out, "✓ Lead %d contacted by: %s\n", out.LeadID, orDash(strings.Join(out.ContactMethods, ", ")))
				return nil
			})
		},
	}
}

func newCampaignNotesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <campaign-id> <lead-id> [notes]",
		Short: "Show or replace a campaign lead's notes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			campaignID, err := parseID("campaign", args[0])
			if err != nil {
				return err
			}
			leadID, err := parseID("lead", args[1])
			if err != nil {
				return err
			}
			return g.withUser(cmd, func(rt *runtime) error {
				h := handlers.NewCampaignHandlers(rt.deps)
				if len(args) == 2 {
					_, camp, err := h.GetCampaign(cmd.Context(), nil, handlers.GetCampaignInput{CampaignID: campaignID})
					if err != nil {
						return err
					}
					for _, l := range camp.Leads {
						if l.LeadID == leadID {
							fmt.Fprintln(rt.out, orDash(l.Notes))
							return nil
						}
					}
					return fmt.Errorf("lead %d is not in campaign %d", leadID, campaignID)
				}

				_, out, err := h.UpdateLeadNotes(cmd.Context(), nil, handlers.UpdateLeadNotesInput{
					CampaignID: campaignID,
					LeadID:     leadID,
					Notes:      strings.Join(args[2:], " "),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(rt.out, "✓ Notes saved for lead %d\n", out.LeadID)
				return nil
			})
		},
	}
}

func newCampaignEmailCmd(g *globalFlags) *cobra.Command {
	var (
		leadIDs  []int
		subject  string
		bodyFile string
		from     string
	)
	cmd := &cobra.Command{
		Use:   "email <campaign-id>",
		Short: "Email campaign leads from your connected Google account",
		Long: `Sends the referral template, or your own subject and HTML body, to the
given leads (default every lead in the campaign). Leads without a valid
email address are skipped. Each lead that was mailed is marked as
contacted by email.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("campaign", args[0])
			if err != nil {
				return err
			}
			in := handlers.SendCampaignEmailInput{CampaignID: id, LeadIDs: leadIDs, Subject: subject, FromName: from}
			if bodyFile != "" {
				body, err := os.ReadFile(bodyFile)
				if err != nil {
					return fmt.Errorf("failed to read body: %w", err)
				}
				in.Body = string(body)
			}

			return g.withUser(cmd, func(rt *runtime) error {
				_, out, err := handlers.NewCampaignHandlers(rt.deps).SendCampaignEmail(cmd.Context(), nil, in)
				if len(out.Results) > 0 {
					printSendResults(rt.out, out)
				}
				if err != nil {
					if errors.Is(err, pages.ErrGoogleRequired) {
						return fmt.Errorf("%w: run 'zala login --google'", err)
					}
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().IntSliceVar(&leadIDs, "lead", nil, "Lead IDs to email (default: every lead)")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject (default: the referral template)")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "File holding the HTML body (default: the referral template)")
	cmd.Flags().StringVar(&from, "from", "", "Sender name (default: your name)")
	return cmd
}

func printSendResults(w io.Writer, out handlers.SendCampaignEmailOutput) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LEAD\tTO\tSTATUS\tDETAIL")
	_, _ = fmt.Fprintln(tw, "----\t--\t------\t------")
	for _, r := range out.Results {
		status := color.GreenString(r.Status)
		if r.Status != string(models.StatusSent) {
			status = color.RedString(r.Status)
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.LeadID, orDash(r.ToEmail), status, orDash(r.ErrorDetail))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nSent: %d, failed: %d\n", out.Sent, out.Failed)
}
