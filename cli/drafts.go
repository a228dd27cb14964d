// ABOUTME: Campaign email draft CLI commands
// ABOUTME: List, create, update and delete drafts kept on the backend
package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/handlers"
)

func newDraftsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "drafts",
		Aliases: []string{"draft"},
		Short:   "Manage campaign email drafts",
	}
	cmd.AddCommand(
		newDraftsListCmd(g),
		newDraftsCreateCmd(g),
		newDraftsUpdateCmd(g),
		newDraftsDeleteCmd(g),
	)
	return cmd
}

func newDraftsListCmd(g *globalFlags) *cobra.Command {
	var in handlers.ListEmailDraftsInput
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List campaign emails and drafts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withUser(cmd, func(rt *runtime) error {
				_, out, err := handlers.NewDraftHandlers(rt.deps).ListEmailDrafts(cmd.Context(), nil, in)
				if err != nil {
					return err
				}
				if len(out.Emails) == 0 {
					fmt.Fprintln(rt.out, "No emails found")
					return nil
				}

				tw := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tCAMPAIGN\tLEAD\tSUBJECT\tTO\tSTATUS\tWHEN")
				_, _ = fmt.Fprintln(tw, "--\t--------\t----\t-------\t--\t------\t----")
				for _, e := range out.Emails {
					lead := "-"
					if e.LeadID != nil {
						lead = fmt.Sprintf("%d", *e.LeadID)
					}
					_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
						e.MessageID, e.CampaignID, lead, orDash(e.Subject), orDash(e.ToEmail), orDash(e.Status), orDash(e.Timestamp))
				}
				_ = tw.Flush()
				fmt.Fprintf(rt.out, "\nTotal: %d email(s)\n", len(out.Emails))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&in.CampaignID, "campaign", 0, "Only emails for this campaign")
	cmd.Flags().IntVar(&in.Limit, "limit", 50, "Maximum results")
	cmd.Flags().IntVar(&in.Skip, "skip", 0, "Results to skip")
	return cmd
}

func newDraftsCreateCmd(g *globalFlags) *cobra.Command {
	var (
		in       handlers.CreateEmailDraftInput
		bodyFile string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Save an email draft for a campaign",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bodyFile != "" {
				body, err := os.ReadFile(bodyFile)
				if err != nil {
					return fmt.Errorf("failed to read body: %w", err)
				}
				in.Body = string(body)
			}
			return g.withUser(cmd, func(rt *runtime) error {
				_, out, err := handlers.NewDraftHandlers(rt.deps).CreateEmailDraft(cmd.Context(), nil, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(rt.out, "✓ Draft created: %s (ID: %d)\n", out.Subject, out.MessageID)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&in.CampaignID, "campaign", 0, "Campaign ID (required)")
	cmd.Flags().IntVar(&in.LeadID, "lead", 0, "Lead the draft is addressed to")
	cmd.Flags().StringVar(&in.Subject, "subject", "", "Subject (required)")
	cmd.Flags().StringVar(&in.Body, "body", "", "HTML body")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "File holding the HTML body")
	cmd.Flags().StringVar(&in.FromName, "from", "", "Sender name")
	return cmd
}

func newDraftsUpdateCmd(g *globalFlags) *cobra.Command {
	var (
		subject, body, from string
		leadID              int
	)
	cmd := &cobra.Command{
		Use:   "update <message-id>",
		Short: "Change a draft's subject, body, sender or lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("message", args[0])
			if err != nil {
				return err
			}

			var up api.DraftUpdate
			flags := cmd.Flags()
			if flags.Changed("subject") {
				up.Subject = &subject
			}
			if flags.Changed("body") {
				up.Body = &body
			}
			if flags.Changed("from") {
				up.FromName = &from
			}
			if flags.Changed("lead") {
				up.LeadID = &leadID
			}
			if up == (api.DraftUpdate{}) {
				return fmt.Errorf("nothing to update: pass --subject, --body, --from or --lead")
			}

			return g.withUser(cmd, func(rt *runtime) error {
				draft, err := rt.deps.API.UpdateCampaignEmailDraft(cmd.Context(), id, up)
				if err != nil {
					return fmt.Errorf("failed to update draft: %w", err)
				}
				fmt.Fprintf(rt.out, "✓ Draft updated: %s (ID: %d)\n", draft.Subject, draft.MessageID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "New subject")
	cmd.Flags().StringVar(&body, "body", "", "New HTML body")
	cmd.Flags().StringVar(&from, "from", "", "New sender name")
	cmd.Flags().IntVar(&leadID, "lead", 0, "New lead ID")
	return cmd
}

func newDraftsDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <message-id>",
		Short: "Delete a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("message", args[0])
			if err != nil {
				return err
			}
			return g.withUser(cmd, func(rt *runtime) error {
				_, out, err := handlers.NewDraftHandlers(rt.deps).DeleteEmailDraft(cmd.Context(), nil, handlers.DeleteEmailDraftInput{MessageID: id})
				if err != nil {
					return err
				}
				fmt.Fprintf(rt.out, "✓ Draft %d deleted\n", out.Deleted)
				return nil
			})
		},
	}
}
