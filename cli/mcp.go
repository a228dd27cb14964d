// ABOUTME: MCP server subcommand
// ABOUTME: Serves the lead, campaign, draft, board and graph tools plus resources and prompts on stdio
package cli

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/zala/handlers"
	"github.com/harperreed/zala/pages"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Starts an MCP server for Claude Desktop and other MCP clients.
Log in with 'zala login' first; the server uses the saved session.
Logs go to the zala log file since stdout carries the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := g.open(cmd, openOptions{logToFile: true, notifier: logNotifier{}})
			if err != nil {
				return err
			}
			defer rt.Close()

			if _, err := rt.login(cmd.Context()); err != nil {
				return err
			}
			rt.logger.Info("starting MCP server")
			return newMCPServer(rt.deps, rt).Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}

// logNotifier drops controller toasts; tool results carry the errors.
type logNotifier struct{}

func (logNotifier) Success(string) {}
func (logNotifier) Error(string)   {}

func newMCPServer(d pages.Deps, rt *runtime) *mcp.Server {
	leadHandlers := handlers.NewLeadHandlers(d, rt.store)
	campaignHandlers := handlers.NewCampaignHandlers(d)
	draftHandlers := handlers.NewDraftHandlers(d)
	boardHandlers := handlers.NewBoardHandlers(d)
	vizHandlers := handlers.NewVizHandlers(d)
	resourceHandlers := handlers.NewResourceHandlers(d, rt.store)
	promptHandlers := handlers.NewPromptHandlers(d)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "zala",
		Version: "0.1.0",
	}, nil)

	// Leads and campaigns
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_leads",
		Description: "Search for real-estate leads around a location across the Zala database, Google Places, RapidAPI and GPT",
	}, leadHandlers.SearchLeads)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "start_campaign",
		Description: "Save picked search_leads results as leads and create a campaign containing them",
	}, leadHandlers.StartCampaign)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_campaigns",
		Description: "List the logged-in user's campaigns",
	}, campaignHandlers.ListCampaigns)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_campaign",
		Description: "Get a campaign with its leads, contact details, notes and the channels already used",
	}, campaignHandlers.GetCampaign)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "rename_campaign",
		Description: "Rename a campaign",
	}, campaignHandlers.RenameCampaign)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "toggle_contact",
		Description: "Mark or unmark a campaign lead as reached by phone or sms",
	}, campaignHandlers.ToggleContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_lead_notes",
		Description: "Replace the notes on a campaign lead",
	}, campaignHandlers.UpdateLeadNotes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "send_campaign_email",
		Description: "Email campaign leads from the user's connected Google account and mark the mailed leads",
	}, campaignHandlers.SendCampaignEmail)

	// Drafts
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_email_drafts",
		Description: "List campaign emails and drafts, optionally for one campaign",
	}, draftHandlers.ListEmailDrafts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_email_draft",
		Description: "Save an email draft for a campaign",
	}, draftHandlers.CreateEmailDraft)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_email_draft",
		Description: "Delete an email draft",
	}, draftHandlers.DeleteEmailDraft)

	// Boards
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_boards",
		Description: "List kanban boards with their columns and cards",
	}, boardHandlers.ListBoards)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_board",
		Description: "Create a kanban board with up to five columns",
	}, boardHandlers.CreateBoard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_board_step",
		Description: "Add a column after a board's last column",
	}, boardHandlers.AddBoardStep)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_board_lead",
		Description: "Create a lead card in a column that does not hold properties",
	}, boardHandlers.AddBoardLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_board_property",
		Description: "Create a property card with its address in a column that does not hold leads",
	}, boardHandlers.AddBoardProperty)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_board_lead",
		Description: "Move a lead card between columns",
	}, boardHandlers.MoveBoardLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_board_property",
		Description: "Move a property card between columns",
	}, boardHandlers.MoveBoardProperty)

	// Visualization
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate Graphviz DOT for a campaign or a board",
	}, vizHandlers.GenerateGraph)

	// Resources
	for _, r := range []*mcp.Resource{
		{URI: "zala://campaigns", Name: "campaigns", Description: "The user's campaigns", MIMEType: "application/json"},
		{URI: "zala://boards", Name: "boards", Description: "The user's kanban boards", MIMEType: "application/json"},
		{URI: "zala://searches", Name: "searches", Description: "Recent lead searches from this device", MIMEType: "application/json"},
	} {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "zala://campaigns/{id}",
		Name:        "campaign",
		Description: "One campaign with its leads",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	// Prompts
	server.AddPrompt(&mcp.Prompt{
		Name:        "campaign-followup",
		Description: "Plan follow-ups for a campaign's leads",
		Arguments:   []*mcp.PromptArgument{{Name: "campaign_id", Description: "Campaign ID", Required: true}},
	}, promptHandlers.GetPrompt)
	server.AddPrompt(&mcp.Prompt{
		Name:        "board-review",
		Description: "Review a kanban board and suggest next moves",
		Arguments:   []*mcp.PromptArgument{{Name: "board_id", Description: "Board ID", Required: true}},
	}, promptHandlers.GetPrompt)

	d.Logger.Debug("mcp server ready", zap.String("transport", "stdio"))
	return server
}
