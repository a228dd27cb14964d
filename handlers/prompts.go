// ABOUTME: MCP prompt handlers for reusable outreach workflow templates
// ABOUTME: Provides campaign follow-up and board review prompts
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/zala/pages"
	"github.com/harperreed/zala/viz"
)

type PromptHandlers struct {
	d pages.Deps
}

func NewPromptHandlers(d pages.Deps) *PromptHandlers {
	return &PromptHandlers{d: d}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "campaign-followup":
		return h.getCampaignFollowupPrompt(ctx, request.Params.Arguments)
	case "board-review":
		return h.getBoardReviewPrompt(ctx, request.Params.Arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func intArg(args map[string]string, name string) (int, error) {
	raw, ok := args[name]
	if !ok || raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (h *PromptHandlers) getCampaignFollowupPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	id, err := intArg(args, "campaign_id")
	if err != nil {
		return nil, err
	}
	camp, err := h.d.API.GetCampaign(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaign: %w", err)
	}
	leads, err := h.d.API.GetLeads(ctx, camp.LeadIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaign leads: %w", err)
	}

	var text strings.Builder
	text.WriteString("Please plan the next round of outreach for this campaign:\n\n")
	text.WriteString(viz.RenderCampaign(viz.GenerateCampaignStats(camp)))

	out := campaignToOutput(camp, leads)
	text.WriteString("\nLEADS\n")
	for _, l := range out.Leads {
		name := l.Business
		if name == "" {
			name = l.Name
		}
		if name == "" {
			name = fmt.Sprintf("Lead %d", l.LeadID)
		}
		reached := "not contacted"
		if len(l.ContactMethods) > 0 {
			reached = "reached by " + strings.Join(l.ContactMethods, ", ")
		}
		fmt.Fprintf(&text, "- %s (lead %d): %s", name, l.LeadID, reached)
		if l.Email == "" {
			text.WriteString("; no email on file")
		}
		if l.Notes != "" {
			fmt.Fprintf(&text, "; notes: %s", l.Notes)
		}
		text.WriteString("\n")
	}

	text.WriteString("\nPlease provide:")
	text.WriteString("\n1. Which leads to contact next and on which channel")
	text.WriteString("\n2. A short email subject and body for the leads not yet emailed")
	text.WriteString("\n3. Anything in the notes that needs a follow-up")

	return userPrompt(fmt.Sprintf("Follow-up plan for campaign: %s", camp.CampaignName), text.String()), nil
}

func (h *PromptHandlers) getBoardReviewPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	id, err := intArg(args, "board_id")
	if err != nil {
		return nil, err
	}
	board, err := h.d.API.GetBoard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch board: %w", err)
	}

	var text strings.Builder
	text.WriteString("Please review this kanban board:\n\n")
	text.WriteString(viz.RenderBoard(viz.GenerateBoardStats(board)))
	text.WriteString("\nCARDS\n")
	for _, s := range BoardToOutput(board).Steps {
		for _, c := range s.Cards {
			fmt.Fprintf(&text, "- [%s] %s (%s %d)\n", s.Name, c.Title, c.Kind, c.ID)
		}
	}
	text.WriteString("\nPlease suggest which cards should move forward and which columns are stalled.")

	return userPrompt(fmt.Sprintf("Review of board: %s", board.BoardName), text.String()), nil
}
