// ABOUTME: Campaign MCP tool handlers
// ABOUTME: Implements list/get/rename campaign, contact toggles, lead notes and email sends
package handlers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/pages"
)

type CampaignHandlers struct {
	d pages.Deps

	// the current campaign is shared state
	mu sync.Mutex
}

func NewCampaignHandlers(d pages.Deps) *CampaignHandlers {
	return &CampaignHandlers{d: d}
}

type CampaignSummaryOutput struct {
	CampaignID   int    `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	LeadCount    int    `json:"lead_count"`
}

type CampaignLeadOutput struct {
	LeadOutput
	ContactMethods []string `json:"contact_methods"`
	Notes          string   `json:"notes,omitempty"`
}

type CampaignOutput struct {
	CampaignID   int                  `json:"campaign_id"`
	CampaignName string               `json:"campaign_name"`
	Leads        []CampaignLeadOutput `json:"leads"`
}

func campaignToOutput(camp models.Campaign, leads []models.Lead) CampaignOutput {
	byID := make(map[int]models.Lead, len(leads))
	for _, l := range leads {
		byID[l.LeadID] = l
	}
	out := CampaignOutput{
		CampaignID:   camp.CampaignID,
		CampaignName: camp.CampaignName,
		Leads:        make([]CampaignLeadOutput, 0, len(camp.Leads)),
	}
	for i, cl := range camp.Leads {
		lo := CampaignLeadOutput{
			LeadOutput:     LeadOutput{Index: i, LeadID: cl.LeadID},
			ContactMethods: make([]string, 0, len(cl.ContactMethods)),
		}
		if l, ok := byID[cl.LeadID]; ok {
			lo.LeadOutput = leadToOutput(i, l)
			lo.Notes = l.Notes
		}
		for _, m := range cl.ContactMethods {
			lo.ContactMethods = append(lo.ContactMethods, string(m))
		}
		out.Leads = append(out.Leads, lo)
	}
	return out
}

// open loads campaignID with its leads. A campaign already held by the
// store is refetched so edits made elsewhere show up.
func (h *CampaignHandlers) open(ctx context.Context, campaignID int) (*pages.CampaignController, error) {
	if campaignID <= 0 {
		return nil, fmt.Errorf("campaign_id is required")
	}
	if h.d.App.User() == nil {
		return nil, pages.ErrNotLoggedIn
	}
	cached := h.d.App.Campaign.Get().CampaignID == campaignID

	c := pages.NewCampaignController(h.d, campaignID, nil)
	if err := c.Load(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	if cached {
		if err := c.Refresh(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to load campaign: %w", err)
		}
	}
	return c, nil
}

type ListCampaignsInput struct{}

type ListCampaignsOutput struct {
	Campaigns []CampaignSummaryOutput `json:"campaigns"`
}

func (h *CampaignHandlers) ListCampaigns(ctx context.Context, request *mcp.CallToolRequest, input ListCampaignsInput) (*mcp.CallToolResult, ListCampaignsOutput, error) {
	camps, err := pages.PastCampaigns(ctx, h.d)
	if err != nil {
		return nil, ListCampaignsOutput{}, fmt.Errorf("failed to list campaigns: %w", err)
	}
	out := ListCampaignsOutput{Campaigns: make([]CampaignSummaryOutput, 0, len(camps))}
	for _, c := range camps {
		out.Campaigns = append(out.Campaigns, CampaignSummaryOutput{
			CampaignID:   c.CampaignID,
			CampaignName: c.CampaignName,
			LeadCount:    len(c.Leads),
		})
	}
	return nil, out, nil
}

type GetCampaignInput struct {
	CampaignID int `json:"campaign_id" jsonschema:"Campaign ID (required)"`
}

func (h *CampaignHandlers) GetCampaign(ctx context.Context, request *mcp.CallToolRequest, input GetCampaignInput) (*mcp.CallToolResult, CampaignOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, err := h.open(ctx, input.CampaignID)
	if err != nil {
		return nil, CampaignOutput{}, err
	}
	defer c.Close()
	return nil, campaignToOutput(c.Campaign(), c.Leads()), nil
}

type RenameCampaignInput struct {
	CampaignID int    `json:"campaign_id" jsonschema:"Campaign ID (required)"`
	Title      string `json:"title" jsonschema:"New campaign title (required)"`
}

func (h *CampaignHandlers) RenameCampaign(ctx context.Context, request *mcp.CallToolRequest, input RenameCampaignInput) (*mcp.CallToolResult, CampaignSummaryOutput, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, CampaignSummaryOutput{}, fmt.Errorf("title is required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c, err := h.open(ctx, input.CampaignID)
	if err != nil {
		return nil, CampaignSummaryOutput{}, err
	}
	defer c.Close()

	c.SetTitle(title)
	c.Flush()

	camp := c.Campaign()
	if camp.CampaignName != title {
		return nil, CampaignSummaryOutput{}, fmt.Errorf("failed to rename campaign %d", camp.CampaignID)
	}
	return nil, CampaignSummaryOutput{CampaignID: camp.CampaignID, CampaignName: camp.CampaignName, LeadCount: len(camp.Leads)}, nil
}

type ToggleContactInput struct {
	CampaignID int    `json:"campaign_id" jsonschema:"Campaign ID (required)"`
	LeadID     int    `json:"lead_id" jsonschema:"Lead ID (required)"`
	Method     string `json:"method" jsonschema:"Contact method to flip: phone or sms"`
}

type ToggleContactOutput struct {
	LeadID         int      `json:"lead_id"`
	ContactMethods []string `json:"contact_methods"`
}

func (h *CampaignHandlers) ToggleContact(ctx context.Context, request *mcp.CallToolRequest, input ToggleContactInput) (*mcp.CallToolResult, ToggleContactOutput, error) {
	method, ok := models.ParseContactMethod(input.Method)
	if !ok {
		return nil, ToggleContactOutput{}, fmt.Errorf("invalid method: %s (valid: phone, sms)", input.Method)
	}
	if method == models.ContactEmail {
		return nil, ToggleContactOutput{}, fmt.Errorf("email is marked when a message is sent; use send_campaign_email")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c, err := h.open(ctx, input.CampaignID)
	if err != nil {
		return nil, ToggleContactOutput{}, err
	}
	defer c.Close()

	if _, err := c.ToggleContact(ctx, input.LeadID, method); err != nil {
		return nil, ToggleContactOutput{}, fmt.Errorf("failed to update contact methods: %w", err)
	}

	cl, _ := c.Campaign().FindLead(input.LeadID)
	out := ToggleContactOutput{LeadID: input.LeadID, ContactMethods: []string{}}
	for _, m := range cl.ContactMethods {
		out.ContactMethods = append(out.ContactMethods, string(m))
	}
	return nil, out, nil
}

type UpdateLeadNotesInput struct {
	CampaignID int    `json:"campaign_id" jsonschema:"Campaign ID (required)"`
	LeadID     int    `json:"lead_id" jsonschema:"Lead ID (required)"`
	Notes      string `json:"notes" jsonschema:"Replacement notes for the lead"`
}

func (h *CampaignHandlers) UpdateLeadNotes(ctx context.Context, request *mcp.CallToolRequest, input UpdateLeadNotesInput) (*mcp.CallToolResult, CampaignLeadOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, err := h.open(ctx, input.CampaignID)
	if err != nil {
		return nil, CampaignLeadOutput{}, err
	}
	defer c.Close()

	if _, ok := c.Campaign().FindLead(input.LeadID); !ok {
		return nil, CampaignLeadOutput{}, fmt.Errorf("lead %d is not in campaign %d", input.LeadID, input.CampaignID)
	}
	c.View(input.LeadID)
	c.SetNotes(input.Notes)
	c.Flush()

	lead, ok := c.ViewingLead()
	if !ok || lead.Notes != input.Notes {
		return nil, CampaignLeadOutput{}, fmt.Errorf("failed to save notes for lead %d", input.LeadID)
	}
	out := campaignToOutput(c.Campaign(), []models.Lead{lead})
	for _, l := range out.Leads {
		if l.LeadID == input.LeadID {
			return nil, l, nil
		}
	}
	return nil, CampaignLeadOutput{LeadOutput: leadToOutput(0, lead), Notes: lead.Notes}, nil
}

type SendCampaignEmailInput struct {
	CampaignID int    `json:"campaign_id" jsonschema:"Campaign ID (required)"`
	LeadIDs    []int  `json:"lead_ids,omitempty" jsonschema:"Leads to email (default every lead in the campaign)"`
	Subject    string `json:"subject,omitempty" jsonschema:"Subject (default the referral template)"`
	Body       string `json:"body,omitempty" jsonschema:"HTML body (default the referral template)"`
	FromName   string `json:"from_name,omitempty" jsonschema:"Sender display name (default the user's name)"`
}

type SendResultOutput struct {
	LeadID      int    `json:"lead_id"`
	ToEmail     string `json:"to_email,omitempty"`
	Status      string `json:"status"`
	ErrorDetail string `json:"error_detail,omitempty"`
}

type SendCampaignEmailOutput struct {
	Sent    int                `json:"sent"`
	Failed  int                `json:"failed"`
	Results []SendResultOutput `json:"results"`
}

func (h *CampaignHandlers) SendCampaignEmail(ctx context.Context, request *mcp.CallToolRequest, input SendCampaignEmailInput) (*mcp.CallToolResult, SendCampaignEmailOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, err := h.open(ctx, input.CampaignID)
	if err != nil {
		return nil, SendCampaignEmailOutput{}, err
	}
	defer c.Close()

	ids := input.LeadIDs
	if len(ids) == 0 {
		ids = c.Campaign().LeadIDs()
	}
	composer, err := c.Composer(ids...)
	if err != nil {
		return nil, SendCampaignEmailOutput{}, err
	}
	if input.Subject != "" {
		composer.Subject = input.Subject
	}
	if input.Body != "" {
		composer.Body = input.Body
	}
	if input.FromName != "" {
		composer.From = input.FromName
	}

	resp, err := c.SendEmail(ctx, composer)
	out := SendCampaignEmailOutput{Results: make([]SendResultOutput, 0, len(resp.Results))}
	for _, r := range resp.Results {
		if r.Status == models.StatusSent {
			out.Sent++
		} else {
			out.Failed++
		}
		out.Results = append(out.Results, SendResultOutput{
			LeadID:      r.LeadID,
			ToEmail:     r.ToEmail,
			Status:      string(r.Status),
			ErrorDetail: r.ErrorDetail,
		})
	}
	if err != nil {
		return nil, out, fmt.Errorf("failed to send campaign email: %w", err)
	}
	return nil, out, nil
}
