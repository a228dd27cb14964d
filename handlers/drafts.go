// ABOUTME: Campaign email draft MCP tool handlers
// ABOUTME: Implements list_email_drafts, create_email_draft and delete_email_draft
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/pages"
)

type DraftHandlers struct {
	d pages.Deps
}

func NewDraftHandlers(d pages.Deps) *DraftHandlers {
	return &DraftHandlers{d: d}
}

type DraftOutput struct {
	MessageID  int    `json:"message_id"`
	CampaignID int    `json:"campaign_id"`
	LeadID     *int   `json:"lead_id,omitempty"`
	Subject    string `json:"subject"`
	FromName   string `json:"from_name,omitempty"`
	ToEmail    string `json:"to_email,omitempty"`
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp,omitempty"`
}

func draftToOutput(e models.CampaignEmail) DraftOutput {
	out := DraftOutput{
		MessageID:  e.MessageID,
		CampaignID: e.CampaignID,
		LeadID:     e.LeadID,
		Subject:    e.Subject,
		FromName:   e.FromName,
		ToEmail:    e.ToEmail,
		Status:     string(e.SendStatus),
	}
	if !e.Timestamp.IsZero() {
		out.Timestamp = e.Timestamp.Format(time.RFC3339)
	}
	return out
}

type ListEmailDraftsInput struct {
	CampaignID int `json:"campaign_id,omitempty" jsonschema:"Only emails for this campaign"`
	Limit      int `json:"limit,omitempty" jsonschema:"Maximum results"`
	Skip       int `json:"skip,omitempty" jsonschema:"Results to skip"`
}

type ListEmailDraftsOutput struct {
	Emails []DraftOutput `json:"emails"`
}

func (h *DraftHandlers) ListEmailDrafts(ctx context.Context, request *mcp.CallToolRequest, input ListEmailDraftsInput) (*mcp.CallToolResult, ListEmailDraftsOutput, error) {
	q := api.EmailQuery{ListParams: api.ListParams{Limit: input.Limit, Skip: input.Skip}}
	if input.CampaignID > 0 {
		q.CampaignID = &input.CampaignID
	}
	emails, err := h.d.API.GetCampaignEmails(ctx, q)
	if err != nil {
		return nil, ListEmailDraftsOutput{}, fmt.Errorf("failed to list emails: %w", err)
	}
	out := ListEmailDraftsOutput{Emails: make([]DraftOutput, 0, len(emails))}
	for _, e := range emails {
		out.Emails = append(out.Emails, draftToOutput(e))
	}
	return nil, out, nil
}

type CreateEmailDraftInput struct {
	CampaignID int    `json:"campaign_id" jsonschema:"Campaign ID (required)"`
	LeadID     int    `json:"lead_id,omitempty" jsonschema:"Lead the draft is addressed to"`
	Subject    string `json:"subject" jsonschema:"Subject (required)"`
	Body       string `json:"body" jsonschema:"HTML body (required)"`
	FromName   string `json:"from_name,omitempty" jsonschema:"Sender display name"`
}

func (h *DraftHandlers) CreateEmailDraft(ctx context.Context, request *mcp.CallToolRequest, input CreateEmailDraftInput) (*mcp.CallToolResult, DraftOutput, error) {
	if input.CampaignID <= 0 {
		return nil, DraftOutput{}, fmt.Errorf("campaign_id is required")
	}
	if strings.TrimSpace(input.Subject) == "" || strings.TrimSpace(input.Body) == "" {
		return nil, DraftOutput{}, fmt.Errorf("subject and body are required")
	}

	in := api.DraftInput{
		CampaignID: input.CampaignID,
		Subject:    input.Subject,
		Body:       input.Body,
		FromName:   input.FromName,
	}
	if input.LeadID > 0 {
		in.LeadID = &input.LeadID
	}
	draft, err := h.d.API.CreateCampaignEmailDraft(ctx, in)
	if err != nil {
		return nil, DraftOutput{}, fmt.Errorf("failed to create draft: %w", err)
	}
	return nil, draftToOutput(draft), nil
}

type DeleteEmailDraftInput struct {
	MessageID int `json:"message_id" jsonschema:"Draft message ID (required)"`
}

type DeleteEmailDraftOutput struct {
	Deleted int `json:"deleted"`
}

func (h *DraftHandlers) DeleteEmailDraft(ctx context.Context, request *mcp.CallToolRequest, input DeleteEmailDraftInput) (*mcp.CallToolResult, DeleteEmailDraftOutput, error) {
	if input.MessageID <= 0 {
		return nil, DeleteEmailDraftOutput{}, fmt.Errorf("message_id is required")
	}
	if err := h.d.API.DeleteCampaignEmailDraft(ctx, input.MessageID); err != nil {
		return nil, DeleteEmailDraftOutput{}, fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil, DeleteEmailDraftOutput{Deleted: input.MessageID}, nil
}
