// ABOUTME: Campaign email draft CRUD, batch send and single test send
// ABOUTME: Drafts may target one lead; sends fan out to a list of leads server side
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/badoux/checkmail"

	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/normalize"
)

type DraftInput struct {
	CampaignID int
	LeadID     *int
	Subject    string
	Body       string
	FromName   string
}

type draftRequest struct {
	CampaignID     int     `json:"campaign_id"`
	LeadID         *int    `json:"lead_id,omitempty"`
	MessageSubject string  `json:"message_subject"`
	MessageBody    string  `json:"message_body"`
	FromName       *string `json:"from_name,omitempty"`
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (c *Client) CreateCampaignEmailDraft(ctx context.Context, in DraftInput) (models.CampaignEmail, error) {
	if in.CampaignID == models.NoCampaignID {
		return models.CampaignEmail{}, ErrNoCampaign
	}
	w, err := call[models.WireCampaignEmail](ctx, c, TagNone, http.MethodPost, "/api/campaign-emails/", nil, draftRequest{
		CampaignID:     in.CampaignID,
		LeadID:         in.LeadID,
		MessageSubject: in.Subject,
		MessageBody:    in.Body,
		FromName:       optionalString(in.FromName),
	})
	if err != nil {
		return models.CampaignEmail{}, err
	}
	return normalize.CampaignEmail(w)
}

// EmailQuery filters the campaign email listing.
type EmailQuery struct {
	CampaignID *int
	ListParams
}

func (c *Client) GetCampaignEmails(ctx context.Context, q EmailQuery) ([]models.CampaignEmail, error) {
	values := q.values()
	if q.CampaignID != nil {
		values.Set("campaign_id", strconv.Itoa(*q.CampaignID))
	}

	raw, err := c.Fetch(ctx, TagNone, http.MethodGet, "/api/campaign-emails/", values, nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []models.CampaignEmail{}, nil
	}
	ws, err := decodeList[models.WireCampaignEmail](raw, "campaign emails")
	if err != nil {
		return nil, err
	}

	emails := make([]models.CampaignEmail, 0, len(ws))
	for i := range ws {
		e, err := normalize.CampaignEmail(&ws[i])
		if err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, nil
}

func (c *Client) GetCampaignEmail(ctx context.Context, messageID int) (models.CampaignEmail, error) {
	w, err := call[models.WireCampaignEmail](ctx, c, TagNone, http.MethodGet, fmt.Sprintf("/api/campaign-emails/%d", messageID), nil, nil)
	if err != nil {
		return models.CampaignEmail{}, err
	}
	return normalize.CampaignEmail(w)
}

// DraftUpdate changes only the fields that are set.
type DraftUpdate struct {
	Subject  *string
	Body     *string
	FromName *string
	LeadID   *int
}

type draftUpdateRequest struct {
	LeadID         *int    `json:"lead_id,omitempty"`
	MessageSubject *string `json:"message_subject,omitempty"`
	MessageBody    *string `json:"message_body,omitempty"`
	FromName       *string `json:"from_name,omitempty"`
}

func (c *Client) UpdateCampaignEmailDraft(ctx context.Context, messageID int, up DraftUpdate) (models.CampaignEmail, error) {
	w, err := call[models.WireCampaignEmail](ctx, c, TagNone, http.MethodPut, fmt.Sprintf("/api/campaign-emails/%d", messageID), nil, draftUpdateRequest{
		LeadID:         up.LeadID,
		MessageSubject: up.Subject,
		MessageBody:    up.Body,
		FromName:       up.FromName,
	})
	if err != nil {
		return models.CampaignEmail{}, err
	}
	return normalize.CampaignEmail(w)
}

func (c *Client) DeleteCampaignEmailDraft(ctx context.Context, messageID int) error {
	return c.exec(ctx, http.MethodDelete, fmt.Sprintf("/api/campaign-emails/%d", messageID), nil)
}

type SendInput struct {
	CampaignID int
	LeadIDs    []int
	Subject    string
	Body       string
	FromName   string
}

type sendRequest struct {
	CampaignID     int     `json:"campaign_id"`
	LeadID         []int   `json:"lead_id"`
	MessageSubject string  `json:"message_subject"`
	MessageBody    string  `json:"message_body"`
	FromName       *string `json:"from_name,omitempty"`
}

// SendCampaignEmail sends one template to each lead. Per-lead outcomes are
// in the response; only a wholesale failure is an error.
func (c *Client) SendCampaignEmail(ctx context.Context, in SendInput) (models.CampaignEmailSendResponse, error) {
	if in.CampaignID == models.NoCampaignID {
		return models.CampaignEmailSendResponse{}, ErrNoCampaign
	}
	if len(in.LeadIDs) == 0 {
		return models.CampaignEmailSendResponse{}, fmt.Errorf("at least one lead is required")
	}
	w, err := call[models.WireSendResponse](ctx, c, TagNone, http.MethodPost, "/api/campaign-emails/send", nil, sendRequest{
		CampaignID:     in.CampaignID,
		LeadID:         in.LeadIDs,
		MessageSubject: in.Subject,
		MessageBody:    in.Body,
		FromName:       optionalString(in.FromName),
	})
	if err != nil {
		return models.CampaignEmailSendResponse{}, err
	}
	return normalize.CampaignEmailSendResponse(w)
}

type TestEmail struct {
	UserID   int
	To       string
	Subject  string
	HTML     string
	FromName string
}

type testEmailRequest struct {
	UserID   int     `json:"user_id"`
	To       string  `json:"to"`
	Subject  string  `json:"subject"`
	HTML     string  `json:"html"`
	FromName *string `json:"from_name,omitempty"`
}

// GmailMessage identifies a message sent through the user's Gmail account.
type GmailMessage struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
}

// SendTestEmail sends a single message through the user's connected Gmail.
func (c *Client) SendTestEmail(ctx context.Context, in TestEmail) (GmailMessage, error) {
	to := strings.TrimSpace(in.To)
	if err := checkmail.ValidateFormat(to); err != nil {
		return GmailMessage{}, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	if strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.HTML) == "" {
		return GmailMessage{}, fmt.Errorf("subject and body are required")
	}

	w, err := call[GmailMessage](ctx, c, TagNone, http.MethodPost, "/api/google-mail/send", nil, testEmailRequest{
		UserID:   in.UserID,
		To:       to,
		Subject:  in.Subject,
		HTML:     in.HTML,
		FromName: optionalString(in.FromName),
	})
	if err != nil {
		return GmailMessage{}, err
	}
	return *w, nil
}
