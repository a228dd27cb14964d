// ABOUTME: Campaign and campaign-lead endpoints
// ABOUTME: Mutations refuse the sentinel campaign before touching the network
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/normalize"
)

type campaignRequest struct {
	CampaignName string `json:"campaign_name"`
	UserID       int    `json:"user_id"`
	LeadIDs      []int  `json:"lead_ids"`
}

// CampaignInput is the full writable shape of a campaign.
type CampaignInput struct {
	Name    string
	UserID  int
	LeadIDs []int
}

func (in CampaignInput) request() campaignRequest {
	ids := in.LeadIDs
	if ids == nil {
		ids = []int{}
	}
	return campaignRequest{CampaignName: in.Name, UserID: in.UserID, LeadIDs: ids}
}

func (c *Client) CreateCampaign(ctx context.Context, in CampaignInput) (models.Campaign, error) {
	w, err := call[models.WireCampaign](ctx, c, TagNone, http.MethodPost, "/api/campaigns/", nil, in.request())
	if err != nil {
		return models.Campaign{}, err
	}
	return normalize.Campaign(w)
}

func (c *Client) GetCampaign(ctx context.Context, campaignID int) (models.Campaign, error) {
	if campaignID == models.NoCampaignID {
		return models.Campaign{}, ErrNoCampaign
	}
	w, err := call[models.WireCampaign](ctx, c, TagNone, http.MethodGet, fmt.Sprintf("/api/campaigns/%d", campaignID), nil, nil)
	if err != nil {
		return models.Campaign{}, err
	}
	return normalize.Campaign(w)
}

// ListParams pages a collection. Zero values are omitted from the query.
type ListParams struct {
	Skip  int
	Limit int
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Skip > 0 {
		q.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

func (c *Client) GetCampaigns(ctx context.Context, params ListParams) ([]models.Campaign, error) {
	raw, err := c.Fetch(ctx, TagNone, http.MethodGet, "/api/campaigns", params.values(), nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []models.Campaign{}, nil
	}
	ws, err := decodeList[models.WireCampaign](raw, "campaigns")
	if err != nil {
		return nil, err
	}

	campaigns := make([]models.Campaign, 0, len(ws))
	for i := range ws {
		camp, err := normalize.Campaign(&ws[i])
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, camp)
	}
	return campaigns, nil
}

// UpdateCampaign replaces name and lead list. It runs under TagUpdateCampaign.
func (c *Client) UpdateCampaign(ctx context.Context, campaignID int, in CampaignInput) (models.Campaign, error) {
	if campaignID == models.NoCampaignID {
		return models.Campaign{}, ErrNoCampaign
	}
	w, err := call[models.WireCampaign](ctx, c, TagUpdateCampaign, http.MethodPut, fmt.Sprintf("/api/campaigns/%d", campaignID), nil, in.request())
	if err != nil {
		return models.Campaign{}, err
	}
	return normalize.Campaign(w)
}

type campaignLeadRequest struct {
	PhoneContacted bool `json:"phone_contacted"`
	SMSContacted   bool `json:"sms_contacted"`
	EmailContacted bool `json:"email_contacted"`
}

// UpdateCampaignLead writes the full tri-boolean contact state derived from
// methods.
func (c *Client) UpdateCampaignLead(ctx context.Context, campaignID, leadID int, methods []models.ContactMethod) (models.CampaignLead, error) {
	if campaignID == models.NoCampaignID {
		return models.CampaignLead{}, ErrNoCampaign
	}

	body := campaignLeadRequest{}
	for _, m := range methods {
		switch m {
		case models.ContactPhone:
			body.PhoneContacted = true
		case models.ContactSMS:
			body.SMSContacted = true
		case models.ContactEmail:
			body.EmailContacted = true
		}
	}

	w, err := call[models.WireCampaignLead](ctx, c, TagNone, http.MethodPut,
		fmt.Sprintf("/api/campaign-leads/%d/leads/%d", campaignID, leadID), nil, body)
	if err != nil {
		return models.CampaignLead{}, err
	}
	if w.CampaignID == 0 && w.Campaign == nil {
		w.CampaignID = campaignID
	}
	if w.LeadID == 0 && w.Lead == nil {
		w.LeadID = leadID
	}
	return normalize.CampaignLead(w)
}
