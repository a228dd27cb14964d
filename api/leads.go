// ABOUTME: Lead, contact and address endpoints plus multi-source lead search
// ABOUTME: Search substitutes the default source list when none are selected
package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/normalize"
)

// SearchResult holds normalized search leads plus the per-source
// diagnostics the backend returns.
type SearchResult struct {
	NearbyProperties   []models.SourceLead `json:"nearbyProperties"`
	NormalizedLocation map[string]any      `json:"normalizedLocation,omitempty"`
	SourceErrors       map[string]string   `json:"sourceErrors,omitempty"`
	// Rejected counts leads dropped because they failed normalization.
	Rejected int `json:"rejected"`
}

type searchRequest struct {
	LocationText string              `json:"location_text"`
	Sources      []models.LeadSource `json:"sources"`
}

// ResolveSources returns sources, or the default list when sources is empty.
func ResolveSources(sources []models.LeadSource) []models.LeadSource {
	if len(sources) > 0 {
		return sources
	}
	out := make([]models.LeadSource, len(models.DefaultLeadSources))
	copy(out, models.DefaultLeadSources)
	return out
}

func (c *Client) SearchLeads(ctx context.Context, query string, sources []models.LeadSource) (SearchResult, error) {
	w, err := call[models.WireSearchResponse](ctx, c, TagSearchLeads, http.MethodPost, "/api/searchLeads", nil, searchRequest{
		LocationText: query,
		Sources:      ResolveSources(sources),
	})
	if err != nil {
		return SearchResult{}, err
	}

	result := SearchResult{
		NearbyProperties:   make([]models.SourceLead, 0, len(w.AggregatedLeads)),
		NormalizedLocation: w.NormalizedLocation,
		SourceErrors:       w.Errors,
	}
	for i := range w.AggregatedLeads {
		sl, err := normalize.SourceLead(&w.AggregatedLeads[i])
		if err != nil {
			c.logger.Warn("dropping malformed search lead",
				zap.Int("index", i),
				zap.Error(err))
			result.Rejected++
			continue
		}
		result.NearbyProperties = append(result.NearbyProperties, sl)
	}
	return result, nil
}

// LeadInput carries the editable lead columns.
type LeadInput struct {
	PersonType string `json:"person_type"`
	Business   string `json:"business"`
	Website    string `json:"website"`
	LicenseNum string `json:"license_num"`
	Notes      string `json:"notes"`
}

// DefaultPersonType is sent for leads that never had a person type, such
// as unsaved search hits.
const DefaultPersonType = "person"

// LeadInputFrom copies the editable columns of a view-model lead.
func LeadInputFrom(l models.Lead) LeadInput {
	personType := l.PersonType
	if personType == "" {
		personType = DefaultPersonType
	}
	return LeadInput{
		PersonType: personType,
		Business:   l.Buisness,
		Website:    l.Website,
		LicenseNum: l.LicenseNum,
		Notes:      l.Notes,
	}
}

// CreateLead inserts the lead row only. Use CreateLeadWithDetails to also
// create and link its contact and address.
func (c *Client) CreateLead(ctx context.Context, in LeadInput) (models.LeadCard, error) {
	w, err := call[models.WireLeadCard](ctx, c, TagNone, http.MethodPost, "/api/leads", nil, in)
	if err != nil {
		return models.LeadCard{}, err
	}
	if w.LeadID == 0 {
		return models.LeadCard{}, &normalize.ValidationError{Entity: "lead", Fields: []string{"lead_id is required"}}
	}
	return normalize.LeadCard(w), nil
}

func (c *Client) GetLead(ctx context.Context, leadID int) (models.Lead, error) {
	w, err := call[models.WireLead](ctx, c, TagGetLeads, http.MethodGet, fmt.Sprintf("/api/leads/%d", leadID), nil, nil)
	if err != nil {
		return models.Lead{}, err
	}
	return normalize.Lead(w)
}

// GetLeads fetches leads by id, preserving the order of ids.
func (c *Client) GetLeads(ctx context.Context, ids []int) ([]models.Lead, error) {
	leads := make([]models.Lead, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, id := range ids {
		g.Go(func() error {
			lead, err := c.GetLead(gctx, id)
			if err != nil {
				return fmt.Errorf("lead %d: %w", id, err)
			}
			leads[i] = lead
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return leads, nil
}

// UpdateLead replaces the lead's editable columns. It runs under TagUpdateLead.
func (c *Client) UpdateLead(ctx context.Context, leadID int, in LeadInput) (models.Lead, error) {
	w, err := call[models.WireLead](ctx, c, TagUpdateLead, http.MethodPut, fmt.Sprintf("/api/leads/%d", leadID), nil, in)
	if err != nil {
		return models.Lead{}, err
	}
	return normalize.Lead(w)
}

// UpdateLeadCard is UpdateLead for callers that only hold a board card,
// whose nested contact and address may be absent.
func (c *Client) UpdateLeadCard(ctx context.Context, leadID int, in LeadInput) (models.LeadCard, error) {
	w, err := call[models.WireLeadCard](ctx, c, TagNone, http.MethodPut, fmt.Sprintf("/api/leads/%d", leadID), nil, in)
	if err != nil {
		return models.LeadCard{}, err
	}
	return normalize.LeadCard(w), nil
}

func (c *Client) DeleteLead(ctx context.Context, leadID int) error {
	return c.exec(ctx, http.MethodDelete, fmt.Sprintf("/api/leads/%d", leadID), nil)
}

type contactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (c *Client) CreateContact(ctx context.Context, contact models.Contact) (models.Contact, error) {
	w, err := call[models.WireContact](ctx, c, TagNone, http.MethodPost, "/api/contacts", nil, contactRequest{
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
		Phone:     contact.Phone,
	})
	if err != nil {
		return models.Contact{}, err
	}
	if w.ContactID == 0 {
		return models.Contact{}, &normalize.ValidationError{Entity: "contact", Fields: []string{"contact_id is required"}}
	}
	return normalize.Contact(w)
}

func (c *Client) DeleteContact(ctx context.Context, contactID int) error {
	return c.exec(ctx, http.MethodDelete, fmt.Sprintf("/api/contacts/%d", contactID), nil)
}

type addressRequest struct {
	Street1 string  `json:"street_1"`
	Street2 string  `json:"street_2"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	Zipcode string  `json:"zipcode"`
	Lat     float64 `json:"lat"`
	Long    float64 `json:"long"`
}

func (c *Client) CreateAddress(ctx context.Context, a models.Address) (models.Address, error) {
	w, err := call[models.WireAddress](ctx, c, TagNone, http.MethodPost, "/api/addresses/", nil, addressRequest{
		Street1: a.Street1,
		Street2: a.Street2,
		City:    a.City,
		State:   a.State,
		Zipcode: a.Zipcode,
		Lat:     a.Lat,
		Long:    a.Long,
	})
	if err != nil {
		return models.Address{}, err
	}
	if w.AddressID == 0 {
		return models.Address{}, &normalize.ValidationError{Entity: "address", Fields: []string{"address_id is required"}}
	}
	return normalize.Address(w)
}

func (c *Client) DeleteAddress(ctx context.Context, addressID int) error {
	return c.exec(ctx, http.MethodDelete, fmt.Sprintf("/api/addresses/%d", addressID), nil)
}

func (c *Client) link(ctx context.Context, path string) (*models.WireLead, error) {
	return call[models.WireLead](ctx, c, TagNone, http.MethodPost, path, nil, struct{}{})
}

func (c *Client) LinkContactToLead(ctx context.Context, leadID, contactID int) (models.LeadCard, error) {
	w, err := c.link(ctx, fmt.Sprintf("/api/leads/%d/contacts/%d", leadID, contactID))
	if err != nil {
		return models.LeadCard{}, err
	}
	return leadCardFromWire(w), nil
}

// LinkAddressToLead returns the lead as the backend sees it after linking.
func (c *Client) LinkAddressToLead(ctx context.Context, leadID, addressID int) (*models.WireLead, error) {
	return c.link(ctx, fmt.Sprintf("/api/leads/%d/addresses/%d", leadID, addressID))
}

func leadCardFromWire(w *models.WireLead) models.LeadCard {
	return normalize.LeadCard(&models.WireLeadCard{
		LeadID:     w.LeadID,
		PersonType: w.PersonType,
		Business:   w.Business,
		Website:    w.Website,
		LicenseNum: w.LicenseNum,
		Notes:      w.Notes,
		CreatedBy:  w.CreatedBy,
		Contact:    w.Contact,
		Address:    w.Address,
	})
}
