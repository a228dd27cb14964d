// ABOUTME: Lead search MCP tool handlers
// ABOUTME: Implements search_leads and start_campaign over the shared search results
package handlers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harperreed/zala/db"
	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/pages"
	"github.com/harperreed/zala/state"
)

type LeadHandlers struct {
	d     pages.Deps
	store *db.Store

	// search results are shared, so a start must not interleave with a search
	mu sync.Mutex
}

func NewLeadHandlers(d pages.Deps, store *db.Store) *LeadHandlers {
	return &LeadHandlers{d: d, store: store}
}

type LeadOutput struct {
	Index         int      `json:"index"`
	LeadID        int      `json:"lead_id,omitempty"`
	Business      string   `json:"business,omitempty"`
	Name          string   `json:"name,omitempty"`
	Email         string   `json:"email,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Address       string   `json:"address,omitempty"`
	Website       string   `json:"website,omitempty"`
	Source        string   `json:"source,omitempty"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
}

func leadToOutput(index int, l models.Lead) LeadOutput {
	return LeadOutput{
		Index:    index,
		LeadID:   l.LeadID,
		Business: l.Buisness,
		Name:     l.Contact.FullName(),
		Email:    l.Contact.Email,
		Phone:    l.Contact.Phone,
		Address:  l.Address.OneLine(),
		Website:  l.Website,
	}
}

type SearchLeadsInput struct {
	Query   string   `json:"query" jsonschema:"Location to search around, e.g. 'Rochester, NY' (required)"`
	Sources []string `json:"sources,omitempty" jsonschema:"Lead sources: db, google_places, rapidapi, gpt (default all)"`
	SortBy  string   `json:"sort_by,omitempty" jsonschema:"Sort results by: None, Name, Email, Address"`
}

type SearchLeadsOutput struct {
	Query   string       `json:"query"`
	Count   int          `json:"count"`
	Results []LeadOutput `json:"results"`
}

func (h *LeadHandlers) SearchLeads(ctx context.Context, request *mcp.CallToolRequest, input SearchLeadsInput) (*mcp.CallToolResult, SearchLeadsOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, SearchLeadsOutput{}, fmt.Errorf("query is required")
	}

	var sources []models.LeadSource
	for _, s := range input.Sources {
		src, ok := models.ParseLeadSource(s)
		if !ok {
			return nil, SearchLeadsOutput{}, fmt.Errorf("invalid source: %s (valid: db, google_places, rapidapi, gpt)", s)
		}
		sources = append(sources, src)
	}
	sortBy, err := state.ParseSortKey(input.SortBy)
	if err != nil {
		return nil, SearchLeadsOutput{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.d.App.SearchFilter.Set(state.SearchFilter{Sources: sources, SortBy: sortBy})
	search := pages.NewSearchController(h.d)
	if err := search.Search(ctx, query); err != nil {
		return nil, SearchLeadsOutput{}, fmt.Errorf("failed to search leads: %w", err)
	}

	results := search.Results()
	out := SearchLeadsOutput{Query: query, Count: len(results), Results: make([]LeadOutput, 0, len(results))}
	for i, r := range results {
		lo := leadToOutput(i, r.Result)
		lo.Source = string(r.Source)
		lo.DistanceMiles = r.DistanceMiles
		out.Results = append(out.Results, lo)
	}

	if h.store != nil {
		active := h.d.App.SearchFilter.Get().ActiveSources()
		names := make([]string, len(active))
		for i, s := range active {
			names[i] = string(s)
		}
		if _, err := h.store.RecordSearch(ctx, query, names, len(results)); err != nil {
			h.logger().Warn("recording search failed", zap.Error(err))
		}
	}
	return nil, out, nil
}

type StartCampaignInput struct {
	Indexes []int  `json:"indexes" jsonschema:"Indexes of search_leads results to include (required)"`
	Title   string `json:"title,omitempty" jsonschema:"Campaign title (defaults to today's date)"`
}

type StartCampaignOutput struct {
	CampaignID   int          `json:"campaign_id"`
	CampaignName string       `json:"campaign_name"`
	Leads        []LeadOutput `json:"leads"`
	Failed       int          `json:"failed"`
	Orphans      []string     `json:"orphans,omitempty"`
}

func (h *LeadHandlers) StartCampaign(ctx context.Context, request *mcp.CallToolRequest, input StartCampaignInput) (*mcp.CallToolResult, StartCampaignOutput, error) {
	if len(input.Indexes) == 0 {
		return nil, StartCampaignOutput{}, fmt.Errorf("indexes is required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	picker := pages.NewLeadSearchController(h.d)
	defer picker.Close()
	n := len(h.d.App.SearchQuery.Get().Results)
	seen := map[int]bool{}
	for _, i := range input.Indexes {
		if i < 0 || i >= n {
			return nil, StartCampaignOutput{}, fmt.Errorf("index %d is out of range (have %d results)", i, n)
		}
		if !seen[i] {
			seen[i] = true
			picker.Toggle(i)
		}
	}
	picker.SetTitle(input.Title)

	res, err := picker.Start(ctx)
	if len(res.Orphans) > 0 && h.store != nil {
		if err := h.store.RecordOrphans(ctx, res.Orphans); err != nil {
			h.logger().Warn("recording orphans failed", zap.Error(err))
		}
	}
	if err != nil {
		return nil, StartCampaignOutput{}, fmt.Errorf("failed to start campaign: %w", err)
	}

	out := StartCampaignOutput{
		CampaignID:   res.Campaign.CampaignID,
		CampaignName: res.Campaign.CampaignName,
		Leads:        make([]LeadOutput, 0, len(res.Leads)),
		Failed:       len(res.Failed),
		Orphans:      res.Orphans,
	}
	for i, l := range res.Leads {
		out.Leads = append(out.Leads, leadToOutput(i, l))
	}
	return nil, out, nil
}

func (h *LeadHandlers) logger() *zap.Logger {
	if h.d.Logger == nil {
		return zap.NewNop()
	}
	return h.d.Logger
}
