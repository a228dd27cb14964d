// ABOUTME: MCP resource handlers for exposing Zala data
// ABOUTME: Provides read-only access to campaigns, boards and recent searches via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/db"
	"github.com/harperreed/zala/pages"
)

const resourceScheme = "zala://"

type ResourceHandlers struct {
	d     pages.Deps
	store *db.Store
}

func NewResourceHandlers(d pages.Deps, store *db.Store) *ResourceHandlers {
	return &ResourceHandlers{d: d, store: store}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	switch parts[0] {
	case "campaigns":
		if len(parts) == 1 || parts[1] == "" {
			return h.readCampaigns(ctx, uri)
		}
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid campaign id %q", parts[1])
		}
		return h.readCampaign(ctx, uri, id)

	case "boards":
		return h.readBoards(ctx, uri)

	case "searches":
		return h.readSearches(ctx, uri)

	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readCampaigns(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	camps, err := pages.PastCampaigns(ctx, h.d)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaigns: %w", err)
	}
	out := make([]CampaignSummaryOutput, 0, len(camps))
	for _, c := range camps {
		out = append(out, CampaignSummaryOutput{CampaignID: c.CampaignID, CampaignName: c.CampaignName, LeadCount: len(c.Leads)})
	}
	return jsonResource(uri, out)
}

func (h *ResourceHandlers) readCampaign(ctx context.Context, uri string, id int) (*mcp.ReadResourceResult, error) {
	camp, err := h.d.API.GetCampaign(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaign: %w", err)
	}
	leads, err := h.d.API.GetLeads(ctx, camp.LeadIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaign leads: %w", err)
	}
	return jsonResource(uri, campaignToOutput(camp, leads))
}

func (h *ResourceHandlers) readBoards(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	boards, err := h.d.API.GetBoards(ctx, api.ListParams{Limit: 50})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch boards: %w", err)
	}
	out := make([]BoardOutput, 0, len(boards))
	for _, b := range boards {
		out = append(out, BoardToOutput(b))
	}
	return jsonResource(uri, out)
}

type SearchOutput struct {
	Query       string   `json:"query"`
	Sources     []string `json:"sources"`
	ResultCount int      `json:"result_count"`
	SearchedAt  string   `json:"searched_at"`
}

func (h *ResourceHandlers) readSearches(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	if h.store == nil {
		return jsonResource(uri, []SearchOutput{})
	}
	recs, err := h.store.RecentSearches(ctx, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch searches: %w", err)
	}
	out := make([]SearchOutput, 0, len(recs))
	for _, r := range recs {
		out = append(out, SearchOutput{
			Query:       r.Query,
			Sources:     r.Sources,
			ResultCount: r.ResultCount,
			SearchedAt:  r.SearchedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return jsonResource(uri, out)
}
