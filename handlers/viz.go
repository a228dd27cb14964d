// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides generate_graph for a campaign or a kanban board
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/zala/pages"
	"github.com/harperreed/zala/viz"
)

type VizHandlers struct {
	d pages.Deps
}

func NewVizHandlers(d pages.Deps) *VizHandlers {
	return &VizHandlers{d: d}
}

type GenerateGraphInput struct {
	Type     string `json:"type" jsonschema:"Graph type: campaign or board"`
	EntityID int    `json:"entity_id" jsonschema:"Campaign or board ID (required)"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, request *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	if input.Type == "" {
		return nil, GenerateGraphOutput{}, fmt.Errorf("type is required")
	}
	if input.EntityID <= 0 {
		return nil, GenerateGraphOutput{}, fmt.Errorf("entity_id is required")
	}

	var (
		g   viz.Graph
		err error
	)
	switch input.Type {
	case "campaign":
		g, err = CampaignGraph(ctx, h.d, input.EntityID)
	case "board":
		g, err = BoardGraph(ctx, h.d, input.EntityID)
	default:
		return nil, GenerateGraphOutput{}, fmt.Errorf("unknown graph type: %s (valid types: campaign, board)", input.Type)
	}
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: g.DOT,
		NodeCount: g.Nodes,
		EdgeCount: g.Edges,
	}, nil
}

// CampaignGraph fetches a campaign with its leads and draws it.
func CampaignGraph(ctx context.Context, d pages.Deps, campaignID int) (viz.Graph, error) {
	camp, err := d.API.GetCampaign(ctx, campaignID)
	if err != nil {
		return viz.Graph{}, err
	}
	leads, err := d.API.GetLeads(ctx, camp.LeadIDs())
	if err != nil {
		return viz.Graph{}, err
	}
	return viz.CampaignGraph(ctx, camp, leads)
}

// BoardGraph fetches a board and draws it.
func BoardGraph(ctx context.Context, d pages.Deps, boardID int) (viz.Graph, error) {
	board, err := d.API.GetBoard(ctx, boardID)
	if err != nil {
		return viz.Graph{}, err
	}
	return viz.BoardGraph(ctx, board)
}
