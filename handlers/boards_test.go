// ABOUTME: Tests for kanban board MCP tool handlers
// ABOUTME: Covers listing, adding cards and moving cards between columns
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/zala/pages"
)

func serveBoards(f *fixture) {
	f.backend.reply("GET /api/boards", http.StatusOK, []map[string]any{pipeline()})
}

// echoStep answers a step update with a bare step.
func echoStep(f *fixture, stepID int) {
	f.backend.reply("PUT /api/board-steps/"+strconv.Itoa(stepID), http.StatusOK, map[string]any{
		"board_step_id": stepID, "board_id": 3, "board_column": 1, "step_name": "x",
	})
}

func TestListBoards(t *testing.T) {
	f := newFixture(t)
	serveBoards(f)
	h := NewBoardHandlers(f.deps)

	_, out, err := h.ListBoards(context.Background(), nil, ListBoardsInput{})
	require.NoError(t, err)
	require.Len(t, out.Boards, 1)

	b := out.Boards[0]
	assert.Equal(t, "Pipeline", b.Name)
	require.Len(t, b.Steps, 3)
	assert.Equal(t, []CardOutput{{ID: 41, Kind: "lead", Title: "Acme"}}, b.Steps[0].Cards)
	assert.Equal(t, []CardOutput{{ID: 51, Kind: "property", Title: "House"}}, b.Steps[1].Cards)
	assert.Empty(t, b.Steps[2].Cards)
	assert.Equal(t, "limit=50", f.backend.matching("GET /api/boards")[0].Query)
}

func TestMoveBoardLead(t *testing.T) {
	f := newFixture(t)
	serveBoards(f)
	echoStep(f, 31)
	echoStep(f, 33)
	h := NewBoardHandlers(f.deps)

	_, out, err := h.MoveBoardLead(context.Background(), nil, MoveCardInput{CardID: 41, FromStepID: 31, ToStepID: 33})
	require.NoError(t, err)
	assert.Equal(t, 3, out.BoardID)

	var from, to struct {
		LeadIDs []int `json:"lead_ids"`
	}
	f.backend.matching("PUT /api/board-steps/31")[0].decode(t, &from)
	f.backend.matching("PUT /api/board-steps/33")[0].decode(t, &to)
	assert.Equal(t, []int{}, from.LeadIDs)
	assert.Equal(t, []int{41}, to.LeadIDs)
}

func TestMoveBoardLeadOntoPropertiesRefused(t *testing.T) {
	f := newFixture(t)
	serveBoards(f)
	h := NewBoardHandlers(f.deps)

	_, _, err := h.MoveBoardLead(context.Background(), nil, MoveCardInput{CardID: 41, FromStepID: 31, ToStepID: 32})
	assert.ErrorContains(t, err, "only contains properties")
	assert.Empty(t, f.backend.matching("PUT"))
}

func TestMoveBoardProperty(t *testing.T) {
	f := newFixture(t)
	serveBoards(f)
	echoStep(f, 32)
	echoStep(f, 33)
	h := NewBoardHandlers(f.deps)

	_, _, err := h.MoveBoardProperty(context.Background(), nil, MoveCardInput{CardID: 51, FromStepID: 32, ToStepID: 33})
	require.NoError(t, err)

	var to struct {
		PropertyIDs []int `json:"property_ids"`
	}
	f.backend.matching("PUT /api/board-steps/33")[0].decode(t, &to)
	assert.Equal(t, []int{51}, to.PropertyIDs)
}

func TestAddBoardLead(t *testing.T) {
	f := newFixture(t)
	serveBoards(f)
	f.backend.reply("POST /api/leads", http.StatusOK, map[string]any{"lead_id": 42, "business": "Beta"})
	echoStep(f, 33)
	h := NewBoardHandlers(f.deps)

	_, _, err := h.AddBoardLead(context.Background(), nil, AddBoardLeadInput{StepID: 33, Business: " Beta "})
	require.NoError(t, err)

	var lead struct {
		Business string `json:"business"`
	}
	f.backend.matching("POST /api/leads")[0].decode(t, &lead)
	assert.Equal(t, "Beta", lead.Business)

	var step struct {
		LeadIDs []int `json:"lead_ids"`
	}
	f.backend.matching("PUT /api/board-steps/33")[0].decode(t, &step)
	assert.Equal(t, []int{42}, step.LeadIDs)
}

func TestAddBoardCardsRespectColumnKind(t *testing.T) {
	f := newFixture(t)
	serveBoards(f)
	h := NewBoardHandlers(f.deps)

	_, _, err := h.AddBoardLead(context.Background(), nil, AddBoardLeadInput{StepID: 32, Business: "Beta"})
	assert.ErrorIs(t, err, pages.ErrStepHoldsProperties)

	_, _, err = h.AddBoardProperty(context.Background(), nil, AddBoardPropertyInput{
		StepID: 31, Name: "Condo", Street1: "1 Main St", City: "Rochester", State: "NY", Zipcode: "14604",
	})
	assert.ErrorIs(t, err, pages.ErrStepHoldsLeads)

	_, _, err = h.AddBoardProperty(context.Background(), nil, AddBoardPropertyInput{StepID: 99, Name: "Condo"})
	assert.ErrorIs(t, err, pages.ErrStepNotFound)

	assert.Empty(t, f.backend.matching("POST"))
}

func TestAddBoardStep(t *testing.T) {
	f := newFixture(t)
	serveBoards(f)
	f.backend.reply("POST /api/board-steps/", http.StatusOK, map[string]any{
		"board_step_id": 34, "board_id": 3, "board_column": 4, "step_name": "Archive",
	})
	h := NewBoardHandlers(f.deps)

	_, _, err := h.AddBoardStep(context.Background(), nil, AddBoardStepInput{BoardID: 3, Name: "Archive"})
	require.NoError(t, err)

	var body struct {
		BoardID int    `json:"board_id"`
		Column  int    `json:"board_column"`
		Name    string `json:"step_name"`
	}
	f.backend.matching("POST /api/board-steps/")[0].decode(t, &body)
	assert.Equal(t, 3, body.BoardID)
	assert.Equal(t, 4, body.Column)
	assert.Equal(t, "Archive", body.Name)

	_, _, err = h.AddBoardStep(context.Background(), nil, AddBoardStepInput{BoardID: 9, Name: "Archive"})
	assert.EqualError(t, err, "board 9 not found")
}

func TestCreateBoardNeedsName(t *testing.T) {
	f := newFixture(t)
	h := NewBoardHandlers(f.deps)

	_, _, err := h.CreateBoard(context.Background(), nil, CreateBoardInput{Name: "  "})
	assert.ErrorIs(t, err, pages.ErrBoardNameRequired)
}
