// ABOUTME: Kanban board MCP tool handlers
// ABOUTME: Implements board listing and creation plus adding and moving lead and property cards
package handlers

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/pages"
)

type BoardHandlers struct {
	mu     sync.Mutex
	kanban *pages.KanbanController
}

func NewBoardHandlers(d pages.Deps) *BoardHandlers {
	return &BoardHandlers{kanban: pages.NewKanbanController(d)}
}

type CardOutput struct {
	ID      int    `json:"id"`
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Address string `json:"address,omitempty"`
}

type StepOutput struct {
	StepID int          `json:"step_id"`
	Column int          `json:"column"`
	Name   string       `json:"name"`
	Cards  []CardOutput `json:"cards"`
}

type BoardOutput struct {
	BoardID int          `json:"board_id"`
	Name    string       `json:"name"`
	Steps   []StepOutput `json:"steps"`
}

func BoardToOutput(b models.Board) BoardOutput {
	steps := slices.Clone(b.Steps)
	slices.SortStableFunc(steps, func(x, y models.BoardStep) int { return x.BoardColumn - y.BoardColumn })

	out := BoardOutput{BoardID: b.BoardID, Name: b.BoardName, Steps: make([]StepOutput, 0, len(steps))}
	for _, s := range steps {
		so := StepOutput{StepID: s.BoardStepID, Column: s.BoardColumn, Name: s.StepName, Cards: []CardOutput{}}
		for _, l := range s.Leads {
			c := CardOutput{ID: l.LeadID, Kind: "lead", Title: l.Title()}
			if l.Address != nil {
				c.Address = l.Address.OneLine()
			}
			so.Cards = append(so.Cards, c)
		}
		for _, p := range s.Properties {
			c := CardOutput{ID: p.PropertyID, Kind: "property", Title: p.PropertyName}
			if p.Address != nil {
				c.Address = p.Address.OneLine()
			}
			so.Cards = append(so.Cards, c)
		}
		out.Steps = append(out.Steps, so)
	}
	return out
}

// board reloads the boards and returns boardID.
func (h *BoardHandlers) board(ctx context.Context, boardID int) (BoardOutput, error) {
	if err := h.kanban.Load(ctx, boardID); err != nil {
		return BoardOutput{}, err
	}
	b, ok := h.kanban.Active()
	if !ok || b.BoardID != boardID {
		return BoardOutput{}, fmt.Errorf("board %d not found", boardID)
	}
	return BoardToOutput(b), nil
}

// boardOfStep finds the board holding stepID after a reload.
func (h *BoardHandlers) boardOfStep(ctx context.Context, stepID int) (int, error) {
	if err := h.kanban.Load(ctx, 0); err != nil {
		return 0, err
	}
	for _, b := range h.kanban.Boards() {
		if _, ok := b.Step(stepID); ok {
			return b.BoardID, nil
		}
	}
	return 0, fmt.Errorf("step %d: %w", stepID, pages.ErrStepNotFound)
}

type ListBoardsInput struct{}

type ListBoardsOutput struct {
	Boards []BoardOutput `json:"boards"`
}

func (h *BoardHandlers) ListBoards(ctx context.Context, request *mcp.CallToolRequest, input ListBoardsInput) (*mcp.CallToolResult, ListBoardsOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.kanban.Load(ctx, 0); err != nil {
		return nil, ListBoardsOutput{}, fmt.Errorf("failed to list boards: %w", err)
	}
	boards := h.kanban.Boards()
	out := ListBoardsOutput{Boards: make([]BoardOutput, 0, len(boards))}
	for _, b := range boards {
		out.Boards = append(out.Boards, BoardToOutput(b))
	}
	return nil, out, nil
}

type CreateBoardInput struct {
	Name  string   `json:"name" jsonschema:"Board name (required)"`
	Steps []string `json:"steps,omitempty" jsonschema:"Up to 5 column names (default To Do, In Progress, Review, Done, Backlog)"`
}

func (h *BoardHandlers) CreateBoard(ctx context.Context, request *mcp.CallToolRequest, input CreateBoardInput) (*mcp.CallToolResult, BoardOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, err := h.kanban.CreateBoard(ctx, input.Name, input.Steps)
	if err != nil {
		return nil, BoardOutput{}, fmt.Errorf("failed to create board: %w", err)
	}
	return nil, BoardToOutput(b), nil
}

type AddBoardStepInput struct {
	BoardID int    `json:"board_id" jsonschema:"Board ID (required)"`
	Name    string `json:"name" jsonschema:"Column name (required)"`
}

func (h *BoardHandlers) AddBoardStep(ctx context.Context, request *mcp.CallToolRequest, input AddBoardStepInput) (*mcp.CallToolResult, BoardOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.board(ctx, input.BoardID); err != nil {
		return nil, BoardOutput{}, err
	}
	if err := h.kanban.CreateStep(ctx, input.BoardID, input.Name); err != nil {
		return nil, BoardOutput{}, fmt.Errorf("failed to add column: %w", err)
	}
	out, err := h.board(ctx, input.BoardID)
	return nil, out, err
}

type AddBoardLeadInput struct {
	StepID     int    `json:"step_id" jsonschema:"Column to add the lead to (required)"`
	Business   string `json:"business" jsonschema:"Business or lead name (required)"`
	PersonType string `json:"person_type,omitempty" jsonschema:"Kind of person, e.g. agent or broker"`
	Website    string `json:"website,omitempty" jsonschema:"Website"`
	LicenseNum string `json:"license_num,omitempty" jsonschema:"License number"`
	Notes      string `json:"notes,omitempty" jsonschema:"Notes"`
}

func (h *BoardHandlers) AddBoardLead(ctx context.Context, request *mcp.CallToolRequest, input AddBoardLeadInput) (*mcp.CallToolResult, BoardOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	boardID, err := h.boardOfStep(ctx, input.StepID)
	if err != nil {
		return nil, BoardOutput{}, err
	}
	err = h.kanban.CreateLead(ctx, input.StepID, pages.LeadForm{
		Business:   input.Business,
		PersonType: input.PersonType,
		Website:    input.Website,
		LicenseNum: input.LicenseNum,
		Notes:      input.Notes,
	})
	if err != nil {
		return nil, BoardOutput{}, fmt.Errorf("failed to add lead: %w", err)
	}
	out, err := h.board(ctx, boardID)
	return nil, out, err
}

type MoveCardInput struct {
	CardID     int `json:"card_id" jsonschema:"Lead or property ID (required)"`
	FromStepID int `json:"from_step_id" jsonschema:"Column the card is in (required)"`
	ToStepID   int `json:"to_step_id" jsonschema:"Column to move the card to (required)"`
}

func (h *BoardHandlers) MoveBoardLead(ctx context.Context, request *mcp.CallToolRequest, input MoveCardInput) (*mcp.CallToolResult, BoardOutput, error) {
	return h.move(ctx, input, h.kanban.MoveLead)
}

func (h *BoardHandlers) MoveBoardProperty(ctx context.Context, request *mcp.CallToolRequest, input MoveCardInput) (*mcp.CallToolResult, BoardOutput, error) {
	return h.move(ctx, input, h.kanban.MoveProperty)
}

func (h *BoardHandlers) move(ctx context.Context, input MoveCardInput, fn func(ctx context.Context, id, from, to int) error) (*mcp.CallToolResult, BoardOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	boardID, err := h.boardOfStep(ctx, input.FromStepID)
	if err != nil {
		return nil, BoardOutput{}, err
	}
	if err := fn(ctx, input.CardID, input.FromStepID, input.ToStepID); err != nil {
		return nil, BoardOutput{}, fmt.Errorf("failed to move card: %w", err)
	}
	out, err := h.board(ctx, boardID)
	return nil, out, err
}

type AddBoardPropertyInput struct {
	StepID    int    `json:"step_id" jsonschema:"Column to add the property to (required)"`
	Name      string `json:"name" jsonschema:"Property name (required)"`
	MLSNumber string `json:"mls_number,omitempty" jsonschema:"MLS listing number"`
	Notes     string `json:"notes,omitempty" jsonschema:"Notes"`
	Street1   string `json:"street_1" jsonschema:"Street address (required)"`
	Street2   string `json:"street_2,omitempty" jsonschema:"Unit or suite"`
	City      string `json:"city" jsonschema:"City (required)"`
	State     string `json:"state" jsonschema:"State (required)"`
	Zipcode   string `json:"zipcode" jsonschema:"ZIP code (required)"`
}

func (h *BoardHandlers) AddBoardProperty(ctx context.Context, request *mcp.CallToolRequest, input AddBoardPropertyInput) (*mcp.CallToolResult, BoardOutput, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	boardID, err := h.boardOfStep(ctx, input.StepID)
	if err != nil {
		return nil, BoardOutput{}, err
	}
	err = h.kanban.CreateProperty(ctx, input.StepID, pages.PropertyForm{
		Name:      input.Name,
		MLSNumber: input.MLSNumber,
		Notes:     input.Notes,
		Address: models.Address{
			Street1: input.Street1,
			Street2: input.Street2,
			City:    input.City,
			State:   input.State,
			Zipcode: input.Zipcode,
		},
	})
	if err != nil {
		return nil, BoardOutput{}, fmt.Errorf("failed to add property: %w", err)
	}
	out, err := h.board(ctx, boardID)
	return nil, out, err
}
