// ABOUTME: Kanban board, board step and property endpoints
// ABOUTME: Steps carry ordered lead or property id lists that are replaced wholesale
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/normalize"
)

func (c *Client) GetBoards(ctx context.Context, params ListParams) ([]models.Board, error) {
	raw, err := c.Fetch(ctx, TagNone, http.MethodGet, "/api/boards", params.values(), nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []models.Board{}, nil
	}
	ws, err := decodeList[models.WireBoard](raw, "boards")
	if err != nil {
		return nil, err
	}

	boards := make([]models.Board, 0, len(ws))
	for i := range ws {
		b, err := normalize.Board(&ws[i])
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, nil
}

func (c *Client) GetBoard(ctx context.Context, boardID int) (models.Board, error) {
	w, err := call[models.WireBoard](ctx, c, TagNone, http.MethodGet, fmt.Sprintf("/api/boards/%d", boardID), nil, nil)
	if err != nil {
		return models.Board{}, err
	}
	return normalize.Board(w)
}

type boardRequest struct {
	BoardName string `json:"board_name,omitempty"`
	UserID    *int   `json:"user_id,omitempty"`
}

func (c *Client) CreateBoard(ctx context.Context, name string, userID int) (models.Board, error) {
	w, err := call[models.WireBoard](ctx, c, TagNone, http.MethodPost, "/api/boards/", nil, boardRequest{
		BoardName: name,
		UserID:    &userID,
	})
	if err != nil {
		return models.Board{}, err
	}
	return normalize.Board(w)
}

func (c *Client) RenameBoard(ctx context.Context, boardID int, name string) (models.Board, error) {
	w, err := call[models.WireBoard](ctx, c, TagNone, http.MethodPut, fmt.Sprintf("/api/boards/%d", boardID), nil, boardRequest{
		BoardName: name,
	})
	if err != nil {
		return models.Board{}, err
	}
	return normalize.Board(w)
}

func (c *Client) DeleteBoard(ctx context.Context, boardID int) error {
	return c.exec(ctx, http.MethodDelete, fmt.Sprintf("/api/boards/%d", boardID), nil)
}

type stepCreateRequest struct {
	BoardID     int    `json:"board_id"`
	BoardColumn int    `json:"board_column"`
	StepName    string `json:"step_name"`
}

func (c *Client) CreateBoardStep(ctx context.Context, boardID, column int, name string) (models.BoardStep, error) {
	w, err := call[models.WireBoardStep](ctx, c, TagNone, http.MethodPost, "/api/board-steps/", nil, stepCreateRequest{
		BoardID:     boardID,
		BoardColumn: column,
		StepName:    name,
	})
	if err != nil {
		return models.BoardStep{}, err
	}
	return normalize.BoardStep(w)
}

// StepUpdate replaces only the fields that are set. A non-nil empty id
// list clears the step.
type StepUpdate struct {
	StepName    *string
	BoardColumn *int
	LeadIDs     []int
	PropertyIDs []int
}

// stepUpdateRequest keeps empty-but-set id lists on the wire.
type stepUpdateRequest struct {
	StepName    *string `json:"step_name,omitempty"`
	BoardColumn *int    `json:"board_column,omitempty"`
	LeadIDs     *[]int  `json:"lead_ids,omitempty"`
	PropertyIDs *[]int  `json:"property_ids,omitempty"`
}

func (c *Client) UpdateBoardStep(ctx context.Context, stepID int, up StepUpdate) (models.BoardStep, error) {
	req := stepUpdateRequest{StepName: up.StepName, BoardColumn: up.BoardColumn}
	if up.LeadIDs != nil {
		req.LeadIDs = &up.LeadIDs
	}
	if up.PropertyIDs != nil {
		req.PropertyIDs = &up.PropertyIDs
	}

	w, err := call[models.WireBoardStep](ctx, c, TagNone, http.MethodPut, fmt.Sprintf("/api/board-steps/%d", stepID), nil, req)
	if err != nil {
		return models.BoardStep{}, err
	}
	return normalize.BoardStep(w)
}

func (c *Client) DeleteBoardStep(ctx context.Context, stepID int) error {
	return c.exec(ctx, http.MethodDelete, fmt.Sprintf("/api/board-steps/%d", stepID), nil)
}

type PropertyInput struct {
	PropertyName string `json:"property_name"`
	MLSNumber    string `json:"mls_number,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func (c *Client) CreateProperty(ctx context.Context, addressID int, in PropertyInput) (models.PropertyCard, error) {
	w, err := call[models.WirePropertyCard](ctx, c, TagNone, http.MethodPost, fmt.Sprintf("/api/addresses/%d/properties", addressID), nil, in)
	if err != nil {
		return models.PropertyCard{}, err
	}
	return normalize.PropertyCard(w), nil
}

func (c *Client) UpdateProperty(ctx context.Context, addressID, propertyID int, in PropertyInput) (models.PropertyCard, error) {
	w, err := call[models.WirePropertyCard](ctx, c, TagNone, http.MethodPut,
		fmt.Sprintf("/api/addresses/%d/properties/%d", addressID, propertyID), nil, in)
	if err != nil {
		return models.PropertyCard{}, err
	}
	return normalize.PropertyCard(w), nil
}

func (c *Client) DeleteProperty(ctx context.Context, addressID, propertyID int) error {
	return c.exec(ctx, http.MethodDelete, fmt.Sprintf("/api/addresses/%d/properties/%d", addressID, propertyID), nil)
}
