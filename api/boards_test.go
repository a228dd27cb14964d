package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateBoardStepKeepsEmptyLists(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json("PUT /api/board-steps/4", http.StatusOK, map[string]any{
		"board_step_id": 4, "board_id": 1, "board_column": 0, "step_name": "To Do", "leads": []any{}, "properties": []any{},
	})

	_, err := fb.client().UpdateBoardStep(context.Background(), 4, StepUpdate{LeadIDs: []int{}})
	require.NoError(t, err)

	var body map[string]any
	fb.recorded()[0].decode(t, &body)
	assert.Equal(t, map[string]any{"lead_ids": []any{}}, body)
}

func TestCreateBoardStepBody(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json("POST /api/board-steps/", http.StatusCreated, map[string]any{
		"board_step_id": 8, "board_id": 1, "board_column": 2, "step_name": "Review",
	})

	step, err := fb.client().CreateBoardStep(context.Background(), 1, 2, "Review")
	require.NoError(t, err)
	assert.Equal(t, 8, step.BoardStepID)

	var body map[string]any
	fb.recorded()[0].decode(t, &body)
	assert.EqualValues(t, 1, body["board_id"])
	assert.EqualValues(t, 2, body["board_column"])
	assert.Equal(t, "Review", body["step_name"])
}

func TestGetBoardsPassesLimit(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json("GET /api/boards", http.StatusOK, []any{
		map[string]any{"board_id": 1, "board_name": "A", "board_steps": []any{}},
	})

	boards, err := fb.client().GetBoards(context.Background(), ListParams{Limit: 50})
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, "limit=50", fb.recorded()[0].Query)
}

func TestPropertyRoutesAreNestedUnderAddress(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json("POST /api/addresses/3/properties", http.StatusOK, map[string]any{"property_id": 9, "property_name": "Lot"})
	fb.json("PUT /api/addresses/3/properties/9", http.StatusOK, map[string]any{"property_id": 9, "property_name": "Lot 2"})
	fb.json("DELETE /api/addresses/3/properties/9", http.StatusOK, map[string]any{"property_id": 9})
	c := fb.client()
	ctx := context.Background()

	p, err := c.CreateProperty(ctx, 3, PropertyInput{PropertyName: "Lot"})
	require.NoError(t, err)
	assert.Equal(t, 9, p.PropertyID)

	p, err = c.UpdateProperty(ctx, 3, 9, PropertyInput{PropertyName: "Lot 2"})
	require.NoError(t, err)
	assert.Equal(t, "Lot 2", p.PropertyName)

	require.NoError(t, c.DeleteProperty(ctx, 3, 9))
}
