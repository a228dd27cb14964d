package api

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/zala/models"
)

func TestSearchLeadsSubstitutesDefaultSources(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json("POST /api/searchLeads", http.StatusOK, map[string]any{"aggregated_leads": []any{}})

	_, err := fb.client().SearchLeads(context.Background(), "Henrietta NY", nil)
	require.NoError(t, err)

	var body struct {
		LocationText string   `json:"location_text"`
		Sources      []string `json:"sources"`
	}
	fb.recorded()[0].decode(t, &body)
	assert.Equal(t, "Henrietta NY", body.LocationText)
	assert.Equal(t, []string{"db", "google_places", "rapidapi", "gpt"}, body.Sources)
}

func TestSearchLeadsKeepsSelectedSources(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json("POST /api/searchLeads", http.StatusOK, map[string]any{"aggregated_leads": []any{}})

	_, err := fb.client().SearchLeads(context.Background(), "Henrietta NY", []models.LeadSource{models.SourceGPT})
	require.NoError(t, err)

	var body struct {
		Sources []string `json:"sources"`
	}
	fb.recorded()[0].decode(t, &body)
	assert.Equal(t, []string{"gpt"}, body.Sources)
}

func TestResolveSourcesReturnsCopy(t *testing.T) {
	out := ResolveSources(nil)
	out[0] = "mutated"
	assert.Equal(t, models.SourceDB, models.DefaultLeadSources[0])
}

func TestSearchLeadsNormalizesAndRejects(t *testing.T) {
	good := wireLead(1)
	good["source"] = "gpt"
	good["distance_miles"] = 2.5
	bad := map[string]any{"lead_id": 2, "source": "db"}

	fb := newFakeBackend(t)
	fb.json("POST /api/searchLeads", http.StatusOK, map[string]any{
		"aggregated_leads":    []any{good, bad},
		"normalized_location": map[string]any{"city": "Henrietta", "state": "NY"},
		"errors":              map[string]string{"rapidapi": "quota"},
	})

	res, err := fb.client().SearchLeads(context.Background(), "Henrietta NY", []models.LeadSource{models.SourceGPT})
	require.NoError(t, err)
	require.Len(t, res.NearbyProperties, 1)
	assert.Equal(t, 1, res.Rejected)
	assert.Equal(t, models.SourceGPT, res.NearbyProperties[0].Source)
	assert.Equal(t, "Acme", res.NearbyProperties[0].Result.Buisness)
	assert.Equal(t, "Henrietta", res.NormalizedLocation["city"])
	assert.Equal(t, "quota", res.SourceErrors["rapidapi"])
}

func TestSearchLeadsEmptyBodyIsNoData(t *testing.T) {
	fb := newFakeBackend(t)
	fb.raw("POST /api/searchLeads", http.StatusOK, "")

	_, err := fb.client().SearchLeads(context.Background(), "x", nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestGetLeadsPreservesOrder(t *testing.T) {
	fb := newFakeBackend(t)
	for _, id := range []int{3, 1, 2} {
		fb.json("GET /api/leads/"+strconv.Itoa(id), http.StatusOK, wireLead(id))
	}

	leads, err := fb.client().GetLeads(context.Background(), []int{3, 1, 2})
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, 3, leads[0].LeadID)
	assert.Equal(t, 1, leads[1].LeadID)
	assert.Equal(t, 2, leads[2].LeadID)
}

func TestGetLeadsFailsWhenOneFails(t *testing.T) {
	fb := newFakeBackend(t)
	fb.json("GET /api/leads/1", http.StatusOK, wireLead(1))

	_, err := fb.client().GetLeads(context.Background(), []int{1, 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead 2")
}

func TestUpdateLeadSendsEditableColumns(t *testing.T) {
	fb := newFakeBackend(t)
	updated := wireLead(5)
	updated["notes"] = "new notes"
	fb.json("PUT /api/leads/5", http.StatusOK, updated)

	lead, err := fb.client().UpdateLead(context.Background(), 5, LeadInput{Business: "Acme", Notes: "new notes"})
	require.NoError(t, err)
	assert.Equal(t, "new notes", lead.Notes)

	var body map[string]any
	fb.recorded()[0].decode(t, &body)
	assert.Equal(t, "new notes", body["notes"])
	assert.Equal(t, "Acme", body["business"])
}

func TestLeadInputFromKeepsPersonType(t *testing.T) {
	in := LeadInputFrom(models.Lead{PersonType: "business", Buisness: "Acme", Notes: "n"})
	assert.Equal(t, "business", in.PersonType)
	assert.Equal(t, "Acme", in.Business)

	assert.Equal(t, DefaultPersonType, LeadInputFrom(models.Lead{Buisness: "Hit"}).PersonType)
}
