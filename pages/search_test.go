package pages

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/state"
)

func searchResponse(leads ...map[string]any) map[string]any {
	agg := make([]any, 0, len(leads))
	for _, l := range leads {
		l["source"] = "db"
		agg = append(agg, l)
	}
	return map[string]any{"aggregated_leads": agg}
}

func TestSearchIgnoresBlankQuery(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, NewSearchController(f.deps).Search(context.Background(), "   "))
	assert.Empty(t, f.backend.all())
}

func TestSearchUsesDefaultSourcesAndStoresResults(t *testing.T) {
	f := newFixture(t)
	f.backend.reply("POST /api/searchLeads", http.StatusOK, searchResponse(wireLead(1, "a@x.com"), wireLead(2, "b@x.com")))
	f.deps.App.SideNav.Open(state.VariantLeadFilters)

	require.NoError(t, NewSearchController(f.deps).Search(context.Background(), "Rochester, NY"))

	var body struct {
		LocationText string   `json:"location_text"`
		Sources      []string `json:"sources"`
	}
	f.backend.all()[0].decode(t, &body)
	assert.Equal(t, "Rochester, NY", body.LocationText)
	assert.Equal(t, []string{"db", "google_places", "rapidapi", "gpt"}, body.Sources)

	q := f.deps.App.SearchQuery.Get()
	assert.Equal(t, "Rochester, NY", q.Query)
	assert.False(t, q.Loading)
	require.Len(t, q.Results, 2)
	assert.Equal(t, models.SourceDB, q.Results[0].Source)
	assert.False(t, f.deps.App.SideNav.State().IsOpen)
}

func TestSearchSendsSelectedSources(t *testing.T) {
	f := newFixture(t)
	f.backend.reply("POST /api/searchLeads", http.StatusOK, searchResponse())
	f.deps.App.SearchFilter.Set(state.SearchFilter{Sources: []models.LeadSource{models.SourceGPT}})

	require.NoError(t, NewSearchController(f.deps).Search(context.Background(), "x"))

	var body struct {
		Sources []string `json:"sources"`
	}
	f.backend.all()[0].decode(t, &body)
	assert.Equal(t, []string{"gpt"}, body.Sources)
}

func TestSearchFailureKeepsPreviousResults(t *testing.T) {
	f := newFixture(t)
	previous := []models.SourceLead{{Result: models.Lead{LeadID: 9}}}
	f.deps.App.SearchQuery.Set(state.SearchQuery{Query: "old", Results: previous})
	f.backend.reply("POST /api/searchLeads", http.StatusInternalServerError, map[string]any{"detail": "down"})

	err := NewSearchController(f.deps).Search(context.Background(), "new")
	require.Error(t, err)

	q := f.deps.App.SearchQuery.Get()
	assert.Equal(t, previous, q.Results)
	assert.False(t, q.Loading)
	assert.Equal(t, []string{ConnectionErrorMessage}, f.notify.errs())
}

func TestSortLeads(t *testing.T) {
	lead := func(first, last, email, street string) models.SourceLead {
		return models.SourceLead{Result: models.Lead{
			Contact: models.Contact{FirstName: first, LastName: last, Email: email},
			Address: models.Address{Street1: street},
		}}
	}
	leads := []models.SourceLead{
		lead("bob", "b", "z@x.com", "2 Elm"),
		lead("Amy", "z", "m@x.com", "3 Oak"),
		lead("amy", "a", "a@x.com", "1 Ash"),
	}
	firsts := func(ls []models.SourceLead) []string {
		var out []string
		for _, l := range ls {
			out = append(out, l.Result.Contact.FirstName+l.Result.Contact.LastName)
		}
		return out
	}

	assert.Equal(t, []string{"bobb", "Amyz", "amya"}, firsts(SortLeads(leads, state.SortNone)))
	assert.Equal(t, []string{"amya", "Amyz", "bobb"}, firsts(SortLeads(leads, state.SortName)))
	assert.Equal(t, []string{"amya", "Amyz", "bobb"}, firsts(SortLeads(leads, state.SortEmail)))
	assert.Equal(t, []string{"amya", "bobb", "Amyz"}, firsts(SortLeads(leads, state.SortAddress)))
	// input untouched
	assert.Equal(t, "bob", leads[0].Result.Contact.FirstName)
}
