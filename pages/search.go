// ABOUTME: Lead search: runs the query against the selected sources
// ABOUTME: Results land in the search-query store; sorting is display-only
package pages

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/state"
)

type SearchController struct {
	d Deps
}

func NewSearchController(d Deps) *SearchController {
	return &SearchController{d: d.withDefaults()}
}

// Search replaces the stored results with a fresh search for query. An
// empty query does nothing. On failure the previous results are kept.
func (s *SearchController) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	app := s.d.App
	app.SideNav.Close()
	app.SearchQuery.Update(func(q state.SearchQuery) state.SearchQuery {
		q.Query = query
		q.Loading = true
		return q
	})
	defer app.SearchQuery.Update(func(q state.SearchQuery) state.SearchQuery {
		q.Loading = false
		return q
	})

	res, err := s.d.API.SearchLeads(ctx, query, app.SearchFilter.Get().ActiveSources())
	if err != nil {
		s.d.reportError("searching leads", err)
		return err
	}
	if res.Rejected > 0 {
		s.d.Logger.Warn("search returned malformed leads", zap.Int("rejected", res.Rejected))
	}
	for source, msg := range res.SourceErrors {
		s.d.Logger.Info("lead source failed", zap.String("source", source), zap.String("error", msg))
	}

	app.SearchQuery.Update(func(q state.SearchQuery) state.SearchQuery {
		q.Results = res.NearbyProperties
		return q
	})
	return nil
}

// Results returns the stored results ordered by the active sort key.
func (s *SearchController) Results() []models.SourceLead {
	return SortLeads(s.d.App.SearchQuery.Get().Results, s.d.App.SearchFilter.Get().SortBy)
}

// SortLeads returns a sorted copy of leads. SortNone keeps the search order.
func SortLeads(leads []models.SourceLead, key state.SortKey) []models.SourceLead {
	out := slices.Clone(leads)
	var compare func(a, b models.SourceLead) int
	switch key {
	case state.SortName:
		compare = func(a, b models.SourceLead) int {
			ac, bc := a.Result.Contact, b.Result.Contact
			return cmp.Or(
				cmp.Compare(strings.ToLower(ac.FirstName), strings.ToLower(bc.FirstName)),
				cmp.Compare(strings.ToLower(ac.LastName), strings.ToLower(bc.LastName)),
			)
		}
	case state.SortEmail:
		compare = func(a, b models.SourceLead) int {
			return cmp.Compare(strings.ToLower(a.Result.Contact.Email), strings.ToLower(b.Result.Contact.Email))
		}
	case state.SortAddress:
		compare = func(a, b models.SourceLead) int {
			return cmp.Compare(a.Result.Address.OneLine(), b.Result.Address.OneLine())
		}
	default:
		return out
	}
	slices.SortStableFunc(out, compare)
	return out
}
