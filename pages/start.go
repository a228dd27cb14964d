// ABOUTME: Picks search results and starts a campaign from them
// ABOUTME: Each picked lead is persisted concurrently, then one campaign is created
package pages

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/state"
)

// maxConcurrentLeadSagas bounds the lead creations running at once.
const maxConcurrentLeadSagas = 8

var ErrNoLeadsCreated = errors.New("none of the selected leads could be saved")

// StartResult is handed to the campaign page: the new campaign and the
// saved leads, so the page need not refetch them.
type StartResult struct {
	Campaign models.Campaign
	Leads    []models.Lead
	// Failed lists the picked leads whose creation failed.
	Failed []models.Lead
	// Orphans names rows failed creations could not clean up, as "kind:id".
	Orphans []string
}

// LeadSearchController tracks which results are picked, by index.
type LeadSearchController struct {
	d Deps

	mu       sync.Mutex
	selected []int
	// picked is the result set the selected indexes point into.
	picked  []models.SourceLead
	title   string
	loading bool
	unsub   func()
}

func NewLeadSearchController(d Deps) *LeadSearchController {
	c := &LeadSearchController{d: d.withDefaults(), selected: []int{}}
	c.picked = c.d.App.SearchQuery.Get().Results
	// new results invalidate the picked indexes
	c.unsub = c.d.App.SearchQuery.Subscribe(func(q state.SearchQuery) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sameResults(c.picked, q.Results) {
			return
		}
		c.picked = q.Results
		c.selected = []int{}
	})
	return c
}

// sameResults reports whether a and b are the same stored result set.
// Searches replace the results wholesale, so identity is enough.
func sameResults(a, b []models.SourceLead) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func (c *LeadSearchController) Close() {
	c.unsub()
}

func (c *LeadSearchController) results() []models.SourceLead {
	return SortLeads(c.d.App.SearchQuery.Get().Results, c.d.App.SearchFilter.Get().SortBy)
}

func (c *LeadSearchController) Selected() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.selected)
}

// Toggle picks or unpicks the result at index i.
func (c *LeadSearchController) Toggle(i int) {
	if i < 0 || i >= len(c.results()) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if j := slices.Index(c.selected, i); j >= 0 {
		c.selected = slices.Delete(c.selected, j, j+1)
	} else {
		c.selected = append(c.selected, i)
	}
}

// HasAll reports whether every result is picked.
func (c *LeadSearchController) HasAll() bool {
	n := len(c.results())
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.selected) == n
}

// ToggleAll picks every result, or clears the picks when all are picked.
func (c *LeadSearchController) ToggleAll() {
	all := c.HasAll()
	n := len(c.results())
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = []int{}
	if !all {
		for i := range n {
			c.selected = append(c.selected, i)
		}
	}
}

func (c *LeadSearchController) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.title = title
}

func (c *LeadSearchController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// DefaultTitle names a campaign after the day it was started.
func (c *LeadSearchController) DefaultTitle() string {
	return c.d.Now().Format("Mon Jan 02 2006") + " Campaign"
}

// Start saves every picked lead and creates a campaign containing those
// that were saved. The campaign becomes the current campaign.
func (c *LeadSearchController) Start(ctx context.Context) (StartResult, error) {
	user := c.d.App.User()
	if user == nil {
		return StartResult{}, ErrNotLoggedIn
	}

	results := c.results()
	c.mu.Lock()
	picked := make([]models.Lead, 0, len(c.selected))
	for _, i := range c.selected {
		if i < len(results) {
			picked = append(picked, results[i].Result)
		}
	}
	title := strings.TrimSpace(c.title)
	c.loading = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	if len(picked) == 0 {
		return StartResult{}, ErrNothingSelected
	}
	if title == "" {
		title = c.DefaultTitle()
	}

	created := make([]*models.Lead, len(picked))
	var (
		orphanMu sync.Mutex
		orphans  []string
	)
	var g errgroup.Group
	g.SetLimit(maxConcurrentLeadSagas)
	for i, lead := range picked {
		g.Go(func() error {
			saved, err := c.d.API.CreateLeadWithDetails(ctx, lead)
			if err != nil {
				c.d.Logger.Warn("creating lead failed",
					zap.String("business", lead.Buisness),
					zap.Error(err))
				var sagaErr *api.SagaError
				if errors.As(err, &sagaErr) && len(sagaErr.Orphans) > 0 {
					orphanMu.Lock()
					orphans = append(orphans, sagaErr.Orphans...)
					orphanMu.Unlock()
				}
				return nil
			}
			created[i] = &saved
			return nil
		})
	}
	_ = g.Wait()

	res := StartResult{Leads: []models.Lead{}, Orphans: orphans}
	var ids []int
	for i, saved := range created {
		if saved == nil {
			res.Failed = append(res.Failed, picked[i])
			continue
		}
		ids = append(ids, saved.LeadID)
		res.Leads = append(res.Leads, *saved)
	}
	if len(ids) == 0 {
		c.d.Notify.Error(ConnectionErrorMessage)
		return res, ErrNoLeadsCreated
	}

	camp, err := c.d.API.CreateCampaign(ctx, api.CampaignInput{Name: title, UserID: user.UserID, LeadIDs: ids})
	if err != nil {
		c.d.reportError("creating campaign", err)
		return res, err
	}
	c.d.App.Campaign.Set(camp)
	res.Campaign = camp
	return res, nil
}
