// ABOUTME: App bundles every state slice for injection into controllers
// ABOUTME: One App is shared by the CLI, TUI and MCP server in a process
package state

import (
	"time"

	"github.com/harperreed/zala/models"
)

type App struct {
	Auth           *Store[*models.User]
	Campaign       *Store[models.Campaign]
	SearchQuery    *Store[SearchQuery]
	SearchFilter   *Store[SearchFilter]
	CampaignPage   *Store[CampaignPage]
	GoogleRequired *Store[bool]
	SideNav        *SideNav
}

func NewApp(sideNavDelay time.Duration) *App {
	return &App{
		Auth:           NewStore[*models.User](nil),
		Campaign:       NewStore(models.DefaultCampaign()),
		SearchQuery:    NewStore(SearchQuery{Results: []models.SourceLead{}}),
		SearchFilter:   NewStore(SearchFilter{SortBy: SortNone}),
		CampaignPage:   NewStore(DefaultCampaignPage()),
		GoogleRequired: NewStore(false),
		SideNav:        NewSideNav(sideNavDelay),
	}
}

// User returns the logged-in user, or nil.
func (a *App) User() *models.User {
	return a.Auth.Get()
}

// Reset returns every slice to its initial value, as on logout.
func (a *App) Reset() {
	a.Auth.Set(nil)
	a.Campaign.Set(models.DefaultCampaign())
	a.SearchQuery.Set(SearchQuery{Results: []models.SourceLead{}})
	a.CampaignPage.Set(DefaultCampaignPage())
	a.GoogleRequired.Set(false)
	a.SideNav.Stop()
}
