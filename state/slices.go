// ABOUTME: Value types for each application state slice
// ABOUTME: Search query and filter, campaign page, and sort keys
package state

import (
	"fmt"
	"slices"
	"strings"

	"github.com/harperreed/zala/models"
)

// SearchQuery is the last search and its results. Results live only here.
type SearchQuery struct {
	Query   string
	Results []models.SourceLead
	Loading bool
}

// SortKey orders search results for display.
type SortKey string

const (
	SortNone    SortKey = "None"
	SortName    SortKey = "Name"
	SortEmail   SortKey = "Email"
	SortAddress SortKey = "Address"
)

var SortKeys = []SortKey{SortNone, SortName, SortEmail, SortAddress}

func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortNone, nil
	}
	for _, k := range SortKeys {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return SortNone, fmt.Errorf("unknown sort key %q", s)
}

// SearchFilter is the side-nav filter panel.
type SearchFilter struct {
	Sources []models.LeadSource
	SortBy  SortKey
}

// ActiveSources returns the selected sources, or the defaults when none are.
func (f SearchFilter) ActiveSources() []models.LeadSource {
	if len(f.Sources) == 0 {
		return slices.Clone(models.DefaultLeadSources)
	}
	return slices.Clone(f.Sources)
}

// ToggleSource returns a copy of f with source added or removed.
func (f SearchFilter) ToggleSource(source models.LeadSource) SearchFilter {
	out := f
	if i := slices.Index(f.Sources, source); i >= 0 {
		out.Sources = slices.Delete(slices.Clone(f.Sources), i, i+1)
	} else {
		out.Sources = append(slices.Clone(f.Sources), source)
	}
	return out
}

// CampaignTab is the folder shown on the campaign page.
type CampaignTab string

const (
	TabConnect CampaignTab = "connect"
	TabNotes   CampaignTab = "notes"
	TabProfile CampaignTab = "profile"
	TabMulti   CampaignTab = "multi"
)

// NoLead marks that no lead is being viewed.
const NoLead = -1

type CampaignPage struct {
	Tab           CampaignTab
	ViewingLead   int
	SelectedLeads []int
	Notes         string
}

func DefaultCampaignPage() CampaignPage {
	return CampaignPage{Tab: TabConnect, ViewingLead: NoLead, SelectedLeads: []int{}}
}

func (p CampaignPage) IsSelected(leadID int) bool {
	return slices.Contains(p.SelectedLeads, leadID)
}
