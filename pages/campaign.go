// ABOUTME: Campaign page: loads a campaign and its leads, autosaves title and notes
// ABOUTME: Contact-method toggles write through and refetch instead of mutating locally
package pages

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/debounce"
	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/state"
)

type CampaignController struct {
	d Deps

	mu         sync.Mutex
	campaignID int
	handoff    []models.Lead
	leads      []models.Lead
	loadCancel context.CancelFunc
	loadGen    uint64
	title      string

	// applyMu orders a load's staleness check with its writes to the stores.
	applyMu sync.Mutex

	titleSaver *debounce.Debouncer[string]
	notesSaver *debounce.Debouncer[string]
}

// NewCampaignController opens campaignID. handoff, when non-empty, holds
// the campaign's leads as passed from the page that created it.
func NewCampaignController(d Deps, campaignID int, handoff []models.Lead) *CampaignController {
	c := &CampaignController{
		d:          d.withDefaults(),
		campaignID: campaignID,
		handoff:    slices.Clone(handoff),
		leads:      []models.Lead{},
	}
	c.titleSaver = debounce.New(c.d.AutosaveDelay, c.saveTitle)
	c.notesSaver = debounce.New(c.d.AutosaveDelay, c.saveNotes)
	return c
}

// Close drops pending edits and aborts running saves. Call Flush first to keep them.
func (c *CampaignController) Close() {
	c.titleSaver.Close()
	c.notesSaver.Close()
	c.mu.Lock()
	if c.loadCancel != nil {
		c.loadCancel()
	}
	c.loadGen++
	c.mu.Unlock()
	c.d.API.ClearSignal()
}

// Flush saves pending title and notes edits now and waits for them.
func (c *CampaignController) Flush() {
	c.titleSaver.Flush()
	c.notesSaver.Flush()
	c.titleSaver.Wait()
	c.notesSaver.Wait()
}

func (c *CampaignController) Campaign() models.Campaign {
	return c.d.App.Campaign.Get()
}

func (c *CampaignController) Leads() []models.Lead {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.leads)
}

func (c *CampaignController) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

// ViewingLead returns the lead shown in the detail folders.
func (c *CampaignController) ViewingLead() (models.Lead, bool) {
	id := c.d.App.CampaignPage.Get().ViewingLead
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.leads {
		if l.LeadID == id {
			return l, true
		}
	}
	return models.Lead{}, false
}

// Load fetches the campaign unless the store already holds it, then its
// leads. A load still running is aborted and its results are dropped.
func (c *CampaignController) Load(ctx context.Context) error {
	c.mu.Lock()
	id := c.campaignID
	handoff := slices.Clone(c.handoff)
	if c.loadCancel != nil {
		c.loadCancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.loadCancel = cancel
	c.loadGen++
	gen := c.loadGen
	c.mu.Unlock()
	defer cancel()

	current := c.d.App.Campaign.Get()
	if !current.IsLoaded() || current.CampaignID != id {
		camp, err := c.d.API.GetCampaign(ctx, id)
		if c.stale(gen) {
			return nil
		}
		if err != nil {
			c.d.reportError("getting campaign", err, Quietly())
			return fmt.Errorf("campaign %d: %w", id, err)
		}
		if camp.CampaignID != id {
			return fmt.Errorf("campaign %d: backend returned campaign %d", id, camp.CampaignID)
		}
		current = camp
	}
	if !c.applyCurrent(gen, current) {
		return nil
	}

	if len(handoff) > 0 {
		c.setLeads(gen, handoff)
		return nil
	}

	leads, err := c.d.API.GetLeads(ctx, current.LeadIDs())
	if c.stale(gen) {
		return nil
	}
	if err != nil {
		c.d.reportError("getting campaign leads", err)
		return err
	}
	c.setLeads(gen, leads)
	return nil
}

// Open switches to another campaign, aborting a load still running for
// the previous one.
func (c *CampaignController) Open(ctx context.Context, campaignID int) error {
	c.titleSaver.Cancel()
	c.notesSaver.Cancel()
	c.mu.Lock()
	c.campaignID = campaignID
	c.handoff = nil
	c.mu.Unlock()
	return c.Load(ctx)
}

func (c *CampaignController) stale(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen != c.loadGen
}

// applyCurrent stores camp unless a newer load has started.
func (c *CampaignController) applyCurrent(gen uint64, camp models.Campaign) bool {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	if c.stale(gen) {
		return false
	}
	c.apply(camp)
	return true
}

func (c *CampaignController) setLeads(gen uint64, leads []models.Lead) {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	c.mu.Lock()
	if gen != c.loadGen {
		c.mu.Unlock()
		return
	}
	c.leads = leads
	c.mu.Unlock()
	c.syncNotes()
}

// Refresh refetches the campaign without touching the leads. The result is
// dropped when another campaign was opened meanwhile.
func (c *CampaignController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	id, gen := c.campaignID, c.loadGen
	c.mu.Unlock()

	camp, err := c.d.API.GetCampaign(ctx, id)
	if err != nil {
		c.d.reportError("getting campaign", err, Quietly())
		return err
	}
	c.applyCurrent(gen, camp)
	return nil
}

// apply stores a campaign returned by the backend.
func (c *CampaignController) apply(camp models.Campaign) {
	prev := c.d.App.Campaign.Get()
	c.d.App.Campaign.Set(camp)

	c.mu.Lock()
	c.title = camp.CampaignName
	c.mu.Unlock()

	if prev.CampaignID == camp.CampaignID && c.d.App.CampaignPage.Get().ViewingLead != state.NoLead {
		return
	}
	viewing := state.NoLead
	if len(camp.Leads) > 0 {
		viewing = camp.Leads[0].LeadID
	}
	c.d.App.CampaignPage.Update(func(p state.CampaignPage) state.CampaignPage {
		p.ViewingLead = viewing
		return p
	})
	c.syncNotes()
}

// syncNotes loads the viewing lead's notes into the notes buffer.
func (c *CampaignController) syncNotes() {
	lead, ok := c.ViewingLead()
	notes := ""
	if ok {
		notes = lead.Notes
	}
	c.d.App.CampaignPage.Update(func(p state.CampaignPage) state.CampaignPage {
		p.Notes = notes
		return p
	})
}

// View shows leadID. Pending notes for the previous lead are saved first.
func (c *CampaignController) View(leadID int) {
	c.notesSaver.Flush()
	c.d.App.CampaignPage.Update(func(p state.CampaignPage) state.CampaignPage {
		p.ViewingLead = leadID
		return p
	})
	c.syncNotes()
}

func (c *CampaignController) SetTab(tab state.CampaignTab) {
	c.d.App.CampaignPage.Update(func(p state.CampaignPage) state.CampaignPage {
		p.Tab = tab
		return p
	})
}

// SetTitle records an edit; it is saved once edits pause.
func (c *CampaignController) SetTitle(title string) {
	c.mu.Lock()
	c.title = title
	c.mu.Unlock()
	c.titleSaver.Trigger(title)
}

func (c *CampaignController) saveTitle(ctx context.Context, title string) {
	camp := c.d.App.Campaign.Get()
	if !camp.IsLoaded() || camp.CampaignName == title {
		return
	}
	user := c.d.App.User()
	if user == nil {
		return
	}

	// the debouncer cancels ctx when a newer title is saved
	c.d.API.SetSignal(ctx, api.TagUpdateCampaign)
	updated, err := c.d.API.UpdateCampaign(ctx, camp.CampaignID, api.CampaignInput{
		Name:    title,
		UserID:  user.UserID,
		LeadIDs: camp.LeadIDs(),
	})
	if err != nil {
		c.d.reportError("updating campaign", err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	c.d.App.Campaign.Set(updated)
	c.mu.Lock()
	if c.title == title {
		c.title = updated.CampaignName
	}
	c.mu.Unlock()
}

// SetNotes records an edit of the viewing lead's notes.
func (c *CampaignController) SetNotes(notes string) {
	c.d.App.CampaignPage.Update(func(p state.CampaignPage) state.CampaignPage {
		p.Notes = notes
		return p
	})
	c.notesSaver.Trigger(notes)
}

func (c *CampaignController) saveNotes(ctx context.Context, notes string) {
	lead, ok := c.ViewingLead()
	if !ok || lead.Notes == notes || !c.Campaign().IsLoaded() {
		return
	}

	in := api.LeadInputFrom(lead)
	in.Notes = notes
	updated, err := c.d.API.UpdateLead(ctx, lead.LeadID, in)
	if err != nil {
		c.d.reportError("updating a lead", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.IndexFunc(c.leads, func(l models.Lead) bool { return l.LeadID == updated.LeadID }); i >= 0 {
		c.leads[i] = updated
	} else {
		c.leads = append(c.leads, updated)
	}
}

// ToggleContact flips one contact method for a lead. Email is never
// toggled here: it reports openComposer and is marked once mail is sent.
func (c *CampaignController) ToggleContact(ctx context.Context, leadID int, method models.ContactMethod) (openComposer bool, err error) {
	if method == models.ContactEmail {
		return true, nil
	}
	return false, c.setContacted(ctx, leadID, method)
}

func (c *CampaignController) setContacted(ctx context.Context, leadID int, method models.ContactMethod) error {
	camp := c.Campaign()
	if !camp.IsLoaded() {
		return api.ErrNoCampaign
	}
	cl, ok := camp.FindLead(leadID)
	if !ok {
		return fmt.Errorf("lead %d is not in campaign %d", leadID, camp.CampaignID)
	}

	if _, err := c.d.API.UpdateCampaignLead(ctx, camp.CampaignID, leadID, cl.Toggled(method)); err != nil {
		c.d.reportError("updating campaign lead", err)
		return err
	}
	return c.Refresh(ctx)
}

// ShowSelectAll reports whether some campaign lead is not selected.
func (c *CampaignController) ShowSelectAll() bool {
	return len(c.d.App.CampaignPage.Get().SelectedLeads) != len(c.Campaign().Leads)
}

func (c *CampaignController) ToggleSelected(leadID int) {
	c.d.App.CampaignPage.Update(func(p state.CampaignPage) state.CampaignPage {
		if i := slices.Index(p.SelectedLeads, leadID); i >= 0 {
			p.SelectedLeads = slices.Delete(slices.Clone(p.SelectedLeads), i, i+1)
		} else {
			p.SelectedLeads = append(slices.Clone(p.SelectedLeads), leadID)
		}
		return p
	})
}

func (c *CampaignController) SelectAll() {
	ids := c.Campaign().LeadIDs()
	c.d.App.CampaignPage.Update(func(p state.CampaignPage) state.CampaignPage {
		p.SelectedLeads = ids
		return p
	})
}

// UnselectAll clears the selection and leaves the multi-lead tab.
func (c *CampaignController) UnselectAll() {
	c.d.App.CampaignPage.Update(func(p state.CampaignPage) state.CampaignPage {
		p.SelectedLeads = []int{}
		if p.Tab == state.TabMulti {
			p.Tab = state.TabConnect
		}
		return p
	})
}

// Composer prepares an email to leadIDs, or to the selected leads when
// none are given. It fails when the user has no Google account connected.
func (c *CampaignController) Composer(leadIDs ...int) (*EmailComposer, error) {
	user := c.d.App.User()
	if user == nil {
		return nil, ErrNotLoggedIn
	}
	if !user.GmailConnected {
		c.d.App.GoogleRequired.Set(true)
		return nil, ErrGoogleRequired
	}
	if len(leadIDs) == 0 {
		leadIDs = c.d.App.CampaignPage.Get().SelectedLeads
	}

	c.mu.Lock()
	var to []models.Lead
	for _, l := range c.leads {
		if slices.Contains(leadIDs, l.LeadID) {
			to = append(to, l)
		}
	}
	c.mu.Unlock()
	if len(to) == 0 {
		return nil, ErrNothingSelected
	}
	return NewEmailComposer(c.d, *user, to), nil
}

// SendEmail submits the composer and marks every lead that was mailed as
// contacted by email.
func (c *CampaignController) SendEmail(ctx context.Context, e *EmailComposer) (models.CampaignEmailSendResponse, error) {
	resp, err := e.Submit(ctx)
	if err != nil {
		return resp, err
	}
	return resp, c.onEmailSent(ctx, resp)
}

func (c *CampaignController) onEmailSent(ctx context.Context, resp models.CampaignEmailSendResponse) error {
	camp := c.Campaign()
	var g errgroup.Group
	sent := 0
	for _, r := range resp.Results {
		if r.Status != models.StatusSent {
			continue
		}
		sent++
		cl, ok := camp.FindLead(r.LeadID)
		if !ok || cl.Has(models.ContactEmail) {
			continue
		}
		g.Go(func() error {
			_, err := c.d.API.UpdateCampaignLead(ctx, camp.CampaignID, cl.LeadID, cl.Toggled(models.ContactEmail))
			if err != nil {
				c.d.Logger.Warn("marking lead emailed failed", zap.Int("lead_id", cl.LeadID), zap.Error(err))
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		c.d.reportError("updating campaign lead", err)
	}

	if sent > 0 {
		msg := "Email delivered successfully!"
		if sent > 1 {
			msg = "Emails delivered successfully!"
		}
		c.d.Notify.Success(msg)
	}
	return c.Refresh(ctx)
}
