// ABOUTME: Async commands that call the page controllers off the UI loop
// ABOUTME: Each command reports back with a message carrying its error
package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/pages"
)

type searchDoneMsg struct{ err error }

type startDoneMsg struct {
	res pages.StartResult
	err error
}

type campaignLoadedMsg struct{ err error }

type campaignChangedMsg struct{ err error }

type emailSentMsg struct{ err error }

type campaignClosedMsg struct{}

type pastLoadedMsg struct {
	camps []models.Campaign
	err   error
}

type boardsLoadedMsg struct{ err error }

// notifier keeps the latest message for the status line.
type notifier struct {
	mu    sync.Mutex
	msg   string
	isErr bool
}

func (n *notifier) Success(msg string) { n.set(msg, false) }
func (n *notifier) Error(msg string)   { n.set(msg, true) }

func (n *notifier) set(msg string, isErr bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msg, n.isErr = msg, isErr
}

func (n *notifier) Last() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.msg, n.isErr
}

func (m Model) runSearch(query string) tea.Cmd {
	s := m.search
	ctx := m.ctx
	store, d := m.store, m.d
	return func() tea.Msg {
		if err := s.Search(ctx, query); err != nil {
			return searchDoneMsg{err: err}
		}
		if store != nil {
			var names []string
			for _, src := range d.App.SearchFilter.Get().ActiveSources() {
				names = append(names, string(src))
			}
			if _, err := store.RecordSearch(ctx, query, names, len(s.Results())); err != nil && d.Logger != nil {
				d.Logger.Warn("recording search failed", zap.Error(err))
			}
		}
		return searchDoneMsg{}
	}
}

func (m Model) startCampaign() tea.Cmd {
	picks := m.picks
	ctx := m.ctx
	store, logger := m.store, m.d.Logger
	return func() tea.Msg {
		res, err := picks.Start(ctx)
		if len(res.Orphans) > 0 && store != nil {
			if rerr := store.RecordOrphans(ctx, res.Orphans); rerr != nil && logger != nil {
				logger.Warn("recording orphans failed", zap.Error(rerr))
			}
		}
		return startDoneMsg{res: res, err: err}
	}
}

func (m Model) loadCampaign() tea.Cmd {
	c := m.campaign
	ctx := m.ctx
	return func() tea.Msg {
		return campaignLoadedMsg{err: c.Load(ctx)}
	}
}

func (m Model) refreshCampaign() tea.Cmd {
	c := m.campaign
	ctx := m.ctx
	return func() tea.Msg {
		return campaignChangedMsg{err: c.Refresh(ctx)}
	}
}

// toggleContact flips a phone or SMS mark; email sends the default
// template to the lead instead.
func (m Model) toggleContact(leadID int, method models.ContactMethod) tea.Cmd {
	c := m.campaign
	ctx := m.ctx
	return func() tea.Msg {
		openComposer, err := c.ToggleContact(ctx, leadID, method)
		if err != nil || !openComposer {
			return campaignChangedMsg{err: err}
		}
		return sendEmail(ctx, c, leadID)()
	}
}

func (m Model) emailSelected() tea.Cmd {
	c := m.campaign
	ctx := m.ctx
	return sendEmail(ctx, c)
}

func sendEmail(ctx context.Context, c *pages.CampaignController, leadIDs ...int) tea.Cmd {
	return func() tea.Msg {
		composer, err := c.Composer(leadIDs...)
		if errors.Is(err, pages.ErrGoogleRequired) {
			return emailSentMsg{err: errors.New("connect a Google account with `zala login --google` to send email")}
		}
		if err != nil {
			return emailSentMsg{err: err}
		}
		_, err = c.SendEmail(ctx, composer)
		return emailSentMsg{err: err}
	}
}

// closeCampaign saves pending edits and releases the controller.
func (m Model) closeCampaign() tea.Cmd {
	c := m.campaign
	return func() tea.Msg {
		c.Flush()
		c.Close()
		return campaignClosedMsg{}
	}
}

func (m Model) loadPast() tea.Cmd {
	d := m.d
	ctx := m.ctx
	return func() tea.Msg {
		camps, err := pages.PastCampaigns(ctx, d)
		return pastLoadedMsg{camps: camps, err: err}
	}
}

func (m Model) loadBoards() tea.Cmd {
	k := m.kanban
	ctx := m.ctx
	return func() tea.Msg {
		return boardsLoadedMsg{err: k.Load(ctx, 0)}
	}
}
