package pages

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/models"
)

func TestDefaultTemplate(t *testing.T) {
	user := models.User{Contact: &models.Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "555-0100"}}
	tmpl := DefaultTemplate(user)

	assert.Equal(t, referralSubject, tmpl.Subject)
	assert.Contains(t, tmpl.Body, "My name is <b>Ada Lovelace</b>")
	assert.Contains(t, tmpl.Body, `ada@example.com</span> - <span style="font-weight: bolder;">555-0100</span>`)

	user.Contact.Phone = ""
	assert.NotContains(t, DefaultTemplate(user).Body, "</span> - <span")

	user.Contact.FirstName = "<Ada>"
	assert.Contains(t, DefaultTemplate(user).Body, "&lt;Ada&gt; Lovelace")

	assert.Contains(t, DefaultTemplate(models.User{}).Body, "My name is <b></b>")
}

func campaignLoaded(f *fixture) {
	f.deps.App.Campaign.Set(models.Campaign{
		CampaignID:   7,
		CampaignName: "Q3",
		Leads:        []models.CampaignLead{{CampaignID: 7, LeadID: 11}, {CampaignID: 7, LeadID: 12}},
	})
}

func composerLeads() []models.Lead {
	return []models.Lead{
		{LeadID: 11, Contact: models.Contact{Email: " eleven@x.com "}},
		{LeadID: 12, Contact: models.Contact{Email: "not an email"}},
	}
}

func TestSubmitWithoutCampaign(t *testing.T) {
	f := newFixture(t)
	u := f.login(true)
	e := NewEmailComposer(f.deps, *u, composerLeads())

	_, err := e.Submit(context.Background())
	require.ErrorIs(t, err, api.ErrNoCampaign)
	assert.Empty(t, f.backend.all())
}

func TestSubmitWithoutValidRecipients(t *testing.T) {
	f := newFixture(t)
	u := f.login(true)
	campaignLoaded(f)
	e := NewEmailComposer(f.deps, *u, composerLeads()[1:])

	_, err := e.Submit(context.Background())
	require.ErrorIs(t, err, ErrNothingSelected)
	assert.Empty(t, f.backend.all())
	assert.Len(t, f.notify.errs(), 1)
}

func TestSubmitReportsFailures(t *testing.T) {
	f := newFixture(t)
	u := f.login(true)
	campaignLoaded(f)
	f.backend.reply("POST /api/campaign-emails/send", http.StatusOK, map[string]any{
		"campaign": wireCampaign(7, "Q3 renamed", map[int][]string{11: nil, 12: nil}),
		"results":  []map[string]any{{"lead_id": 11, "status": "failed", "error_detail": "bounced"}},
	})

	e := NewEmailComposer(f.deps, *u, composerLeads())
	e.Subject = "Hello"
	resp, err := e.Submit(context.Background())
	require.ErrorIs(t, err, ErrAllEmailsFailed)
	assert.Len(t, resp.Failed(), 1)
	assert.Equal(t, []string{PartialFailureMessage}, f.notify.errs())
	assert.Equal(t, "Q3 renamed", f.deps.App.Campaign.Get().CampaignName)

	var body struct {
		LeadID  []int  `json:"lead_id"`
		Subject string `json:"message_subject"`
	}
	f.backend.all()[0].decode(t, &body)
	assert.Equal(t, []int{11}, body.LeadID)
	assert.Equal(t, "Hello", body.Subject)
}
