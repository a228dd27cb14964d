// ABOUTME: Campaign email composer with the default outreach template
// ABOUTME: Sends one message per lead and reports partial or total failure
package pages

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"strings"

	"github.com/badoux/checkmail"
	"go.uber.org/zap"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/models"
)

// PartialFailureMessage is shown when some or all messages bounced.
const PartialFailureMessage = "Some emails failed to be delivered... please try again later"

var ErrAllEmailsFailed = errors.New("every email failed to send")

const referralSubject = "Opportunity for Mutual Lead Sharing & Cross-Market Referrals"

var referralBody = template.Must(template.New("referral").Parse(`<p>Hello,<br><br></p>
<p>I hope you're doing well. My name is <b>{{.Name}}</b>, and I'm reaching out to explore the possibility of collaborating on lead sharing and cross-market referrals. I currently work with buyers and sellers who are considering opportunities in a variety of markets, and I often encounter clients looking for trusted local agents outside of my primary area.<br><br></p>
<p>I'm looking to build strong connections with reliable agents in different regions so we can exchange potential leads when our clients express interest in relocating, investing, or exploring properties in markets outside our own. In return, I'm happy to share qualified leads or referrals for opportunities that arise in my area, and I would welcome the chance to send interested clients your way as well.<br><br></p>
<p>There's no commitment or formal arrangement needed, simply an open line of communication so we can help each other serve clients more effectively and create additional opportunities for both sides.<br><br></p>
<p>If this sounds like something you'd be open to, I'd be glad to connect further and learn a bit more about your market focus.<br><br></p>
<p>Thank you for your time, and I look forward to the possibility of working together.<br><br></p>
<p>Best regards,<br><span style="font-weight: bolder;">{{.Name}}</span><br><span style="font-weight: 700;">{{.Email}}</span>{{if and .Email .Phone}} - <span style="font-weight: bolder;">{{.Phone}}</span>{{end}}</p>`))

type EmailTemplate struct {
	Subject string
	Body    string
}

// DefaultTemplate fills the referral template with the sender's details.
func DefaultTemplate(user models.User) EmailTemplate {
	var c models.Contact
	if user.Contact != nil {
		c = *user.Contact
	}
	var buf bytes.Buffer
	// the template is static and its data is plain strings
	_ = referralBody.Execute(&buf, struct{ Name, Email, Phone string }{c.FullName(), c.Email, c.Phone})
	return EmailTemplate{Subject: referralSubject, Body: buf.String()}
}

// EmailComposer holds an email being written to a set of campaign leads.
type EmailComposer struct {
	d     Deps
	leads []models.Lead

	From    string
	Subject string
	Body    string
}

func NewEmailComposer(d Deps, sender models.User, leads []models.Lead) *EmailComposer {
	t := DefaultTemplate(sender)
	from := ""
	if sender.Contact != nil {
		from = sender.Contact.FullName()
	}
	return &EmailComposer{
		d:       d.withDefaults(),
		leads:   leads,
		From:    from,
		Subject: t.Subject,
		Body:    t.Body,
	}
}

// Recipients splits the leads into those with a usable address and those without.
func (e *EmailComposer) Recipients() (ok, skipped []models.Lead) {
	for _, l := range e.leads {
		if checkmail.ValidateFormat(strings.TrimSpace(l.Contact.Email)) != nil {
			skipped = append(skipped, l)
			continue
		}
		ok = append(ok, l)
	}
	return ok, skipped
}

// Submit sends the email to every recipient and stores the campaign the
// backend returns. Partial failure is reported but not an error.
func (e *EmailComposer) Submit(ctx context.Context) (models.CampaignEmailSendResponse, error) {
	camp := e.d.App.Campaign.Get()
	if !camp.IsLoaded() {
		return models.CampaignEmailSendResponse{}, api.ErrNoCampaign
	}

	to, skipped := e.Recipients()
	for _, l := range skipped {
		e.d.Logger.Info("skipping lead without a valid email",
			zap.Int("lead_id", l.LeadID),
			zap.String("email", l.Contact.Email))
	}
	if len(to) == 0 {
		e.d.Notify.Error("None of the selected leads have a valid email address")
		return models.CampaignEmailSendResponse{}, ErrNothingSelected
	}

	ids := make([]int, len(to))
	for i, l := range to {
		ids[i] = l.LeadID
	}
	resp, err := e.d.API.SendCampaignEmail(ctx, api.SendInput{
		CampaignID: camp.CampaignID,
		LeadIDs:    ids,
		Subject:    e.Subject,
		Body:       e.Body,
		FromName:   e.From,
	})
	if err != nil {
		e.d.reportError("sending campaign email", err)
		return resp, err
	}
	e.d.App.Campaign.Set(resp.Campaign)

	failed := resp.Failed()
	if len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, f := range failed {
			details = append(details, f.ErrorDetail)
		}
		e.d.reportError("sending campaign email", errors.New(strings.Join(details, ", ")), WithMessage(PartialFailureMessage))
	}
	if len(failed) == len(resp.Results) && len(failed) > 0 {
		return resp, ErrAllEmailsFailed
	}
	return resp, nil
}
