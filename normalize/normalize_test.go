// ABOUTME: Tests for wire-to-view-model normalization
// ABOUTME: Covers lead round trips, contact-method flags and validation failures
package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/harperreed/zala/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leadJSON = `{
	"lead_id": 7,
	"person_type": "person",
	"business": "Acme",
	"website": "https://acme.example",
	"license_num": "LIC-1",
	"notes": "call after 5",
	"created_by": 2,
	"contact": {"contact_id": 3, "first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com", "phone": "555-0100"},
	"address": {"address_id": 4, "street_1": "1 Main St", "street_2": "", "city": "Henrietta", "state": "NY", "zipcode": "14467", "lat": 43.05, "long": -77.61}
}`

func TestLeadRoundTrip(t *testing.T) {
	var w models.WireLead
	require.NoError(t, json.Unmarshal([]byte(leadJSON), &w))

	got, err := Lead(&w)
	require.NoError(t, err)

	createdBy := 2
	want := models.Lead{
		LeadID:     7,
		PersonType: "person",
		LicenseNum: "LIC-1",
		Buisness:   "Acme",
		Website:    "https://acme.example",
		Notes:      "call after 5",
		CreatedBy:  &createdBy,
		Contact: models.Contact{
			ContactID: 3, FirstName: "Ada", LastName: "Lovelace",
			Email: "ada@example.com", Phone: "555-0100",
		},
		Address: models.Address{
			AddressID: 4, Street1: "1 Main St", City: "Henrietta",
			State: "NY", Zipcode: "14467", Lat: 43.05, Long: -77.61,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lead mismatch (-want +got):\n%s", diff)
	}
}

func TestLeadViewModelKeepsBuisnessKey(t *testing.T) {
	var w models.WireLead
	require.NoError(t, json.Unmarshal([]byte(leadJSON), &w))
	lead, err := Lead(&w)
	require.NoError(t, err)

	raw, err := json.Marshal(lead)
	require.NoError(t, err)

	var view map[string]any
	require.NoError(t, json.Unmarshal(raw, &view))
	assert.Equal(t, "Acme", view["buisness"])
	assert.EqualValues(t, 7, view["leadId"])
}

func TestLeadMissingContactOrAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"no contact", `{"lead_id": 1, "address": {"city": "x"}}`, "contact is required"},
		{"no address", `{"lead_id": 1, "contact": {"first_name": "x"}}`, "address is required"},
		{"null contact", `{"lead_id": 1, "contact": null, "address": {}}`, "contact is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w models.WireLead
			require.NoError(t, json.Unmarshal([]byte(tt.input), &w))

			_, err := Lead(&w)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "lead", ve.Entity)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestNilInputsAreValidationErrors(t *testing.T) {
	_, err := Lead(nil)
	assert.True(t, IsValidationError(err))
	_, err = Campaign(nil)
	assert.True(t, IsValidationError(err))
	_, err = User(nil)
	assert.True(t, IsValidationError(err))
	_, err = Contact(nil)
	assert.True(t, IsValidationError(err))
	_, err = Address(nil)
	assert.True(t, IsValidationError(err))
	_, err = CampaignEmail(nil)
	assert.True(t, IsValidationError(err))
}

func TestSourceLeadAttachesProvenance(t *testing.T) {
	input := `{"lead_id": 9, "business": "B", "contact": {}, "address": {}, "source": "gpt", "distance_miles": 1.25}`
	var w models.WireSourceLead
	require.NoError(t, json.Unmarshal([]byte(input), &w))

	sl, err := SourceLead(&w)
	require.NoError(t, err)
	assert.Equal(t, models.SourceGPT, sl.Source)
	require.NotNil(t, sl.DistanceMiles)
	assert.InDelta(t, 1.25, *sl.DistanceMiles, 1e-9)
	assert.Equal(t, 9, sl.Result.LeadID)
	assert.Equal(t, "B", sl.Result.Buisness)
}

func TestSourceLeadWithoutDistance(t *testing.T) {
	input := `{"lead_id": 9, "contact": {}, "address": {}, "source": "db", "distance_miles": null}`
	var w models.WireSourceLead
	require.NoError(t, json.Unmarshal([]byte(input), &w))

	sl, err := SourceLead(&w)
	require.NoError(t, err)
	assert.Nil(t, sl.DistanceMiles)
}

func TestCampaignLeadContactMethodsExhaustive(t *testing.T) {
	for mask := 0; mask < 8; mask++ {
		phone := mask&1 != 0
		sms := mask&2 != 0
		email := mask&4 != 0

		w := models.WireCampaignLead{
			PhoneContacted: phone,
			SMSContacted:   sms,
			EmailContacted: email,
			Campaign:       &models.WireCampaignRef{CampaignID: 1},
			Lead:           &models.WireLeadRef{LeadID: 2},
		}
		cl, err := CampaignLead(&w)
		require.NoError(t, err)

		var want []models.ContactMethod
		if phone {
			want = append(want, models.ContactPhone)
		}
		if sms {
			want = append(want, models.ContactSMS)
		}
		if email {
			want = append(want, models.ContactEmail)
		}

		assert.Len(t, cl.ContactMethods, len(want), "mask=%03b", mask)
		if len(want) > 0 {
			assert.Equal(t, want, cl.ContactMethods, "mask=%03b", mask)
		}
		seen := map[models.ContactMethod]bool{}
		for _, m := range cl.ContactMethods {
			assert.False(t, seen[m], "duplicate %s for mask=%03b", m, mask)
			seen[m] = true
		}
	}
}

func TestCampaignNormalization(t *testing.T) {
	input := `{
		"campaign_id": 12,
		"campaign_name": "Spring",
		"user_id": 5,
		"user": {"user_id": 5, "username": "ada", "xp": 40},
		"leads": [
			{"phone_contacted": true, "sms_contacted": false, "email_contacted": true,
			 "campaign": {"campaign_id": 12, "campaign_name": "Spring"},
			 "lead": {"lead_id": 100, "person_type": "person"}},
			{"phone_contacted": false, "sms_contacted": false, "email_contacted": false,
			 "lead_id": 101}
		]
	}`
	var w models.WireCampaign
	require.NoError(t, json.Unmarshal([]byte(input), &w))

	c, err := Campaign(&w)
	require.NoError(t, err)
	assert.Equal(t, 12, c.CampaignID)
	assert.Equal(t, "Spring", c.CampaignName)
	assert.Equal(t, 5, c.UserID)
	require.NotNil(t, c.User)
	assert.Equal(t, "ada", c.User.Username)
	require.Len(t, c.Leads, 2)
	assert.Equal(t, []models.ContactMethod{models.ContactPhone, models.ContactEmail}, c.Leads[0].ContactMethods)
	assert.Equal(t, 12, c.Leads[1].CampaignID)
	assert.Equal(t, 101, c.Leads[1].LeadID)
	assert.Empty(t, c.Leads[1].ContactMethods)
}

func TestCampaignRequiresID(t *testing.T) {
	var w models.WireCampaign
	require.NoError(t, json.Unmarshal([]byte(`{"campaign_name": "x"}`), &w))

	_, err := Campaign(&w)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "campaign_id is required")
}

func TestLeadWithoutIDIsAllowed(t *testing.T) {
	w := models.WireLead{
		Business: "Unsaved hit",
		Contact:  &models.WireContact{FirstName: "Ada"},
		Address:  &models.WireAddress{City: "Rochester"},
	}
	lead, err := Lead(&w)
	require.NoError(t, err)
	assert.Zero(t, lead.LeadID)
	assert.Empty(t, lead.PersonType)
}

func TestCampaignLeadWithoutLeadIDFails(t *testing.T) {
	w := models.WireCampaign{CampaignID: 1, Leads: []models.WireCampaignLead{{PhoneContacted: true}}}
	_, err := Campaign(&w)
	assert.True(t, IsValidationError(err))
}

func TestUserNormalization(t *testing.T) {
	input := `{"user_id": 3, "username": "ada", "profile_pic": "p.png", "role": "agent", "xp": 10,
		"gmail_connected": true, "contact": {"contact_id": 8, "first_name": "Ada", "last_name": "L"}}`
	var w models.WireUser
	require.NoError(t, json.Unmarshal([]byte(input), &w))

	u, err := User(&w)
	require.NoError(t, err)
	assert.Equal(t, 3, u.UserID)
	assert.True(t, u.GmailConnected)
	require.NotNil(t, u.Contact)
	assert.Equal(t, "Ada L", u.Contact.FullName())
}

func TestCampaignEmailNormalization(t *testing.T) {
	input := `{
		"message_id": 44, "campaign_id": 12, "lead_id": null,
		"message_subject": "Hi", "message_body": "<p>Hello</p>",
		"from_name": null, "timestamp": "2025-03-01T10:30:00",
		"to_email": "a@example.com", "send_status": "failed", "error_detail": "bounced",
		"campaign": {"campaign_id": 12, "campaign_name": "Spring"},
		"lead": {"lead_id": 100, "contact": {"first_name": "Ada", "last_name": "L", "email": "a@example.com"}}
	}`
	var w models.WireCampaignEmail
	require.NoError(t, json.Unmarshal([]byte(input), &w))

	e, err := CampaignEmail(&w)
	require.NoError(t, err)
	assert.Equal(t, 44, e.MessageID)
	assert.Nil(t, e.LeadID)
	assert.Equal(t, "", e.FromName)
	assert.Equal(t, "", e.GmailThreadID)
	assert.Equal(t, models.StatusFailed, e.SendStatus)
	require.NotNil(t, e.ErrorDetail)
	assert.Equal(t, "bounced", *e.ErrorDetail)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC), e.Timestamp)
	require.NotNil(t, e.Campaign)
	assert.Equal(t, "Spring", e.Campaign.CampaignName)
	require.NotNil(t, e.Lead)
	require.NotNil(t, e.Lead.Contact)
	assert.Equal(t, "a@example.com", e.Lead.Contact.Email)
}

func TestCampaignEmailDefaultsToDraft(t *testing.T) {
	w := models.WireCampaignEmail{MessageID: 1}
	e, err := CampaignEmail(&w)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, e.SendStatus)
	assert.True(t, e.Timestamp.IsZero())
}

func TestCampaignEmailRejectsUnknownStatus(t *testing.T) {
	w := models.WireCampaignEmail{MessageID: 1, SendStatus: "queued"}
	_, err := CampaignEmail(&w)
	assert.True(t, IsValidationError(err))
}

func TestCampaignEmailRejectsBadTimestamp(t *testing.T) {
	w := models.WireCampaignEmail{MessageID: 1, Timestamp: "yesterday"}
	_, err := CampaignEmail(&w)
	assert.True(t, IsValidationError(err))
}

func TestSendResponseNormalization(t *testing.T) {
	input := `{
		"campaign": {"campaign_id": 2, "campaign_name": "c", "user_id": 1, "leads": []},
		"results": [
			{"lead_id": 1, "to_email": "a@x.com", "status": "sent", "message_id": 9},
			{"lead_id": 2, "status": "failed", "error_detail": "no email"}
		]
	}`
	var w models.WireSendResponse
	require.NoError(t, json.Unmarshal([]byte(input), &w))

	r, err := CampaignEmailSendResponse(&w)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Campaign.CampaignID)
	require.Len(t, r.Results, 2)
	assert.Equal(t, "a@x.com", r.Results[0].ToEmail)
	require.NotNil(t, r.Results[0].MessageID)
	assert.Equal(t, "no email", r.Results[1].ErrorDetail)
	assert.Len(t, r.Failed(), 1)
}

func TestSendResponseRequiresCampaign(t *testing.T) {
	_, err := CampaignEmailSendResponse(&models.WireSendResponse{})
	assert.True(t, IsValidationError(err))
}
