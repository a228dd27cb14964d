// ABOUTME: View models for Zala CRM entities after normalization
// ABOUTME: Defines Contact, Address, Lead, Campaign, CampaignLead, User and CampaignEmail
package models

import (
	"strings"
	"time"
)

// NoCampaignID marks the "no campaign loaded / unsaved" sentinel.
const NoCampaignID = -1

// ContactMethod is a channel a campaign lead has already been reached on.
type ContactMethod string

const (
	ContactPhone ContactMethod = "phone"
	ContactSMS   ContactMethod = "sms"
	ContactEmail ContactMethod = "email"
)

// ContactMethodOrder is the canonical ordering of contact methods.
var ContactMethodOrder = []ContactMethod{ContactPhone, ContactSMS, ContactEmail}

// ParseContactMethod accepts "phone", "sms" or "email" in any case.
func ParseContactMethod(s string) (ContactMethod, bool) {
	switch ContactMethod(strings.ToLower(strings.TrimSpace(s))) {
	case ContactPhone:
		return ContactPhone, true
	case ContactSMS:
		return ContactSMS, true
	case ContactEmail:
		return ContactEmail, true
	}
	return "", false
}

type Contact struct {
	ContactID int    `json:"contactId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// FullName joins first and last name, trimming the gap when one is empty.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type Address struct {
	AddressID int     `json:"addressId"`
	Street1   string  `json:"street1"`
	Street2   string  `json:"street2"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Zipcode   string  `json:"zipcode"`
	Lat       float64 `json:"lat"`
	Long      float64 `json:"long"`
}

// OneLine renders the address as "street, city, state zip" skipping blanks.
func (a Address) OneLine() string {
	var parts []string
	if s := strings.TrimSpace(a.Street1 + " " + a.Street2); s != "" {
		parts = append(parts, s)
	}
	if a.City != "" {
		parts = append(parts, a.City)
	}
	if tail := strings.TrimSpace(a.State + " " + a.Zipcode); tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

type Lead struct {
	LeadID     int    `json:"leadId"`
	PersonType string `json:"personType,omitempty"`
	LicenseNum string `json:"licenseNum"`
	// Buisness keeps the view-model key the web client has always used.
	Buisness  string  `json:"buisness"`
	Website   string  `json:"website"`
	Notes     string  `json:"notes"`
	Contact   Contact `json:"contact"`
	Address   Address `json:"address"`
	CreatedBy *int    `json:"createdBy,omitempty"`
}

// LeadSource identifies the upstream provider that produced a search result.
type LeadSource string

const (
	SourceDB           LeadSource = "db"
	SourceGooglePlaces LeadSource = "google_places"
	SourceRapidAPI     LeadSource = "rapidapi"
	SourceGPT          LeadSource = "gpt"
)

// DefaultLeadSources is substituted whenever a search selects no sources.
var DefaultLeadSources = []LeadSource{SourceDB, SourceGooglePlaces, SourceRapidAPI, SourceGPT}

// ParseLeadSource matches s against the known sources, ignoring case.
func ParseLeadSource(s string) (LeadSource, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, src := range DefaultLeadSources {
		if string(src) == s {
			return src, true
		}
	}
	return "", false
}

// SourceResult wraps an entity with the provider that produced it and its
// distance from the searched location, when the backend could compute one.
type SourceResult[T any] struct {
	Result        T          `json:"result"`
	Source        LeadSource `json:"source"`
	DistanceMiles *float64   `json:"distanceMiles,omitempty"`
}

type SourceLead = SourceResult[Lead]

type CampaignLead struct {
	CampaignID     int             `json:"campaignId"`
	LeadID         int             `json:"leadId"`
	ContactMethods []ContactMethod `json:"contactMethods"`
}

// Has reports whether the method has already been used on this lead.
func (cl CampaignLead) Has(m ContactMethod) bool {
	for _, existing := range cl.ContactMethods {
		if existing == m {
			return true
		}
	}
	return false
}

// Toggled returns the contact methods with m removed if present or added if
// absent, in canonical order. The receiver is left untouched.
func (cl CampaignLead) Toggled(m ContactMethod) []ContactMethod {
	set := make(map[ContactMethod]bool, len(cl.ContactMethods)+1)
	for _, existing := range cl.ContactMethods {
		set[existing] = true
	}
	set[m] = !set[m]

	out := make([]ContactMethod, 0, len(set))
	for _, method := range ContactMethodOrder {
		if set[method] {
			out = append(out, method)
		}
	}
	return out
}

type Campaign struct {
	CampaignID   int            `json:"campaignId"`
	UserID       int            `json:"userId"`
	CampaignName string         `json:"campaignName"`
	Leads        []CampaignLead `json:"leads"`
	User         *User          `json:"user,omitempty"`
}

// DefaultCampaign returns the sentinel held by the campaign store when
// nothing is loaded.
func DefaultCampaign() Campaign {
	return Campaign{CampaignID: NoCampaignID, UserID: NoCampaignID, Leads: []CampaignLead{}}
}

// IsLoaded is false for the sentinel campaign.
func (c Campaign) IsLoaded() bool {
	return c.CampaignID != NoCampaignID
}

func (c Campaign) LeadIDs() []int {
	ids := make([]int, len(c.Leads))
	for i, l := range c.Leads {
		ids[i] = l.LeadID
	}
	return ids
}

// FindLead returns the campaign lead for leadID.
func (c Campaign) FindLead(leadID int) (CampaignLead, bool) {
	for _, l := range c.Leads {
		if l.LeadID == leadID {
			return l, true
		}
	}
	return CampaignLead{}, false
}

type User struct {
	UserID         int      `json:"userId"`
	Username       string   `json:"username"`
	ProfilePic     string   `json:"profilePic"`
	Role           string   `json:"role"`
	XP             int      `json:"xp"`
	Contact        *Contact `json:"contact,omitempty"`
	GmailConnected bool     `json:"gmailConnected"`
}

// DisplayName prefers the contact's full name over the username.
func (u User) DisplayName() string {
	if u.Contact != nil {
		if name := u.Contact.FullName(); name != "" {
			return name
		}
	}
	return u.Username
}

type SendStatus string

const (
	StatusDraft  SendStatus = "draft"
	StatusSent   SendStatus = "sent"
	StatusFailed SendStatus = "failed"
)

type CampaignSummary struct {
	CampaignID   int    `json:"campaignId"`
	CampaignName string `json:"campaignName"`
}

type LeadSummary struct {
	LeadID  int      `json:"leadId"`
	Contact *Contact `json:"contact,omitempty"`
}

type CampaignEmail struct {
	MessageID      int              `json:"messageId"`
	CampaignID     int              `json:"campaignId"`
	LeadID         *int             `json:"leadId,omitempty"`
	Subject        string           `json:"subject"`
	Body           string           `json:"body"`
	FromName       string           `json:"fromName"`
	Timestamp      time.Time        `json:"timestamp"`
	ToEmail        string           `json:"toEmail"`
	GmailMessageID string           `json:"gmailMessageId"`
	GmailThreadID  string           `json:"gmailThreadId"`
	SendStatus     SendStatus       `json:"sendStatus"`
	ErrorDetail    *string          `json:"errorDetail,omitempty"`
	Campaign       *CampaignSummary `json:"campaign,omitempty"`
	Lead           *LeadSummary     `json:"lead,omitempty"`
}

type CampaignEmailSendResult struct {
	LeadID      int        `json:"leadId"`
	ToEmail     string     `json:"toEmail"`
	Status      SendStatus `json:"status"`
	ErrorDetail string     `json:"errorDetail,omitempty"`
	MessageID   *int       `json:"messageId,omitempty"`
}

// CampaignEmailSendResponse is the outcome of a batch send.
type CampaignEmailSendResponse struct {
	Campaign Campaign                  `json:"campaign"`
	Results  []CampaignEmailSendResult `json:"results"`
}

// Failed returns the results that did not reach "sent".
func (r CampaignEmailSendResponse) Failed() []CampaignEmailSendResult {
	var failed []CampaignEmailSendResult
	for _, res := range r.Results {
		if res.Status != StatusSent {
			failed = append(failed, res)
		}
	}
	return failed
}
