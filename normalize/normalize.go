// ABOUTME: Maps wire-format API objects into view models
// ABOUTME: Every mapper returns (T, error) and reports malformed input as a ValidationError
package normalize

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/harperreed/zala/models"
)

var validate = newValidator()

// newValidator reports fields by their wire (json) names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError reports a wire object that is missing data a view model
// cannot do without.
type ValidationError struct {
	Entity string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("malformed %s response", e.Entity)
	}
	return fmt.Sprintf("malformed %s response: %s", e.Entity, strings.Join(e.Fields, ", "))
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func check(entity string, v any) error {
	if v == nil {
		return &ValidationError{Entity: entity, Fields: []string{"body is required"}}
	}
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Entity: entity, Fields: []string{err.Error()}}
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			fields = append(fields, field+" is required")
		default:
			fields = append(fields, field+" is invalid")
		}
	}
	return &ValidationError{Entity: entity, Fields: fields}
}

func Contact(w *models.WireContact) (models.Contact, error) {
	if w == nil {
		return models.Contact{}, &ValidationError{Entity: "contact", Fields: []string{"contact is required"}}
	}
	return models.Contact{
		ContactID: w.ContactID,
		FirstName: w.FirstName,
		LastName:  w.LastName,
		Email:     w.Email,
		Phone:     w.Phone,
	}, nil
}

func Address(w *models.WireAddress) (models.Address, error) {
	if w == nil {
		return models.Address{}, &ValidationError{Entity: "address", Fields: []string{"address is required"}}
	}
	return models.Address{
		AddressID: w.AddressID,
		Street1:   w.Street1,
		Street2:   w.Street2,
		City:      w.City,
		State:     w.State,
		Zipcode:   w.Zipcode,
		Lat:       w.Lat,
		Long:      w.Long,
	}, nil
}

// Lead requires both the nested contact and address.
func Lead(w *models.WireLead) (models.Lead, error) {
	if w == nil {
		return models.Lead{}, check("lead", nil)
	}
	if err := check("lead", w); err != nil {
		return models.Lead{}, err
	}

	contact, err := Contact(w.Contact)
	if err != nil {
		return models.Lead{}, err
	}
	address, err := Address(w.Address)
	if err != nil {
		return models.Lead{}, err
	}

	return models.Lead{
		LeadID:     w.LeadID,
		PersonType: w.PersonType,
		LicenseNum: w.LicenseNum,
		Buisness:   w.Business,
		Website:    w.Website,
		Notes:      w.Notes,
		Contact:    contact,
		Address:    address,
		CreatedBy:  w.CreatedBy,
	}, nil
}

// SourceResult attaches provenance read from the wire object to an already
// normalized inner value.
func SourceResult[T any](source string, distanceMiles *float64, inner T) models.SourceResult[T] {
	return models.SourceResult[T]{
		Result:        inner,
		Source:        models.LeadSource(source),
		DistanceMiles: distanceMiles,
	}
}

func SourceLead(w *models.WireSourceLead) (models.SourceLead, error) {
	if w == nil {
		return models.SourceLead{}, check("lead", nil)
	}
	lead, err := Lead(&w.WireLead)
	if err != nil {
		return models.SourceLead{}, err
	}
	return SourceResult(w.Source, w.DistanceMiles, lead), nil
}

// ContactMethods maps the three wire flags to methods in phone, sms, email order.
func ContactMethods(phone, sms, email bool) []models.ContactMethod {
	methods := make([]models.ContactMethod, 0, 3)
	if phone {
		methods = append(methods, models.ContactPhone)
	}
	if sms {
		methods = append(methods, models.ContactSMS)
	}
	if email {
		methods = append(methods, models.ContactEmail)
	}
	return methods
}

func CampaignLead(w *models.WireCampaignLead) (models.CampaignLead, error) {
	if w == nil {
		return models.CampaignLead{}, check("campaign lead", nil)
	}

	campaignID := w.CampaignID
	if w.Campaign != nil {
		campaignID = w.Campaign.CampaignID
	}
	leadID := w.LeadID
	if w.Lead != nil {
		leadID = w.Lead.LeadID
	}
	if leadID == 0 {
		return models.CampaignLead{}, &ValidationError{Entity: "campaign lead", Fields: []string{"lead_id is required"}}
	}

	return models.CampaignLead{
		CampaignID:     campaignID,
		LeadID:         leadID,
		ContactMethods: ContactMethods(w.PhoneContacted, w.SMSContacted, w.EmailContacted),
	}, nil
}

func Campaign(w *models.WireCampaign) (models.Campaign, error) {
	if w == nil {
		return models.Campaign{}, check("campaign", nil)
	}
	if err := check("campaign", w); err != nil {
		return models.Campaign{}, err
	}

	leads := make([]models.CampaignLead, 0, len(w.Leads))
	for i := range w.Leads {
		cl, err := CampaignLead(&w.Leads[i])
		if err != nil {
			return models.Campaign{}, fmt.Errorf("campaign %d lead %d: %w", w.CampaignID, i, err)
		}
		if cl.CampaignID == 0 {
			cl.CampaignID = w.CampaignID
		}
		leads = append(leads, cl)
	}

	c := models.Campaign{
		CampaignID:   w.CampaignID,
		UserID:       w.UserID,
		CampaignName: w.CampaignName,
		Leads:        leads,
	}
	if w.User != nil {
		u, err := User(w.User)
		if err != nil {
			return models.Campaign{}, err
		}
		c.User = &u
	}
	return c, nil
}

func User(w *models.WireUser) (models.User, error) {
	if w == nil {
		return models.User{}, check("user", nil)
	}
	if err := check("user", w); err != nil {
		return models.User{}, err
	}

	u := models.User{
		UserID:         w.UserID,
		Username:       w.Username,
		ProfilePic:     w.ProfilePic,
		Role:           w.Role,
		XP:             w.XP,
		GmailConnected: w.GmailConnected,
	}
	if w.Contact != nil {
		c, _ := Contact(w.Contact)
		u.Contact = &c
	}
	return u, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp accepts RFC3339 and the zone-less ISO forms the backend emits.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func CampaignEmail(w *models.WireCampaignEmail) (models.CampaignEmail, error) {
	if w == nil {
		return models.CampaignEmail{}, check("campaign email", nil)
	}
	if err := check("campaign email", w); err != nil {
		return models.CampaignEmail{}, err
	}

	ts, err := parseTimestamp(w.Timestamp)
	if err != nil {
		return models.CampaignEmail{}, &ValidationError{Entity: "campaign email", Fields: []string{err.Error()}}
	}

	status := models.SendStatus(w.SendStatus)
	switch status {
	case models.StatusDraft, models.StatusSent, models.StatusFailed:
	case "":
		status = models.StatusDraft
	default:
		return models.CampaignEmail{}, &ValidationError{Entity: "campaign email", Fields: []string{"send_status is invalid"}}
	}

	e := models.CampaignEmail{
		MessageID:      w.MessageID,
		CampaignID:     w.CampaignID,
		LeadID:         w.LeadID,
		Subject:        w.MessageSubject,
		Body:           w.MessageBody,
		FromName:       deref(w.FromName),
		Timestamp:      ts,
		ToEmail:        deref(w.ToEmail),
		GmailMessageID: deref(w.GmailMessageID),
		GmailThreadID:  deref(w.GmailThreadID),
		SendStatus:     status,
		ErrorDetail:    w.ErrorDetail,
	}
	if w.Campaign != nil {
		e.Campaign = &models.CampaignSummary{
			CampaignID:   w.Campaign.CampaignID,
			CampaignName: w.Campaign.CampaignName,
		}
	}
	if w.Lead != nil {
		e.Lead = &models.LeadSummary{LeadID: w.Lead.LeadID}
		if w.Lead.Contact != nil {
			c, _ := Contact(w.Lead.Contact)
			e.Lead.Contact = &c
		}
	}
	return e, nil
}

func CampaignEmailSendResult(w *models.WireSendResult) models.CampaignEmailSendResult {
	return models.CampaignEmailSendResult{
		LeadID:      w.LeadID,
		ToEmail:     deref(w.ToEmail),
		Status:      models.SendStatus(w.Status),
		ErrorDetail: deref(w.ErrorDetail),
		MessageID:   w.MessageID,
	}
}

func CampaignEmailSendResponse(w *models.WireSendResponse) (models.CampaignEmailSendResponse, error) {
	if w == nil {
		return models.CampaignEmailSendResponse{}, check("send response", nil)
	}
	if err := check("send response", w); err != nil {
		return models.CampaignEmailSendResponse{}, err
	}

	campaign, err := Campaign(w.Campaign)
	if err != nil {
		return models.CampaignEmailSendResponse{}, err
	}
	results := make([]models.CampaignEmailSendResult, len(w.Results))
	for i := range w.Results {
		results[i] = CampaignEmailSendResult(&w.Results[i])
	}
	return models.CampaignEmailSendResponse{Campaign: campaign, Results: results}, nil
}
