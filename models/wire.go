// ABOUTME: Wire-format (snake_case JSON) shapes returned by the Zala REST API
// ABOUTME: Validation tags mark the fields a response must carry to be normalized
package models

type WireContact struct {
	ContactID int    `json:"contact_id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type WireAddress struct {
	AddressID int     `json:"address_id,omitempty"`
	Street1   string  `json:"street_1"`
	Street2   string  `json:"street_2"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Zipcode   string  `json:"zipcode"`
	Lat       float64 `json:"lat"`
	Long      float64 `json:"long"`
}

type WireUserRef struct {
	UserID     int    `json:"user_id"`
	Username   string `json:"username,omitempty"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

type WireLead struct {
	LeadID        int          `json:"lead_id"`
	PersonType    string       `json:"person_type"`
	Business      string       `json:"business"`
	Website       string       `json:"website"`
	LicenseNum    string       `json:"license_num"`
	Notes         string       `json:"notes"`
	CreatedBy     *int         `json:"created_by"`
	CreatedByUser *WireUserRef `json:"created_by_user"`
	ContactID     *int         `json:"contact_id"`
	AddressID     *int         `json:"address_id"`
	Contact       *WireContact `json:"contact" validate:"required"`
	Address       *WireAddress `json:"address" validate:"required"`
}

// WireSourceLead is a lead from the search endpoint with provenance attached.
type WireSourceLead struct {
	WireLead
	Source        string   `json:"source"`
	DistanceMiles *float64 `json:"distance_miles"`
}

type WireSearchResponse struct {
	AggregatedLeads     []WireSourceLead          `json:"aggregated_leads"`
	NormalizedLocation  map[string]any            `json:"normalized_location,omitempty"`
	ExternalPersistence map[string]map[string]any `json:"external_persistence,omitempty"`
	Errors              map[string]string         `json:"errors,omitempty"`
}

type WireUser struct {
	UserID         int          `json:"user_id" validate:"required"`
	Username       string       `json:"username"`
	ProfilePic     string       `json:"profile_pic"`
	Role           string       `json:"role"`
	XP             int          `json:"xp"`
	Contact        *WireContact `json:"contact"`
	GmailConnected bool         `json:"gmail_connected"`
}

type WireCampaignRef struct {
	CampaignID   int    `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
}

type WireLeadRef struct {
	LeadID     int          `json:"lead_id"`
	PersonType string       `json:"person_type,omitempty"`
	Contact    *WireContact `json:"contact,omitempty"`
}

type WireCampaignLead struct {
	PhoneContacted bool             `json:"phone_contacted"`
	SMSContacted   bool             `json:"sms_contacted"`
	EmailContacted bool             `json:"email_contacted"`
	CampaignID     int              `json:"campaign_id,omitempty"`
	LeadID         int              `json:"lead_id,omitempty"`
	Campaign       *WireCampaignRef `json:"campaign,omitempty"`
	Lead           *WireLeadRef     `json:"lead,omitempty"`
}

type WireCampaign struct {
	CampaignID   int                `json:"campaign_id" validate:"required"`
	CampaignName string             `json:"campaign_name"`
	UserID       int                `json:"user_id"`
	User         *WireUser          `json:"user,omitempty"`
	Leads        []WireCampaignLead `json:"leads"`
}

type WireCampaignEmail struct {
	MessageID      int              `json:"message_id" validate:"required"`
	CampaignID     int              `json:"campaign_id"`
	LeadID         *int             `json:"lead_id"`
	MessageSubject string           `json:"message_subject"`
	MessageBody    string           `json:"message_body"`
	FromName       *string          `json:"from_name"`
	Timestamp      string           `json:"timestamp"`
	ToEmail        *string          `json:"to_email"`
	GmailMessageID *string          `json:"gmail_message_id"`
	GmailThreadID  *string          `json:"gmail_thread_id"`
	SendStatus     string           `json:"send_status"`
	ErrorDetail    *string          `json:"error_detail"`
	Campaign       *WireCampaignRef `json:"campaign"`
	Lead           *WireLeadRef     `json:"lead"`
}

type WireSendResult struct {
	LeadID      int     `json:"lead_id"`
	ToEmail     *string `json:"to_email"`
	Status      string  `json:"status"`
	ErrorDetail *string `json:"error_detail"`
	MessageID   *int    `json:"message_id"`
}

type WireSendResponse struct {
	Campaign *WireCampaign    `json:"campaign" validate:"required"`
	Results  []WireSendResult `json:"results"`
}

type WireBoardSummary struct {
	BoardID   int          `json:"board_id" validate:"required"`
	BoardName string       `json:"board_name"`
	UserID    *int         `json:"user_id"`
	User      *WireUserRef `json:"user"`
}

type WireLeadCard struct {
	LeadID        int          `json:"lead_id"`
	PersonType    string       `json:"person_type"`
	Business      string       `json:"business"`
	Website       string       `json:"website"`
	LicenseNum    string       `json:"license_num"`
	Notes         string       `json:"notes"`
	CreatedBy     *int         `json:"created_by"`
	CreatedByUser *WireUserRef `json:"created_by_user"`
	Contact       *WireContact `json:"contact"`
	Address       *WireAddress `json:"address"`
}

type WirePropertyCard struct {
	PropertyID   int          `json:"property_id"`
	PropertyName string       `json:"property_name"`
	MLSNumber    string       `json:"mls_number"`
	Notes        string       `json:"notes"`
	AddressID    *int         `json:"address_id"`
	Address      *WireAddress `json:"address"`
}

type WireBoardStep struct {
	BoardStepID int                `json:"board_step_id" validate:"required"`
	BoardID     int                `json:"board_id"`
	BoardColumn int                `json:"board_column"`
	StepName    string             `json:"step_name"`
	Leads       []WireLeadCard     `json:"leads"`
	Properties  []WirePropertyCard `json:"properties"`
}

type WireBoard struct {
	WireBoardSummary
	BoardSteps []WireBoardStep `json:"board_steps" validate:"dive"`
}
