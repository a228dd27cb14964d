// ABOUTME: Kanban board view models
// ABOUTME: Boards hold ordered steps, each step holds either lead cards or property cards
package models

// MaxBoardSteps caps the template columns created with a new board.
const MaxBoardSteps = 5

// DefaultStepTemplate names the columns offered when creating a new board.
var DefaultStepTemplate = []string{"To Do", "In Progress", "Review", "Done", "Backlog"}

type Board struct {
	BoardID   int         `json:"boardId"`
	BoardName string      `json:"boardName"`
	UserID    *int        `json:"userId,omitempty"`
	Steps     []BoardStep `json:"steps"`
}

// Step finds a step by id.
func (b Board) Step(stepID int) (BoardStep, bool) {
	for _, s := range b.Steps {
		if s.BoardStepID == stepID {
			return s, true
		}
	}
	return BoardStep{}, false
}

// NextColumn is one past the highest column in use. Columns start at 1.
func (b Board) NextColumn() int {
	next := 1
	for _, s := range b.Steps {
		if s.BoardColumn >= next {
			next = s.BoardColumn + 1
		}
	}
	return next
}

type BoardStep struct {
	BoardStepID int            `json:"boardStepId"`
	BoardID     int            `json:"boardId"`
	BoardColumn int            `json:"boardColumn"`
	StepName    string         `json:"stepName"`
	Leads       []LeadCard     `json:"leads"`
	Properties  []PropertyCard `json:"properties"`
}

// StepKind says what a step currently holds. A step never mixes both.
type StepKind int

const (
	StepEmpty StepKind = iota
	StepLeads
	StepProperties
)

func (s BoardStep) Kind() StepKind {
	switch {
	case len(s.Leads) > 0:
		return StepLeads
	case len(s.Properties) > 0:
		return StepProperties
	}
	return StepEmpty
}

func (s BoardStep) LeadIDs() []int {
	ids := make([]int, len(s.Leads))
	for i, l := range s.Leads {
		ids[i] = l.LeadID
	}
	return ids
}

func (s BoardStep) PropertyIDs() []int {
	ids := make([]int, len(s.Properties))
	for i, p := range s.Properties {
		ids[i] = p.PropertyID
	}
	return ids
}

type LeadCard struct {
	LeadID     int      `json:"leadId"`
	PersonType string   `json:"personType"`
	Business   string   `json:"business"`
	Website    string   `json:"website"`
	LicenseNum string   `json:"licenseNum"`
	Notes      string   `json:"notes"`
	CreatedBy  *int     `json:"createdBy,omitempty"`
	Contact    *Contact `json:"contact,omitempty"`
	Address    *Address `json:"address,omitempty"`
}

// Title is the best human label for the card.
func (l LeadCard) Title() string {
	if l.Business != "" {
		return l.Business
	}
	if l.Contact != nil {
		if name := l.Contact.FullName(); name != "" {
			return name
		}
	}
	return "Lead"
}

type PropertyCard struct {
	PropertyID   int      `json:"propertyId"`
	PropertyName string   `json:"propertyName"`
	MLSNumber    string   `json:"mlsNumber"`
	Notes        string   `json:"notes"`
	AddressID    *int     `json:"addressId,omitempty"`
	Address      *Address `json:"address,omitempty"`
}
