package normalize

import (
	"sort"

	"github.com/harperreed/zala/models"
)

func optionalContact(w *models.WireContact) *models.Contact {
	if w == nil {
		return nil
	}
	c, _ := Contact(w)
	return &c
}

func optionalAddress(w *models.WireAddress) *models.Address {
	if w == nil {
		return nil
	}
	a, _ := Address(w)
	return &a
}

func LeadCard(w *models.WireLeadCard) models.LeadCard {
	return models.LeadCard{
		LeadID:     w.LeadID,
		PersonType: w.PersonType,
		Business:   w.Business,
		Website:    w.Website,
		LicenseNum: w.LicenseNum,
		Notes:      w.Notes,
		CreatedBy:  w.CreatedBy,
		Contact:    optionalContact(w.Contact),
		Address:    optionalAddress(w.Address),
	}
}

func PropertyCard(w *models.WirePropertyCard) models.PropertyCard {
	return models.PropertyCard{
		PropertyID:   w.PropertyID,
		PropertyName: w.PropertyName,
		MLSNumber:    w.MLSNumber,
		Notes:        w.Notes,
		AddressID:    w.AddressID,
		Address:      optionalAddress(w.Address),
	}
}

func BoardStep(w *models.WireBoardStep) (models.BoardStep, error) {
	if w == nil {
		return models.BoardStep{}, check("board step", nil)
	}
	if err := check("board step", w); err != nil {
		return models.BoardStep{}, err
	}

	step := models.BoardStep{
		BoardStepID: w.BoardStepID,
		BoardID:     w.BoardID,
		BoardColumn: w.BoardColumn,
		StepName:    w.StepName,
		Leads:       make([]models.LeadCard, len(w.Leads)),
		Properties:  make([]models.PropertyCard, len(w.Properties)),
	}
	for i := range w.Leads {
		step.Leads[i] = LeadCard(&w.Leads[i])
	}
	for i := range w.Properties {
		step.Properties[i] = PropertyCard(&w.Properties[i])
	}
	return step, nil
}

// Board returns the board with steps sorted by column.
func Board(w *models.WireBoard) (models.Board, error) {
	if w == nil {
		return models.Board{}, check("board", nil)
	}
	if err := check("board", w); err != nil {
		return models.Board{}, err
	}

	b := models.Board{
		BoardID:   w.BoardID,
		BoardName: w.BoardName,
		UserID:    w.UserID,
		Steps:     make([]models.BoardStep, 0, len(w.BoardSteps)),
	}
	if b.UserID == nil && w.User != nil {
		id := w.User.UserID
		b.UserID = &id
	}
	for i := range w.BoardSteps {
		step, err := BoardStep(&w.BoardSteps[i])
		if err != nil {
			return models.Board{}, err
		}
		b.Steps = append(b.Steps, step)
	}
	sort.SliceStable(b.Steps, func(i, j int) bool {
		return b.Steps[i].BoardColumn < b.Steps[j].BoardColumn
	})
	return b, nil
}
