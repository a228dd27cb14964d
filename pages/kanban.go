// ABOUTME: Kanban board controller: boards, steps, and the lead/property cards in them
// ABOUTME: A step holds leads or properties, never both; every change reloads the boards
package pages

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/models"
)

// Warnings returned before any request is made.
var (
	ErrBoardNameRequired    = errors.New("board name is required")
	ErrColumnNameRequired   = errors.New("column name is required")
	ErrLeadNameRequired     = errors.New("lead name is required")
	ErrPropertyNameRequired = errors.New("property name is required")
	ErrPropertyAddress      = errors.New("street, city, state, and zip are required for a property address")
	ErrStepHoldsProperties  = errors.New("this column is reserved for properties; move the properties out before adding leads")
	ErrStepHoldsLeads       = errors.New("this column holds lead cards; move them before adding properties")
	ErrPropertyNoAddress    = errors.New("cannot update a property without an address")
	ErrStepNotFound         = errors.New("step not found")
)

// LeadForm is the editable part of a lead card.
type LeadForm struct {
	Business   string
	PersonType string
	Website    string
	LicenseNum string
	Notes      string
}

func (f LeadForm) input() api.LeadInput {
	return api.LeadInput{
		Business:   strings.TrimSpace(f.Business),
		PersonType: strings.TrimSpace(f.PersonType),
		Website:    strings.TrimSpace(f.Website),
		LicenseNum: strings.TrimSpace(f.LicenseNum),
		Notes:      strings.TrimSpace(f.Notes),
	}
}

// PropertyForm is a new property together with its address.
type PropertyForm struct {
	Name      string
	MLSNumber string
	Notes     string
	Address   models.Address
}

type KanbanController struct {
	d Deps

	mu       sync.Mutex
	boards   []models.Board
	activeID int
}

func NewKanbanController(d Deps) *KanbanController {
	return &KanbanController{d: d.withDefaults(), boards: []models.Board{}}
}

func (k *KanbanController) Boards() []models.Board {
	k.mu.Lock()
	defer k.mu.Unlock()
	return slices.Clone(k.boards)
}

// Active returns the board being shown.
func (k *KanbanController) Active() (models.Board, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, b := range k.boards {
		if b.BoardID == k.activeID {
			return b, true
		}
	}
	return models.Board{}, false
}

func (k *KanbanController) SetActive(boardID int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.activeID = boardID
}

// Load fetches the boards and picks the active one: preferred if present,
// else the current one if still present, else the first.
func (k *KanbanController) Load(ctx context.Context, preferred int) error {
	boards, err := k.d.API.GetBoards(ctx, api.ListParams{Limit: 50})
	k.mu.Lock()
	defer k.mu.Unlock()
	if err != nil {
		k.boards = []models.Board{}
		k.activeID = 0
		return fmt.Errorf("loading boards: %w", err)
	}
	k.boards = boards

	has := func(id int) bool {
		return id != 0 && slices.ContainsFunc(boards, func(b models.Board) bool { return b.BoardID == id })
	}
	switch {
	case len(boards) == 0:
		k.activeID = 0
	case has(preferred):
		k.activeID = preferred
	case has(k.activeID):
		// keep the current board
	default:
		k.activeID = boards[0].BoardID
	}
	return nil
}

func (k *KanbanController) findStep(stepID int) (models.BoardStep, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, b := range k.boards {
		if s, ok := b.Step(stepID); ok {
			return s, true
		}
	}
	return models.BoardStep{}, false
}

func (k *KanbanController) activeBoardID() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.activeID
}

// mutate runs fn and reloads the boards, preferring board afterwards.
func (k *KanbanController) mutate(ctx context.Context, what string, preferred int, fn func() error) error {
	if err := fn(); err != nil {
		k.d.reportError(what, err, WithMessage(err.Error()))
		return fmt.Errorf("%s: %w", what, err)
	}
	return k.Load(ctx, preferred)
}

// CreateBoard creates a board with up to MaxBoardSteps steps named after
// steps, or the default template when steps is empty.
func (k *KanbanController) CreateBoard(ctx context.Context, name string, steps []string) (models.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Board{}, ErrBoardNameRequired
	}
	user := k.d.App.User()
	if user == nil {
		return models.Board{}, ErrNotLoggedIn
	}

	board, err := k.d.API.CreateBoard(ctx, name, user.UserID)
	if err != nil {
		k.d.reportError("creating board", err, WithMessage(err.Error()))
		return models.Board{}, fmt.Errorf("creating board: %w", err)
	}
	for i, stepName := range BoardTemplate(steps) {
		if _, err := k.d.API.CreateBoardStep(ctx, board.BoardID, i+1, stepName); err != nil {
			k.d.reportError("creating step", err, WithMessage(err.Error()))
			return board, fmt.Errorf("creating step %q: %w", stepName, err)
		}
	}
	if err := k.Load(ctx, board.BoardID); err != nil {
		return board, err
	}
	if b, ok := k.Active(); ok {
		board = b
	}
	return board, nil
}

// BoardTemplate trims steps to at most MaxBoardSteps non-blank names,
// falling back to the default template.
func BoardTemplate(steps []string) []string {
	var out []string
	for _, s := range steps {
		if len(out) == models.MaxBoardSteps {
			break
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return slices.Clone(models.DefaultStepTemplate)
	}
	return out
}

func (k *KanbanController) RenameBoard(ctx context.Context, boardID int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBoardNameRequired
	}
	return k.mutate(ctx, "updating board", boardID, func() error {
		_, err := k.d.API.RenameBoard(ctx, boardID, name)
		return err
	})
}

func (k *KanbanController) DeleteBoard(ctx context.Context, boardID int) error {
	preferred := k.activeBoardID()
	if preferred == boardID {
		preferred = 0
	}
	return k.mutate(ctx, "deleting board", preferred, func() error {
		return k.d.API.DeleteBoard(ctx, boardID)
	})
}

// CreateStep appends a step after the board's last column.
func (k *KanbanController) CreateStep(ctx context.Context, boardID int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrColumnNameRequired
	}
	next := 1
	for _, b := range k.Boards() {
		if b.BoardID == boardID {
			next = b.NextColumn()
		}
	}
	return k.mutate(ctx, "creating step", boardID, func() error {
		_, err := k.d.API.CreateBoardStep(ctx, boardID, next, name)
		return err
	})
}

// RenameStep ignores a blank name.
func (k *KanbanController) RenameStep(ctx context.Context, boardID, stepID int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return k.mutate(ctx, "updating step", boardID, func() error {
		_, err := k.d.API.UpdateBoardStep(ctx, stepID, api.StepUpdate{StepName: &name})
		return err
	})
}

func (k *KanbanController) DeleteStep(ctx context.Context, boardID, stepID int) error {
	return k.mutate(ctx, "deleting step", boardID, func() error {
		return k.d.API.DeleteBoardStep(ctx, stepID)
	})
}

func (k *KanbanController) CreateLead(ctx context.Context, stepID int, form LeadForm) error {
	step, ok := k.findStep(stepID)
	if !ok {
		return ErrStepNotFound
	}
	if step.Kind() == models.StepProperties {
		return ErrStepHoldsProperties
	}
	in := form.input()
	if in.Business == "" {
		return ErrLeadNameRequired
	}

	return k.mutate(ctx, "creating lead", step.BoardID, func() error {
		card, err := k.d.API.CreateLead(ctx, in)
		if err != nil {
			return err
		}
		_, err = k.d.API.UpdateBoardStep(ctx, stepID, api.StepUpdate{LeadIDs: append(step.LeadIDs(), card.LeadID)})
		return err
	})
}

// UpdateLead saves a lead card; a blank business becomes "Untitled Lead".
func (k *KanbanController) UpdateLead(ctx context.Context, leadID int, form LeadForm) error {
	in := form.input()
	if in.Business == "" {
		in.Business = "Untitled Lead"
	}
	return k.mutate(ctx, "updating lead", k.activeBoardID(), func() error {
		_, err := k.d.API.UpdateLeadCard(ctx, leadID, in)
		return err
	})
}

// DeleteLead removes the card from its step, then deletes the lead.
func (k *KanbanController) DeleteLead(ctx context.Context, leadID, stepID int) error {
	step, ok := k.findStep(stepID)
	if !ok {
		return ErrStepNotFound
	}
	return k.mutate(ctx, "deleting lead", step.BoardID, func() error {
		remaining := without(step.LeadIDs(), leadID)
		if _, err := k.d.API.UpdateBoardStep(ctx, stepID, api.StepUpdate{LeadIDs: remaining}); err != nil {
			return err
		}
		return k.d.API.DeleteLead(ctx, leadID)
	})
}

// MoveLead moves a card between steps. Moving onto a property step is refused.
func (k *KanbanController) MoveLead(ctx context.Context, leadID, fromStepID, toStepID int) error {
	if fromStepID == toStepID {
		return nil
	}
	from, okFrom := k.findStep(fromStepID)
	to, okTo := k.findStep(toStepID)
	if !okFrom || !okTo {
		return ErrStepNotFound
	}
	if to.Kind() == models.StepProperties {
		return fmt.Errorf("cannot move lead to %q: this step only contains properties", to.StepName)
	}

	return k.mutate(ctx, "moving lead", from.BoardID, func() error {
		if _, err := k.d.API.UpdateBoardStep(ctx, fromStepID, api.StepUpdate{LeadIDs: without(from.LeadIDs(), leadID)}); err != nil {
			return err
		}
		_, err := k.d.API.UpdateBoardStep(ctx, toStepID, api.StepUpdate{LeadIDs: withID(to.LeadIDs(), leadID)})
		return err
	})
}

// CreateProperty creates the address, the property under it, and adds
// the card to the step.
func (k *KanbanController) CreateProperty(ctx context.Context, stepID int, form PropertyForm) error {
	step, ok := k.findStep(stepID)
	if !ok {
		return ErrStepNotFound
	}
	if step.Kind() == models.StepLeads {
		return ErrStepHoldsLeads
	}
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return ErrPropertyNameRequired
	}
	addr := form.Address
	addr.Street1 = strings.TrimSpace(addr.Street1)
	addr.Street2 = strings.TrimSpace(addr.Street2)
	addr.City = strings.TrimSpace(addr.City)
	addr.State = strings.TrimSpace(addr.State)
	addr.Zipcode = strings.TrimSpace(addr.Zipcode)
	if addr.Street1 == "" || addr.City == "" || addr.State == "" || addr.Zipcode == "" {
		return ErrPropertyAddress
	}

	return k.mutate(ctx, "creating property", step.BoardID, func() error {
		created, err := k.d.API.CreateAddress(ctx, addr)
		if err != nil {
			return err
		}
		prop, err := k.d.API.CreateProperty(ctx, created.AddressID, api.PropertyInput{
			PropertyName: name,
			MLSNumber:    strings.TrimSpace(form.MLSNumber),
			Notes:        strings.TrimSpace(form.Notes),
		})
		if err != nil {
			return err
		}
		_, err = k.d.API.UpdateBoardStep(ctx, stepID, api.StepUpdate{PropertyIDs: append(step.PropertyIDs(), prop.PropertyID)})
		return err
	})
}

func (k *KanbanController) UpdateProperty(ctx context.Context, prop models.PropertyCard, in api.PropertyInput) error {
	if prop.AddressID == nil {
		return ErrPropertyNoAddress
	}
	in.PropertyName = strings.TrimSpace(in.PropertyName)
	in.MLSNumber = strings.TrimSpace(in.MLSNumber)
	in.Notes = strings.TrimSpace(in.Notes)
	return k.mutate(ctx, "updating property", k.activeBoardID(), func() error {
		_, err := k.d.API.UpdateProperty(ctx, *prop.AddressID, prop.PropertyID, in)
		return err
	})
}

func (k *KanbanController) DeleteProperty(ctx context.Context, prop models.PropertyCard, stepID int) error {
	if prop.AddressID == nil {
		return ErrPropertyNoAddress
	}
	step, ok := k.findStep(stepID)
	if !ok {
		return ErrStepNotFound
	}
	return k.mutate(ctx, "deleting property", step.BoardID, func() error {
		remaining := without(step.PropertyIDs(), prop.PropertyID)
		if _, err := k.d.API.UpdateBoardStep(ctx, stepID, api.StepUpdate{PropertyIDs: remaining}); err != nil {
			return err
		}
		return k.d.API.DeleteProperty(ctx, *prop.AddressID, prop.PropertyID)
	})
}

// MoveProperty moves a card between steps. Moving onto a lead step is refused.
func (k *KanbanController) MoveProperty(ctx context.Context, propertyID, fromStepID, toStepID int) error {
	if fromStepID == toStepID {
		return nil
	}
	from, okFrom := k.findStep(fromStepID)
	to, okTo := k.findStep(toStepID)
	if !okFrom || !okTo {
		return ErrStepNotFound
	}
	if to.Kind() == models.StepLeads {
		return fmt.Errorf("cannot move property to %q: this step only contains leads", to.StepName)
	}

	return k.mutate(ctx, "moving property", from.BoardID, func() error {
		if _, err := k.d.API.UpdateBoardStep(ctx, fromStepID, api.StepUpdate{PropertyIDs: without(from.PropertyIDs(), propertyID)}); err != nil {
			return err
		}
		_, err := k.d.API.UpdateBoardStep(ctx, toStepID, api.StepUpdate{PropertyIDs: withID(to.PropertyIDs(), propertyID)})
		return err
	})
}

// without returns ids minus id, never nil so the step is cleared on the wire.
func without(ids []int, id int) []int {
	out := make([]int, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// withID appends id unless already present.
func withID(ids []int, id int) []int {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(slices.Clone(ids), id)
}
