// ABOUTME: Lead creation saga: lead, contact, address, then both links
// ABOUTME: On failure, rows already created are deleted in reverse order
package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/harperreed/zala/models"
	"github.com/harperreed/zala/normalize"
)

// SagaStep names a step of CreateLeadWithDetails.
type SagaStep string

const (
	StepCreateLead    SagaStep = "create lead"
	StepCreateContact SagaStep = "create contact"
	StepCreateAddress SagaStep = "create address"
	StepLinkContact   SagaStep = "link contact"
	StepLinkAddress   SagaStep = "link address"
)

// SagaError reports the step that failed and any rows that could not be
// removed afterwards. Orphans lists "kind:id" for each such row.
type SagaError struct {
	Step    SagaStep
	Err     error
	Orphans []string
}

func (e *SagaError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Step, e.Err)
	if len(e.Orphans) > 0 {
		msg += fmt.Sprintf(" (left behind: %s)", strings.Join(e.Orphans, ", "))
	}
	return msg
}

func (e *SagaError) Unwrap() error {
	return e.Err
}

type compensation struct {
	kind string
	id   int
	undo func(context.Context, int) error
}

// CreateLeadWithDetails creates a lead with its contact and address and
// links them. Any failing step aborts the rest; rows already created are
// deleted best effort and any that survive are named in the SagaError.
func (c *Client) CreateLeadWithDetails(ctx context.Context, lead models.Lead) (models.Lead, error) {
	var created []compensation

	fail := func(step SagaStep, err error) (models.Lead, error) {
		sagaErr := &SagaError{Step: step, Err: err}
		// compensate even when ctx was cancelled mid-saga
		cleanupCtx := context.WithoutCancel(ctx)
		for i := len(created) - 1; i >= 0; i-- {
			comp := created[i]
			if undoErr := comp.undo(cleanupCtx, comp.id); undoErr != nil {
				c.logger.Warn("saga compensation failed",
					zap.String("kind", comp.kind),
					zap.Int("id", comp.id),
					zap.Error(undoErr))
				sagaErr.Orphans = append(sagaErr.Orphans, fmt.Sprintf("%s:%d", comp.kind, comp.id))
			}
		}
		return models.Lead{}, sagaErr
	}

	card, err := c.CreateLead(ctx, LeadInputFrom(lead))
	if err != nil {
		return fail(StepCreateLead, err)
	}
	created = append(created, compensation{"lead", card.LeadID, c.DeleteLead})

	contact, err := c.CreateContact(ctx, lead.Contact)
	if err != nil {
		return fail(StepCreateContact, err)
	}
	created = append(created, compensation{"contact", contact.ContactID, c.DeleteContact})

	address, err := c.CreateAddress(ctx, lead.Address)
	if err != nil {
		return fail(StepCreateAddress, err)
	}
	created = append(created, compensation{"address", address.AddressID, c.DeleteAddress})

	if _, err := c.LinkContactToLead(ctx, card.LeadID, contact.ContactID); err != nil {
		return fail(StepLinkContact, err)
	}

	linked, err := c.LinkAddressToLead(ctx, card.LeadID, address.AddressID)
	if err != nil {
		return fail(StepLinkAddress, err)
	}

	result, err := normalize.Lead(linked)
	if err != nil {
		// the rows exist and are linked; build the view from what was created
		result = models.Lead{
			LeadID:     card.LeadID,
			LicenseNum: card.LicenseNum,
			Buisness:   card.Business,
			Website:    card.Website,
			Notes:      card.Notes,
			CreatedBy:  card.CreatedBy,
			Contact:    contact,
			Address:    address,
		}
	}
	return result, nil
}

// IsSagaError reports whether err came from CreateLeadWithDetails.
func IsSagaError(err error) bool {
	var se *SagaError
	return errors.As(err, &se)
}
