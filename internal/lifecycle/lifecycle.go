// Package lifecycle holds the proposition authorization and state-machine
// rules. It is pure decision logic: given an actor, the records involved and
// a requested action, it answers whether the action is permitted and what
// status results. Persistence happens elsewhere.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SanderWeide/sneaker-engine-v3/internal/models"
)

// Action is a requested transition or read on a proposition.
type Action string

const (
	ActionView   Action = "view"
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
	ActionCancel Action = "cancel"
)

// AuthorizeCreate decides whether actorID may open a proposition against the
// target sneaker. The target must exist and must not belong to the actor
// (no self-dealing).
func AuthorizeCreate(actorID string, target *models.Sneaker) error {
	if target == nil {
		return fmt.Errorf("target sneaker: %w", ErrNotFound)
	}
	if target.OwnerID == actorID {
		return fmt.Errorf("cannot propose on your own sneaker: %w", ErrConflict)
	}
	return nil
}

// NewProposition builds a pending proposition for an authorized create.
// Offer fields are copied verbatim; whether a price fits a buy offer or a
// counter-offer sneaker fits a trade is the caller's concern.
func NewProposition(actorID, sneakerID string, offerType models.OfferType, offerPrice *float64, offerSneakerID, message string) models.Proposition {
	now := time.Now().UTC()
	return models.Proposition{
		ID:             uuid.NewString(),
		SneakerID:      sneakerID,
		ProposerID:     actorID,
		OfferType:      offerType,
		OfferPrice:     offerPrice,
		OfferSneakerID: offerSneakerID,
		Status:         models.StatusPending,
		Message:        message,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Authorize decides whether actorID may perform action on the proposition.
// target is the proposition's target sneaker; it is required for every
// action because ownership of the target is what gates accept/reject/view.
//
// Accept and reject additionally require the proposition to still be
// pending. The system this was modelled on allowed overwriting a terminal
// status; that gap is closed here deliberately (see DESIGN.md). Cancel
// stays permitted in any status, matching the original behavior.
func Authorize(actorID string, p *models.Proposition, target *models.Sneaker, action Action) error {
	if p == nil {
		return fmt.Errorf("proposition: %w", ErrNotFound)
	}
	if target == nil {
		return fmt.Errorf("target sneaker: %w", ErrNotFound)
	}

	switch action {
	case ActionView:
		if actorID != p.ProposerID && actorID != target.OwnerID {
			return fmt.Errorf("not authorized to view this proposition: %w", ErrForbidden)
		}
		return nil
	case ActionAccept, ActionReject:
		if actorID != target.OwnerID {
			return fmt.Errorf("not authorized to %s this proposition: %w", action, ErrForbidden)
		}
		if p.Status.Terminal() {
			return fmt.Errorf("proposition is already %s: %w", p.Status, ErrConflict)
		}
		return nil
	case ActionCancel:
		if actorID != p.ProposerID {
			return fmt.Errorf("not authorized to cancel this proposition: %w", ErrForbidden)
		}
		return nil
	}
	return fmt.Errorf("unknown action %q: %w", action, ErrConflict)
}

// NextStatus returns the status a successful action transitions to. The
// second return value is false for actions that do not set a status (view
// reads, cancel deletes).
func NextStatus(action Action) (models.PropositionStatus, bool) {
	switch action {
	case ActionAccept:
		return models.StatusAccepted, true
	case ActionReject:
		return models.StatusRejected, true
	case ActionView, ActionCancel:
		return "", false
	}
	return "", false
}

// CanViewCollectionEntry reports whether the actor is party to the
// proposition, used when windowing a user's sent and received propositions.
func CanViewCollectionEntry(actorID string, p *models.Proposition, target *models.Sneaker) bool {
	if p == nil || target == nil {
		return false
	}
	return actorID == p.ProposerID || actorID == target.OwnerID
}
