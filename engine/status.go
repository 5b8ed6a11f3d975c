package engine

import (
	"fmt"
	"time"

	"github.com/yeremiapane/hotel-ops/models"
)

// Transition moves an order to the next status and applies the
// timestamp side effects: forward transitions stamp (and backfill)
// progress timestamps, REQUESTED and CANCELLED clear them. Restoring a
// cancelled order to REQUESTED is admin-only.
func Transition(order *models.Order, next string, actor *Session, now time.Time) error {
	cur := order.Status

	switch next {
	case models.StatusAccepted:
		if cur != models.StatusRequested {
			return fmt.Errorf("cannot accept order in status %s", cur)
		}
		t := now
		order.AcceptedAt = &t
		order.AssignedTo = actor.UserID

	case models.StatusInProgress:
		if cur != models.StatusRequested && cur != models.StatusAccepted {
			return fmt.Errorf("cannot start order in status %s", cur)
		}
		t := now
		order.InProgressAt = &t
		if order.AcceptedAt == nil {
			t2 := now
			order.AcceptedAt = &t2
		}
		if order.AssignedTo == "" {
			order.AssignedTo = actor.UserID
		}

	case models.StatusCompleted:
		if cur == models.StatusCompleted || cur == models.StatusCancelled {
			return fmt.Errorf("cannot complete order in status %s", cur)
		}
		t := now
		order.CompletedAt = &t
		if order.InProgressAt == nil {
			t2 := now
			order.InProgressAt = &t2
		}
		if order.AcceptedAt == nil {
			t3 := now
			order.AcceptedAt = &t3
		}
		if order.AssignedTo == "" {
			order.AssignedTo = actor.UserID
		}

	case models.StatusCancelled:
		if cur == models.StatusCompleted {
			return fmt.Errorf("cannot cancel a completed order")
		}
		clearProgress(order)

	case models.StatusRequested:
		switch cur {
		case models.StatusCompleted:
			// restart
		case models.StatusCancelled:
			if actor.Role != models.RoleAdmin {
				return fmt.Errorf("restoring a cancelled order requires admin role")
			}
		default:
			return fmt.Errorf("cannot reset order in status %s", cur)
		}
		clearProgress(order)

	default:
		return fmt.Errorf("unknown status %q", next)
	}

	order.Status = next
	return nil
}

func clearProgress(order *models.Order) {
	order.AcceptedAt = nil
	order.InProgressAt = nil
	order.CompletedAt = nil
	order.AssignedTo = ""
}
