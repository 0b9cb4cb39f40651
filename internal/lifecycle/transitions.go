package lifecycle

import (
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// workingStatuses are the states support staff may move a ticket between.
// Closure is deliberately excluded: only the creator crosses that
// boundary, and closed is terminal.
var workingStatuses = map[domain.TicketStatus]struct{}{
	domain.TicketStatusOpen:            {},
	domain.TicketStatusInProgress:      {},
	domain.TicketStatusWaitingResponse: {},
	domain.TicketStatusResolved:        {},
}

// CanTransition reports whether the requested status change is permitted
// for the actor. Support and admin move tickets freely between the
// working statuses. Only the creator may close a resolved ticket or
// reopen it; that rule holds for every role including admin.
func CanTransition(current, requested domain.TicketStatus, role domain.Role, isCreator bool) bool {
	if !domain.ValidTicketStatus(current) || !domain.ValidTicketStatus(requested) {
		return false
	}
	if current == requested {
		return false
	}
	if current == domain.TicketStatusClosed {
		return false
	}
	if requested == domain.TicketStatusClosed {
		return current == domain.TicketStatusResolved && isCreator
	}
	if isCreator && current == domain.TicketStatusResolved && requested == domain.TicketStatusInProgress {
		return true
	}
	if !role.IsStaff() {
		return false
	}
	_, fromWorking := workingStatuses[current]
	_, toWorking := workingStatuses[requested]
	return fromWorking && toWorking
}

// Transition applies a permitted status change to the ticket, including
// its timestamp side effects. The ticket is mutated only on success.
func Transition(t *domain.Ticket, requested domain.TicketStatus, role domain.Role, actorID string, now time.Time) error {
	isCreator := t.IsCreator(actorID)
	if !CanTransition(t.Status, requested, role, isCreator) {
		if requested == domain.TicketStatusClosed && t.Status == domain.TicketStatusResolved && !isCreator {
			return apperrors.NewUnauthorized("only the ticket creator may close it")
		}
		return apperrors.NewInvalidTransition(string(t.Status), string(requested))
	}

	switch requested {
	case domain.TicketStatusResolved:
		t.ResolvedAt = &now
	case domain.TicketStatusClosed:
		t.ClosedAt = &now
		if t.ResolutionConfirmedAt == nil {
			t.ResolutionConfirmedAt = &now
			t.ResolutionConfirmedBy = &actorID
		}
	default:
		if t.Status == domain.TicketStatusResolved {
			clearResolution(t)
		}
	}
	t.Status = requested
	return nil
}

// Close moves a resolved ticket to closed with an optional rating and
// feedback. Only the creator may close; rating is clamped to [1,5] and
// whitespace-only feedback normalizes to absent.
func Close(t *domain.Ticket, rating *int, feedback string, actorID string, now time.Time) error {
	if !t.IsCreator(actorID) {
		return apperrors.NewUnauthorized("only the ticket creator may close it")
	}
	if t.Status != domain.TicketStatusResolved {
		return apperrors.NewInvalidState("ticket must be resolved before closing", map[string]any{"status": t.Status})
	}

	if rating != nil {
		clamped := clampRating(*rating)
		t.ResolutionRating = &clamped
	} else {
		t.ResolutionRating = nil
	}
	if trimmed := strings.TrimSpace(feedback); trimmed != "" {
		t.ResolutionFeedback = &trimmed
	} else {
		t.ResolutionFeedback = nil
	}

	t.Status = domain.TicketStatusClosed
	t.ClosedAt = &now
	if t.ResolutionConfirmedAt == nil {
		t.ResolutionConfirmedAt = &now
		t.ResolutionConfirmedBy = &actorID
	}
	return nil
}

// Reopen moves a resolved ticket back to in_progress and clears every
// resolution, closure, and rating field.
func Reopen(t *domain.Ticket, actorID string, now time.Time) error {
	if !t.IsCreator(actorID) {
		return apperrors.NewUnauthorized("only the ticket creator may reopen it")
	}
	if t.Status != domain.TicketStatusResolved {
		return apperrors.NewInvalidState("ticket must be resolved before reopening", map[string]any{"status": t.Status})
	}
	clearResolution(t)
	t.Status = domain.TicketStatusInProgress
	return nil
}

func clearResolution(t *domain.Ticket) {
	t.ResolvedAt = nil
	t.ClosedAt = nil
	t.ResolutionRating = nil
	t.ResolutionFeedback = nil
	t.ResolutionConfirmedAt = nil
	t.ResolutionConfirmedBy = nil
}

func clampRating(rating int) int {
	if rating < 1 {
		return 1
	}
	if rating > 5 {
		return 5
	}
	return rating
}
