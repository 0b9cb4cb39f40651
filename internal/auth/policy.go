package auth

import "github.com/spec-kit/helpdesk-service/internal/domain"

// Action enumerates the gated mutations and reads.
type Action string

const (
	ActionViewTicket        Action = "ticket.view"
	ActionUpdateStatus      Action = "ticket.update_status"
	ActionAssignTicket      Action = "ticket.assign"
	ActionCloseTicket       Action = "ticket.close"
	ActionReopenTicket      Action = "ticket.reopen"
	ActionDeleteTicket      Action = "ticket.delete"
	ActionPostMessage       Action = "ticket.post_message"
	ActionPostInternalNote  Action = "ticket.post_internal_note"
	ActionViewInternalNotes Action = "ticket.view_internal_notes"
	ActionManageAssets      Action = "asset.manage"
)

// CanOnTicket is the single rule source for ticket permissions, consulted
// by the service layer before any write and by handlers for gating. The
// creator-only closure rule holds for every role including admin.
func CanOnTicket(user *domain.User, action Action, ticket *domain.Ticket) bool {
	if user == nil || ticket == nil {
		return false
	}
	isCreator := ticket.IsCreator(user.ID)
	staff := user.Role.IsStaff()

	switch action {
	case ActionViewTicket, ActionPostMessage:
		return isCreator || staff
	case ActionUpdateStatus, ActionAssignTicket:
		return staff
	case ActionCloseTicket, ActionReopenTicket, ActionDeleteTicket:
		return isCreator
	case ActionPostInternalNote, ActionViewInternalNotes:
		return staff
	}
	return false
}

// CanManageAssets reports whether the user may mutate asset records.
func CanManageAssets(user *domain.User) bool {
	return user != nil && user.Role == domain.RoleAdmin
}
