package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen            TicketStatus = "open"
	TicketStatusInProgress      TicketStatus = "in_progress"
	TicketStatusWaitingResponse TicketStatus = "waiting_response"
	TicketStatusResolved        TicketStatus = "resolved"
	TicketStatusClosed          TicketStatus = "closed"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// TicketCategory classifies the kind of support request.
type TicketCategory string

const (
	TicketCategoryHardware TicketCategory = "hardware"
	TicketCategorySoftware TicketCategory = "software"
	TicketCategoryNetwork  TicketCategory = "network"
	TicketCategoryAccess   TicketCategory = "access"
	TicketCategoryOther    TicketCategory = "other"
)

// ValidTicketStatus reports whether the value is a known status.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingResponse, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// ValidTicketPriority reports whether the value is a known priority.
func ValidTicketPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// ValidTicketCategory reports whether the value is a known category.
func ValidTicketCategory(c TicketCategory) bool {
	switch c {
	case TicketCategoryHardware, TicketCategorySoftware, TicketCategoryNetwork, TicketCategoryAccess, TicketCategoryOther:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
//
// SLAResponseMinutes and SLAResolutionMinutes are cached from the policy
// table at creation time; readers refresh them when they disagree with the
// table for the ticket's current priority.
type Ticket struct {
	ID           string
	TicketNumber string
	Title        string
	Description  string
	Category     TicketCategory
	Priority     TicketPriority
	Status       TicketStatus

	CreatedBy  string
	AssignedTo *string

	SLAResponseMinutes   int
	SLAResolutionMinutes int

	ResolutionRating      *int
	ResolutionFeedback    *string
	ResolutionConfirmedBy *string

	CreatedAt             time.Time
	UpdatedAt             time.Time
	RespondedAt           *time.Time
	ResolvedAt            *time.Time
	ClosedAt              *time.Time
	ResolutionConfirmedAt *time.Time

	// Joined identity fields, populated on reads.
	CreatorName   string
	CreatorEmail  string
	AssigneeName  *string
	AssigneeEmail *string
}

// IsCreator reports whether the given user owns the ticket.
func (t *Ticket) IsCreator(userID string) bool {
	return t.CreatedBy == userID
}
