package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/lifecycle"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AssignTicketRequest payload. Null assigned_to clears the assignment.
type AssignTicketRequest struct {
	AssignedTo *string `json:"assigned_to"`
}

// CloseTicketRequest payload.
type CloseTicketRequest struct {
	Rating   *int   `json:"rating"`
	Feedback string `json:"feedback"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Body       string `json:"body"`
	IsInternal bool   `json:"is_internal"`
}

// SLAStatus carries read-time deadline fields. Deadlines and remaining
// minutes are null when no SLA is tracked for that milestone.
type SLAStatus struct {
	ResponseDeadline         *time.Time `json:"response_deadline"`
	ResolutionDeadline       *time.Time `json:"resolution_deadline"`
	RemainingResponseMins    *int64     `json:"remaining_response_minutes"`
	RemainingResolutionMins  *int64     `json:"remaining_resolution_minutes"`
	ResponseOverdue          bool       `json:"response_overdue"`
	ResponseWarning          bool       `json:"response_warning"`
	ResolutionOverdue        bool       `json:"resolution_overdue"`
	ResolutionWarning        bool       `json:"resolution_warning"`
	SLAResponseMinutes       int        `json:"sla_response_minutes"`
	SLAResolutionMinutes     int        `json:"sla_resolution_minutes"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID            string                `json:"id"`
	TicketNumber  string                `json:"ticket_number"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Category      domain.TicketCategory `json:"category"`
	Priority      domain.TicketPriority `json:"priority"`
	Status        domain.TicketStatus   `json:"status"`
	CreatedBy     string                `json:"created_by"`
	CreatorName   string                `json:"creator_name"`
	CreatorEmail  string                `json:"creator_email"`
	AssignedTo    *string               `json:"assigned_to"`
	AssigneeName  *string               `json:"assignee_name"`
	AssigneeEmail *string               `json:"assignee_email"`

	SLA SLAStatus `json:"sla"`

	ResolutionRating      *int    `json:"resolution_rating"`
	ResolutionFeedback    *string `json:"resolution_feedback"`
	ResolutionConfirmedBy *string `json:"resolution_confirmed_by"`

	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	RespondedAt           *time.Time `json:"responded_at"`
	ResolvedAt            *time.Time `json:"resolved_at"`
	ClosedAt              *time.Time `json:"closed_at"`
	ResolutionConfirmedAt *time.Time `json:"resolution_confirmed_at"`
}

// TicketDetailResponse adds the message thread.
type TicketDetailResponse struct {
	TicketResponse
	Messages []TicketMessageResponse `json:"messages"`
}

// TicketMessageResponse represents a thread message.
type TicketMessageResponse struct {
	ID         string      `json:"id"`
	TicketID   string      `json:"ticket_id"`
	UserID     string      `json:"user_id"`
	AuthorName string      `json:"author_name"`
	AuthorRole domain.Role `json:"author_role"`
	Body       string      `json:"body"`
	IsInternal bool        `json:"is_internal"`
	CreatedAt  time.Time   `json:"created_at"`
}

// FromTicketView maps a service view onto the response shape.
func FromTicketView(view service.TicketView) TicketResponse {
	t := view.Ticket
	return TicketResponse{
		ID:            t.ID,
		TicketNumber:  t.TicketNumber,
		Title:         t.Title,
		Description:   t.Description,
		Category:      t.Category,
		Priority:      t.Priority,
		Status:        t.Status,
		CreatedBy:     t.CreatedBy,
		CreatorName:   t.CreatorName,
		CreatorEmail:  t.CreatorEmail,
		AssignedTo:    t.AssignedTo,
		AssigneeName:  t.AssigneeName,
		AssigneeEmail: t.AssigneeEmail,

		SLA: fromDeadlines(t, view.Deadlines),

		ResolutionRating:      t.ResolutionRating,
		ResolutionFeedback:    t.ResolutionFeedback,
		ResolutionConfirmedBy: t.ResolutionConfirmedBy,

		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
		RespondedAt:           t.RespondedAt,
		ResolvedAt:            t.ResolvedAt,
		ClosedAt:              t.ClosedAt,
		ResolutionConfirmedAt: t.ResolutionConfirmedAt,
	}
}

// FromTicketMessage maps a message onto the response shape.
func FromTicketMessage(m domain.TicketMessage) TicketMessageResponse {
	return TicketMessageResponse{
		ID:         m.ID,
		TicketID:   m.TicketID,
		UserID:     m.UserID,
		AuthorName: m.AuthorName,
		AuthorRole: m.AuthorRole,
		Body:       m.Body,
		IsInternal: m.IsInternal,
		CreatedAt:  m.CreatedAt,
	}
}

func fromDeadlines(t *domain.Ticket, d lifecycle.Deadlines) SLAStatus {
	return SLAStatus{
		ResponseDeadline:        d.ResponseDeadline,
		ResolutionDeadline:      d.ResolutionDeadline,
		RemainingResponseMins:   durationMinutes(d.RemainingResponse),
		RemainingResolutionMins: durationMinutes(d.RemainingResolution),
		ResponseOverdue:         d.ResponseOverdue,
		ResponseWarning:         d.ResponseWarning,
		ResolutionOverdue:       d.ResolutionOverdue,
		ResolutionWarning:       d.ResolutionWarning,
		SLAResponseMinutes:      t.SLAResponseMinutes,
		SLAResolutionMinutes:    t.SLAResolutionMinutes,
	}
}

func durationMinutes(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	mins := int64(d.Minutes())
	return &mins
}
