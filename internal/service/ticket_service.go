package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/lifecycle"
	"github.com/spec-kit/helpdesk-service/internal/realtime"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets       repository.TicketRepository
	messages      repository.MessageRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	feed          realtime.Publisher
	logger        *zap.Logger
	warnThreshold time.Duration
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	MessageRepo   repository.MessageRepository
	UserRepo      repository.UserRepository
	Dispatcher    events.Dispatcher
	Feed          realtime.Publisher
	Logger        *zap.Logger
	WarnThreshold time.Duration
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	SearchTerm   *string
	AssignedToMe bool
	Limit        int
	Offset       int
}

// TicketView pairs a ticket with its SLA-derived fields at read time.
type TicketView struct {
	Ticket    *domain.Ticket
	Deadlines lifecycle.Deadlines
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	warn := deps.WarnThreshold
	if warn <= 0 {
		warn = lifecycle.DefaultWarningThreshold
	}
	return &TicketService{
		tickets:       deps.TicketRepo,
		messages:      deps.MessageRepo,
		users:         deps.UserRepo,
		dispatcher:    deps.Dispatcher,
		feed:          deps.Feed,
		logger:        deps.Logger,
		warnThreshold: warn,
	}
}

// View pairs a ticket with deadlines computed as of now.
func (s *TicketService) View(t *domain.Ticket) TicketView {
	return TicketView{
		Ticket:    t,
		Deadlines: lifecycle.ComputeDeadlines(t, time.Now(), s.warnThreshold),
	}
}

// CreateTicket creates a ticket for an employee, caching the SLA budget
// for the chosen priority on the row.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if !domain.ValidTicketCategory(input.Category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidTicketPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	budget := lifecycle.BudgetFor(priority)
	ticket := &domain.Ticket{
		Title:                title,
		Description:          description,
		Category:             input.Category,
		Priority:             priority,
		Status:               domain.TicketStatusOpen,
		CreatedBy:            actor.ID,
		SLAResponseMinutes:   budget.ResponseMinutes,
		SLAResolutionMinutes: budget.ResolutionMinutes,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.CreatorName = actor.FullName
	ticket.CreatorEmail = actor.Email

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Category:     ticket.Category,
			Priority:     ticket.Priority,
			Title:        ticket.Title,
		},
	})
	s.publishTicketChange(ctx, realtime.ActionInsert, ticket)
	return ticket, nil
}

// ListTickets returns tickets visible to the actor, newest first.
// Employees see their own; support and admin see everything, optionally
// narrowed to their own assignments.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter TicketListFilter) ([]TicketView, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if actor.Role.IsStaff() {
		if filter.AssignedToMe {
			repoFilter.AssignedTo = &actor.ID
		}
	} else {
		repoFilter.CreatedBy = &actor.ID
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := time.Now()
	views := make([]TicketView, 0, len(tickets))
	for i := range tickets {
		views = append(views, TicketView{
			Ticket:    &tickets[i],
			Deadlines: lifecycle.ComputeDeadlines(&tickets[i], now, s.warnThreshold),
		})
	}
	return views, nil
}

// GetTicket fetches a ticket with its thread, enforcing visibility.
// Internal messages are stripped for employees. Stale cached SLA minutes
// are refreshed against the policy table while we have the row in hand.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*TicketView, []domain.TicketMessage, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !auth.CanOnTicket(actor, auth.ActionViewTicket, ticket) {
		return nil, nil, apperrors.NewForbidden("access denied")
	}

	s.refreshSLACache(ctx, ticket)

	includeInternal := auth.CanOnTicket(actor, auth.ActionViewInternalNotes, ticket)
	msgs, err := s.messages.ListByTicket(ctx, ticket.ID, includeInternal)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	view := &TicketView{
		Ticket:    ticket,
		Deadlines: lifecycle.ComputeDeadlines(ticket, time.Now(), s.warnThreshold),
	}
	return view, msgs, nil
}

// UpdateStatus moves a ticket between working statuses on behalf of
// support staff. Closure and reopening go through Close/Reopen so the
// creator-only rule is applied there as well.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID string, next domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidTicketStatus(next) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": next})
	}
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.CanOnTicket(actor, auth.ActionUpdateStatus, ticket) && !ticket.IsCreator(actor.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}

	oldStatus := ticket.Status
	if err := lifecycle.Transition(ticket, next, actor.Role, actor.ID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	s.publishTicketChange(ctx, realtime.ActionUpdate, ticket)
	return ticket, nil
}

// AssignTicket sets or clears the assignee. Assignees must hold a staff
// role.
func (s *TicketService) AssignTicket(ctx context.Context, actor *domain.User, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.CanOnTicket(actor, auth.ActionAssignTicket, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	if assigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *assigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("assignee", map[string]any{"user_id": *assigneeID})
			}
			return nil, apperrors.MapError(err)
		}
		if !assignee.Role.IsStaff() {
			return nil, apperrors.NewValidationError("assignee must be support or admin", map[string]any{"user_id": assignee.ID})
		}
		ticket.AssignedTo = &assignee.ID
		ticket.AssigneeName = &assignee.FullName
		ticket.AssigneeEmail = &assignee.Email
	} else {
		ticket.AssignedTo = nil
		ticket.AssigneeName = nil
		ticket.AssigneeEmail = nil
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload:  events.TicketAssignedPayload{AssignedTo: ticket.AssignedTo},
	})
	s.publishTicketChange(ctx, realtime.ActionUpdate, ticket)
	return ticket, nil
}

// CloseTicket lets the creator confirm resolution, optionally attaching a
// rating and feedback.
func (s *TicketService) CloseTicket(ctx context.Context, actor *domain.User, ticketID string, rating *int, feedback string) (*domain.Ticket, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Close(ticket, rating, feedback, actor.ID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketClosedPayload{
			Rating:   ticket.ResolutionRating,
			HasNotes: ticket.ResolutionFeedback != nil,
		},
	})
	s.publishTicketChange(ctx, realtime.ActionUpdate, ticket)
	return ticket, nil
}

// ReopenTicket lets the creator push a resolved ticket back to
// in_progress, clearing all resolution and rating fields.
func (s *TicketService) ReopenTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Reopen(ticket, actor.ID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReopened,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
	})
	s.publishTicketChange(ctx, realtime.ActionUpdate, ticket)
	return ticket, nil
}

// DeleteTicket removes a ticket permanently. Only the creator may do so.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.User, ticketID string) error {
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if !auth.CanOnTicket(actor, auth.ActionDeleteTicket, ticket) {
		return apperrors.NewForbidden("only the ticket creator may delete it")
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
	})
	s.publishChange(ctx, realtime.NewChangeEvent(realtime.TableTickets, realtime.ActionDelete, ticket.ID, nil))
	return nil
}

// AddMessage appends a message to the ticket thread. Internal notes are
// restricted to staff. The first staff reply on a ticket without a
// responded_at stamps it, exactly once.
func (s *TicketService) AddMessage(ctx context.Context, actor *domain.User, ticketID, body string, isInternal bool) (*domain.TicketMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("message body required", nil)
	}
	ticket, err := s.fetchTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.CanOnTicket(actor, auth.ActionPostMessage, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if isInternal && !auth.CanOnTicket(actor, auth.ActionPostInternalNote, ticket) {
		return nil, apperrors.NewForbidden("internal notes are restricted to support staff")
	}

	msg := &domain.TicketMessage{
		TicketID:   ticket.ID,
		UserID:     actor.ID,
		Body:       body,
		IsInternal: isInternal,
		AuthorName: actor.FullName,
		AuthorRole: actor.Role,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	if actor.Role.IsStaff() && lifecycle.StampFirstResponse(ticket, time.Now()) {
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, apperrors.MapError(err)
		}
		s.publishTicketChange(ctx, realtime.ActionUpdate, ticket)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketMessageAddedPayload{
			MessageID:   msg.ID,
			AuthorID:    actor.ID,
			IsInternal:  msg.IsInternal,
			BodyPreview: stringPreview(msg.Body, 120),
		},
	})
	change := realtime.NewChangeEvent(realtime.TableMessages, realtime.ActionInsert, msg.ID, messageRow(msg))
	// Internal notes must never reach non-staff subscribers.
	change.StaffOnly = msg.IsInternal
	s.publishChange(ctx, change)
	return msg, nil
}

func (s *TicketService) fetchTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// refreshSLACache rewrites the cached SLA minutes when they disagree with
// the policy table. Best effort: a failed write keeps the stale values
// and the read proceeds.
func (s *TicketService) refreshSLACache(ctx context.Context, ticket *domain.Ticket) {
	if !lifecycle.StaleSLA(ticket) {
		return
	}
	budget := lifecycle.BudgetFor(ticket.Priority)
	ticket.SLAResponseMinutes = budget.ResponseMinutes
	ticket.SLAResolutionMinutes = budget.ResolutionMinutes
	if err := s.tickets.UpdateSLACache(ctx, ticket.ID, budget.ResponseMinutes, budget.ResolutionMinutes); err != nil && s.logger != nil {
		s.logger.Warn("sla cache refresh failed", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *TicketService) publishTicketChange(ctx context.Context, action realtime.Action, ticket *domain.Ticket) {
	s.publishChange(ctx, realtime.NewChangeEvent(realtime.TableTickets, action, ticket.ID, ticketRow(ticket)))
}

func (s *TicketService) publishChange(ctx context.Context, ev realtime.ChangeEvent) {
	if s.feed == nil {
		return
	}
	s.feed.PublishChange(ctx, ev)
}

// stringPreview shortens the body to max runes so multibyte text is
// never cut mid-character.
func stringPreview(body string, max int) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) <= max {
		return string(runes)
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
