package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const (
	creatorID = "user-creator"
	agentID   = "user-agent"
	adminID   = "user-admin"
)

func resolvedTicket() *domain.Ticket {
	resolved := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	return &domain.Ticket{
		Status:     domain.TicketStatusResolved,
		CreatedBy:  creatorID,
		ResolvedAt: &resolved,
	}
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	return domainErr.Code
}

func TestCanTransitionStaffWorkingStatuses(t *testing.T) {
	working := []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusWaitingResponse,
		domain.TicketStatusResolved,
	}

	for _, from := range working {
		for _, to := range working {
			got := CanTransition(from, to, domain.RoleSupport, false)
			if from == to {
				assert.False(t, got, "%s -> %s", from, to)
			} else {
				assert.True(t, got, "%s -> %s", from, to)
			}
		}
	}
}

func TestCanTransitionEmployeeCannotWorkTickets(t *testing.T) {
	assert.False(t, CanTransition(domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.RoleEmployee, false))
	assert.False(t, CanTransition(domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.RoleEmployee, true))
}

func TestCanTransitionClosedIsTerminal(t *testing.T) {
	targets := []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusWaitingResponse,
		domain.TicketStatusResolved,
	}
	for _, to := range targets {
		assert.False(t, CanTransition(domain.TicketStatusClosed, to, domain.RoleAdmin, true), "closed -> %s", to)
	}
}

func TestCanTransitionCloseRequiresCreator(t *testing.T) {
	// Not even admin closes someone else's ticket.
	assert.False(t, CanTransition(domain.TicketStatusResolved, domain.TicketStatusClosed, domain.RoleAdmin, false))
	assert.False(t, CanTransition(domain.TicketStatusResolved, domain.TicketStatusClosed, domain.RoleSupport, false))
	assert.True(t, CanTransition(domain.TicketStatusResolved, domain.TicketStatusClosed, domain.RoleEmployee, true))

	// Only from resolved.
	assert.False(t, CanTransition(domain.TicketStatusOpen, domain.TicketStatusClosed, domain.RoleEmployee, true))
	assert.False(t, CanTransition(domain.TicketStatusInProgress, domain.TicketStatusClosed, domain.RoleEmployee, true))
}

func TestCanTransitionCreatorReopensResolved(t *testing.T) {
	assert.True(t, CanTransition(domain.TicketStatusResolved, domain.TicketStatusInProgress, domain.RoleEmployee, true))
	assert.False(t, CanTransition(domain.TicketStatusResolved, domain.TicketStatusOpen, domain.RoleEmployee, true))
}

func TestCanTransitionUnknownStatusRejected(t *testing.T) {
	assert.False(t, CanTransition(domain.TicketStatus("archived"), domain.TicketStatusOpen, domain.RoleAdmin, true))
	assert.False(t, CanTransition(domain.TicketStatusOpen, domain.TicketStatus("archived"), domain.RoleAdmin, true))
}

func TestTransitionResolvedStampsTimestamp(t *testing.T) {
	ticket := &domain.Ticket{Status: domain.TicketStatusInProgress, CreatedBy: creatorID}
	now := time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)

	require.NoError(t, Transition(ticket, domain.TicketStatusResolved, domain.RoleSupport, agentID, now))
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, now, *ticket.ResolvedAt)
}

func TestTransitionAwayFromResolvedClearsResolution(t *testing.T) {
	ticket := resolvedTicket()
	now := time.Now()

	require.NoError(t, Transition(ticket, domain.TicketStatusInProgress, domain.RoleSupport, agentID, now))
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.Nil(t, ticket.ResolvedAt)
}

func TestTransitionNonCreatorCloseIsUnauthorized(t *testing.T) {
	ticket := resolvedTicket()
	err := Transition(ticket, domain.TicketStatusClosed, domain.RoleAdmin, adminID, time.Now())
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
}

func TestTransitionInvalidEdgeCode(t *testing.T) {
	ticket := &domain.Ticket{Status: domain.TicketStatusOpen, CreatedBy: creatorID}
	err := Transition(ticket, domain.TicketStatusClosed, domain.RoleEmployee, creatorID, time.Now())
	require.Error(t, err)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, err))
}

func TestCloseByCreator(t *testing.T) {
	ticket := resolvedTicket()
	now := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	rating := 4

	require.NoError(t, Close(ticket, &rating, "  quick fix, thanks  ", creatorID, now))
	assert.Equal(t, domain.TicketStatusClosed, ticket.Status)
	require.NotNil(t, ticket.ClosedAt)
	assert.Equal(t, now, *ticket.ClosedAt)
	require.NotNil(t, ticket.ResolutionRating)
	assert.Equal(t, 4, *ticket.ResolutionRating)
	require.NotNil(t, ticket.ResolutionFeedback)
	assert.Equal(t, "quick fix, thanks", *ticket.ResolutionFeedback)
	require.NotNil(t, ticket.ResolutionConfirmedBy)
	assert.Equal(t, creatorID, *ticket.ResolutionConfirmedBy)
	require.NotNil(t, ticket.ResolutionConfirmedAt)
	assert.Equal(t, now, *ticket.ResolutionConfirmedAt)
}

func TestCloseClampsRating(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"below range", 0, 1},
		{"negative", -7, 1},
		{"in range", 3, 3},
		{"above range", 9, 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ticket := resolvedTicket()
			require.NoError(t, Close(ticket, &tc.in, "", creatorID, time.Now()))
			require.NotNil(t, ticket.ResolutionRating)
			assert.Equal(t, tc.want, *ticket.ResolutionRating)
		})
	}
}

func TestCloseWithoutRatingOrFeedback(t *testing.T) {
	ticket := resolvedTicket()
	require.NoError(t, Close(ticket, nil, "   \t\n", creatorID, time.Now()))
	assert.Nil(t, ticket.ResolutionRating)
	assert.Nil(t, ticket.ResolutionFeedback)
	assert.Equal(t, domain.TicketStatusClosed, ticket.Status)
}

func TestCloseRejectsNonCreator(t *testing.T) {
	ticket := resolvedTicket()
	err := Close(ticket, nil, "", adminID, time.Now())
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}

func TestCloseRequiresResolvedStatus(t *testing.T) {
	ticket := &domain.Ticket{Status: domain.TicketStatusInProgress, CreatedBy: creatorID}
	err := Close(ticket, nil, "", creatorID, time.Now())
	require.Error(t, err)
	assert.Equal(t, "INVALID_STATE", errorCode(t, err))
}

func TestReopenClearsEveryResolutionField(t *testing.T) {
	now := time.Now()
	rating := 5
	feedback := "great"
	ticket := resolvedTicket()
	ticket.ClosedAt = &now
	ticket.ResolutionRating = &rating
	ticket.ResolutionFeedback = &feedback
	ticket.ResolutionConfirmedAt = &now
	confirmedBy := creatorID
	ticket.ResolutionConfirmedBy = &confirmedBy

	require.NoError(t, Reopen(ticket, creatorID, now))
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.Nil(t, ticket.ResolvedAt)
	assert.Nil(t, ticket.ClosedAt)
	assert.Nil(t, ticket.ResolutionRating)
	assert.Nil(t, ticket.ResolutionFeedback)
	assert.Nil(t, ticket.ResolutionConfirmedAt)
	assert.Nil(t, ticket.ResolutionConfirmedBy)
}

func TestReopenRejectsNonCreator(t *testing.T) {
	ticket := resolvedTicket()
	err := Reopen(ticket, agentID, time.Now())
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}

func TestReopenRequiresResolvedStatus(t *testing.T) {
	ticket := &domain.Ticket{Status: domain.TicketStatusClosed, CreatedBy: creatorID}
	err := Reopen(ticket, creatorID, time.Now())
	require.Error(t, err)
	assert.Equal(t, "INVALID_STATE", errorCode(t, err))
}
