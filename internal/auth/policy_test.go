package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestCanOnTicket(t *testing.T) {
	creator := &domain.User{ID: "u-1", Role: domain.RoleEmployee}
	other := &domain.User{ID: "u-2", Role: domain.RoleEmployee}
	support := &domain.User{ID: "u-3", Role: domain.RoleSupport}
	admin := &domain.User{ID: "u-4", Role: domain.RoleAdmin}
	ticket := &domain.Ticket{ID: "t-1", CreatedBy: creator.ID}

	tests := []struct {
		name   string
		user   *domain.User
		action Action
		want   bool
	}{
		{"creator views", creator, ActionViewTicket, true},
		{"other employee cannot view", other, ActionViewTicket, false},
		{"support views", support, ActionViewTicket, true},
		{"creator posts message", creator, ActionPostMessage, true},
		{"other employee cannot post", other, ActionPostMessage, false},
		{"creator cannot change status", creator, ActionUpdateStatus, false},
		{"support changes status", support, ActionUpdateStatus, true},
		{"support assigns", support, ActionAssignTicket, true},
		{"creator closes", creator, ActionCloseTicket, true},
		{"support cannot close", support, ActionCloseTicket, false},
		{"admin cannot close", admin, ActionCloseTicket, false},
		{"creator reopens", creator, ActionReopenTicket, true},
		{"admin cannot reopen", admin, ActionReopenTicket, false},
		{"creator deletes", creator, ActionDeleteTicket, true},
		{"admin cannot delete", admin, ActionDeleteTicket, false},
		{"creator cannot post internal note", creator, ActionPostInternalNote, false},
		{"support posts internal note", support, ActionPostInternalNote, true},
		{"creator cannot view internal notes", creator, ActionViewInternalNotes, false},
		{"admin views internal notes", admin, ActionViewInternalNotes, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanOnTicket(tc.user, tc.action, ticket))
		})
	}
}

func TestCanOnTicketNilInputs(t *testing.T) {
	user := &domain.User{ID: "u-1", Role: domain.RoleAdmin}
	assert.False(t, CanOnTicket(nil, ActionViewTicket, &domain.Ticket{}))
	assert.False(t, CanOnTicket(user, ActionViewTicket, nil))
}

func TestCanManageAssets(t *testing.T) {
	assert.False(t, CanManageAssets(nil))
	assert.False(t, CanManageAssets(&domain.User{Role: domain.RoleEmployee}))
	assert.False(t, CanManageAssets(&domain.User{Role: domain.RoleSupport}))
	assert.True(t, CanManageAssets(&domain.User{Role: domain.RoleAdmin}))
}
