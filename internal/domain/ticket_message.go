package domain

import "time"

// TicketMessage captures communications in a ticket thread.
// Internal messages are visible only to support and admin viewers.
type TicketMessage struct {
	ID         string
	TicketID   string
	UserID     string
	Body       string
	IsInternal bool
	CreatedAt  time.Time

	// Joined identity fields, populated on reads.
	AuthorName string
	AuthorRole Role
}
