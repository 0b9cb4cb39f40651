package realtime

import (
	"encoding/json"
	"time"
)

// Action enumerates row-change kinds delivered to clients.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Known change-feed tables.
const (
	TableTickets  = "tickets"
	TableMessages = "ticket_messages"
	TableAssets   = "assets"
)

// ChangeEvent is a row-level insert/update/delete notification. Delivery
// is at-least-once and unordered relative to optimistic local writes;
// consumers reconcile by primary key, last event wins.
type ChangeEvent struct {
	Table     string          `json:"table"`
	Action    Action          `json:"action"`
	RowID     string          `json:"row_id"`
	Row       json.RawMessage `json:"row,omitempty"`
	StaffOnly bool            `json:"staff_only,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewChangeEvent marshals the row and stamps the event.
func NewChangeEvent(table string, action Action, rowID string, row any) ChangeEvent {
	ev := ChangeEvent{
		Table:     table,
		Action:    action,
		RowID:     rowID,
		Timestamp: time.Now().UTC(),
	}
	if row != nil {
		if data, err := json.Marshal(row); err == nil {
			ev.Row = data
		}
	}
	return ev
}
