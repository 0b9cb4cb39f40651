package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingConn struct {
	events []ChangeEvent
}

func (c *recordingConn) WriteJSON(v interface{}) error {
	if ev, ok := v.(ChangeEvent); ok {
		c.events = append(c.events, ev)
	}
	return nil
}

func (c *recordingConn) ReadMessage() (int, []byte, error) {
	return 0, nil, nil
}

func newTestClient(tables string, staff bool) (*hubClient, *recordingConn) {
	conn := &recordingConn{}
	return &hubClient{conn: conn, tables: parseTables(tables), staff: staff}, conn
}

func TestHubWithholdsStaffOnlyEventsFromNonStaff(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, "changes")

	employeeClient, employeeConn := newTestClient("", false)
	staffClient, staffConn := newTestClient("", true)
	h.attach(employeeClient)
	h.attach(staffClient)

	ev := NewChangeEvent(TableMessages, ActionInsert, "m1", map[string]any{"body": "escalation detail"})
	ev.StaffOnly = true
	h.PublishChange(context.Background(), ev)

	assert.Empty(t, employeeConn.events)
	require.Len(t, staffConn.events, 1)
	assert.Equal(t, "m1", staffConn.events[0].RowID)
}

func TestHubSnapshotExcludesStaffOnlyRowsForNonStaff(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, "changes")

	public := NewChangeEvent(TableMessages, ActionInsert, "m1", map[string]any{"body": "printer is back"})
	internal := NewChangeEvent(TableMessages, ActionInsert, "m2", map[string]any{"body": "vendor escalation"})
	internal.StaffOnly = true
	h.PublishChange(context.Background(), public)
	h.PublishChange(context.Background(), internal)

	employeeClient, employeeConn := newTestClient("ticket_messages", false)
	h.attach(employeeClient)
	require.Len(t, employeeConn.events, 1)
	assert.Equal(t, "m1", employeeConn.events[0].RowID)

	staffClient, staffConn := newTestClient("ticket_messages", true)
	h.attach(staffClient)
	assert.Len(t, staffConn.events, 2)
}

func TestHubAttachRegistersClientForLiveDelivery(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, "changes")

	client, conn := newTestClient("tickets", false)
	h.attach(client)
	require.Empty(t, conn.events)

	h.PublishChange(context.Background(), NewChangeEvent(TableTickets, ActionInsert, "t1", map[string]any{"status": "open"}))
	require.Len(t, conn.events, 1)
	assert.Equal(t, "t1", conn.events[0].RowID)
}

func TestHubRespectsTableSubscriptions(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, "changes")

	client, conn := newTestClient("tickets", true)
	h.attach(client)

	h.PublishChange(context.Background(), NewChangeEvent(TableAssets, ActionInsert, "a1", map[string]any{"name": "switch"}))
	assert.Empty(t, conn.events)

	h.PublishChange(context.Background(), NewChangeEvent(TableTickets, ActionUpdate, "t1", map[string]any{"status": "in_progress"}))
	require.Len(t, conn.events, 1)
	assert.Equal(t, TableTickets, conn.events[0].Table)
}
