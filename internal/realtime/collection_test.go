package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawRow(s string) json.RawMessage { return json.RawMessage(s) }

func TestCollectionInsertUpdateDelete(t *testing.T) {
	c := NewCollection()

	c.Apply(ChangeEvent{Action: ActionInsert, RowID: "r1", Row: rawRow(`{"v":1}`)})
	require.Equal(t, 1, c.Len())

	row, ok := c.Get("r1")
	require.True(t, ok)
	assert.JSONEq(t, `{"v":1}`, string(row))

	c.Apply(ChangeEvent{Action: ActionUpdate, RowID: "r1", Row: rawRow(`{"v":2}`)})
	row, ok = c.Get("r1")
	require.True(t, ok)
	assert.JSONEq(t, `{"v":2}`, string(row))
	assert.Equal(t, 1, c.Len())

	c.Apply(ChangeEvent{Action: ActionDelete, RowID: "r1"})
	_, ok = c.Get("r1")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCollectionUpdateWithoutInsertUpserts(t *testing.T) {
	c := NewCollection()

	// Delivery is unordered: an update may arrive before the insert.
	c.Apply(ChangeEvent{Action: ActionUpdate, RowID: "r1", Row: rawRow(`{"v":1}`)})
	_, ok := c.Get("r1")
	assert.True(t, ok)
}

func TestCollectionDuplicateDeliveryIsIdempotent(t *testing.T) {
	c := NewCollection()

	ev := ChangeEvent{Action: ActionInsert, RowID: "r1", Row: rawRow(`{"v":1}`)}
	c.Apply(ev)
	c.Apply(ev)
	assert.Equal(t, 1, c.Len())

	del := ChangeEvent{Action: ActionDelete, RowID: "r1"}
	c.Apply(del)
	c.Apply(del)
	assert.Zero(t, c.Len())
}

func TestCollectionLastWriteWins(t *testing.T) {
	c := NewCollection()

	c.Apply(ChangeEvent{Action: ActionInsert, RowID: "r1", Row: rawRow(`{"v":1}`)})
	c.Apply(ChangeEvent{Action: ActionUpdate, RowID: "r1", Row: rawRow(`{"v":2}`)})
	c.Apply(ChangeEvent{Action: ActionUpdate, RowID: "r1", Row: rawRow(`{"v":3}`)})

	row, ok := c.Get("r1")
	require.True(t, ok)
	assert.JSONEq(t, `{"v":3}`, string(row))
}

func TestCollectionIgnoresEmptyRowID(t *testing.T) {
	c := NewCollection()
	c.Apply(ChangeEvent{Action: ActionInsert, RowID: "", Row: rawRow(`{}`)})
	assert.Zero(t, c.Len())
}

func TestCollectionSnapshotIsACopy(t *testing.T) {
	c := NewCollection()
	c.Apply(ChangeEvent{Action: ActionInsert, RowID: "r1", Row: rawRow(`{"v":1}`)})

	snap := c.Snapshot(false)
	require.Len(t, snap, 1)

	delete(snap, "r1")
	_, ok := c.Get("r1")
	assert.True(t, ok)
}

func TestCollectionSnapshotHidesStaffOnlyRowsFromNonStaff(t *testing.T) {
	c := NewCollection()
	c.Apply(ChangeEvent{Action: ActionInsert, RowID: "r1", Row: rawRow(`{"v":1}`)})
	c.Apply(ChangeEvent{Action: ActionInsert, RowID: "r2", Row: rawRow(`{"v":2}`), StaffOnly: true})

	snap := c.Snapshot(false)
	require.Len(t, snap, 1)
	_, ok := snap["r1"]
	assert.True(t, ok)

	snap = c.Snapshot(true)
	assert.Len(t, snap, 2)
}
