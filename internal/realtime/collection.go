package realtime

import (
	"encoding/json"
	"sync"
)

// Collection is a keyed row cache reconciled from change events. Inserts
// and updates upsert by row id; deletes remove. Applying the same event
// twice is a no-op, so duplicate delivery is safe.
type Collection struct {
	mu   sync.RWMutex
	rows map[string]cachedRow
}

type cachedRow struct {
	row       json.RawMessage
	staffOnly bool
}

// NewCollection builds an empty collection.
func NewCollection() *Collection {
	return &Collection{rows: make(map[string]cachedRow)}
}

// Apply reconciles a change event into the collection, last event wins.
func (c *Collection) Apply(ev ChangeEvent) {
	if ev.RowID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch ev.Action {
	case ActionInsert, ActionUpdate:
		c.rows[ev.RowID] = cachedRow{row: ev.Row, staffOnly: ev.StaffOnly}
	case ActionDelete:
		delete(c.rows, ev.RowID)
	}
}

// Get returns the cached row for an id.
func (c *Collection) Get(id string) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cached, ok := c.rows[id]
	return cached.row, ok
}

// Len returns the number of cached rows.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

// Snapshot returns the cached rows keyed by id. Staff-only rows are
// included only for staff readers.
func (c *Collection) Snapshot(staff bool) map[string]json.RawMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]json.RawMessage, len(c.rows))
	for id, cached := range c.rows {
		if cached.staffOnly && !staff {
			continue
		}
		out[id] = cached.row
	}
	return out
}
