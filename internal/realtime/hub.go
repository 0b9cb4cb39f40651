package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StaffLocal is the fiber.Ctx local the router sets before the websocket
// upgrade so the hub knows whether the subscriber holds a staff role.
const StaffLocal = "realtime_staff"

// Publisher pushes row-change events into the change feed. Services hold
// this interface so tests can swap in a recorder.
type Publisher interface {
	PublishChange(ctx context.Context, ev ChangeEvent)
}

// wsConn is the subset of *websocket.Conn the hub touches, so tests can
// stand in a recorder.
type wsConn interface {
	WriteJSON(v interface{}) error
	ReadMessage() (int, []byte, error)
}

// Hub fans row-change events out to websocket subscribers. Events go
// through a Redis channel so every instance (including the publishing
// one) sees the same stream; without Redis the hub degrades to local
// delivery. A per-table keyed cache provides a snapshot for new
// subscribers, so late joiners converge the same way as live ones.
// Staff-only events (internal ticket notes) are withheld from
// non-staff subscribers in both the live stream and the snapshot.
type Hub struct {
	logger  *zap.Logger
	redis   *redis.Client
	channel string

	mu      sync.RWMutex
	clients map[*hubClient]struct{}
	caches  map[string]*Collection
}

type hubClient struct {
	conn   wsConn
	tables map[string]struct{}
	staff  bool
	mu     sync.Mutex
}

// NewHub creates the hub. redisClient may be nil.
func NewHub(logger *zap.Logger, redisClient *redis.Client, channel string) *Hub {
	return &Hub{
		logger:  logger,
		redis:   redisClient,
		channel: channel,
		clients: make(map[*hubClient]struct{}),
		caches:  make(map[string]*Collection),
	}
}

// PublishChange sends the event through Redis when available, falling
// back to direct local delivery. A failed publish is logged once and
// dropped; there are no retries.
func (h *Hub) PublishChange(ctx context.Context, ev ChangeEvent) {
	if h.redis == nil {
		h.deliver(ev)
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal change event", zap.Error(err))
		return
	}
	if err := h.redis.Publish(ctx, h.channel, data).Err(); err != nil {
		h.logger.Warn("publish change to redis failed; delivering locally", zap.Error(err))
		h.deliver(ev)
	}
}

// Run consumes the Redis channel until the context is canceled. No-op
// when Redis is not configured.
func (h *Hub) Run(ctx context.Context) {
	if h.redis == nil {
		return
	}
	pubsub := h.redis.Subscribe(ctx, h.channel)
	defer pubsub.Close() //nolint:errcheck

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				h.logger.Warn("malformed change event", zap.Error(err))
				continue
			}
			h.deliver(ev)
		}
	}
}

func (h *Hub) deliver(ev ChangeEvent) {
	h.cacheFor(ev.Table).Apply(ev)

	h.mu.RLock()
	targets := make([]*hubClient, 0, len(h.clients))
	for client := range h.clients {
		if client.wants(ev) {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if err := client.write(ev); err != nil {
			h.logger.Debug("dropping websocket client", zap.Error(err))
			h.unregister(client)
		}
	}
}

// Handler returns the websocket endpoint. Clients pass
// ?tables=tickets,assets to choose their subscriptions; no parameter
// subscribes to everything. The route must sit behind the auth
// middleware, which resolves the staff flag the hub filters on.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		staff, _ := conn.Locals(StaffLocal).(bool)
		client := &hubClient{
			conn:   conn,
			tables: parseTables(conn.Query("tables")),
			staff:  staff,
		}

		h.attach(client)
		defer h.unregister(client)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}

// Upgrade gates the route so non-websocket requests get a 426.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// attach registers the client and writes its snapshot while holding the
// client's write lock, so no event published in between is missed or
// reordered behind older snapshot rows.
func (h *Hub) attach(client *hubClient) {
	client.mu.Lock()
	defer client.mu.Unlock()

	h.mu.Lock()
	snapshot := make(map[string]map[string]json.RawMessage, len(h.caches))
	for table, cache := range h.caches {
		if client.subscribed(table) {
			snapshot[table] = cache.Snapshot(client.staff)
		}
	}
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	for table, rows := range snapshot {
		for id, row := range rows {
			ev := ChangeEvent{Table: table, Action: ActionInsert, RowID: id, Row: row}
			if err := client.conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

func (h *Hub) cacheFor(table string) *Collection {
	h.mu.Lock()
	defer h.mu.Unlock()
	cache, ok := h.caches[table]
	if !ok {
		cache = NewCollection()
		h.caches[table] = cache
	}
	return cache
}

func (h *Hub) unregister(client *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

func (c *hubClient) wants(ev ChangeEvent) bool {
	if ev.StaffOnly && !c.staff {
		return false
	}
	return c.subscribed(ev.Table)
}

func (c *hubClient) subscribed(table string) bool {
	if len(c.tables) == 0 {
		return true
	}
	_, ok := c.tables[table]
	return ok
}

func (c *hubClient) write(ev ChangeEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(ev)
}

func parseTables(raw string) map[string]struct{} {
	tables := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			tables[part] = struct{}{}
		}
	}
	return tables
}
