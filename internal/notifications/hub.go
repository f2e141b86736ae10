package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"packtrail/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
)

const (
	// Max connections per user.
	maxConnsPerUser = 8
	// Max total connections per instance.
	maxTotalConns = 10000

	// liveUsersKey holds the cross-instance online-user counter.
	liveUsersKey = "live:users"
)

var wsLog = observability.NewWSLogger("live_count")

// countMessage is what clients receive whenever the live count changes.
type countMessage struct {
	Type    string `json:"type"`
	Payload struct {
		Count int64 `json:"count"`
	} `json:"payload"`
}

func encodeCount(count int64) []byte {
	var msg countMessage
	msg.Type = "live_count"
	msg.Payload.Count = count
	data, _ := json.Marshal(msg)
	return data
}

// Hub is the explicit registry of live connections, keyed by user. A user
// with several tabs counts once; the count only moves on a user's first
// connection and last disconnect.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int

	rdb      *redis.Client
	notifier *Notifier
}

// NewHub returns a Hub. rdb may be nil; the count is then instance-local.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		conns:    make(map[uint]map[*Client]struct{}),
		rdb:      rdb,
		notifier: NewNotifier(rdb),
	}
}

// Register adds a connection for userID, enforcing per-user and per-instance
// caps.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	if h.totalConns >= maxTotalConns {
		h.mu.Unlock()
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, errors.New("user connection limit reached")
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	firstConn := len(m) == 1
	h.mu.Unlock()

	observability.WebSocketConnections.Inc()
	wsLog.LogConnect(context.Background(), userID, h.LocalUsers())
	if firstConn {
		h.publishDelta(context.Background(), 1)
	}
	return client, nil
}

// UnregisterClient removes a connection and closes its send channel.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	removed := false
	lastConn := false
	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
			removed = true
			close(client.Send)
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
			lastConn = true
		}
	}
	h.mu.Unlock()

	if removed {
		observability.WebSocketConnections.Dec()
		wsLog.LogDisconnect(context.Background(), client.UserID, h.LocalUsers(), "connection closed")
	}
	if removed && lastConn {
		h.publishDelta(context.Background(), -1)
	}
}

// LocalUsers reports the number of distinct users connected to this instance.
func (h *Hub) LocalUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Count returns the live-user count: the shared redis counter when
// available, otherwise this instance's own view.
func (h *Hub) Count(ctx context.Context) int64 {
	if h.rdb != nil {
		if n, err := h.rdb.Get(ctx, liveUsersKey).Int64(); err == nil {
			return n
		}
	}
	return int64(h.LocalUsers())
}

// CountMessage returns the current live count encoded as a wire message,
// for seeding a freshly connected client.
func (h *Hub) CountMessage(ctx context.Context) []byte {
	return encodeCount(h.Count(ctx))
}

// publishDelta moves the shared counter and fans out the new count. Without
// redis the local count is broadcast directly.
func (h *Hub) publishDelta(ctx context.Context, delta int64) {
	if h.rdb == nil {
		h.BroadcastCount(int64(h.LocalUsers()))
		return
	}

	count, err := h.rdb.IncrBy(ctx, liveUsersKey, delta).Result()
	if err != nil {
		wsLog.LogError(ctx, 0, err, "counter_update")
		h.BroadcastCount(int64(h.LocalUsers()))
		return
	}
	if count < 0 {
		// Counter drift after an unclean restart; clamp and repair.
		count = 0
		_ = h.rdb.Set(ctx, liveUsersKey, 0, 0).Err()
	}

	// Every instance, this one included, hears the change on the channel
	// and broadcasts from there.
	if err := h.notifier.PublishCount(ctx, count); err != nil {
		wsLog.LogError(ctx, 0, err, "count_publish")
		h.BroadcastCount(count)
	}
}

// BroadcastCount pushes the count to every connected client.
func (h *Hub) BroadcastCount(count int64) {
	message := encodeCount(count)

	h.mu.RLock()
	clients := make([]*Client, 0, h.totalConns)
	for _, m := range h.conns {
		for c := range m {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.TrySend(message)
	}
}

// Run subscribes to cross-instance count changes and fans them out locally.
// Blocks until ctx is done; start it in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.notifier.SubscribeCount(ctx, h.BroadcastCount)
}
