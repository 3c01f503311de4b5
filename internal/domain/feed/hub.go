package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EventType for live feed messages
type EventType string

const (
	EventXPGranted  EventType = "xp_granted"
	EventJobClosed  EventType = "job_closed"
	EventPurchase   EventType = "item_purchased"
	EventEventBonus EventType = "event_bonus"
)

const feedChannel = "feed:events"

// Event is one broadcast record: who earned what and why.
type Event struct {
	Type      EventType   `json:"type"`
	UserID    uuid.UUID   `json:"user_id,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher is what the domain services depend on. Publishing happens after
// the owning transaction commits; a lost event is acceptable, a phantom one
// is not.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Connection represents one WebSocket subscriber
type Connection struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans events out to local WebSocket subscribers. With Redis configured
// the fan-out goes through Pub/Sub so every instance sees every event.
type Hub struct {
	connections map[*Connection]bool
	redis       *redis.Client
	pubsub      *redis.PubSub

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a feed hub. redisClient may be nil for single-instance runs.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		connections: make(map[*Connection]bool),
		redis:       redisClient,
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
	}

	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, feedChannel)
	}

	return h
}

// Run starts the hub loops (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn]; ok {
				delete(h.connections, conn)
				close(conn.Send)
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			return
		}
	}
}

// Stop shuts the hub down
func (h *Hub) Stop() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}

// Publish sends an event to all subscribers across instances.
func (h *Hub) Publish(ctx context.Context, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	payload, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode feed event")
		return
	}

	if h.redis != nil {
		if err := h.redis.Publish(ctx, feedChannel, payload).Err(); err != nil {
			log.Error().Err(err).Msg("Failed to publish feed event")
		}
		return
	}

	h.broadcast(payload)
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast([]byte(msg.Payload))
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections {
		select {
		case conn.Send <- payload:
		default:
			// Slow consumer, drop the event rather than block the hub.
			log.Warn().Msg("Feed subscriber buffer full, dropping event")
		}
	}
}
