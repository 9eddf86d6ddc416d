package adminfeed

import (
	"attorneyhub/backend/internal/events"
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the Redis Pub/Sub channel feed messages travel on.
const Channel = "attorney_hub:adminfeed"

// Relay is the Pub/Sub transport between server instances.
type Relay interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) *redis.PubSub
}

// Hub tracks connected admin clients and fans feed messages out to them.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	broadcastCh  chan Message
	done         chan struct{}

	Relay Relay
	Log   *zap.Logger
	Now   func() time.Time
}

// NewHub creates a hub. With a nil relay messages are only delivered to
// clients of this instance.
func NewHub(relay Relay, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		broadcastCh:  make(chan Message, 64),
		done:         make(chan struct{}),
		Relay:        relay,
		Log:          log,
		Now:          time.Now,
	}
}

// Register forwards complaint events from the bus into the feed.
func (h *Hub) Register(bus *events.Bus) {
	events.Subscribe(bus, func(ctx context.Context, e events.ComplaintFiled) {
		h.Publish(ctx, filedMessage(e))
	})
	events.Subscribe(bus, func(ctx context.Context, e events.ComplaintStatusChanged) {
		h.Publish(ctx, statusMessage(e, h.Now().UTC()))
	})
}

// Publish sends msg to every admin on every instance.
func (h *Hub) Publish(ctx context.Context, msg Message) {
	if h.Relay == nil {
		h.broadcast(msg)
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.Log.Error("encode feed message", zap.Error(err))
		return
	}
	if err := h.Relay.Publish(ctx, Channel, payload); err != nil {
		h.Log.Warn("feed relay publish failed, delivering locally", zap.Error(err))
		h.broadcast(msg)
	}
}

func (h *Hub) broadcast(msg Message) {
	select {
	case h.broadcastCh <- msg:
	default:
		h.Log.Warn("feed backlog full, dropping message", zap.String("complaint_id", msg.ComplaintID))
	}
}

// StartRelayListener subscribes to the relay channel and feeds received
// messages to the local clients until ctx is done.
func (h *Hub) StartRelayListener(ctx context.Context) {
	if h.Relay == nil {
		return
	}
	go func() {
		pubsub := h.Relay.Subscribe(ctx, Channel)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var msg Message
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					h.Log.Warn("undecodable feed message", zap.Error(err))
					continue
				}
				h.broadcast(msg)
			}
		}
	}()
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Join hands c to the Run loop. It reports false when the hub has stopped.
func (h *Hub) Join(c Client) bool {
	select {
	case h.RegisterCh <- c:
		return true
	case <-h.done:
		return false
	}
}

// Leave removes c. After shutdown it returns at once; Run has already
// closed every client.
func (h *Hub) Leave(c Client) {
	select {
	case h.UnregisterCh <- c:
	case <-h.done:
	}
}

// Run owns the client map until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id, c := range h.Clients {
				c.Close()
				delete(h.Clients, id)
			}
			return

		case c := <-h.RegisterCh:
			h.Clients[c.GetID()] = c
			h.Log.Debug("admin feed client connected", zap.String("client_id", c.GetID()), zap.String("user_id", c.GetUserID()))

		case c := <-h.UnregisterCh:
			if _, ok := h.Clients[c.GetID()]; ok {
				delete(h.Clients, c.GetID())
				c.Close()
				h.Log.Debug("admin feed client disconnected", zap.String("client_id", c.GetID()))
			}

		case msg := <-h.broadcastCh:
			for id, c := range h.Clients {
				select {
				case c.GetSendChannel() <- msg:
				default:
					// Slow reader: drop it rather than stall every other admin.
					delete(h.Clients, id)
					c.Close()
					h.Log.Warn("admin feed client too slow, disconnected", zap.String("client_id", id))
				}
			}
		}
	}
}
