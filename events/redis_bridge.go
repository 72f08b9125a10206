package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// envelope is the wire form of an event on the Redis channel
type envelope struct {
	Type   string `json:"type"`
	Origin string `json:"origin"`
	ID     string `json:"id,omitempty"`
	MDN    string `json:"mdn,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func encodeEvent(origin string, event Event) ([]byte, error) {
	env := envelope{Type: event.EventType(), Origin: origin}
	switch e := event.(type) {
	case CheckIn:
		env.ID = e.ID.String()
		env.MDN = e.MDN
		env.Reason = e.Reason
	case Reset:
	case Resolved:
		env.ID = e.ID.String()
	default:
		return nil, fmt.Errorf("unsupported event type %T", event)
	}
	return json.Marshal(env)
}

func decodeEvent(payload []byte) (string, Event, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return "", nil, fmt.Errorf("invalid event payload: %w", err)
	}
	switch env.Type {
	case TypeCheckIn:
		id, err := uuid.Parse(env.ID)
		if err != nil {
			return env.Origin, nil, fmt.Errorf("invalid check_in id %q: %w", env.ID, err)
		}
		return env.Origin, CheckIn{ID: id, MDN: env.MDN, Reason: env.Reason}, nil
	case TypeReset:
		return env.Origin, Reset{}, nil
	case TypeResolved:
		id, err := uuid.Parse(env.ID)
		if err != nil {
			return env.Origin, nil, fmt.Errorf("invalid resolved id %q: %w", env.ID, err)
		}
		return env.Origin, Resolved{ID: id}, nil
	default:
		return env.Origin, nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

// RedisBridge joins the buses of several terminals through a Redis pub/sub channel.
// Events published locally are sent to the channel; events arriving from other
// nodes are delivered to local subscribers only. Check-ins carry the queue entry ID
// and assist/remove publish Resolved, so every node keeps the same queue.
type RedisBridge struct {
	client  *redis.Client
	bus     *Bus
	channel string
	origin  string
}

// NewRedisBridge attaches a bridge to bus. Forwarding starts immediately, receiving once Run is called.
func NewRedisBridge(client *redis.Client, bus *Bus, channel string) *RedisBridge {
	b := &RedisBridge{
		client:  client,
		bus:     bus,
		channel: channel,
		origin:  uuid.NewString(),
	}
	bus.OnPublish(b.forward)
	return b
}

// Origin identifies this node on the channel
func (b *RedisBridge) Origin() string {
	return b.origin
}

func (b *RedisBridge) forward(ctx context.Context, event Event) {
	payload, err := encodeEvent(b.origin, event)
	if err != nil {
		log.Printf("events: failed to encode %s event: %v", event.EventType(), err)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := b.client.Publish(pubCtx, b.channel, payload).Err(); err != nil {
		log.Printf("events: failed to publish %s event to redis: %v", event.EventType(), err)
	}
}

// Run receives remote events until ctx is done
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	log.Printf("events: bridged to redis channel %s as %s", b.channel, b.origin)

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			b.handle(ctx, []byte(msg.Payload))
		}
	}
}

func (b *RedisBridge) handle(ctx context.Context, payload []byte) {
	origin, event, err := decodeEvent(payload)
	if err != nil {
		log.Printf("events: dropped remote message: %v", err)
		return
	}
	if origin == b.origin {
		return
	}
	b.bus.Deliver(ctx, event)
}
