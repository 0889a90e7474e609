package notifier

import (
	"context"
	"time"

	"github.com/yigit/agora/internal/pkg/email"
	"github.com/yigit/agora/internal/pkg/websocket"
)

// Delivery is a single retryable unit of work
type Delivery func(ctx context.Context) error

// Channel turns an event into deliveries
type Channel interface {
	Name() string
	Deliveries(ev Event) []Delivery
}

// EmailChannel sends one message per recipient
type EmailChannel struct {
	mailer email.Mailer
}

// NewEmailChannel creates an e-mail channel
func NewEmailChannel(mailer email.Mailer) *EmailChannel {
	return &EmailChannel{mailer: mailer}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Deliveries(ev Event) []Delivery {
	out := make([]Delivery, 0, len(ev.Recipients))
	for _, r := range ev.Recipients {
		if r.Email == "" {
			continue
		}
		msg := email.Message{To: r.Email, ToName: r.Name, Subject: ev.Subject, HTML: ev.Body}
		out = append(out, func(ctx context.Context) error {
			return c.mailer.Send(ctx, msg)
		})
	}
	return out
}

// FeedChannel pushes events to the staff WebSocket feed
type FeedChannel struct {
	hub *websocket.Hub
}

// NewFeedChannel creates a feed channel
func NewFeedChannel(hub *websocket.Hub) *FeedChannel {
	return &FeedChannel{hub: hub}
}

func (c *FeedChannel) Name() string { return "feed" }

func (c *FeedChannel) Deliveries(ev Event) []Delivery {
	if ev.Topic == "" {
		return nil
	}
	return []Delivery{func(ctx context.Context) error {
		if !c.hub.Broadcast(&websocket.Event{
			Kind:      string(ev.Kind),
			Topic:     ev.Topic,
			Title:     ev.Subject,
			Payload:   ev.Payload,
			Timestamp: time.Now().UTC(),
		}) {
			return ErrFeedClosed
		}
		return nil
	}}
}
