package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diagnosis/wedding-portal/pkg/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

var _ EventBus = (*NATSEventBus)(nil)

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url, name string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(toMessage(msg))
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(toMessage(msg))
	})
	return err
}

func (n *NATSEventBus) Close() error {
	return n.conn.Drain()
}

func toMessage(msg *nats.Msg) *Message {
	return &Message{
		Subject:   msg.Subject,
		Data:      msg.Data,
		Timestamp: time.Now(),
		ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
	}
}

// Event subjects. Everything the portal emits lives under "portal.".
const (
	AllPortalEvents = "portal.>"

	GuestLoggedIn       = "portal.guest.logged_in"
	GuestAnswersSaved   = "portal.guest.answers_saved"
	GuestWelcomed       = "portal.guest.welcomed"
	GuestAvatarUpdated  = "portal.guest.avatar_updated"
	GuestProfileUpdated = "portal.guest.profile_updated"
	QuestionCreated     = "portal.question.created"

	ChecklistItemCreated = "portal.checklist.created"
	ChecklistItemUpdated = "portal.checklist.updated"
	ChecklistItemDeleted = "portal.checklist.deleted"
	ChecklistToggled     = "portal.checklist.toggled"

	TimelineEventCreated = "portal.timeline.created"
	TimelineEventUpdated = "portal.timeline.updated"
	TimelineEventDeleted = "portal.timeline.deleted"
)

// Event payloads
type GuestEvent struct {
	GuestID    uuid.UUID `json:"guest_id"`
	GuestName  string    `json:"guest_name"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type AnswersSavedEvent struct {
	GuestID     uuid.UUID `json:"guest_id"`
	AnswerCount int       `json:"answer_count"`
	Welcome     bool      `json:"welcome"`
	SavedAt     time.Time `json:"saved_at"`
}

type ChecklistEvent struct {
	ItemID     uuid.UUID `json:"item_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	Content    string    `json:"content,omitempty"`
	Visibility string    `json:"visibility,omitempty"`
	Completed  *bool     `json:"completed,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type TimelineEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	Title      string    `json:"title,omitempty"`
	Side       string    `json:"side,omitempty"`
	Visibility string    `json:"visibility,omitempty"`
	Date       time.Time `json:"date,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type QuestionEvent struct {
	Key        string    `json:"key"`
	CreatedBy  uuid.UUID `json:"created_by"`
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
}
