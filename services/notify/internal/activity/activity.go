package activity

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/diagnosis/wedding-portal/pkg/events"
)

// Entry is one line of the guest activity log.
type Entry struct {
	Subject string
	Message string
	Attrs   []any
}

// Describe turns a portal event into an activity entry.
func Describe(msg *events.Message) (*Entry, error) {
	entry := &Entry{Subject: msg.Subject}

	switch {
	case msg.Subject == events.GuestAnswersSaved || msg.Subject == events.GuestWelcomed:
		var e events.AnswersSavedEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", msg.Subject, err)
		}
		entry.Message = "Guest saved answers"
		if e.Welcome {
			entry.Message = "Guest completed welcome"
		}
		entry.Attrs = []any{"guest_id", e.GuestID, "answers", e.AnswerCount}

	case strings.HasPrefix(msg.Subject, "portal.guest."):
		var e events.GuestEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", msg.Subject, err)
		}
		entry.Message = guestMessages[msg.Subject]
		entry.Attrs = []any{"guest_id", e.GuestID, "guest", e.GuestName}
		if e.Detail != "" {
			entry.Attrs = append(entry.Attrs, "detail", e.Detail)
		}

	case msg.Subject == events.QuestionCreated:
		var e events.QuestionEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", msg.Subject, err)
		}
		entry.Message = "Custom question added"
		entry.Attrs = []any{"key", e.Key, "created_by", e.CreatedBy}

	case strings.HasPrefix(msg.Subject, "portal.checklist."):
		var e events.ChecklistEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", msg.Subject, err)
		}
		entry.Message = "Checklist " + action(msg.Subject)
		entry.Attrs = []any{"item_id", e.ItemID, "actor_id", e.ActorID}
		if e.Completed != nil {
			entry.Attrs = append(entry.Attrs, "completed", *e.Completed)
		}
		if e.Visibility != "" {
			entry.Attrs = append(entry.Attrs, "visibility", e.Visibility)
		}

	case strings.HasPrefix(msg.Subject, "portal.timeline."):
		var e events.TimelineEvent
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", msg.Subject, err)
		}
		entry.Message = "Timeline " + action(msg.Subject)
		entry.Attrs = []any{"event_id", e.EventID, "actor_id", e.ActorID}
		if e.Side != "" {
			entry.Attrs = append(entry.Attrs, "side", e.Side)
		}

	default:
		entry.Message = "Unhandled portal event"
		entry.Attrs = []any{"bytes", len(msg.Data)}
	}

	if entry.Message == "" {
		entry.Message = "Guest activity"
	}
	return entry, nil
}

var guestMessages = map[string]string{
	events.GuestLoggedIn:       "Guest logged in",
	events.GuestAvatarUpdated:  "Guest updated avatar",
	events.GuestProfileUpdated: "Guest updated profile",
}

func action(subject string) string {
	return subject[strings.LastIndex(subject, ".")+1:]
}

// Handler returns a subscription callback that writes one log line per event.
func Handler(log *slog.Logger) func(msg *events.Message) {
	return func(msg *events.Message) {
		entry, err := Describe(msg)
		if err != nil {
			log.Warn("Dropping malformed event", "subject", msg.Subject, "message_id", msg.ID, "error", err)
			return
		}
		args := append([]any{"subject", entry.Subject, "message_id", msg.ID}, entry.Attrs...)
		log.Info(entry.Message, args...)
	}
}
