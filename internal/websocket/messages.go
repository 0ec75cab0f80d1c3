package websocket

import (
	"encoding/json"
	"time"

	"github.com/weekly-planner/backend/internal/planner"
)

// MessageType identifies a websocket message.
type MessageType string

const (
	// Server -> client change feed.
	TypeUserAdded        MessageType = "user.added"
	TypeScheduleImported MessageType = "schedule.imported"
	TypeEventAdded       MessageType = "event.added"
	TypeEventRemoved     MessageType = "event.removed"
	TypeEventModified    MessageType = "event.modified"
	TypeInviteeRemoved   MessageType = "event.invitee_removed"
	TypeHostChanged      MessageType = "host.changed"
	TypeScheduleExported MessageType = "schedule.exported"
	TypeNotification     MessageType = "notification"

	// Client -> server commands and their replies.
	TypePing  MessageType = "ping"
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message is the envelope of every websocket frame.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload,omitempty"`
}

func NewMessage(t MessageType, payload any) Message {
	return Message{Type: t, Timestamp: time.Now().UTC(), Payload: payload}
}

func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventPayload describes one event.
type EventPayload struct {
	Name     string   `json:"name"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Online   bool     `json:"online"`
	Location string   `json:"location"`
	Invitees []string `json:"invitees"`
}

func NewEventPayload(e planner.Event) EventPayload {
	return EventPayload{
		Name:     e.Name(),
		Start:    e.Start().String(),
		End:      e.End().String(),
		Online:   e.Online(),
		Location: e.Location(),
		Invitees: e.Invitees(),
	}
}

// UserPayload is sent with user.added and schedule.imported.
type UserPayload struct {
	User       string `json:"user"`
	EventCount int    `json:"event_count"`
}

// EventChangePayload is sent with event.added, event.removed and event.invitee_removed.
// ActingUser is the user who removed the event or left it.
type EventChangePayload struct {
	Event      EventPayload `json:"event"`
	ActingUser string       `json:"acting_user,omitempty"`
}

// EventModifiedPayload is sent with event.modified.
type EventModifiedPayload struct {
	Previous EventPayload `json:"previous"`
	Updated  EventPayload `json:"updated"`
}

// HostPayload is sent with host.changed.
type HostPayload struct {
	Previous string `json:"previous,omitempty"`
	Host     string `json:"host"`
}

// ExportPayload is sent with schedule.exported.
type ExportPayload struct {
	Dir   string   `json:"dir"`
	Users []string `json:"users"`
}

// NotificationPayload is a free-form message for the UI.
type NotificationPayload struct {
	Level   string `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ErrorPayload answers a command the server could not handle.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
