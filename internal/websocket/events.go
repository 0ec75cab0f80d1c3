package websocket

import (
	"encoding/json"

	"github.com/weekly-planner/backend/internal/log"
	"github.com/weekly-planner/backend/internal/planner"
)

// EventBroadcaster turns planner changes into hub messages.
type EventBroadcaster struct {
	hub *Hub
}

func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

func (b *EventBroadcaster) BroadcastUserAdded(user string, eventCount int) {
	b.broadcast(NewMessage(TypeUserAdded, UserPayload{User: user, EventCount: eventCount}))
}

func (b *EventBroadcaster) BroadcastScheduleImported(user string, eventCount int) {
	b.broadcast(NewMessage(TypeScheduleImported, UserPayload{User: user, EventCount: eventCount}))
}

func (b *EventBroadcaster) BroadcastEventAdded(e planner.Event) {
	b.broadcast(NewMessage(TypeEventAdded, EventChangePayload{Event: NewEventPayload(e)}))
}

func (b *EventBroadcaster) BroadcastEventRemoved(e planner.Event, acting string) {
	b.broadcast(NewMessage(TypeEventRemoved, EventChangePayload{Event: NewEventPayload(e), ActingUser: acting}))
}

func (b *EventBroadcaster) BroadcastEventModified(previous, updated planner.Event) {
	b.broadcast(NewMessage(TypeEventModified, EventModifiedPayload{
		Previous: NewEventPayload(previous),
		Updated:  NewEventPayload(updated),
	}))
}

func (b *EventBroadcaster) BroadcastInviteeRemoved(e planner.Event, user string) {
	b.broadcast(NewMessage(TypeInviteeRemoved, EventChangePayload{Event: NewEventPayload(e), ActingUser: user}))
}

func (b *EventBroadcaster) BroadcastHostChanged(previous, host string) {
	b.broadcast(NewMessage(TypeHostChanged, HostPayload{Previous: previous, Host: host}))
}

func (b *EventBroadcaster) BroadcastScheduleExported(dir string, users []string) {
	b.broadcast(NewMessage(TypeScheduleExported, ExportPayload{Dir: dir, Users: users}))
}

// BroadcastNotification sends a UI notification; level is info, warning, error or success.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{Level: level, Title: title, Message: message}))
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Error("encoding websocket message", err, "type", msg.Type)
		return
	}
	b.hub.Broadcast(data)
}

// HandleCommand answers a message received from c. Only ping is understood.
func HandleCommand(c *Client, raw []byte) {
	var cmd struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(raw, &cmd); err != nil {
		c.Reply(NewMessage(TypeError, ErrorPayload{Code: "bad_request", Message: "message is not valid JSON"}))
		return
	}

	switch cmd.Type {
	case TypePing:
		c.Reply(NewMessage(TypePong, nil))
	default:
		c.Reply(NewMessage(TypeError, ErrorPayload{
			Code:         "unknown_command",
			Message:      "unsupported message type",
			OriginalType: string(cmd.Type),
		}))
	}
}
