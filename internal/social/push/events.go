package push

import (
	"encoding/json"
	"time"
)

// Client → server
const (
	EventLogin    = "login"
	EventMessageS = "messageS"
	EventPing     = "ping"
)

// Server → client
const (
	EventMessageC     = "messageC"
	EventNotification = "notification"
	EventPresence     = "presence"
	EventPong         = "pong"
	EventError        = "error"
)

// Event is the envelope for every frame on the socket.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

type LoginPayload struct {
	UserID int64 `json:"userId"`
}

type MessageSPayload struct {
	To      int64  `json:"to"`
	Message string `json:"message"`
}

// MessageCPayload is a relayed message. From is 0 for messages the server
// writes itself.
type MessageCPayload struct {
	From    int64  `json:"from"`
	Message string `json:"message"`
}

type PresencePayload struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"` // "online" | "offline"
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// encode builds a server → client frame stamped with the current time.
func encode(eventType string, payload any) ([]byte, error) {
	ev := Event{Type: eventType, Timestamp: time.Now().Unix()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		ev.Payload = data
	}
	return json.Marshal(ev)
}
