package chat

import (
	"time"
)

// Event names exchanged over the websocket transport.
const (
	EventReceiveMessage = "receive_message"
	EventSendMessage    = "send_message"
	EventAck            = "ack"
	EventError          = "error"
)

// groupTargetPrefix marks a client-supplied target as a group send,
// e.g. "group:42". Anything else is treated as a receiver identity.
const groupTargetPrefix = "group:"

// ServerEvent is the envelope written to a client session.
type ServerEvent struct {
	Event     string    `json:"event"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientEvent is the envelope read from a client session.
type ClientEvent struct {
	Event   string `json:"event"`
	To      string `json:"to,omitempty"`
	Content string `json:"content,omitempty"`
}

// MessagePayload is the abstract payload shape pushed to recipients.
// Exactly one of To and GroupId is set, mirroring the durable record.
type MessagePayload struct {
	MessageId   int       `json:"message_id"`
	From        string    `json:"from"`
	To          string    `json:"to,omitempty"`
	GroupId     int       `json:"group_id,omitempty"`
	Content     string    `json:"content"`
	FileUrl     string    `json:"file_url,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// AckPayload reports the outcome of a client-initiated send.
type AckPayload struct {
	MessageId int `json:"message_id"`
	Delivered int `json:"delivered"`
	Offline   int `json:"offline"`
}

// ErrorPayload carries a send failure back to the initiating client.
type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
