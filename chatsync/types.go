package chatsync

import (
	"time"
)

// Message is one chat message, keyed by a server-assigned id that is unique
// within its room.
type Message struct {
	ID        string
	RoomID    string
	Sender    string
	Content   string
	Timestamp time.Time
}

// messageFrame is the inbound wire shape. The server stringifies timestamps
// in two layouts depending on the path (realtime push vs history), so
// decoding is lenient.
type messageFrame struct {
	MessageID string `json:"message_id"`
	RoomID    string `json:"room_id"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

func (f messageFrame) toMessage() (Message, error) {
	if f.MessageID == "" || f.RoomID == "" {
		return Message{}, NewError(ErrorInvalidFrame, "frame missing message_id or room_id")
	}
	ts, err := ParseTimestamp(f.Timestamp)
	if err != nil {
		return Message{}, WrapError(ErrorInvalidFrame, "unparseable timestamp", err)
	}
	return Message{
		ID:        f.MessageID,
		RoomID:    f.RoomID,
		Sender:    f.Sender,
		Content:   f.Content,
		Timestamp: ts,
	}, nil
}

// sendFrame is the outbound wire shape. Delivery is confirmed implicitly by
// the echoed inbound frame; there is no ack.
type sendFrame struct {
	RoomID  string `json:"room_id"`
	Content string `json:"content"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05.999999",
}

// ParseTimestamp decodes a server timestamp. Accepts RFC 3339 as well as the
// space-separated layout the history endpoint emits.
func ParseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
