package chatsync

import (
	"context"
	"strings"
)

// Composer validates and transmits outgoing messages. It never touches the
// timeline: a sent message becomes visible only once the server echoes it
// back through the inbound path and passes the merge dedup check.
type Composer struct {
	client *Client
	logger Logger
}

// NewComposer builds a composer over the given client.
func NewComposer(client *Client) *Composer {
	return &Composer{
		client: client,
		logger: noopLogger{},
	}
}

// SetLogger overrides logger (optional).
func (c *Composer) SetLogger(l Logger) {
	if l == nil {
		return
	}
	c.logger = l
}

// Submit sends trimmed text to a room. Empty input, a missing room id, or a
// connection that is not open are silent no-ops; the UI disables the control
// rather than erroring. Only a transport failure is reported back.
func (c *Composer) Submit(ctx context.Context, roomID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" || roomID == "" {
		return nil
	}
	if c.client.State() != StateConnected {
		c.logger.Debug("compose rejected while offline", map[string]any{"room_id": roomID})
		return nil
	}
	if err := c.client.Send(ctx, roomID, text); err != nil {
		return WrapError(ErrorConnection, "send failed", err)
	}
	return nil
}
