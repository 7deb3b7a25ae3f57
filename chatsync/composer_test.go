package chatsync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmitWhileDisconnectedSendsNothing(t *testing.T) {
	client := NewClient(DefaultConfig())
	c := NewComposer(client)

	err := c.Submit(context.Background(), "r1", "hello")

	assert.NoError(t, err)
	assert.Empty(t, client.writeCh, "no frame may be queued while disconnected")
}

func TestSubmitRejectsEmptyInput(t *testing.T) {
	client := NewClient(DefaultConfig())
	// Pretend-connected so only input validation can reject.
	client.mu.Lock()
	client.state = StateConnected
	client.mu.Unlock()
	c := NewComposer(client)

	assert.NoError(t, c.Submit(context.Background(), "r1", ""))
	assert.NoError(t, c.Submit(context.Background(), "r1", "   \n\t"))
	assert.NoError(t, c.Submit(context.Background(), "", "hello"))
	assert.Empty(t, client.writeCh)
}

func TestSubmitTrimsAndSends(t *testing.T) {
	client := NewClient(DefaultConfig())
	client.mu.Lock()
	client.state = StateConnected
	client.mu.Unlock()
	c := NewComposer(client)

	err := c.Submit(context.Background(), "r1", "  hello there  ")

	assert.NoError(t, err)
	fr := <-client.writeCh
	assert.Equal(t, sendFrame{RoomID: "r1", Content: "hello there"}, fr)
}
