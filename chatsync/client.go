package chatsync

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/edulink/chatsync-go/chatsync/internal"

	"github.com/coder/websocket"
)

// Client owns the single multiplexed realtime connection. One connection and
// one read loop exist per session; inbound frames are dispatched serially in
// arrival order.
type Client struct {
	cfg        Config
	logger     Logger
	writeCh    chan sendFrame
	dispatcher Dispatcher

	// lifeCtx spans the client's whole lifetime; Close cancels it so an
	// in-flight reconnect dial is abandoned rather than completed.
	lifeCtx    context.Context
	lifeCancel context.CancelFunc

	mu     sync.Mutex
	state  ConnectionState
	closed bool
	conn   *internal.Conn
	cancel context.CancelFunc
}

// NewClient constructs a client with provided config.
// Use DefaultConfig() as a starting point and modify as needed.
func NewClient(cfg Config) *Client {
	lifeCtx, lifeCancel := context.WithCancel(context.Background())
	return &Client{
		cfg:        cfg,
		logger:     noopLogger{},
		writeCh:    make(chan sendFrame, 16),
		state:      StateDisconnected,
		lifeCtx:    lifeCtx,
		lifeCancel: lifeCancel,
	}
}

// SetLogger overrides logger (optional).
func (c *Client) SetLogger(l Logger) {
	if l == nil {
		return
	}
	c.logger = l
}

// OnMessage registers the consumer for inbound message frames.
func (c *Client) OnMessage(fn func(Message)) { c.dispatcher.SetOnMessage(fn) }

// OnStateChanged registers callback for connection state transitions.
func (c *Client) OnStateChanged(fn func(StateEvent)) { c.dispatcher.SetOnStateChanged(fn) }

// OnError registers callback for transport and protocol errors.
func (c *Client) OnError(fn func(error)) { c.dispatcher.SetOnError(fn) }

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the server and starts internal loops. Calling Connect while
// already connected, connecting, or reconnecting is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return NewError(ErrorDisconnected, "client is closed")
	}
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if c.cfg.URL == "" {
		return NewError(ErrorInvalidConfig, "empty URL")
	}

	c.setState(StateConnecting, nil)
	if err := c.dial(ctx); err != nil {
		c.setState(StateDisconnected, err)
		return WrapError(ErrorConnection, "dial failed", err)
	}
	c.startLoops()
	c.setState(StateConnected, nil)
	return nil
}

// Send transmits an outbound {room_id, content} frame. Fails fast when the
// connection is not open; outbound frames are never queued across
// disconnects.
func (c *Client) Send(ctx context.Context, roomID, content string) error {
	c.mu.Lock()
	connected := c.state == StateConnected
	c.mu.Unlock()
	if !connected {
		return NewError(ErrorNotConnected, "not connected")
	}

	select {
	case c.writeCh <- sendFrame{RoomID: roomID, Content: content}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts the client down deliberately and suppresses auto-reconnect.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.lifeCancel()
	if c.cancel != nil {
		c.cancel()
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	c.setState(StateDisconnected, nil)
	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client close")
	}
	return nil
}

func (c *Client) dial(ctx context.Context) error {
	dialCtx := ctx
	if c.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
		defer cancel()
	}
	conn, err := internal.Dial(dialCtx, c.cfg.URL, c.cfg.Token, c.cfg.ReadTimeout, c.cfg.WriteTimeout)
	if err != nil {
		return err
	}
	c.mu.Lock()
	if c.closed {
		// Close won the race while the handshake was in flight; a closed
		// client must not keep a live socket.
		c.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "client close")
		return NewError(ErrorDisconnected, "client is closed")
	}
	c.conn = conn
	c.mu.Unlock()
	return nil
}

func (c *Client) startLoops() {
	runCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	conn := c.conn
	c.mu.Unlock()
	go c.readLoop(runCtx, conn)
	go c.writeLoop(runCtx, conn)
}

func (c *Client) readLoop(ctx context.Context, conn *internal.Conn) {
	for {
		var raw json.RawMessage
		if err := conn.Read(ctx, &raw); err != nil {
			if ctx.Err() != nil || c.isClosed() {
				return
			}
			if !isCleanClose(err) {
				c.logger.Warn("read loop exit", map[string]any{"error": err.Error()})
				c.dispatcher.fireError(WrapError(ErrorConnection, "connection lost", err))
			}
			c.handleDisconnect(err)
			return
		}
		c.dispatcher.Dispatch(raw)
	}
}

func (c *Client) writeLoop(ctx context.Context, conn *internal.Conn) {
	for {
		select {
		case fr := <-c.writeCh:
			if err := conn.Write(ctx, fr); err != nil {
				c.logger.Warn("write loop exit", map[string]any{"error": err.Error()})
				c.dispatcher.fireError(WrapError(ErrorConnection, "write failed", err))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// handleDisconnect reacts to an unexpected close while the session is still
// active: stop the write loop, then either settle in Disconnected or hand
// over to the reconnect loop.
func (c *Client) handleDisconnect(cause error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.conn = nil
	auto := c.cfg.AutoReconnect
	c.mu.Unlock()

	if !auto {
		c.setState(StateDisconnected, cause)
		return
	}
	c.setState(StateReconnecting, cause)
	go c.reconnectLoop()
}

// reconnectLoop retries with exponential backoff, doubling from
// ReconnectInterval up to MaxReconnectDelay, at most MaxReconnectTries times.
// Exhaustion emits a retry_exhausted error and settles in Disconnected so
// the caller can offer a manual retry.
func (c *Client) reconnectLoop() {
	delay := c.cfg.ReconnectInterval
	if delay <= 0 {
		delay = time.Second
	}

	for attempt := 1; c.cfg.MaxReconnectTries <= 0 || attempt <= c.cfg.MaxReconnectTries; attempt++ {
		select {
		case <-time.After(delay):
		case <-c.lifeCtx.Done():
			return
		}
		if c.isClosed() {
			return
		}

		c.setState(StateConnecting, nil)
		if err := c.dial(c.lifeCtx); err != nil {
			if c.isClosed() {
				return
			}
			c.logger.Warn("reconnect attempt failed", map[string]any{
				"attempt": attempt,
				"error":   err.Error(),
			})
			c.setState(StateReconnecting, err)
			delay *= 2
			if c.cfg.MaxReconnectDelay > 0 && delay > c.cfg.MaxReconnectDelay {
				delay = c.cfg.MaxReconnectDelay
			}
			continue
		}
		c.startLoops()
		c.setState(StateConnected, nil)
		c.logger.Info("reconnected", map[string]any{"attempts": attempt})
		return
	}

	err := NewError(ErrorRetryExhausted, "reconnect attempts exhausted")
	c.dispatcher.fireError(err)
	c.setState(StateDisconnected, err)
}

func (c *Client) setState(next ConnectionState, cause error) {
	c.mu.Lock()
	prev := c.state
	c.state = next
	c.mu.Unlock()
	if prev == next {
		return
	}
	c.logger.Debug("state change", map[string]any{"from": prev.String(), "to": next.String()})
	c.dispatcher.fireState(StateEvent{OldState: prev, NewState: next, Error: cause})
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// isCleanClose reports whether the peer closed the connection with a normal
// status; anything else is treated as a transport failure.
func isCleanClose(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
