package chatsync

import (
	"context"

	"github.com/edulink/chatsync-go/chatsync/rest"
)

// Session wires the client, store, directory and view helpers into one chat
// session. Inbound frames flow client -> dispatcher -> store; the projector
// and composer only read snapshots and send commands.
type Session struct {
	Client    *Client
	Store     *TimelineStore
	Directory *DirectoryCache
	Projector *Projector
	Composer  *Composer

	cancel context.CancelFunc
}

// NewSession builds a fully wired session. The rest client should carry the
// same token the websocket config does.
func NewSession(cfg Config, api *rest.Client) *Session {
	store := NewTimelineStore()
	client := NewClient(cfg)
	dir := NewDirectoryCache(api, store)

	client.OnMessage(store.Merge)

	return &Session{
		Client:    client,
		Store:     store,
		Directory: dir,
		Projector: NewProjector(store, dir, client),
		Composer:  NewComposer(client),
	}
}

// SetLogger propagates the logger to every component.
func (s *Session) SetLogger(l Logger) {
	if l == nil {
		return
	}
	s.Client.SetLogger(l)
	s.Store.SetLogger(l)
	s.Directory.SetLogger(l)
	s.Composer.SetLogger(l)
}

// Start runs the directory load and the connect concurrently. The two may
// finish in either order; Merge creates timelines for rooms the directory
// has not delivered yet, so the race is safe. The first error wins, and a
// directory failure still leaves a connected, usable session.
func (s *Session) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	errCh := make(chan error, 2)
	go func() { errCh <- s.Directory.Load(ctx) }()
	go func() { errCh <- s.Client.Connect(ctx) }()

	var firstErr error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close tears the session down: in-flight directory results are discarded,
// the connection closes synchronously and reconnection is suppressed.
// Timelines stay readable until Reset.
func (s *Session) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.Client.Close()
}

// Reset discards all timelines after Close, completing session teardown.
func (s *Session) Reset() {
	s.Store.Reset()
}
