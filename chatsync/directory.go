package chatsync

import (
	"context"
	"sync"

	"github.com/edulink/chatsync-go/chatsync/rest"
)

// Room is one 1:1 conversation: the stable room id plus the peer's profile.
type Room struct {
	ID             string
	PeerID         string
	Email          string
	FullName       string
	ProfilePicture string
	Role           string
}

// CurrentUser is the authenticated identity, used to classify messages as
// own-vs-other.
type CurrentUser struct {
	ID       string
	Email    string
	FullName string
}

// DirectoryCache holds the room list and the current user, loaded once from
// the directory API at startup. It also seeds the timeline store with each
// room's history.
type DirectoryCache struct {
	api    *rest.Client
	store  *TimelineStore
	logger Logger

	mu     sync.RWMutex
	rooms  []Room
	user   CurrentUser
	loaded bool
}

// NewDirectoryCache wires the directory API to the timeline store.
func NewDirectoryCache(api *rest.Client, store *TimelineStore) *DirectoryCache {
	return &DirectoryCache{
		api:    api,
		store:  store,
		logger: noopLogger{},
	}
}

// SetLogger overrides logger (optional).
func (d *DirectoryCache) SetLogger(l Logger) {
	if l == nil {
		return
	}
	d.logger = l
}

// Load performs the one-shot directory and current-user fetch, then seeds
// the timeline store per room. On failure the cache stays empty but usable:
// the caller gets the error, an empty room list, and a working store.
func (d *DirectoryCache) Load(ctx context.Context) error {
	user, err := d.api.GetCurrentUser(ctx)
	if err != nil {
		return err
	}
	entries, err := d.api.GetChatUsers(ctx)
	if err != nil {
		return err
	}
	// A load that resolves after teardown must not touch the store.
	if err := ctx.Err(); err != nil {
		return err
	}

	rooms := make([]Room, 0, len(entries))
	for _, e := range entries {
		if e.RoomID == "" {
			d.logger.Debug("directory entry without room", map[string]any{"peer_id": e.ID})
			continue
		}
		rooms = append(rooms, Room{
			ID:             e.RoomID,
			PeerID:         e.ID,
			Email:          e.Email,
			FullName:       e.FullName,
			ProfilePicture: e.ProfilePicture,
			Role:           e.Role,
		})
		d.store.Seed(e.RoomID, d.toMessages(e.RoomID, e.Messages))
	}

	d.mu.Lock()
	d.rooms = rooms
	d.user = CurrentUser{ID: user.ID, Email: user.Email, FullName: user.FullName}
	d.loaded = true
	d.mu.Unlock()

	d.logger.Info("directory loaded", map[string]any{"rooms": len(rooms)})
	return nil
}

// Search runs a server-side participant search over name, email and role.
func (d *DirectoryCache) Search(ctx context.Context, query string) ([]rest.SearchResult, error) {
	return d.api.SearchUsers(ctx, query)
}

// Rooms returns a snapshot of the room list in directory order.
func (d *DirectoryCache) Rooms() []Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Room, len(d.rooms))
	copy(out, d.rooms)
	return out
}

// User returns the authenticated identity.
func (d *DirectoryCache) User() CurrentUser {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.user
}

// Loaded reports whether the one-shot load has completed.
func (d *DirectoryCache) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

func (d *DirectoryCache) toMessages(roomID string, records []rest.MessageRecord) []Message {
	msgs := make([]Message, 0, len(records))
	for _, r := range records {
		ts, err := ParseTimestamp(r.Timestamp)
		if err != nil {
			d.logger.Warn("dropping history record with bad timestamp", map[string]any{
				"room_id":    roomID,
				"message_id": r.ID,
				"error":      err.Error(),
			})
			continue
		}
		msgs = append(msgs, Message{
			ID:        r.ID,
			RoomID:    roomID,
			Sender:    r.Sender,
			Content:   r.Content,
			Timestamp: ts,
		})
	}
	return msgs
}
