package chatsync

import (
	"sort"
	"sync"
)

// TimelineStore owns every room's ordered, deduplicated message history.
// Within a room no two entries share an id and entries are sorted ascending
// by timestamp, ties keeping arrival order. All mutation goes through Seed
// and Merge; readers get copies.
type TimelineStore struct {
	logger Logger

	mu       sync.RWMutex
	rooms    map[string][]Message
	seeded   map[string]bool
	onChange func(roomID string)
}

// NewTimelineStore returns an empty store.
func NewTimelineStore() *TimelineStore {
	return &TimelineStore{
		logger: noopLogger{},
		rooms:  make(map[string][]Message),
		seeded: make(map[string]bool),
	}
}

// SetLogger overrides logger (optional).
func (s *TimelineStore) SetLogger(l Logger) {
	if l == nil {
		return
	}
	s.logger = l
}

// OnChange registers the single change consumer, called with the room id
// after any seed or merge that alters a timeline. Register before the
// connection is opened.
func (s *TimelineStore) OnChange(fn func(roomID string)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Seed establishes a room's initial history from the directory. Input order
// does not matter; entries are sorted ascending by timestamp. Seeding an
// already seeded room is a no-op so duplicate directory loads are harmless.
// Messages merged before the directory arrived are kept.
func (s *TimelineStore) Seed(roomID string, msgs []Message) {
	if roomID == "" {
		return
	}
	s.mu.Lock()
	if s.seeded[roomID] {
		s.mu.Unlock()
		return
	}
	s.seeded[roomID] = true

	tl := s.rooms[roomID]
	added := false
	for _, m := range msgs {
		if m.ID == "" {
			s.logger.Warn("dropping seed message without id", map[string]any{"room_id": roomID})
			continue
		}
		if containsID(tl, m.ID) {
			continue
		}
		m.RoomID = roomID
		tl = append(tl, m)
		added = true
	}
	if !added {
		// Every entry was a duplicate or dropped; the timeline is unchanged
		// and the change consumer must not fire.
		s.mu.Unlock()
		return
	}
	sort.SliceStable(tl, func(i, j int) bool { return tl[i].Timestamp.Before(tl[j].Timestamp) })
	s.rooms[roomID] = tl
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(roomID)
	}
}

// Merge incorporates one inbound message. A redelivered frame (same message
// id) is dropped; an out-of-order arrival is inserted at its timestamp
// position. The room's timeline is created on demand so an event may arrive
// before its directory entry does.
func (s *TimelineStore) Merge(m Message) {
	if m.RoomID == "" || m.ID == "" {
		s.logger.Warn("dropping malformed message", map[string]any{
			"room_id":    m.RoomID,
			"message_id": m.ID,
		})
		return
	}

	s.mu.Lock()
	tl := s.rooms[m.RoomID]
	if containsID(tl, m.ID) {
		s.mu.Unlock()
		return
	}

	// Insert before the first entry with a later timestamp, scanning from
	// the tail; equal timestamps keep arrival order.
	pos := len(tl)
	for pos > 0 && tl[pos-1].Timestamp.After(m.Timestamp) {
		pos--
	}
	tl = append(tl, Message{})
	copy(tl[pos+1:], tl[pos:])
	tl[pos] = m
	s.rooms[m.RoomID] = tl
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(m.RoomID)
	}
}

// Get returns a snapshot of a room's timeline in ascending timestamp order.
// The returned slice is a copy; mutating it does not affect the store.
func (s *TimelineStore) Get(roomID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tl := s.rooms[roomID]
	out := make([]Message, len(tl))
	copy(out, tl)
	return out
}

// HasMessages reports whether a room has any activity.
func (s *TimelineStore) HasMessages(roomID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms[roomID]) > 0
}

// Reset discards all timelines. Used on session teardown only.
func (s *TimelineStore) Reset() {
	s.mu.Lock()
	s.rooms = make(map[string][]Message)
	s.seeded = make(map[string]bool)
	s.mu.Unlock()
}

func containsID(tl []Message, id string) bool {
	for i := range tl {
		if tl[i].ID == id {
			return true
		}
	}
	return false
}
