package chatsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 14:00 UTC on a fixed day; "yesterday" and "older" are relative to it.
var projNow = time.Date(2025, time.March, 15, 14, 0, 0, 0, time.UTC)

func newTestProjector(t *testing.T, store *TimelineStore, rooms []Room, user CurrentUser) *Projector {
	t.Helper()
	dir := NewDirectoryCache(nil, store)
	dir.rooms = rooms
	dir.user = user
	dir.loaded = true

	p := NewProjector(store, dir, NewClient(DefaultConfig()))
	p.now = func() time.Time { return projNow }
	return p
}

func TestFilteredRooms(t *testing.T) {
	rooms := []Room{
		{ID: "r1", FullName: "Wyoming Golden", Email: "wyoming@school.test", Role: "Teacher"},
		{ID: "r2", FullName: "Admin Admin", Email: "admin@school.test", Role: "Admin"},
		{ID: "r3", FullName: "Slade Juarez", Email: "slade@school.test", Role: "Student"},
	}
	p := newTestProjector(t, NewTimelineStore(), rooms, CurrentUser{ID: "u1"})

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query returns all", "", []string{"r1", "r2", "r3"}},
		{"matches full name case-insensitively", "WYOMING", []string{"r1"}},
		{"matches email", "admin@", []string{"r2"}},
		{"matches role", "teacher", []string{"r1"}},
		{"preserves directory order", "school.test", []string{"r1", "r2", "r3"}},
		{"no match", "nobody", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.FilteredRooms(tt.query)
			var gotIDs []string
			for _, r := range got {
				gotIDs = append(gotIDs, r.ID)
			}
			if tt.want == nil {
				assert.Empty(t, gotIDs)
				return
			}
			assert.Equal(t, tt.want, gotIDs)
		})
	}
}

func TestGroupedByDateLabels(t *testing.T) {
	store := NewTimelineStore()
	older := projNow.AddDate(0, 0, -5)
	yesterday := projNow.AddDate(0, 0, -1)
	store.Seed("r1", []Message{
		{ID: "m1", RoomID: "r1", Timestamp: older},
		{ID: "m2", RoomID: "r1", Timestamp: yesterday},
		{ID: "m3", RoomID: "r1", Timestamp: projNow.Add(-time.Hour)},
		{ID: "m4", RoomID: "r1", Timestamp: projNow.Add(-time.Minute)},
	})
	p := newTestProjector(t, store, nil, CurrentUser{})

	groups := p.GroupedByDate("r1")
	require.Len(t, groups, 3)

	assert.Equal(t, "March 10, 2025", groups[0].Label)
	assert.Equal(t, []string{"m1"}, ids(groups[0].Messages))
	assert.Equal(t, "Yesterday", groups[1].Label)
	assert.Equal(t, []string{"m2"}, ids(groups[1].Messages))
	assert.Equal(t, "Today", groups[2].Label)
	assert.Equal(t, []string{"m3", "m4"}, ids(groups[2].Messages))
}

func TestGroupedByDateExactCover(t *testing.T) {
	store := NewTimelineStore()
	var msgs []Message
	for i := 0; i < 10; i++ {
		msgs = append(msgs, Message{
			ID:        string(rune('a' + i)),
			RoomID:    "r1",
			Timestamp: projNow.Add(-time.Duration(i*11) * time.Hour),
		})
	}
	store.Seed("r1", msgs)
	p := newTestProjector(t, store, nil, CurrentUser{})

	var flattened []Message
	for _, g := range p.GroupedByDate("r1") {
		flattened = append(flattened, g.Messages...)
	}
	assert.Equal(t, store.Get("r1"), flattened)
}

func TestGroupedByDateEmptyRoom(t *testing.T) {
	p := newTestProjector(t, NewTimelineStore(), nil, CurrentUser{})
	assert.Empty(t, p.GroupedByDate("missing"))
}

func TestIsOwnMessage(t *testing.T) {
	p := newTestProjector(t, NewTimelineStore(), nil, CurrentUser{ID: "u1"})

	assert.True(t, p.IsOwnMessage(Message{Sender: "u1"}))
	assert.False(t, p.IsOwnMessage(Message{Sender: "u2"}))
}

func TestConnectedReflectsClientState(t *testing.T) {
	p := newTestProjector(t, NewTimelineStore(), nil, CurrentUser{})
	assert.False(t, p.Connected())
}

func TestLastMessage(t *testing.T) {
	store := NewTimelineStore()
	p := newTestProjector(t, store, nil, CurrentUser{})

	_, ok := p.LastMessage("r1")
	assert.False(t, ok)

	store.Seed("r1", []Message{msgAt("a", "r1", 10), msgAt("b", "r1", 5)})
	last, ok := p.LastMessage("r1")
	require.True(t, ok)
	assert.Equal(t, "a", last.ID)
}

func TestFilterMessages(t *testing.T) {
	store := NewTimelineStore()
	store.Seed("r1", []Message{
		{ID: "m1", RoomID: "r1", Content: "Lesson plans ready", Timestamp: time.Unix(1, 0)},
		{ID: "m2", RoomID: "r1", Content: "see you tomorrow", Timestamp: time.Unix(2, 0)},
		{ID: "m3", RoomID: "r1", Content: "LESSON complete", Timestamp: time.Unix(3, 0)},
	})
	p := newTestProjector(t, store, nil, CurrentUser{})

	assert.Equal(t, []string{"m1", "m3"}, ids(p.FilterMessages("r1", "lesson")))
	assert.Len(t, p.FilterMessages("r1", ""), 3)
	assert.Empty(t, p.FilterMessages("r1", "absent"))
}
