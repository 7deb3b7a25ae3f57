package chatsync

import (
	"strings"
	"time"
)

// Projector derives view-ready structures from store, directory and
// connection state. It keeps no state of its own, so every call reflects the
// current snapshots and there is no cache to go stale.
type Projector struct {
	store  *TimelineStore
	dir    *DirectoryCache
	client *Client
	now    func() time.Time
}

// NewProjector builds a projector over the given components.
func NewProjector(store *TimelineStore, dir *DirectoryCache, client *Client) *Projector {
	return &Projector{
		store:  store,
		dir:    dir,
		client: client,
		now:    time.Now,
	}
}

// DateGroup is one calendar-day bucket of a room's timeline.
type DateGroup struct {
	Label    string
	Messages []Message
}

// FilteredRooms returns rooms whose peer name, email or role contains the
// query, case-insensitively, preserving directory order. An empty query
// returns every room.
func (p *Projector) FilteredRooms(query string) []Room {
	rooms := p.dir.Rooms()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return rooms
	}
	out := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		if strings.Contains(strings.ToLower(r.FullName), q) ||
			strings.Contains(strings.ToLower(r.Email), q) ||
			strings.Contains(strings.ToLower(r.Role), q) {
			out = append(out, r)
		}
	}
	return out
}

// GroupedByDate partitions a room's timeline into calendar-day buckets
// labeled Today, Yesterday, or the literal date. The timeline is already
// sorted, so same-day messages are contiguous and buckets appear in the
// order their first message occurs; every message lands in exactly one
// bucket.
func (p *Projector) GroupedByDate(roomID string) []DateGroup {
	msgs := p.store.Get(roomID)
	var groups []DateGroup
	for _, m := range msgs {
		label := p.dayLabel(m.Timestamp)
		if n := len(groups); n > 0 && groups[n-1].Label == label {
			groups[n-1].Messages = append(groups[n-1].Messages, m)
			continue
		}
		groups = append(groups, DateGroup{Label: label, Messages: []Message{m}})
	}
	return groups
}

// FilterMessages returns the subset of a room's timeline whose content
// contains the query, case-insensitively, in timeline order.
func (p *Projector) FilterMessages(roomID, query string) []Message {
	msgs := p.store.Get(roomID)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return msgs
	}
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if strings.Contains(strings.ToLower(m.Content), q) {
			out = append(out, m)
		}
	}
	return out
}

// LastMessage returns the newest message of a room, for the room-list
// preview line.
func (p *Projector) LastMessage(roomID string) (Message, bool) {
	msgs := p.store.Get(roomID)
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// IsOwnMessage reports whether the message was sent by the current user.
func (p *Projector) IsOwnMessage(m Message) bool {
	return m.Sender == p.dir.User().ID
}

// Connected reports whether the connectivity indicator should show online.
func (p *Projector) Connected() bool {
	return p.client.State() == StateConnected
}

func (p *Projector) dayLabel(ts time.Time) string {
	now := p.now()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	local := ts.In(now.Location())
	switch {
	case !local.Before(today):
		return "Today"
	case !local.Before(today.AddDate(0, 0, -1)):
		return "Yesterday"
	default:
		return local.Format("January 2, 2006")
	}
}
