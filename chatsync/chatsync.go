// Package chatsync reconciles optimistically inserted chat messages with
// their server-confirmed echoes. It is a pure in-memory model of the visible
// message list: callers feed it local sends, relay deliveries and the clock,
// and render whatever Entries returns.
package chatsync

import "time"

// PendingTTL is how long an optimistic entry may wait for its server echo
// before it is dropped from view.
const PendingTTL = 5 * time.Second

// Entry is one row of the visible message timeline. Pending entries were
// inserted locally and have not yet been confirmed by the relay.
type Entry struct {
	ID        string
	Content   string
	SenderID  string
	CreatedAt time.Time
	Pending   bool
	ExpiresAt time.Time
}

type dedupeKey struct {
	content   string
	senderID  string
	createdAt int64
}

func (e Entry) key() dedupeKey {
	return dedupeKey{content: e.Content, senderID: e.SenderID, createdAt: e.CreatedAt.UnixMilli()}
}

// Timeline holds the reconciled message list for one chat room
type Timeline struct {
	entries []Entry
}

// New returns an empty timeline
func New() *Timeline {
	return &Timeline{}
}

// Load replaces the timeline with a bulk-read history. History entries are
// confirmed by definition.
func (t *Timeline) Load(history []Entry) {
	t.entries = make([]Entry, 0, len(history))
	for _, e := range history {
		e.Pending = false
		t.entries = append(t.entries, e)
	}
}

// AddOptimistic appends a locally created entry that is awaiting its server
// echo. It expires PendingTTL after now unless confirmed first.
func (t *Timeline) AddOptimistic(id, content, senderID string, now time.Time) {
	t.entries = append(t.entries, Entry{
		ID:        id,
		Content:   content,
		SenderID:  senderID,
		CreatedAt: now,
		Pending:   true,
		ExpiresAt: now.Add(PendingTTL),
	})
}

// Confirm applies a server-delivered entry. If a pending entry with the same
// content and sender is still waiting, it is replaced in place so the row
// keeps its position; otherwise the entry is appended.
func (t *Timeline) Confirm(e Entry) {
	e.Pending = false
	for i := range t.entries {
		if t.entries[i].Pending && t.entries[i].Content == e.Content && t.entries[i].SenderID == e.SenderID {
			t.entries[i] = e
			return
		}
	}
	t.entries = append(t.entries, e)
}

// Expire removes pending entries whose confirmation window has passed. The
// send is treated as silently failed; nothing else changes.
func (t *Timeline) Expire(now time.Time) {
	kept := t.entries[:0]
	for _, e := range t.entries {
		if e.Pending && !e.ExpiresAt.After(now) {
			continue
		}
		kept = append(kept, e)
	}
	t.entries = kept
}

// DiscardPending drops every pending entry. Called when the relay reports an
// error for an in-flight send.
func (t *Timeline) DiscardPending() {
	kept := t.entries[:0]
	for _, e := range t.entries {
		if e.Pending {
			continue
		}
		kept = append(kept, e)
	}
	t.entries = kept
}

// Entries returns the visible list, deduplicated by (content, sender,
// creation time) keeping the earliest occurrence. Two distinct real messages
// that collide on all three fields collapse to one; that is an accepted
// trade-off of the identity key.
func (t *Timeline) Entries() []Entry {
	seen := make(map[dedupeKey]struct{}, len(t.entries))
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		k := e.key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}
