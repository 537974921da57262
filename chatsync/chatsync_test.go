package chatsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfirmReplacesOptimisticEntry(t *testing.T) {
	now := time.Now()
	tl := New()
	tl.AddOptimistic("local-1", "hello", "user-a", now)

	// server echo arrives within the window with its own id and timestamp
	tl.Confirm(Entry{ID: "srv-1", Content: "hello", SenderID: "user-a", CreatedAt: now.Add(50 * time.Millisecond)})
	tl.Expire(now.Add(PendingTTL + time.Second))

	entries := tl.Entries()
	assert.Len(t, entries, 1)
	assert.Equal(t, "srv-1", entries[0].ID)
	assert.False(t, entries[0].Pending)
}

func TestExpireDropsUnconfirmedEntry(t *testing.T) {
	now := time.Now()
	tl := New()
	tl.AddOptimistic("local-1", "hello", "user-a", now)

	tl.Expire(now.Add(PendingTTL + time.Millisecond))

	assert.Empty(t, tl.Entries())
}

func TestExpireKeepsEntriesInsideWindow(t *testing.T) {
	now := time.Now()
	tl := New()
	tl.AddOptimistic("local-1", "hello", "user-a", now)

	tl.Expire(now.Add(PendingTTL - time.Millisecond))

	entries := tl.Entries()
	assert.Len(t, entries, 1)
	assert.True(t, entries[0].Pending)
}

func TestEntriesDeduplicatesRedeliveries(t *testing.T) {
	now := time.Now()
	tl := New()

	// same message delivered three times, identical content, sender and
	// creation time
	e := Entry{ID: "srv-1", Content: "hi", SenderID: "user-a", CreatedAt: now}
	tl.Confirm(e)
	tl.Confirm(e)
	tl.Confirm(e)

	assert.Len(t, tl.Entries(), 1)
}

func TestEntriesKeepsDistinctMessages(t *testing.T) {
	now := time.Now()
	tl := New()
	tl.Confirm(Entry{ID: "srv-1", Content: "hi", SenderID: "user-a", CreatedAt: now})
	tl.Confirm(Entry{ID: "srv-2", Content: "hi", SenderID: "user-a", CreatedAt: now.Add(time.Second)})
	tl.Confirm(Entry{ID: "srv-3", Content: "hi", SenderID: "user-b", CreatedAt: now})

	assert.Len(t, tl.Entries(), 3)
}

func TestDiscardPendingOnRelayError(t *testing.T) {
	now := time.Now()
	tl := New()
	tl.Confirm(Entry{ID: "srv-1", Content: "earlier", SenderID: "user-a", CreatedAt: now.Add(-time.Minute)})
	tl.AddOptimistic("local-1", "hello", "user-a", now)

	tl.DiscardPending()

	entries := tl.Entries()
	assert.Len(t, entries, 1)
	assert.Equal(t, "srv-1", entries[0].ID)
}

func TestLoadMarksHistoryConfirmed(t *testing.T) {
	now := time.Now()
	tl := New()
	tl.AddOptimistic("local-1", "stale", "user-a", now)

	tl.Load([]Entry{
		{ID: "srv-1", Content: "first", SenderID: "user-a", CreatedAt: now.Add(-2 * time.Minute), Pending: true},
		{ID: "srv-2", Content: "second", SenderID: "user-b", CreatedAt: now.Add(-time.Minute)},
	})

	entries := tl.Entries()
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.False(t, e.Pending)
	}
}

func TestConfirmWithoutMatchingPendingAppends(t *testing.T) {
	now := time.Now()
	tl := New()
	tl.AddOptimistic("local-1", "mine", "user-a", now)

	// message from the other party must not consume the pending slot
	tl.Confirm(Entry{ID: "srv-1", Content: "theirs", SenderID: "user-b", CreatedAt: now})

	entries := tl.Entries()
	assert.Len(t, entries, 2)
	assert.True(t, entries[0].Pending)
	assert.False(t, entries[1].Pending)
}
