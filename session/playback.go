package session

import (
	"sync"

	"github.com/google/uuid"
)

// PlaybackItem is one synthesized audio payload waiting to be presented.
type PlaybackItem struct {
	ID    uuid.UUID
	Audio []byte
}

// PlaybackQueue sequences synthesized audio for presentation. It is FIFO
// and consumes exactly once: an item returned by DequeueNext is never
// returned again, however many times the presentation layer re-enters its
// render loop. The queue lives for the session; create it at session start
// and drop it at teardown.
type PlaybackQueue struct {
	mu    sync.Mutex
	items []PlaybackItem
}

// NewPlaybackQueue creates an empty queue.
func NewPlaybackQueue() *PlaybackQueue {
	return &PlaybackQueue{}
}

// Enqueue appends an item in turn-completion order.
func (q *PlaybackQueue) Enqueue(item PlaybackItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
}

// DequeueNext removes and returns the oldest item. The second return is
// false when the queue is empty.
func (q *PlaybackQueue) DequeueNext() (PlaybackItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return PlaybackItem{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Len reports how many items are waiting.
func (q *PlaybackQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain discards all pending items.
func (q *PlaybackQueue) Drain() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}
