package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaybackQueueFIFOExactlyOnce(t *testing.T) {
	q := NewPlaybackQueue()

	a := PlaybackItem{ID: uuid.New(), Audio: []byte("aaa")}
	b := PlaybackItem{ID: uuid.New(), Audio: []byte("bbb")}
	q.Enqueue(a)
	q.Enqueue(b)

	got, ok := q.DequeueNext()
	require.True(t, ok)
	assert.Equal(t, a.ID, got.ID)

	got, ok = q.DequeueNext()
	require.True(t, ok)
	assert.Equal(t, b.ID, got.ID)

	// Exhausted: the empty signal, and a is never seen again.
	_, ok = q.DequeueNext()
	assert.False(t, ok)
	_, ok = q.DequeueNext()
	assert.False(t, ok)
}

func TestPlaybackQueueEmptySignal(t *testing.T) {
	q := NewPlaybackQueue()
	_, ok := q.DequeueNext()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestPlaybackQueueDrain(t *testing.T) {
	q := NewPlaybackQueue()
	q.Enqueue(PlaybackItem{ID: uuid.New()})
	q.Enqueue(PlaybackItem{ID: uuid.New()})
	require.Equal(t, 2, q.Len())

	q.Drain()
	assert.Equal(t, 0, q.Len())
	_, ok := q.DequeueNext()
	assert.False(t, ok)
}

func TestPlaybackQueueInterleavedEnqueueDequeue(t *testing.T) {
	q := NewPlaybackQueue()

	first := PlaybackItem{ID: uuid.New(), Audio: []byte("1")}
	q.Enqueue(first)

	got, ok := q.DequeueNext()
	require.True(t, ok)
	assert.Equal(t, first.ID, got.ID)

	second := PlaybackItem{ID: uuid.New(), Audio: []byte("2")}
	q.Enqueue(second)

	got, ok = q.DequeueNext()
	require.True(t, ok)
	assert.Equal(t, second.ID, got.ID)
}
