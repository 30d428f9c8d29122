package learn

import (
	"sync"

	"github.com/freeeve/kalah/internal/codec"
)

// StartQueue holds positions that later rounds should play out from instead
// of the initial position, e.g. positions a query could not decide. It is
// FIFO, bounded and ignores keys already queued.
type StartQueue struct {
	mu      sync.Mutex
	queue   []codec.Key
	seen    map[codec.Key]struct{}
	maxSize int
}

// NewStartQueue creates a queue holding at most maxSize keys.
func NewStartQueue(maxSize int) *StartQueue {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &StartQueue{
		queue:   make([]codec.Key, 0, maxSize),
		seen:    make(map[codec.Key]struct{}),
		maxSize: maxSize,
	}
}

// Enqueue adds k unless it is already queued. When full, the oldest key is
// dropped.
func (q *StartQueue) Enqueue(k codec.Key) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.seen[k]; ok {
		return false
	}
	if len(q.queue) >= q.maxSize {
		delete(q.seen, q.queue[0])
		q.queue = q.queue[1:]
	}
	q.queue = append(q.queue, k)
	q.seen[k] = struct{}{}
	return true
}

// Dequeue returns the oldest key.
func (q *StartQueue) Dequeue() (codec.Key, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.queue) == 0 {
		return 0, false
	}
	k := q.queue[0]
	q.queue = q.queue[1:]
	delete(q.seen, k)
	return k, true
}

// Len returns the number of queued keys.
func (q *StartQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}
