// queue package

package queue

import "sync"

// InMemoryQueue implements an in-memory FIFO queue.
// A queue created with a maxSize of 0 grows without limit.
type InMemoryQueue struct {
	items   []interface{}
	maxSize int
	lock    sync.Mutex
	notify  chan struct{}
}

// NewInMemoryQueue creates a new queue.
func NewInMemoryQueue(maxSize int) *InMemoryQueue {
	return &InMemoryQueue{
		maxSize: maxSize,
		notify:  make(chan struct{}, 1),
	}
}

// Enqueue adds an item to the end of the queue.
func (q *InMemoryQueue) Enqueue(item interface{}) error {
	q.lock.Lock()
	if q.maxSize > 0 && len(q.items) >= q.maxSize {
		q.lock.Unlock()
		return ErrQueueFull
	}
	q.items = append(q.items, item)
	q.lock.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// ReadAllMessages reads all pending messages in the queue, oldest first.
func (q *InMemoryQueue) ReadAllMessages() ([]interface{}, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	messages := q.items
	q.items = nil
	return messages, nil
}

// Notify returns a channel that receives a value after items are enqueued.
// Several enqueues may collapse into a single notification.
func (q *InMemoryQueue) Notify() <-chan struct{} {
	return q.notify
}
