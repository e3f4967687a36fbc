package queue

import "errors"

// ErrQueueFull is returned by Enqueue on a bounded queue that reached its limit
var ErrQueueFull = errors.New("queue is full")

// Queue represents a basic FIFO queue shared between goroutines.
type Queue interface {
	Enqueue(item interface{}) error
	ReadAllMessages() ([]interface{}, error)
}
