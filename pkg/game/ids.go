package game

import "math"

// idAllocator hands out box ids. Ids are never reused.
type idAllocator struct {
	next int32
}

func newIDAllocator() *idAllocator {
	return &idAllocator{next: 1}
}

func (a *idAllocator) Next() int32 {
	if a.next == math.MaxInt32 {
		invariantViolation("box ids exhausted")
	}
	id := a.next
	a.next++
	return id
}
