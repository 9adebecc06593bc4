package core

import "github.com/gammazero/deque"

// waitQueue is an ordered FIFO of connection ids awaiting a partner.
// A connection id appears at most once. Only the hub goroutine touches it.
type waitQueue struct {
	ids deque.Deque[string]
}

// push appends id to the back. Returns false if id is already waiting.
func (q *waitQueue) push(id string) bool {
	if q.contains(id) {
		return false
	}
	q.ids.PushBack(id)
	return true
}

// popFront removes and returns the oldest waiter.
func (q *waitQueue) popFront() (string, bool) {
	if q.ids.Len() == 0 {
		return "", false
	}
	return q.ids.PopFront(), true
}

// remove deletes id from the queue if present.
func (q *waitQueue) remove(id string) bool {
	i := q.index(id)
	if i < 0 {
		return false
	}
	q.ids.Remove(i)
	return true
}

func (q *waitQueue) contains(id string) bool {
	return q.index(id) >= 0
}

func (q *waitQueue) index(id string) int {
	return q.ids.Index(func(v string) bool { return v == id })
}

func (q *waitQueue) len() int {
	return q.ids.Len()
}
