package services

import (
	"sync"

	"github.com/google/uuid"
)

// eventLocks serializes mutations per event. Operations on different
// events proceed in parallel; operations on the same event are strictly
// ordered. Locks are created on first use and kept for the life of the
// process; an event's lock is a single mutex, never a pool.
type eventLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newEventLocks() *eventLocks {
	return &eventLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (e *eventLocks) lock(eventID uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	m, ok := e.locks[eventID]
	if !ok {
		m = &sync.Mutex{}
		e.locks[eventID] = m
	}
	e.mu.Unlock()

	m.Lock()
	return m
}
