package connection

import (
	"sync"
	"time"
)

// UnauthorizedEvent is emitted once for every response with status 401.
type UnauthorizedEvent struct {
	Method    string
	Path      string
	RequestID string
	At        time.Time
}

// UnauthorizedListener receives Unauthorized events. Listeners run
// synchronously on the calling goroutine and must not block.
type UnauthorizedListener func(UnauthorizedEvent)

type listenerEntry struct {
	id int
	fn UnauthorizedListener
}

// listenerSet keeps listeners in registration order.
type listenerSet struct {
	mu      sync.Mutex
	nextID  int
	entries []listenerEntry
}

func (s *listenerSet) add(fn UnauthorizedListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.entries = append(s.entries, listenerEntry{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.entries {
			if e.id == id {
				s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
				return
			}
		}
	}
}

func (s *listenerSet) emit(ev UnauthorizedEvent) {
	s.mu.Lock()
	entries := append([]listenerEntry(nil), s.entries...)
	s.mu.Unlock()

	for _, e := range entries {
		e.fn(ev)
	}
}
