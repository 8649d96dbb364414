package state

import (
	"sync"

	"github.com/rs/zerolog"
)

// Dispatcher accepts actions.
type Dispatcher interface {
	Dispatch(Action)
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(Action)

// Dispatch calls f(a).
func (f DispatchFunc) Dispatch(a Action) { f(a) }

// Store owns the State and fans change notifications out to subscribers.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	state   State
	version uint64

	subMu  sync.Mutex
	subs   map[int]chan struct{}
	nextID int

	log zerolog.Logger
}

// NewStore returns a store seeded with initial.
func NewStore(initial State, log zerolog.Logger) *Store {
	return &Store{
		state: initial,
		subs:  make(map[int]chan struct{}),
		log:   log,
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Version increments once per dispatched action.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Dispatch applies a and notifies subscribers.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	s.version++
	v := s.version
	s.mu.Unlock()

	s.log.Debug().Str("action", a.ActionType()).Uint64("version", v).Msg("dispatch")
	s.notify()
}

// Subscribe returns a channel that receives a signal after state changes,
// and a function that cancels the subscription. Signals coalesce: a slow
// reader sees one pending signal, never a backlog, and Dispatch never blocks.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
