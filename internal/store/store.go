// Package store holds the reducer-backed state containers of a browser session:
// the Auth Store and the Lesson Store.
package store

import (
	"sync"
)

// Reducer is a pure state transition.
type Reducer[S, A any] func(state S, action A) S

type listener[S any] struct {
	id int
	fn func(S)
}

// Store applies dispatched actions through a reducer and broadcasts every new state
// to its subscribers. Dispatches are serialized.
type Store[S, A any] struct {
	mu        sync.Mutex
	state     S
	reducer   Reducer[S, A]
	listeners []listener[S]
	nextID    int
}

// NewStore creates a store with the given reducer and initial state.
func NewStore[S, A any](reducer func(S, A) S, initial S) *Store[S, A] {
	return &Store[S, A]{reducer: reducer, state: initial}
}

// Dispatch applies the action and notifies subscribers in subscription order.
// Listeners run while the store is locked and must not call back into it.
func (s *Store[S, A]) Dispatch(action A) S {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.reducer(s.state, action)
	for _, l := range s.listeners {
		l.fn(s.state)
	}
	return s.state
}

// State returns the current state.
func (s *Store[S, A]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for state broadcasts and returns a function removing it.
func (s *Store[S, A]) Subscribe(fn func(S)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener[S]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					break
				}
			}
		})
	}
}
