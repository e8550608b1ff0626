package identity

import (
	"errors"
	"sync"
)

// TransitionListener is notified when the session identity changes.
// Listeners run synchronously inside the transition, so the migration
// routine completes before the caller proceeds to bootstrap.
type TransitionListener func(outgoing, incoming Identity)

// Session tracks the single identity active in this process. The
// anonymous to authenticated transition is one-directional; logout
// mints a new anonymous identity instead of restoring the old one.
type Session struct {
	mu        sync.Mutex
	current   Identity
	listeners []TransitionListener
}

// NewSession starts a session under a fresh anonymous identity
func NewSession() *Session {
	return &Session{current: NewAnonymous()}
}

// Current returns the active identity
func (s *Session) Current() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// OnTransition registers a listener for identity changes
func (s *Session) OnTransition(fn TransitionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, fn)
}

// Login transitions the session to an authenticated identity. Only an
// anonymous session may log in; re-authentication requires an explicit
// logout first.
func (s *Session) Login(authenticated Identity) error {
	if !authenticated.Authenticated() {
		return errors.New("login requires an authenticated identity")
	}

	s.mu.Lock()
	if !s.current.Anonymous() {
		s.mu.Unlock()
		return errors.New("session is already authenticated")
	}
	outgoing := s.current
	s.current = authenticated
	listeners := make([]TransitionListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(outgoing, authenticated)
	}
	return nil
}

// Logout replaces the active identity with a new anonymous one
func (s *Session) Logout() Identity {
	s.mu.Lock()
	outgoing := s.current
	incoming := NewAnonymous()
	s.current = incoming
	listeners := make([]TransitionListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(outgoing, incoming)
	}
	return incoming
}
