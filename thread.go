// Copyright (c) Microsoft. All rights reserved.

package agentkit

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Thread manages conversation state for an agent interaction.
// It operates in one of two mutually exclusive modes:
//   - Service-managed: conversation state lives server-side (identified by ServiceID)
//   - Locally-managed: messages are stored locally via a [MessageStore]
//
// Setting one mode locks out the other.
type Thread struct {
	mu              sync.Mutex
	id              string
	serviceID       string
	store           MessageStore
	contextProvider ContextProvider
	modeLocked      bool
}

// ThreadOption configures a [Thread].
type ThreadOption func(*Thread)

// WithThreadStore sets the local message store for the thread.
func WithThreadStore(store MessageStore) ThreadOption {
	return func(s *Thread) {
		s.store = store
	}
}

// WithThreadContextProvider attaches a context provider to the thread.
func WithThreadContextProvider(cp ContextProvider) ThreadOption {
	return func(s *Thread) {
		s.contextProvider = cp
	}
}

// NewThread creates a new Thread with a generated ID.
func NewThread(opts ...ThreadOption) *Thread {
	s := &Thread{
		id: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the thread's unique identifier.
func (s *Thread) ID() string { return s.id }

// ServiceID returns the service-managed thread ID, or empty if locally managed.
func (s *Thread) ServiceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serviceID
}

// SetServiceID locks the thread into service-managed mode.
// Returns ErrThreadModeLocked if the thread is already in local mode.
func (s *Thread) SetServiceID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modeLocked && s.store != nil {
		return fmt.Errorf("%w: cannot switch to service mode", ErrThreadModeLocked)
	}
	s.serviceID = id
	s.modeLocked = true
	return nil
}

// Store returns the local message store, or nil if service-managed.
func (s *Thread) Store() MessageStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// SetStore locks the thread into locally-managed mode.
// Returns ErrThreadModeLocked if the thread is already in service mode.
func (s *Thread) SetStore(store MessageStore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modeLocked && s.serviceID != "" {
		return fmt.Errorf("%w: cannot switch to local mode", ErrThreadModeLocked)
	}
	s.store = store
	s.modeLocked = true
	return nil
}

// ContextProvider returns the thread's context provider, if any.
func (s *Thread) ContextProvider() ContextProvider { return s.contextProvider }

// Serialize returns the thread state as a serializable map.
func (s *Thread) Serialize() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := map[string]any{
		"id": s.id,
	}
	if s.serviceID != "" {
		state["serviceId"] = s.serviceID
	}
	if s.store != nil {
		storeState, err := s.store.Serialize()
		if err != nil {
			return nil, fmt.Errorf("serialize store: %w", err)
		}
		state["store"] = storeState
	}
	return state, nil
}
