/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package summary

import (
	"sync"

	"github.com/carverauto/fleetradar/pkg/messaging"
)

type audienceState struct {
	mu      sync.Mutex
	handles [categoryCount]messaging.Handle
	cleared bool
}

// StateStore tracks, per audience, the live notification of every category
// plus whether the summary channel has been cleared since startup.
// Reconciliation of one audience is serialized through Lock.
type StateStore struct {
	mu        sync.Mutex
	audiences map[string]*audienceState
}

func NewStateStore() *StateStore {
	return &StateStore{audiences: make(map[string]*audienceState)}
}

func (s *StateStore) audience(id string) *audienceState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.audiences[id]
	if !ok {
		st = &audienceState{}
		s.audiences[id] = st
	}

	return st
}

// Lock takes the audience's reconciliation lock and returns its release func.
func (s *StateStore) Lock(audienceID string) func() {
	st := s.audience(audienceID)
	st.mu.Lock()

	return st.mu.Unlock
}

// Get returns the tracked handle, if any.
func (s *StateStore) Get(audienceID string, category Category) (messaging.Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.audiences[audienceID]
	if !ok {
		return messaging.Handle{}, false
	}

	h := st.handles[category]

	return h, !h.IsZero()
}

func (s *StateStore) Set(audienceID string, category Category, h messaging.Handle) {
	st := s.audience(audienceID)

	s.mu.Lock()
	st.handles[category] = h
	s.mu.Unlock()
}

// Clear forgets the tracked handle so the next reconciliation creates a new one.
func (s *StateStore) Clear(audienceID string, category Category) {
	s.Set(audienceID, category, messaging.Handle{})
}

// Tracked returns how many categories of the audience have a live handle.
func (s *StateStore) Tracked(audienceID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.audiences[audienceID]
	if !ok {
		return 0
	}

	n := 0

	for _, h := range st.handles {
		if !h.IsZero() {
			n++
		}
	}

	return n
}

func (s *StateStore) cleared(audienceID string) bool {
	st := s.audience(audienceID)

	s.mu.Lock()
	defer s.mu.Unlock()

	return st.cleared
}

func (s *StateStore) markCleared(audienceID string) {
	st := s.audience(audienceID)

	s.mu.Lock()
	st.cleared = true
	s.mu.Unlock()
}
