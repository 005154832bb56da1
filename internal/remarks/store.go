package remarks

import (
	"sync"
)

// Store holds one timeline per viewer and task, so that pending and failed remarks survive the redirect
// after a submit.
type Store struct {
	mu        sync.Mutex
	timelines map[storeKey]*Timeline
}

type storeKey struct {
	viewer string
	taskID string
}

func NewStore() *Store {
	return &Store{timelines: make(map[storeKey]*Timeline)}
}

// Timeline returns the viewer's timeline for a task, creating an empty one on first use.
func (s *Store) Timeline(viewer, taskID string) *Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storeKey{viewer: viewer, taskID: taskID}
	tl, ok := s.timelines[key]
	if !ok {
		tl = NewTimeline(nil)
		s.timelines[key] = tl
	}
	return tl
}

// Forget drops every timeline of a viewer, as on logout.
func (s *Store) Forget(viewer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.timelines {
		if key.viewer == viewer {
			delete(s.timelines, key)
		}
	}
}
