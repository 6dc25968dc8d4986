package docstore

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string][]byte
}

// NewMemory returns a process-local store. Bodies are copied on the way in
// and out.
func NewMemory() Store {
	return &memoryStore{docs: map[string]map[string][]byte{}}
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

func (s *memoryStore) Get(_ context.Context, collection, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(body), nil
}

func (s *memoryStore) Find(_ context.Context, collection string, f Filter) ([][]byte, error) {
	norm, err := normalize(f)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	coll := s.docs[collection]
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	bodies := make([][]byte, 0, len(ids))
	for _, id := range ids {
		bodies = append(bodies, clone(coll[id]))
	}
	s.mu.RUnlock()

	return filterBodies(bodies, norm)
}

func (s *memoryStore) Create(_ context.Context, collection, id string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.docs[collection]
	if !ok {
		coll = map[string][]byte{}
		s.docs[collection] = coll
	}
	if _, exists := coll[id]; exists {
		return ErrConflict
	}
	coll[id] = clone(body)
	return nil
}

func (s *memoryStore) Put(_ context.Context, collection, id string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[collection][id]; !ok {
		return ErrNotFound
	}
	s.docs[collection][id] = clone(body)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.docs[collection], id)
	return nil
}

func (s *memoryStore) Ping(context.Context) error { return nil }

func (s *memoryStore) Close() error { return nil }
