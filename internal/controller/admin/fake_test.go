package admin

import (
	"context"
	"sync"

	"exusiai.dev/gateway-admin/internal/core/registry"
	"exusiai.dev/gateway-admin/internal/core/stats"
)

type memStore struct {
	mu       sync.Mutex
	keys     map[string]*registry.Key
	keyrings map[string]*registry.Keyring
	apis     map[string]*registry.API
}

func newMemStore() *memStore {
	return &memStore{
		keys:     map[string]*registry.Key{},
		keyrings: map[string]*registry.Keyring{},
		apis:     map[string]*registry.API{},
	}
}

func (s *memStore) GetKey(_ context.Context, id string) (*registry.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.keys[id]; ok {
		return k, nil
	}
	return nil, registry.ErrRecordNotFound
}

func (s *memStore) GetKeys(_ context.Context, ids []string) ([]*registry.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*registry.Key{}
	for _, id := range ids {
		if k, ok := s.keys[id]; ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *memStore) GetKeyring(_ context.Context, id string) (*registry.Keyring, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kr, ok := s.keyrings[id]
	if !ok {
		return nil, registry.ErrRecordNotFound
	}
	cp := *kr
	cp.KeyIDs = []string{}
	for _, k := range s.keys {
		if k.KeyringID == id {
			cp.KeyIDs = append(cp.KeyIDs, k.ID)
		}
	}
	return &cp, nil
}

func (s *memStore) GetAPI(_ context.Context, id string) (*registry.API, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.apis[id]; ok {
		return a, nil
	}
	return nil, registry.ErrRecordNotFound
}

func (s *memStore) SaveKey(_ context.Context, key *registry.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.ID] = key
	return nil
}

func (s *memStore) SaveKeyring(_ context.Context, keyring *registry.Keyring) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyrings[keyring.ID] = keyring
	return nil
}

func (s *memStore) SaveAPI(_ context.Context, api *registry.API) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apis[api.ID] = api
	return nil
}

func (s *memStore) Ping(context.Context) error { return nil }

// recordingReader serves buckets by rendered key and remembers every key it read.
type recordingReader struct {
	mu   sync.Mutex
	data map[string]stats.DayBucket
	err  error
	read []string
}

func (r *recordingReader) MultiGet(_ context.Context, keys []stats.StatKey) ([]stats.DayBucket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]stats.DayBucket, len(keys))
	for i, k := range keys {
		rendered := k.Render(":")
		r.read = append(r.read, rendered)
		if b, ok := r.data[rendered]; ok {
			out[i] = b
		} else {
			out[i] = stats.DayBucket{}
		}
	}
	return out, nil
}
