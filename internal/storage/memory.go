package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used by tests and the seeder.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string

	// Deletes records every deleted key so tests can assert reclamation.
	Deletes []string
	// CopyErr, when set, fails the next Copy call.
	CopyErr error
}

// NewMemoryStore returns an empty MemoryStore serving from baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("object not found: " + key)
	}
	return data, nil
}

func (s *MemoryStore) Copy(ctx context.Context, srcKey string) (string, error) {
	s.mu.Lock()
	if s.CopyErr != nil {
		err := s.CopyErr
		s.mu.Unlock()
		return "", err
	}
	data, ok := s.objects[srcKey]
	if !ok {
		s.mu.Unlock()
		return "", errors.New("object not found: " + srcKey)
	}
	newKey := RekeyFrom(srcKey)
	s.objects[newKey] = append([]byte(nil), data...)
	if thumb, ok := s.objects[ThumbKey(srcKey)]; ok {
		s.objects[ThumbKey(newKey)] = append([]byte(nil), thumb...)
	}
	s.mu.Unlock()
	_ = ctx
	return newKey, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.Deletes = append(s.Deletes, key)
	if thumbKey := ThumbKey(key); !strings.HasSuffix(key, ThumbSuffix) {
		if _, ok := s.objects[thumbKey]; ok {
			delete(s.objects, thumbKey)
			s.Deletes = append(s.Deletes, thumbKey)
		}
	}
	return nil
}

func (s *MemoryStore) URL(key string) string {
	return s.baseURL + "/" + key
}

func (s *MemoryStore) Owns(url string) bool {
	return strings.HasPrefix(url, s.baseURL+"/")
}

// Len reports the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Has reports whether key is stored.
func (s *MemoryStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}
