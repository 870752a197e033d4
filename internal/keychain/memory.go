package keychain

import (
	"context"
	"sync"
)

// MemoryStore keeps everything in memory, it is used when persistence is
// disabled and in tests.
type MemoryStore struct {
	mutex   sync.Mutex
	entries map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]string{}}
}

func (s *MemoryStore) get(name string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.entries[name], nil
}

func (s *MemoryStore) set(name, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries[name] = value
	return nil
}

func (s *MemoryStore) Username(context.Context) (string, error) {
	return s.get(entryUsername)
}

func (s *MemoryStore) Password(context.Context) (string, error) {
	return s.get(entryPassword)
}

func (s *MemoryStore) SessionKey(context.Context) (string, error) {
	return s.get(entrySessionKey)
}

func (s *MemoryStore) SessionExpiration(context.Context) (string, error) {
	return s.get(entrySessionExpiration)
}

func (s *MemoryStore) SetUsername(_ context.Context, username string) error {
	return s.set(entryUsername, username)
}

func (s *MemoryStore) SetPassword(_ context.Context, password string) error {
	return s.set(entryPassword, password)
}

func (s *MemoryStore) SetSessionKey(_ context.Context, key string) error {
	return s.set(entrySessionKey, key)
}

func (s *MemoryStore) SetSessionExpiration(_ context.Context, expiration string) error {
	return s.set(entrySessionExpiration, expiration)
}

func (s *MemoryStore) HasSessionKey(context.Context) (bool, error) {
	value, err := s.get(entrySessionKey)
	return value != "", err
}

func (s *MemoryStore) HasSessionExpiration(context.Context) (bool, error) {
	value, err := s.get(entrySessionExpiration)
	return value != "", err
}
