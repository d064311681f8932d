package store

import (
	"context"
	"sync"

	"lol-blacklist/internal/model"
)

type MemoryStore struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]model.BlacklistEntry
	puuids  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]model.BlacklistEntry),
		puuids:  make(map[string]string),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) ListEntries() ([]model.BlacklistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.BlacklistEntry, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, s.entries[id])
	}
	return entries, nil
}

func (s *MemoryStore) GetEntry(summonerID string) (model.BlacklistEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[summonerID]
	return e, ok, nil
}

func (s *MemoryStore) AddEntry(entry model.BlacklistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.SummonerID]; ok {
		return ErrDuplicate
	}
	s.entries[entry.SummonerID] = entry
	s.order = append(s.order, entry.SummonerID)
	return nil
}

func (s *MemoryStore) RemoveEntry(summonerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[summonerID]; !ok {
		return ErrNotFound
	}
	delete(s.entries, summonerID)
	for i, id := range s.order {
		if id == summonerID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) GetPUUID(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	puuid, ok := s.puuids[key]
	return puuid, ok, nil
}

func (s *MemoryStore) PutPUUID(_ context.Context, key, puuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puuids[key] = puuid
	return nil
}

func (s *MemoryStore) DeletePUUID(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.puuids, key)
	return nil
}
