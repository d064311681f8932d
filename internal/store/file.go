package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"lol-blacklist/internal/model"
)

const (
	DefaultBlacklistFile = "blacklist.csv"
	DefaultCacheFile     = "puuid_cache.json"
)

// FileStore keeps the blacklist in a CSV file and the PUUID cache in a JSON file.
// The CSV is re-read on every call so edits from the CLI show up in a running server.
type FileStore struct {
	mu            sync.Mutex
	blacklistPath string
	cachePath     string
	cache         map[string]string
}

type FileOptions struct {
	BlacklistPath string
	CachePath     string
}

func NewFileStore(opts FileOptions) (*FileStore, error) {
	if opts.BlacklistPath == "" {
		opts.BlacklistPath = DefaultBlacklistFile
	}
	if opts.CachePath == "" {
		opts.CachePath = DefaultCacheFile
	}
	s := &FileStore{
		blacklistPath: opts.BlacklistPath,
		cachePath:     opts.CachePath,
		cache:         map[string]string{},
	}
	if _, err := os.Stat(s.blacklistPath); errors.Is(err, os.ErrNotExist) {
		if err := s.writeEntries([]model.BlacklistEntry{}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat blacklist: %w", err)
	}
	if err := s.loadCache(); err != nil {
		slog.Warn("ignoring unreadable puuid cache", "path", s.cachePath, "error", err)
		s.cache = map[string]string{}
	}
	return s, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) ListEntries() ([]model.BlacklistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readEntries()
}

func (s *FileStore) GetEntry(summonerID string) (model.BlacklistEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readEntries()
	if err != nil {
		return model.BlacklistEntry{}, false, err
	}
	for _, e := range entries {
		if e.SummonerID == summonerID {
			return e, true, nil
		}
	}
	return model.BlacklistEntry{}, false, nil
}

func (s *FileStore) AddEntry(entry model.BlacklistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.entriesForWrite()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.SummonerID == entry.SummonerID {
			return ErrDuplicate
		}
	}
	return s.writeEntries(append(entries, entry))
}

func (s *FileStore) RemoveEntry(summonerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readEntries()
	if err != nil {
		return err
	}
	kept := make([]model.BlacklistEntry, 0, len(entries))
	for _, e := range entries {
		if e.SummonerID != summonerID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return ErrNotFound
	}
	return s.writeEntries(kept)
}

func (s *FileStore) GetPUUID(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	puuid, ok := s.cache[key]
	return puuid, ok, nil
}

func (s *FileStore) PutPUUID(_ context.Context, key, puuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = puuid
	return s.saveCache()
}

func (s *FileStore) DeletePUUID(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cache[key]; !ok {
		return nil
	}
	delete(s.cache, key)
	return s.saveCache()
}

// readEntries treats an unparseable blacklist as empty, matching how a missing file behaves.
func (s *FileStore) readEntries() ([]model.BlacklistEntry, error) {
	entries, _, err := s.loadEntries()
	return entries, err
}

// entriesForWrite is readEntries for a caller about to rewrite the file. An
// unparseable file is copied to BlacklistPath+".bak" first.
func (s *FileStore) entriesForWrite() ([]model.BlacklistEntry, error) {
	entries, readable, err := s.loadEntries()
	if err != nil {
		return nil, err
	}
	if !readable {
		if err := s.backupBlacklist(); err != nil {
			return nil, fmt.Errorf("back up unreadable blacklist: %w", err)
		}
	}
	return entries, nil
}

func (s *FileStore) loadEntries() ([]model.BlacklistEntry, bool, error) {
	f, err := os.Open(s.blacklistPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.BlacklistEntry{}, true, nil
		}
		return nil, false, fmt.Errorf("open blacklist: %w", err)
	}
	defer f.Close()

	entries, err := ReadEntriesCSV(f)
	if err != nil {
		slog.Error("error loading blacklist", "path", s.blacklistPath, "error", err)
		return []model.BlacklistEntry{}, false, nil
	}
	return entries, true, nil
}

func (s *FileStore) backupBlacklist() error {
	data, err := os.ReadFile(s.blacklistPath)
	if err != nil {
		return err
	}
	backup := s.blacklistPath + ".bak"
	if err := writeFileAtomic(backup, bytes.NewReader(data)); err != nil {
		return err
	}
	slog.Warn("unreadable blacklist copied aside", "path", s.blacklistPath, "backup", backup)
	return nil
}

func (s *FileStore) writeEntries(entries []model.BlacklistEntry) error {
	var buf bytes.Buffer
	if err := WriteEntriesCSV(&buf, entries); err != nil {
		return err
	}
	if err := writeFileAtomic(s.blacklistPath, &buf); err != nil {
		return fmt.Errorf("save blacklist: %w", err)
	}
	slog.Debug("blacklist saved", "path", s.blacklistPath, "entries", len(entries))
	return nil
}

func (s *FileStore) loadCache() error {
	data, err := os.ReadFile(s.cachePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	cache := map[string]string{}
	if err := json.Unmarshal(data, &cache); err != nil {
		return err
	}
	s.cache = cache
	return nil
}

func (s *FileStore) saveCache() error {
	data, err := json.Marshal(s.cache)
	if err != nil {
		return fmt.Errorf("encode puuid cache: %w", err)
	}
	if err := writeFileAtomic(s.cachePath, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("save puuid cache: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
