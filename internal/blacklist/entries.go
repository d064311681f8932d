package blacklist

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"lol-blacklist/internal/model"
	"lol-blacklist/internal/store"
)

// Add stores a new entry. DateAdded defaults to now.
func (m *Manager) Add(entry model.BlacklistEntry) (model.BlacklistEntry, error) {
	entry.SummonerID = strings.TrimSpace(entry.SummonerID)
	entry.SummonerName = strings.TrimSpace(entry.SummonerName)
	entry.Tagline = strings.TrimSpace(entry.Tagline)
	entry.Reason = strings.TrimSpace(entry.Reason)
	if entry.SummonerID == "" {
		return entry, errors.New("summoner id is required")
	}
	if entry.DateAdded.IsZero() {
		entry.DateAdded = m.now().UTC()
	}

	if err := m.entries.AddEntry(entry); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return entry, ErrAlreadyBlacklisted
		}
		return entry, fmt.Errorf("add blacklist entry: %w", err)
	}
	m.logger.Info("player blacklisted", "summoner_id", entry.SummonerID, "riot_id", entry.DisplayName())
	return entry, nil
}

func (m *Manager) Remove(summonerID string) error {
	if err := m.entries.RemoveEntry(summonerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotBlacklisted
		}
		return fmt.Errorf("remove blacklist entry: %w", err)
	}
	m.logger.Info("player removed from blacklist", "summoner_id", summonerID)
	return nil
}

func (m *Manager) Entry(summonerID string) (model.BlacklistEntry, bool, error) {
	return m.entries.GetEntry(summonerID)
}

func (m *Manager) IsBlacklisted(summonerID string) (bool, error) {
	_, ok, err := m.entries.GetEntry(summonerID)
	return ok, err
}

// List returns entries whose name contains filter, ignoring case.
func (m *Manager) List(filter string) ([]model.BlacklistEntry, error) {
	entries, err := m.entries.ListEntries()
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return entries, nil
	}
	filtered := []model.BlacklistEntry{}
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.DisplayName()), filter) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (m *Manager) Export(w io.Writer) error {
	entries, err := m.entries.ListEntries()
	if err != nil {
		return fmt.Errorf("list blacklist: %w", err)
	}
	return store.WriteEntriesCSV(w, entries)
}

type ImportResult struct {
	Added   int
	Skipped int
}

// Import merges entries from a CSV. Existing ids are kept as they are.
func (m *Manager) Import(r io.Reader) (ImportResult, error) {
	var result ImportResult
	entries, err := store.ReadEntriesCSV(r)
	if err != nil {
		return result, err
	}
	for _, entry := range entries {
		if _, err := m.Add(entry); err != nil {
			if errors.Is(err, ErrAlreadyBlacklisted) {
				result.Skipped++
				continue
			}
			return result, err
		}
		result.Added++
	}
	m.logger.Info("blacklist imported", "added", result.Added, "skipped", result.Skipped)
	return result, nil
}
