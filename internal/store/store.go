package store

import (
	"context"
	"errors"

	"lol-blacklist/internal/model"
)

var (
	ErrDuplicate = errors.New("entry already exists")
	ErrNotFound  = errors.New("entry not found")
)

// BlacklistStore persists blacklist entries keyed by summoner id.
type BlacklistStore interface {
	ListEntries() ([]model.BlacklistEntry, error)
	GetEntry(summonerID string) (model.BlacklistEntry, bool, error)
	AddEntry(entry model.BlacklistEntry) error
	RemoveEntry(summonerID string) error
}

// PUUIDCache maps lower-cased "name#tag" keys to PUUIDs.
type PUUIDCache interface {
	GetPUUID(ctx context.Context, key string) (string, bool, error)
	PutPUUID(ctx context.Context, key, puuid string) error
	DeletePUUID(ctx context.Context, key string) error
}
