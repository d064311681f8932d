package blacklist

import (
	"errors"
	"fmt"

	"lol-blacklist/internal/model"
)

var (
	ErrNoAPIKey           = errors.New("riot api key is not configured")
	ErrNoMatches          = errors.New("no recent matches found")
	ErrAlreadyBlacklisted = errors.New("player is already in your blacklist")
	ErrNotBlacklisted     = errors.New("player is not in your blacklist")
)

// SummonerNotFoundError is returned when Riot has no account for a Riot ID.
type SummonerNotFoundError struct {
	RiotID model.RiotID
	Region model.Region
}

func (e *SummonerNotFoundError) Error() string {
	return fmt.Sprintf("could not find summoner '%s' in region %s", e.RiotID, e.Region)
}
