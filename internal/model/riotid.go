package model

import (
	"errors"
	"strings"
)

var ErrEmptyGameName = errors.New("summoner name is required")

type RiotID struct {
	GameName string
	Tagline  string
}

// ParseRiotID accepts either a bare name plus tag or a "Name#Tag" string in name.
// A tag embedded in name wins over the tag argument; an empty tag falls back to the
// region's default.
func ParseRiotID(name, tag string, region Region) (RiotID, error) {
	name = strings.TrimSpace(name)
	tag = strings.TrimSpace(tag)
	if idx := strings.Index(name, "#"); idx >= 0 {
		if embedded := strings.TrimSpace(name[idx+1:]); embedded != "" {
			tag = embedded
		}
		name = strings.TrimSpace(name[:idx])
	}
	tag = strings.TrimPrefix(tag, "#")
	if name == "" {
		return RiotID{}, ErrEmptyGameName
	}
	if tag == "" {
		tag = region.DefaultTagline()
	}
	return RiotID{GameName: name, Tagline: tag}, nil
}

func (id RiotID) String() string {
	return id.GameName + "#" + id.Tagline
}

// CacheKey is the case-insensitive key used for the PUUID cache.
func (id RiotID) CacheKey() string {
	return strings.ToLower(id.GameName) + "#" + strings.ToLower(id.Tagline)
}
