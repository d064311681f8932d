package model

import (
	"strings"
	"time"
)

type Team string

const (
	TeamBlue Team = "Blue"
	TeamRed  Team = "Red"
)

// TeamFromID maps Riot's numeric team id (100 blue, 200 red) onto a Team.
func TeamFromID(id int) Team {
	if id == 100 {
		return TeamBlue
	}
	return TeamRed
}

type BlacklistEntry struct {
	SummonerID   string
	SummonerName string
	Tagline      string
	Reason       string
	DateAdded    time.Time
}

func (e BlacklistEntry) DisplayName() string {
	return DisplayName(e.SummonerName, e.Tagline)
}

// DisplayName renders name#tag, or just the name when the tag is empty.
func DisplayName(name, tagline string) string {
	name = strings.TrimSpace(name)
	tagline = strings.TrimSpace(tagline)
	if tagline == "" {
		return name
	}
	return name + "#" + tagline
}

// Settings is the persisted dashboard configuration.
type Settings struct {
	APIKey   string `json:"api_key" yaml:"api_key"`
	Region   Region `json:"region" yaml:"region"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Tagline  string `json:"tagline,omitempty" yaml:"tagline,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{Region: DefaultRegion}
}

func (s Settings) HasAPIKey() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type Summoner struct {
	ID            string
	PUUID         string
	GameName      string
	Tagline       string
	Level         int64
	ProfileIconID int
}

func (s Summoner) DisplayName() string {
	return DisplayName(s.GameName, s.Tagline)
}

// BlacklistID is the key the summoner's blacklist entry is stored under.
// Riot no longer returns summoner ids for every account, so the PUUID stands in.
func (s Summoner) BlacklistID() string {
	if s.ID != "" {
		return s.ID
	}
	return s.PUUID
}

type MatchParticipant struct {
	SummonerID string
	PUUID      string
	Name       string
	Tagline    string
	Champion   string
	Team       Team
}

func (p MatchParticipant) DisplayName() string {
	return DisplayName(p.Name, p.Tagline)
}

type MatchSummary struct {
	ID           string
	QueueID      int
	QueueName    string
	GameMode     string
	StartedAt    time.Time
	Duration     time.Duration
	Participants []MatchParticipant
}

func (m MatchSummary) TeamPlayers(team Team) []MatchParticipant {
	players := []MatchParticipant{}
	for _, p := range m.Participants {
		if p.Team == team {
			players = append(players, p)
		}
	}
	return players
}

type LivePlayer struct {
	SummonerID string
	PUUID      string
	Name       string
	Tagline    string
	ChampionID int
	Champion   string
	Team       Team
	Entry      *BlacklistEntry
}

func (p LivePlayer) DisplayName() string {
	return DisplayName(p.Name, p.Tagline)
}

func (p LivePlayer) Blacklisted() bool {
	return p.Entry != nil
}

type LiveGame struct {
	GameID       int64
	QueueID      int
	QueueName    string
	GameMode     string
	StartedAt    time.Time
	Participants []LivePlayer
}

func (g LiveGame) TeamPlayers(team Team) []LivePlayer {
	players := []LivePlayer{}
	for _, p := range g.Participants {
		if p.Team == team {
			players = append(players, p)
		}
	}
	return players
}
