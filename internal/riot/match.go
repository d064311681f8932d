package riot

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Match represents match data from the Match-V5 API
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

// MatchMetadata contains match metadata
type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

// MatchInfo contains detailed match information
type MatchInfo struct {
	GameDuration     int64         `json:"gameDuration"` // in seconds
	GameMode         string        `json:"gameMode"`
	GameType         string        `json:"gameType"`
	QueueID          int           `json:"queueId"`
	GameCreation     int64         `json:"gameCreation"` // Unix timestamp in ms
	GameStart        int64         `json:"gameStartTimestamp"`
	GameEndTimestamp int64         `json:"gameEndTimestamp"`
	Participants     []Participant `json:"participants"`
}

// Participant represents a player in the match
type Participant struct {
	PUUID          string `json:"puuid"`
	SummonerID     string `json:"summonerId"`
	SummonerName   string `json:"summonerName"`
	RiotIDGameName string `json:"riotIdGameName"`
	RiotIDTagline  string `json:"riotIdTagline"`
	ChampionName   string `json:"championName"`
	ChampionID     int    `json:"championId"`
	TeamID         int    `json:"teamId"`
	Win            bool   `json:"win"`
	Kills          int    `json:"kills"`
	Deaths         int    `json:"deaths"`
	Assists        int    `json:"assists"`
}

// MatchListOptions narrows a match id listing. Zero Queue means any queue.
type MatchListOptions struct {
	Start int
	Count int
	Queue int
}

// GetMatchIDsByPUUID retrieves recent match IDs for a player
func (c *Client) GetMatchIDsByPUUID(ctx context.Context, continent, puuid string, opts MatchListOptions) ([]string, error) {
	count := opts.Count
	if count <= 0 {
		count = 5
	}
	if count > 100 {
		count = 100
	}
	query := url.Values{}
	query.Set("start", strconv.Itoa(max(opts.Start, 0)))
	query.Set("count", strconv.Itoa(count))
	if opts.Queue > 0 {
		query.Set("queue", strconv.Itoa(opts.Queue))
	}
	endpoint := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?%s",
		c.host(continent), url.PathEscape(puuid), query.Encode())

	var matchIDs []string
	if err := c.get(ctx, endpoint, &matchIDs); err != nil {
		return nil, fmt.Errorf("get match ids: %w", err)
	}
	return matchIDs, nil
}

// GetMatch retrieves detailed match information
func (c *Client) GetMatch(ctx context.Context, continent, matchID string) (*Match, error) {
	endpoint := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.host(continent), url.PathEscape(matchID))

	var match Match
	if err := c.get(ctx, endpoint, &match); err != nil {
		return nil, fmt.Errorf("get match %s: %w", matchID, err)
	}
	return &match, nil
}
