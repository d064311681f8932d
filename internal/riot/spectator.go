package riot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// ActiveGame is the Spectator-V5 current game payload.
type ActiveGame struct {
	GameID            int64                   `json:"gameId"`
	GameMode          string                  `json:"gameMode"`
	GameType          string                  `json:"gameType"`
	GameQueueConfigID int                     `json:"gameQueueConfigId"`
	GameStartTime     int64                   `json:"gameStartTime"`
	GameLength        int64                   `json:"gameLength"`
	Participants      []ActiveGameParticipant `json:"participants"`
}

type ActiveGameParticipant struct {
	PUUID        string `json:"puuid"`
	SummonerID   string `json:"summonerId"`
	SummonerName string `json:"summonerName"`
	RiotID       string `json:"riotId"`
	ChampionID   int    `json:"championId"`
	TeamID       int    `json:"teamId"`
	Bot          bool   `json:"bot"`
}

// GetActiveGame returns the game the player is in, or nil when they are not in one.
// Riot answers 404 (and occasionally 400) for players who are not in a game.
func (c *Client) GetActiveGame(ctx context.Context, platform, puuid string) (*ActiveGame, error) {
	endpoint := fmt.Sprintf("%s/lol/spectator/v5/active-games/by-summoner/%s", c.host(platform), url.PathEscape(puuid))

	var game ActiveGame
	if err := c.get(ctx, endpoint, &game); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBadRequest) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active game: %w", err)
	}
	return &game, nil
}
