package riot

import (
	"context"
	"fmt"
	"net/url"
)

// Summoner is the Summoner-V4 payload.
type Summoner struct {
	ID            string `json:"id"`
	PUUID         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	RevisionDate  int64  `json:"revisionDate"`
	SummonerLevel int64  `json:"summonerLevel"`
}

// GetSummonerByPUUID looks a summoner up on its platform (na1, euw1, ...).
func (c *Client) GetSummonerByPUUID(ctx context.Context, platform, puuid string) (*Summoner, error) {
	endpoint := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s", c.host(platform), url.PathEscape(puuid))

	var summoner Summoner
	if err := c.get(ctx, endpoint, &summoner); err != nil {
		return nil, fmt.Errorf("get summoner by puuid: %w", err)
	}
	return &summoner, nil
}
