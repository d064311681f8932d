// Package blacklist holds the dashboard logic: summoner lookup, match history,
// live game checks and the blacklist itself.
package blacklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"lol-blacklist/internal/model"
	"lol-blacklist/internal/riot"
	"lol-blacklist/internal/store"
)

const (
	DefaultMatchCount = 5
	MatchCacheTTL     = 5 * time.Minute
)

// queueFallback is tried in order until one returns match ids.
var queueFallback = []int{
	riot.QueueAny,
	riot.QueueRankedSolo,
	riot.QueueRankedFlex,
	riot.QueueNormalDraft,
	riot.QueueARAM,
}

// ClientFactory builds a Riot client for an API key.
type ClientFactory func(apiKey string) *riot.Client

type Options struct {
	MatchCount    int
	ClientFactory ClientFactory
	Logger        *slog.Logger
	Now           func() time.Time
}

// Manager ties the Riot client to the blacklist and PUUID cache stores.
type Manager struct {
	entries store.BlacklistStore
	puuids  store.PUUIDCache

	matchCount int
	newClient  ClientFactory
	logger     *slog.Logger
	now        func() time.Time
	matches    *matchCache

	mu     sync.RWMutex
	client *riot.Client
	region model.Region
}

func NewManager(entries store.BlacklistStore, puuids store.PUUIDCache, opts Options) *Manager {
	if opts.MatchCount <= 0 {
		opts.MatchCount = DefaultMatchCount
	}
	if opts.ClientFactory == nil {
		opts.ClientFactory = func(apiKey string) *riot.Client { return riot.NewClient(apiKey) }
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		entries:    entries,
		puuids:     puuids,
		matchCount: opts.MatchCount,
		newClient:  opts.ClientFactory,
		logger:     opts.Logger,
		now:        opts.Now,
		matches:    newMatchCache(MatchCacheTTL, opts.Now),
		region:     model.DefaultRegion,
	}
}

// Configure sets the API key and region used for Riot calls. An empty key
// disables the API until it is configured again.
func (m *Manager) Configure(apiKey string, region model.Region) {
	apiKey = strings.TrimSpace(apiKey)
	region = model.ParseRegion(string(region))

	m.mu.Lock()
	defer m.mu.Unlock()
	if apiKey == "" {
		m.client = nil
	} else {
		m.client = m.newClient(apiKey)
	}
	if region != m.region {
		m.matches.clear()
	}
	m.region = region
}

func (m *Manager) Configured() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

func (m *Manager) Region() model.Region {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.region
}

func (m *Manager) api() (*riot.Client, model.Region, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil {
		return nil, m.region, ErrNoAPIKey
	}
	return m.client, m.region, nil
}

// ResolveSummoner looks up a player by Riot ID, using the PUUID cache when possible.
func (m *Manager) ResolveSummoner(ctx context.Context, name, tag string) (model.Summoner, error) {
	client, region, err := m.api()
	if err != nil {
		return model.Summoner{}, err
	}
	id, err := model.ParseRiotID(name, tag, region)
	if err != nil {
		return model.Summoner{}, err
	}
	key := id.CacheKey()

	puuid, ok, err := m.puuids.GetPUUID(ctx, key)
	if err != nil {
		m.logger.Warn("puuid cache read failed", "riot_id", id.String(), "error", err)
		ok = false
	}
	if ok {
		summoner, err := client.GetSummonerByPUUID(ctx, region.Platform(), puuid)
		if err == nil {
			m.logger.Debug("summoner resolved from cache", "riot_id", id.String())
			return toSummoner(summoner, id), nil
		}
		if !errors.Is(err, riot.ErrNotFound) {
			return model.Summoner{}, err
		}
		// Stale entry, e.g. a PUUID from another region.
		m.logger.Info("cached puuid not found, resolving again", "riot_id", id.String())
		if err := m.puuids.DeletePUUID(ctx, key); err != nil {
			m.logger.Warn("puuid cache delete failed", "riot_id", id.String(), "error", err)
		}
	}

	account, err := client.GetAccountByRiotID(ctx, region.Continent(), id.GameName, id.Tagline)
	if err != nil {
		if errors.Is(err, riot.ErrNotFound) {
			return model.Summoner{}, &SummonerNotFoundError{RiotID: id, Region: region}
		}
		return model.Summoner{}, err
	}
	summoner, err := client.GetSummonerByPUUID(ctx, region.Platform(), account.PUUID)
	if err != nil {
		if errors.Is(err, riot.ErrNotFound) {
			return model.Summoner{}, &SummonerNotFoundError{RiotID: id, Region: region}
		}
		return model.Summoner{}, err
	}

	if err := m.puuids.PutPUUID(ctx, key, account.PUUID); err != nil {
		m.logger.Warn("puuid cache write failed", "riot_id", id.String(), "error", err)
	}
	if account.GameName != "" {
		id.GameName = account.GameName
	}
	if account.TagLine != "" {
		id.Tagline = account.TagLine
	}
	return toSummoner(summoner, id), nil
}

func toSummoner(s *riot.Summoner, id model.RiotID) model.Summoner {
	return model.Summoner{
		ID:            s.ID,
		PUUID:         s.PUUID,
		GameName:      id.GameName,
		Tagline:       id.Tagline,
		Level:         s.SummonerLevel,
		ProfileIconID: s.ProfileIconID,
	}
}

// MatchHistory lists recent match ids, falling back through common queues
// until one of them returns results.
func (m *Manager) MatchHistory(ctx context.Context, summoner model.Summoner) ([]string, error) {
	client, region, err := m.api()
	if err != nil {
		return nil, err
	}
	for _, queue := range queueFallback {
		ids, err := client.GetMatchIDsByPUUID(ctx, region.Continent(), summoner.PUUID, riot.MatchListOptions{
			Count: m.matchCount,
			Queue: queue,
		})
		if err != nil {
			if errors.Is(err, riot.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if len(ids) > 0 {
			m.logger.Debug("match history loaded", "riot_id", summoner.DisplayName(), "queue", queue, "count", len(ids))
			return ids, nil
		}
	}
	return nil, ErrNoMatches
}

// MatchDetails returns the participants of a finished match.
func (m *Manager) MatchDetails(ctx context.Context, matchID string) (model.MatchSummary, error) {
	if summary, ok := m.matches.get(matchID); ok {
		return summary, nil
	}
	client, region, err := m.api()
	if err != nil {
		return model.MatchSummary{}, err
	}
	match, err := client.GetMatch(ctx, region.Continent(), matchID)
	if err != nil {
		return model.MatchSummary{}, err
	}
	summary := toMatchSummary(match)
	m.matches.put(summary)
	m.logger.Debug("match details loaded", "match_id", matchID, "participants", len(summary.Participants))
	return summary, nil
}

func toMatchSummary(match *riot.Match) model.MatchSummary {
	summary := model.MatchSummary{
		ID:        match.Metadata.MatchID,
		QueueID:   match.Info.QueueID,
		QueueName: riot.QueueName(match.Info.QueueID),
		GameMode:  match.Info.GameMode,
		Duration:  time.Duration(match.Info.GameDuration) * time.Second,
	}
	if start := match.Info.GameStart; start > 0 {
		summary.StartedAt = time.UnixMilli(start)
	} else if match.Info.GameCreation > 0 {
		summary.StartedAt = time.UnixMilli(match.Info.GameCreation)
	}
	for _, p := range match.Info.Participants {
		name := p.SummonerName
		if name == "" {
			name = p.RiotIDGameName
		}
		if name == "" {
			name = "Unknown Player"
		}
		champion := p.ChampionName
		if champion == "" {
			champion = fmt.Sprint(p.ChampionID)
		}
		summary.Participants = append(summary.Participants, model.MatchParticipant{
			SummonerID: participantID(p.SummonerID, p.PUUID),
			PUUID:      p.PUUID,
			Name:       name,
			Tagline:    p.RiotIDTagline,
			Champion:   champion,
			Team:       model.TeamFromID(p.TeamID),
		})
	}
	return summary
}

// participantID is the key blacklist entries are stored under.
func participantID(summonerID, puuid string) string {
	if summonerID != "" {
		return summonerID
	}
	return puuid
}

// CurrentGame returns the live game the summoner is in, or nil.
func (m *Manager) CurrentGame(ctx context.Context, summoner model.Summoner) (*model.LiveGame, error) {
	client, region, err := m.api()
	if err != nil {
		return nil, err
	}
	game, err := client.GetActiveGame(ctx, region.Platform(), summoner.PUUID)
	if err != nil || game == nil {
		return nil, err
	}

	entries, err := m.entryIndex()
	if err != nil {
		return nil, err
	}

	live := &model.LiveGame{
		GameID:    game.GameID,
		QueueID:   game.GameQueueConfigID,
		QueueName: riot.QueueName(game.GameQueueConfigID),
		GameMode:  game.GameMode,
	}
	if game.GameStartTime > 0 {
		live.StartedAt = time.UnixMilli(game.GameStartTime)
	}
	for _, p := range game.Participants {
		name, tag := splitRiotID(p.RiotID)
		if name == "" {
			name = p.SummonerName
		}
		if name == "" {
			name = "Unknown Player"
		}
		player := model.LivePlayer{
			SummonerID: participantID(p.SummonerID, p.PUUID),
			PUUID:      p.PUUID,
			Name:       name,
			Tagline:    tag,
			ChampionID: p.ChampionID,
			Champion:   fmt.Sprint(p.ChampionID),
			Team:       model.TeamFromID(p.TeamID),
		}
		if entry, ok := entries[player.SummonerID]; ok {
			player.Entry = &entry
		} else if entry, ok := entries[p.PUUID]; ok && p.PUUID != "" {
			player.Entry = &entry
		}
		live.Participants = append(live.Participants, player)
	}
	return live, nil
}

func splitRiotID(riotID string) (string, string) {
	name, tag, _ := strings.Cut(riotID, "#")
	return strings.TrimSpace(name), strings.TrimSpace(tag)
}

func (m *Manager) entryIndex() (map[string]model.BlacklistEntry, error) {
	entries, err := m.entries.ListEntries()
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	index := make(map[string]model.BlacklistEntry, len(entries))
	for _, e := range entries {
		index[e.SummonerID] = e
	}
	return index, nil
}

// LiveReport is the outcome of a live game check. Game is nil when the
// summoner is not in a game.
type LiveReport struct {
	Summoner model.Summoner
	Game     *model.LiveGame
	Flagged  []model.LivePlayer
}

func (r LiveReport) InGame() bool {
	return r.Game != nil
}

// CheckLiveGame resolves a summoner and reports blacklisted players in their current game.
func (m *Manager) CheckLiveGame(ctx context.Context, name, tag string) (LiveReport, error) {
	summoner, err := m.ResolveSummoner(ctx, name, tag)
	if err != nil {
		return LiveReport{}, err
	}
	game, err := m.CurrentGame(ctx, summoner)
	if err != nil {
		return LiveReport{Summoner: summoner}, err
	}
	report := LiveReport{Summoner: summoner, Game: game}
	if game == nil {
		return report, nil
	}
	for _, p := range game.Participants {
		if p.Blacklisted() {
			report.Flagged = append(report.Flagged, p)
		}
	}
	m.logger.Info("live game checked", "riot_id", summoner.DisplayName(), "game_id", game.GameID, "flagged", len(report.Flagged))
	return report, nil
}
