package blacklist

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lol-blacklist/internal/model"
	"lol-blacklist/internal/riot"
	"lol-blacklist/internal/riot/riottest"
	"lol-blacklist/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)

type fixture struct {
	riot    *riottest.Server
	store   *store.MemoryStore
	manager *Manager
	clock   *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := riottest.NewServer(t)
	mem := store.NewMemoryStore()
	now := fixedNow
	f := &fixture{riot: srv, store: mem, clock: &now}
	f.manager = NewManager(mem, mem, Options{
		ClientFactory: srv.Client,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:           func() time.Time { return *f.clock },
	})
	f.manager.Configure(riottest.APIKey, model.RegionNA1)
	return f
}

func TestNotConfigured(t *testing.T) {
	mem := store.NewMemoryStore()
	m := NewManager(mem, mem, Options{})
	assert.False(t, m.Configured())

	_, err := m.ResolveSummoner(context.Background(), "Alpha", "NA1")
	assert.ErrorIs(t, err, ErrNoAPIKey)

	m.Configure("  ", model.RegionEUW1)
	assert.False(t, m.Configured())
	assert.Equal(t, model.RegionEUW1, m.Region())
}

func TestResolveSummoner(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then cache hit", func(t *testing.T) {
		f := newFixture(t)
		f.riot.AddPlayer("Alpha", "NA1", "puuid-a", "sum-a")

		s, err := f.manager.ResolveSummoner(ctx, "Alpha", "NA1")
		require.NoError(t, err)
		assert.Equal(t, "sum-a", s.ID)
		assert.Equal(t, "puuid-a", s.PUUID)
		assert.Equal(t, "Alpha#NA1", s.DisplayName())
		assert.Equal(t, 1, f.riot.Calls("account"))

		puuid, ok, err := f.store.GetPUUID(ctx, "alpha#na1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "puuid-a", puuid)

		_, err = f.manager.ResolveSummoner(ctx, "ALPHA", "na1")
		require.NoError(t, err)
		assert.Equal(t, 1, f.riot.Calls("account"), "cached puuid must skip the account lookup")
		assert.Equal(t, 2, f.riot.Calls("summoner"))
	})

	t.Run("riot id in name field and default tag", func(t *testing.T) {
		f := newFixture(t)
		f.riot.AddPlayer("Bravo", "EUW", "puuid-b", "sum-b")
		f.riot.AddPlayer("Charlie", "NA1", "puuid-c", "sum-c")

		s, err := f.manager.ResolveSummoner(ctx, "Bravo#EUW", "")
		require.NoError(t, err)
		assert.Equal(t, "sum-b", s.ID)

		s, err = f.manager.ResolveSummoner(ctx, "Charlie", "")
		require.NoError(t, err)
		assert.Equal(t, "sum-c", s.ID)
	})

	t.Run("unknown player", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.manager.ResolveSummoner(ctx, "Nobody", "NA1")

		var notFound *SummonerNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "could not find summoner 'Nobody#NA1' in region NA1", err.Error())
	})

	t.Run("empty name", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.manager.ResolveSummoner(ctx, "  ", "NA1")
		assert.ErrorIs(t, err, model.ErrEmptyGameName)
	})

	t.Run("stale cache entry is replaced", func(t *testing.T) {
		f := newFixture(t)
		f.riot.AddPlayer("Delta", "NA1", "puuid-new", "sum-d")
		require.NoError(t, f.store.PutPUUID(ctx, "delta#na1", "puuid-old"))

		s, err := f.manager.ResolveSummoner(ctx, "Delta", "NA1")
		require.NoError(t, err)
		assert.Equal(t, "puuid-new", s.PUUID)
		assert.Equal(t, 1, f.riot.Calls("account"))

		puuid, _, err := f.store.GetPUUID(ctx, "delta#na1")
		require.NoError(t, err)
		assert.Equal(t, "puuid-new", puuid)
	})

	t.Run("bad key", func(t *testing.T) {
		f := newFixture(t)
		f.manager.Configure("RGAPI-wrong", model.RegionNA1)
		_, err := f.manager.ResolveSummoner(ctx, "Alpha", "NA1")
		assert.ErrorIs(t, err, riot.ErrUnauthorized)
	})
}

func TestMatchHistory(t *testing.T) {
	ctx := context.Background()
	summoner := model.Summoner{ID: "sum-a", PUUID: "puuid-a", GameName: "Alpha", Tagline: "NA1"}

	t.Run("first queue with results wins", func(t *testing.T) {
		f := newFixture(t)
		f.riot.SetMatchIDs("puuid-a", riot.QueueRankedFlex, "NA1_3", "NA1_2")
		f.riot.SetMatchIDs("puuid-a", riot.QueueARAM, "NA1_9")

		ids, err := f.manager.MatchHistory(ctx, summoner)
		require.NoError(t, err)
		assert.Equal(t, []string{"NA1_3", "NA1_2"}, ids)
		assert.Equal(t, []int{0, 420, 440}, f.riot.QueuesRequested())
	})

	t.Run("any queue answers first", func(t *testing.T) {
		f := newFixture(t)
		f.riot.SetMatchIDs("puuid-a", riot.QueueAny, "NA1_1", "NA1_2", "NA1_3", "NA1_4", "NA1_5", "NA1_6")

		ids, err := f.manager.MatchHistory(ctx, summoner)
		require.NoError(t, err)
		assert.Len(t, ids, DefaultMatchCount)
		assert.Equal(t, 1, f.riot.Calls("match-ids"))
	})

	t.Run("no matches anywhere", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.manager.MatchHistory(ctx, summoner)
		assert.ErrorIs(t, err, ErrNoMatches)
		assert.Equal(t, []int{0, 420, 440, 400, 450}, f.riot.QueuesRequested())
	})

	t.Run("server errors propagate", func(t *testing.T) {
		f := newFixture(t)
		f.riot.FailWith(http.StatusInternalServerError)
		_, err := f.manager.MatchHistory(ctx, summoner)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoMatches)
		assert.ErrorContains(t, err, "status 500")
	})
}

func sampleMatch() riot.Match {
	return riot.Match{
		Metadata: riot.MatchMetadata{MatchID: "NA1_1"},
		Info: riot.MatchInfo{
			GameDuration: 1800,
			GameMode:     "CLASSIC",
			QueueID:      420,
			GameStart:    fixedNow.Add(-time.Hour).UnixMilli(),
			Participants: []riot.Participant{
				{PUUID: "puuid-a", SummonerID: "sum-a", RiotIDGameName: "Alpha", RiotIDTagline: "NA1", ChampionName: "Ahri", TeamID: 100},
				{PUUID: "puuid-b", SummonerName: "Bravo", ChampionName: "Zed", TeamID: 200},
			},
		},
	}
}

func TestMatchDetails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.riot.AddMatch(sampleMatch())

	m, err := f.manager.MatchDetails(ctx, "NA1_1")
	require.NoError(t, err)
	assert.Equal(t, "Ranked Solo/Duo", m.QueueName)
	assert.Equal(t, 30*time.Minute, m.Duration)
	require.Len(t, m.Participants, 2)

	blue := m.TeamPlayers(model.TeamBlue)
	require.Len(t, blue, 1)
	assert.Equal(t, "sum-a", blue[0].SummonerID)
	assert.Equal(t, "Alpha#NA1", blue[0].DisplayName())

	red := m.TeamPlayers(model.TeamRed)
	require.Len(t, red, 1)
	assert.Equal(t, "puuid-b", red[0].SummonerID, "missing summoner id falls back to puuid")
	assert.Equal(t, "Bravo", red[0].DisplayName())

	_, err = f.manager.MatchDetails(ctx, "NA1_1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.riot.Calls("match"))

	*f.clock = f.clock.Add(MatchCacheTTL)
	_, err = f.manager.MatchDetails(ctx, "NA1_1")
	require.NoError(t, err)
	assert.Equal(t, 2, f.riot.Calls("match"), "expired entry is fetched again")

	_, err = f.manager.MatchDetails(ctx, "NA1_404")
	assert.ErrorIs(t, err, riot.ErrNotFound)
}

func TestMatchParticipantNames(t *testing.T) {
	f := newFixture(t)
	f.riot.AddMatch(riot.Match{
		Metadata: riot.MatchMetadata{MatchID: "NA1_2"},
		Info: riot.MatchInfo{
			QueueID: 450,
			Participants: []riot.Participant{
				{PUUID: "puuid-a", SummonerName: "OldName", RiotIDGameName: "Alpha", RiotIDTagline: "NA1", TeamID: 100},
				{PUUID: "puuid-b", RiotIDGameName: "Bravo", RiotIDTagline: "EUW", TeamID: 100},
				{PUUID: "puuid-c", ChampionID: 99, TeamID: 200},
			},
		},
	})

	m, err := f.manager.MatchDetails(context.Background(), "NA1_2")
	require.NoError(t, err)
	require.Len(t, m.Participants, 3)
	assert.Equal(t, "OldName", m.Participants[0].Name, "summonerName wins when present")
	assert.Equal(t, "Bravo", m.Participants[1].Name)
	assert.Equal(t, "Unknown Player", m.Participants[2].Name)
	assert.Equal(t, "99", m.Participants[2].Champion)
}

func TestCheckLiveGame(t *testing.T) {
	ctx := context.Background()

	t.Run("not in game", func(t *testing.T) {
		f := newFixture(t)
		f.riot.AddPlayer("Alpha", "NA1", "puuid-a", "sum-a")

		report, err := f.manager.CheckLiveGame(ctx, "Alpha", "NA1")
		require.NoError(t, err)
		assert.False(t, report.InGame())
		assert.Empty(t, report.Flagged)
		assert.Equal(t, "sum-a", report.Summoner.ID)
	})

	t.Run("flags only blacklisted players", func(t *testing.T) {
		f := newFixture(t)
		f.riot.AddPlayer("Alpha", "NA1", "puuid-a", "sum-a")
		f.riot.SetActiveGame("puuid-a", riot.ActiveGame{
			GameID:            42,
			GameMode:          "CLASSIC",
			GameQueueConfigID: 420,
			GameStartTime:     fixedNow.UnixMilli(),
			Participants: []riot.ActiveGameParticipant{
				{PUUID: "puuid-a", SummonerID: "sum-a", RiotID: "Alpha#NA1", ChampionID: 103, TeamID: 100},
				{PUUID: "puuid-b", SummonerID: "sum-b", RiotID: "Bravo#EUW", ChampionID: 238, TeamID: 200},
				{PUUID: "puuid-c", RiotID: "Charlie#NA1", ChampionID: 1, TeamID: 200},
				{PUUID: "puuid-d", SummonerID: "sum-d", RiotID: "Delta#NA1", ChampionID: 2, TeamID: 100},
			},
		})
		_, err := f.manager.Add(model.BlacklistEntry{SummonerID: "sum-b", SummonerName: "Bravo", Tagline: "EUW", Reason: "flamer"})
		require.NoError(t, err)
		_, err = f.manager.Add(model.BlacklistEntry{SummonerID: "puuid-c", SummonerName: "Charlie", Reason: "afk"})
		require.NoError(t, err)

		report, err := f.manager.CheckLiveGame(ctx, "Alpha", "NA1")
		require.NoError(t, err)
		require.True(t, report.InGame())
		assert.Equal(t, int64(42), report.Game.GameID)
		assert.Len(t, report.Game.TeamPlayers(model.TeamRed), 2)

		require.Len(t, report.Flagged, 2)
		assert.Equal(t, "Bravo#EUW", report.Flagged[0].DisplayName())
		assert.Equal(t, "flamer", report.Flagged[0].Entry.Reason)
		assert.Equal(t, "238", report.Flagged[0].Champion)
		assert.Equal(t, "afk", report.Flagged[1].Entry.Reason)
	})
}

func TestBlacklistEntries(t *testing.T) {
	f := newFixture(t)
	m := f.manager

	added, err := m.Add(model.BlacklistEntry{SummonerID: " sum-a ", SummonerName: "Alpha", Tagline: "NA1"})
	require.NoError(t, err)
	assert.Equal(t, "sum-a", added.SummonerID)
	assert.Equal(t, fixedNow, added.DateAdded)
	assert.Empty(t, added.Reason)

	_, err = m.Add(model.BlacklistEntry{SummonerID: "sum-a", SummonerName: "Alpha again"})
	assert.ErrorIs(t, err, ErrAlreadyBlacklisted)
	assert.Equal(t, "player is already in your blacklist", err.Error())

	_, err = m.Add(model.BlacklistEntry{SummonerName: "No id"})
	assert.Error(t, err)

	_, err = m.Add(model.BlacklistEntry{SummonerID: "sum-b", SummonerName: "Bravo", Tagline: "EUW"})
	require.NoError(t, err)

	ok, err := m.IsBlacklisted("sum-a")
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := m.List("")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = m.List("BRA")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sum-b", list[0].SummonerID)

	list, err = m.List("#euw")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, m.Remove("sum-a"))
	assert.ErrorIs(t, m.Remove("sum-a"), ErrNotBlacklisted)

	ok, err = m.IsBlacklisted("sum-a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	fs, err := store.NewFileStore(store.FileOptions{
		BlacklistPath: filepath.Join(dir, "blacklist.csv"),
		CachePath:     filepath.Join(dir, "puuid_cache.json"),
	})
	require.NoError(t, err)
	m := NewManager(fs, fs, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	_, err = m.Add(model.BlacklistEntry{SummonerID: "sum-a", SummonerName: "Alpha", Reason: "int", DateAdded: fixedNow})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.Export(&buf))
	assert.Equal(t, "summoner_id,summoner_name,reason,date_added,tagline\nsum-a,Alpha,int,2024-06-01T18:00:00Z,\n", buf.String())

	result, err := m.Import(strings.NewReader("summoner_name,summoner_id,reason\nAlpha renamed,sum-a,other\nBravo,sum-b,troll\nCharlie,sum-c,\nBravo dup,sum-b,x\n"))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Added: 2, Skipped: 2}, result)

	entry, ok, err := m.Entry("sum-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Alpha", entry.SummonerName, "import never overwrites")
	assert.Equal(t, "int", entry.Reason)

	_, err = m.Import(strings.NewReader("summoner_id,reason\nx,y\n"))
	var missing *store.MissingColumnsError
	assert.True(t, errors.As(err, &missing))
}
