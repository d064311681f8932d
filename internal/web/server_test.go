package web

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lol-blacklist/internal/blacklist"
	"lol-blacklist/internal/config"
	"lol-blacklist/internal/model"
	"lol-blacklist/internal/riot"
	"lol-blacklist/internal/riot/riottest"
	"lol-blacklist/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	server       *Server
	handler      http.Handler
	riot         *riottest.Server
	store        *store.MemoryStore
	manager      *blacklist.Manager
	settingsPath string
}

func newTestEnv(t *testing.T, settings model.Settings, passwordHash string) *testEnv {
	t.Helper()
	templates, err := NewTemplates(os.DirFS("../.."))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := riottest.NewServer(t)
	mem := store.NewMemoryStore()
	manager := blacklist.NewManager(mem, mem, blacklist.Options{ClientFactory: srv.Client, Logger: logger})
	settingsPath := filepath.Join(t.TempDir(), "config.json")

	server := NewServer(manager, templates, settings, Options{
		SettingsPath: settingsPath,
		PasswordHash: passwordHash,
		Logger:       logger,
	})
	return &testEnv{
		server:       server,
		handler:      server.Handler(nil),
		riot:         srv,
		store:        mem,
		manager:      manager,
		settingsPath: settingsPath,
	}
}

func configured() model.Settings {
	return model.Settings{APIKey: riottest.APIKey, Region: model.RegionNA1}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(t *testing.T, target string, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return e.do(t, req)
}

func (e *testEnv) postForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req)
}

func redirectQuery(t *testing.T, rec *httptest.ResponseRecorder) (string, url.Values) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	u, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return u.Path, u.Query()
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, model.DefaultSettings(), "")

	rec := env.get(t, "/", false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Save Settings")
	assert.Contains(t, body, "No API key configured")
	assert.Contains(t, body, "Enter a summoner name and region in the sidebar to begin")
	assert.Contains(t, body, `<option value="EUW1">`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = env.get(t, "/?notice=settings_saved", false)
	assert.Contains(t, rec.Body.String(), "Settings saved!")

	rec = env.get(t, "/help", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "How to Use the Blacklist System")
	assert.NotContains(t, rec.Body.String(), "<html")

	rec = env.get(t, "/healthz", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSettingsPost(t *testing.T) {
	t.Run("remember writes the file", func(t *testing.T) {
		env := newTestEnv(t, model.DefaultSettings(), "")
		rec := env.postForm(t, "/settings", url.Values{"api_key": {"RGAPI-new"}, "region": {"EUW1"}, "remember": {"on"}})
		_, q := redirectQuery(t, rec)
		assert.Equal(t, "settings_saved", q.Get("notice"))

		assert.True(t, env.manager.Configured())
		assert.Equal(t, model.RegionEUW1, env.manager.Region())

		saved, err := config.LoadSettings(env.settingsPath)
		require.NoError(t, err)
		assert.Equal(t, "RGAPI-new", saved.APIKey)
		assert.Equal(t, model.RegionEUW1, saved.Region)
	})

	t.Run("session only", func(t *testing.T) {
		env := newTestEnv(t, model.DefaultSettings(), "")
		rec := env.postForm(t, "/settings", url.Values{"api_key": {"RGAPI-new"}, "region": {"KR"}})
		_, q := redirectQuery(t, rec)
		assert.Equal(t, "settings_session", q.Get("notice"))
		assert.True(t, env.manager.Configured())

		_, err := os.Stat(env.settingsPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("remembered search keeps session key off disk", func(t *testing.T) {
		env := newTestEnv(t, model.DefaultSettings(), "")
		env.riot.AddPlayer("Alpha", "NA1", "puuid-a", "sum-a")
		rec := env.postForm(t, "/settings", url.Values{"api_key": {riottest.APIKey}, "region": {"NA1"}})
		_, q := redirectQuery(t, rec)
		require.Equal(t, "settings_session", q.Get("notice"))

		env.get(t, "/search?name=Alpha&tag=NA1&remember=on", false)

		saved, err := config.LoadSettings(env.settingsPath)
		require.NoError(t, err)
		assert.Empty(t, saved.APIKey)
		assert.Equal(t, "Alpha", saved.Username)
		assert.Equal(t, "NA1", saved.Tagline)
		assert.Equal(t, riottest.APIKey, env.server.currentSettings().APIKey)
	})

	t.Run("remembered search keeps saved key", func(t *testing.T) {
		env := newTestEnv(t, model.DefaultSettings(), "")
		env.riot.AddPlayer("Alpha", "NA1", "puuid-a", "sum-a")
		env.postForm(t, "/settings", url.Values{"api_key": {riottest.APIKey}, "region": {"NA1"}, "remember": {"on"}})

		env.get(t, "/search?name=Alpha&tag=NA1&remember=on", false)

		saved, err := config.LoadSettings(env.settingsPath)
		require.NoError(t, err)
		assert.Equal(t, riottest.APIKey, saved.APIKey)
		assert.Equal(t, "Alpha", saved.Username)
	})

	t.Run("empty key", func(t *testing.T) {
		env := newTestEnv(t, model.DefaultSettings(), "")
		rec := env.postForm(t, "/settings", url.Values{"api_key": {"  "}, "remember": {"on"}})
		_, q := redirectQuery(t, rec)
		assert.Equal(t, "api_key_missing", q.Get("notice"))
		assert.False(t, env.manager.Configured())

		rec = env.get(t, rec.Header().Get("Location"), false)
		assert.Contains(t, rec.Body.String(), "Please enter your Riot API Key")
	})
}

func seedMatch(env *testEnv) {
	env.riot.AddPlayer("Alpha", "NA1", "puuid-a", "sum-a")
	env.riot.SetMatchIDs("puuid-a", riot.QueueAny, "NA1_1")
	env.riot.AddMatch(riot.Match{
		Metadata: riot.MatchMetadata{MatchID: "NA1_1"},
		Info: riot.MatchInfo{
			GameDuration: 1500,
			GameMode:     "CLASSIC",
			QueueID:      420,
			GameStart:    time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC).UnixMilli(),
			Participants: []riot.Participant{
				{PUUID: "puuid-a", SummonerID: "sum-a", RiotIDGameName: "Alpha", RiotIDTagline: "NA1", ChampionName: "Ahri", TeamID: 100},
				{PUUID: "puuid-b", SummonerID: "sum-b", RiotIDGameName: "Bravo", RiotIDTagline: "EUW", ChampionName: "Zed", TeamID: 200},
				{PUUID: "puuid-c", SummonerID: "sum-c", RiotIDGameName: "Charlie", RiotIDTagline: "NA1", ChampionName: "Lux", TeamID: 200},
			},
		},
	})
}

func TestSearch(t *testing.T) {
	t.Run("summoner and matches", func(t *testing.T) {
		env := newTestEnv(t, configured(), "")
		seedMatch(env)

		rec := env.get(t, "/search?name=Alpha&tag=NA1", true)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Alpha#NA1")
		assert.Contains(t, body, "Match NA1_1")
		assert.Contains(t, body, `hx-get="/matches/NA1_1?`)
		assert.NotContains(t, body, "This summoner is in your blacklist")
	})

	t.Run("blacklisted warning", func(t *testing.T) {
		env := newTestEnv(t, configured(), "")
		seedMatch(env)
		_, err := env.manager.Add(model.BlacklistEntry{SummonerID: "sum-a", SummonerName: "Alpha", Reason: "griefing"})
		require.NoError(t, err)

		rec := env.get(t, "/search?name=Alpha%23NA1", false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "This summoner is in your blacklist! Reason: griefing")
		assert.Contains(t, rec.Body.String(), "<html")
	})

	t.Run("remember stores the riot id", func(t *testing.T) {
		env := newTestEnv(t, configured(), "")
		seedMatch(env)
		env.get(t, "/search?name=alpha&tag=na1&remember=on", true)

		saved, err := config.LoadSettings(env.settingsPath)
		require.NoError(t, err)
		assert.Equal(t, "Alpha", saved.Username)
		assert.Equal(t, "NA1", saved.Tagline)
	})

	t.Run("errors become messages", func(t *testing.T) {
		env := newTestEnv(t, configured(), "")
		env.riot.AddPlayer("Quiet", "NA1", "puuid-q", "sum-q")

		tests := []struct {
			target string
			want   string
		}{
			{"/search?name=", "Please enter a summoner name"},
			{"/search?name=Ghost&tag=NA1", "could not find summoner &#39;Ghost#NA1&#39; in region NA1"},
			{"/search?name=Quiet&tag=NA1", "No matches found."},
		}
		for _, tt := range tests {
			rec := env.get(t, tt.target, true)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want, tt.target)
		}
	})

	t.Run("no api key", func(t *testing.T) {
		env := newTestEnv(t, model.DefaultSettings(), "")
		rec := env.get(t, "/search?name=Alpha", true)
		assert.Contains(t, rec.Body.String(), "Please set up your API key in the sidebar first")
	})

	t.Run("expired key", func(t *testing.T) {
		env := newTestEnv(t, model.Settings{APIKey: "RGAPI-expired", Region: model.RegionNA1}, "")
		rec := env.get(t, "/search?name=Alpha", true)
		assert.Contains(t, rec.Body.String(), "invalid or expired")
	})
}

func TestMatchDetails(t *testing.T) {
	env := newTestEnv(t, configured(), "")
	seedMatch(env)
	_, err := env.manager.Add(model.BlacklistEntry{SummonerID: "sum-b", SummonerName: "Bravo", Tagline: "EUW", Reason: "tilted"})
	require.NoError(t, err)

	rec := env.get(t, "/matches/NA1_1?self=sum-a&return_to=%2Fsearch%3Fname%3DAlpha", true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Blue Team")
	assert.Contains(t, body, "Red Team")
	assert.Contains(t, body, "Ranked Solo/Duo")
	assert.Contains(t, body, "25m 00s")
	assert.Contains(t, body, "<strong>Charlie#NA1</strong> - Lux")
	assert.Contains(t, body, "Reason: tilted")
	assert.Contains(t, body, `action="/blacklist/sum-b/remove"`)
	assert.Contains(t, body, `name="summoner_id" value="sum-c"`)
	assert.Contains(t, body, "searched")
	assert.NotContains(t, body, `name="summoner_id" value="sum-a"`)

	rec = env.get(t, "/matches/NA1_404", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error retrieving match details")
}

func TestBlacklistAddRemove(t *testing.T) {
	env := newTestEnv(t, configured(), "")
	form := url.Values{
		"summoner_id":   {"sum-b"},
		"summoner_name": {"Bravo"},
		"tagline":       {"EUW"},
		"reason":        {"flamed"},
		"return_to":     {"/search?name=Alpha"},
	}

	rec := env.postForm(t, "/blacklist", form)
	path, q := redirectQuery(t, rec)
	assert.Equal(t, "/search", path)
	assert.Equal(t, "blacklist_unconfirmed", q.Get("notice"))

	form.Set("confirm", "on")
	rec = env.postForm(t, "/blacklist", form)
	path, q = redirectQuery(t, rec)
	assert.Equal(t, "/search", path)
	assert.Equal(t, "Alpha", q.Get("name"))
	assert.Equal(t, "blacklist_added", q.Get("notice"))
	assert.Equal(t, "Bravo#EUW", q.Get("player"))

	entry, ok, err := env.store.GetEntry("sum-b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "flamed", entry.Reason)
	assert.False(t, entry.DateAdded.IsZero())

	rec = env.postForm(t, "/blacklist", form)
	_, q = redirectQuery(t, rec)
	assert.Equal(t, "blacklist_duplicate", q.Get("notice"))

	rec = env.postForm(t, "/blacklist", url.Values{"summoner_name": {"No id"}, "confirm": {"on"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.postForm(t, "/blacklist/sum-b/remove", url.Values{"return_to": {"https://evil.example/"}})
	path, q = redirectQuery(t, rec)
	assert.Equal(t, "/", path)
	assert.Equal(t, "blacklist", q.Get("tab"))
	assert.Equal(t, "blacklist_removed", q.Get("notice"))
	assert.Equal(t, "Bravo#EUW", q.Get("player"))

	rec = env.postForm(t, "/blacklist/sum-b/remove", nil)
	_, q = redirectQuery(t, rec)
	assert.Equal(t, "blacklist_missing", q.Get("notice"))
}

func TestBlacklistTable(t *testing.T) {
	env := newTestEnv(t, configured(), "")
	for _, e := range []model.BlacklistEntry{
		{SummonerID: "sum-a", SummonerName: "Alpha", Tagline: "NA1", Reason: "afk"},
		{SummonerID: "sum-b", SummonerName: "Bravo", Tagline: "EUW", Reason: "troll"},
	} {
		_, err := env.manager.Add(e)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/blacklist?q=bra", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "blacklist-table")
	rec := env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Bravo#EUW")
	assert.NotContains(t, body, "Alpha#NA1")
	assert.NotContains(t, body, "Import Blacklist")

	rec = env.get(t, "/blacklist", true)
	assert.Contains(t, rec.Body.String(), "Import Blacklist")
	assert.Contains(t, rec.Body.String(), "Alpha#NA1")

	rec = env.get(t, "/?tab=blacklist&q=zzz", false)
	assert.Contains(t, rec.Body.String(), "No blacklisted players match")

	req = httptest.NewRequest(http.MethodPost, "/blacklist/sum-a/remove", strings.NewReader("q=&page=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "blacklist-table")
	rec = env.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Alpha#NA1")
	assert.Contains(t, rec.Body.String(), "Bravo#EUW")
}

func TestBlacklistExportImport(t *testing.T) {
	env := newTestEnv(t, configured(), "")
	_, err := env.manager.Add(model.BlacklistEntry{SummonerID: "sum-a", SummonerName: "Alpha", Reason: "afk"})
	require.NoError(t, err)

	rec := env.get(t, "/blacklist/export", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="lol_blacklist.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "summoner_id,summoner_name,reason,date_added,tagline\nsum-a,Alpha,afk,"))

	upload := func(content string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "lol_blacklist.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/blacklist/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return env.do(t, req)
	}

	rec = upload("summoner_id,summoner_name,reason\nsum-a,Alpha,dup\nsum-b,Bravo,troll\nsum-c,Charlie,\n")
	_, q := redirectQuery(t, rec)
	assert.Equal(t, "imported", q.Get("notice"))
	assert.Equal(t, "2", q.Get("added"))
	assert.Equal(t, "1", q.Get("skipped"))

	rec = env.get(t, rec.Header().Get("Location"), false)
	assert.Contains(t, rec.Body.String(), "Imported 2, skipped 1")

	rec = upload("name,id\nx,y\n")
	_, q = redirectQuery(t, rec)
	assert.Equal(t, "import_invalid", q.Get("notice"))
}

func TestLiveCheck(t *testing.T) {
	t.Run("not in game with auto refresh", func(t *testing.T) {
		env := newTestEnv(t, configured(), "")
		env.riot.AddPlayer("Alpha", "NA1", "puuid-a", "sum-a")

		rec := env.get(t, "/live/check?name=Alpha&tag=NA1&auto=1", true)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Alpha#NA1 is not currently in a game")
		assert.Contains(t, body, `hx-trigger="every 30s"`)
		assert.Contains(t, body, `hx-get="/live/check?auto=1&amp;name=Alpha&amp;tag=NA1"`)
	})

	t.Run("flags blacklisted players", func(t *testing.T) {
		env := newTestEnv(t, configured(), "")
		env.riot.AddPlayer("Alpha", "NA1", "puuid-a", "sum-a")
		env.riot.SetActiveGame("puuid-a", riot.ActiveGame{
			GameID:            7,
			GameQueueConfigID: 440,
			Participants: []riot.ActiveGameParticipant{
				{PUUID: "puuid-a", SummonerID: "sum-a", RiotID: "Alpha#NA1", ChampionID: 103, TeamID: 100},
				{PUUID: "puuid-b", SummonerID: "sum-b", RiotID: "Bravo#EUW", ChampionID: 238, TeamID: 200},
			},
		})
		_, err := env.manager.Add(model.BlacklistEntry{SummonerID: "sum-b", SummonerName: "Bravo", Tagline: "EUW", Reason: "inted"})
		require.NoError(t, err)

		rec := env.get(t, "/live/check?name=Alpha&tag=NA1", true)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Found active game! Queue type: Ranked Flex")
		assert.Contains(t, body, "Blacklisted Players Summary")
		assert.Contains(t, body, "Reason: inted")
		assert.NotContains(t, body, "hx-trigger")
	})

	t.Run("live tab uses remembered riot id", func(t *testing.T) {
		settings := configured()
		settings.Username, settings.Tagline = "Alpha", "NA1"
		env := newTestEnv(t, settings, "")

		rec := env.get(t, "/live", true)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `value="Alpha"`)
		assert.NotContains(t, rec.Body.String(), "live-result")
	})
}

func TestAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	env := newTestEnv(t, configured(), string(hash))

	rec := env.get(t, "/", false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = env.get(t, "/blacklist", true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("HX-Redirect"))

	rec = env.get(t, "/healthz", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.get(t, "/login", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.postForm(t, "/login", url.Values{"password": {"wrong"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid password")

	rec = env.postForm(t, "/login", url.Values{"password": {"hunter2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	session := cookies[0]
	assert.Equal(t, sessionCookieName, session.Name)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(session)
	rec = env.do(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Log out")

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(session)
	rec = env.do(t, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(session)
	rec = env.do(t, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestLoginWithoutPasswordRedirectsHome(t *testing.T) {
	env := newTestEnv(t, configured(), "")
	rec := env.get(t, "/login", false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestSafeReturnTo(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/search?name=Alpha", "/search?name=Alpha"},
		{"/?tab=blacklist", "/?tab=blacklist"},
		{"", "/fallback"},
		{"https://evil.example/", "/fallback"},
		{"//evil.example/", "/fallback"},
		{"/\\evil.example", "/fallback"},
		{"search", "/fallback"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeReturnTo(tt.in, "/fallback"), tt.in)
	}
}

func TestUserMessage(t *testing.T) {
	msg, kind := userMessage(blacklist.ErrNoMatches)
	assert.Equal(t, "warning", kind)
	assert.Contains(t, msg, "No matches found")

	msg, kind = userMessage(&blacklist.SummonerNotFoundError{RiotID: model.RiotID{GameName: "A", Tagline: "B"}, Region: model.RegionKR})
	assert.Equal(t, "error", kind)
	assert.Equal(t, "could not find summoner 'A#B' in region KR", msg)

	msg, _ = userMessage(&url.Error{Op: "Get", URL: "https://na1.api.riotgames.com", Err: &timeoutError{}})
	assert.Contains(t, msg, "Could not reach the Riot API")
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }
