// Package riottest provides an in-process fake of the Riot endpoints the
// dashboard uses.
package riottest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"lol-blacklist/internal/riot"

	"github.com/go-chi/chi/v5"
)

const APIKey = "RGAPI-test"

type Server struct {
	URL string

	mu        sync.Mutex
	accounts  map[string]riot.Account
	summoners map[string]riot.Summoner
	matchIDs  map[string]map[int][]string
	matches   map[string]riot.Match
	games     map[string]riot.ActiveGame
	calls     map[string]int
	queues    []int
	status    int
}

// NewServer starts a fake Riot API that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts:  map[string]riot.Account{},
		summoners: map[string]riot.Summoner{},
		matchIDs:  map[string]map[int][]string{},
		matches:   map[string]riot.Match{},
		games:     map[string]riot.ActiveGame{},
		calls:     map[string]int{},
	}

	r := chi.NewRouter()
	r.Use(s.authorize)
	r.Get("/riot/account/v1/accounts/by-riot-id/{name}/{tag}", s.handleAccount)
	r.Get("/lol/summoner/v4/summoners/by-puuid/{puuid}", s.handleSummoner)
	r.Get("/lol/match/v5/matches/by-puuid/{puuid}/ids", s.handleMatchIDs)
	r.Get("/lol/match/v5/matches/{matchID}", s.handleMatch)
	r.Get("/lol/spectator/v5/active-games/by-summoner/{puuid}", s.handleActiveGame)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	s.URL = srv.URL
	return s
}

// Client returns a client pointed at the fake with rate limiting off.
func (s *Server) Client(apiKey string) *riot.Client {
	return riot.NewClient(apiKey, riot.WithBaseURL(s.URL), riot.WithRateLimit(0, 0))
}

// AddPlayer registers an account and its summoner.
func (s *Server) AddPlayer(gameName, tagLine, puuid, summonerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[accountKey(gameName, tagLine)] = riot.Account{PUUID: puuid, GameName: gameName, TagLine: tagLine}
	s.summoners[puuid] = riot.Summoner{ID: summonerID, PUUID: puuid, SummonerLevel: 100, ProfileIconID: 1}
}

// RemoveSummoner drops the summoner record for puuid while keeping its account.
func (s *Server) RemoveSummoner(puuid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.summoners, puuid)
}

// SetMatchIDs sets the ids returned for a queue; riot.QueueAny covers requests without one.
func (s *Server) SetMatchIDs(puuid string, queue int, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.matchIDs[puuid] == nil {
		s.matchIDs[puuid] = map[int][]string{}
	}
	s.matchIDs[puuid][queue] = ids
}

func (s *Server) AddMatch(match riot.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[match.Metadata.MatchID] = match
}

func (s *Server) SetActiveGame(puuid string, game riot.ActiveGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[puuid] = game
}

// EndActiveGame makes the spectator endpoint answer 404 for puuid again.
func (s *Server) EndActiveGame(puuid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, puuid)
}

// FailWith makes every request answer with status. Zero restores normal behavior.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Calls reports how many requests hit an endpoint group: account, summoner,
// match-ids, match or spectator.
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// QueuesRequested returns the queue parameter of each match id request, with 0 for none.
func (s *Server) QueuesRequested() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.queues...)
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := s.status
		s.mu.Unlock()
		if status != 0 {
			http.Error(w, `{"status":{"status_code":`+strconv.Itoa(status)+`}}`, status)
			return
		}
		if r.Header.Get("X-Riot-Token") != APIKey {
			http.Error(w, `{"status":{"message":"Forbidden","status_code":403}}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls["account"]++
	account, ok := s.accounts[accountKey(chi.URLParam(r, "name"), chi.URLParam(r, "tag"))]
	s.mu.Unlock()
	respond(w, account, ok)
}

func (s *Server) handleSummoner(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls["summoner"]++
	summoner, ok := s.summoners[chi.URLParam(r, "puuid")]
	s.mu.Unlock()
	respond(w, summoner, ok)
}

func (s *Server) handleMatchIDs(w http.ResponseWriter, r *http.Request) {
	queue, _ := strconv.Atoi(r.URL.Query().Get("queue"))
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))

	s.mu.Lock()
	s.calls["match-ids"]++
	s.queues = append(s.queues, queue)
	ids := append([]string{}, s.matchIDs[chi.URLParam(r, "puuid")][queue]...)
	s.mu.Unlock()

	if count > 0 && len(ids) > count {
		ids = ids[:count]
	}
	respond(w, ids, true)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls["match"]++
	match, ok := s.matches[chi.URLParam(r, "matchID")]
	s.mu.Unlock()
	respond(w, match, ok)
}

func (s *Server) handleActiveGame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls["spectator"]++
	game, ok := s.games[chi.URLParam(r, "puuid")]
	s.mu.Unlock()
	respond(w, game, ok)
}

func respond(w http.ResponseWriter, body any, ok bool) {
	if !ok {
		http.Error(w, `{"status":{"message":"Data not found","status_code":404}}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func accountKey(gameName, tagLine string) string {
	return strings.ToLower(gameName) + "#" + strings.ToLower(tagLine)
}
