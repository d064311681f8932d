package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"lol-blacklist/internal/blacklist"
	"lol-blacklist/internal/model"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := SearchFormView{
		Name:     strings.TrimSpace(r.URL.Query().Get("name")),
		Tag:      strings.TrimPrefix(strings.TrimSpace(r.URL.Query().Get("tag")), "#"),
		Remember: r.URL.Query().Get("remember") == "on",
	}
	view := s.searchView(r, query)

	if isHTMX(r) {
		if err := s.templates.RenderPartial(w, "search_results.html", view); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	dashboard := s.dashboardView(r, tabMatches)
	dashboard.SearchForm = query
	dashboard.Search = view
	s.renderDashboard(w, dashboard)
}

func (s *Server) searchView(r *http.Request, query SearchFormView) SearchView {
	view := SearchView{
		Query:    query,
		Searched: true,
		ReturnTo: searchReturnTo(query),
	}
	if query.Name == "" {
		view.Error, view.ErrorKind = "Please enter a summoner name", "error"
		return view
	}
	if !s.manager.Configured() {
		view.Error, view.ErrorKind = userMessage(blacklist.ErrNoAPIKey)
		return view
	}

	ctx := r.Context()
	summoner, err := s.manager.ResolveSummoner(ctx, query.Name, query.Tag)
	if err != nil {
		s.logger.Info("summoner search failed", "name", query.Name, "tag", query.Tag, "error", err)
		view.Error, view.ErrorKind = userMessage(err)
		return view
	}
	view.Summoner = &summoner
	if query.Remember {
		s.rememberSummoner(summoner.GameName, summoner.Tagline)
	}

	if entry, ok, err := s.manager.Entry(summoner.BlacklistID()); err != nil {
		s.logger.Error("blacklist lookup failed", "summoner_id", summoner.BlacklistID(), "error", err)
	} else if ok {
		view.Entry = &entry
	}

	ids, err := s.manager.MatchHistory(ctx, summoner)
	if err != nil {
		if !errors.Is(err, blacklist.ErrNoMatches) {
			s.logger.Warn("match history failed", "riot_id", summoner.DisplayName(), "error", err)
		}
		view.Error, view.ErrorKind = userMessage(err)
		return view
	}
	for _, id := range ids {
		view.Matches = append(view.Matches, MatchLink{ID: id, DetailURL: matchDetailURL(id, summoner.BlacklistID(), view.ReturnTo)})
	}
	return view
}

func matchDetailURL(matchID, selfID, returnTo string) string {
	values := url.Values{"return_to": {returnTo}}
	if selfID != "" {
		values.Set("self", selfID)
	}
	return "/matches/" + url.PathEscape(matchID) + "?" + values.Encode()
}

func searchReturnTo(query SearchFormView) string {
	values := url.Values{"name": {query.Name}}
	if query.Tag != "" {
		values.Set("tag", query.Tag)
	}
	return "/search?" + values.Encode()
}

func (s *Server) handleMatchDetails(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	view := MatchDetailView{
		SelfID:   strings.TrimSpace(r.URL.Query().Get("self")),
		ReturnTo: safeReturnTo(r.URL.Query().Get("return_to"), "/"),
	}

	match, err := s.manager.MatchDetails(r.Context(), matchID)
	if err != nil {
		s.logger.Warn("match details failed", "match_id", matchID, "error", err)
		view.Error, _ = userMessage(err)
		view.Error = "Error retrieving match details: " + view.Error
	} else {
		view.Match = match
		view.Blue = s.playerRows(match.TeamPlayers(model.TeamBlue), view.SelfID, view.ReturnTo)
		view.Red = s.playerRows(match.TeamPlayers(model.TeamRed), view.SelfID, view.ReturnTo)
	}

	if err := s.templates.RenderPartial(w, "match_detail.html", view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) playerRows(players []model.MatchParticipant, selfID, returnTo string) []PlayerRowView {
	rows := make([]PlayerRowView, 0, len(players))
	for _, p := range players {
		row := PlayerRowView{
			Player:   p,
			IsSelf:   selfID != "" && (p.SummonerID == selfID || p.PUUID == selfID),
			ReturnTo: returnTo,
		}
		if entry, ok, err := s.manager.Entry(p.SummonerID); err == nil && ok {
			row.Entry = &entry
		}
		rows = append(rows, row)
	}
	return rows
}
