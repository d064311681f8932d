package web

import (
	"net/http"
	"net/url"
	"strings"

	"lol-blacklist/internal/model"
)

func (s *Server) liveView(r *http.Request, check bool) LiveView {
	settings := s.currentSettings()
	q := r.URL.Query()
	view := LiveView{
		Name:           strings.TrimSpace(q.Get("name")),
		Tag:            strings.TrimPrefix(strings.TrimSpace(q.Get("tag")), "#"),
		Auto:           q.Get("auto") == "1" || q.Get("auto") == "on",
		RefreshSeconds: s.refreshSeconds(),
		Configured:     s.manager.Configured(),
	}
	if view.Name == "" && view.Tag == "" {
		view.Name, view.Tag = settings.Username, settings.Tagline
	}
	view.CheckURL = liveCheckURL(view)
	if !check {
		return view
	}

	view.Checked = true
	view.CheckedAt = s.now()
	if view.Name == "" {
		view.Error, view.ErrorKind = "Please enter a summoner name", "error"
		return view
	}
	report, err := s.manager.CheckLiveGame(r.Context(), view.Name, view.Tag)
	if err != nil {
		s.logger.Info("live check failed", "name", view.Name, "tag", view.Tag, "error", err)
		view.Error, view.ErrorKind = userMessage(err)
		return view
	}
	view.Report = report
	if report.Game != nil {
		view.Blue = report.Game.TeamPlayers(model.TeamBlue)
		view.Red = report.Game.TeamPlayers(model.TeamRed)
	}
	return view
}

func liveCheckURL(view LiveView) string {
	values := url.Values{"name": {view.Name}}
	if view.Tag != "" {
		values.Set("tag", view.Tag)
	}
	if view.Auto {
		values.Set("auto", "1")
	}
	return "/live/check?" + values.Encode()
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	view := s.liveView(r, strings.TrimSpace(r.URL.Query().Get("name")) != "")
	if isHTMX(r) {
		if err := s.templates.RenderPartial(w, "live_tab.html", view); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	dashboard := s.dashboardView(r, tabLive)
	dashboard.Live = view
	s.renderDashboard(w, dashboard)
}

func (s *Server) handleLiveCheck(w http.ResponseWriter, r *http.Request) {
	view := s.liveView(r, true)
	if isHTMX(r) {
		if err := s.templates.RenderPartial(w, "live_result.html", view); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	dashboard := s.dashboardView(r, tabLive)
	dashboard.Live = view
	s.renderDashboard(w, dashboard)
}
