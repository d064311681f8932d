package web

import (
	"net/http"
	"strings"

	"lol-blacklist/internal/config"
	"lol-blacklist/internal/model"
)

func (s *Server) baseView(r *http.Request, tab string) BaseView {
	settings := s.currentSettings()
	regions := make([]RegionOption, 0, len(model.Regions()))
	for _, region := range model.Regions() {
		regions = append(regions, RegionOption{
			Value:    region,
			Label:    region.Label(),
			Selected: region == settings.Region,
		})
	}
	notice := flashMessage(r.URL.Query())
	return BaseView{
		Title:       "LoL Blacklist",
		Flash:       notice.Message,
		FlashKind:   notice.Kind,
		ActiveTab:   normalizeTab(tab),
		AuthEnabled: s.sessions.Enabled(),
		Settings: SettingsFormView{
			APIKey:     settings.APIKey,
			Region:     settings.Region,
			Regions:    regions,
			Configured: s.manager.Configured(),
		},
		SearchForm: SearchFormView{
			Name:     settings.Username,
			Tag:      settings.Tagline,
			Remember: settings.Username != "",
		},
	}
}

func normalizeTab(tab string) string {
	switch strings.TrimSpace(tab) {
	case tabBlacklist, tabLive, tabHelp:
		return tab
	}
	return tabMatches
}

func (s *Server) dashboardView(r *http.Request, tab string) DashboardView {
	view := DashboardView{
		BaseView: s.baseView(r, tab),
		Help:     HelpView{RefreshSeconds: s.refreshSeconds()},
	}
	settings := s.currentSettings()
	view.Live = LiveView{
		Name:           settings.Username,
		Tag:            settings.Tagline,
		RefreshSeconds: s.refreshSeconds(),
		Configured:     s.manager.Configured(),
	}
	switch view.ActiveTab {
	case tabBlacklist:
		view.Blacklist = s.blacklistView(r)
	case tabMatches:
		view.Search = SearchView{Query: view.SearchForm}
	}
	return view
}

func (s *Server) renderDashboard(w http.ResponseWriter, view DashboardView) {
	if err := s.templates.Render(w, "home.html", view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, s.dashboardView(r, r.URL.Query().Get("tab")))
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		if err := s.templates.RenderPartial(w, "help.html", HelpView{RefreshSeconds: s.refreshSeconds()}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	s.renderDashboard(w, s.dashboardView(r, tabHelp))
}

func (s *Server) handleSettingsPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	apiKey := strings.TrimSpace(r.FormValue("api_key"))
	if apiKey == "" {
		redirectWithNotice(w, r, "/", "api_key_missing", nil)
		return
	}
	settings := s.currentSettings()
	settings.APIKey = apiKey
	settings.Region = model.ParseRegion(r.FormValue("region"))
	s.applySettings(settings)

	if r.FormValue("remember") != "on" {
		s.logger.Info("settings applied for this session", "region", settings.Region)
		redirectWithNotice(w, r, "/", "settings_session", nil)
		return
	}
	if err := config.SaveSettings(s.settingsPath, settings); err != nil {
		s.logger.Error("save settings failed", "path", s.settingsPath, "error", err)
		redirectWithNotice(w, r, "/", "settings_failed", nil)
		return
	}
	s.logger.Info("settings saved", "path", s.settingsPath, "region", settings.Region)
	redirectWithNotice(w, r, "/", "settings_saved", nil)
}

// rememberSummoner stores the searched Riot ID as the sidebar default. Only
// the name fields are written to the settings file; a key applied for this
// session alone stays in memory.
func (s *Server) rememberSummoner(name, tag string) {
	s.mu.Lock()
	if s.settings.Username == name && s.settings.Tagline == tag {
		s.mu.Unlock()
		return
	}
	s.settings.Username = name
	s.settings.Tagline = tag
	s.mu.Unlock()

	saved, err := config.LoadSettings(s.settingsPath)
	if err != nil {
		s.logger.Error("settings file unreadable, not remembering summoner", "path", s.settingsPath, "error", err)
		return
	}
	saved.Username = name
	saved.Tagline = tag
	if err := config.SaveSettings(s.settingsPath, saved); err != nil {
		s.logger.Error("save settings failed", "path", s.settingsPath, "error", err)
	}
}

func (s *Server) refreshSeconds() int {
	return int(s.liveRefresh.Seconds())
}
