package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"lol-blacklist/internal/blacklist"
	"lol-blacklist/internal/model"
	"lol-blacklist/internal/store"

	"github.com/go-chi/chi/v5"
)

const maxImportSize = 5 << 20

func (s *Server) blacklistView(r *http.Request) BlacklistView {
	query := strings.TrimSpace(r.FormValue("q"))
	page, _ := strconv.Atoi(r.FormValue("page"))
	entries, err := s.manager.List(query)
	if err != nil {
		s.logger.Error("list blacklist failed", "error", err)
		return BlacklistView{Query: query, Error: "Could not read the blacklist"}
	}
	return buildBlacklistView(entries, page, blacklistPageSize, query)
}

func (s *Server) handleBlacklist(w http.ResponseWriter, r *http.Request) {
	view := s.blacklistView(r)
	if isHTMX(r) {
		name := "blacklist_tab.html"
		if htmxTarget(r) == "blacklist-table" {
			name = "blacklist_table.html"
		}
		if err := s.templates.RenderPartial(w, name, view); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	dashboard := s.dashboardView(r, tabBlacklist)
	dashboard.Blacklist = view
	s.renderDashboard(w, dashboard)
}

func (s *Server) handleBlacklistAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	returnTo := safeReturnTo(r.FormValue("return_to"), "/?tab="+tabBlacklist)
	entry := model.BlacklistEntry{
		SummonerID:   strings.TrimSpace(r.FormValue("summoner_id")),
		SummonerName: strings.TrimSpace(r.FormValue("summoner_name")),
		Tagline:      strings.TrimSpace(r.FormValue("tagline")),
		Reason:       strings.TrimSpace(r.FormValue("reason")),
	}
	if entry.SummonerID == "" || entry.SummonerName == "" {
		http.Error(w, "summoner_id and summoner_name are required", http.StatusBadRequest)
		return
	}
	if r.FormValue("confirm") != "on" {
		redirectWithNotice(w, r, returnTo, "blacklist_unconfirmed", nil)
		return
	}

	added, err := s.manager.Add(entry)
	if err != nil {
		if errors.Is(err, blacklist.ErrAlreadyBlacklisted) {
			redirectWithNotice(w, r, returnTo, "blacklist_duplicate", nil)
			return
		}
		s.logger.Error("add to blacklist failed", "summoner_id", entry.SummonerID, "error", err)
		http.Error(w, "could not update blacklist", http.StatusInternalServerError)
		return
	}
	redirectWithNotice(w, r, returnTo, "blacklist_added", url.Values{"player": {added.DisplayName()}})
}

func (s *Server) handleBlacklistRemove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	summonerID := chi.URLParam(r, "summonerID")
	returnTo := safeReturnTo(r.FormValue("return_to"), "/?tab="+tabBlacklist)

	name := summonerID
	if entry, ok, err := s.manager.Entry(summonerID); err == nil && ok {
		name = entry.DisplayName()
	}
	err := s.manager.Remove(summonerID)
	if err != nil && !errors.Is(err, blacklist.ErrNotBlacklisted) {
		s.logger.Error("remove from blacklist failed", "summoner_id", summonerID, "error", err)
		http.Error(w, "could not update blacklist", http.StatusInternalServerError)
		return
	}

	if isHTMX(r) && htmxTarget(r) == "blacklist-table" {
		view := s.blacklistView(r)
		if err != nil {
			view.Error = "Failed to remove from blacklist"
		}
		if err := s.templates.RenderPartial(w, "blacklist_table.html", view); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	if err != nil {
		redirectWithNotice(w, r, returnTo, "blacklist_missing", nil)
		return
	}
	redirectWithNotice(w, r, returnTo, "blacklist_removed", url.Values{"player": {name}})
}

func (s *Server) handleBlacklistExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="lol_blacklist.csv"`)
	if err := s.manager.Export(w); err != nil {
		s.logger.Error("export blacklist failed", "error", err)
		http.Error(w, "could not export blacklist", http.StatusInternalServerError)
	}
}

func (s *Server) handleBlacklistImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	target := "/?tab=" + tabBlacklist
	result, err := s.manager.Import(file)
	if err != nil {
		var missing *store.MissingColumnsError
		if errors.As(err, &missing) {
			redirectWithNotice(w, r, target, "import_invalid", nil)
			return
		}
		s.logger.Error("import blacklist failed", "error", err)
		redirectWithNotice(w, r, target, "import_failed", nil)
		return
	}
	redirectWithNotice(w, r, target, "imported", url.Values{
		"added":   {strconv.Itoa(result.Added)},
		"skipped": {strconv.Itoa(result.Skipped)},
	})
}
