package web

import (
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"lol-blacklist/internal/blacklist"
	"lol-blacklist/internal/config"
	"lol-blacklist/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	SettingsPath string
	PasswordHash string
	LiveRefresh  time.Duration
	Logger       *slog.Logger
}

type Server struct {
	manager   *blacklist.Manager
	templates *Templates
	sessions  *Sessions
	logger    *slog.Logger

	settingsPath string
	liveRefresh  time.Duration
	now          func() time.Time

	mu       sync.RWMutex
	settings model.Settings
}

func NewServer(manager *blacklist.Manager, templates *Templates, settings model.Settings, opts Options) *Server {
	if opts.LiveRefresh <= 0 {
		opts.LiveRefresh = config.DefaultLiveRefreshSeconds * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		manager:      manager,
		templates:    templates,
		sessions:     NewSessions(opts.PasswordHash),
		logger:       opts.Logger,
		settingsPath: opts.SettingsPath,
		liveRefresh:  opts.LiveRefresh,
		now:          time.Now,
	}
	s.applySettings(settings)
	return s
}

// Handler wraps Routes with logging, recovery, the optional login gate and static files.
func (s *Server) Handler(static fs.FS) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return WithSession(s.sessions, next)
	})
	if static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}
	r.Mount("/", s.Routes())
	return r
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", s.handleDashboard)
	r.Get("/help", s.handleHelp)
	r.Post("/settings", s.handleSettingsPost)
	r.Get("/search", s.handleSearch)
	r.Get("/matches/{matchID}", s.handleMatchDetails)
	r.Get("/blacklist", s.handleBlacklist)
	r.Post("/blacklist", s.handleBlacklistAdd)
	r.Get("/blacklist/export", s.handleBlacklistExport)
	r.Post("/blacklist/import", s.handleBlacklistImport)
	r.Post("/blacklist/{summonerID}/remove", s.handleBlacklistRemove)
	r.Get("/live", s.handleLive)
	r.Get("/live/check", s.handleLiveCheck)
	r.Get("/login", s.handleLogin)
	r.Post("/login", s.handleLoginPost)
	r.Post("/logout", s.handleLogout)

	return r
}

func (s *Server) currentSettings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Server) applySettings(settings model.Settings) {
	settings.Region = model.ParseRegion(string(settings.Region))
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	s.manager.Configure(settings.APIKey, settings.Region)
}
