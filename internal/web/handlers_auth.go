package web

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 30 * 24 * time.Hour

// Sessions keeps logged-in session ids in memory. With no password hash the
// dashboard is open and every check passes.
type Sessions struct {
	passwordHash string
	now          func() time.Time

	mu  sync.Mutex
	ids map[string]time.Time
}

func NewSessions(passwordHash string) *Sessions {
	return &Sessions{
		passwordHash: strings.TrimSpace(passwordHash),
		now:          time.Now,
		ids:          map[string]time.Time{},
	}
}

func (s *Sessions) Enabled() bool {
	return s.passwordHash != ""
}

// Login checks the password and returns a new session id.
func (s *Sessions) Login(password string) (string, bool) {
	if !checkPassword(s.passwordHash, password) {
		return "", false
	}
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = s.now().Add(sessionTTL)
	return id, true
}

func (s *Sessions) Valid(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	expires, ok := s.ids[id]
	if !ok {
		return false
	}
	if !s.now().Before(expires) {
		delete(s.ids, id)
		return false
	}
	return true
}

func (s *Sessions) Logout(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Enabled() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	view := LoginView{BaseView: BaseView{Title: "Log in", AuthEnabled: true}}
	if err := s.templates.Render(w, "login.html", view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id, ok := s.sessions.Login(r.FormValue("password"))
	if !ok {
		s.logger.Warn("dashboard login failed", "remote_addr", r.RemoteAddr)
		view := LoginView{
			BaseView: BaseView{Title: "Log in", AuthEnabled: true},
			Error:    "Invalid password",
		}
		if err := s.templates.Render(w, "login.html", view); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	setSessionCookie(w, id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.Logout(cookie.Value)
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionTTL),
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// HashPassword returns a bcrypt hash suitable for DASHBOARD_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash string, password string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
