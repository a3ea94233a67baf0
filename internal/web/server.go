package web

import (
	"crypto/rand"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gymflex/gymflex-cli/internal/config"
	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
	"github.com/gymflex/gymflex-cli/pkg/core/services"
)

//go:embed templates/*.html
var templateFS embed.FS

// Cell size of the month grid in pixels
const (
	cellWidth  = 128
	cellHeight = 96
)

// API is the backend surface the web view drives
type API interface {
	services.BookingClient
	services.AttendeeClient
	services.AuthClient
}

// SessionStore is the session store as seen by the web view
type SessionStore interface {
	services.SessionCache
	SetActivityFilter(activity model.ActivityType)
	Unauthorized() bool
}

// State persists the current user and the per-role selected dates
type State interface {
	services.UserCache
	LoadSelection() (calendar.Selection, error)
	SaveSelection(sel calendar.Selection) error
}

// Server serves the calendar, day view and admin panel over HTTP
type Server struct {
	cfg      *config.Config
	api      API
	sessions SessionStore
	state    State
	closures calendar.Closures
	logger   *zap.Logger
	now      func() time.Time
	pages    map[string]*template.Template
}

// NewServer parses the page templates and wires the dependencies
func NewServer(cfg *config.Config, api API, sessions SessionStore, state State, logger *zap.Logger) (*Server, error) {
	closures, err := cfg.ClosureRules()
	if err != nil {
		return nil, err
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:      cfg,
		api:      api,
		sessions: sessions,
		state:    state,
		closures: closures,
		logger:   logger,
		now:      time.Now,
		pages:    pages,
	}, nil
}

// Handler returns the full handler chain: routes, CSRF protection, security headers
func (s *Server) Handler() (http.Handler, error) {
	key := []byte(s.cfg.CSRFKey)
	if len(key) == 0 {
		// No configured key: tokens are only valid for this process
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate csrf key: %w", err)
		}
		s.logger.Debug("Generated ephemeral CSRF key")
	}

	return chain(s.routes(),
		csrfProtect(key, s.cfg.ListenAddr()),
		securityHeaders,
		requestLogger(s.logger),
	), nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("GET /{$}", s.requireUser(s.handleCalendar))
	mux.HandleFunc("GET /day/{date}", s.requireUser(s.handleDay))
	mux.HandleFunc("POST /select", s.requireUser(s.handleSelect))
	mux.HandleFunc("POST /filter", s.requireUser(s.handleFilter))
	mux.HandleFunc("POST /sessions/{id}/toggle", s.requireUser(s.handleToggle))

	mux.HandleFunc("GET /admin", s.requireUser(s.handleAdmin))
	mux.HandleFunc("POST /admin/navigate", s.requireUser(s.handleNavigate))
	mux.HandleFunc("POST /sessions/{id}/attendees/{userID}/remove", s.requireUser(s.handleRemoveAttendee))
	mux.HandleFunc("POST /sessions/{id}/attendance/{attendanceID}", s.requireUser(s.handleMarkAttendance))

	return mux
}

// localNow is the current time in the configured timezone
func (s *Server) localNow() time.Time {
	return s.now().In(s.cfg.Location())
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"px": func(n int) string { return fmt.Sprintf("%dpx", n) },
	}

	pages := map[string]*template.Template{}
	for _, name := range []string{"login", "calendar", "day", "admin"} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}
