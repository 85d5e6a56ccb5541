package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/classbooker/internal/domain/booking"
	"github.com/example/classbooker/internal/domain/user"
	"github.com/example/classbooker/internal/internaltypes"
)

type Authenticator interface {
	VerifyPassword(ctx context.Context, username, password string) (user.User, error)
}

type RunLister interface {
	Recent(ctx context.Context, limit int) ([]booking.Run, error)
	Get(ctx context.Context, id string) (booking.Run, error)
}

// Server is the read-only run history dashboard.
type Server struct {
	addr     string
	sessions *SessionManager
	auth     Authenticator
	runs     RunLister
	tmpl     *template.Template
	log      zerolog.Logger
}

func New(addr string, sessions *SessionManager, auth Authenticator, runs RunLister, tmpl *template.Template, log zerolog.Logger) *Server {
	return &Server{addr: addr, sessions: sessions, auth: auth, runs: runs, tmpl: tmpl, log: log}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("GET /runs/{id}/artifact", s.requireAuth(s.handleArtifact))
	mux.HandleFunc("/", s.requireAuth(s.handleRuns))
	return s.logging(mux)
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info().Str("addr", s.addr).Msg("dashboard listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("took", time.Since(start)).Msg("http")
	})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.sessions.GetUserID(r); !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r)
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	s.renderStatus(w, http.StatusOK, name, data)
}

func (s *Server) renderStatus(w http.ResponseWriter, code int, name string, data any) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

type loginData struct {
	Error    string
	Username string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "login.html", loginData{})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		u, err := s.auth.VerifyPassword(ctx, username, r.FormValue("password"))
		if err != nil {
			s.log.Warn().Str("username", username).Err(err).Msg("login rejected")
			s.renderStatus(w, http.StatusUnauthorized, "login.html", loginData{Error: "Invalid username or password", Username: username})
			return
		}
		if err := s.sessions.SetUserID(w, u.ID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

type runsData struct {
	Runs  []booking.Run
	Limit int
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	runs, err := s.runs.Recent(ctx, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.render(w, "runs.html", runsData{Runs: runs, Limit: limit})
}

// handleArtifact serves the screenshot of an aborted run. Every abort writes
// the same path, so the file belongs to a run only while its mtime falls
// inside that run's window; older runs get 404 once a newer abort overwrote it.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	run, err := s.runs.Get(ctx, r.PathValue("id"))
	if errors.Is(err, internaltypes.ErrNotFound) || (err == nil && run.Artifact == "") {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	info, err := os.Stat(run.Artifact)
	if err != nil || !writtenDuring(run, info.ModTime()) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("content-type", "image/png")
	http.ServeFile(w, r, run.Artifact)
}

// artifactSlack absorbs filesystem timestamp granularity.
const artifactSlack = time.Second

func writtenDuring(run booking.Run, mtime time.Time) bool {
	if run.StartedAt.IsZero() || run.FinishedAt.IsZero() {
		return false
	}
	return !mtime.Before(run.StartedAt.Add(-artifactSlack)) && !mtime.After(run.FinishedAt.Add(artifactSlack))
}
