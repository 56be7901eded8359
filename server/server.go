package server

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"any-democrat/services"
	"any-democrat/utils"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Server exposes the page and its feeds over HTTP.
type Server struct {
	pages  *services.PageBuilder
	feeds  *services.FeedService
	tmpl   *template.Template
	logger *utils.Logger
	now    func() time.Time
}

// New parses the embedded templates and returns a Server.
func New(pages *services.PageBuilder, feeds *services.FeedService, logger *utils.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Server{
		pages:  pages,
		feeds:  feeds,
		tmpl:   tmpl,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/candidates", s.handleCandidates)
		r.Get("/states", s.handleStates)
		r.Get("/pick", s.handlePick)
	})
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := s.pages.Build(r.Context(), s.now())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.tmpl.ExecuteTemplate(w, "page", page); err != nil {
		s.logger.Error("[server] Render page: %v", err)
	}
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.feeds.Feeds(r.Context())
	if err != nil {
		s.logger.Warn("[server] Candidates feed: %v", err)
		writeError(w, http.StatusBadGateway, "feed unavailable")
		return
	}
	writeJSON(w, http.StatusOK, feeds.Candidates)
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.feeds.Feeds(r.Context())
	if err != nil {
		s.logger.Warn("[server] States feed: %v", err)
		writeError(w, http.StatusBadGateway, "feed unavailable")
		return
	}
	writeJSON(w, http.StatusOK, feeds.States)
}

// handlePick returns one random candidate as element updates keyed by id.
func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	view, err := s.pages.PickCandidate(r.Context(), s.now())
	if err != nil {
		s.logger.Warn("[server] Pick: %v", err)
		writeError(w, http.StatusServiceUnavailable, "no candidate available")
		return
	}

	doc := services.ElementSet{}
	view.Apply(doc)
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("[http] %s %s %d %dB %v (req %s)",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
			time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
