// Package web serves a local timeline viewer over the capture history:
// recent events with their text and screenshots, plus keyword search.
// It binds to loopback by default; the history is private to the machine.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hindsight-sh/hindsight/internal/event"
	"github.com/hindsight-sh/hindsight/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultAddr is where the viewer listens unless told otherwise.
const DefaultAddr = "127.0.0.1:7466"

// defaultPageSize bounds the timeline when no search is active.
const defaultPageSize = 50

// Server is the timeline viewer.
type Server struct {
	store *store.Store
	log   *zap.Logger
	tmpl  *template.Template
}

// NewServer creates a viewer over the given store.
func NewServer(st *store.Store, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{store: st, log: log, tmpl: tmpl}, nil
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleTimeline)
	r.Get("/screenshots/{name}", s.handleScreenshot)

	return r
}

// ListenAndServe runs the viewer until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info("timeline viewer listening", zap.String("addr", addr))
	return srv.ListenAndServe()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

// timelinePage is the template payload.
type timelinePage struct {
	Query  string
	Count  int
	Events []timelineEntry
}

type timelineEntry struct {
	App     string
	When    string
	Text    string
	ShotURL string
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		events []event.CaptureEvent
		err    error
	)
	if query != "" {
		events, err = s.store.FetchByKeywords(strings.Fields(query))
	} else {
		limit := defaultPageSize
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, convErr := strconv.Atoi(v); convErr == nil && n >= 0 {
				limit = n
			}
		}
		events, err = s.store.FetchRecent(limit)
	}
	if err != nil {
		s.log.Error("timeline query failed", zap.Error(err))
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	page := timelinePage{
		Query:  query,
		Count:  len(events),
		Events: make([]timelineEntry, 0, len(events)),
	}
	for i := range events {
		page.Events = append(page.Events, toEntry(&events[i]))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "timeline.html", page); err != nil {
		s.log.Error("template render failed", zap.Error(err))
	}
}

func toEntry(e *event.CaptureEvent) timelineEntry {
	entry := timelineEntry{
		App:  "Unknown",
		When: time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04:05"),
	}
	if e.ApplicationName != nil && *e.ApplicationName != "" {
		entry.App = *e.ApplicationName
	}
	if e.OCRText != nil {
		entry.Text = *e.OCRText
	}
	if e.ScreenshotPath != nil && *e.ScreenshotPath != "" {
		entry.ShotURL = "/screenshots/" + *e.ScreenshotPath
	}
	return entry
}

// handleScreenshot serves a stored blob. The name comes from stored events,
// but resolution still refuses anything that would escape the screenshots
// directory.
func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	abs := s.store.ResolveScreenshotPath(name)
	if abs == nil {
		http.Error(w, "invalid screenshot path", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, *abs)
}
