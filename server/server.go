// Package server exposes the quote sheet over HTTP: an HTML page driven by
// form posts, a JSON API for live recalculation, and diagnostic routes.
package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/billbatista/acasinha-quotes/eventlogger"
	"github.com/billbatista/acasinha-quotes/export"
	"github.com/billbatista/acasinha-quotes/middleware"
	"github.com/billbatista/acasinha-quotes/quote"
	"github.com/billbatista/acasinha-quotes/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// EventQueue accepts diagnostic events without blocking the request.
type EventQueue interface {
	Log(event eventlogger.Event)
}

type Options struct {
	Sessions  session.Repository
	NewSheet  func() *quote.Sheet
	Capturer  *export.Capturer
	Events    eventlogger.EventLogger
	Queue     EventQueue
	Label     string
	AdminUser string
	AdminHash string
	Metrics   bool
	Logger    *slog.Logger
}

type Server struct {
	opts Options
	tmpl *template.Template
	log  *slog.Logger
}

func New(opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Label == "" {
		opts.Label = export.DefaultLabel
	}
	return &Server{opts: opts, tmpl: tmpl, log: opts.Logger}, nil
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(time.Minute))

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	if s.opts.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(s.opts.AdminUser, s.opts.AdminHash))
		r.Get("/events", s.handleEvents)
	})

	r.Post("/api/recalculate", s.handleRecalculate)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SheetSession(s.opts.Sessions, s.sessionCreated))

		r.Get("/", s.handleIndex)
		r.Post("/sheet", s.handleForm(nil))
		r.Post("/sheet/add", s.handleForm(func(sheet *quote.Sheet) { sheet.Add() }))
		r.Post("/sheet/remove", s.handleForm(func(sheet *quote.Sheet) { sheet.Remove() }))
		r.Post("/sheet/submit", s.handleSubmit)
		r.Post("/sheet/capture", s.handleCapture)

		r.Route("/api/sheet", func(r chi.Router) {
			r.Get("/", s.handleGetSheet)
			r.Put("/header", s.handlePutHeader)
			r.Post("/items", s.handleAddItem)
			r.Delete("/items", s.handleRemoveItem)
			r.Patch("/items/{index}", s.handlePatchItem)
		})
	})

	return r
}

func (s *Server) sessionCreated(sess *session.Session) {
	s.opts.Queue.Log(eventlogger.NewEvent(
		eventlogger.WithType(eventlogger.TypeSheetCreated),
		eventlogger.WithSession(sess.ID),
	))
}

// currentSession is always set behind the SheetSession middleware.
func currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
	return sess, ok
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	eventType := r.URL.Query().Get("type")
	if eventType == "" {
		eventType = eventlogger.TypeQuoteSubmitted
	}
	events, err := s.opts.Events.GetByType(r.Context(), eventType)
	if err != nil {
		s.log.Error("failed to fetch events", "error", err, "event_type", eventType)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
		},
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, quote.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, quote.ErrUnknownField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
