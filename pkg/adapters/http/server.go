// Package http exposes an Editor to an out-of-process viewport.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/act/internal/config"
	"github.com/aretw0/act/internal/logging"
	"github.com/aretw0/act/pkg/domain"
	"github.com/aretw0/act/pkg/observability"
	"github.com/aretw0/act/pkg/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Editor is the part of act.Editor served over HTTP.
type Editor interface {
	Active() (domain.ContextKind, *domain.Skeleton)
	Markers(kind domain.ContextKind, style config.Style) []render.Marker
	History() (undo, redo []*domain.MoveCmd)
	Undo() error
	Redo() error
	Tick(now time.Time) bool
	SaveProject(ctx context.Context) error
	SavePose(ctx context.Context, name string) error
	LoadPose(ctx context.Context, name string) error
}

// Server routes requests to an Editor.
type Server struct {
	Editor   Editor
	Events   *observability.Broadcaster
	Gatherer prometheus.Gatherer
	Version  string
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithEvents streams history events on GET /events.
func WithEvents(b *observability.Broadcaster) Option {
	return func(s *Server) {
		s.Events = b
	}
}

// WithGatherer serves the given registry on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = strings.TrimSpace(v)
	}
}

// WithClock sets the time passed to Tick when the request carries none.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// NewHandler creates a new HTTP handler for the editor.
func NewHandler(editor Editor, opts ...Option) http.Handler {
	s := &Server{
		Editor:  editor,
		Version: "unknown",
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/skeleton", s.GetSkeleton)
	r.Get("/history", s.GetHistory)
	r.Post("/undo", s.PostUndo)
	r.Post("/redo", s.PostRedo)
	r.Post("/tick", s.PostTick)
	r.Post("/project/save", s.PostSaveProject)
	r.Route("/poses/{name}", func(r chi.Router) {
		r.Post("/", s.PostSavePose)
		r.Post("/apply", s.PostApplyPose)
	})
	if s.Events != nil {
		r.Get("/events", s.SubscribeEvents)
	}
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HistoryEntry summarizes one undo or redo step by its root bone.
type HistoryEntry struct {
	Root  string `json:"root"`
	Bones int    `json:"bones"`
}

// HistoryResponse is the body of GET /history, /undo and /redo.
type HistoryResponse struct {
	Context string         `json:"context"`
	Undo    []HistoryEntry `json:"undo"`
	Redo    []HistoryEntry `json:"redo"`
}

// SkeletonResponse is the body of GET /skeleton.
type SkeletonResponse struct {
	Context string          `json:"context"`
	Style   string          `json:"style"`
	Markers []render.Marker `json:"markers"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "act-http",
		"version": s.Version,
	})
}

// GetSkeleton handles GET /skeleton?context=scene|avatar&style=current|saved|default.
// Both parameters default to the active context drawn in the current style.
func (s *Server) GetSkeleton(w http.ResponseWriter, r *http.Request) {
	kind, _ := s.Editor.Active()
	if c := r.URL.Query().Get("context"); c != "" {
		parsed, err := domain.ParseContextKind(c)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		kind = parsed
	}
	styleName := r.URL.Query().Get("style")
	style, err := config.ParseStyle(styleName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if styleName == "" {
		styleName = "current"
	}
	markers := s.Editor.Markers(kind, style)
	if markers == nil {
		markers = []render.Marker{}
	}
	s.writeJSON(w, http.StatusOK, SkeletonResponse{
		Context: kind.String(),
		Style:   styleName,
		Markers: markers,
	})
}

// GetHistory handles the GET /history request.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.history())
}

// PostUndo handles the POST /undo request.
func (s *Server) PostUndo(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.Undo(); err != nil {
		s.writeError(w, "Undo", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.history())
}

// PostRedo handles the POST /redo request.
func (s *Server) PostRedo(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.Redo(); err != nil {
		s.writeError(w, "Redo", err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.history())
}

// PostTick handles the POST /tick request, the remote per-frame hook.
func (s *Server) PostTick(w http.ResponseWriter, r *http.Request) {
	committed := s.Editor.Tick(s.now())
	s.writeJSON(w, http.StatusOK, map[string]bool{"committed": committed})
}

// PostSaveProject handles the POST /project/save request.
func (s *Server) PostSaveProject(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.SaveProject(r.Context()); err != nil {
		s.writeError(w, "SaveProject", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostSavePose handles the POST /poses/{name} request.
func (s *Server) PostSavePose(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.SavePose(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, "SavePose", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostApplyPose handles the POST /poses/{name}/apply request.
func (s *Server) PostApplyPose(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.LoadPose(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, "LoadPose", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := s.Events.Watch(r.Context())
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected")
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				s.logger.Error("SSE: event encode failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func (s *Server) history() HistoryResponse {
	kind, _ := s.Editor.Active()
	undo, redo := s.Editor.History()
	return HistoryResponse{
		Context: kind.String(),
		Undo:    entries(undo),
		Redo:    entries(redo),
	}
}

func entries(cmds []*domain.MoveCmd) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, HistoryEntry{Root: c.ModelName, Bones: c.Size()})
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNoProject),
		errors.Is(err, domain.ErrNoSkeleton),
		errors.Is(err, domain.ErrNoProjectPath),
		errors.Is(err, domain.ErrModelMismatch),
		errors.Is(err, domain.ErrCanceled):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidDocument):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "err", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}
