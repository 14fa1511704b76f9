// Package server hosts the lookup API next to a server-rendered attribute
// form, standing in for the record-editing page.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-theme"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-specform/pkg/controller"
	"github.com/goliatone/go-specform/pkg/fetcher"
	"github.com/goliatone/go-specform/pkg/form"
	"github.com/goliatone/go-specform/pkg/lookup"
	"github.com/goliatone/go-specform/pkg/render"
	"github.com/goliatone/go-specform/pkg/renderers/html"
	"github.com/goliatone/go-specform/pkg/values"
)

const (
	FormRoute   = "/forms/specifications"
	SyncRoute   = "/forms/specifications/sync"
	AssetsRoute = "/assets/*"
	MetricsPath = "/metrics"

	// VersionFieldName carries the record version through the form so the
	// host can reject a save made against a stale record.
	VersionFieldName = "version"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for requests and controllers.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPolicy sets the merge policy of every form controller.
func WithPolicy(policy values.Policy) Option {
	return func(s *Server) {
		s.policy = policy
	}
}

// WithMessages overrides the form notices.
func WithMessages(messages form.Messages) Option {
	return func(s *Server) {
		s.messages = messages
	}
}

// WithTheme passes theme hooks to the HTML renderer.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithRenderer replaces the HTML renderer.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithMetrics exposes registry at /metrics and registers the lookup metrics
// on it.
func WithMetrics(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// WithLookupOptions forwards options to the lookup handler.
func WithLookupOptions(options ...lookup.HandlerOption) Option {
	return func(s *Server) {
		s.lookupOptions = append(s.lookupOptions, options...)
	}
}

// Server is an http.Handler.
type Server struct {
	router        chi.Router
	fetcher       fetcher.Fetcher
	renderer      render.Renderer
	logger        *slog.Logger
	policy        values.Policy
	messages      form.Messages
	theme         *theme.RendererConfig
	registry      *prometheus.Registry
	lookupOptions []lookup.HandlerOption
}

// New wires the routes for store.
func New(store lookup.Store, options ...Option) (*Server, error) {
	if store == nil {
		return nil, errors.New("server: store is nil")
	}

	s := &Server{
		fetcher:  lookup.AsFetcher(store),
		logger:   slog.New(slog.DiscardHandler),
		policy:   values.PreserveOffSchema,
		messages: form.DefaultMessages(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	if s.renderer == nil {
		renderer, err := html.New()
		if err != nil {
			return nil, err
		}
		s.renderer = renderer
	}

	registry := s.registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	lookupOptions := append([]lookup.HandlerOption{
		lookup.WithHandlerLogger(s.logger),
		lookup.WithRegistry(registry),
	}, s.lookupOptions...)
	api, err := lookup.NewHandler(store, lookupOptions...)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	api.Mount(r)
	// the default fetcher endpoint lives under /products
	r.Route("/products", api.Mount)

	r.Get(FormRoute, s.renderForm)
	r.Post(SyncRoute, s.syncForm)
	r.Handle(AssetsRoute, http.StripPrefix("/assets/", http.FileServerFS(html.AssetsFS())))
	if s.registry != nil {
		r.Handle(MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	s.router = r
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// formSession runs one controller over a request-scoped persisted field.
func (s *Server) formSession(r *http.Request, categoryID, persisted string) (*controller.Controller, *controller.MemoryField, error) {
	field := controller.NewMemoryField(persisted)
	c, err := controller.New(s.fetcher, field,
		controller.WithPolicy(s.policy),
		controller.WithMessages(s.messages),
		controller.WithLogger(s.logger.With("request_id", middleware.GetReqID(r.Context()))),
	)
	if err != nil {
		return nil, nil, err
	}
	if err := c.SelectCategory(r.Context(), categoryID); err != nil {
		s.logger.Warn("attribute schema unavailable", "category", categoryID, "error", err)
	}
	return c, field, nil
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	categoryID := strings.TrimSpace(query.Get("category"))

	c, field, err := s.formSession(r, categoryID, query.Get("specifications"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var hidden map[string]string
	if version := strings.TrimSpace(query.Get(VersionFieldName)); version != "" {
		hidden = render.MergeHiddenFields(nil, render.VersionField(VersionFieldName, version))
	}

	body, err := s.renderer.Render(r.Context(), c.Form(), render.RenderOptions{
		CategoryID:     categoryID,
		PersistedField: &render.PersistedField{Value: field.Value()},
		HiddenFields:   hidden,
		Theme:          s.theme,
	})
	if err != nil {
		s.logger.Error("render form", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	_, _ = w.Write(body)
}

// SyncRequest applies field edits to a stored specifications document.
type SyncRequest struct {
	CategoryID     string            `json:"category_id"`
	Specifications string            `json:"specifications"`
	Edits          map[string]string `json:"edits"`
	Version        string            `json:"version,omitempty"`
}

// SyncResponse carries the rewritten document and the resulting form.
type SyncResponse struct {
	Specifications string             `json:"specifications"`
	State          controller.Phase   `json:"state"`
	Form           form.DescribedForm `json:"form"`
	Unknown        []string           `json:"unknown_keys,omitempty"`
	Version        string             `json:"version,omitempty"`
}

func (s *Server) syncForm(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	c, field, err := s.formSession(r, strings.TrimSpace(req.CategoryID), req.Specifications)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	var unknown []string
	for _, key := range values.ValueMap(req.Edits).Keys() {
		if _, err := c.EditField(key, req.Edits[key]); errors.Is(err, controller.ErrUnknownField) {
			unknown = append(unknown, key)
		}
	}

	state := c.State()
	writeJSON(w, http.StatusOK, SyncResponse{
		Specifications: field.Value(),
		State:          state.Phase,
		Form:           state.Form,
		Unknown:        unknown,
		Version:        req.Version,
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(started),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
