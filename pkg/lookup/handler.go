package lookup

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-specform/pkg/schema"
)

const (
	// AttributesRoute serves the grouped schema for one category.
	AttributesRoute = "/api/category-attributes/{id}/"
	// ContractRoute serves the OpenAPI contract of the attributes route.
	ContractRoute = "/api/contract.yaml"
)

// HandlerOption configures a Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	logger    *slog.Logger
	registry  prometheus.Registerer
	namespace string
	legacy    bool
}

// WithHandlerLogger sets the request logger.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(cfg *handlerConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithRegistry sets the Prometheus registerer. Default: prometheus.DefaultRegisterer.
func WithRegistry(registry prometheus.Registerer) HandlerOption {
	return func(cfg *handlerConfig) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithNamespace sets the metrics namespace. Default: "specform".
func WithNamespace(namespace string) HandlerOption {
	return func(cfg *handlerConfig) {
		if namespace = strings.TrimSpace(namespace); namespace != "" {
			cfg.namespace = namespace
		}
	}
}

// WithLegacyPayload adds the flat "attributes" list next to "groups" for
// clients that predate grouping.
func WithLegacyPayload(enabled bool) HandlerOption {
	return func(cfg *handlerConfig) {
		cfg.legacy = enabled
	}
}

// Handler exposes a Store over HTTP.
type Handler struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics
	legacy  bool
}

// NewHandler builds the HTTP surface for store.
func NewHandler(store Store, options ...HandlerOption) (*Handler, error) {
	if store == nil {
		return nil, errors.New("lookup: store is nil")
	}
	cfg := handlerConfig{
		logger:    slog.New(slog.DiscardHandler),
		registry:  prometheus.DefaultRegisterer,
		namespace: "specform",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Handler{
		store:   store,
		logger:  cfg.logger,
		metrics: newMetrics(cfg.namespace, cfg.registry),
		legacy:  cfg.legacy,
	}, nil
}

// Mount registers the routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Get(AttributesRoute, h.attributes)
	r.Get(ContractRoute, h.contract)
}

// Router returns a standalone router serving the routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	h.Mount(r)
	return r
}

func (h *Handler) attributes(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")

	status := http.StatusOK
	defer func() {
		label := strconv.Itoa(status)
		h.metrics.requests.WithLabelValues(label).Inc()
		h.metrics.duration.WithLabelValues(label).Observe(time.Since(started).Seconds())
	}()

	groups, err := h.store.AttributesFor(r.Context(), id)
	switch {
	case errors.Is(err, ErrCategoryNotFound):
		status = http.StatusNotFound
		writeError(w, status, "category not found")
		return
	case err != nil:
		status = http.StatusInternalServerError
		h.logger.Error("category attribute lookup failed", "category", id, "error", err)
		writeError(w, status, "lookup failed")
		return
	}

	payload := schema.NewPayload(groups)
	if h.legacy {
		for _, g := range groups {
			payload.Attributes = append(payload.Attributes, g.Attributes...)
		}
	}
	h.metrics.groups.Observe(float64(groups.Len()))
	h.logger.Debug("category attributes served", "category", id, "groups", len(groups), "attributes", groups.Len())
	writeJSON(w, status, payload)
}

func (h *Handler) contract(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(schema.ContractDocument())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
