// Package http exposes a read-only inspection API over the charm: health,
// unit status, relations, databag snapshots and registered interfaces.
package http

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/artpar/copydata/charm"
	"github.com/artpar/copydata/core/bucket"
	"github.com/artpar/copydata/core/registry"
	"github.com/artpar/copydata/core/relation"
	"github.com/artpar/copydata/core/topology"
	"github.com/artpar/copydata/pkg/jsonapi"
	"github.com/artpar/copydata/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// StatusSource reports the charm status.
type StatusSource interface {
	Status() charm.Status
	Updated() []charm.Update
}

// Model is the unit context plus the list of known relations.
type Model interface {
	ports.Context
	Relations() []topology.Relation
}

// Handler serves the inspection endpoints.
type Handler struct {
	status   StatusSource
	model    Model
	registry *registry.Registry
	logger   zerolog.Logger
}

// NewHandler creates a handler.
func NewHandler(status StatusSource, model Model, reg *registry.Registry, logger zerolog.Logger) *Handler {
	return &Handler{status: status, model: model, registry: reg, logger: logger}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	jsonapi.WriteDocument(w, http.StatusOK, jsonapi.Document{Meta: jsonapi.Meta{"status": "ok"}})
}

// Status returns the last computed unit status and the handled events.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.status.Status()
	local := h.model.Local()
	jsonapi.WriteResource(w, http.StatusOK, jsonapi.Resource{
		Type: "status",
		ID:   local.Unit,
		Attributes: map[string]any{
			"state":   st.State,
			"message": st.Message,
			"leader":  local.Leader,
			"updated": h.status.Updated(),
		},
	})
}

// Relations lists the relations of the local application.
func (h *Handler) Relations(w http.ResponseWriter, r *http.Request) {
	rels := h.model.Relations()
	out := make([]jsonapi.Resource, 0, len(rels))
	for _, rel := range rels {
		out = append(out, h.relationResource(rel))
	}
	jsonapi.WriteCollection(w, http.StatusOK, out, jsonapi.Meta{"count": len(out)})
}

// Relation returns one relation by label.
func (h *Handler) Relation(w http.ResponseWriter, r *http.Request) {
	rel, ok := h.model.Relation(chi.URLParam(r, "relation"))
	if !ok {
		jsonapi.WriteError(w, jsonapi.ErrNotFound("relation").WithParameter("relation"))
		return
	}
	jsonapi.WriteResource(w, http.StatusOK, h.relationResource(rel))
}

func (h *Handler) relationResource(rel topology.Relation) jsonapi.Resource {
	attrs := map[string]any{
		"id":        rel.ID,
		"interface": rel.Interface,
		"provider":  rel.Provider,
		"requirer":  rel.Requirer,
		"units":     rel.Units,
	}
	if role, ok := rel.RoleOf(h.model.Local().App); ok {
		attrs["role"] = role.String()
	}
	return jsonapi.Resource{Type: "relation", ID: rel.Name, Attributes: attrs}
}

// Databag returns the typed view of one entity's bucket. The entity is the
// rest of the path, so unit names keep their slash.
func (h *Handler) Databag(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "relation")
	rel, ok := h.model.Relation(label)
	if !ok {
		jsonapi.WriteError(w, jsonapi.ErrNotFound("relation").WithParameter("relation"))
		return
	}

	entity, err := topology.Parse(chi.URLParam(r, "*"))
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest(err.Error()).WithParameter("entity"))
		return
	}

	si, err := h.registry.Load(rel.Interface, h.model, label)
	if err != nil {
		h.writeError(w, err)
		return
	}
	in, err := si.Select(entity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	fields, err := in.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	attrs := make(map[string]any, len(fields))
	tags := make(map[string]string, len(fields))
	for _, f := range fields {
		attrs[f.Name] = f.Value
		tags[f.Name] = f.Tag
	}
	meta := jsonapi.Meta{
		"interface": in.Interface().Name(),
		"scope":     in.Interface().Scope().String(),
		"writable":  in.Writable(),
		"codecs":    tags,
	}

	// Raw stored text, including keys the interface does not declare.
	if dumper, ok := h.model.Transport().Databag(rel.ID, entity).(ports.DatabagDumper); ok {
		raw, err := dumper.Dump(r.Context())
		switch {
		case err == nil:
			meta["raw"] = raw
		case !errors.Is(err, ports.ErrDumpUnsupported):
			h.writeError(w, err)
			return
		}
	}

	jsonapi.WriteResource(w, http.StatusOK, jsonapi.Resource{
		Type:       "databag",
		ID:         rel.ID + "/" + entity.Name,
		Attributes: attrs,
		Meta:       meta,
	})
}

// Interfaces lists the registered relation interfaces and their slots.
func (h *Handler) Interfaces(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	out := make([]jsonapi.Resource, 0, len(names))
	for _, name := range names {
		s, ok := h.registry.Get(name)
		if !ok {
			continue
		}
		slots := make(map[string]string, len(relation.Keys))
		for _, k := range relation.Keys {
			slots[k.String()] = s.Interface(k).Name()
		}
		out = append(out, jsonapi.Resource{Type: "interface", ID: name, Attributes: map[string]any{"slots": slots}})
	}
	jsonapi.WriteCollection(w, http.StatusOK, out, nil)
}

// Describe renders the attribute table of one interface as plain text.
func (h *Handler) Describe(w http.ResponseWriter, r *http.Request) {
	s, ok := h.registry.Get(chi.URLParam(r, "interface"))
	if !ok {
		jsonapi.WriteError(w, jsonapi.ErrNotFound("interface").WithParameter("interface"))
		return
	}
	var buf bytes.Buffer
	if err := s.Describe(&buf); err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(buf.Bytes())
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		notRegistered *registry.NotRegisteredError
		unknown       *relation.UnknownEntityError
	)
	switch {
	case errors.As(err, &notRegistered):
		jsonapi.WriteError(w, jsonapi.ErrNotFound("interface").WithDetail(err.Error()))
	case errors.As(err, &unknown):
		jsonapi.WriteError(w, jsonapi.ErrNotFound("entity").WithDetail(err.Error()))
	case bucket.IsPermission(err):
		jsonapi.WriteError(w, jsonapi.ErrForbidden(err.Error()))
	default:
		h.logger.Error().Err(err).Msg("inspection request failed")
		jsonapi.WriteError(w, jsonapi.ErrInternal(err.Error()))
	}
}

// RouterConfig holds optional router features.
type RouterConfig struct {
	MetricsHandler http.Handler // Mounted at MetricsPath when set
	MetricsPath    string
}

// NewRouter creates the HTTP router.
func NewRouter(h *Handler, logger zerolog.Logger, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", h.Health)
	r.Get("/status", h.Status)

	r.Route("/relations", func(r chi.Router) {
		r.Get("/", h.Relations)
		r.Get("/{relation}", h.Relation)
		r.Get("/{relation}/databags/*", h.Databag)
	})

	r.Get("/interfaces", h.Interfaces)
	r.Get("/interfaces/{interface}", h.Describe)

	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsHandler)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonapi.WriteError(w, jsonapi.ErrNotFound("route"))
	})
	return r
}

// NewLoggingMiddleware logs HTTP requests.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// Skip logging for health checks and metrics
			if strings.HasPrefix(r.URL.Path, "/health") || r.URL.Path == "/metrics" {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}
