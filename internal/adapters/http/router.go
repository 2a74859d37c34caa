package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/kirillkom/legal-intake/internal/config"
	"github.com/kirillkom/legal-intake/internal/core/domain"
	"github.com/kirillkom/legal-intake/internal/core/ports"
	"github.com/kirillkom/legal-intake/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg       config.Config
	intake    ports.IntakeService
	sessions  ports.SessionReader
	templates ports.TemplateReader
	files     ports.FileLister
	metrics   *metrics.HTTPServerMetrics
	logger    *slog.Logger
}

type RouterOption func(*Router)

// WithLogger sets the access log destination; slog.Default is used otherwise.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(rt *Router) {
		rt.logger = logger
	}
}

func WithMetrics(m *metrics.HTTPServerMetrics) RouterOption {
	return func(rt *Router) {
		rt.metrics = m
	}
}

func NewRouter(
	cfg config.Config,
	intake ports.IntakeService,
	sessions ports.SessionReader,
	templates ports.TemplateReader,
	files ports.FileLister,
	opts ...RouterOption,
) *Router {
	rt := &Router{
		cfg:       cfg,
		intake:    intake,
		sessions:  sessions,
		templates: templates,
		files:     files,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.logger == nil {
		rt.logger = slog.Default()
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/analyze", rt.analyze)
	mux.HandleFunc("GET /v1/sessions", rt.listSessions)
	mux.HandleFunc("GET /v1/templates", rt.listTemplates)
	mux.HandleFunc("GET /v1/templates/{id}", rt.getTemplate)
	mux.HandleFunc("GET /v1/files", rt.listFiles)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	wait := time.Duration(rt.cfg.APIBackpressureWaitMS) * time.Millisecond
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, wait, rt.recordRejected)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.recordRejected)
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := rt.sessions.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (rt *Router) listTemplates(w http.ResponseWriter, _ *http.Request) {
	all := rt.templates.All()
	summaries := make([]domain.TemplateSummary, 0, len(all))
	for _, tpl := range all {
		summaries = append(summaries, tpl.Summary())
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": summaries})
}

func (rt *Router) getTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := rt.templates.ByID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"template": tpl})
}

func (rt *Router) listFiles(w http.ResponseWriter, r *http.Request) {
	files, err := rt.files.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if files == nil {
		files = []domain.StoredFile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (rt *Router) recordRejected(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected(serviceName, reason)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
