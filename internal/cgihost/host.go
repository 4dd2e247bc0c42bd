package cgihost

import (
	"log/slog"
	"net"
	"net/http"
	"net/http/cgi"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angeloszaimis/add-cgi/internal/metrics"
)

const RequestIDHeader = "X-Request-Id"

// Host is the HTTP front of the development server.
type Host struct {
	logger           *slog.Logger
	scriptPath       string
	script           http.Handler
	metricsCollector *metrics.Collector
	mux              *http.ServeMux
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set(RequestIDHeader, requestID)

	h.logger.Info("Received request",
		slog.String("request_id", requestID),
		slog.String("from", extractClientIP(r)),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("query", r.URL.RawQuery),
		slog.String("user_agent", r.UserAgent()))

	h.mux.ServeHTTP(w, r)
}

func (h *Host) serveScript(w http.ResponseWriter, r *http.Request) {
	h.emitEvent(metrics.MetricEvent{
		Type:      metrics.EventRequestReceived,
		Timestamp: time.Now(),
		Script:    h.scriptPath,
	})

	start := time.Now()
	wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
	h.script.ServeHTTP(wrapped, r)
	duration := time.Since(start)

	h.logger.Info("Script completed",
		slog.String("request_id", w.Header().Get(RequestIDHeader)),
		slog.String("script", h.scriptPath),
		slog.Int("status", wrapped.statusCode),
		slog.Duration("duration", duration))

	h.emitEvent(metrics.MetricEvent{
		Type:       metrics.EventResponseCompleted,
		Timestamp:  time.Now(),
		Script:     h.scriptPath,
		Duration:   duration,
		StatusCode: wrapped.statusCode,
	})
}

func (h *Host) emitEvent(event metrics.MetricEvent) {
	if h.metricsCollector == nil {
		return
	}

	h.metricsCollector.Emit(event)
}

func serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	return host
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// NewScriptHandler returns a CGI handler running the executable at path.
// Variables named in inheritEnv are passed through to the child so it loads
// the same configuration as the host.
func NewScriptHandler(path, scriptPath string, inheritEnv []string, logger *slog.Logger) *cgi.Handler {
	return &cgi.Handler{
		Path:       path,
		Root:       scriptPath,
		InheritEnv: inheritEnv,
		Logger:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

// New creates a Host serving script at scriptPath. collector may be nil.
func New(logger *slog.Logger, scriptPath string, script http.Handler, collector *metrics.Collector) *Host {
	h := &Host{
		logger:           logger,
		scriptPath:       scriptPath,
		script:           script,
		metricsCollector: collector,
		mux:              http.NewServeMux(),
	}

	h.mux.HandleFunc(scriptPath, h.serveScript)
	h.mux.HandleFunc("/health", serveHealth)
	if collector != nil {
		h.mux.HandleFunc("/metrics", collector.Handler())
	}

	return h
}
