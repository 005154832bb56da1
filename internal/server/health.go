package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
)

type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports the state of the snapshot database and the task API.
type HealthChecker struct {
	db         DBPinger
	apiURL     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewHealthChecker creates a checker. db may be nil when the snapshot store is disabled.
func NewHealthChecker(db DBPinger, apiURL string, log *slog.Logger) *HealthChecker {
	clientTO := 5
	return &HealthChecker{
		db:         db,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: time.Duration(clientTO) * time.Second},
		log:        log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	h.log.DebugContext(ctx, "Performing health checks...")

	var err error
	status := make(map[string]string)
	overallStatus := http.StatusOK

	switch {
	case h.db == nil:
		status["database"] = "disabled"
	case h.db.Ping(ctx) != nil:
		status["database"] = "unavailable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(ctx, "Health check failed: DB ping")
	default:
		status["database"] = "ok"
	}

	status["task_api"] = h.checkAPI(ctx)
	if status["task_api"] != "ok" {
		overallStatus = http.StatusServiceUnavailable
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err = json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(ctx, "Failed to write health check response", sl.Err(err))
	}

	h.log.DebugContext(ctx, "Health checks completed", "status", overallStatus)
}

// checkAPI sends HEAD to the API root. Any answer below 500 counts as healthy.
func (h *HealthChecker) checkAPI(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.apiURL, nil)
	if err != nil {
		h.log.WarnContext(ctx, "Health check failed: invalid task api url", "url", h.apiURL, sl.Err(err))
		return "unreachable"
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.log.WarnContext(ctx, "Health check failed: task api unreachable", "url", h.apiURL, sl.Err(err))
		return "unreachable"
	}
	if err = resp.Body.Close(); err != nil {
		h.log.WarnContext(ctx, "Failed to close response body", sl.Err(err))
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		h.log.WarnContext(ctx, "Health check failed: task api returned error status",
			"url", h.apiURL, "status_code", resp.StatusCode)
		return "degraded"
	}
	return "ok"
}
