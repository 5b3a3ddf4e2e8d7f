package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/user/news-crawler/internal/delivery/http/response"
	"github.com/user/news-crawler/internal/usecase"
)

const healthCheckTimeout = 3 * time.Second

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	status usecase.StatusReporter
	checks map[string]HealthCheck
	logger *zap.Logger
}

// NewHandler wires the HTTP handlers. checks is keyed by dependency name.
func NewHandler(status usecase.StatusReporter, checks map[string]HealthCheck, logger *zap.Logger) *Handler {
	return &Handler{
		status: status,
		checks: checks,
		logger: logger,
	}
}

func (h *Handler) HandleGetCrawlStatus(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, "URL query parameter is required", http.StatusBadRequest)
		return
	}

	status, err := h.status.GetStatus(r.Context(), rawURL)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidURL) {
			h.writeJSONError(w, "Invalid URL format in query parameter", http.StatusBadRequest)
			return
		}
		h.logger.Error("Failed to get crawl status", zap.String("url", rawURL), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := response.CrawlStatusResponse{
		URL:                  status.URL,
		CurrentStatus:        status.CurrentStatus,
		Marker:               status.Marker,
		LastAttemptTimestamp: status.LastAttemptTimestamp,
		FailureReason:        status.FailureReason,
		FailureCount:         status.FailureCount,
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := response.HealthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	code := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	h.writeJSON(w, code, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
