package handlers

import (
	"net/http"
	"time"

	"github.com/ukydev/gps-telemetry-collector/internal/provider"
)

// HealthHandler reports process and provider health.
type HealthHandler struct {
	provider provider.Client
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(client provider.Client) *HealthHandler {
	return &HealthHandler{provider: client}
}

// Health returns the service status and the provider's reachability.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	providerOK := h.provider.HealthCheck(r.Context())
	status := http.StatusOK
	body := map[string]any{
		"status":      "ok",
		"provider":    h.provider.Name(),
		"provider_ok": providerOK,
		"time":        time.Now().UTC().Format(time.RFC3339),
	}
	if !providerOK {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}
