package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/truckmitra/backend/api/transport"
	"github.com/truckmitra/backend/internal/infrastructure/monitor"
	"github.com/truckmitra/backend/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
	started time.Time
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		started:     time.Now(),
	}
}

type healthResponse struct {
	Timestamp time.Time       `json:"timestamp"`
	Uptime    string          `json:"uptime"`
	LastCheck time.Time       `json:"last_check"`
	Services  map[string]bool `json:"services"`
}

// Check reports the last probe of the load and session stores; 503 when any is down.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := healthResponse{
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		LastCheck: status.LastCheck,
		Services:  status.Services,
	}

	if !status.Healthy() {
		h.logger.Warn("health check degraded", zap.Any("services", status.Services))
		h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", payload))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, payload)
}
