package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskhub/internal/infrastructure/monitor"
	"github.com/fastygo/taskhub/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

type healthResponse struct {
	State string `json:"status"`
	monitor.Status
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	if status.StorageOnline {
		h.respondJSON(ctx, http.StatusOK, healthResponse{State: "ok", Status: status})
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, healthResponse{State: "degraded", Status: status})
}
