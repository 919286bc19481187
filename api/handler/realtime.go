package handler

import (
	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskhub/internal/realtime"
)

// RealtimeHandler upgrades /ws requests and hands the socket to the hub.
// The channel is open to any origin and needs no token.
type RealtimeHandler struct {
	upgrader websocket.FastHTTPUpgrader
	hub      *realtime.Hub
	events   *realtime.Router
	opts     realtime.ConnOptions
	logger   *zap.Logger
}

func NewRealtimeHandler(hub *realtime.Hub, events *realtime.Router, opts realtime.ConnOptions, logger *zap.Logger) *RealtimeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RealtimeHandler{
		upgrader: websocket.FastHTTPUpgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*fasthttp.RequestCtx) bool { return true },
		},
		hub:    hub,
		events: events,
		opts:   opts,
		logger: logger,
	}
}

// @Summary Realtime room channel
// @Tags realtime
// @Router /ws [get]
func (h *RealtimeHandler) Serve(ctx *fasthttp.RequestCtx) {
	err := h.upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
		realtime.Serve(conn, h.hub, h.events, h.opts, h.logger)
	})
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
	}
}
