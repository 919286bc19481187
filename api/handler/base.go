package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskhub/api/transport"
	"github.com/fastygo/taskhub/domain"
	"github.com/fastygo/taskhub/pkg/httpcontext"
	appLogger "github.com/fastygo/taskhub/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	transport.WriteJSON(ctx, status, payload)
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, stdCtx context.Context, err error) {
	status, message := mapError(err)
	if status == http.StatusInternalServerError {
		appLogger.WithRequestID(stdCtx, h.logger).Error("request failed",
			zap.String("path", string(ctx.Path())),
			zap.Error(err))
	}
	h.respondJSON(ctx, status, transport.NewError(message))
}

func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(domain.ErrInvalidPayload.Message))
		return false
	}
	if err := transport.Validate(dst); err != nil {
		status, message := mapError(err)
		h.respondJSON(ctx, status, transport.NewError(message))
		return false
	}
	return true
}

// mapError returns the HTTP status and the client-facing message for err.
// Unclassified errors never leak their text.
func mapError(err error) (int, string) {
	var dErr *domain.Error
	if !errors.As(err, &dErr) {
		return http.StatusInternalServerError, "internal server error"
	}
	switch dErr.Code {
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized, dErr.Message
	case domain.ErrCodeInvalid, domain.ErrCodeConflict, domain.ErrCodeInvalidCredentials:
		return http.StatusBadRequest, dErr.Message
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, dErr.Message
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func parseID(ctx *fasthttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
