package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskhub/api/transport"
	"github.com/fastygo/taskhub/domain"
	"github.com/fastygo/taskhub/pkg/httpcontext"
)

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (int64, error)
}

// JWTAuth rejects requests without a valid bearer token and passes the
// resolved user id downstream through httpcontext.UserID.
func JWTAuth(validator TokenValidator, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			userID, err := validator.Validate(context.Background(), extractToken(ctx))
			if err != nil {
				message := domain.ErrInvalidToken.Message
				var dErr *domain.Error
				if errors.As(err, &dErr) && dErr.Code == domain.ErrCodeUnauthorized {
					message = dErr.Message
				}
				logger.Debug("rejected request token",
					zap.String("request_id", httpcontext.RequestID(ctx)),
					zap.Error(err))
				transport.WriteJSON(ctx, fasthttp.StatusUnauthorized, transport.NewError(message))
				return
			}

			httpcontext.SetUserID(ctx, userID)
			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return header
}
