package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskhub/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
)

// User value names stored on the fasthttp.RequestCtx.
const (
	userValueRequestID = "request_id"
	userValueUserID    = "user_id"
)

const HeaderRequestID = "X-Request-ID"

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches it with
// the request id, the authenticated user (when present) and client metadata.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	stdCtx = appLogger.ContextWithRequestID(stdCtx, RequestID(ctx))
	if userID, ok := UserID(ctx); ok {
		stdCtx = appLogger.ContextWithUserID(stdCtx, userID)
	}

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}

	return stdCtx, cancel
}

// RequestID returns the id for this request, taking the client's X-Request-ID when
// supplied. The id is generated once and echoed in the response header.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if id, ok := ctx.UserValue(userValueRequestID).(string); ok && id != "" {
		return id
	}
	id := strings.TrimSpace(string(ctx.Request.Header.Peek(HeaderRequestID)))
	if id == "" {
		id = uuid.NewString()
	}
	ctx.SetUserValue(userValueRequestID, id)
	ctx.Response.Header.Set(HeaderRequestID, id)
	return id
}

// SetUserID records the authenticated user on the request.
func SetUserID(ctx *fasthttp.RequestCtx, userID int64) {
	ctx.SetUserValue(userValueUserID, userID)
}

// UserID returns the user set by the auth middleware.
func UserID(ctx *fasthttp.RequestCtx) (int64, bool) {
	id, ok := ctx.UserValue(userValueUserID).(int64)
	return id, ok
}
