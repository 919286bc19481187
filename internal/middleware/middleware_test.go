package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskhub/domain"
	"github.com/fastygo/taskhub/pkg/httpcontext"
)

type stubValidator struct {
	userID int64
	err    error
	got    string
}

func (s *stubValidator) Validate(_ context.Context, token string) (int64, error) {
	s.got = token
	if token == "" {
		return 0, domain.ErrMissingToken
	}
	return s.userID, s.err
}

func errorBody(t *testing.T, ctx *fasthttp.RequestCtx) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	return body.Error
}

func TestJWTAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		validator  *stubValidator
		wantStatus int
		wantError  string
		wantToken  string
	}{
		{
			name:       "missing header",
			validator:  &stubValidator{},
			wantStatus: fasthttp.StatusUnauthorized,
			wantError:  "Missing token",
		},
		{
			name:       "invalid token",
			header:     "Bearer nope",
			validator:  &stubValidator{err: domain.WrapError(domain.ErrCodeUnauthorized, "Invalid token", errors.New("bad signature"))},
			wantStatus: fasthttp.StatusUnauthorized,
			wantError:  "Invalid token",
			wantToken:  "nope",
		},
		{
			name:       "unclassified failure",
			header:     "Bearer x",
			validator:  &stubValidator{err: errors.New("boom")},
			wantStatus: fasthttp.StatusUnauthorized,
			wantError:  "Invalid token",
			wantToken:  "x",
		},
		{
			name:       "bearer token",
			header:     "Bearer good",
			validator:  &stubValidator{userID: 7},
			wantStatus: fasthttp.StatusOK,
			wantToken:  "good",
		},
		{
			name:       "raw token",
			header:     "good",
			validator:  &stubValidator{userID: 7},
			wantStatus: fasthttp.StatusOK,
			wantToken:  "good",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen int64
			next := func(ctx *fasthttp.RequestCtx) {
				seen, _ = httpcontext.UserID(ctx)
				ctx.SetStatusCode(fasthttp.StatusOK)
			}

			ctx := &fasthttp.RequestCtx{}
			if tt.header != "" {
				ctx.Request.Header.Set("Authorization", tt.header)
			}
			JWTAuth(tt.validator, nil)(next)(ctx)

			assert.Equal(t, tt.wantStatus, ctx.Response.StatusCode())
			assert.Equal(t, tt.wantToken, tt.validator.got)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorBody(t, ctx))
				assert.Zero(t, seen, "next must not run")
				return
			}
			assert.Equal(t, int64(7), seen)
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	h := CORS("https://app.example")(func(ctx *fasthttp.RequestCtx) { called = true })

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodOptions)
	h(ctx)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())
	assert.Equal(t, "https://app.example", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	assert.Contains(t, string(ctx.Response.Header.Peek("Access-Control-Allow-Methods")), "PATCH")
}

func TestCORS_DecoratesResponses(t *testing.T) {
	h := CORS("")(func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusTeapot) })

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	h(ctx)

	assert.Equal(t, fasthttp.StatusTeapot, ctx.Response.StatusCode())
	assert.Equal(t, "*", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return func(ctx *fasthttp.RequestCtx) {
				order = append(order, name)
				next(ctx)
			}
		}
	}

	h := Chain(func(*fasthttp.RequestCtx) { order = append(order, "handler") }, mw("outer"), mw("inner"))
	h(&fasthttp.RequestCtx{})

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestAccessLog_AssignsRequestID(t *testing.T) {
	h := AccessLog(nil)(func(ctx *fasthttp.RequestCtx) { ctx.SetStatusCode(fasthttp.StatusNotFound) })

	ctx := &fasthttp.RequestCtx{}
	h(ctx)
	assert.NotEmpty(t, string(ctx.Response.Header.Peek(httpcontext.HeaderRequestID)))

	ctx = &fasthttp.RequestCtx{}
	ctx.Request.Header.Set(httpcontext.HeaderRequestID, "req-1")
	h(ctx)
	assert.Equal(t, "req-1", string(ctx.Response.Header.Peek(httpcontext.HeaderRequestID)))
}
