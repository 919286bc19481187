package transport

import (
	"encoding/json"

	"github.com/valyala/fasthttp"
)

type TokenResponse struct {
	Token string `json:"token"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func NewError(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// WriteJSON serializes payload as the response body with the given status.
func WriteJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = fasthttp.StatusInternalServerError
		body = []byte(`{"error":"internal server error"}`)
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
