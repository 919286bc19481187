package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskhub/api/handler"
)

const defaultRealtimePath = "/ws"

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Task     *apiHandler.TaskHandler
	Health   *apiHandler.HealthHandler
	Realtime *apiHandler.RealtimeHandler
}

// Options carries route settings that come from configuration.
type Options struct {
	RealtimePath string
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler, opts Options) *router.Router {
	r := router.New()

	if handlers.Health != nil {
		r.GET("/health", handlers.Health.Check)
	}

	// Auth routes
	r.POST("/api/auth/register", handlers.Auth.Register)
	r.POST("/api/auth/login", handlers.Auth.Login)

	// Protected routes
	r.GET("/api/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PUT("/api/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	r.PATCH("/api/tasks/{id}/complete", authMiddleware(handlers.Task.CompleteTask))

	if handlers.Realtime != nil {
		path := opts.RealtimePath
		if path == "" {
			path = defaultRealtimePath
		}
		r.GET(path, handlers.Realtime.Serve)
	}

	return r
}
