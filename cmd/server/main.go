package main

import (
	"context"
	"fmt"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskhub/api/handler"
	"github.com/fastygo/taskhub/internal/config"
	"github.com/fastygo/taskhub/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/taskhub/internal/infrastructure/postgres"
	"github.com/fastygo/taskhub/internal/middleware"
	"github.com/fastygo/taskhub/internal/realtime"
	"github.com/fastygo/taskhub/internal/router"
	"github.com/fastygo/taskhub/internal/services/lifecycle"
	"github.com/fastygo/taskhub/pkg/httpcontext"
	"github.com/fastygo/taskhub/pkg/logger"
	"github.com/fastygo/taskhub/pkg/password"
	"github.com/fastygo/taskhub/repository"
	"github.com/fastygo/taskhub/repository/memory"
	"github.com/fastygo/taskhub/repository/postgres"
	authUC "github.com/fastygo/taskhub/usecase/auth"
	taskUC "github.com/fastygo/taskhub/usecase/task"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("taskhub: %v", err)
	}
}

// storage is the repository pair selected by STORAGE_DRIVER. db is nil for
// the in-memory driver.
type storage struct {
	users repository.UserRepository
	tasks repository.TaskRepository
	db    monitor.Pinger
}

func openStorage(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) (storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		store := memory.NewStore()
		zapLogger.Warn("using in-memory storage, data is lost on restart")
		return storage{users: store.Users(), tasks: store.Tasks()}, nil
	}

	pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
	if err != nil {
		return storage{}, fmt.Errorf("postgres connection failed: %w", err)
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})
	if err := pgInfra.EnsureSchema(ctx, pool, zapLogger); err != nil {
		return storage{}, fmt.Errorf("schema setup failed: %w", err)
	}
	return storage{
		users: postgres.NewUserRepository(pool),
		tasks: postgres.NewTaskRepository(pool),
		db:    pool,
	}, nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		File: logger.FileConfig{
			Path:       cfg.Logger.FilePath,
			MaxSizeMB:  cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAgeDays: cfg.Logger.MaxAgeDays,
			Compress:   cfg.Logger.Compress,
		},
	})
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}
	defer zapLogger.Sync()

	appCtx, stop := lifecycle.SignalContext(context.Background())
	defer stop()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	shutdown := func() {
		if err := manager.Shutdown(context.Background()); err != nil {
			zapLogger.Error("graceful shutdown error", zap.Error(err))
		}
	}

	store, err := openStorage(appCtx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Error("storage setup failed", zap.Error(err))
		shutdown()
		return err
	}

	hub := realtime.NewHub(zapLogger)
	events := realtime.NewRouter(hub)

	mon := monitor.New(cfg.Storage.Driver, store.db, hub, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop(ctx)
		return nil
	})

	tokens := authUC.NewTokens(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	authUseCase := authUC.New(store.users, password.NewBcrypt(cfg.Auth.BcryptCost), tokens, zapLogger)
	taskUseCase := taskUC.New(store.tasks, taskUC.Options{StrictNotFound: cfg.Tasks.StrictNotFound}, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
		Realtime: apiHandler.NewRealtimeHandler(hub, events, realtime.ConnOptions{
			SendBuffer:   cfg.Realtime.SendBuffer,
			PingInterval: cfg.Realtime.PingInterval,
			WriteTimeout: cfg.Realtime.WriteTimeout,
		}, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(authUseCase, zapLogger)
	r := router.New(handlers, authMiddleware, router.Options{RealtimePath: cfg.Realtime.Path})

	server := &fasthttp.Server{
		Handler: middleware.Chain(r.Handler,
			middleware.CORS(cfg.HTTP.CORSAllowOrigin),
			middleware.AccessLog(zapLogger),
		),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	manager.Go("http_server", func() error {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver))
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	waitErr := manager.Wait(appCtx)
	if waitErr != nil {
		zapLogger.Error("stopping after component failure", zap.Error(waitErr))
	}
	shutdown()
	return waitErr
}
