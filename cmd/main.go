package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"go_arena/internal/adapters"
	"go_arena/internal/bootstrap"
	authDelivery "go_arena/internal/delivery/auth"
	gameDelivery "go_arena/internal/delivery/game"
	ownMiddleware "go_arena/internal/middleware"
	"go_arena/internal/repository"
	gameuc "go_arena/internal/usecase/game"
)

type mainDeliveryHandler struct {
	game *gameDelivery.GameHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Errorw("Failed to setup configuration", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, *cfg)
	defer databaseAdapters.close(context.Background())

	health := adapters.NewAdapterHealth(logger)
	go func() {
		if err := health.Serve(cfg.GrpcPort); err != nil {
			logger.Errorw("gRPC health server stopped", "error", err)
		}
	}()
	defer health.Close()

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(*cfg, logger, databaseAdapters)
	handlers.Router(r, cfg.IsLocalCors)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}
	go func() {
		<-ctx.Done()
		health.SetServing(false)
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorw("HTTP shutdown failed", "error", err)
		}
	}()

	health.SetServing(true)
	logger.Infof("Server is running on port %s (storage: %s)", cfg.ServerPort, cfg.StorageMode)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorw("Failed to start server", "error", err)
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h.game.Routes(r)
}

// initDatabaseAdapters connects to Mongo and Redis. In memory mode nothing
// is connected and both adapters stay nil.
func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg bootstrap.Config) *dataBaseAdapters {
	if cfg.StorageMode == bootstrap.StorageMemory {
		log.Info("Running with in-memory storage")
		return &dataBaseAdapters{}
	}

	mongoAdapter := adapters.NewAdapterMongo(&cfg)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatalw("Failed to initialize MongoDB", "error", err)
	}

	redisAdapter := adapters.NewAdapterRedis(&cfg)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatalw("Failed to initialize Redis", "error", err)
	}

	log.Info("Database adapters initialized")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func (d *dataBaseAdapters) close(ctx context.Context) {
	if d.mongoAdapter != nil {
		_ = d.mongoAdapter.Close(ctx)
	}
	if d.redisAdapter != nil {
		_ = d.redisAdapter.Close(ctx)
	}
}

func initializeDeliveryHandlers(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	databaseAdapters *dataBaseAdapters,
) *mainDeliveryHandler {
	var (
		gameUC  *gameuc.GameUseCase
		players authDelivery.PlayerResolver
	)

	if databaseAdapters.mongoAdapter == nil {
		gameUC = gameuc.NewGameUseCase(repository.NewGameMapStorage(), nil, log, cfg.DefaultBoardSize)
		players = authDelivery.HeaderResolver{}
	} else {
		redisClient := databaseAdapters.redisAdapter.GetClient()
		gameUC = gameuc.NewGameUseCase(
			repository.NewGameRepository(log, databaseAdapters.mongoAdapter.Database),
			repository.NewBoardPreviewStorage(redisClient, cfg.BoardPreviewTTL),
			log,
			cfg.DefaultBoardSize,
		)
		players = authDelivery.NewSessionResolver(repository.NewSessionRedisStorage(redisClient, log), log)
	}

	return &mainDeliveryHandler{
		game: gameDelivery.NewGameHandler(log, gameUC, players),
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
