package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/iamvkosarev/docchat/config"
	"github.com/iamvkosarev/docchat/internal/docs"
	"github.com/iamvkosarev/docchat/internal/observability"
	"github.com/iamvkosarev/docchat/internal/server"
	in_memory "github.com/iamvkosarev/docchat/internal/storage/in-memory"
	key_value "github.com/iamvkosarev/docchat/internal/storage/key-value"
	"github.com/iamvkosarev/docchat/internal/storage/sqlite"
	"github.com/iamvkosarev/docchat/internal/usecase"
	"github.com/redis/go-redis/v9"
	"github.com/sourcegraph/conc"
)

func Run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := observability.Logger()

	documentation, err := docs.Load(ctx, cfg.Docs.FilePath, cfg.Docs.PageURL)
	if err != nil {
		return fmt.Errorf("failed to load documentation: %w", err)
	}
	log.Info("documentation loaded", "bytes", len(documentation))

	var (
		chatStorage usecase.ChatStorage
		userStorage usecase.UserStorage
	)
	switch cfg.Storage.Driver {
	case "memory":
		log.Info("using in-memory storage")
		chatStorage = in_memory.NewChatStorage()
		userStorage = in_memory.NewUserStorage()
	case "sqlite":
		log.Info("using sqlite storage", "path", cfg.Storage.SQLitePath)
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		defer db.Close()
		chatStorage = sqlite.NewChatStorage(db)
		userStorage = sqlite.NewUserStorage(db)
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	var tokenStorage usecase.TokenStorage
	if cfg.Redis.Endpoint != "" {
		log.Info("using redis token storage", "endpoint", cfg.Redis.Endpoint)
		rdb := redis.NewClient(
			&redis.Options{
				Addr: cfg.Redis.Endpoint,
			},
		)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to ping redis: %w", err)
		}
		tokenStorage = key_value.NewTokenStorage(rdb)
	} else {
		log.Info("using in-memory token storage")
		tokenStorage = in_memory.NewTokenStorage()
	}

	openAIUsecase := usecase.NewOpenAIUsecase(cfg.OpenAI, documentation)

	userUsecase := usecase.NewUserUsecase(
		usecase.UserUsecaseDeps{
			UserStorage:  userStorage,
			TokenStorage: tokenStorage,
		},
		cfg.Redis.TokenTTL,
	)

	chatUsecase := usecase.NewChatUsecase(
		usecase.ChatUsecaseDeps{
			ChatStorage: chatStorage,
			Answer:      openAIUsecase,
		},
	)

	handler := server.NewServer(
		server.ServerDeps{
			User: userUsecase,
			Chat: chatUsecase,
		},
		cfg.HTTP.AllowedOrigin,
	)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: handler,
	}

	var serveErr error
	wg := conc.NewWaitGroup()
	wg.Go(
		func() {
			log.Info("server listening", "addr", cfg.HTTP.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr = err
				stop()
			}
		},
	)
	wg.Go(
		func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Error("failed to shut down server", "error", err)
			}
		},
	)
	wg.Wait()

	if serveErr != nil {
		return fmt.Errorf("server failed: %w", serveErr)
	}
	log.Info("server stopped")
	return nil
}
