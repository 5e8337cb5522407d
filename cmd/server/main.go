// @title Posts API
// @version 1.0
// @description 单资源帖子服务：列表、创建、删除。
// @host localhost:8000
// @BasePath /
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/gin-posts/config"
	"github.com/d60-Lab/gin-posts/internal/api"
	"github.com/d60-Lab/gin-posts/internal/api/handler"
	"github.com/d60-Lab/gin-posts/internal/repository"
	"github.com/d60-Lab/gin-posts/internal/service"
	"github.com/d60-Lab/gin-posts/pkg/database"
	"github.com/d60-Lab/gin-posts/pkg/logger"
	"github.com/d60-Lab/gin-posts/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to ./config.yaml or ./config/config.yaml)")
	flag.Parse()

	// run 返回后其 defer 已执行完毕（关库、flush），此时再决定退出码
	if err := run(*configPath); err != nil {
		log.Printf("server exited: %v", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()
	sentryEnabled, flushSentry, err := tracing.InitSentry(cfg.Sentry.DSN, cfg.Sentry.Environment)
	if err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	defer flushSentry()

	db, err := database.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	repo := repository.NewPostRepository(db, database.NewGuard())
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Warn("close database", zap.Error(err))
		}
	}()
	if err := repo.InitSchema(ctx); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	h := handler.NewHandler(service.NewPostService(repo), repo)
	router := api.SetupRouter(h, api.Options{
		Server:        cfg.Server,
		RateLimit:     cfg.RateLimit,
		Tracing:       cfg.Tracing,
		SentryEnabled: sentryEnabled,
	})

	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router}
	if err := serve(ctx, srv, cfg.Server.ShutdownTimeout); err != nil {
		logger.Error("http server failed", zap.Error(err))
		return err
	}
	return nil
}

// serve 阻塞直到监听失败或 ctx 结束，随后优雅关闭 srv。
// 只有监听失败才返回错误；收到信号正常退出返回 nil。
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var listenErr error
	select {
	case listenErr = <-errCh:
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", zap.Error(err))
	}
	return listenErr
}
