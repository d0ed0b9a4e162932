package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/iudanet/inkpage/internal/history"
	"github.com/iudanet/inkpage/internal/pagestore"
	"github.com/iudanet/inkpage/internal/server"
	"github.com/iudanet/inkpage/internal/server/config"
	"github.com/iudanet/inkpage/internal/server/middleware"
	"github.com/iudanet/inkpage/internal/server/storage"
	"github.com/iudanet/inkpage/internal/server/storage/boltdb"
	"github.com/iudanet/inkpage/internal/server/storage/cache"
	"github.com/iudanet/inkpage/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// pageStore хранилище страниц, которое умеет все, что нужно серверу
type pageStore interface {
	storage.PageStorage
	storage.PageLister
	Ping(ctx context.Context) error
	io.Closer
}

func main() {
	cfg, err := config.Parse(os.Args[0], os.Args[1:], os.Getenv)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Show version and exit if requested
	if cfg.ShowVersion {
		printVersion()
		os.Exit(0)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("opening database", slog.String("store", cfg.Store), slog.String("path", cfg.DBPath))
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// pages используется сервисом, store остается для health и списка страниц
	var pages storage.PageStorage = store
	if cfg.CacheSize > 0 {
		cached, err := cache.New(store, cfg.CacheSize)
		if err != nil {
			return fmt.Errorf("failed to create page cache: %w", err)
		}
		pages = cached
	}

	svc := pagestore.New(pages, logger, pagestore.WithHistory(history.NewRegistry(
		history.WithIdleTimeout(cfg.PollTimeout),
	)))

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, logger)
		defer limiter.Stop()
	}

	httpServer := &http.Server{
		Addr: cfg.Addr,
		// Отмена ctx завершает ожидающие long-poll запросы и websocket потоки
		BaseContext: func(net.Listener) context.Context { return ctx },
		Handler: server.NewRouter(server.Options{
			Logger:  logger,
			Pages:   svc,
			Pinger:  store,
			Limiter: limiter,
			Version: Version,
		}),
	}

	wg := new(sync.WaitGroup)

	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.RunFader(ctx, store, pagestore.FadeConfig{
			Interval: cfg.FadeInterval,
			Delta:    cfg.FadeDelta,
			Cutoff:   cfg.FadeCutoff,
		})
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.RunJanitor(ctx, cfg.JanitorInterval, cfg.IdleTTL)
	}()

	serveErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("server started", slog.String("addr", cfg.Addr), slog.String("version", Version))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(exit)

	var runErr error
	select {
	case sig := <-exit:
		logger.Info("signal caught", slog.String("signal", sig.String()))
	case err := <-serveErr:
		runErr = fmt.Errorf("server listen failed: %w", err)
	}

	// Сначала останавливаем фоновые задачи и long-poll ожидания
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", slog.Any("error", err))
		_ = httpServer.Close()
	}

	wg.Wait()
	logger.Info("server stopped")
	return runErr
}

func openStore(ctx context.Context, cfg *config.Config) (pageStore, error) {
	switch cfg.Store {
	case config.StoreBolt:
		s, err := boltdb.New(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt database: %w", err)
		}
		return s, nil
	default:
		s, err := sqlite.New(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return s, nil
	}
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts)), nil
}

func printVersion() {
	fmt.Printf("InkPage Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
