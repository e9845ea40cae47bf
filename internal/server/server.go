// Package server runs the storefront process: visitor store, image
// checker, websocket hub, scheduler, gRPC health and the HTTP server.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/config"
	"github.com/shashiranjanraj/bloomthread/internal/kernel"
	"github.com/shashiranjanraj/bloomthread/pkg/cache"
	"github.com/shashiranjanraj/bloomthread/pkg/database"
	"github.com/shashiranjanraj/bloomthread/pkg/event"
	"github.com/shashiranjanraj/bloomthread/pkg/grpc"
	"github.com/shashiranjanraj/bloomthread/pkg/imagecheck"
	"github.com/shashiranjanraj/bloomthread/pkg/kv"
	"github.com/shashiranjanraj/bloomthread/pkg/logger"
	"github.com/shashiranjanraj/bloomthread/pkg/migration"
	"github.com/shashiranjanraj/bloomthread/pkg/schedule"
	"github.com/shashiranjanraj/bloomthread/pkg/sse"
	"github.com/shashiranjanraj/bloomthread/pkg/ws"
)

const shutdownTimeout = 10 * time.Second

// Options are the serve command's flags.
type Options struct {
	Migrate bool // run pending migrations first (STORE_DRIVER=database)
}

// Start blocks until SIGINT or SIGTERM, then drains HTTP and gRPC.
func Start(opts Options) error {
	if err := config.Load(); err != nil {
		return err
	}
	if err := config.CheckSecrets(); err != nil {
		return err
	}
	closeLogs := logger.Setup()
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driver := config.StoreDriver()
	store, err := kv.Open(ctx, driver)
	if err != nil {
		return err
	}
	defer store.Close()

	if driver == "database" && opts.Migrate {
		if err := migration.New(database.DB, logWriter{}).Run(); err != nil {
			return fmt.Errorf("server: migrate: %w", err)
		}
	}

	// The redis store already connected the shared client.
	if driver != "redis" && config.Bool("IMAGE_CACHE_REDIS", false) {
		if err := cache.Connect(ctx); err != nil {
			logger.Warn("image verdicts stay in process", "error", err)
		}
	}
	defer cache.Close()

	checker := imagecheck.New(imagecheck.OptionsFromConfig())
	defer checker.Close()

	hub := ws.NewHub()
	go hub.Run(ctx)

	k, err := kernel.New(kernel.Options{
		Store:   store,
		Images:  checker,
		Events:  event.Default,
		Hub:     hub,
		Streams: sse.NewBroker(),
	})
	if err != nil {
		return err
	}
	go k.Limiter.RunSweeper(ctx)

	sched := schedule.New()
	if checker.Options().Enabled {
		sched.EveryMinutes(config.ImageRefreshMinutes()).
			Name("images:warm").
			WithoutOverlapping().
			Run(func(ctx context.Context) { checker.Warm(ctx, models.SampleImageURLs()) })
	}
	sched.Start(ctx)

	grpcSrv, err := grpc.Start(config.GRPCPort(), store.Ping)
	if err != nil {
		logger.Warn("gRPC health disabled", "error", err)
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "addr", srv.Addr, "store", driver, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			grpc.Stop(grpcSrv)
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	grpc.Stop(grpcSrv)
	sched.Wait()
	return err
}

// logWriter sends migration progress to the process logger.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	logger.Info(string(bytes.TrimRight(p, "\r\n")))
	return len(p), nil
}
