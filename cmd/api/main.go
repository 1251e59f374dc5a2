package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/boweryconnect/companion/internal/config"
	"github.com/boweryconnect/companion/internal/handler"
	"github.com/boweryconnect/companion/internal/service/assistant"
	"github.com/boweryconnect/companion/internal/service/connectivity"
	"github.com/boweryconnect/companion/internal/service/dispatch"
	syncservice "github.com/boweryconnect/companion/internal/service/sync"
	"github.com/boweryconnect/companion/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	gateway, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("failed to open local store at %s: %v", cfg.Store.Path, err)
	}
	defer gateway.Close()

	monitor := connectivity.NewMonitor(cfg.Remote.HealthURL(), cfg.Remote.HealthCheckTimeout)
	client := dispatch.NewClient(cfg.Remote.BaseURL, cfg.Remote.RequestTimeout)
	dispatcher := dispatch.NewDispatcher(client, monitor, cfg.Remote.ContextLimit)

	assistantSvc := assistant.NewService(dispatcher, gateway, assistant.Options{
		SnapshotKeep:    cfg.Session.SnapshotKeep,
		SnapshotMaxAge:  cfg.Session.SnapshotMaxAge,
		DefaultLanguage: cfg.Session.DefaultLanguage,
	})
	defer assistantSvc.Close()

	scheduler := syncservice.NewScheduler(gateway, client, monitor, cfg.Sync.Interval, cfg.Sync.RetryCap)

	// Probe the remote once before serving so the first session opens with a
	// real connectivity verdict instead of the optimistic default.
	probeCtx, cancel := context.WithTimeout(ctx, cfg.Remote.HealthCheckTimeout)
	if monitor.CheckHealth(probeCtx) {
		log.Println("crisis service reachable, starting online")
	} else {
		log.Println("crisis service unreachable, starting in offline mode")
	}
	cancel()

	go monitor.Run(ctx, cfg.Remote.HealthCheckInterval)
	go scheduler.Run(ctx)

	router := handler.NewRouter(assistantSvc, monitor, scheduler)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("BoweryConnect companion engine listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
