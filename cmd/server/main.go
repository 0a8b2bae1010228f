package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	app "github.com/KiiTuNp/voteapp/internal/app"
	httpx "github.com/KiiTuNp/voteapp/internal/http"
	meeting "github.com/KiiTuNp/voteapp/internal/meeting"
	store "github.com/KiiTuNp/voteapp/internal/store"
	ws "github.com/KiiTuNp/voteapp/internal/ws"
	"github.com/KiiTuNp/voteapp/pkg/ratelimit"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.Env)

	// Cancel on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store.open", "driver", cfg.StoreDriver, "err", err)
		log.Fatal(err)
	}
	defer st.Close()

	// WebSocket hub
	hub := ws.NewHub(logger, ws.ConnOptions{
		SendBuffer:   cfg.WSSendBuffer,
		WriteTimeout: cfg.WSWriteTimeout,
		PingInterval: cfg.WSPingInterval,
	})

	meetings := meeting.New(st, hub, logger, meeting.Options{TimerUnit: cfg.TimerUnit})
	defer meetings.Close()

	limiter := ratelimit.New(cfg.RatePerMin, cfg.RateBurst, 10*time.Minute)
	go limiter.Run(ctx)

	// HTTP + WS router
	router := httpx.NewRouter(httpx.Deps{
		Config:   cfg,
		Log:      logger,
		Hub:      hub,
		Meetings: meetings,
		Limiter:  limiter,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server.listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server.crash", "err", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("server.shutdown.start")

	// shutdown
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info("server.shutdown.complete")
	_ = os.Stdout.Sync()
}

// openStore picks the backend named by STORE_DRIVER. Postgres gets its
// migrations applied before use.
func openStore(ctx context.Context, cfg app.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.StoreDriver != "postgres" {
		logger.Warn("store.memory", "msg", "data is lost on restart")
		return store.NewMemory(), nil
	}
	pg, err := store.NewPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := store.RunMigrations(ctx, pg, logger); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}
