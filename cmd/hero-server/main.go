// Package main is the entry point for the Daily Hero game server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MRamiBalles/DailyHero/server/internal/engine"
	"github.com/MRamiBalles/DailyHero/server/internal/events"
	"github.com/MRamiBalles/DailyHero/server/internal/infra/storage"
	"github.com/MRamiBalles/DailyHero/server/internal/network"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/config"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/logger"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/metrics"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/random"
)

func main() {
	appLogger := logger.NewLogger()
	if err := run(appLogger); err != nil {
		appLogger.Error("Server failed: " + err.Error())
		os.Exit(1)
	}
}

func run(appLogger *logger.Logger) error {
	appLogger.Info("Initializing Daily Hero server...")

	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	balance, catalog, err := config.LoadBalance(cfg.BalancePath)
	if err != nil {
		return err
	}

	appLogger.Infof("Initializing SQLite database %q...", cfg.DBPath)
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	m := metrics.Get()
	store := storage.NewSQLiteStore(db, cfg.GameID, appLogger, m)
	eventRepo := storage.NewSQLiteEventRepository(db)
	sink := storage.NewEventSink(eventRepo, cfg.GameID).Instrument(m)

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(sink, appLogger)

	seed := cfg.Seed
	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			return err
		}
	}

	appLogger.Info("Bootstrapping Engine...")
	clock := engine.RealClock{}
	gameEngine, err := engine.New(store, clock, random.New(seed), appLogger,
		engine.WithCatalog(catalog),
		engine.WithBalance(balance),
		engine.WithEventLog(eventLog),
		engine.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state, err := gameEngine.Initialize(ctx)
	if errors.Is(err, engine.ErrReadFailure) {
		return err
	}
	if err != nil {
		// The loaded state is still served; the next check retries the save.
		appLogger.Warn("Initial daily check failed: " + err.Error())
	}
	appLogger.Infof("Hero loaded: level %d, %d XP, %d gold, can fight today: %v",
		state.Player.Level, state.Player.XP, state.Player.Gold, state.CanFightToday)

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(gameEngine, cfg.Tuning(), appLogger, m)
	eventLog.Subscribe(hub.BroadcastEvent)

	ticker := engine.NewTicker(gameEngine, clock, eventLog, appLogger, cfg.DailyCheckInterval)

	mux := http.NewServeMux()
	network.NewAPI(gameEngine, storage.NewRecapper(eventRepo), cfg.GameID, appLogger).RegisterRoutes(mux)
	network.NewHistoryHandler(eventLog, appLogger).RegisterRoutes(mux)
	mux.HandleFunc("/metrics", m.Handler())
	mux.HandleFunc("/metrics/prometheus", m.PrometheusHandler())
	mux.HandleFunc("/ws", hub.ServeWS)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return ticker.Run(gctx) })
	g.Go(func() error {
		appLogger.Infof("HTTP API & WS Server listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
