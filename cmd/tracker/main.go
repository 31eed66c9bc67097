package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/internal/config"
	"github.com/bulgareesoft/bulgaree/internal/domain/models"
	"github.com/bulgareesoft/bulgaree/internal/repository/local"
	"github.com/bulgareesoft/bulgaree/internal/repository/supabase"
	"github.com/bulgareesoft/bulgaree/internal/scheduler"
	"github.com/bulgareesoft/bulgaree/internal/server/handlers"
	"github.com/bulgareesoft/bulgaree/internal/server/router"
	"github.com/bulgareesoft/bulgaree/internal/service/session"
	syncsvc "github.com/bulgareesoft/bulgaree/internal/service/sync"
	"github.com/bulgareesoft/bulgaree/internal/service/tracker"
	"github.com/bulgareesoft/bulgaree/pkg/clients/updates"
	"github.com/bulgareesoft/bulgaree/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	remote := supabase.NewClient(cfg.Remote, baseLogger.Named("repo.supabase"))
	store := local.NewStore(cfg.Storage.DataDir, baseLogger.Named("repo.local"))
	sess := session.New(remote, baseLogger.Named("svc.session"))

	queue := syncsvc.NewQueue(16, baseLogger.Named("svc.sync.queue"))
	queue.Start()
	defer queue.Stop()

	inventoryReconciler := syncsvc.NewReconciler[models.InventoryRecord](
		models.KindInventory,
		store,
		supabase.NewCollection[models.InventoryRecord](remote, models.KindInventory.Collection()),
		queue,
		baseLogger.Named("svc.sync.inventory"),
	)
	salesReconciler := syncsvc.NewReconciler[models.SaleRecord](
		models.KindSales,
		store,
		supabase.NewCollection[models.SaleRecord](remote, models.KindSales.Collection()),
		queue,
		baseLogger.Named("svc.sync.sales"),
	)

	trackerSvc := tracker.NewService(inventoryReconciler, salesReconciler, sess, baseLogger.Named("svc.tracker"))
	trackerSvc.LoadAll(context.Background())

	updatesClient := updates.NewClient(cfg.Update.VersionURL, baseLogger.Named("clients.updates"))
	sched := scheduler.NewScheduler(cfg.Update, updatesClient, func(info updates.VersionInfo) {
		baseLogger.Info("update ready for download",
			zap.String("version", info.Version), zap.String("url", info.URL))
	}, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	authHandler := handlers.NewAuthHandler(sess, cfg, baseLogger.Named("handlers.auth"))
	recordsHandler := handlers.NewRecordsHandler(trackerSvc, baseLogger.Named("handlers.records"))
	updatesHandler := handlers.NewUpdatesHandler(sched, updatesClient, baseLogger.Named("handlers.updates"))
	engine := router.New(authHandler, recordsHandler, updatesHandler, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         "127.0.0.1:" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
