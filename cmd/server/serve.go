package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stih/tank-insights/internal/backup"
	"github.com/stih/tank-insights/internal/config"
	"github.com/stih/tank-insights/internal/database"
	"github.com/stih/tank-insights/internal/datasync"
	"github.com/stih/tank-insights/internal/handler"
	"github.com/stih/tank-insights/internal/middleware"
	"github.com/stih/tank-insights/internal/queue"
	"github.com/stih/tank-insights/internal/repository"
	"github.com/stih/tank-insights/internal/router"
	"github.com/stih/tank-insights/internal/service"
	"github.com/stih/tank-insights/internal/store"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != "" {
			cfg.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "server port (default from APP_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg config.Config) error {
	log := zap.L()
	st := store.New(cfg.DataDir)
	bk := backup.New(cfg.DataDir, cfg.BackupDir, cfg.RawDir)

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	origin := instanceID()
	opts := datasync.Options{Backups: bk, Origin: origin}
	if p := middleware.NewCachePurger(cacheCfg, rdb); p != nil {
		opts.Purger = p
	}

	var runs *repository.SyncRunRepo
	if cfg.Store.Driver != "" {
		db, err := database.Open(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		runs = repository.NewSyncRunRepo(db)
		if err := runs.EnsureSchema(ctx); err != nil {
			return err
		}
		opts.Runs = runs
	}

	if cfg.Queue.Enabled {
		opts.Publisher = service.NewPublisher(cfg.Queue.URL)
		go func() {
			h := queue.NewSyncHandler(st, origin, cfg.Queue.LogPath)
			if err := queue.StartSyncConsumer(ctx, cfg.Queue.URL, h); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("sync consumer stopped", zap.Error(err))
			}
		}()
	}

	refresher := &datasync.ScriptRefresher{
		Python:  cfg.Sync.Python,
		Script:  cfg.Sync.Script,
		Workdir: cfg.Sync.Workdir,
		Timeout: cfg.Sync.Timeout,
	}
	syncer := datasync.NewSyncer(refresher, st, opts)

	e := router.New()
	router.RegisterRoutes(e, &handler.OpsHandler{Cfg: cfg})
	router.RegisterPublic(e, handler.NewPublicHandler(st),
		middleware.NewTokenBucket(rlCfg, rdb),
		middleware.NewRedisCache(cacheCfg, rdb),
	)
	router.RegisterAdmin(e, &handler.AdminHandler{
		Cfg:     cfg,
		Admins:  service.NewAdminStore(cfg.AdminSettingsPath),
		Syncer:  syncer,
		Runs:    runs,
		Backups: bk,
		Store:   st,
	}, cfg.JWTSecret, middleware.NewTokenBucket(rlCfg.ForLogin(), rdb), middleware.NewTokenBucket(rlCfg, rdb))

	go func() {
		<-ctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()

	log.Info("starting server",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("data_dir", cfg.DataDir),
		zap.String("instance", origin),
		zap.Bool("redis", rdb != nil),
		zap.Bool("queue", cfg.Queue.Enabled),
		zap.String("history", cfg.Store.Driver),
	)
	if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

// instanceID names this process in data.synced events.
func instanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "instance"
	}
	return host + "-" + uuid.NewString()[:8]
}
