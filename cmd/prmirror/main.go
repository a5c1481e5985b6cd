package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/prmirror/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/prmirror/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/prmirror/internal/adapter/driving/http"
	"github.com/ericfisherdev/prmirror/internal/application"
	"github.com/ericfisherdev/prmirror/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"sync_ttl", cfg.SyncTTL,
		"sync_interval", cfg.SyncInterval,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire stores.
	repoStore := sqliteadapter.NewRepositoryRepo(db)
	prStore := sqliteadapter.NewPullRequestRepo(db)
	reviewStore := sqliteadapter.NewReviewRepo(db)
	commentStore := sqliteadapter.NewCommentRepo(db)
	userStore := sqliteadapter.NewUserRepo(db)
	stateStore := sqliteadapter.NewSyncStateRepo(db)

	// 6. Create GitHub client.
	ghClient := githubadapter.NewClient(cfg.GitHubToken)

	// 7. Create services.
	syncSvc := application.NewSyncService(
		ghClient,
		repoStore,
		prStore,
		reviewStore,
		commentStore,
		userStore,
		stateStore,
		application.SyncConfig{
			TTL:                      cfg.SyncTTL,
			MaxRetries:               cfg.MaxRetries,
			MaxConcurrentRemoteCalls: cfg.MaxConcurrentSyncs,
			Interval:                 cfg.SyncInterval,
		},
	)
	cacheSvc := application.NewCacheService(syncSvc, repoStore, prStore, reviewStore, commentStore, stateStore)
	dupSvc := application.NewDuplicationService(ghClient, repoStore, prStore, reviewStore, commentStore, stateStore)

	// 8. Start the background sync loop.
	go syncSvc.Run(ctx)

	// 9. Create HTTP handler and register routes.
	apiHandler := httphandler.NewHandler(cacheSvc, syncSvc, dupSvc, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("shutdown complete")
	return nil
}
