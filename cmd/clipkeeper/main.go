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

	clipboardadapter "github.com/ericfisherdev/clipkeeper/internal/adapter/driven/clipboard"
	cryptoadapter "github.com/ericfisherdev/clipkeeper/internal/adapter/driven/crypto"
	sqliteadapter "github.com/ericfisherdev/clipkeeper/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/clipkeeper/internal/adapter/driving/http"
	"github.com/ericfisherdev/clipkeeper/internal/application"
	"github.com/ericfisherdev/clipkeeper/internal/config"
	"github.com/ericfisherdev/clipkeeper/internal/domain/model"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid values).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"poll_interval", cfg.PollInterval,
		"retention_days", cfg.RetentionDays,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
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
	version, err := sqliteadapter.SchemaVersion(db.Writer)
	if err != nil {
		return err
	}
	slog.Info("migrations complete", "schema_version", version)

	// 5. Wire adapters.
	clipStore := sqliteadapter.NewClipRepo(db)
	settingStore := sqliteadapter.NewSettingRepo(db)
	clipboard := clipboardadapter.NewSystem()
	if !clipboardadapter.Supported() {
		slog.Warn("no clipboard utility found, capture will stay idle until one is installed")
	}

	// 6. Passwords start locked; the key provider is filled on passkey verify.
	keys := application.NewKeyProvider(nil)

	// 7. Create services.
	monitor := application.NewMonitorService(clipboard, clipStore, settingStore, keys, cfg.PollInterval)
	monitor.OnNewClip(func(ev model.ClipEvent) {
		slog.Debug("new clip", "id", ev.ID, "category", ev.Category)
	})

	clipSvc := application.NewClipService(
		clipStore,
		settingStore,
		clipboard,
		monitor,
		keys,
		cryptoadapter.NewCipher,
		cryptoadapter.SHA256Hasher{},
	)
	if err := clipSvc.Initialize(ctx); err != nil {
		return err
	}
	defer clipSvc.Shutdown()

	// The retention loop must exit before the database is closed.
	retentionSvc := application.NewRetentionService(clipStore, cfg.RetentionDays, cfg.RetentionInterval)
	retentionDone := retentionSvc.Start(ctx)
	defer func() {
		stop()
		<-retentionDone
	}()

	// 8. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(clipSvc, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(apiHandler, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("clipkeeper started",
		"listen_addr", cfg.ListenAddr,
		"poll_interval", cfg.PollInterval,
	)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for HTTP server drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
