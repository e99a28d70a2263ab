package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	clipboardadapter "github.com/ericfisherdev/clipkeeper/internal/adapter/driven/clipboard"
	cryptoadapter "github.com/ericfisherdev/clipkeeper/internal/adapter/driven/crypto"
	sqliteadapter "github.com/ericfisherdev/clipkeeper/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/clipkeeper/internal/application"
	"github.com/ericfisherdev/clipkeeper/internal/config"
	"github.com/ericfisherdev/clipkeeper/internal/domain/port/driven"
)

// newClipboard is replaced in tests.
var newClipboard = func() driven.Clipboard { return clipboardadapter.NewSystem() }

type rootOptions struct {
	dbPath  string
	verbose bool
}

// app is the wiring shared by every subcommand. The clipboard monitor is
// constructed but never started.
type app struct {
	db  *sqliteadapter.DB
	svc *application.ClipService
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "clipctl",
		Short: "Inspect and manage clipkeeper history",
		Long: `clipctl works directly on the clipkeeper database. It can list, search,
export and clean up captured clips, add new ones, and copy a clip back to
the system clipboard.

The database path comes from --db, then CLIPKEEPER_DB_PATH or the
CLIPKEEPER_CONFIG file, then the default clipkeeper.db.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to the clip database")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newListCmd(opts),
		newSearchCmd(opts),
		newExportCmd(opts),
		newCleanupCmd(opts),
		newCopyCmd(opts),
		newAddCmd(opts),
	)

	return cmd
}

// open resolves the database path, applies migrations and loads settings.
func (o *rootOptions) open(ctx context.Context) (*app, error) {
	dbPath := o.dbPath
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		dbPath = cfg.DBPath
	}

	db, err := sqliteadapter.NewDB(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}

	clipStore := sqliteadapter.NewClipRepo(db)
	settingStore := sqliteadapter.NewSettingRepo(db)
	clipboard := newClipboard()
	keys := application.NewKeyProvider(nil)
	monitor := application.NewMonitorService(clipboard, clipStore, settingStore, keys, time.Second)

	svc := application.NewClipService(
		clipStore,
		settingStore,
		clipboard,
		monitor,
		keys,
		cryptoadapter.NewCipher,
		cryptoadapter.SHA256Hasher{},
	)
	if err := svc.Load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &app{db: db, svc: svc}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()

	return fn(ctx, a)
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
