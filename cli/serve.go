package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/billbatista/acasinha-quotes/config"
	"github.com/billbatista/acasinha-quotes/eventlogger"
	"github.com/billbatista/acasinha-quotes/export"
	"github.com/billbatista/acasinha-quotes/quote"
	"github.com/billbatista/acasinha-quotes/server"
	"github.com/billbatista/acasinha-quotes/session"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quote sheet HTTP service",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, closeEvents, err := openEvents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeEvents()

	worker := eventlogger.NewWorker(events, cfg.Events.BufferSize)
	worker.Start()
	defer worker.Shutdown()

	norm := quote.NewNormalizer(cfg.LanguageTag(), cfg.Locale.CurrencySuffix)
	newSheet := func() *quote.Sheet {
		return quote.NewSheet(norm, quote.WithDefaults(cfg.Sheet.DefaultQuantity, cfg.Sheet.DefaultUnitPrice))
	}
	sessions := session.NewRepository(newSheet, cfg.SessionTTL())

	capturer, err := newCapturer(cfg, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Sessions:  sessions,
		NewSheet:  newSheet,
		Capturer:  capturer,
		Events:    events,
		Queue:     worker,
		Label:     cfg.Export.Label,
		AdminUser: cfg.Admin.Username,
		AdminHash: cfg.Admin.PasswordHash,
		Metrics:   cfg.Metrics.Enabled,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	go sweepSessions(ctx, sessions, cfg.SweepInterval(), logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// openEvents returns the configured event store. Without a driver events
// go to the log and a bounded in-memory list.
func openEvents(ctx context.Context, cfg config.Config, logger *slog.Logger) (eventlogger.EventLogger, func() error, error) {
	if cfg.Events.Driver == "" {
		return eventlogger.NewMemoryEventLogger(logger, 0), func() error { return nil }, nil
	}

	// config driver names match the registered database/sql drivers
	db, err := sql.Open(cfg.Events.Driver, cfg.Events.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}
	if cfg.Events.Driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	el, err := eventlogger.NewSqlEventLogger(db, eventlogger.Dialect(cfg.Events.Driver))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := el.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrating events table: %w", err)
	}
	logger.Info("event store ready", "driver", cfg.Events.Driver)
	return el, db.Close, nil
}

func newCapturer(cfg config.Config, logger *slog.Logger) (*export.Capturer, error) {
	renderer, err := export.NewRenderer(cfg.Export.Format, cfg.Export.FontPath, cfg.Export.Scale)
	if err != nil {
		return nil, err
	}
	opts := []export.CapturerOption{
		export.WithLabel(cfg.Export.Label),
		export.WithLogger(logger),
	}
	if cfg.Share.S3Bucket != "" {
		sharer, err := export.NewS3Sharer(cfg.Share.S3Region, cfg.Share.S3Bucket, cfg.Share.S3Prefix)
		if err != nil {
			return nil, fmt.Errorf("creating s3 sharer: %w", err)
		}
		opts = append(opts, export.WithSharer(sharer))
	}
	return export.NewCapturer(renderer, opts...), nil
}

func sweepSessions(ctx context.Context, sessions session.Repository, every time.Duration, logger *slog.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := sessions.Sweep(ctx, now); n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}
