package serverhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"facility-recon/internal/config"
	"facility-recon/internal/publish"
	recHnd "facility-recon/internal/reconcile/handler"
	"facility-recon/internal/storage"
)

// BuildDeps поднимает опциональные зависимости: историю (HISTORY_DB)
// и выкладку в S3 (S3_BUCKET). closeFn закрывает то, что открыли.
func BuildDeps(ctx context.Context, cfg config.Config, logger zerolog.Logger) (recHnd.Deps, func(), error) {
	d := recHnd.Deps{Cfg: cfg, Logger: logger}
	closeFn := func() {}

	if cfg.HistoryDB != "" {
		store, err := storage.Open(ctx, cfg.HistoryDB)
		if err != nil {
			return d, closeFn, fmt.Errorf("open history: %w", err)
		}
		d.History = store
		closeFn = func() {
			if err := store.Close(); err != nil {
				logger.Warn().Err(err).Msg("close history")
			}
		}
		logger.Info().Str("path", cfg.HistoryDB).Msg("run history enabled")
	}

	if cfg.S3.Enabled() {
		pub, err := publish.NewS3Publisher(ctx, publish.Config{
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Region:    cfg.S3.Region,
			Profile:   cfg.S3.Profile,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			closeFn()
			return d, func() {}, fmt.Errorf("s3 publisher: %w", err)
		}
		d.Publisher = pub
		logger.Info().Str("bucket", cfg.S3.Bucket).Str("prefix", cfg.S3.Prefix).Msg("report publishing enabled")
	}
	return d, closeFn, nil
}

// Serve слушает cfg.Addr() до отмены ctx, затем мягко гасит сервер.
func Serve(ctx context.Context, d recHnd.Deps) error {
	srv := &http.Server{
		Addr:              d.Cfg.Addr(),
		Handler:           NewRouter(d),
		ReadHeaderTimeout: 10 * time.Second,
	}
	d.Logger.Info().Str("addr", srv.Addr).Msg("server starting")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	d.Logger.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	d.Logger.Info().Msg("bye")
	return nil
}
