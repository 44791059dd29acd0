package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	watermarkd "github.com/hueining/watermarkd"
	"github.com/hueining/watermarkd/internal/cleanup"
	"github.com/hueining/watermarkd/internal/config"
	"github.com/hueining/watermarkd/internal/db"
	"github.com/hueining/watermarkd/internal/fonts"
	"github.com/hueining/watermarkd/internal/handler"
	"github.com/hueining/watermarkd/internal/storage"
	"github.com/hueining/watermarkd/internal/visible"
)

func Run(ctx context.Context, cfg *config.Config) error {
	store, err := storage.New(cfg.UploadDir(), cfg.OutputDir())
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database, watermarkd.MigrationFS); err != nil {
		return err
	}
	slog.Info("database ready")

	// Start cleanup scheduler for aged uploads and outputs
	cleaner := &cleanup.Cleaner{
		Dirs:     []string{store.UploadDir, store.OutputDir},
		Interval: time.Duration(cfg.CleanupIntervalMins) * time.Minute,
		MaxAge:   time.Duration(cfg.FileMaxAgeHours) * time.Hour,
	}
	cleaner.Start(ctx)
	defer cleaner.Stop()

	engine := &visible.Engine{Fonts: fonts.Dir{Root: cfg.FontDir}}

	// Rate limiter for processing endpoints: 2 req/sec sustained, burst 10
	apiRL := handler.NewRateLimiter(2.0, 10)
	defer apiRL.Stop()

	h := handler.New(database, cfg, store, engine)
	router := h.Routes(apiRL)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		srv.Shutdown(context.Background())
	}()

	slog.Info("server starting", "addr", cfg.ListenAddr, "data_dir", cfg.DataDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
