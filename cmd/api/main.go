package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/selene/internal/adapters/assets"
	"github.com/samirrijal/selene/internal/adapters/http"
	natsadapter "github.com/samirrijal/selene/internal/adapters/nats"
	"github.com/samirrijal/selene/internal/adapters/postgres"
	"github.com/samirrijal/selene/internal/adapters/valkey"
	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/core/ports"
	"github.com/samirrijal/selene/internal/core/usecases"
	"github.com/samirrijal/selene/internal/pkg/config"
	"github.com/samirrijal/selene/internal/pkg/logging"
	"github.com/samirrijal/selene/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("selene-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, "selene-api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	source := assets.NewSource(cfg.Assets.Root, cfg.Assets.FetchTimeout)

	// Database is only required when rows are served from the store.
	var (
		db       *postgres.DB
		datasets ports.DatasetRepository
		rows     ports.DatasetSource = source
	)
	db, err = postgres.New(ctx, cfg.Database.DSN())
	switch {
	case err == nil:
		defer db.Close()
		repo := postgres.NewDatasetRepo(db)
		datasets = repo
		if cfg.Assets.Source == config.SourcePostgres {
			rows = repo
		}
	case cfg.Assets.Source == config.SourcePostgres:
		log.Fatalf("database: %v", err)
	default:
		slog.Warn("database unavailable, serving rows from assets", "error", err)
		db = nil
	}

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}
	loader := usecases.NewDatasetLoader(rows, cacheSvc, cfg.Valkey.TTL)

	// NATS
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// Raw NATS connection for WebSocket relay
	var natsConn *nats.Conn
	if nc, err := natsadapter.RawConn(cfg.NATS.URL); err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer nc.Close()
		natsConn = nc
	}

	landmarks := loadLandmarks(ctx, cfg, source, db)
	svc := usecases.NewSelectionService(
		loader,
		usecases.NewGazetteer(landmarks, cfg.Gazetteer.MaxRadiusKm),
		events,
		usecases.SelectionOptions{FetchTimeout: cfg.Assets.FetchTimeout},
	)
	defer svc.Close()

	// Refreshed datasets: drop our cached copy and reload if active.
	if sub, err := natsadapter.NewSubscriber(cfg.NATS.URL); err != nil {
		slog.Warn("nats subscriber unavailable", "error", err)
	} else {
		defer sub.Close()
		err := sub.SubscribeRefreshed(ctx, func(ctx context.Context, ev *domain.DatasetRefreshed) error {
			if err := loader.Invalidate(ctx, ev.Dataset); err != nil {
				slog.Warn("cache invalidate failed", "dataset", ev.Dataset, "error", err)
			}
			if svc.Reload(ctx, ev.Dataset) {
				slog.Info("active dataset refreshed", "dataset", ev.Dataset, "rows", ev.Rows)
			}
			return nil
		})
		if err != nil {
			slog.Warn("subscribe refreshed failed", "error", err)
		}
	}

	deps := &http.Dependencies{
		Selection: svc,
		Paths:     source.Paths(),
		Source:    loader,
		Datasets:  datasets,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "Selene API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.AllowOrigins, ", "),
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "assets", cfg.Assets.Root, "source", cfg.Assets.Source)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// loadLandmarks picks the gazetteer: a configured CSV file first, then the
// store, then the built-in table.
func loadLandmarks(ctx context.Context, cfg *config.Config, source *assets.Source, db *postgres.DB) []domain.Landmark {
	if f := cfg.Gazetteer.File; f != "" {
		file, err := os.Open(f)
		if err == nil {
			defer file.Close()
			lms, err := assets.ParseLandmarksCSV(file)
			if err == nil && len(lms) > 0 {
				slog.Info("landmarks loaded", "file", f, "count", len(lms))
				return lms
			}
		}
		slog.Warn("landmark file unusable, falling back", "file", f, "error", err)
	}

	if db != nil {
		lms, err := postgres.NewLandmarkRepo(db).Landmarks(ctx)
		if err != nil {
			slog.Warn("stored landmarks unavailable", "error", err)
		} else if len(lms) > 0 {
			slog.Info("landmarks loaded from store", "count", len(lms))
			return lms
		}
	}

	if cfg.Assets.Source == config.SourceAssets {
		fetchCtx, cancel := context.WithTimeout(ctx, cfg.Assets.FetchTimeout)
		defer cancel()
		if lms, err := source.Landmarks(fetchCtx); err == nil && len(lms) > 0 {
			slog.Info("landmarks loaded from assets", "count", len(lms))
			return lms
		}
	}

	return domain.DefaultLandmarks()
}
