package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/selene/internal/adapters/assets"
	natsadapter "github.com/samirrijal/selene/internal/adapters/nats"
	"github.com/samirrijal/selene/internal/adapters/postgres"
	"github.com/samirrijal/selene/internal/adapters/valkey"
	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/core/ports"
	"github.com/samirrijal/selene/internal/core/usecases"
	"github.com/samirrijal/selene/internal/pkg/config"
	"github.com/samirrijal/selene/internal/pkg/logging"
	"github.com/samirrijal/selene/internal/workflows"
)

// Usage:
//
//	refresher worker          run the Temporal worker
//	refresher run <dataset>   start a refresh and wait for it
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: refresher <worker|run <dataset>>")
	}

	cfg, err := config.Load("selene-refresher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, "selene-refresher")

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	switch os.Args[1] {
	case "worker":
		runWorker(c, cfg)
	case "run":
		if len(os.Args) < 3 {
			log.Fatal("usage: refresher run <dataset>")
		}
		startRefresh(c, cfg, os.Args[2])
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runWorker(c client.Client, cfg *config.Config) {
	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	acts := &workflows.RefreshActivities{
		Source: assets.NewSource(cfg.Assets.Root, cfg.Assets.FetchTimeout),
		Store:  postgres.NewDatasetRepo(db),
	}

	if cache, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, cache invalidation disabled", "error", err)
	} else {
		defer cache.Close()
		var cs ports.CacheService = cache
		acts.Cache = usecases.NewDatasetLoader(acts.Store, cs, cfg.Valkey.TTL)
	}

	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, refresh notifications disabled", "error", err)
	} else {
		defer pub.Close()
		acts.Events = pub
	}

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.DatasetRefreshWorkflow)
	w.RegisterActivity(acts)

	slog.Info("refresher worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

func startRefresh(c client.Client, cfg *config.Config, name string) {
	ds, err := domain.ParseDataset(name)
	if err != nil || ds.IsNone() {
		log.Fatalf("unknown dataset %q", name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "dataset-refresh-" + ds.Folder(),
		TaskQueue: cfg.Temporal.TaskQueue,
	}, workflows.DatasetRefreshWorkflow, workflows.RefreshInput{Dataset: string(ds)})
	if err != nil {
		log.Fatalf("start workflow: %v", err)
	}

	var res workflows.RefreshResult
	if err := run.Get(ctx, &res); err != nil {
		log.Fatalf("refresh %s: %v", ds, err)
	}
	log.Printf("[%s] %d rows, notified=%v", ds, res.Rows, res.Published)
}
