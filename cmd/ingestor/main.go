package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/samirrijal/selene/internal/adapters/assets"
	"github.com/samirrijal/selene/internal/adapters/postgres"
	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/pkg/config"
	"github.com/samirrijal/selene/internal/pkg/metrics"
)

// Usage: ingestor [dataset,dataset,...]
// Without arguments every dataset and the landmark table are imported.
func main() {
	cfg, err := config.Load("selene-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	selected, err := parseFilter(os.Args[1:])
	if err != nil {
		log.Fatalf("args: %v", err)
	}

	source := assets.NewSource(cfg.Assets.Root, cfg.Assets.FetchTimeout)
	repo := postgres.NewDatasetRepo(db)

	log.Printf("Selene ingestor: %d datasets from %s", len(selected), cfg.Assets.Root)

	var wg sync.WaitGroup
	sem := make(chan struct{}, 3) // max 3 concurrent downloads

	for _, ds := range selected {
		wg.Add(1)
		go func(ds domain.Dataset) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rows, err := source.Fetch(ctx, ds)
			if err != nil {
				log.Printf("ERROR [%s]: fetch: %v", ds, err)
				return
			}
			if err := repo.ReplaceRows(ctx, ds, rows); err != nil {
				log.Printf("ERROR [%s]: store: %v", ds, err)
				return
			}
			metrics.RowsImported.WithLabelValues(string(ds)).Add(float64(len(rows)))
			log.Printf("[%s] %d rows", ds, len(rows))
		}(ds)
	}

	if len(os.Args) < 2 {
		ingestLandmarks(ctx, source, postgres.NewLandmarkRepo(db))
	}

	wg.Wait()
	log.Println("ingestion complete")
}

func parseFilter(args []string) ([]domain.Dataset, error) {
	if len(args) == 0 {
		return domain.Datasets, nil
	}
	var out []domain.Dataset
	for _, name := range strings.Split(args[0], ",") {
		ds, err := domain.ParseDataset(name)
		if err != nil {
			return nil, err
		}
		if !ds.IsNone() {
			out = append(out, ds)
		}
	}
	return out, nil
}

func ingestLandmarks(ctx context.Context, source *assets.Source, repo *postgres.LandmarkRepo) {
	lms, err := source.Landmarks(ctx)
	switch {
	case errors.Is(err, assets.ErrNotFound):
		lms = domain.DefaultLandmarks()
		log.Printf("[landmarks] no data.csv, storing the built-in table")
	case err != nil:
		log.Printf("ERROR [landmarks]: %v", err)
		return
	}
	if err := repo.UpsertBatch(ctx, lms); err != nil {
		log.Printf("ERROR [landmarks]: store: %v", err)
		return
	}
	log.Printf("[landmarks] %d landmarks", len(lms))
}
