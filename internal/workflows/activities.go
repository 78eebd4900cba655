package workflows

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/core/ports"
	"github.com/samirrijal/selene/internal/pkg/metrics"
	"github.com/samirrijal/selene/internal/pkg/telemetry"
)

// Invalidator drops cached dataset rows.
type Invalidator interface {
	Invalidate(ctx context.Context, ds domain.Dataset) error
}

// RefreshActivities holds the activity implementations for the refresh workflow.
type RefreshActivities struct {
	Source ports.DatasetSource
	Store  ports.DatasetRepository
	Cache  Invalidator
	Events ports.EventPublisher
}

// ImportDataset fetches the dataset CSV and replaces its stored rows.
// It returns the number of rows written.
func (a *RefreshActivities) ImportDataset(ctx context.Context, name string) (int, error) {
	ds, err := domain.ParseDataset(name)
	if err != nil || ds.IsNone() {
		return 0, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("import %q", name), "UnknownDataset", domain.ErrUnknownDataset)
	}

	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, telemetry.SpanDatasetRefresh)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrDataset, string(ds)))

	rows, err := a.Source.Fetch(ctx, ds)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", ds, err)
	}
	if err := a.Store.ReplaceRows(ctx, ds, rows); err != nil {
		return 0, fmt.Errorf("store %s: %w", ds, err)
	}

	metrics.RowsImported.WithLabelValues(string(ds)).Add(float64(len(rows)))
	span.SetAttributes(attribute.Int(telemetry.AttrRows, len(rows)))
	slog.Info("dataset imported", "dataset", ds, "rows", len(rows))
	return len(rows), nil
}

// InvalidateCache drops the cached rows so the next load reads the store.
func (a *RefreshActivities) InvalidateCache(ctx context.Context, name string) error {
	if a.Cache == nil {
		return nil
	}
	ds, err := domain.ParseDataset(name)
	if err != nil {
		return err
	}
	if err := a.Cache.Invalidate(ctx, ds); err != nil {
		return fmt.Errorf("invalidate %s: %w", ds, err)
	}
	return nil
}

// PublishRefreshed tells the API instances the dataset changed.
func (a *RefreshActivities) PublishRefreshed(ctx context.Context, name string, rows int, at time.Time) error {
	if a.Events == nil {
		slog.Info("refresh (no publisher)", "dataset", name, "rows", rows)
		return nil
	}
	ds, err := domain.ParseDataset(name)
	if err != nil {
		return err
	}
	return a.Events.PublishRefreshed(ctx, &domain.DatasetRefreshed{Dataset: ds, Rows: rows, At: at})
}
