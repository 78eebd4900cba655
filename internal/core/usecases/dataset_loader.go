package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/core/ports"
	"github.com/samirrijal/selene/internal/pkg/metrics"
)

// DefaultCacheTTL is used when the loader is built with a non-positive TTL.
const DefaultCacheTTL = 3600

// DatasetLoader is a read-through cache in front of a DatasetSource. Parsed
// rows are cached as JSON keyed by the dataset folder.
type DatasetLoader struct {
	source ports.DatasetSource
	cache  ports.CacheService
	ttl    int
}

// NewDatasetLoader creates a new DatasetLoader. cache may be nil.
func NewDatasetLoader(source ports.DatasetSource, cache ports.CacheService, ttlSeconds int) *DatasetLoader {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultCacheTTL
	}
	return &DatasetLoader{source: source, cache: cache, ttl: ttlSeconds}
}

// CacheKey is the cache key of ds's rows.
func CacheKey(ds domain.Dataset) string {
	return "dataset:rows:" + ds.Folder()
}

// Fetch returns the rows of ds, from cache when possible.
func (l *DatasetLoader) Fetch(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
	if ds.IsNone() {
		return nil, nil
	}

	key := CacheKey(ds)
	if l.cache != nil {
		if data, err := l.cache.Get(ctx, key); err == nil {
			var cached []cachedRow
			if err := json.Unmarshal(data, &cached); err == nil {
				metrics.CacheHits.WithLabelValues("dataset_rows").Inc()
				return fromCache(cached), nil
			}
		}
		metrics.CacheMisses.WithLabelValues("dataset_rows").Inc()
	}

	rows, err := l.source.Fetch(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ds, err)
	}

	if l.cache != nil {
		if data, err := json.Marshal(toCache(rows)); err == nil {
			if err := l.cache.Set(ctx, key, data, l.ttl); err != nil {
				slog.WarnContext(ctx, "cache dataset rows", "dataset", ds, "error", err)
			}
		}
	}

	return rows, nil
}

// Invalidate drops the cached rows of ds.
func (l *DatasetLoader) Invalidate(ctx context.Context, ds domain.Dataset) error {
	if l.cache == nil {
		return nil
	}
	return l.cache.Delete(ctx, CacheKey(ds))
}

// cachedRow is the cache encoding of a DatasetRow. JSON has no NaN, so
// missing or non-finite cells are stored as null and read back as NaN (or a
// nil value), giving the same rows a cold fetch returns.
type cachedRow struct {
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
	Value *float64 `json:"value"`
}

func finiteOrNil(v float64) *float64 {
	if !domain.Finite(v) {
		return nil
	}
	return &v
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func toCache(rows []domain.DatasetRow) []cachedRow {
	out := make([]cachedRow, len(rows))
	for i, r := range rows {
		out[i] = cachedRow{Lat: finiteOrNil(r.Lat), Lon: finiteOrNil(r.Lon)}
		if r.Value != nil {
			out[i].Value = finiteOrNil(*r.Value)
		}
	}
	return out
}

func fromCache(cached []cachedRow) []domain.DatasetRow {
	out := make([]domain.DatasetRow, len(cached))
	for i, c := range cached {
		out[i] = domain.DatasetRow{Lat: orNaN(c.Lat), Lon: orNaN(c.Lon), Value: c.Value}
	}
	return out
}
