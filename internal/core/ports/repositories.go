package ports

import (
	"context"

	"github.com/samirrijal/selene/internal/core/domain"
)

// DatasetSource fetches the sample table of one overlay dataset.
type DatasetSource interface {
	Fetch(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error)
}

// LandmarkSource fetches the landmark gazetteer.
type LandmarkSource interface {
	Landmarks(ctx context.Context) ([]domain.Landmark, error)
}

// DatasetRepository persists imported dataset rows.
type DatasetRepository interface {
	DatasetSource
	// ReplaceRows swaps all rows of ds for rows in one transaction.
	ReplaceRows(ctx context.Context, ds domain.Dataset, rows []domain.DatasetRow) error
	ListRows(ctx context.Context, ds domain.Dataset, limit, offset int) ([]domain.DatasetRow, int, error)
	Counts(ctx context.Context) (map[domain.Dataset]int, error)
}

// LandmarkRepository persists the gazetteer.
type LandmarkRepository interface {
	LandmarkSource
	UpsertBatch(ctx context.Context, landmarks []domain.Landmark) error
}
