package usecases

import (
	"sync/atomic"

	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/pkg/geospatial"
)

// DatasetIndex is an immutable snapshot of one dataset's rows. Lookups are a
// linear scan in degree space; datasets are small and replaced on every
// selection, so no spatial structure is built.
type DatasetIndex struct {
	dataset domain.Dataset
	rows    []domain.DatasetRow
	skipped int
}

// NewDatasetIndex copies rows into a new index, dropping rows whose latitude
// or longitude is not a finite number. Source order is preserved.
func NewDatasetIndex(ds domain.Dataset, rows []domain.DatasetRow) *DatasetIndex {
	kept := make([]domain.DatasetRow, 0, len(rows))
	for _, r := range rows {
		if !domain.Finite(r.Lat) || !domain.Finite(r.Lon) {
			continue
		}
		if r.Value != nil {
			v := *r.Value
			r.Value = &v
		}
		kept = append(kept, r)
	}
	return &DatasetIndex{dataset: ds, rows: kept, skipped: len(rows) - len(kept)}
}

// EmptyIndex is the index of a dataset with no rows.
func EmptyIndex(ds domain.Dataset) *DatasetIndex {
	return &DatasetIndex{dataset: ds}
}

func (ix *DatasetIndex) Dataset() domain.Dataset { return ix.dataset }

// Len is the number of searchable rows.
func (ix *DatasetIndex) Len() int { return len(ix.rows) }

// Skipped is the number of rows rejected at build time.
func (ix *DatasetIndex) Skipped() int { return ix.skipped }

// NearestRow returns the row closest to c by Euclidean distance in degrees.
// Ties keep the first row in source order. ok is false when c is absent or
// the index is empty.
func (ix *DatasetIndex) NearestRow(c domain.Coordinate) (row domain.DatasetRow, dist float64, ok bool) {
	if !c.Valid || len(ix.rows) == 0 {
		return domain.DatasetRow{}, 0, false
	}
	best := -1
	for i, r := range ix.rows {
		d := geospatial.DegreeDistance(c.Lat, c.Lon, r.Lat, r.Lon)
		if best < 0 || d < dist {
			best, dist = i, d
		}
	}
	return ix.rows[best], dist, true
}

// Nearest returns the value of the closest row. A closest row without a
// value is no result.
func (ix *DatasetIndex) Nearest(c domain.Coordinate) (float64, bool) {
	r, _, ok := ix.NearestRow(c)
	if !ok || r.Value == nil {
		return 0, false
	}
	return *r.Value, true
}

// IndexHolder publishes the active DatasetIndex. Readers never block and
// always see one complete index.
type IndexHolder struct {
	p atomic.Pointer[DatasetIndex]
}

// NewIndexHolder returns a holder containing an empty index.
func NewIndexHolder() *IndexHolder {
	h := &IndexHolder{}
	h.p.Store(EmptyIndex(domain.NoDataset))
	return h
}

// Load returns the current index.
func (h *IndexHolder) Load() *DatasetIndex {
	return h.p.Load()
}

// Replace publishes ix. A nil ix publishes an empty index.
func (h *IndexHolder) Replace(ix *DatasetIndex) {
	if ix == nil {
		ix = EmptyIndex(domain.NoDataset)
	}
	h.p.Store(ix)
}
