package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/selene/internal/core/domain"
)

// DatasetRepo implements ports.DatasetRepository with pgx. Rows keep their
// source order in the seq column; unusable coordinates are stored as NULL.
type DatasetRepo struct {
	db *DB
}

// NewDatasetRepo creates a new DatasetRepo.
func NewDatasetRepo(db *DB) *DatasetRepo {
	return &DatasetRepo{db: db}
}

// Fetch returns every row of ds in source order.
func (r *DatasetRepo) Fetch(ctx context.Context, ds domain.Dataset) ([]domain.DatasetRow, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT latitude, longitude, value
		FROM dataset_rows
		WHERE dataset = $1
		ORDER BY seq
	`, string(ds))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DatasetRow
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ReplaceRows swaps all rows of ds inside one transaction using pgx.Batch.
func (r *DatasetRepo) ReplaceRows(ctx context.Context, ds domain.Dataset, rows []domain.DatasetRow) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM dataset_rows WHERE dataset = $1`, string(ds)); err != nil {
		return fmt.Errorf("delete %s: %w", ds, err)
	}

	batch := &pgx.Batch{}
	for i, row := range rows {
		batch.Queue(`
			INSERT INTO dataset_rows (dataset, seq, latitude, longitude, value)
			VALUES ($1, $2, $3, $4, $5)
		`, string(ds), i, nullable(row.Lat), nullable(row.Lon), nullablePtr(row.Value))
	}
	br := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("batch close: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO datasets (name, folder, row_count, imported_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE
		SET row_count = EXCLUDED.row_count, imported_at = EXCLUDED.imported_at
	`, string(ds), ds.Folder(), len(rows)); err != nil {
		return fmt.Errorf("record import: %w", err)
	}

	return tx.Commit(ctx)
}

// ListRows returns one page of ds's rows and the total row count.
func (r *DatasetRepo) ListRows(ctx context.Context, ds domain.Dataset, limit, offset int) ([]domain.DatasetRow, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM dataset_rows WHERE dataset = $1`, string(ds),
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT latitude, longitude, value
		FROM dataset_rows
		WHERE dataset = $1
		ORDER BY seq
		LIMIT $2 OFFSET $3
	`, string(ds), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.DatasetRow
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}

// Counts returns the number of stored rows per dataset.
func (r *DatasetRepo) Counts(ctx context.Context) (map[domain.Dataset]int, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT dataset, count(*) FROM dataset_rows GROUP BY dataset
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.Dataset]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		out[domain.Dataset(name)] = n
	}
	return out, rows.Err()
}

func scanRow(rows pgx.Rows) (domain.DatasetRow, error) {
	var lat, lon, value *float64
	if err := rows.Scan(&lat, &lon, &value); err != nil {
		return domain.DatasetRow{}, err
	}
	row := domain.DatasetRow{Lat: math.NaN(), Lon: math.NaN(), Value: value}
	if lat != nil {
		row.Lat = *lat
	}
	if lon != nil {
		row.Lon = *lon
	}
	return row, nil
}

func nullable(v float64) *float64 {
	if !domain.Finite(v) {
		return nil
	}
	return &v
}

func nullablePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return nullable(*v)
}
