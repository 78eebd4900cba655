package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/selene/internal/core/domain"
)

// LandmarkRepo implements ports.LandmarkRepository with pgx.
type LandmarkRepo struct {
	db *DB
}

// NewLandmarkRepo creates a new LandmarkRepo.
func NewLandmarkRepo(db *DB) *LandmarkRepo {
	return &LandmarkRepo{db: db}
}

// Landmarks returns the gazetteer in insertion order.
func (r *LandmarkRepo) Landmarks(ctx context.Context) ([]domain.Landmark, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT name, latitude, longitude FROM landmarks ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Landmark
	for rows.Next() {
		var l domain.Landmark
		if err := rows.Scan(&l.Name, &l.Lat, &l.Lon); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpsertBatch inserts or updates landmarks by name using pgx.Batch.
func (r *LandmarkRepo) UpsertBatch(ctx context.Context, landmarks []domain.Landmark) error {
	batch := &pgx.Batch{}
	for i, l := range landmarks {
		batch.Queue(`
			INSERT INTO landmarks (name, latitude, longitude, position)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE
			SET latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
			    position = EXCLUDED.position
		`, l.Name, l.Lat, l.Lon, i)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range landmarks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}
