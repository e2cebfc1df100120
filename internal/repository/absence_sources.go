package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/models"
	"github.com/google/uuid"
)

type AbsenceSourceRepository interface {
	FindAll(ctx context.Context) ([]models.AbsenceSource, error)
	FindByID(ctx context.Context, id string) (models.AbsenceSource, error)
	Create(ctx context.Context, source models.AbsenceSource) (models.AbsenceSource, error)
	UpdateCache(ctx context.Context, id string, data string, fetchedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type SQLiteAbsenceSourceRepository struct {
	database *sql.DB
}

func NewAbsenceSourceRepository(database *sql.DB) *SQLiteAbsenceSourceRepository {
	return &SQLiteAbsenceSourceRepository{database: database}
}

func (r *SQLiteAbsenceSourceRepository) FindAll(ctx context.Context) ([]models.AbsenceSource, error) {
	rows, err := r.database.QueryContext(ctx,
		`SELECT id, occupant_id, name, url, cached_data, last_fetched_at, created_at
		FROM absence_sources ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying absence sources: %w", err)
	}
	defer rows.Close()

	var sources []models.AbsenceSource
	for rows.Next() {
		var source models.AbsenceSource
		if err := rows.Scan(&source.ID, &source.OccupantID, &source.Name, &source.URL,
			&source.CachedData, &source.LastFetchedAt, &source.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning absence source: %w", err)
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

func (r *SQLiteAbsenceSourceRepository) FindByID(ctx context.Context, id string) (models.AbsenceSource, error) {
	var source models.AbsenceSource
	err := r.database.QueryRowContext(ctx,
		`SELECT id, occupant_id, name, url, cached_data, last_fetched_at, created_at
		FROM absence_sources WHERE id = ?`, id,
	).Scan(&source.ID, &source.OccupantID, &source.Name, &source.URL,
		&source.CachedData, &source.LastFetchedAt, &source.CreatedAt)
	if err != nil {
		return models.AbsenceSource{}, fmt.Errorf("finding absence source by id: %w", err)
	}
	return source, nil
}

func (r *SQLiteAbsenceSourceRepository) Create(ctx context.Context, source models.AbsenceSource) (models.AbsenceSource, error) {
	if source.ID == "" {
		source.ID = uuid.New().String()
	}
	source.CreatedAt = time.Now()
	_, err := r.database.ExecContext(ctx,
		`INSERT INTO absence_sources (id, occupant_id, name, url, created_at) VALUES (?, ?, ?, ?, ?)`,
		source.ID, source.OccupantID, source.Name, source.URL, source.CreatedAt,
	)
	if err != nil {
		return models.AbsenceSource{}, fmt.Errorf("inserting absence source: %w", err)
	}
	return source, nil
}

func (r *SQLiteAbsenceSourceRepository) UpdateCache(ctx context.Context, id string, data string, fetchedAt time.Time) error {
	_, err := r.database.ExecContext(ctx,
		`UPDATE absence_sources SET cached_data = ?, last_fetched_at = ? WHERE id = ?`,
		data, fetchedAt, id,
	)
	if err != nil {
		return fmt.Errorf("updating absence source cache: %w", err)
	}
	return nil
}

func (r *SQLiteAbsenceSourceRepository) Delete(ctx context.Context, id string) error {
	_, err := r.database.ExecContext(ctx, "DELETE FROM absence_sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting absence source: %w", err)
	}
	return nil
}
