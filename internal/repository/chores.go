package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/models"
	"github.com/google/uuid"
)

type ChoreRepository interface {
	FindByID(ctx context.Context, id string) (models.Chore, error)
	FindAll(ctx context.Context) ([]models.Chore, error)
	Create(ctx context.Context, chore models.Chore) (models.Chore, error)
	Update(ctx context.Context, chore models.Chore) error
	Delete(ctx context.Context, id string) error
	NextIdentitySeq(ctx context.Context, name string) (uint64, error)
}

type SQLiteChoreRepository struct {
	database *sql.DB
}

func NewChoreRepository(database *sql.DB) *SQLiteChoreRepository {
	return &SQLiteChoreRepository{database: database}
}

const choreColumns = `id, name, description, identity_name, identity_seq,
	proportional, min_proportion, min_occupants, weight_per_occupant, total_weight, each_n_days,
	created_by_occupant_id, created_at, updated_at`

func scanChore(row interface{ Scan(...any) error }) (models.Chore, error) {
	var chore models.Chore
	var createdBy sql.NullString
	err := row.Scan(
		&chore.ID, &chore.Name, &chore.Description, &chore.IdentityName, &chore.IdentitySeq,
		&chore.Proportional, &chore.MinProportion, &chore.MinOccupants,
		&chore.WeightPerOccupant, &chore.TotalWeight, &chore.EachNDays,
		&createdBy, &chore.CreatedAt, &chore.UpdatedAt,
	)
	chore.CreatedByOccupantID = createdBy.String
	return chore, err
}

func (repository *SQLiteChoreRepository) FindByID(ctx context.Context, id string) (models.Chore, error) {
	chore, err := scanChore(repository.database.QueryRowContext(ctx,
		"SELECT "+choreColumns+" FROM chores WHERE id = ?", id,
	))
	if err != nil {
		return models.Chore{}, fmt.Errorf("finding chore by id: %w", err)
	}
	return chore, nil
}

func (repository *SQLiteChoreRepository) FindAll(ctx context.Context) ([]models.Chore, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+choreColumns+" FROM chores ORDER BY name, identity_seq",
	)
	if err != nil {
		return nil, fmt.Errorf("finding chores: %w", err)
	}
	defer rows.Close()

	var chores []models.Chore
	for rows.Next() {
		chore, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning chore: %w", err)
		}
		chores = append(chores, chore)
	}
	return chores, rows.Err()
}

func (repository *SQLiteChoreRepository) Create(ctx context.Context, chore models.Chore) (models.Chore, error) {
	if chore.ID == "" {
		chore.ID = uuid.New().String()
	}
	now := time.Now()
	chore.CreatedAt = now
	chore.UpdatedAt = now

	var createdBy sql.NullString
	if chore.CreatedByOccupantID != "" {
		createdBy = sql.NullString{String: chore.CreatedByOccupantID, Valid: true}
	}

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO chores (id, name, description, identity_name, identity_seq,
			proportional, min_proportion, min_occupants, weight_per_occupant, total_weight, each_n_days,
			created_by_occupant_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		chore.ID, chore.Name, chore.Description, chore.IdentityName, chore.IdentitySeq,
		chore.Proportional, chore.MinProportion, chore.MinOccupants,
		chore.WeightPerOccupant, chore.TotalWeight, chore.EachNDays,
		createdBy, chore.CreatedAt, chore.UpdatedAt,
	)
	if err != nil {
		return models.Chore{}, fmt.Errorf("creating chore: %w", err)
	}
	return chore, nil
}

func (repository *SQLiteChoreRepository) Update(ctx context.Context, chore models.Chore) error {
	_, err := repository.database.ExecContext(ctx,
		`UPDATE chores SET name = ?, description = ?,
			proportional = ?, min_proportion = ?, min_occupants = ?,
			weight_per_occupant = ?, total_weight = ?, each_n_days = ?, updated_at = ?
		WHERE id = ?`,
		chore.Name, chore.Description,
		chore.Proportional, chore.MinProportion, chore.MinOccupants,
		chore.WeightPerOccupant, chore.TotalWeight, chore.EachNDays, time.Now(),
		chore.ID,
	)
	if err != nil {
		return fmt.Errorf("updating chore: %w", err)
	}
	return nil
}

func (repository *SQLiteChoreRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM chores WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting chore: %w", err)
	}
	return nil
}

func (repository *SQLiteChoreRepository) NextIdentitySeq(ctx context.Context, name string) (uint64, error) {
	var seq uint64
	err := repository.database.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(identity_seq) + 1, 0) FROM chores WHERE identity_name = ?", name,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("allocating identity seq: %w", err)
	}
	return seq, nil
}
