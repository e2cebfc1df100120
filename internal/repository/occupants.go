package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/models"
	"github.com/google/uuid"
)

type OccupantRepository interface {
	FindByID(ctx context.Context, id string) (models.Occupant, error)
	FindByOIDCSubject(ctx context.Context, subject string) (models.Occupant, error)
	FindAll(ctx context.Context) ([]models.Occupant, error)
	Create(ctx context.Context, occupant models.Occupant) (models.Occupant, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
	UpdateProfile(ctx context.Context, id string, name string, email string, avatarURL string) error
	NextIdentitySeq(ctx context.Context, name string) (uint64, error)
	Count(ctx context.Context) (int, error)
}

type SQLiteOccupantRepository struct {
	database *sql.DB
}

func NewOccupantRepository(database *sql.DB) *SQLiteOccupantRepository {
	return &SQLiteOccupantRepository{database: database}
}

const occupantColumns = `id, oidc_subject, email, name, avatar_url, role,
	identity_name, identity_seq, onboarding_date, created_at, updated_at`

func scanOccupant(row interface{ Scan(...any) error }) (models.Occupant, error) {
	var occupant models.Occupant
	var subject sql.NullString
	err := row.Scan(
		&occupant.ID, &subject, &occupant.Email, &occupant.Name, &occupant.AvatarURL, &occupant.Role,
		&occupant.IdentityName, &occupant.IdentitySeq, &occupant.OnboardingDate,
		&occupant.CreatedAt, &occupant.UpdatedAt,
	)
	if err != nil {
		return models.Occupant{}, err
	}
	occupant.OIDCSubject = subject.String
	return occupant, nil
}

func (repository *SQLiteOccupantRepository) FindByID(ctx context.Context, id string) (models.Occupant, error) {
	occupant, err := scanOccupant(repository.database.QueryRowContext(ctx,
		"SELECT "+occupantColumns+" FROM occupants WHERE id = ?", id,
	))
	if err != nil {
		return models.Occupant{}, fmt.Errorf("finding occupant by id: %w", err)
	}
	return occupant, nil
}

func (repository *SQLiteOccupantRepository) FindByOIDCSubject(ctx context.Context, subject string) (models.Occupant, error) {
	occupant, err := scanOccupant(repository.database.QueryRowContext(ctx,
		"SELECT "+occupantColumns+" FROM occupants WHERE oidc_subject = ?", subject,
	))
	if err != nil {
		return models.Occupant{}, fmt.Errorf("finding occupant by oidc subject: %w", err)
	}
	return occupant, nil
}

func (repository *SQLiteOccupantRepository) FindAll(ctx context.Context) ([]models.Occupant, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+occupantColumns+" FROM occupants ORDER BY name, identity_seq",
	)
	if err != nil {
		return nil, fmt.Errorf("finding all occupants: %w", err)
	}
	defer rows.Close()

	var occupants []models.Occupant
	for rows.Next() {
		occupant, err := scanOccupant(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning occupant: %w", err)
		}
		occupants = append(occupants, occupant)
	}
	return occupants, rows.Err()
}

// Create inserts the occupant together with its empty presence state, so a
// freshly onboarded occupant always has a ledger row to load.
func (repository *SQLiteOccupantRepository) Create(ctx context.Context, occupant models.Occupant) (models.Occupant, error) {
	if occupant.ID == "" {
		occupant.ID = uuid.New().String()
	}
	now := time.Now()
	occupant.CreatedAt = now
	occupant.UpdatedAt = now

	var subject sql.NullString
	if occupant.OIDCSubject != "" {
		subject = sql.NullString{String: occupant.OIDCSubject, Valid: true}
	}

	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return models.Occupant{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	_, err = transaction.ExecContext(ctx,
		`INSERT INTO occupants (id, oidc_subject, email, name, avatar_url, role,
			identity_name, identity_seq, onboarding_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		occupant.ID, subject, occupant.Email, occupant.Name, occupant.AvatarURL, occupant.Role,
		occupant.IdentityName, occupant.IdentitySeq, occupant.OnboardingDate,
		occupant.CreatedAt, occupant.UpdatedAt,
	)
	if err != nil {
		return models.Occupant{}, fmt.Errorf("creating occupant: %w", err)
	}

	_, err = transaction.ExecContext(ctx,
		"INSERT INTO presence_state (occupant_id, watermark, pre_absences) VALUES (?, ?, 0)",
		occupant.ID, occupant.OnboardingDate,
	)
	if err != nil {
		return models.Occupant{}, fmt.Errorf("creating presence state: %w", err)
	}

	if err := transaction.Commit(); err != nil {
		return models.Occupant{}, fmt.Errorf("committing occupant: %w", err)
	}
	return occupant, nil
}

func (repository *SQLiteOccupantRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE occupants SET role = ?, updated_at = ? WHERE id = ?",
		role, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating occupant role: %w", err)
	}
	return nil
}

func (repository *SQLiteOccupantRepository) UpdateProfile(ctx context.Context, id string, name string, email string, avatarURL string) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE occupants SET name = ?, email = ?, avatar_url = ?, updated_at = ? WHERE id = ?",
		name, email, avatarURL, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating occupant profile: %w", err)
	}
	return nil
}

// NextIdentitySeq returns the next free sequence number for a display
// name, so same-named occupants get distinct identity keys.
func (repository *SQLiteOccupantRepository) NextIdentitySeq(ctx context.Context, name string) (uint64, error) {
	var seq uint64
	err := repository.database.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(identity_seq) + 1, 0) FROM occupants WHERE identity_name = ?", name,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("allocating identity seq: %w", err)
	}
	return seq, nil
}

func (repository *SQLiteOccupantRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := repository.database.QueryRowContext(ctx, "SELECT COUNT(*) FROM occupants").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting occupants: %w", err)
	}
	return count, nil
}
