package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LionelROLLAND/colocatron/internal/models"
)

// ScheduleStateRepository persists the ledger state behind an occupant's
// schedule. Saves rewrite the occupant's rows wholesale: the in-memory
// ledgers are the source of truth and stay small by construction
// (compaction bounds the exception sets).
type ScheduleStateRepository interface {
	LoadPresence(ctx context.Context, occupantID string) (models.PresenceState, error)
	SavePresence(ctx context.Context, state models.PresenceState) error
	LoadChoreRecords(ctx context.Context, occupantID string) ([]models.ChoreRecordState, error)
	SaveChoreRecord(ctx context.Context, state models.ChoreRecordState) error
}

type SQLiteScheduleStateRepository struct {
	database *sql.DB
}

func NewScheduleStateRepository(database *sql.DB) *SQLiteScheduleStateRepository {
	return &SQLiteScheduleStateRepository{database: database}
}

func (repository *SQLiteScheduleStateRepository) LoadPresence(ctx context.Context, occupantID string) (models.PresenceState, error) {
	state := models.PresenceState{OccupantID: occupantID}
	err := repository.database.QueryRowContext(ctx,
		"SELECT watermark, pre_absences FROM presence_state WHERE occupant_id = ?", occupantID,
	).Scan(&state.Watermark, &state.PreAbsences)
	if err != nil {
		return models.PresenceState{}, fmt.Errorf("loading presence state: %w", err)
	}

	rows, err := repository.database.QueryContext(ctx,
		"SELECT day FROM absence_days WHERE occupant_id = ? ORDER BY day", occupantID,
	)
	if err != nil {
		return models.PresenceState{}, fmt.Errorf("loading absence days: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return models.PresenceState{}, fmt.Errorf("scanning absence day: %w", err)
		}
		state.AbsenceDays = append(state.AbsenceDays, day)
	}
	return state, rows.Err()
}

func (repository *SQLiteScheduleStateRepository) SavePresence(ctx context.Context, state models.PresenceState) error {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	_, err = transaction.ExecContext(ctx,
		"UPDATE presence_state SET watermark = ?, pre_absences = ? WHERE occupant_id = ?",
		state.Watermark, state.PreAbsences, state.OccupantID,
	)
	if err != nil {
		return fmt.Errorf("saving presence state: %w", err)
	}

	_, err = transaction.ExecContext(ctx,
		"DELETE FROM absence_days WHERE occupant_id = ?", state.OccupantID,
	)
	if err != nil {
		return fmt.Errorf("clearing absence days: %w", err)
	}

	for _, day := range state.AbsenceDays {
		_, err = transaction.ExecContext(ctx,
			"INSERT INTO absence_days (occupant_id, day) VALUES (?, ?)",
			state.OccupantID, day,
		)
		if err != nil {
			return fmt.Errorf("saving absence day: %w", err)
		}
	}

	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("committing presence state: %w", err)
	}
	return nil
}

func (repository *SQLiteScheduleStateRepository) LoadChoreRecords(ctx context.Context, occupantID string) ([]models.ChoreRecordState, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT chore_id, begin_monday, old_last_time, last_time
		FROM chore_records WHERE occupant_id = ?`, occupantID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading chore records: %w", err)
	}
	defer rows.Close()

	var records []models.ChoreRecordState
	for rows.Next() {
		record := models.ChoreRecordState{OccupantID: occupantID}
		if err := rows.Scan(&record.ChoreID, &record.BeginMonday, &record.OldLastTime, &record.LastTime); err != nil {
			return nil, fmt.Errorf("scanning chore record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		weekRows, err := repository.database.QueryContext(ctx,
			"SELECT monday FROM chore_weeks WHERE occupant_id = ? AND chore_id = ? ORDER BY monday",
			occupantID, records[i].ChoreID,
		)
		if err != nil {
			return nil, fmt.Errorf("loading chore weeks: %w", err)
		}
		for weekRows.Next() {
			var monday time.Time
			if err := weekRows.Scan(&monday); err != nil {
				weekRows.Close()
				return nil, fmt.Errorf("scanning chore week: %w", err)
			}
			records[i].WeekMondays = append(records[i].WeekMondays, monday)
		}
		if err := weekRows.Err(); err != nil {
			weekRows.Close()
			return nil, err
		}
		weekRows.Close()
	}
	return records, nil
}

func (repository *SQLiteScheduleStateRepository) SaveChoreRecord(ctx context.Context, state models.ChoreRecordState) error {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	_, err = transaction.ExecContext(ctx,
		`INSERT INTO chore_records (occupant_id, chore_id, begin_monday, old_last_time, last_time)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(occupant_id, chore_id) DO UPDATE
		SET begin_monday = excluded.begin_monday,
			old_last_time = excluded.old_last_time,
			last_time = excluded.last_time`,
		state.OccupantID, state.ChoreID, state.BeginMonday, state.OldLastTime, state.LastTime,
	)
	if err != nil {
		return fmt.Errorf("saving chore record: %w", err)
	}

	_, err = transaction.ExecContext(ctx,
		"DELETE FROM chore_weeks WHERE occupant_id = ? AND chore_id = ?",
		state.OccupantID, state.ChoreID,
	)
	if err != nil {
		return fmt.Errorf("clearing chore weeks: %w", err)
	}

	for _, monday := range state.WeekMondays {
		_, err = transaction.ExecContext(ctx,
			"INSERT INTO chore_weeks (occupant_id, chore_id, monday) VALUES (?, ?, ?)",
			state.OccupantID, state.ChoreID, monday,
		)
		if err != nil {
			return fmt.Errorf("saving chore week: %w", err)
		}
	}

	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("committing chore record: %w", err)
	}
	return nil
}
