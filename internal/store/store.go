// To handle all database interactions. This is our
// data access layer, keeping SQL queries separate from business logic.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"jobdeck/internal/models"
)

// Store provides all functions to interact with the database.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveSnapshot persists one refresh result. The grouped payload is stored
// as JSON so the history endpoint can replay old states verbatim.
func (s *Store) SaveSnapshot(snap *models.Snapshot) (int64, error) {
	payload, err := json.Marshal(snap.Groups)
	if err != nil {
		return 0, fmt.Errorf("failed to encode snapshot payload: %w", err)
	}
	res, err := s.db.Exec(`
        INSERT INTO job_snapshots (taken_at, payload, job_count, diagnostic)
        VALUES (?, ?, ?, ?)
    `, snap.TakenAt, string(payload), snap.TotalJobs, snap.Diagnostic)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// LatestSnapshot returns the most recent persisted snapshot, or nil if
// none has been taken yet.
func (s *Store) LatestSnapshot() (*models.Snapshot, error) {
	var payload, diagnostic string
	var snap models.Snapshot
	err := s.db.QueryRow(`
        SELECT taken_at, payload, job_count, diagnostic
        FROM job_snapshots ORDER BY id DESC LIMIT 1
    `).Scan(&snap.TakenAt, &payload, &snap.TotalJobs, &diagnostic)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &snap.Groups); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot payload: %w", err)
	}
	snap.Diagnostic = diagnostic
	return &snap, nil
}

// PruneSnapshots deletes everything but the newest keep rows.
func (s *Store) PruneSnapshots(keep int) (int64, error) {
	res, err := s.db.Exec(`
        DELETE FROM job_snapshots WHERE id NOT IN (
            SELECT id FROM job_snapshots ORDER BY id DESC LIMIT ?
        )
    `, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RecordCommand appends one entry to the command audit log.
func (s *Store) RecordCommand(entry *models.CommandEntry) error {
	res, err := s.db.Exec(`
        INSERT INTO command_log (correlation_id, command, job_id, status_label, submitted_at, outcome, detail)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `, entry.CorrelationID, entry.Command, entry.JobID, entry.StatusLabel, entry.SubmittedAt, entry.Outcome, entry.Detail)
	if err != nil {
		return err
	}
	entry.ID, _ = res.LastInsertId()
	return nil
}

// UpdateCommandOutcome records how a dispatched command turned out once
// the job source answered.
func (s *Store) UpdateCommandOutcome(correlationID, outcome, detail string) error {
	result, err := s.db.Exec(
		"UPDATE command_log SET outcome = ?, detail = ? WHERE correlation_id = ?",
		outcome, detail, correlationID,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("command with correlation id %s not found", correlationID)
	}
	return nil
}

// RecentCommands returns the newest limit entries of the command log.
func (s *Store) RecentCommands(limit int) ([]*models.CommandEntry, error) {
	rows, err := s.db.Query(`
        SELECT id, correlation_id, command, job_id, status_label, submitted_at, outcome, detail
        FROM command_log ORDER BY id DESC LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.CommandEntry
	for rows.Next() {
		var entry models.CommandEntry
		var jobID sql.NullInt64
		var submittedAt time.Time
		if err := rows.Scan(&entry.ID, &entry.CorrelationID, &entry.Command, &jobID, &entry.StatusLabel, &submittedAt, &entry.Outcome, &entry.Detail); err != nil {
			return nil, err
		}
		if jobID.Valid {
			entry.JobID = &jobID.Int64
		}
		entry.SubmittedAt = submittedAt
		entries = append(entries, &entry)
	}
	return entries, nil
}
