package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ninesib/backend/internal/models"
)

// PostgresStore persists attempt history one row per attempt. Save order is
// tracked by the seq column so "newest first" means most recently saved,
// independent of client-supplied timestamps.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(userID int64, record models.AttemptRecord) error {
	answers, err := json.Marshal(record.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	result, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO attempts (id, user_id, set_key, title, subject, created_at_ms, duration_ms, answers, result)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		record.ID, userID, record.SetKey, record.Title, nullableString(record.Subject),
		record.CreatedAt, record.DurationMs, answers, result,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	// Drop anything beyond the cap. Best effort — a failure here leaves
	// extra rows behind but never loses the new record.
	_, err = s.db.Exec(
		`DELETE FROM attempts WHERE user_id = $1 AND seq NOT IN (
			SELECT seq FROM attempts WHERE user_id = $1 ORDER BY seq DESC LIMIT $2
		)`,
		userID, MaxAttempts,
	)
	if err != nil {
		log.Printf("[history] failed to trim history for user %d: %v", userID, err)
	}

	return nil
}

func (s *PostgresStore) GetAll(userID int64) ([]models.AttemptRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, set_key, title, COALESCE(subject, ''), created_at_ms, duration_ms, answers, result
		 FROM attempts WHERE user_id = $1 ORDER BY seq DESC LIMIT $2`,
		userID, MaxAttempts,
	)
	if err != nil {
		// Degrade to an empty history rather than failing the caller.
		log.Printf("[history] read failed for user %d: %v", userID, err)
		return []models.AttemptRecord{}, nil
	}
	defer rows.Close()

	attempts := []models.AttemptRecord{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			log.Printf("[history] skipping unreadable attempt for user %d: %v", userID, err)
			continue
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

func (s *PostgresStore) GetByID(userID int64, id string) (models.AttemptRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, set_key, title, COALESCE(subject, ''), created_at_ms, duration_ms, answers, result
		 FROM attempts WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	a, err := scanAttempt(row)
	if err == sql.ErrNoRows {
		return models.AttemptRecord{}, ErrNotFound
	}
	if err != nil {
		return models.AttemptRecord{}, fmt.Errorf("get attempt %s: %w", id, err)
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAttempt(r rowScanner) (models.AttemptRecord, error) {
	var a models.AttemptRecord
	var answers, result []byte
	err := r.Scan(&a.ID, &a.SetKey, &a.Title, &a.Subject, &a.CreatedAt, &a.DurationMs, &answers, &result)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(answers, &a.Answers); err != nil {
		return a, fmt.Errorf("decode answers: %w", err)
	}
	if err := json.Unmarshal(result, &a.Result); err != nil {
		return a, fmt.Errorf("decode result: %w", err)
	}
	return a, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
