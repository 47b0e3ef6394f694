package questions

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/ninesib/backend/internal/models"
)

// Store reads and writes question sets. Question data is owned by admins
// (imported in bulk); the serving path is read-only.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetSet loads a full question set including correct keys and explanations.
// Callers serving quiz UIs must strip answers via Question.ToServed.
func (s *Store) GetSet(setKey string) (*models.QuestionSet, error) {
	set := &models.QuestionSet{SetKey: setKey}
	err := s.db.QueryRow(
		`SELECT subject, title, COALESCE(year, 0) FROM question_sets WHERE set_key = $1`,
		setKey,
	).Scan(&set.Subject, &set.Title, &set.Year)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("question set %s not found", setKey)
	}
	if err != nil {
		return nil, fmt.Errorf("get question set %s: %w", setKey, err)
	}

	rows, err := s.db.Query(
		`SELECT id, COALESCE(text, ''), COALESCE(image, ''), COALESCE(image_alt, ''),
		        topics, correct_key, explanation
		 FROM questions WHERE set_key = $1 ORDER BY position`,
		setKey,
	)
	if err != nil {
		return nil, fmt.Errorf("load questions for %s: %w", setKey, err)
	}
	defer rows.Close()

	for rows.Next() {
		var q models.Question
		var topics, explanation []string
		err := rows.Scan(&q.ID, &q.Text, &q.Image, &q.ImageAlt,
			pq.Array(&topics), &q.CorrectKey, pq.Array(&explanation))
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Topics = topics
		q.Explanation = models.Explanation(explanation)
		set.Questions = append(set.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	if err := s.loadChoices(set); err != nil {
		return nil, err
	}

	return set, nil
}

func (s *Store) loadChoices(set *models.QuestionSet) error {
	rows, err := s.db.Query(
		`SELECT question_id, key, COALESCE(label, ''), COALESCE(image, ''), COALESCE(image_alt, '')
		 FROM choices WHERE set_key = $1 ORDER BY question_id, position`,
		set.SetKey,
	)
	if err != nil {
		return fmt.Errorf("load choices for %s: %w", set.SetKey, err)
	}
	defer rows.Close()

	byID := make(map[string]*models.Question, len(set.Questions))
	for i := range set.Questions {
		byID[set.Questions[i].ID] = &set.Questions[i]
	}

	for rows.Next() {
		var questionID string
		var c models.Choice
		if err := rows.Scan(&questionID, &c.Key, &c.Label, &c.Image, &c.ImageAlt); err != nil {
			return fmt.Errorf("scan choice: %w", err)
		}
		if q, ok := byID[questionID]; ok {
			q.Choices = append(q.Choices, c)
		}
	}
	return rows.Err()
}

// ListSets returns set metadata, optionally filtered by subject slug.
func (s *Store) ListSets(subject string) ([]models.SetListEntry, error) {
	query := `SELECT s.set_key, s.subject, s.title, COALESCE(s.year, 0),
	                 (SELECT COUNT(*) FROM questions q WHERE q.set_key = s.set_key)
	          FROM question_sets s`
	args := []interface{}{}
	if subject != "" {
		query += ` WHERE s.subject = $1`
		args = append(args, subject)
	}
	query += ` ORDER BY s.subject, s.year DESC, s.set_key`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list question sets: %w", err)
	}
	defer rows.Close()

	sets := []models.SetListEntry{}
	for rows.Next() {
		var e models.SetListEntry
		if err := rows.Scan(&e.SetKey, &e.Subject, &e.Title, &e.Year, &e.QuestionCount); err != nil {
			return nil, fmt.Errorf("scan set entry: %w", err)
		}
		sets = append(sets, e)
	}
	return sets, rows.Err()
}

// ReplaceSet upserts the set row and replaces its questions and choices in
// one transaction. Questions must already be validated and tagged.
func (s *Store) ReplaceSet(set *models.QuestionSet) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO question_sets (set_key, subject, title, year)
		 VALUES ($1, $2, $3, NULLIF($4, 0))
		 ON CONFLICT (set_key) DO UPDATE SET subject = $2, title = $3, year = NULLIF($4, 0)`,
		set.SetKey, set.Subject, set.Title, set.Year,
	)
	if err != nil {
		return fmt.Errorf("upsert set %s: %w", set.SetKey, err)
	}

	if _, err := tx.Exec(`DELETE FROM choices WHERE set_key = $1`, set.SetKey); err != nil {
		return fmt.Errorf("clear choices: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM questions WHERE set_key = $1`, set.SetKey); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	for pos, q := range set.Questions {
		_, err := tx.Exec(
			`INSERT INTO questions (id, set_key, position, text, image, image_alt, topics, correct_key, explanation)
			 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9)`,
			q.ID, set.SetKey, pos, q.Text, q.Image, q.ImageAlt,
			pq.Array(q.Topics), string(q.CorrectKey), pq.Array([]string(q.Explanation)),
		)
		if err != nil {
			return fmt.Errorf("insert question %s: %w", q.ID, err)
		}
		for cpos, c := range q.Choices {
			_, err := tx.Exec(
				`INSERT INTO choices (question_id, set_key, position, key, label, image, image_alt)
				 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))`,
				q.ID, set.SetKey, cpos, string(c.Key), c.Label, c.Image, c.ImageAlt,
			)
			if err != nil {
				return fmt.Errorf("insert choice %s/%s: %w", q.ID, c.Key, err)
			}
		}
	}

	return tx.Commit()
}
