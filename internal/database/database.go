package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "ninesib_user")
	password := getEnv("DB_PASSWORD", "ninesib_password")
	dbname := getEnv("DB_NAME", "ninesib")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		is_premium BOOLEAN NOT NULL DEFAULT FALSE,
		premium_expires_at TIMESTAMP WITH TIME ZONE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS question_sets (
		set_key    VARCHAR(100) PRIMARY KEY,
		subject    VARCHAR(50) NOT NULL,
		title      VARCHAR(255) NOT NULL,
		year       INT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_sets_subject ON question_sets(subject);

	CREATE TABLE IF NOT EXISTS questions (
		id          VARCHAR(100) NOT NULL,
		set_key     VARCHAR(100) NOT NULL REFERENCES question_sets(set_key) ON DELETE CASCADE,
		position    INT NOT NULL,
		text        TEXT,
		image       TEXT,
		image_alt   TEXT,
		topics      TEXT[] NOT NULL DEFAULT '{}',
		correct_key VARCHAR(1) NOT NULL,
		explanation TEXT[] NOT NULL DEFAULT '{}',
		PRIMARY KEY (set_key, id)
	);

	CREATE INDEX IF NOT EXISTS idx_questions_set ON questions(set_key, position);

	CREATE TABLE IF NOT EXISTS choices (
		set_key     VARCHAR(100) NOT NULL,
		question_id VARCHAR(100) NOT NULL,
		position    INT NOT NULL,
		key         VARCHAR(1) NOT NULL,
		label       TEXT,
		image       TEXT,
		image_alt   TEXT,
		PRIMARY KEY (set_key, question_id, key),
		FOREIGN KEY (set_key, question_id) REFERENCES questions(set_key, id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_choices_question ON choices(set_key, question_id, position);

	CREATE TABLE IF NOT EXISTS attempts (
		seq          BIGSERIAL PRIMARY KEY,
		id           VARCHAR(64) UNIQUE NOT NULL,
		user_id      BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		set_key      VARCHAR(100) NOT NULL,
		title        VARCHAR(255),
		subject      VARCHAR(50),
		created_at_ms BIGINT NOT NULL,
		duration_ms  BIGINT NOT NULL DEFAULT 0,
		answers      JSONB NOT NULL DEFAULT '{}',
		result       JSONB NOT NULL DEFAULT '{}'
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_user ON attempts(user_id, seq DESC);
	CREATE INDEX IF NOT EXISTS idx_attempts_user_set ON attempts(user_id, set_key);

	CREATE TABLE IF NOT EXISTS payments (
		id             BIGSERIAL PRIMARY KEY,
		user_id        BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		charge_id      VARCHAR(100) UNIQUE NOT NULL,
		amount_satang  BIGINT NOT NULL,
		currency       VARCHAR(10) NOT NULL DEFAULT 'thb',
		status         VARCHAR(30) NOT NULL DEFAULT 'pending',
		description    TEXT,
		premium_months INT NOT NULL DEFAULT 1,
		slip_url       TEXT,
		created_at     TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at     TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_payments_user ON payments(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status);
	`

	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Idempotent column additions for databases created before these fields existed
	alterStatements := []string{
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS is_premium BOOLEAN NOT NULL DEFAULT FALSE`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS premium_expires_at TIMESTAMP WITH TIME ZONE`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS is_admin BOOLEAN NOT NULL DEFAULT FALSE`,
		`ALTER TABLE payments ADD COLUMN IF NOT EXISTS premium_months INT NOT NULL DEFAULT 1`,
		`ALTER TABLE payments ADD COLUMN IF NOT EXISTS slip_url TEXT`,
		`ALTER TABLE questions ADD COLUMN IF NOT EXISTS image TEXT`,
		`ALTER TABLE questions ADD COLUMN IF NOT EXISTS image_alt TEXT`,
		`ALTER TABLE choices ADD COLUMN IF NOT EXISTS image TEXT`,
		`ALTER TABLE choices ADD COLUMN IF NOT EXISTS image_alt TEXT`,
		// Image-only questions and choices carry no text/label.
		`ALTER TABLE questions ALTER COLUMN text DROP NOT NULL`,
		`ALTER TABLE choices ALTER COLUMN label DROP NOT NULL`,
	}

	for _, stmt := range alterStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("alter table failed: %w", err)
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
