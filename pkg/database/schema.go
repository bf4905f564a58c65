package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema holds the idempotent DDL applied on every startup. The unique index
// on submissions(assignment_id, user_id) is the invariant that keeps
// concurrent first submissions from racing into duplicate rows.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    full_name     TEXT NOT NULL,
    role          TEXT NOT NULL CHECK (role IN ('ADMIN','STUDENT')),
    active        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS modules (
    id          TEXT PRIMARY KEY,
    week_number INT NOT NULL CHECK (week_number > 0),
    title       TEXT NOT NULL,
    description TEXT,
    created_at  TIMESTAMPTZ NOT NULL,
    UNIQUE (week_number)
);

CREATE TABLE IF NOT EXISTS materials (
    id          TEXT PRIMARY KEY,
    module_id   TEXT NOT NULL REFERENCES modules(id),
    title       TEXT NOT NULL,
    kind        TEXT NOT NULL CHECK (kind IN ('link','file')),
    path_or_url TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
    id         TEXT PRIMARY KEY,
    module_id  TEXT NOT NULL REFERENCES modules(id),
    title      TEXT NOT NULL,
    prompt     TEXT,
    due_date   DATE,
    created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions (
    id            TEXT PRIMARY KEY,
    assignment_id TEXT NOT NULL REFERENCES assignments(id),
    user_id       TEXT NOT NULL REFERENCES users(id),
    file_path     TEXT,
    text_response TEXT,
    submitted_at  TIMESTAMPTZ NOT NULL,
    grade         REAL CHECK (grade >= 0 AND grade <= 100),
    feedback      TEXT,
    graded_at     TIMESTAMPTZ,
    graded_by     TEXT REFERENCES users(id)
);

CREATE UNIQUE INDEX IF NOT EXISTS uniq_submission ON submissions(assignment_id, user_id);
`

// EnsureSchema applies the DDL. Safe to call on every process start.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
