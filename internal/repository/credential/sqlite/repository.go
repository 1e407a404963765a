package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/syncroom/server/internal/repository/credential"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	is_admin      INTEGER NOT NULL DEFAULT 0,
	created_at    INTEGER NOT NULL
);
`

type repo struct {
	db *sql.DB
}

func NewRepo(path string) (*repo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc sqlite does not tolerate concurrent writers on one file.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &repo{db: db}, nil
}

func (r *repo) Close() error {
	return r.db.Close()
}

func (r *repo) CreateUser(ctx context.Context, params *credential.CreateUserParams) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?)`,
		params.Username, params.PasswordHash, boolToInt(params.IsAdmin), time.Now().Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return credential.ErrAlreadyExists
		}

		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *repo) GetUser(ctx context.Context, username string) (credential.User, error) {
	var (
		user    credential.User
		isAdmin int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT username, password_hash, is_admin FROM users WHERE username = ?`,
		username,
	).Scan(&user.Username, &user.PasswordHash, &isAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return credential.User{}, credential.ErrNotFound
		}

		return credential.User{}, fmt.Errorf("failed to query user: %w", err)
	}

	user.IsAdmin = isAdmin != 0

	return user, nil
}

func (r *repo) CountAdmins(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE is_admin = 1`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}

	return count, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
