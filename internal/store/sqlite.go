package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"githubPushRelay/internal/model"
)

// SQLite keeps tokens in a single table. The caller picks the driver when
// opening db; the binary uses mattn/go-sqlite3, tests use modernc.org/sqlite.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(ctx context.Context, db *sql.DB) (*SQLite, error) {
	if _, err := CreateTable(ctx, db); err != nil {
		return nil, fmt.Errorf("create device_tokens: %w", err)
	}
	return &SQLite{db: db}, nil
}

func CreateTable(ctx context.Context, db *sql.DB) (sql.Result, error) {
	sqlstmt := `CREATE TABLE IF NOT EXISTS device_tokens (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		token TEXT NOT NULL UNIQUE,
		registered_at TEXT NOT NULL
);`
	return db.ExecContext(ctx, sqlstmt)
}

func (s *SQLite) Register(ctx context.Context, token string) (model.RegisterResult, error) {
	var res model.RegisterResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		r, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO device_tokens (token, registered_at) VALUES (?, ?)`,
			token, time.Now().UTC().Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
		n, err := r.RowsAffected()
		if err != nil {
			return err
		}
		res.AlreadyRegistered = n == 0
		res.Total, err = count(ctx, tx)
		return err
	})
	if err != nil {
		return model.RegisterResult{}, fmt.Errorf("sqlite register: %w", err)
	}
	return res, nil
}

func (s *SQLite) Unregister(ctx context.Context, token string) (model.UnregisterResult, error) {
	var res model.UnregisterResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		r, err := tx.ExecContext(ctx, `DELETE FROM device_tokens WHERE token = ?`, token)
		if err != nil {
			return err
		}
		n, err := r.RowsAffected()
		if err != nil {
			return err
		}
		res.Found = n > 0
		res.Total, err = count(ctx, tx)
		return err
	})
	if err != nil {
		return model.UnregisterResult{}, fmt.Errorf("sqlite unregister: %w", err)
	}
	return res, nil
}

func (s *SQLite) Snapshot(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token FROM device_tokens ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("sqlite snapshot: %w", err)
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("sqlite snapshot: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite snapshot: %w", err)
	}
	return tokens, nil
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM device_tokens`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite count: %w", err)
	}
	return n, nil
}

func (s *SQLite) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func count(ctx context.Context, tx *sql.Tx) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM device_tokens`).Scan(&n)
	return n, err
}
