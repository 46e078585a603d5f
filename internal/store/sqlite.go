package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ykvlv/diary-bot/internal/domain"
)

// SQLiteRepo implements Repo over an embedded SQLite database. Profiles and
// global plan lists are stored as JSON documents keyed by user id.
type SQLiteRepo struct {
	db        *sql.DB
	defaultTZ string
}

// OpenSQLite opens (or creates) the database at path, applies PRAGMAs, runs
// migrations, and returns a repository. defaultTZ is used to normalize
// profiles whose stored timezone is missing.
func OpenSQLite(ctx context.Context, path, defaultTZ string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single-writer engine; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db, defaultTZ: defaultTZ}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func key(id int64) string { return strconv.FormatInt(id, 10) }

func (r *SQLiteRepo) GetProfile(ctx context.Context, id int64) (*domain.Profile, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT doc FROM profiles WHERE id = ?`, key(id),
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.decodeProfile(doc)
}

func (r *SQLiteRepo) decodeProfile(doc string) (*domain.Profile, error) {
	var p domain.Profile
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p.Normalize(r.defaultTZ)
	return &p, nil
}

func (r *SQLiteRepo) PutProfile(ctx context.Context, p *domain.Profile) error {
	if p == nil {
		return errors.New("nil profile")
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, doc) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`,
		key(p.ID), string(doc),
	)
	return err
}

// UpdateProfile runs a read-modify-write of one profile inside an IMMEDIATE
// transaction, so concurrent updates to the same user serialize at the database
// instead of clobbering each other's writes.
func (r *SQLiteRepo) UpdateProfile(ctx context.Context, id int64, fn func(*domain.Profile) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var doc string
	err = tx.QueryRowContext(ctx,
		`SELECT doc FROM profiles WHERE id = ?`, key(id),
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	p, err := r.decodeProfile(doc)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}

	out, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE profiles SET doc = ? WHERE id = ?`, string(out), key(id),
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepo) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT doc FROM profiles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Profile
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		p, err := r.decodeProfile(doc)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *SQLiteRepo) GetGlobalPlans(ctx context.Context, id int64) ([]string, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT doc FROM global_plans WHERE id = ?`, key(id),
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var plans []string
	if err := json.Unmarshal([]byte(doc), &plans); err != nil {
		return nil, fmt.Errorf("decode global plans: %w", err)
	}
	return plans, nil
}

func (r *SQLiteRepo) PutGlobalPlans(ctx context.Context, id int64, plans []string) error {
	doc, err := json.Marshal(plans)
	if err != nil {
		return fmt.Errorf("encode global plans: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO global_plans (id, doc) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`,
		key(id), string(doc),
	)
	return err
}

func (r *SQLiteRepo) DeleteGlobalPlans(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM global_plans WHERE id = ?`, key(id),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
