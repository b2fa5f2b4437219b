// Package profile stores birth records in a local SQLite database so charts
// can be recomputed by id without re-entering the data.
package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/kundali/internal/birth"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when no profile matches an id or name.
	ErrNotFound = errors.New("profile not found")
	// ErrAmbiguous is returned when a prefix or name matches several profiles.
	ErrAmbiguous = errors.New("profile reference is ambiguous")
)

// MinPrefix is the shortest id prefix Get accepts.
const MinPrefix = 4

const localLayout = "2006-01-02T15:04:05"

// schema contains the DDL executed on open. IF NOT EXISTS makes it safe to
// run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    local      TEXT NOT NULL,
    place      TEXT NOT NULL DEFAULT '',
    utc_offset TEXT NOT NULL DEFAULT '',
    latitude   REAL,
    longitude  REAL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS profiles_name ON profiles(name);
`

// Profile is a saved birth record.
type Profile struct {
	ID        string       `json:"id"`
	Record    birth.Record `json:"record"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Store is a SQLite-backed profile store in WAL mode.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, creating parent directories.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("profile: create %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("profile: open database: %w", err)
	}

	// SQLite has a single writer; one pooled connection keeps the PRAGMAs
	// below in effect for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("profile: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("profile: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("profile: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add validates rec and saves it under a new id.
func (s *Store) Add(ctx context.Context, rec birth.Record) (Profile, error) {
	if err := rec.Validate(); err != nil {
		return Profile{}, err
	}
	now := time.Now().UTC()
	p := Profile{ID: uuid.NewString(), Record: rec, CreatedAt: now, UpdatedAt: now}

	const q = `
		INSERT INTO profiles (id, name, local, place, utc_offset, latitude, longitude, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, p.ID, rec.Name, rec.Local.Format(localLayout), rec.Place,
		rec.UTCOffset, nullFloat(rec.Latitude), nullFloat(rec.Longitude),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return Profile{}, fmt.Errorf("profile: insert %q: %w", rec.Name, err)
	}
	return p, nil
}

// Update replaces the record stored under id.
func (s *Store) Update(ctx context.Context, id string, rec birth.Record) (Profile, error) {
	if err := rec.Validate(); err != nil {
		return Profile{}, err
	}
	now := time.Now().UTC()
	const q = `
		UPDATE profiles SET name = ?, local = ?, place = ?, utc_offset = ?,
			latitude = ?, longitude = ?, updated_at = ?
		WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, rec.Name, rec.Local.Format(localLayout), rec.Place,
		rec.UTCOffset, nullFloat(rec.Latitude), nullFloat(rec.Longitude), now.Format(time.RFC3339Nano), id)
	if err != nil {
		return Profile{}, fmt.Errorf("profile: update %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.byID(ctx, id)
}

// Get resolves ref as a full id, a unique id prefix of at least MinPrefix
// characters, or a unique name (case-insensitive).
func (s *Store) Get(ctx context.Context, ref string) (Profile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Profile{}, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if _, err := uuid.Parse(ref); err == nil {
		return s.byID(ctx, ref)
	}

	var matches []Profile
	var err error
	if len(ref) >= MinPrefix {
		matches, err = s.query(ctx, "WHERE id LIKE ? ESCAPE '\\' ORDER BY created_at", escapeLike(strings.ToLower(ref))+"%")
		if err != nil {
			return Profile{}, err
		}
	}
	if len(matches) == 0 {
		matches, err = s.query(ctx, "WHERE lower(name) = lower(?) ORDER BY created_at", ref)
		if err != nil {
			return Profile{}, err
		}
	}
	switch len(matches) {
	case 0:
		return Profile{}, fmt.Errorf("%w: %q", ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return Profile{}, fmt.Errorf("%w: %q matches %d profiles", ErrAmbiguous, ref, len(matches))
	}
}

// List returns every profile ordered by name then creation time.
func (s *Store) List(ctx context.Context) ([]Profile, error) {
	return s.query(ctx, "ORDER BY lower(name), created_at")
}

// Delete removes the profile with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("profile: delete %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *Store) byID(ctx context.Context, id string) (Profile, error) {
	ps, err := s.query(ctx, "WHERE id = ?", id)
	if err != nil {
		return Profile{}, err
	}
	if len(ps) == 0 {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return ps[0], nil
}

func (s *Store) query(ctx context.Context, where string, args ...any) ([]Profile, error) {
	q := `SELECT id, name, local, place, utc_offset, latitude, longitude, created_at, updated_at
		FROM profiles ` + where
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("profile: query: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var (
			p                       Profile
			local, created, updated string
			lat, lon                sql.NullFloat64
		)
		if err := rows.Scan(&p.ID, &p.Record.Name, &local, &p.Record.Place, &p.Record.UTCOffset,
			&lat, &lon, &created, &updated); err != nil {
			return nil, fmt.Errorf("profile: scan: %w", err)
		}
		if p.Record.Local, err = time.Parse(localLayout, local); err != nil {
			return nil, fmt.Errorf("profile: %s: bad local time %q: %w", p.ID, local, err)
		}
		if lat.Valid {
			p.Record.Latitude = &lat.Float64
		}
		if lon.Valid {
			p.Record.Longitude = &lon.Float64
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profile: iterate: %w", err)
	}
	return out, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
