package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Publisher forwards changed paths to other instances sharing the database.
type Publisher interface {
	Publish(ctx context.Context, path string) error
}

// Postgres is a Store backed by the nodes table.
type Postgres struct {
	db  *sqlx.DB
	hub *Hub
	bus Publisher
}

// NewPostgres creates a Postgres store. bus may be nil for a single instance.
func NewPostgres(db *sqlx.DB, bus Publisher) *Postgres {
	return &Postgres{db: db, hub: NewHub(), bus: bus}
}

// Hub exposes the local subscription hub so remote changes can be relayed to it.
func (s *Postgres) Hub() *Hub { return s.hub }

type nodeRow struct {
	Path  string `db:"path"`
	Value []byte `db:"value"`
}

func (s *Postgres) Read(ctx context.Context, path string) (Snapshot, error) {
	p, err := CleanPath(path)
	if err != nil {
		return Snapshot{}, err
	}

	var value []byte
	err = s.db.GetContext(ctx, &value, `SELECT value FROM nodes WHERE path = $1`, p)
	if err == nil {
		return Snapshot{Path: p, Exists: true, Value: value}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("read %s: %w", p, err)
	}

	var rows []nodeRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT path, value FROM nodes WHERE parent = $1 ORDER BY path`, p); err != nil {
		return Snapshot{}, fmt.Errorf("read children of %s: %w", p, err)
	}
	if len(rows) == 0 {
		return Snapshot{Path: p}, nil
	}
	children := make(map[string]json.RawMessage, len(rows))
	for _, r := range rows {
		children[strings.TrimPrefix(r.Path, p+"/")] = r.Value
	}
	raw, err := json.Marshal(children)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Path: p, Exists: true, Value: raw}, nil
}

func (s *Postgres) Set(ctx context.Context, path string, value any) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE path LIKE $1 ESCAPE '\'`, descendantsPattern(p)); err != nil {
		return fmt.Errorf("set %s: %w", p, err)
	}
	const q = `
        INSERT INTO nodes (path, parent, value)
        VALUES ($1, $2, $3::jsonb)
        ON CONFLICT (path) DO UPDATE SET
            value = EXCLUDED.value,
            updated_at = NOW()`
	if _, err := tx.ExecContext(ctx, q, p, parentOf(p), string(raw)); err != nil {
		return fmt.Errorf("set %s: %w", p, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.changed(ctx, p)
	return nil
}

func (s *Postgres) Update(ctx context.Context, path string, fields map[string]any) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}
	patch, err := mergeFields(nil, fields)
	if err != nil {
		return err
	}

	const q = `
        INSERT INTO nodes (path, parent, value)
        VALUES ($1, $2, $3::jsonb)
        ON CONFLICT (path) DO UPDATE SET
            value = nodes.value || EXCLUDED.value,
            updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, q, p, parentOf(p), string(patch)); err != nil {
		return fmt.Errorf("update %s: %w", p, err)
	}

	s.changed(ctx, p)
	return nil
}

func (s *Postgres) Remove(ctx context.Context, path string) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}

	const q = `DELETE FROM nodes WHERE path = $1 OR path LIKE $2 ESCAPE '\'`
	if _, err := s.db.ExecContext(ctx, q, p, descendantsPattern(p)); err != nil {
		return fmt.Errorf("remove %s: %w", p, err)
	}

	s.changed(ctx, p)
	return nil
}

func (s *Postgres) Push(_ context.Context, path string) (string, error) {
	if _, err := CleanPath(path); err != nil {
		return "", err
	}
	return NewID()
}

func (s *Postgres) Subscribe(ctx context.Context, path string, fn func(Snapshot)) (*Subscription, error) {
	p, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	return s.hub.subscribe(ctx, p, s.Read, fn), nil
}

// changed wakes local subscribers and tells the other instances.
func (s *Postgres) changed(ctx context.Context, path string) {
	s.hub.Notify(path)
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to publish store change")
	}
}

// descendantsPattern returns a LIKE pattern matching every path below p.
func descendantsPattern(p string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(p) + "/%"
}
