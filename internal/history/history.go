// Package history persists completed translations in a bounded,
// newest-first local store backed by SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/lingoflow-ai/lingoflow/internal/logging"
	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

// DefaultLimit bounds the store when no limit is configured.
const DefaultLimit = 200

const schema = `
CREATE TABLE IF NOT EXISTS translations (
	id              TEXT PRIMARY KEY,
	source_text     TEXT NOT NULL,
	translated_text TEXT NOT NULL,
	reasoning       TEXT NOT NULL DEFAULT '',
	source_lang     TEXT NOT NULL,
	target_lang     TEXT NOT NULL,
	provider        TEXT NOT NULL,
	model           TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_translations_id ON translations(id);
`

// Store is a bounded translation history. Records beyond the limit are
// evicted oldest-first on append. ULID primary keys sort by creation
// time, so ordering and eviction both key off the ID.
type Store struct {
	db    *sql.DB
	sq    sq.StatementBuilderType
	limit int
}

// Open opens or creates the history database at path. A limit of zero
// or less falls back to DefaultLimit.
func Open(path string, limit int) (*Store, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// modernc sqlite is not safe for concurrent writers on one handle.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	return &Store{db: db, sq: sq.StatementBuilder, limit: limit}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Limit returns the configured record bound.
func (s *Store) Limit() int { return s.limit }

// Append stores one record, assigning its ID and timestamp when unset,
// and evicts the oldest records beyond the store limit.
func (s *Store) Append(ctx context.Context, rec types.HistoryRecord) (types.HistoryRecord, error) {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	q := s.sq.Insert("translations").
		Columns("id", "source_text", "translated_text", "reasoning",
			"source_lang", "target_lang", "provider", "model", "created_at").
		Values(rec.ID, rec.SourceText, rec.TranslatedText, rec.Reasoning,
			rec.SourceLang, rec.TargetLang, rec.Provider, rec.Model,
			rec.CreatedAt.Format(time.RFC3339Nano))
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return types.HistoryRecord{}, err
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return types.HistoryRecord{}, fmt.Errorf("append history: %w", err)
	}

	if err := s.prune(ctx); err != nil {
		logging.Logger.Warn().Err(err).Msg("history prune failed")
	}
	return rec, nil
}

// prune deletes everything past the newest limit records.
func (s *Store) prune(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM translations WHERE id IN (
			SELECT id FROM translations ORDER BY id DESC LIMIT -1 OFFSET ?
		)`, s.limit)
	return err
}

// List returns all records, newest first.
func (s *Store) List(ctx context.Context) ([]types.HistoryRecord, error) {
	return s.query(ctx, s.selectAll().OrderBy("id DESC"))
}

// Search returns records whose source or translated text contains the
// query substring, newest first. An empty query lists everything.
func (s *Store) Search(ctx context.Context, query string) ([]types.HistoryRecord, error) {
	q := s.selectAll().OrderBy("id DESC")
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where(sq.Or{
			sq.Like{"source_text": pattern},
			sq.Like{"translated_text": pattern},
		})
	}
	return s.query(ctx, q)
}

// Get returns the record with the given ID.
func (s *Store) Get(ctx context.Context, id string) (types.HistoryRecord, error) {
	recs, err := s.query(ctx, s.selectAll().Where(sq.Eq{"id": id}))
	if err != nil {
		return types.HistoryRecord{}, err
	}
	if len(recs) == 0 {
		return types.HistoryRecord{}, sql.ErrNoRows
	}
	return recs[0], nil
}

// Remove deletes one record by ID. Removing an absent ID is not an
// error.
func (s *Store) Remove(ctx context.Context, id string) error {
	sqlStr, args, err := s.sq.Delete("translations").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// Clear deletes every record.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM translations")
	return err
}

func (s *Store) selectAll() sq.SelectBuilder {
	return s.sq.Select("id", "source_text", "translated_text", "reasoning",
		"source_lang", "target_lang", "provider", "model", "created_at").
		From("translations")
}

func (s *Store) query(ctx context.Context, q sq.SelectBuilder) ([]types.HistoryRecord, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.HistoryRecord
	for rows.Next() {
		var rec types.HistoryRecord
		var created string
		if err := rows.Scan(&rec.ID, &rec.SourceText, &rec.TranslatedText,
			&rec.Reasoning, &rec.SourceLang, &rec.TargetLang,
			&rec.Provider, &rec.Model, &created); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, rec)
	}
	return out, rows.Err()
}
