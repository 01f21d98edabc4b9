// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vidstash/vidstash/internal/media/model"
	"github.com/vidstash/vidstash/internal/persistence/sqlite"
)

const schemaVersion = 1

// SqliteStore implements Store on SQLite.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (or creates) the media database at dbPath.
func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	db, err := sqlite.Open(dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}

	s := &SqliteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("media store: migration failed: %w", err)
	}
	return s, nil
}

func (s *SqliteStore) Close() error { return s.db.Close() }

func (s *SqliteStore) migrate() error {
	var currentVersion int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&currentVersion); err != nil {
		return err
	}
	if currentVersion >= schemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS media (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		trim_start REAL NOT NULL,
		trim_end REAL,
		user_id TEXT NOT NULL,
		original_url TEXT,
		file_name TEXT,
		mime_type TEXT,
		file_size INTEGER,
		created_at_ms INTEGER NOT NULL,
		updated_at_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_media_user_url ON media(user_id, original_url);

	CREATE TABLE IF NOT EXISTS blobs (
		media_id TEXT PRIMARY KEY,
		data BLOB NOT NULL
	);
	`
	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

const upsertSQL = `
	INSERT INTO media (id, source, title, description, trim_start, trim_end, user_id,
		original_url, file_name, mime_type, file_size, created_at_ms, updated_at_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		description = excluded.description,
		trim_start = excluded.trim_start,
		trim_end = excluded.trim_end,
		updated_at_ms = excluded.updated_at_ms`

func upsertArgs(rec *model.Record) []any {
	var trimEnd any
	if rec.TrimEnd != nil {
		trimEnd = *rec.TrimEnd
	}
	return []any{
		rec.ID, string(rec.Source), rec.Title, rec.Description, rec.TrimStart, trimEnd,
		rec.UserID, nullable(rec.OriginalURL), nullable(rec.FileName), nullable(rec.MimeType),
		rec.FileSize, rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli(),
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *SqliteStore) Put(ctx context.Context, rec *model.Record) error {
	cp := rec.Clone()
	cp.Normalize()
	_, err := s.db.ExecContext(ctx, upsertSQL, upsertArgs(cp)...)
	if err != nil {
		return fmt.Errorf("media store: put: %w", err)
	}
	return nil
}

func (s *SqliteStore) PutWithBlob(ctx context.Context, rec *model.Record, blob []byte) error {
	cp := rec.Clone()
	cp.Normalize()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, upsertSQL, upsertArgs(cp)...); err != nil {
		return fmt.Errorf("media store: put: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO blobs (media_id, data) VALUES (?, ?) ON CONFLICT(media_id) DO UPDATE SET data = excluded.data",
		cp.ID, blob); err != nil {
		return fmt.Errorf("media store: put blob: %w", err)
	}
	return tx.Commit()
}

const selectCols = `id, source, title, description, trim_start, trim_end, user_id,
	original_url, file_name, mime_type, file_size, created_at_ms, updated_at_ms`

func scanRecord(row interface{ Scan(...any) error }) (*model.Record, error) {
	var (
		rec         model.Record
		source      string
		trimEnd     sql.NullFloat64
		originalURL sql.NullString
		fileName    sql.NullString
		mimeType    sql.NullString
		fileSize    sql.NullInt64
		createdMs   int64
		updatedMs   int64
	)
	err := row.Scan(&rec.ID, &source, &rec.Title, &rec.Description, &rec.TrimStart,
		&trimEnd, &rec.UserID, &originalURL, &fileName, &mimeType, &fileSize,
		&createdMs, &updatedMs)
	if err != nil {
		return nil, err
	}
	rec.Source = model.Source(source)
	if trimEnd.Valid {
		rec.TrimEnd = &trimEnd.Float64
	}
	rec.OriginalURL = originalURL.String
	rec.FileName = fileName.String
	rec.MimeType = mimeType.String
	rec.FileSize = fileSize.Int64
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	rec.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	rec.Normalize()
	return &rec, nil
}

func (s *SqliteStore) Get(ctx context.Context, id string) (*model.Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectCols+" FROM media WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (s *SqliteStore) FindByOriginalURL(ctx context.Context, userID, url string) (*model.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectCols+" FROM media WHERE user_id = ? AND original_url = ? LIMIT 1",
		userID, url)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (s *SqliteStore) List(ctx context.Context) ([]*model.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+selectCols+" FROM media ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var list []*model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func (s *SqliteStore) GetBlob(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM blobs WHERE media_id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Ensure interface compliance at compile time.
var _ Store = (*SqliteStore)(nil)
