package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/clipkeeper/internal/domain/model"
	"github.com/ericfisherdev/clipkeeper/internal/domain/port/driven"
)

// Default row limits applied when a caller passes limit <= 0.
const (
	defaultListLimit   = 100
	defaultSearchLimit = 50
)

// Compile-time interface satisfaction check.
var _ driven.ClipStore = (*ClipRepo)(nil)

// ClipRepo is the SQLite implementation of the ClipStore port interface.
// Timestamps are stored as unix milliseconds so that ordering and the
// cleanup cutoff are plain integer comparisons.
type ClipRepo struct {
	db  *DB
	now func() time.Time
}

// NewClipRepo creates a new ClipRepo backed by the given DB.
func NewClipRepo(db *DB) *ClipRepo {
	return &ClipRepo{db: db, now: time.Now}
}

const clipColumns = `id, content, category, timestamp, is_pinned, is_favorite, encrypted_data, is_encrypted`

// AddClip inserts a new clip. is_encrypted is derived from payload != nil.
func (r *ClipRepo) AddClip(ctx context.Context, content string, category model.Category, payload []byte) (int64, error) {
	const query = `
		INSERT INTO clips (content, category, timestamp, encrypted_data, is_encrypted)
		VALUES (?, ?, ?, ?, ?)
	`

	var blob any
	if payload != nil {
		blob = payload
	}

	res, err := r.db.Writer.ExecContext(ctx, query,
		content, string(category), r.now().UnixMilli(), blob, boolToInt(payload != nil),
	)
	if err != nil {
		return 0, fmt.Errorf("add clip: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add clip: last insert id: %w", err)
	}

	return id, nil
}

// GetClip returns a single clip by id. Returns nil, nil if it does not exist.
func (r *ClipRepo) GetClip(ctx context.Context, id int64) (*model.Clip, error) {
	query := `SELECT ` + clipColumns + ` FROM clips WHERE id = ?`

	clip, err := scanClip(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clip %d: %w", id, err)
	}

	return &clip, nil
}

// ListAll returns clips with pinned rows first, then newest first.
func (r *ClipRepo) ListAll(ctx context.Context, limit int) ([]model.Clip, error) {
	query := `SELECT ` + clipColumns + `
		FROM clips
		ORDER BY is_pinned DESC, timestamp DESC, id DESC
		LIMIT ?`

	return r.queryClips(ctx, query, normalizeLimit(limit, defaultListLimit))
}

// ListByCategory returns clips of one category with pinned rows first, then newest first.
func (r *ClipRepo) ListByCategory(ctx context.Context, category model.Category, limit int) ([]model.Clip, error) {
	query := `SELECT ` + clipColumns + `
		FROM clips
		WHERE category = ?
		ORDER BY is_pinned DESC, timestamp DESC, id DESC
		LIMIT ?`

	return r.queryClips(ctx, query, string(category), normalizeLimit(limit, defaultListLimit))
}

// Search returns clips whose content contains substring, newest first. The
// match is case-insensitive for ASCII letters; LIKE wildcards in substring
// are matched literally.
func (r *ClipRepo) Search(ctx context.Context, substring string, limit int) ([]model.Clip, error) {
	query := `SELECT ` + clipColumns + `
		FROM clips
		WHERE content LIKE ? ESCAPE '\'
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`

	pattern := "%" + escapeLike(substring) + "%"
	return r.queryClips(ctx, query, pattern, normalizeLimit(limit, defaultSearchLimit))
}

// TogglePin flips is_pinned in a single statement and returns the new value.
func (r *ClipRepo) TogglePin(ctx context.Context, id int64) (bool, error) {
	const query = `UPDATE clips SET is_pinned = 1 - is_pinned WHERE id = ? RETURNING is_pinned`
	return r.toggle(ctx, query, "pin", id)
}

// ToggleFavorite flips is_favorite in a single statement and returns the new value.
func (r *ClipRepo) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	const query = `UPDATE clips SET is_favorite = 1 - is_favorite WHERE id = ? RETURNING is_favorite`
	return r.toggle(ctx, query, "favorite", id)
}

// toggle runs a flag-flipping UPDATE ... RETURNING on the writer connection.
// The existence check and the write are the same statement, so a concurrent
// delete either happens before (no row, false) or after the toggle.
func (r *ClipRepo) toggle(ctx context.Context, query, flag string, id int64) (bool, error) {
	var state int
	err := r.db.Writer.QueryRowContext(ctx, query, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("toggle %s for clip %d: %w", flag, id, err)
	}
	return state == 1, nil
}

// Delete removes a clip by id and reports whether a row was removed.
func (r *ClipRepo) Delete(ctx context.Context, id int64) (bool, error) {
	const query = `DELETE FROM clips WHERE id = ?`

	res, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete clip %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete clip %d: rows affected: %w", id, err)
	}

	return n > 0, nil
}

// CheckDuplicate reports whether a clip with exactly the given content exists.
func (r *ClipRepo) CheckDuplicate(ctx context.Context, content string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM clips WHERE content = ? LIMIT 1)`

	var exists int
	if err := r.db.Reader.QueryRowContext(ctx, query, content).Scan(&exists); err != nil {
		return false, fmt.Errorf("check duplicate clip: %w", err)
	}
	return exists == 1, nil
}

// CleanupOlderThan deletes non-pinned clips created strictly before
// now - days. A clip exactly at the cutoff is kept.
func (r *ClipRepo) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	const query = `DELETE FROM clips WHERE is_pinned = 0 AND timestamp < ?`

	cutoff := r.now().Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()

	res, err := r.db.Writer.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup clips older than %d days: %w", days, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup clips: rows affected: %w", err)
	}

	return n, nil
}

// Count returns the number of stored clips.
func (r *ClipRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM clips`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count clips: %w", err)
	}
	return n, nil
}

// queryClips runs a multi-row clip query and scans every row.
func (r *ClipRepo) queryClips(ctx context.Context, query string, args ...any) ([]model.Clip, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query clips: %w", err)
	}
	defer rows.Close()

	clips := []model.Clip{}
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		clips = append(clips, clip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clips: %w", err)
	}

	return clips, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanClip(s scanner) (model.Clip, error) {
	var (
		c                                 model.Clip
		category                          string
		createdAt                         int64
		isPinned, isFavorite, isEncrypted int
		payload                           []byte
	)

	if err := s.Scan(&c.ID, &c.Content, &category, &createdAt, &isPinned, &isFavorite, &payload, &isEncrypted); err != nil {
		return model.Clip{}, err
	}

	c.Category = model.Category(category)
	c.CreatedAt = time.UnixMilli(createdAt).UTC()
	c.IsPinned = isPinned == 1
	c.IsFavorite = isFavorite == 1
	c.IsEncrypted = isEncrypted == 1
	if c.IsEncrypted {
		c.EncryptedPayload = payload
	}

	return c, nil
}

// escapeLike escapes LIKE metacharacters so s is matched literally with ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func normalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
