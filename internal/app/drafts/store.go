package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"staylink-admin/db"
	"staylink-admin/internal/importer"
)

const (
	StatusQueued         = "QUEUED"
	StatusReadyForReview = "READY_FOR_REVIEW"
	StatusFailed         = "FAILED"
)

type Draft struct {
	ID           string  `json:"id"`
	EventID      string  `json:"event_id"`
	Status       string  `json:"status"`
	URL          string  `json:"url"`
	Source       string  `json:"source"`
	DraftPayload string  `json:"-"`
	Error        *string `json:"error"`
	CreatedBy    *string `json:"created_by"`
	CreatedAtMs  int64   `json:"created_at_ms"`
	UpdatedAtMs  int64   `json:"updated_at_ms"`
}

type UpsertQueuedInput struct {
	EventID   string `validate:"required"`
	CreatedBy string
	URL       string `validate:"required,url"`
	Source    string
}

// Store persists import drafts in the Turso sqlite database. All writes key
// on event_id so retries of the same URL collapse into one draft row.
type Store struct {
	conn     db.Conn
	validate *validator.Validate
	now      func() time.Time
}

func NewStore(conn db.Conn) *Store {
	return &Store{
		conn:     conn,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) UpsertQueued(ctx context.Context, in UpsertQueuedInput) (string, error) {
	_ = ctx
	if err := s.validate.Struct(in); err != nil {
		return "", err
	}

	now := s.now().UnixMilli()
	id := uuid.NewString()

	q := s.conn.Rebind(`
INSERT INTO import_drafts (id, event_id, status, url, source, draft_payload, error, created_by, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, '{}', NULL, ?, ?, ?)
ON CONFLICT(event_id) DO UPDATE SET
  status = excluded.status,
  url = excluded.url,
  source = excluded.source,
  error = NULL,
  updated_at_ms = excluded.updated_at_ms`)
	if _, err := s.conn.Exec(q, id, in.EventID, StatusQueued, in.URL, in.Source, nullableString(in.CreatedBy), now, now); err != nil {
		return "", fmt.Errorf("upsert queued draft: %w", err)
	}

	// The conflict path keeps the original id; read it back.
	var got string
	row := s.conn.QueryRowx(s.conn.Rebind("SELECT id FROM import_drafts WHERE event_id = ?"), in.EventID)
	if err := row.Scan(&got); err != nil {
		return "", fmt.Errorf("read back draft id: %w", err)
	}
	return got, nil
}

func (s *Store) MarkReady(ctx context.Context, eventID string, res *importer.Result) error {
	_ = ctx
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode draft payload: %w", err)
	}

	q := s.conn.Rebind(`
UPDATE import_drafts SET status = ?, draft_payload = ?, error = NULL, updated_at_ms = ?
WHERE event_id = ?`)
	out, err := s.conn.Exec(q, StatusReadyForReview, string(payload), s.now().UnixMilli(), eventID)
	if err != nil {
		return fmt.Errorf("mark draft ready: %w", err)
	}
	if n, err := out.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) MarkFailed(ctx context.Context, eventID, errMsg string) error {
	_ = ctx
	q := s.conn.Rebind(`
UPDATE import_drafts SET status = ?, error = ?, updated_at_ms = ?
WHERE event_id = ?`)
	out, err := s.conn.Exec(q, StatusFailed, errMsg, s.now().UnixMilli(), eventID)
	if err != nil {
		return fmt.Errorf("mark draft failed: %w", err)
	}
	if n, err := out.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (Draft, error) {
	_ = ctx
	row := s.conn.QueryRowx(s.conn.Rebind(`
SELECT id, event_id, status, url, source, draft_payload, error, created_by, created_at_ms, updated_at_ms
FROM import_drafts WHERE id = ?`), id)

	var d Draft
	if err := row.Scan(&d.ID, &d.EventID, &d.Status, &d.URL, &d.Source, &d.DraftPayload, &d.Error, &d.CreatedBy, &d.CreatedAtMs, &d.UpdatedAtMs); err != nil {
		return Draft{}, err
	}
	return d, nil
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]Draft, error) {
	_ = ctx
	if limit < 1 || limit > 200 {
		limit = 50
	}

	rows, err := s.conn.Queryx(s.conn.Rebind(`
SELECT id, event_id, status, url, source, draft_payload, error, created_by, created_at_ms, updated_at_ms
FROM import_drafts ORDER BY updated_at_ms DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	out := []Draft{}
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.ID, &d.EventID, &d.Status, &d.URL, &d.Source, &d.DraftPayload, &d.Error, &d.CreatedBy, &d.CreatedAtMs, &d.UpdatedAtMs); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullableString(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}
