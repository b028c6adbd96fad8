package drafts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"staylink-admin/internal/affiliate"
	"staylink-admin/internal/importer"

	_ "modernc.org/sqlite"
)

func newTestConn(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE import_drafts (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL,
  url TEXT NOT NULL,
  source TEXT NOT NULL DEFAULT '',
  draft_payload TEXT NOT NULL DEFAULT '{}',
  error TEXT NULL,
  created_by TEXT NULL,
  created_at_ms INTEGER NOT NULL,
  updated_at_ms INTEGER NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func TestUpsertQueued_InsertsThenKeepsID(t *testing.T) {
	t.Parallel()

	s := NewStore(newTestConn(t))
	ctx := context.Background()

	in := UpsertQueuedInput{
		EventID:   "urlsha256:abc",
		CreatedBy: "enqueue",
		URL:       "https://shopee.co.id/product-i.1.2",
		Source:    "shopee",
	}

	id1, err := s.UpsertQueued(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	// Re-queueing the same event keeps the original row.
	id2, err := s.UpsertQueued(ctx, in)
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	d, err := s.GetByID(ctx, id1)
	require.NoError(t, err)
	require.Equal(t, StatusQueued, d.Status)
	require.Equal(t, "shopee", d.Source)
}

func TestUpsertQueued_Validation(t *testing.T) {
	t.Parallel()

	s := NewStore(newTestConn(t))

	_, err := s.UpsertQueued(context.Background(), UpsertQueuedInput{EventID: "", URL: "not a url"})
	require.Error(t, err)
}

func TestMarkReadyAndFailed(t *testing.T) {
	t.Parallel()

	s := NewStore(newTestConn(t))
	ctx := context.Background()

	id, err := s.UpsertQueued(ctx, UpsertQueuedInput{
		EventID: "evt-1",
		URL:     "https://www.amazon.com/dp/B08N5WRWNW",
		Source:  "amazon",
	})
	require.NoError(t, err)

	res := &importer.Result{
		Record: affiliate.Record{Title: "Echo Dot", Platform: "amazon", URL: "https://www.amazon.com/dp/B08N5WRWNW"},
		Link:   "https://www.amazon.com/dp/B08N5WRWNW?tag=mytag-20",
	}
	require.NoError(t, s.MarkReady(ctx, "evt-1", res))

	d, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StatusReadyForReview, d.Status)
	require.Contains(t, d.DraftPayload, "Echo Dot")
	require.Nil(t, d.Error)

	require.NoError(t, s.MarkFailed(ctx, "evt-1", "upstream timeout"))
	d, err = s.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, StatusFailed, d.Status)
	require.NotNil(t, d.Error)
	require.Equal(t, "upstream timeout", *d.Error)
}

func TestMarkReady_UnknownEvent(t *testing.T) {
	t.Parallel()

	s := NewStore(newTestConn(t))
	err := s.MarkReady(context.Background(), "missing", &importer.Result{})
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListRecent_NewestFirst(t *testing.T) {
	t.Parallel()

	s := NewStore(newTestConn(t))
	ctx := context.Background()

	// Deterministic, strictly increasing clock so ordering is unambiguous.
	var tick int64
	s.now = func() time.Time {
		tick++
		return time.UnixMilli(tick)
	}

	_, err := s.UpsertQueued(ctx, UpsertQueuedInput{EventID: "e1", URL: "https://shopee.co.id/a-i.1.2"})
	require.NoError(t, err)
	_, err = s.UpsertQueued(ctx, UpsertQueuedInput{EventID: "e2", URL: "https://shopee.co.id/b-i.3.4"})
	require.NoError(t, err)

	// Touch e1 so it becomes the most recent.
	require.NoError(t, s.MarkFailed(ctx, "e1", "x"))

	ds, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	require.Equal(t, "e1", ds[0].EventID)
}
