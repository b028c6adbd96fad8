package stats

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE affiliate_products (
  id TEXT PRIMARY KEY,
  platform TEXT NOT NULL DEFAULT '',
  active INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE translations (
  id TEXT PRIMARY KEY,
  language_code TEXT NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func TestStats_Counts(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	_, err := db.Exec(`
INSERT INTO affiliate_products (id, platform, active) VALUES
  ('p1', 'amazon', 1),
  ('p2', 'amazon', 0),
  ('p3', 'shopee', 1);
INSERT INTO translations (id, language_code) VALUES
  ('t1', 'en'), ('t2', 'id'), ('t3', 'en');
`)
	require.NoError(t, err)

	h := &Handler{db: db, logger: zap.NewNop().Sugar()}
	r := chi.NewRouter()
	h.RegisterRoute(r)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard/stats", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var got statsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, 3, got.Products)
	require.Equal(t, 2, got.ActiveProducts)
	require.Equal(t, 2, got.ProductsByPlatform["amazon"])
	require.Equal(t, 1, got.ProductsByPlatform["shopee"])
	require.Equal(t, 3, got.Translations)
	require.Equal(t, 2, got.Languages)
}

func TestStats_DatabaseDisabled(t *testing.T) {
	t.Parallel()

	h := &Handler{db: nil, logger: zap.NewNop().Sugar()}
	r := chi.NewRouter()
	h.RegisterRoute(r)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard/stats", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
