package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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
  title TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE bookings (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL DEFAULT '',
  created_at_ms INTEGER NOT NULL
);
CREATE TABLE payments (
  id TEXT PRIMARY KEY,
  booking_id TEXT,
  amount_net REAL NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT '',
  created_at_ms INTEGER NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func newTestRouter(t *testing.T, db *sqlx.DB, now time.Time) *chi.Mux {
	t.Helper()

	h := &Handler{
		db:     db,
		logger: zap.NewNop().Sugar(),
		now:    func() time.Time { return now },
	}
	r := chi.NewRouter()
	h.RegisterRoute(r)
	return r
}

func TestAnalytics(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)

	exec := func(q string, args ...any) {
		_, err := db.Exec(q, args...)
		require.NoError(t, err)
	}

	exec("INSERT INTO affiliate_products (id, title, active) VALUES ('pr1', 'Adapter', 1)")
	exec("INSERT INTO affiliate_products (id, title, active) VALUES ('pr2', 'Old Adapter', 0)")

	today := now.Truncate(24 * time.Hour)
	exec("INSERT INTO bookings (id, status, created_at_ms) VALUES ('bk1', 'confirmed', ?)", today.Add(2*time.Hour).UnixMilli())
	exec("INSERT INTO bookings (id, status, created_at_ms) VALUES ('bk2', 'confirmed', ?)", today.AddDate(0, 0, -3).UnixMilli())
	exec("INSERT INTO bookings (id, status, created_at_ms) VALUES ('bk3', 'cancelled', ?)", today.AddDate(0, 0, -40).UnixMilli())

	exec("INSERT INTO payments (id, booking_id, amount_net, status, created_at_ms) VALUES ('p1', 'bk1', 120.5, 'captured', ?)", today.Add(3*time.Hour).UnixMilli())
	exec("INSERT INTO payments (id, booking_id, amount_net, status, created_at_ms) VALUES ('p2', 'bk2', 80, 'captured', ?)", today.AddDate(0, 0, -3).UnixMilli())
	exec("INSERT INTO payments (id, booking_id, amount_net, status, created_at_ms) VALUES ('p3', 'bk3', 999, 'captured', ?)", today.AddDate(0, 0, -40).UnixMilli())
	exec("INSERT INTO payments (id, booking_id, amount_net, status, created_at_ms) VALUES ('p4', 'bk1', 55, 'pending', ?)", today.UnixMilli())

	r := newTestRouter(t, db, now)
	req := httptest.NewRequest(http.MethodGet, "/v1/analytics", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp analyticsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	// All-time totals: captured payments only, all bookings, active products.
	require.Equal(t, 120.5+80+999, resp.Data.Overview.TotalRevenue)
	require.Equal(t, 3, resp.Data.Overview.TotalBookings)
	require.Equal(t, 1, resp.Data.Overview.ActiveProducts)

	// Continuous 30-day windows, zero-filled, oldest first.
	require.Len(t, resp.Data.Trends.Revenue, trendDays)
	require.Len(t, resp.Data.Trends.Bookings, trendDays)

	last := resp.Data.Trends.Revenue[trendDays-1]
	require.Equal(t, today.Format("2006-01-02"), last.Date)
	require.Equal(t, 120.5, last.Total) // pending payment excluded

	threeAgo := today.AddDate(0, 0, -3).Format("2006-01-02")
	var found bool
	for _, p := range resp.Data.Trends.Revenue {
		if p.Date == threeAgo {
			require.Equal(t, 80.0, p.Total)
			found = true
		}
	}
	require.True(t, found)

	// The 40-day-old booking falls outside the window but still counts in the
	// status distribution.
	require.Equal(t, 0, resp.Data.Trends.Bookings[0].Count)
	require.Equal(t, 1, resp.Data.Trends.Bookings[trendDays-1].Count)

	byStatus := map[string]int{}
	for _, sc := range resp.Data.Distribution.Status {
		byStatus[sc.Status] = sc.Count
	}
	require.Equal(t, map[string]int{"confirmed": 2, "cancelled": 1}, byStatus)
}

func TestAnalytics_DatabaseDisabled(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, nil, time.Now().UTC())
	req := httptest.NewRequest(http.MethodGet, "/v1/analytics", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
