package drafts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"staylink-admin/internal/affiliate"
	"staylink-admin/internal/importer"
)

func TestGetByID_Success(t *testing.T) {
	t.Parallel()

	conn := newTestConn(t)
	s := NewStore(conn)
	ctx := context.Background()

	id, err := s.UpsertQueued(ctx, UpsertQueuedInput{
		EventID:   "evt-9",
		CreatedBy: "enqueue",
		URL:       "https://shopee.co.id/sepatu-i.111.222",
		Source:    "shopee",
	})
	require.NoError(t, err)
	require.NoError(t, s.MarkReady(ctx, "evt-9", &importer.Result{
		Record: affiliate.Record{Title: "Sepatu Lari", Platform: "shopee", URL: "https://shopee.co.id/product/111/222"},
	}))

	h := &Handler{store: s, sqliteEnabled: true, logger: zap.NewNop().Sugar()}
	r := chi.NewRouter()
	h.RegisterRoute(r)

	req := httptest.NewRequest(http.MethodGet, "/v1/import-drafts/"+id, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var got draftResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, id, got.ID)
	require.Equal(t, StatusReadyForReview, got.Status)

	draft, ok := got.Draft.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Sepatu Lari", draft["title"])
}

func TestGetByID_NotFound(t *testing.T) {
	t.Parallel()

	h := &Handler{store: NewStore(newTestConn(t)), sqliteEnabled: true, logger: zap.NewNop().Sugar()}
	r := chi.NewRouter()
	h.RegisterRoute(r)

	req := httptest.NewRequest(http.MethodGet, "/v1/import-drafts/missing", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetByID_SQLiteDisabled(t *testing.T) {
	t.Parallel()

	h := &Handler{store: NewStore(newTestConn(t)), sqliteEnabled: false, logger: zap.NewNop().Sugar()}
	r := chi.NewRouter()
	h.RegisterRoute(r)

	req := httptest.NewRequest(http.MethodGet, "/v1/import-drafts/x", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Contains(t, rr.Body.String(), `"error":"sqlite disabled"`)
}

func TestList_ReturnsDrafts(t *testing.T) {
	t.Parallel()

	conn := newTestConn(t)
	s := NewStore(conn)
	_, err := s.UpsertQueued(context.Background(), UpsertQueuedInput{
		EventID: "evt-list",
		URL:     "https://www.amazon.com/dp/B08N5WRWNW",
		Source:  "amazon",
	})
	require.NoError(t, err)

	h := &Handler{store: s, sqliteEnabled: true, logger: zap.NewNop().Sugar()}
	r := chi.NewRouter()
	h.RegisterRoute(r)

	req := httptest.NewRequest(http.MethodGet, "/v1/import-drafts", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		Data []draftResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Data, 1)
	require.Equal(t, "evt-list", got.Data[0].EventID)
}
