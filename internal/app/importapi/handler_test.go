package importapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"staylink-admin/internal/affiliate"
	"staylink-admin/internal/importer"
)

type stubImporter struct {
	res *importer.Result
	err error
}

func (s *stubImporter) Import(ctx context.Context, rawURL string) (*importer.Result, error) {
	return s.res, s.err
}

func newTestHandler(imp urlImporter) *Handler {
	return &Handler{importer: imp, logger: zap.NewNop().Sugar()}
}

func doImport(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/affiliate/import", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	t.Parallel()

	res := &importer.Result{
		Record: affiliate.Record{Title: "Echo Dot", Platform: "amazon", URL: "https://www.amazon.com/dp/B08N5WRWNW"},
		Link:   "https://www.amazon.com/dp/B08N5WRWNW?tag=mytag-20",
	}
	h := newTestHandler(&stubImporter{res: res})

	rec := doImport(t, h, `{"url":"https://www.amazon.com/dp/B08N5WRWNW"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got importResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.Success)
	require.Equal(t, "Echo Dot", got.Data.Title)
	require.Equal(t, res.Link, got.Data.Link)
}

func TestHandle_InvalidJSON(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&stubImporter{})
	rec := doImport(t, h, `{"url":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_MissingURL(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&stubImporter{})
	rec := doImport(t, h, `{"url":"  "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_NonHTTPURL(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&stubImporter{})
	rec := doImport(t, h, `{"url":"ftp://shopee.co.id/x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"identifier_not_found", fmt.Errorf("%w: no asin", affiliate.ErrIdentifierNotFound), http.StatusBadRequest},
		{"product_not_found", affiliate.ErrProductNotFound, http.StatusNotFound},
		{"missing_credentials", affiliate.ErrMissingCredentials, http.StatusServiceUnavailable},
		{"upstream_blocked", affiliate.ErrUpstreamBlocked, http.StatusServiceUnavailable},
		{"upstream_rejected", affiliate.ErrUpstreamRejected, http.StatusBadGateway},
		{"transport", affiliate.ErrTransport, http.StatusBadGateway},
		{"extraction_failed", affiliate.ErrExtractionFailed, http.StatusBadGateway},
		{"incomplete_data", affiliate.ErrIncompleteUpstreamData, http.StatusBadGateway},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandler(&stubImporter{err: tc.err})
			rec := doImport(t, h, `{"url":"https://www.amazon.com/dp/B08N5WRWNW"}`)
			require.Equal(t, tc.want, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, false, body["success"])
			require.NotEmpty(t, body["error"])
		})
	}
}
