package links

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"staylink-admin/config"
)

func newTestHandler(cfg *config.Config) *Handler {
	return &Handler{cfg: cfg, logger: zap.NewNop().Sugar()}
}

func doLinks(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/affiliate/links", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_AmazonTagged(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Amazon.PartnerTag = "mytag-20"
	h := newTestHandler(cfg)

	rec := doLinks(t, h, `{"url":"https://www.amazon.com/dp/B08N5WRWNW"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got linkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "amazon", got.Platform)
	require.Contains(t, got.Link, "tag=mytag-20")
}

func TestHandle_ShopeeTagged(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Shopee.AffiliateID = "aff123"
	cfg.Shopee.Region = "co.id"
	h := newTestHandler(cfg)

	rec := doLinks(t, h, `{"url":"https://shopee.co.id/product-i.111.222"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got linkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "shopee", got.Platform)
	require.Contains(t, got.Link, "af_id=aff123")
}

func TestHandle_NoTagConfigured(t *testing.T) {
	t.Parallel()

	h := newTestHandler(&config.Config{})
	rec := doLinks(t, h, `{"url":"https://www.amazon.com/dp/B08N5WRWNW"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandle_UnsupportedDomain(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Amazon.PartnerTag = "mytag-20"
	h := newTestHandler(cfg)

	rec := doLinks(t, h, `{"url":"https://example.com/thing"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
