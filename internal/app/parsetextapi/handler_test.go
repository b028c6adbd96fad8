package parsetextapi

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

	"staylink-admin/internal/parsetext"
)

type stubParser struct {
	out parsetext.Partial
	err error
}

func (s *stubParser) Parse(ctx context.Context, text string) (parsetext.Partial, error) {
	return s.out, s.err
}

func doParse(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/affiliate/parse-text", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	t.Parallel()

	h := &Handler{
		parser: &stubParser{out: parsetext.Partial{Title: "Sepatu Lari", Price: "Rp 150.000"}},
		logger: zap.NewNop().Sugar(),
	}

	rec := doParse(t, h, `{"text":"Sepatu Lari Rp150.000 Deskripsi Produk ..."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got parseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.Success)
	require.Equal(t, "Sepatu Lari", got.Data.Title)
	require.Equal(t, "Rp 150.000", got.Data.Price)
}

func TestHandle_MissingText(t *testing.T) {
	t.Parallel()

	h := &Handler{parser: &stubParser{}, logger: zap.NewNop().Sugar()}
	rec := doParse(t, h, `{"text":"   "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_CompleterDisabled(t *testing.T) {
	t.Parallel()

	h := &Handler{
		parser: &stubParser{err: fmt.Errorf("completion call: completion service disabled: set COMPLETION_API_URL")},
		logger: zap.NewNop().Sugar(),
	}
	rec := doParse(t, h, `{"text":"anything"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandle_UpstreamError(t *testing.T) {
	t.Parallel()

	h := &Handler{
		parser: &stubParser{err: fmt.Errorf("completion returned no JSON object")},
		logger: zap.NewNop().Sugar(),
	}
	rec := doParse(t, h, `{"text":"anything"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}
