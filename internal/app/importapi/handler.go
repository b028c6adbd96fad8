package importapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"staylink-admin/internal/affiliate"
	"staylink-admin/internal/importer"
	"staylink-admin/internal/pkg/render"
	"staylink-admin/internal/router"
)

type urlImporter interface {
	Import(ctx context.Context, rawURL string) (*importer.Result, error)
}

type Handler struct {
	importer urlImporter
	logger   *zap.SugaredLogger
}

type NewHandlerParams struct {
	fx.In

	Importer *importer.Importer
	Logger   *zap.SugaredLogger
}

func NewHandler(p NewHandlerParams) *Handler {
	return &Handler{importer: p.Importer, logger: p.Logger}
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Post("/v1/affiliate/import", h.Handle)
}

type importRequest struct {
	URL string `json:"url"`
}

type importResponse struct {
	Success bool             `json:"success"`
	Data    *importer.Result `json:"data"`
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.ChiErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		render.ChiErr(w, http.StatusBadRequest, "missing url")
		return
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Hostname() == "" {
		render.ChiErr(w, http.StatusBadRequest, "url must be http(s)")
		return
	}

	res, err := h.importer.Import(r.Context(), rawURL)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Errorw("import_failed", "url", rawURL, "err", err)
		} else {
			h.logger.Infow("import_rejected", "url", rawURL, "err", err)
		}
		render.ChiErr(w, status, err.Error())
		return
	}

	render.ChiJSON(w, http.StatusOK, importResponse{Success: true, Data: res})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, affiliate.ErrIdentifierNotFound):
		return http.StatusBadRequest
	case errors.Is(err, affiliate.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, affiliate.ErrMissingCredentials):
		return http.StatusServiceUnavailable
	case errors.Is(err, affiliate.ErrUpstreamBlocked):
		return http.StatusServiceUnavailable
	case errors.Is(err, affiliate.ErrUpstreamRejected),
		errors.Is(err, affiliate.ErrTransport),
		errors.Is(err, affiliate.ErrExtractionFailed),
		errors.Is(err, affiliate.ErrIncompleteUpstreamData):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var _ router.Handler = (*Handler)(nil)
