package parsetextapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"staylink-admin/internal/parsetext"
	"staylink-admin/internal/pkg/render"
	"staylink-admin/internal/router"
)

type textParser interface {
	Parse(ctx context.Context, text string) (parsetext.Partial, error)
}

// Handler recovers product fields from raw page text pasted by an operator,
// for storefront pages the scraper cannot reach.
type Handler struct {
	parser textParser
	logger *zap.SugaredLogger
}

type NewHandlerParams struct {
	fx.In

	Parser *parsetext.Service
	Logger *zap.SugaredLogger
}

func NewHandler(p NewHandlerParams) *Handler {
	return &Handler{parser: p.Parser, logger: p.Logger}
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Post("/v1/affiliate/parse-text", h.Handle)
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Success bool              `json:"success"`
	Data    parsetext.Partial `json:"data"`
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.ChiErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		render.ChiErr(w, http.StatusBadRequest, "missing text")
		return
	}

	out, err := h.parser.Parse(r.Context(), req.Text)
	if err != nil {
		status := http.StatusBadGateway
		if strings.Contains(err.Error(), "disabled") {
			status = http.StatusServiceUnavailable
		}
		h.logger.Warnw("parse_text_failed", "err", err)
		render.ChiErr(w, status, err.Error())
		return
	}

	render.ChiJSON(w, http.StatusOK, parseResponse{Success: true, Data: out})
}

var _ router.Handler = (*Handler)(nil)
