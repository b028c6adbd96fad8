package links

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"staylink-admin/config"
	"staylink-admin/internal/affiliate"
	"staylink-admin/internal/pkg/render"
	"staylink-admin/internal/platform"
	"staylink-admin/internal/router"
)

// Handler assembles an affiliate link for an already-known detail URL,
// without going through the import pipeline.
type Handler struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
}

type NewHandlerParams struct {
	fx.In

	Cfg    *config.Config
	Logger *zap.SugaredLogger
}

func NewHandler(p NewHandlerParams) *Handler {
	return &Handler{cfg: p.Cfg, logger: p.Logger}
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Post("/v1/affiliate/links", h.Handle)
}

type linkRequest struct {
	URL string `json:"url"`
}

type linkResponse struct {
	Success  bool   `json:"success"`
	Platform string `json:"platform"`
	Link     string `json:"link"`
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.ChiErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		render.ChiErr(w, http.StatusBadRequest, "missing url")
		return
	}

	p, err := platform.Detect(rawURL)
	if err != nil {
		render.ChiErr(w, http.StatusBadRequest, "unsupported url domain")
		return
	}

	var tag, region string
	switch p {
	case platform.Amazon:
		tag = h.cfg.Amazon.PartnerTag
	case platform.Shopee:
		tag = h.cfg.Shopee.AffiliateID
		region = h.cfg.Shopee.Region
	}
	if tag == "" {
		render.ChiErr(w, http.StatusServiceUnavailable, "no affiliate tag configured for platform "+string(p))
		return
	}

	link, err := affiliate.AssembleLink(p, rawURL, tag, region)
	if err != nil {
		render.ChiErr(w, http.StatusBadRequest, err.Error())
		return
	}

	render.ChiJSON(w, http.StatusOK, linkResponse{Success: true, Platform: string(p), Link: link})
}

var _ router.Handler = (*Handler)(nil)
