package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"staylink-admin/internal/pkg/render"
	"staylink-admin/internal/router"
)

// Handler serves the dashboard landing counters.
type Handler struct {
	db     *sqlx.DB
	logger *zap.SugaredLogger
}

type NewHandlerParams struct {
	fx.In

	DB     *sqlx.DB `optional:"true"`
	Logger *zap.SugaredLogger
}

func NewHandler(p NewHandlerParams) *Handler {
	return &Handler{db: p.DB, logger: p.Logger}
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/dashboard/stats", h.Handle)
}

type statsResponse struct {
	Success           bool           `json:"success"`
	Products          int            `json:"products"`
	ActiveProducts    int            `json:"active_products"`
	ProductsByPlatform map[string]int `json:"products_by_platform"`
	Translations      int            `json:"translations"`
	Languages         int            `json:"languages"`
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		render.ChiErr(w, http.StatusServiceUnavailable, "database disabled")
		return
	}

	ctx := r.Context()
	resp := statsResponse{Success: true, ProductsByPlatform: map[string]int{}}

	if err := h.db.GetContext(ctx, &resp.Products, "SELECT COUNT(*) FROM affiliate_products"); err != nil {
		h.logger.Errorw("stats_products_count_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	q := h.db.Rebind("SELECT COUNT(*) FROM affiliate_products WHERE active = ?")
	if err := h.db.GetContext(ctx, &resp.ActiveProducts, q, true); err != nil {
		h.logger.Errorw("stats_active_count_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	rows, err := h.db.QueryxContext(ctx, "SELECT platform, COUNT(*) FROM affiliate_products GROUP BY platform")
	if err != nil {
		h.logger.Errorw("stats_platform_count_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	defer rows.Close()
	for rows.Next() {
		var platform string
		var n int
		if err := rows.Scan(&platform, &n); err != nil {
			h.logger.Errorw("stats_platform_scan_failed", "err", err)
			render.ChiErr(w, http.StatusInternalServerError, "failed to compute stats")
			return
		}
		if platform == "" {
			platform = "unknown"
		}
		resp.ProductsByPlatform[platform] = n
	}

	if err := h.db.GetContext(ctx, &resp.Translations, "SELECT COUNT(*) FROM translations"); err != nil {
		h.logger.Errorw("stats_translations_count_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	if err := h.db.GetContext(ctx, &resp.Languages, "SELECT COUNT(DISTINCT language_code) FROM translations"); err != nil {
		h.logger.Errorw("stats_languages_count_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	render.ChiJSON(w, http.StatusOK, resp)
}

var _ router.Handler = (*Handler)(nil)
