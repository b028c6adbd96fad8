package clients

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"staylink-admin/internal/pkg/render"
	"staylink-admin/internal/router"
)

type Handler struct {
	store  *Store
	logger *zap.SugaredLogger
}

type NewHandlerParams struct {
	fx.In

	DB     *sqlx.DB `optional:"true"`
	Logger *zap.SugaredLogger
}

func NewHandler(p NewHandlerParams) *Handler {
	h := &Handler{logger: p.Logger}
	if p.DB != nil {
		h.store = NewStore(p.DB)
	}
	return h
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/client/businesses", h.ListBusinesses)
	r.Get("/v1/client/users", h.ListUsers)
	r.Get("/v1/client/bookings", h.ListBookings)
}

type listResponse[T any] struct {
	Success    bool `json:"success"`
	Data       []T  `json:"data"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
}

func (h *Handler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		render.ChiErr(w, http.StatusServiceUnavailable, "database disabled")
		return
	}

	f := filterFromQuery(r)
	items, total, err := h.store.ListBusinesses(r.Context(), f)
	if err != nil {
		h.logger.Errorw("client_businesses_list_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to list businesses")
		return
	}

	render.ChiJSON(w, http.StatusOK, paged(items, f, total))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		render.ChiErr(w, http.StatusServiceUnavailable, "database disabled")
		return
	}

	f := filterFromQuery(r)
	items, total, err := h.store.ListUsers(r.Context(), f)
	if err != nil {
		h.logger.Errorw("client_users_list_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	render.ChiJSON(w, http.StatusOK, paged(items, f, total))
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		render.ChiErr(w, http.StatusServiceUnavailable, "database disabled")
		return
	}

	f := filterFromQuery(r)
	items, total, err := h.store.ListBookings(r.Context(), f)
	if err != nil {
		h.logger.Errorw("client_bookings_list_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	render.ChiJSON(w, http.StatusOK, paged(items, f, total))
}

func filterFromQuery(r *http.Request) ListFilter {
	q := r.URL.Query()
	return ListFilter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Page:   intParam(q.Get("page"), 1),
		Limit:  intParam(q.Get("limit"), 10),
	}
}

func paged[T any](items []T, f ListFilter, total int) listResponse[T] {
	limit := f.limit()
	return listResponse[T]{
		Success:    true,
		Data:       items,
		Page:       f.page(),
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}
}

func intParam(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

var _ router.Handler = (*Handler)(nil)
