package translations

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"staylink-admin/internal/pkg/render"
	"staylink-admin/internal/router"
)

var ErrNotFound = errors.New("translation not found")

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
	r.Get("/v1/translations", h.List)
	r.Post("/v1/translations", h.Create)
	r.Get("/v1/translations/{id}", h.GetByID)
	r.Put("/v1/translations/{id}", h.Update)
	r.Delete("/v1/translations/{id}", h.Delete)
}

type listResponse struct {
	Success    bool          `json:"success"`
	Data       []Translation `json:"data"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		render.ChiErr(w, http.StatusServiceUnavailable, "database disabled")
		return
	}

	q := r.URL.Query()
	f := ListFilter{
		LanguageCode: q.Get("language_code"),
		Search:       q.Get("search"),
		Page:         intParam(q.Get("page"), 1),
		Limit:        intParam(q.Get("limit"), 50),
	}

	items, total, err := h.store.List(r.Context(), f)
	if err != nil {
		h.logger.Errorw("translations_list_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to list translations")
		return
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
	totalPages := (total + f.Limit - 1) / f.Limit

	render.ChiJSON(w, http.StatusOK, listResponse{
		Success:    true,
		Data:       items,
		Page:       f.Page,
		Limit:      f.Limit,
		Total:      total,
		TotalPages: totalPages,
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		render.ChiErr(w, http.StatusServiceUnavailable, "database disabled")
		return
	}

	var in UpsertInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		render.ChiErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	tr, err := h.store.Create(r.Context(), in)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.ChiErr(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("translations_create_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to create translation")
		return
	}

	render.ChiJSON(w, http.StatusCreated, map[string]any{"success": true, "data": tr})
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		render.ChiErr(w, http.StatusServiceUnavailable, "database disabled")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		render.ChiErr(w, http.StatusBadRequest, "missing id")
		return
	}

	tr, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		render.ChiErr(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.logger.Errorw("translations_get_failed", "id", id, "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to fetch translation")
		return
	}

	render.ChiJSON(w, http.StatusOK, map[string]any{"success": true, "data": tr})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		render.ChiErr(w, http.StatusServiceUnavailable, "database disabled")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		render.ChiErr(w, http.StatusBadRequest, "missing id")
		return
	}

	var in UpsertInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		render.ChiErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	tr, err := h.store.Update(r.Context(), id, in)
	if errors.Is(err, sql.ErrNoRows) {
		render.ChiErr(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.ChiErr(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("translations_update_failed", "id", id, "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to update translation")
		return
	}

	render.ChiJSON(w, http.StatusOK, map[string]any{"success": true, "data": tr})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		render.ChiErr(w, http.StatusServiceUnavailable, "database disabled")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		render.ChiErr(w, http.StatusBadRequest, "missing id")
		return
	}

	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		render.ChiErr(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.logger.Errorw("translations_delete_failed", "id", id, "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to delete translation")
		return
	}

	render.ChiJSON(w, http.StatusOK, map[string]any{"success": true})
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
