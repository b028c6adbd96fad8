package drafts

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"staylink-admin/db"
	"staylink-admin/internal/pkg/render"
	"staylink-admin/internal/router"
)

type Handler struct {
	store         *Store
	sqliteEnabled bool
	logger        *zap.SugaredLogger
}

type NewHandlerParams struct {
	fx.In

	Conn     db.Conn  `name:"sqlite"`
	SQLiteDB *sqlx.DB `name:"sqlite" optional:"true"`
	Logger   *zap.SugaredLogger
}

func NewHandler(p NewHandlerParams) *Handler {
	return &Handler{
		store:         NewStore(p.Conn),
		sqliteEnabled: p.SQLiteDB != nil,
		logger:        p.Logger,
	}
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/import-drafts", h.List)
	r.Get("/v1/import-drafts/{id}", h.GetByID)
}

type draftResponse struct {
	ID          string  `json:"id"`
	EventID     string  `json:"event_id"`
	Status      string  `json:"status"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	Draft       any     `json:"draft"`
	Error       *string `json:"error"`
	CreatedBy   *string `json:"created_by"`
	CreatedAtMs int64   `json:"created_at_ms"`
	UpdatedAtMs int64   `json:"updated_at_ms"`
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		render.ChiErr(w, http.StatusBadRequest, "missing id")
		return
	}

	if !h.sqliteEnabled {
		render.ChiErr(w, http.StatusServiceUnavailable, "sqlite disabled")
		return
	}

	d, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		render.ChiErr(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.logger.Errorw("import_draft_get_failed", "id", id, "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to fetch import draft")
		return
	}

	resp, err := toResponse(d)
	if err != nil {
		h.logger.Errorw("import_draft_payload_unmarshal_failed", "id", id, "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "invalid draft payload")
		return
	}

	render.ChiJSON(w, http.StatusOK, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !h.sqliteEnabled {
		render.ChiErr(w, http.StatusServiceUnavailable, "sqlite disabled")
		return
	}

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	ds, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Errorw("import_drafts_list_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to list import drafts")
		return
	}

	out := make([]draftResponse, 0, len(ds))
	for _, d := range ds {
		resp, err := toResponse(d)
		if err != nil {
			h.logger.Warnw("import_draft_payload_unmarshal_failed", "id", d.ID, "err", err)
			continue
		}
		out = append(out, resp)
	}

	render.ChiJSON(w, http.StatusOK, map[string]any{"success": true, "data": out})
}

func toResponse(d Draft) (draftResponse, error) {
	var payload any
	raw := strings.TrimSpace(d.DraftPayload)
	if raw == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return draftResponse{}, err
	}

	return draftResponse{
		ID:          d.ID,
		EventID:     d.EventID,
		Status:      d.Status,
		URL:         d.URL,
		Source:      d.Source,
		Draft:       payload,
		Error:       d.Error,
		CreatedBy:   d.CreatedBy,
		CreatedAtMs: d.CreatedAtMs,
		UpdatedAtMs: d.UpdatedAtMs,
	}, nil
}

var _ router.Handler = (*Handler)(nil)
