package analytics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"staylink-admin/internal/pkg/render"
	"staylink-admin/internal/router"
)

// trendDays is the rolling window for the revenue and bookings charts.
const trendDays = 30

// Handler serves the analytics page: revenue/booking totals, 30-day trends,
// and the booking status distribution. Day bucketing happens here rather than
// in SQL, so one query set works on both engines.
type Handler struct {
	db     *sqlx.DB
	logger *zap.SugaredLogger
	now    func() time.Time
}

type NewHandlerParams struct {
	fx.In

	DB     *sqlx.DB `optional:"true"`
	Logger *zap.SugaredLogger
}

func NewHandler(p NewHandlerParams) *Handler {
	return &Handler{
		db:     p.DB,
		logger: p.Logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/analytics", h.Handle)
}

type overview struct {
	TotalRevenue   float64 `json:"total_revenue"`
	TotalBookings  int     `json:"total_bookings"`
	ActiveProducts int     `json:"active_products"`
}

type revenuePoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

type bookingsPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type statusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type analyticsData struct {
	Overview overview `json:"overview"`
	Trends   struct {
		Revenue  []revenuePoint  `json:"revenue"`
		Bookings []bookingsPoint `json:"bookings"`
	} `json:"trends"`
	Distribution struct {
		Status []statusCount `json:"status"`
	} `json:"distribution"`
}

type analyticsResponse struct {
	Success bool          `json:"success"`
	Data    analyticsData `json:"data"`
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		render.ChiErr(w, http.StatusServiceUnavailable, "database disabled")
		return
	}

	ctx := r.Context()
	var data analyticsData

	q := h.db.Rebind("SELECT COALESCE(SUM(amount_net), 0) FROM payments WHERE status = ?")
	if err := h.db.GetContext(ctx, &data.Overview.TotalRevenue, q, "captured"); err != nil {
		h.logger.Errorw("analytics_revenue_total_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	if err := h.db.GetContext(ctx, &data.Overview.TotalBookings, "SELECT COUNT(*) FROM bookings"); err != nil {
		h.logger.Errorw("analytics_bookings_total_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	q = h.db.Rebind("SELECT COUNT(*) FROM affiliate_products WHERE active = ?")
	if err := h.db.GetContext(ctx, &data.Overview.ActiveProducts, q, true); err != nil {
		h.logger.Errorw("analytics_products_total_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}

	// Continuous windows: every one of the last 30 days appears, zero or not.
	windowStart := h.now().Truncate(24 * time.Hour).AddDate(0, 0, -(trendDays - 1))
	cutoffMs := windowStart.UnixMilli()

	revenueByDay := map[string]float64{}
	q = h.db.Rebind("SELECT created_at_ms, amount_net FROM payments WHERE status = ? AND created_at_ms >= ?")
	rows, err := h.db.QueryxContext(ctx, q, "captured", cutoffMs)
	if err != nil {
		h.logger.Errorw("analytics_revenue_trend_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	for rows.Next() {
		var ms int64
		var amount float64
		if err := rows.Scan(&ms, &amount); err != nil {
			rows.Close()
			h.logger.Errorw("analytics_revenue_scan_failed", "err", err)
			render.ChiErr(w, http.StatusInternalServerError, "failed to compute analytics")
			return
		}
		revenueByDay[dayKey(ms)] += amount
	}
	rows.Close()

	bookingsByDay := map[string]int{}
	q = h.db.Rebind("SELECT created_at_ms FROM bookings WHERE created_at_ms >= ?")
	rows, err = h.db.QueryxContext(ctx, q, cutoffMs)
	if err != nil {
		h.logger.Errorw("analytics_bookings_trend_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	for rows.Next() {
		var ms int64
		if err := rows.Scan(&ms); err != nil {
			rows.Close()
			h.logger.Errorw("analytics_bookings_scan_failed", "err", err)
			render.ChiErr(w, http.StatusInternalServerError, "failed to compute analytics")
			return
		}
		bookingsByDay[dayKey(ms)]++
	}
	rows.Close()

	for i := 0; i < trendDays; i++ {
		day := windowStart.AddDate(0, 0, i).Format("2006-01-02")
		data.Trends.Revenue = append(data.Trends.Revenue, revenuePoint{Date: day, Total: revenueByDay[day]})
		data.Trends.Bookings = append(data.Trends.Bookings, bookingsPoint{Date: day, Count: bookingsByDay[day]})
	}

	data.Distribution.Status = []statusCount{}
	rows, err = h.db.QueryxContext(ctx, "SELECT status, COUNT(*) FROM bookings GROUP BY status")
	if err != nil {
		h.logger.Errorw("analytics_status_distribution_failed", "err", err)
		render.ChiErr(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	defer rows.Close()
	for rows.Next() {
		var sc statusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			h.logger.Errorw("analytics_status_scan_failed", "err", err)
			render.ChiErr(w, http.StatusInternalServerError, "failed to compute analytics")
			return
		}
		data.Distribution.Status = append(data.Distribution.Status, sc)
	}

	render.ChiJSON(w, http.StatusOK, analyticsResponse{Success: true, Data: data})
}

func dayKey(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}

var _ router.Handler = (*Handler)(nil)
