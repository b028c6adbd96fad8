package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Read-only listings over the booking platform's own tables (businesses,
// users, bookings and their joins). The console only browses these; all
// writes happen in the client product.

type Business struct {
	ID            string  `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	OwnerName     string  `db:"owner_name" json:"owner_name"`
	OwnerEmail    string  `db:"owner_email" json:"owner_email"`
	TotalRevenue  float64 `db:"total_revenue" json:"total_revenue"`
	TotalBookings int     `db:"total_bookings" json:"total_bookings"`
	CreatedAtMs   int64   `db:"created_at_ms" json:"created_at_ms"`
}

type User struct {
	ID               string `db:"id" json:"id"`
	Name             string `db:"name" json:"name"`
	Email            string `db:"email" json:"email"`
	Avatar           string `db:"avatar" json:"avatar"`
	ActiveBusinessID string `db:"active_business_id" json:"active_business_id"`
	CreatedAtMs      int64  `db:"created_at_ms" json:"created_at_ms"`
}

type Booking struct {
	ID            string  `db:"id" json:"id"`
	StartTimeMs   int64   `db:"start_time_ms" json:"start_time_ms"`
	EndTimeMs     int64   `db:"end_time_ms" json:"end_time_ms"`
	TotalAmount   float64 `db:"total_amount" json:"total_amount"`
	Status        string  `db:"status" json:"status"`
	PaymentStatus string  `db:"payment_status" json:"payment_status"`
	CustomerName  string  `db:"customer_name" json:"customer_name"`
	CustomerEmail string  `db:"customer_email" json:"customer_email"`
	ServiceName   string  `db:"service_name" json:"service_name"`
	BusinessName  string  `db:"business_name" json:"business_name"`
	CreatedAtMs   int64   `db:"created_at_ms" json:"created_at_ms"`
}

type ListFilter struct {
	Search string
	Status string
	Page   int
	Limit  int
}

func (f ListFilter) page() int {
	if f.Page < 1 {
		return 1
	}
	return f.Page
}

func (f ListFilter) limit() int {
	if f.Limit < 1 || f.Limit > 100 {
		return 10
	}
	return f.Limit
}

func (f ListFilter) offset() int { return (f.page() - 1) * f.limit() }

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// ListBusinesses ranks businesses by captured revenue, with owner contact and
// booking counts joined in.
func (s *Store) ListBusinesses(ctx context.Context, f ListFilter) ([]Business, int, error) {
	where := "1=1"
	args := []any{}
	if q := strings.TrimSpace(f.Search); q != "" {
		where = "LOWER(b.name) LIKE ?"
		args = append(args, "%"+strings.ToLower(q)+"%")
	}

	var total int
	countQ := s.db.Rebind("SELECT COUNT(*) FROM businesses b WHERE " + where)
	if err := s.db.GetContext(ctx, &total, countQ, args...); err != nil {
		return nil, 0, fmt.Errorf("count businesses: %w", err)
	}

	listQ := s.db.Rebind(`SELECT
  b.id, b.name, b.created_at_ms,
  COALESCE(u.name, '') AS owner_name,
  COALESCE(u.email, '') AS owner_email,
  COALESCE(SUM(p.amount_net), 0) AS total_revenue,
  COUNT(DISTINCT bk.id) AS total_bookings
FROM businesses b
LEFT JOIN users u ON b.owner_id = u.id
LEFT JOIN bookings bk ON bk.business_id = b.id
LEFT JOIN payments p ON p.booking_id = bk.id AND p.status = 'captured'
WHERE ` + where + `
GROUP BY b.id, b.name, b.created_at_ms, u.name, u.email
ORDER BY total_revenue DESC
LIMIT ? OFFSET ?`)
	listArgs := append(append([]any{}, args...), f.limit(), f.offset())

	out := []Business{}
	if err := s.db.SelectContext(ctx, &out, listQ, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list businesses: %w", err)
	}
	return out, total, nil
}

func (s *Store) ListUsers(ctx context.Context, f ListFilter) ([]User, int, error) {
	where := "1=1"
	args := []any{}
	if q := strings.TrimSpace(f.Search); q != "" {
		where = "(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)"
		needle := "%" + strings.ToLower(q) + "%"
		args = append(args, needle, needle)
	}

	var total int
	countQ := s.db.Rebind("SELECT COUNT(*) FROM users WHERE " + where)
	if err := s.db.GetContext(ctx, &total, countQ, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	listQ := s.db.Rebind(`SELECT
  id, name, email,
  COALESCE(avatar, '') AS avatar,
  COALESCE(active_business_id, '') AS active_business_id,
  created_at_ms
FROM users
WHERE ` + where + `
ORDER BY created_at_ms DESC
LIMIT ? OFFSET ?`)
	listArgs := append(append([]any{}, args...), f.limit(), f.offset())

	out := []User{}
	if err := s.db.SelectContext(ctx, &out, listQ, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return out, total, nil
}

func (s *Store) ListBookings(ctx context.Context, f ListFilter) ([]Booking, int, error) {
	where := "1=1"
	args := []any{}
	if st := strings.TrimSpace(f.Status); st != "" {
		where = "b.status = ?"
		args = append(args, st)
	}

	var total int
	countQ := s.db.Rebind("SELECT COUNT(*) FROM bookings b WHERE " + where)
	if err := s.db.GetContext(ctx, &total, countQ, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	listQ := s.db.Rebind(`SELECT
  b.id, b.start_time_ms, b.end_time_ms, b.total_amount, b.status,
  b.payment_status, b.created_at_ms,
  COALESCE(u.name, '') AS customer_name,
  COALESCE(u.email, '') AS customer_email,
  COALESCE(s.name, '') AS service_name,
  COALESCE(bz.name, '') AS business_name
FROM bookings b
LEFT JOIN users u ON b.customer_id = u.id
LEFT JOIN services s ON b.service_id = s.id
LEFT JOIN businesses bz ON b.business_id = bz.id
WHERE ` + where + `
ORDER BY b.created_at_ms DESC
LIMIT ? OFFSET ?`)
	listArgs := append(append([]any{}, args...), f.limit(), f.offset())

	out := []Booking{}
	if err := s.db.SelectContext(ctx, &out, listQ, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	return out, total, nil
}
