package products

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"staylink-admin/db"
)

// StringList is a []string stored as a JSON text column so the same SQL runs
// on Postgres and sqlite.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	switch t := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		return json.Unmarshal(t, l)
	case string:
		return json.Unmarshal([]byte(t), l)
	default:
		return fmt.Errorf("unsupported column type %T for string list", src)
	}
}

type Product struct {
	ID           string     `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	Subtitle     string     `db:"subtitle" json:"subtitle"`
	Description  string     `db:"description" json:"description"`
	ImageURL     string     `db:"image_url" json:"image_url"`
	DisplayPrice string     `db:"display_price" json:"display_price"`
	Platform     string     `db:"platform" json:"platform"`
	AffiliateURL string     `db:"affiliate_url" json:"affiliate_url"`
	ExternalID   string     `db:"external_id" json:"external_id"`
	Countries    StringList `db:"countries" json:"countries"`
	ServiceTags  StringList `db:"service_tags" json:"service_tags"`
	Active       bool       `db:"active" json:"active"`
	Priority     int        `db:"priority" json:"priority"`
	CreatedAtMs  int64      `db:"created_at_ms" json:"created_at_ms"`
	UpdatedAtMs  int64      `db:"updated_at_ms" json:"updated_at_ms"`
}

type UpsertInput struct {
	Title        string     `json:"title" validate:"required"`
	Subtitle     string     `json:"subtitle"`
	Description  string     `json:"description"`
	ImageURL     string     `json:"image_url" validate:"omitempty,url"`
	DisplayPrice string     `json:"display_price"`
	Platform     string     `json:"platform" validate:"omitempty,oneof=amazon shopee other"`
	AffiliateURL string     `json:"affiliate_url" validate:"omitempty,url"`
	ExternalID   string     `json:"external_id"`
	Countries    StringList `json:"countries"`
	ServiceTags  StringList `json:"service_tags"`
	Active       *bool      `json:"active"`
	Priority     int        `json:"priority"`
}

type ListFilter struct {
	Platform string
	Search   string
	Active   *bool
	Page     int
	Limit    int
}

type Store struct {
	db       *sqlx.DB
	validate *validator.Validate
	now      func() time.Time
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:       db,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

const productColumns = `id, title, subtitle, description, image_url, display_price,
platform, affiliate_url, external_id, countries, service_tags, active, priority,
created_at_ms, updated_at_ms`

func (s *Store) List(ctx context.Context, f ListFilter) ([]Product, int, error) {
	where := []string{"1=1"}
	args := []any{}

	if p := strings.TrimSpace(f.Platform); p != "" {
		where = append(where, "platform = ?")
		args = append(args, strings.ToLower(p))
	}
	if f.Active != nil {
		where = append(where, "active = ?")
		args = append(args, *f.Active)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(subtitle) LIKE ? OR LOWER(external_id) LIKE ?)")
		needle := "%" + strings.ToLower(q) + "%"
		args = append(args, needle, needle, needle)
	}

	cond := strings.Join(where, " AND ")

	var total int
	countQ := s.db.Rebind("SELECT COUNT(*) FROM affiliate_products WHERE " + cond)
	if err := s.db.GetContext(ctx, &total, countQ, args...); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	listQ := s.db.Rebind(fmt.Sprintf(
		"SELECT %s FROM affiliate_products WHERE %s ORDER BY priority DESC, created_at_ms DESC LIMIT ? OFFSET ?",
		productColumns, cond,
	))
	listArgs := append(append([]any{}, args...), limit, (page-1)*limit)

	out := []Product{}
	if err := s.db.SelectContext(ctx, &out, listQ, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return out, total, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (Product, error) {
	var p Product
	q := s.db.Rebind("SELECT " + productColumns + " FROM affiliate_products WHERE id = ?")
	if err := s.db.GetContext(ctx, &p, q, id); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Store) Create(ctx context.Context, in UpsertInput) (Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return Product{}, err
	}

	now := s.now().UnixMilli()
	p := Product{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		Subtitle:     in.Subtitle,
		Description:  in.Description,
		ImageURL:     in.ImageURL,
		DisplayPrice: in.DisplayPrice,
		Platform:     strings.ToLower(in.Platform),
		AffiliateURL: in.AffiliateURL,
		ExternalID:   in.ExternalID,
		Countries:    in.Countries,
		ServiceTags:  in.ServiceTags,
		Active:       true,
		Priority:     in.Priority,
		CreatedAtMs:  now,
		UpdatedAtMs:  now,
	}
	if in.Active != nil {
		p.Active = *in.Active
	}

	q := s.db.Rebind(`INSERT INTO affiliate_products (` + productColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, q,
		p.ID, p.Title, p.Subtitle, p.Description, p.ImageURL, p.DisplayPrice,
		p.Platform, p.AffiliateURL, p.ExternalID, p.Countries, p.ServiceTags,
		p.Active, p.Priority, p.CreatedAtMs, p.UpdatedAtMs,
	)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

// Update replaces every mutable field, inside one transaction so the
// read-modify-write can't interleave with a concurrent update.
func (s *Store) Update(ctx context.Context, id string, in UpsertInput) (Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return Product{}, err
	}

	return db.Tx(ctx, s.db, func(tx *sqlx.Tx) (Product, error) {
		var existing Product
		getQ := tx.Rebind("SELECT " + productColumns + " FROM affiliate_products WHERE id = ?")
		if err := tx.GetContext(ctx, &existing, getQ, id); err != nil {
			return Product{}, err
		}

		existing.Title = strings.TrimSpace(in.Title)
		existing.Subtitle = in.Subtitle
		existing.Description = in.Description
		existing.ImageURL = in.ImageURL
		existing.DisplayPrice = in.DisplayPrice
		existing.Platform = strings.ToLower(in.Platform)
		existing.AffiliateURL = in.AffiliateURL
		existing.ExternalID = in.ExternalID
		existing.Countries = in.Countries
		existing.ServiceTags = in.ServiceTags
		if in.Active != nil {
			existing.Active = *in.Active
		}
		existing.Priority = in.Priority
		existing.UpdatedAtMs = s.now().UnixMilli()

		q := tx.Rebind(`UPDATE affiliate_products SET
title = ?, subtitle = ?, description = ?, image_url = ?, display_price = ?,
platform = ?, affiliate_url = ?, external_id = ?, countries = ?, service_tags = ?,
active = ?, priority = ?, updated_at_ms = ?
WHERE id = ?`)
		_, err := tx.ExecContext(ctx, q,
			existing.Title, existing.Subtitle, existing.Description, existing.ImageURL,
			existing.DisplayPrice, existing.Platform, existing.AffiliateURL,
			existing.ExternalID, existing.Countries, existing.ServiceTags,
			existing.Active, existing.Priority, existing.UpdatedAtMs, id,
		)
		if err != nil {
			return Product{}, fmt.Errorf("update product: %w", err)
		}
		return existing, nil
	})
}

// SoftDelete deactivates a product instead of removing the row, so the
// affiliate history stays queryable.
func (s *Store) SoftDelete(ctx context.Context, id string) error {
	q := s.db.Rebind("UPDATE affiliate_products SET active = ?, updated_at_ms = ? WHERE id = ?")
	res, err := s.db.ExecContext(ctx, q, false, s.now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
