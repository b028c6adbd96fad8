package translations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Translation struct {
	ID           string `db:"id" json:"id"`
	Key          string `db:"key" json:"key"`
	LanguageCode string `db:"language_code" json:"language_code"`
	Value        string `db:"value" json:"value"`
	Context      string `db:"context" json:"context"`
	CreatedAtMs  int64  `db:"created_at_ms" json:"created_at_ms"`
	UpdatedAtMs  int64  `db:"updated_at_ms" json:"updated_at_ms"`
}

type UpsertInput struct {
	Key          string `json:"key" validate:"required"`
	LanguageCode string `json:"language_code" validate:"required,min=2,max=8"`
	Value        string `json:"value" validate:"required"`
	Context      string `json:"context"`
}

type ListFilter struct {
	LanguageCode string
	Search       string
	Page         int
	Limit        int
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

const translationColumns = `id, key, language_code, value, context, created_at_ms, updated_at_ms`

func (s *Store) List(ctx context.Context, f ListFilter) ([]Translation, int, error) {
	where := []string{"1=1"}
	args := []any{}

	if lc := strings.TrimSpace(f.LanguageCode); lc != "" {
		where = append(where, "language_code = ?")
		args = append(args, strings.ToLower(lc))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		where = append(where, "(LOWER(key) LIKE ? OR LOWER(value) LIKE ?)")
		needle := "%" + strings.ToLower(q) + "%"
		args = append(args, needle, needle)
	}

	cond := strings.Join(where, " AND ")

	var total int
	countQ := s.db.Rebind("SELECT COUNT(*) FROM translations WHERE " + cond)
	if err := s.db.GetContext(ctx, &total, countQ, args...); err != nil {
		return nil, 0, fmt.Errorf("count translations: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}

	listQ := s.db.Rebind(fmt.Sprintf(
		"SELECT %s FROM translations WHERE %s ORDER BY key ASC LIMIT ? OFFSET ?",
		translationColumns, cond,
	))
	listArgs := append(append([]any{}, args...), limit, (page-1)*limit)

	out := []Translation{}
	if err := s.db.SelectContext(ctx, &out, listQ, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list translations: %w", err)
	}
	return out, total, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (Translation, error) {
	var tr Translation
	q := s.db.Rebind("SELECT " + translationColumns + " FROM translations WHERE id = ?")
	if err := s.db.GetContext(ctx, &tr, q, id); err != nil {
		return Translation{}, err
	}
	return tr, nil
}

func (s *Store) Create(ctx context.Context, in UpsertInput) (Translation, error) {
	if err := s.validate.Struct(in); err != nil {
		return Translation{}, err
	}

	now := s.now().UnixMilli()
	tr := Translation{
		ID:           uuid.NewString(),
		Key:          strings.TrimSpace(in.Key),
		LanguageCode: strings.ToLower(strings.TrimSpace(in.LanguageCode)),
		Value:        in.Value,
		Context:      in.Context,
		CreatedAtMs:  now,
		UpdatedAtMs:  now,
	}

	q := s.db.Rebind(`INSERT INTO translations (` + translationColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, q,
		tr.ID, tr.Key, tr.LanguageCode, tr.Value, tr.Context, tr.CreatedAtMs, tr.UpdatedAtMs,
	)
	if err != nil {
		return Translation{}, fmt.Errorf("insert translation: %w", err)
	}
	return tr, nil
}

func (s *Store) Update(ctx context.Context, id string, in UpsertInput) (Translation, error) {
	if err := s.validate.Struct(in); err != nil {
		return Translation{}, err
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return Translation{}, err
	}

	existing.Key = strings.TrimSpace(in.Key)
	existing.LanguageCode = strings.ToLower(strings.TrimSpace(in.LanguageCode))
	existing.Value = in.Value
	existing.Context = in.Context
	existing.UpdatedAtMs = s.now().UnixMilli()

	q := s.db.Rebind(`UPDATE translations SET
key = ?, language_code = ?, value = ?, context = ?, updated_at_ms = ?
WHERE id = ?`)
	_, err = s.db.ExecContext(ctx, q,
		existing.Key, existing.LanguageCode, existing.Value, existing.Context,
		existing.UpdatedAtMs, id,
	)
	if err != nil {
		return Translation{}, fmt.Errorf("update translation: %w", err)
	}
	return existing, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	q := s.db.Rebind("DELETE FROM translations WHERE id = ?")
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete translation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
