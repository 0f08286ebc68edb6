package gormstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/domain"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

// ratingColumns are owned by ApplyRating and never written by SaveUser.
var ratingColumns = []string{"provider_rating", "provider_review_count", "client_rating", "client_review_count"}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.db(ctx).Create(u).Error)
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.db(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db(ctx).Where("lower(email) = lower(?)", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var u models.User
	if err := s.db(ctx).Where("google_id = ? AND google_id <> ''", googleID).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	var u models.User
	err := s.db(ctx).
		Where("reset_password_token = ? AND reset_password_expire > ?", tokenHash, now).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	omit := append([]string{"id", "created_at"}, ratingColumns...)
	res := s.db(ctx).Model(u).Select("*").Omit(omit...).Updates(u)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res := s.db(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) ([]models.User, int64, error) {
	q := s.db(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.Category != "" {
		q = q.Where("lower(provider_category) = lower(?)", f.Category)
	}
	if f.City != "" {
		q = q.Where("location_city ILIKE ?", "%"+f.City+"%")
	}
	if f.MinRating > 0 {
		q = q.Where("provider_rating >= ?", f.MinRating)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ? OR provider_description ILIKE ?", like, like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if f.SortByRating {
		order = "provider_rating DESC, created_at DESC"
	}
	var users []models.User
	if err := paged(q.Order(order), f.Page).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *Store) CountUsersByRole(ctx context.Context) (map[models.Role]int64, error) {
	rows, err := countBy(s.db(ctx), &models.User{}, "role")
	if err != nil {
		return nil, err
	}
	out := make(map[models.Role]int64, len(rows))
	for _, r := range rows {
		out[models.Role(r.Key)] = r.N
	}
	return out, nil
}

// ApplyRating folds one rating in or out of the rolling average with a single
// UPDATE. Postgres evaluates every SET expression against the pre-update row.
func (s *Store) ApplyRating(ctx context.Context, userID uuid.UUID, kind domain.RatingKind, rating int, remove bool) (*models.User, error) {
	avg, count := "provider_rating", "provider_review_count"
	if kind == domain.ClientRatingKind {
		avg, count = "client_rating", "client_review_count"
	}

	var updates map[string]any
	if remove {
		updates = map[string]any{
			avg: gorm.Expr(fmt.Sprintf(
				"LEAST(GREATEST(CASE WHEN %[2]s > 1 THEN (%[1]s * %[2]s - ?) / (%[2]s - 1) ELSE 0 END, 0), %[3]d)",
				avg, count, domain.MaxRating), rating),
			count: gorm.Expr(fmt.Sprintf("GREATEST(%s - 1, 0)", count)),
		}
	} else {
		updates = map[string]any{
			avg: gorm.Expr(fmt.Sprintf(
				"LEAST(GREATEST((%[1]s * GREATEST(%[2]s, 0) + ?) / (GREATEST(%[2]s, 0) + 1), 0), %[3]d)",
				avg, count, domain.MaxRating), rating),
			count: gorm.Expr(fmt.Sprintf("GREATEST(%s, 0) + 1", count)),
		}
	}

	res := s.db(ctx).Model(&models.User{}).Where("id = ?", userID).UpdateColumns(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetUser(ctx, userID)
}

func (s *Store) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res := s.db(ctx).Model(&models.User{}).
		Where("reset_password_expire IS NOT NULL AND reset_password_expire <= ?", now).
		UpdateColumns(map[string]any{"reset_password_token": "", "reset_password_expire": nil})
	return res.RowsAffected, res.Error
}
