package gormstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	return translate(s.db(ctx).Omit("Reviewer", "Reports").Create(r).Error)
}

func (s *Store) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var r models.Review
	err := s.db(ctx).
		Preload("Reviewer").
		Preload("Reports").
		First(&r, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *Store) ListReviews(ctx context.Context, f store.ReviewFilter) ([]models.Review, int64, error) {
	q := s.db(ctx).Model(&models.Review{})
	if f.ReviewedUserID != nil {
		q = q.Where("reviewed_user_id = ?", *f.ReviewedUserID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Review
	err := paged(q.Preload("Reviewer").Preload("Reports").Order("created_at DESC"), f.Page).Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) UpdateReviewState(ctx context.Context, id uuid.UUID, u store.ReviewUpdate) (*models.Review, error) {
	updates := map[string]any{"status": u.To, "counted": u.Counted}
	if u.ClearReports {
		updates["reports_count"] = 0
	}
	if u.Reason != "" {
		updates["moderation_reason"] = u.Reason
	}
	if u.ModeratedBy != nil {
		updates["moderated_by"] = *u.ModeratedBy
		updates["moderated_at"] = u.At
	}

	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Review{}).Where("id = ? AND status = ?", id, u.From).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return casMiss(tx, &models.Review{}, id)
		}
		if u.ClearReports {
			return tx.Where("review_id = ?", id).Delete(&models.ReviewReport{}).Error
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return s.GetReview(ctx, id)
}

// DeleteReview locks the row first so a concurrent moderation either lands
// before the read or misses the row entirely.
func (s *Store) DeleteReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var gone models.Review
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&gone, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", id).Delete(&models.ReviewReport{}).Error; err != nil {
			return err
		}
		if err := tx.Where("review_id = ?", id).Delete(&models.ReviewHelpfulVote{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Review{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &gone, nil
}

// AddReport inserts the report and, in the same statement that bumps the
// counter, flips approved reviews to flagged once the threshold is reached.
func (s *Store) AddReport(ctx context.Context, rep *models.ReviewReport, threshold int) (*models.Review, error) {
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rep).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Review{}).
			Where("id = ?", rep.ReviewID).
			UpdateColumns(map[string]any{
				"reports_count": gorm.Expr("reports_count + 1"),
				"status": gorm.Expr("CASE WHEN status = ? AND reports_count + 1 >= ? THEN ? ELSE status END",
					models.ReviewApproved, threshold, models.ReviewFlagged),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return s.GetReview(ctx, rep.ReviewID)
}

func (s *Store) ToggleHelpful(ctx context.Context, reviewID, userID uuid.UUID) (bool, *models.Review, error) {
	var marked bool
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Where("review_id = ? AND user_id = ?", reviewID, userID).Delete(&models.ReviewHelpfulVote{})
		if del.Error != nil {
			return del.Error
		}
		delta := gorm.Expr("GREATEST(helpful_count - 1, 0)")
		if del.RowsAffected == 0 {
			marked = true
			delta = gorm.Expr("helpful_count + 1")
			if err := tx.Create(&models.ReviewHelpfulVote{ReviewID: reviewID, UserID: userID}).Error; err != nil {
				return err
			}
		}
		res := tx.Model(&models.Review{}).Where("id = ?", reviewID).UpdateColumn("helpful_count", delta)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return false, nil, translate(err)
	}
	r, err := s.GetReview(ctx, reviewID)
	return marked, r, err
}

func (s *Store) CountReviewsByStatus(ctx context.Context) (map[models.ReviewStatus]int64, error) {
	rows, err := countBy(s.db(ctx), &models.Review{}, "status")
	if err != nil {
		return nil, err
	}
	out := make(map[models.ReviewStatus]int64, len(rows))
	for _, r := range rows {
		out[models.ReviewStatus(r.Key)] = r.N
	}
	return out, nil
}
