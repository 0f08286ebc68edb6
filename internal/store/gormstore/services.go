package gormstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/domain"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

func (s *Store) CreateServiceRequest(ctx context.Context, sr *models.ServiceRequest) error {
	return translate(s.db(ctx).Omit("Requester", "Provider").Create(sr).Error)
}

func (s *Store) GetServiceRequest(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	var sr models.ServiceRequest
	err := s.db(ctx).
		Preload("Requester").
		Preload("Provider").
		First(&sr, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sr, nil
}

func (s *Store) ListServiceRequests(ctx context.Context, f store.ServiceFilter) ([]models.ServiceRequest, int64, error) {
	q := s.db(ctx).Model(&models.ServiceRequest{})
	if f.RequesterID != nil {
		q = q.Where("requester_id = ?", *f.RequesterID)
	}
	if f.ProviderID != nil {
		q = q.Where("provider_id = ?", *f.ProviderID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.ServiceRequest
	err := paged(q.Preload("Requester").Preload("Provider").Order("created_at DESC"), f.Page).Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) ChangeServiceStatus(ctx context.Context, id uuid.UUID, ch store.StatusChange) (*models.ServiceRequest, error) {
	updates := map[string]any{"status": ch.To}
	switch ch.To {
	case models.ServiceAccepted:
		updates["accepted_at"] = ch.At
	case models.ServiceInProgress:
		updates["started_at"] = ch.At
	case models.ServiceCompleted:
		updates["completed_at"] = ch.At
	case models.ServiceCancelled:
		updates["cancelled_by"] = ch.CancelledBy
		updates["cancellation_reason"] = ch.CancellationReason
	}

	db := s.db(ctx)
	res := db.Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ?", id, ch.From).
		Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, casMiss(db, &models.ServiceRequest{}, id)
	}
	return s.GetServiceRequest(ctx, id)
}

func (s *Store) SetServiceRating(ctx context.Context, id uuid.UUID, side domain.Side, rating int, comment string) (*models.ServiceRequest, error) {
	ratingCol, reviewCol := "provider_rating", "provider_review"
	if side == domain.SideProvider {
		ratingCol, reviewCol = "client_rating", "client_review"
	}

	db := s.db(ctx)
	res := db.Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ? AND "+ratingCol+" IS NULL", id, models.ServiceCompleted).
		Updates(map[string]any{ratingCol: rating, reviewCol: comment})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, casMiss(db, &models.ServiceRequest{}, id)
	}
	return s.GetServiceRequest(ctx, id)
}

func (s *Store) CountServicesByStatus(ctx context.Context) (map[models.ServiceStatus]int64, error) {
	rows, err := countBy(s.db(ctx), &models.ServiceRequest{}, "status")
	if err != nil {
		return nil, err
	}
	out := make(map[models.ServiceStatus]int64, len(rows))
	for _, r := range rows {
		out[models.ServiceStatus(r.Key)] = r.N
	}
	return out, nil
}
