package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/domain"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

func (s *Store) CreateServiceRequest(ctx context.Context, sr *models.ServiceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sr.Status == "" {
		sr.Status = models.ServicePending
	}
	s.stamp(&sr.ID, &sr.CreatedAt, &sr.UpdatedAt)
	cp := *sr
	cp.Requester, cp.Provider = nil, nil
	s.services[sr.ID] = &cp
	return nil
}

func (s *Store) GetServiceRequest(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sr, ok := s.services[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.withParties(sr), nil
}

func (s *Store) withParties(sr *models.ServiceRequest) *models.ServiceRequest {
	cp := *sr
	if u, ok := s.users[sr.RequesterID]; ok {
		r := *u
		cp.Requester = &r
	}
	if u, ok := s.users[sr.ProviderID]; ok {
		p := *u
		cp.Provider = &p
	}
	return &cp
}

func (s *Store) ListServiceRequests(ctx context.Context, f store.ServiceFilter) ([]models.ServiceRequest, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ServiceRequest
	for _, sr := range s.services {
		if f.RequesterID != nil && sr.RequesterID != *f.RequesterID {
			continue
		}
		if f.ProviderID != nil && sr.ProviderID != *f.ProviderID {
			continue
		}
		if f.Status != "" && sr.Status != f.Status {
			continue
		}
		out = append(out, *s.withParties(sr))
	}
	newestFirst(out, func(sr models.ServiceRequest) time.Time { return sr.CreatedAt })
	return paginate(out, f.Page), int64(len(out)), nil
}

func (s *Store) ChangeServiceStatus(ctx context.Context, id uuid.UUID, ch store.StatusChange) (*models.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sr, ok := s.services[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if sr.Status != ch.From {
		return nil, store.ErrConflict
	}
	sr.Status = ch.To
	at := ch.At
	switch ch.To {
	case models.ServiceAccepted:
		sr.AcceptedAt = &at
	case models.ServiceInProgress:
		sr.StartedAt = &at
	case models.ServiceCompleted:
		sr.CompletedAt = &at
	case models.ServiceCancelled:
		sr.CancelledBy = ch.CancelledBy
		sr.CancellationReason = ch.CancellationReason
	}
	sr.UpdatedAt = s.now()
	return s.withParties(sr), nil
}

func (s *Store) SetServiceRating(ctx context.Context, id uuid.UUID, side domain.Side, rating int, comment string) (*models.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sr, ok := s.services[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if sr.Status != models.ServiceCompleted {
		return nil, store.ErrConflict
	}
	r := rating
	switch side {
	case domain.SideRequester:
		if sr.ProviderRating != nil {
			return nil, store.ErrConflict
		}
		sr.ProviderRating, sr.ProviderReview = &r, comment
	case domain.SideProvider:
		if sr.ClientRating != nil {
			return nil, store.ErrConflict
		}
		sr.ClientRating, sr.ClientReview = &r, comment
	}
	sr.UpdatedAt = s.now()
	return s.withParties(sr), nil
}

func (s *Store) CountServicesByStatus(ctx context.Context) (map[models.ServiceStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[models.ServiceStatus]int64{}
	for _, sr := range s.services {
		out[sr.Status]++
	}
	return out, nil
}
