package memstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.reviews {
		if other.ReviewerID == r.ReviewerID && other.ReviewedUserID == r.ReviewedUserID && other.Type == r.Type {
			return store.ErrDuplicate
		}
	}
	s.stamp(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	cp := *r
	cp.Reviewer, cp.Reports = nil, nil
	s.reviews[r.ID] = &cp
	return nil
}

func (s *Store) withReviewRefs(r *models.Review) *models.Review {
	cp := *r
	if u, ok := s.users[r.ReviewerID]; ok {
		reviewer := *u
		cp.Reviewer = &reviewer
	}
	cp.Reports = append([]models.ReviewReport(nil), s.reports[r.ID]...)
	return &cp
}

func (s *Store) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.withReviewRefs(r), nil
}

func (s *Store) ListReviews(ctx context.Context, f store.ReviewFilter) ([]models.Review, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Review
	for _, r := range s.reviews {
		if f.ReviewedUserID != nil && r.ReviewedUserID != *f.ReviewedUserID {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, r.Status) {
			continue
		}
		out = append(out, *s.withReviewRefs(r))
	}
	newestFirst(out, func(r models.Review) time.Time { return r.CreatedAt })
	return paginate(out, f.Page), int64(len(out)), nil
}

func hasStatus(list []models.ReviewStatus, st models.ReviewStatus) bool {
	for _, s := range list {
		if s == st {
			return true
		}
	}
	return false
}

func (s *Store) UpdateReviewState(ctx context.Context, id uuid.UUID, u store.ReviewUpdate) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if r.Status != u.From {
		return nil, store.ErrConflict
	}
	r.Status = u.To
	r.Counted = u.Counted
	if u.ClearReports {
		delete(s.reports, id)
		r.ReportsCount = 0
	}
	if u.Reason != "" {
		r.ModerationReason = u.Reason
	}
	if u.ModeratedBy != nil {
		r.ModeratedBy = u.ModeratedBy
		at := u.At
		r.ModeratedAt = &at
	}
	r.UpdatedAt = s.now()
	return s.withReviewRefs(r), nil
}

func (s *Store) DeleteReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	gone := *r
	delete(s.reviews, id)
	delete(s.reports, id)
	delete(s.helpful, id)
	return &gone, nil
}

func (s *Store) AddReport(ctx context.Context, rep *models.ReviewReport, threshold int) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[rep.ReviewID]
	if !ok {
		return nil, store.ErrNotFound
	}
	for _, other := range s.reports[rep.ReviewID] {
		if other.ReporterID == rep.ReporterID {
			return nil, store.ErrDuplicate
		}
	}
	s.stamp(&rep.ID, &rep.CreatedAt, nil)
	s.reports[rep.ReviewID] = append(s.reports[rep.ReviewID], *rep)
	r.ReportsCount++
	if r.Status == models.ReviewApproved && r.ReportsCount >= threshold {
		r.Status = models.ReviewFlagged
	}
	r.UpdatedAt = s.now()
	return s.withReviewRefs(r), nil
}

func (s *Store) ToggleHelpful(ctx context.Context, reviewID, userID uuid.UUID) (bool, *models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[reviewID]
	if !ok {
		return false, nil, store.ErrNotFound
	}
	votes := s.helpful[reviewID]
	if votes == nil {
		votes = map[uuid.UUID]bool{}
		s.helpful[reviewID] = votes
	}
	marked := !votes[userID]
	if marked {
		votes[userID] = true
		r.HelpfulCount++
	} else {
		delete(votes, userID)
		if r.HelpfulCount > 0 {
			r.HelpfulCount--
		}
	}
	return marked, s.withReviewRefs(r), nil
}

func (s *Store) CountReviewsByStatus(ctx context.Context) (map[models.ReviewStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[models.ReviewStatus]int64{}
	for _, r := range s.reviews {
		out[r.Status]++
	}
	return out, nil
}
