package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/domain"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.users {
		if strings.EqualFold(other.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	s.stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if googleID != "" && u.GoogleID == googleID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if tokenHash != "" && u.ResetPasswordToken == tokenHash &&
			u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

// SaveUser overwrites the profile columns. Rating aggregates are owned by
// ApplyRating and are never written here.
func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[u.ID]
	if !ok {
		return store.ErrNotFound
	}
	for id, other := range s.users {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	cp := *u
	cp.ProviderRating, cp.ProviderReviewCount = cur.ProviderRating, cur.ProviderReviewCount
	cp.ClientRating, cp.ClientReviewCount = cur.ClientRating, cur.ClientReviewCount
	cp.CreatedAt = cur.CreatedAt
	cp.UpdatedAt = s.now()
	s.users[u.ID] = &cp
	*u = cp
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.User
	for _, u := range s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Active != nil && u.IsActive != *f.Active {
			continue
		}
		if f.Category != "" && !strings.EqualFold(u.Provider.Category, f.Category) {
			continue
		}
		if f.City != "" && !containsFold(u.Location.City, f.City) {
			continue
		}
		if f.MinRating > 0 && u.ProviderRating < f.MinRating {
			continue
		}
		if f.Search != "" && !containsFold(u.Name, f.Search) && !containsFold(u.Email, f.Search) &&
			!containsFold(u.Provider.Description, f.Search) {
			continue
		}
		out = append(out, *u)
	}
	newestFirst(out, func(u models.User) time.Time { return u.CreatedAt })
	if f.SortByRating {
		sortByRating(out)
	}
	return paginate(out, f.Page), int64(len(out)), nil
}

func sortByRating(users []models.User) {
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].ProviderRating > users[j].ProviderRating
	})
}

func (s *Store) CountUsersByRole(ctx context.Context) (map[models.Role]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[models.Role]int64{}
	for _, u := range s.users {
		out[u.Role]++
	}
	return out, nil
}

func (s *Store) ApplyRating(ctx context.Context, userID uuid.UUID, kind domain.RatingKind, rating int, remove bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	avg, count := &u.ProviderRating, &u.ProviderReviewCount
	if kind == domain.ClientRatingKind {
		avg, count = &u.ClientRating, &u.ClientReviewCount
	}
	if remove {
		*avg, *count = domain.RemoveRating(*avg, *count, rating)
	} else {
		*avg, *count = domain.AddRating(*avg, *count, rating)
	}
	u.UpdatedAt = s.now()
	cp := *u
	return &cp, nil
}

func (s *Store) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if u.ResetPasswordExpire != nil && !u.ResetPasswordExpire.After(now) {
			u.ResetPasswordToken = ""
			u.ResetPasswordExpire = nil
			n++
		}
	}
	return n, nil
}
