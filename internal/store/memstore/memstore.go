// Package memstore is an in-memory store.Store with the same uniqueness and
// compare-and-swap semantics as the postgres store. Used by tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users        map[uuid.UUID]*models.User
	services     map[uuid.UUID]*models.ServiceRequest
	jobs         map[uuid.UUID]*models.JobVacancy
	applications map[uuid.UUID]*models.Application
	proposals    map[uuid.UUID]*models.JobProposal
	reviews      map[uuid.UUID]*models.Review
	reports      map[uuid.UUID][]models.ReviewReport
	helpful      map[uuid.UUID]map[uuid.UUID]bool
	convs        map[uuid.UUID]*models.Conversation
	unread       map[uuid.UUID]map[uuid.UUID]int
	messages     map[uuid.UUID][]*models.Message
	settings     *models.Settings

	// pingErr and settingsErr simulate an unavailable datastore.
	pingErr     error
	settingsErr error
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:          time.Now,
		users:        map[uuid.UUID]*models.User{},
		services:     map[uuid.UUID]*models.ServiceRequest{},
		jobs:         map[uuid.UUID]*models.JobVacancy{},
		applications: map[uuid.UUID]*models.Application{},
		proposals:    map[uuid.UUID]*models.JobProposal{},
		reviews:      map[uuid.UUID]*models.Review{},
		reports:      map[uuid.UUID][]models.ReviewReport{},
		helpful:      map[uuid.UUID]map[uuid.UUID]bool{},
		convs:        map[uuid.UUID]*models.Conversation{},
		unread:       map[uuid.UUID]map[uuid.UUID]int{},
		messages:     map[uuid.UUID][]*models.Message{},
	}
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pingErr
}

func (s *Store) SetPingErr(err error) {
	s.mu.Lock()
	s.pingErr = err
	s.mu.Unlock()
}

// SetClock replaces the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store) stamp(id *uuid.UUID, created, updated *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := s.now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

func paginate[T any](items []T, p store.Page) []T {
	p = p.Normalize()
	off := p.Offset()
	if off >= len(items) {
		return []T{}
	}
	end := off + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[off:end]
}

func newestFirst[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).After(created(items[j]))
	})
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
