package memstore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

func (s *Store) CreateJob(ctx context.Context, j *models.JobVacancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.Status == "" {
		j.Status = models.JobOpen
	}
	s.stamp(&j.ID, &j.CreatedAt, &j.UpdatedAt)
	cp := *j
	cp.Company = nil
	s.jobs[j.ID] = &cp
	return nil
}

func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*models.JobVacancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.withCompany(j), nil
}

func (s *Store) withCompany(j *models.JobVacancy) *models.JobVacancy {
	cp := *j
	if u, ok := s.users[j.CompanyID]; ok {
		c := *u
		cp.Company = &c
	}
	return &cp
}

func (s *Store) ListJobs(ctx context.Context, f store.JobFilter) ([]models.JobVacancy, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.JobVacancy
	for _, j := range s.jobs {
		if f.CompanyID != nil && j.CompanyID != *f.CompanyID {
			continue
		}
		if f.Category != "" && !strings.EqualFold(j.Category, f.Category) {
			continue
		}
		if f.Type != "" && j.Type != f.Type {
			continue
		}
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.Location != "" && !containsFold(j.Location, f.Location) {
			continue
		}
		if f.Search != "" && !containsFold(j.Title, f.Search) && !containsFold(j.Description, f.Search) {
			continue
		}
		out = append(out, *s.withCompany(j))
	}
	newestFirst(out, func(j models.JobVacancy) time.Time { return j.CreatedAt })
	return paginate(out, f.Page), int64(len(out)), nil
}

// SaveJob writes the editable fields. ApplicationsCount stays owned by CreateApplication.
func (s *Store) SaveJob(ctx context.Context, j *models.JobVacancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.jobs[j.ID]
	if !ok {
		return store.ErrNotFound
	}
	cp := *j
	cp.Company = nil
	cp.ApplicationsCount = cur.ApplicationsCount
	cp.CreatedAt = cur.CreatedAt
	cp.UpdatedAt = s.now()
	s.jobs[j.ID] = &cp
	j.ApplicationsCount, j.UpdatedAt = cp.ApplicationsCount, cp.UpdatedAt
	return nil
}

func (s *Store) DeleteJob(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.jobs, id)
	for aid, a := range s.applications {
		if a.JobID == id {
			delete(s.applications, aid)
		}
	}
	for pid, p := range s.proposals {
		if p.JobID == id {
			delete(s.proposals, pid)
		}
	}
	return nil
}

func (s *Store) CountJobs(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.jobs)), nil
}

func (s *Store) CreateApplication(ctx context.Context, a *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[a.JobID]
	if !ok {
		return store.ErrNotFound
	}
	for _, other := range s.applications {
		if other.JobID == a.JobID && other.ApplicantID == a.ApplicantID {
			return store.ErrDuplicate
		}
	}
	if a.Status == "" {
		a.Status = models.ApplicationPending
	}
	s.stamp(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	cp := *a
	cp.Job, cp.Applicant = nil, nil
	s.applications[a.ID] = &cp
	job.ApplicationsCount++
	return nil
}

func (s *Store) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.withApplicationRefs(a), nil
}

func (s *Store) withApplicationRefs(a *models.Application) *models.Application {
	cp := *a
	if j, ok := s.jobs[a.JobID]; ok {
		cp.Job = s.withCompany(j)
	}
	if u, ok := s.users[a.ApplicantID]; ok {
		applicant := *u
		cp.Applicant = &applicant
	}
	return &cp
}

func (s *Store) ListApplications(ctx context.Context, f store.ApplicationFilter) ([]models.Application, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Application
	for _, a := range s.applications {
		if f.JobID != nil && a.JobID != *f.JobID {
			continue
		}
		if f.ApplicantID != nil && a.ApplicantID != *f.ApplicantID {
			continue
		}
		out = append(out, *s.withApplicationRefs(a))
	}
	newestFirst(out, func(a models.Application) time.Time { return a.CreatedAt })
	return paginate(out, f.Page), int64(len(out)), nil
}

func (s *Store) RespondApplication(ctx context.Context, id uuid.UUID, r store.Response) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.applications[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if string(a.Status) != r.From {
		return nil, store.ErrConflict
	}
	a.Status = models.ApplicationStatus(r.To)
	if r.Message != "" {
		a.ResponseMessage = r.Message
	}
	if !r.At.IsZero() {
		at := r.At
		a.RespondedAt = &at
	}
	a.UpdatedAt = s.now()
	return s.withApplicationRefs(a), nil
}

func (s *Store) CountApplications(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.applications)), nil
}

func (s *Store) CreateProposal(ctx context.Context, p *models.JobProposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[p.JobID]; !ok {
		return store.ErrNotFound
	}
	for _, other := range s.proposals {
		if other.JobID == p.JobID && other.ProviderID == p.ProviderID {
			return store.ErrDuplicate
		}
	}
	if p.Status == "" {
		p.Status = models.ProposalPending
	}
	s.stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	cp := *p
	cp.Job, cp.Provider, cp.Company = nil, nil, nil
	s.proposals[p.ID] = &cp
	return nil
}

func (s *Store) withProposalRefs(p *models.JobProposal) *models.JobProposal {
	cp := *p
	if j, ok := s.jobs[p.JobID]; ok {
		job := *j
		cp.Job = &job
	}
	if u, ok := s.users[p.ProviderID]; ok {
		provider := *u
		cp.Provider = &provider
	}
	if u, ok := s.users[p.CompanyID]; ok {
		company := *u
		cp.Company = &company
	}
	return &cp
}

func (s *Store) GetProposal(ctx context.Context, id uuid.UUID) (*models.JobProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.withProposalRefs(p), nil
}

func (s *Store) ListProposals(ctx context.Context, f store.ProposalFilter) ([]models.JobProposal, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.JobProposal
	for _, p := range s.proposals {
		if f.ProviderID != nil && p.ProviderID != *f.ProviderID {
			continue
		}
		if f.CompanyID != nil && p.CompanyID != *f.CompanyID {
			continue
		}
		out = append(out, *s.withProposalRefs(p))
	}
	newestFirst(out, func(p models.JobProposal) time.Time { return p.CreatedAt })
	return paginate(out, f.Page), int64(len(out)), nil
}

func (s *Store) RespondProposal(ctx context.Context, id uuid.UUID, r store.Response) (*models.JobProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proposals[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if string(p.Status) != r.From {
		return nil, store.ErrConflict
	}
	p.Status = models.ProposalStatus(r.To)
	p.ResponseMessage = r.Message
	at := r.At
	p.RespondedAt = &at
	p.UpdatedAt = s.now()
	return s.withProposalRefs(p), nil
}
