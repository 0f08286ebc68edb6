package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/realtime"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

var jobMsgs = services.Messages{NotFound: "Vaga não encontrada"}

type Service struct {
	jobs     store.JobStore
	users    store.UserStore
	notifier realtime.Notifier
	now      func() time.Time
}

func NewService(jobs store.JobStore, users store.UserStore, n realtime.Notifier) *Service {
	return &Service{jobs: jobs, users: users, notifier: n, now: time.Now}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// JobInput carries a vacancy. On update only the non-nil fields are applied.
type JobInput struct {
	Title        *string           `json:"title"`
	Description  *string           `json:"description"`
	Category     *string           `json:"category"`
	Type         *models.JobType   `json:"type"`
	Salary       *models.Salary    `json:"salary"`
	Requirements []string          `json:"requirements"`
	Benefits     []string          `json:"benefits"`
	Location     *string           `json:"location"`
	Vacancies    *int              `json:"vacancies"`
	Status       *models.JobStatus `json:"status"`
	Deadline     *time.Time        `json:"deadline"`
}

func (in JobInput) apply(j *models.JobVacancy) apperr.FieldErrors {
	errs := apperr.FieldErrors{}
	if in.Title != nil {
		j.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		j.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		j.Category = strings.TrimSpace(*in.Category)
	}
	if in.Type != nil {
		j.Type = *in.Type
	}
	if in.Salary != nil {
		j.Salary = *in.Salary
	}
	if in.Requirements != nil {
		j.Requirements = in.Requirements
	}
	if in.Benefits != nil {
		j.Benefits = in.Benefits
	}
	if in.Location != nil {
		j.Location = strings.TrimSpace(*in.Location)
	}
	if in.Vacancies != nil {
		j.Vacancies = *in.Vacancies
	}
	if in.Status != nil {
		j.Status = *in.Status
	}
	if in.Deadline != nil {
		j.Deadline = in.Deadline
	}

	if j.Title == "" {
		errs.Add("title", "Título é obrigatório")
	}
	if j.Description == "" {
		errs.Add("description", "Descrição é obrigatória")
	}
	if !j.Type.Valid() {
		errs.Add("type", "Tipo deve ser temporary, trial ou permanent")
	}
	if j.Salary.Min < 0 || (j.Salary.Max > 0 && j.Salary.Max < j.Salary.Min) {
		errs.Add("salary", "Faixa salarial inválida")
	}
	if j.Vacancies < 1 {
		errs.Add("vacancies", "Deve haver pelo menos uma vaga")
	}
	if j.Status != models.JobOpen && j.Status != models.JobClosed {
		errs.Add("status", "Status deve ser open ou closed")
	}
	return errs
}

func (s *Service) Create(ctx context.Context, company *models.User, in JobInput) (*models.JobVacancy, error) {
	if company.Role != models.RoleCompany {
		return nil, apperr.Forbidden("Apenas empresas podem publicar vagas")
	}
	j := &models.JobVacancy{
		CompanyID: company.ID,
		Vacancies: 1,
		Status:    models.JobOpen,
	}
	if errs := in.apply(j); len(errs) > 0 {
		return nil, apperr.Validation("Erro de validação", errs)
	}
	if err := s.jobs.CreateJob(ctx, j); err != nil {
		return nil, services.StoreError(err, jobMsgs)
	}
	log.Info().Str("job_id", j.ID.String()).Str("company_id", company.ID.String()).Msg("job posted")
	return j, nil
}

type JobQuery struct {
	Category string
	Type     models.JobType
	Location string
	Search   string
	Status   models.JobStatus
	store.Page
}

// List is the public job board. Only open vacancies are listed unless a
// status is given.
func (s *Service) List(ctx context.Context, q JobQuery) (services.Page[models.JobVacancy], error) {
	f := store.JobFilter{
		Category: strings.TrimSpace(q.Category),
		Type:     q.Type,
		Location: strings.TrimSpace(q.Location),
		Search:   strings.TrimSpace(q.Search),
		Status:   q.Status,
		Page:     q.Page.Normalize(),
	}
	if f.Status == "" {
		f.Status = models.JobOpen
	}
	if f.Type != "" && !f.Type.Valid() {
		return services.Page[models.JobVacancy]{}, apperr.BadRequest("Tipo de vaga inválido")
	}
	items, total, err := s.jobs.ListJobs(ctx, f)
	if err != nil {
		return services.Page[models.JobVacancy]{}, services.StoreError(err, jobMsgs)
	}
	return services.NewPage(items, total, f.Page), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.JobVacancy, error) {
	j, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, services.StoreError(err, jobMsgs)
	}
	return j, nil
}

func (s *Service) owned(ctx context.Context, actor *models.User, id uuid.UUID, allowAdmin bool) (*models.JobVacancy, error) {
	j, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.CompanyID != actor.ID && !(allowAdmin && actor.IsAdmin()) {
		return nil, apperr.Forbidden("Você não é o responsável por esta vaga")
	}
	return j, nil
}

func (s *Service) Update(ctx context.Context, actor *models.User, id uuid.UUID, in JobInput) (*models.JobVacancy, error) {
	j, err := s.owned(ctx, actor, id, false)
	if err != nil {
		return nil, err
	}
	if errs := in.apply(j); len(errs) > 0 {
		return nil, apperr.Validation("Erro de validação", errs)
	}
	j.Company = nil
	if err := s.jobs.SaveJob(ctx, j); err != nil {
		return nil, services.StoreError(err, jobMsgs)
	}
	return j, nil
}

// Delete removes a vacancy with its applications and proposals. Admins may
// delete any vacancy.
func (s *Service) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id, true); err != nil {
		return err
	}
	if err := s.jobs.DeleteJob(ctx, id); err != nil {
		return services.StoreError(err, jobMsgs)
	}
	log.Info().Str("job_id", id.String()).Str("by", actor.ID.String()).Msg("job deleted")
	return nil
}

func (s *Service) acceptsApplications(j *models.JobVacancy) error {
	if j.Status != models.JobOpen {
		return apperr.BadRequest("Esta vaga não está mais aberta")
	}
	if j.Deadline != nil && j.Deadline.Before(s.now()) {
		return apperr.BadRequest("O prazo de candidatura desta vaga encerrou")
	}
	return nil
}
