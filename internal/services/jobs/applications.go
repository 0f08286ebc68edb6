package jobs

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/domain"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/realtime"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

var appMsgs = services.Messages{
	NotFound:  "Candidatura não encontrada",
	Duplicate: "Você já se candidatou para esta vaga",
	Conflict:  "A candidatura foi alterada, atualize e tente novamente",
}

// Apply creates an application. The (job, applicant) unique key is the
// guard against double applications.
func (s *Service) Apply(ctx context.Context, applicant *models.User, jobID uuid.UUID, coverLetter string) (*models.Application, error) {
	if applicant.Role != models.RoleClient && applicant.Role != models.RoleProvider {
		return nil, apperr.Forbidden("Apenas clientes e prestadores podem se candidatar")
	}
	j, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.acceptsApplications(j); err != nil {
		return nil, err
	}

	a := &models.Application{
		JobID:       j.ID,
		ApplicantID: applicant.ID,
		CoverLetter: strings.TrimSpace(coverLetter),
		Status:      models.ApplicationPending,
	}
	if err := s.jobs.CreateApplication(ctx, a); err != nil {
		return nil, services.StoreError(err, services.Messages{NotFound: jobMsgs.NotFound, Duplicate: appMsgs.Duplicate})
	}

	services.Push(ctx, s.notifier, realtime.Event{Type: realtime.EventApplicationStatus, Data: a}, j.CompanyID)
	return a, nil
}

func (s *Service) MyApplications(ctx context.Context, userID uuid.UUID, p store.Page) (services.Page[models.Application], error) {
	f := store.ApplicationFilter{ApplicantID: &userID, Page: p.Normalize()}
	items, total, err := s.jobs.ListApplications(ctx, f)
	if err != nil {
		return services.Page[models.Application]{}, services.StoreError(err, appMsgs)
	}
	return services.NewPage(items, total, f.Page), nil
}

// JobApplications lists the applications of a vacancy for its company.
func (s *Service) JobApplications(ctx context.Context, actor *models.User, jobID uuid.UUID, p store.Page) (services.Page[models.Application], error) {
	if _, err := s.owned(ctx, actor, jobID, true); err != nil {
		return services.Page[models.Application]{}, err
	}
	f := store.ApplicationFilter{JobID: &jobID, Page: p.Normalize()}
	items, total, err := s.jobs.ListApplications(ctx, f)
	if err != nil {
		return services.Page[models.Application]{}, services.StoreError(err, appMsgs)
	}
	return services.NewPage(items, total, f.Page), nil
}

type RespondInput struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RespondApplication lets the company move an application forward or the
// applicant cancel it.
func (s *Service) RespondApplication(ctx context.Context, actor *models.User, id uuid.UUID, in RespondInput) (*models.Application, error) {
	a, err := s.jobs.GetApplication(ctx, id)
	if err != nil {
		return nil, services.StoreError(err, appMsgs)
	}

	var party domain.ApplicationParty
	var other uuid.UUID
	switch {
	case a.Job != nil && a.Job.CompanyID == actor.ID:
		party, other = domain.PartyCompany, a.ApplicantID
	case a.ApplicantID == actor.ID:
		party = domain.PartyApplicant
		if a.Job != nil {
			other = a.Job.CompanyID
		}
	default:
		return nil, apperr.Forbidden("Você não pode responder esta candidatura")
	}

	to := models.ApplicationStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if !domain.CanMoveApplication(party, a.Status, to) {
		if party == domain.PartyApplicant && to != models.ApplicationCancelled {
			return nil, apperr.Forbidden("O candidato só pode cancelar a candidatura")
		}
		return nil, apperr.BadRequest("Não é possível alterar a candidatura para este status")
	}

	updated, err := s.jobs.RespondApplication(ctx, a.ID, store.Response{
		From:    string(a.Status),
		To:      string(to),
		Message: strings.TrimSpace(in.Message),
		At:      s.now(),
	})
	if err != nil {
		return nil, services.StoreError(err, appMsgs)
	}

	if other != uuid.Nil {
		services.Push(ctx, s.notifier, realtime.Event{Type: realtime.EventApplicationStatus, Data: updated}, other)
	}
	return updated, nil
}
