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

var proposalMsgs = services.Messages{
	NotFound:  "Proposta não encontrada",
	Duplicate: "Já existe uma proposta desta vaga para este prestador",
	Conflict:  "A proposta já foi respondida",
}

type ProposalInput struct {
	ProviderID     uuid.UUID `json:"provider_id"`
	Message        string    `json:"message"`
	ProposedSalary float64   `json:"proposed_salary"`
}

// Propose sends a vacancy to a provider on behalf of the owning company.
func (s *Service) Propose(ctx context.Context, company *models.User, jobID uuid.UUID, in ProposalInput) (*models.JobProposal, error) {
	if in.ProviderID == uuid.Nil {
		return nil, apperr.Validation("Erro de validação", apperr.FieldErrors{"provider_id": {"Prestador é obrigatório"}})
	}
	if in.ProposedSalary < 0 {
		return nil, apperr.Validation("Erro de validação", apperr.FieldErrors{"proposed_salary": {"Salário não pode ser negativo"}})
	}
	j, err := s.owned(ctx, company, jobID, false)
	if err != nil {
		return nil, err
	}
	if j.Status != models.JobOpen {
		return nil, apperr.BadRequest("Esta vaga não está mais aberta")
	}

	provider, err := s.users.GetUser(ctx, in.ProviderID)
	if err != nil {
		return nil, services.StoreError(err, services.Messages{NotFound: "Prestador não encontrado"})
	}
	if !provider.IsProvider() || !provider.IsActive {
		return nil, apperr.NotFound("Prestador não encontrado")
	}

	p := &models.JobProposal{
		JobID:          j.ID,
		ProviderID:     provider.ID,
		CompanyID:      company.ID,
		Message:        strings.TrimSpace(in.Message),
		ProposedSalary: in.ProposedSalary,
		Status:         models.ProposalPending,
	}
	if err := s.jobs.CreateProposal(ctx, p); err != nil {
		return nil, services.StoreError(err, services.Messages{NotFound: jobMsgs.NotFound, Duplicate: proposalMsgs.Duplicate})
	}

	services.Push(ctx, s.notifier, realtime.Event{Type: realtime.EventProposal, Data: p}, provider.ID)
	return p, nil
}

// MyProposals lists received proposals for providers and sent ones for companies.
func (s *Service) MyProposals(ctx context.Context, u *models.User, p store.Page) (services.Page[models.JobProposal], error) {
	f := store.ProposalFilter{Page: p.Normalize()}
	switch u.Role {
	case models.RoleProvider:
		f.ProviderID = &u.ID
	case models.RoleCompany:
		f.CompanyID = &u.ID
	default:
		return services.Page[models.JobProposal]{}, apperr.Forbidden("Apenas prestadores e empresas possuem propostas")
	}
	items, total, err := s.jobs.ListProposals(ctx, f)
	if err != nil {
		return services.Page[models.JobProposal]{}, services.StoreError(err, proposalMsgs)
	}
	return services.NewPage(items, total, f.Page), nil
}

// RespondProposal lets the addressed provider accept or reject a pending proposal.
func (s *Service) RespondProposal(ctx context.Context, provider *models.User, id uuid.UUID, in RespondInput) (*models.JobProposal, error) {
	p, err := s.jobs.GetProposal(ctx, id)
	if err != nil {
		return nil, services.StoreError(err, proposalMsgs)
	}
	if p.ProviderID != provider.ID {
		return nil, apperr.Forbidden("Esta proposta não foi enviada para você")
	}

	to := models.ProposalStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if to != models.ProposalAccepted && to != models.ProposalRejected {
		return nil, apperr.Validation("Erro de validação", apperr.FieldErrors{"status": {"Status deve ser accepted ou rejected"}})
	}
	if !domain.CanRespondProposal(p.Status, to) {
		return nil, apperr.BadRequest(proposalMsgs.Conflict)
	}

	updated, err := s.jobs.RespondProposal(ctx, p.ID, store.Response{
		From:    string(p.Status),
		To:      string(to),
		Message: strings.TrimSpace(in.Message),
		At:      s.now(),
	})
	if err != nil {
		return nil, services.StoreError(err, proposalMsgs)
	}

	services.Push(ctx, s.notifier, realtime.Event{Type: realtime.EventProposal, Data: updated}, updated.CompanyID)
	return updated, nil
}
