// Package chat implements two-party conversations tied to a service request,
// a job application or a job proposal.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/realtime"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

const maxMessageLen = 5000

var msgs = services.Messages{NotFound: "Conversa não encontrada"}

type Service struct {
	chats    store.ChatStore
	services store.ServiceStore
	jobs     store.JobStore
	notifier realtime.Notifier
	now      func() time.Time
}

func NewService(chats store.ChatStore, ss store.ServiceStore, jobs store.JobStore, notifier realtime.Notifier) *Service {
	return &Service{chats: chats, services: ss, jobs: jobs, notifier: notifier, now: time.Now}
}

type OpenInput struct {
	Type      models.ConversationType `json:"type"`
	RelatedID uuid.UUID               `json:"related_id"`
	// ParticipantID is optional; when set it must match the counterpart of
	// the related entity.
	ParticipantID uuid.UUID `json:"participant_id"`
}

// Open returns the conversation between the caller and the counterpart of
// the related entity, creating it on first use. created reports whether a
// new conversation was stored.
func (s *Service) Open(ctx context.Context, caller *models.User, in OpenInput) (conv *models.Conversation, created bool, err error) {
	errs := apperr.FieldErrors{}
	if !in.Type.Valid() {
		errs.Add("type", "Tipo deve ser service, job_application ou job_proposal")
	}
	if in.RelatedID == uuid.Nil {
		errs.Add("related_id", "Entidade relacionada é obrigatória")
	}
	if len(errs) > 0 {
		return nil, false, apperr.Validation("Erro de validação", errs)
	}

	other, err := s.counterpart(ctx, caller.ID, in.Type, in.RelatedID)
	if err != nil {
		return nil, false, err
	}
	if in.ParticipantID != uuid.Nil && in.ParticipantID != other {
		return nil, false, apperr.Forbidden("Você não pode iniciar uma conversa com este usuário")
	}

	key := store.ConversationKey{UserA: caller.ID, UserB: other, Type: in.Type, RelatedID: in.RelatedID}
	conv, err = s.chats.FindConversation(ctx, key)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, services.StoreError(err, msgs)
	}

	conv = &models.Conversation{
		ParticipantA:  caller.ID,
		ParticipantB:  other,
		Type:          in.Type,
		RelatedID:     in.RelatedID,
		LastMessageAt: s.now(),
	}
	switch err := s.chats.CreateConversation(ctx, conv); {
	case err == nil:
		return conv, true, nil
	case errors.Is(err, store.ErrDuplicate):
		// lost the race to a concurrent open of the same key
		conv, err = s.chats.FindConversation(ctx, key)
		if err != nil {
			return nil, false, services.StoreError(err, msgs)
		}
		return conv, false, nil
	default:
		return nil, false, services.StoreError(err, msgs)
	}
}

// counterpart resolves the other participant and checks the caller may
// open a conversation about the entity.
func (s *Service) counterpart(ctx context.Context, callerID uuid.UUID, typ models.ConversationType, relatedID uuid.UUID) (uuid.UUID, error) {
	switch typ {
	case models.ConversationService:
		sr, err := s.services.GetServiceRequest(ctx, relatedID)
		if err != nil {
			return uuid.Nil, services.StoreError(err, services.Messages{NotFound: "Solicitação de serviço não encontrada"})
		}
		if !sr.IsParticipant(callerID) {
			return uuid.Nil, apperr.Forbidden("Você não participa desta solicitação")
		}
		if sr.Status == models.ServicePending || sr.Status == models.ServiceRejected {
			return uuid.Nil, apperr.Forbidden("A conversa fica disponível após o prestador aceitar a solicitação")
		}
		if sr.RequesterID == callerID {
			return sr.ProviderID, nil
		}
		return sr.RequesterID, nil

	case models.ConversationJobApplication:
		a, err := s.jobs.GetApplication(ctx, relatedID)
		if err != nil {
			return uuid.Nil, services.StoreError(err, services.Messages{NotFound: "Candidatura não encontrada"})
		}
		companyID, err := s.applicationCompany(ctx, a)
		if err != nil {
			return uuid.Nil, err
		}
		switch callerID {
		case companyID:
			return a.ApplicantID, nil
		case a.ApplicantID:
			if !companyResponded(a.Status) {
				return uuid.Nil, apperr.Forbidden("Aguarde a resposta da empresa para iniciar a conversa")
			}
			return companyID, nil
		}
		return uuid.Nil, apperr.Forbidden("Você não participa desta candidatura")

	case models.ConversationJobProposal:
		p, err := s.jobs.GetProposal(ctx, relatedID)
		if err != nil {
			return uuid.Nil, services.StoreError(err, services.Messages{NotFound: "Proposta não encontrada"})
		}
		switch callerID {
		case p.CompanyID:
			return p.ProviderID, nil
		case p.ProviderID:
			return p.CompanyID, nil
		}
		return uuid.Nil, apperr.Forbidden("Você não participa desta proposta")
	}
	return uuid.Nil, apperr.BadRequest("Tipo de conversa inválido")
}

func (s *Service) applicationCompany(ctx context.Context, a *models.Application) (uuid.UUID, error) {
	if a.Job != nil {
		return a.Job.CompanyID, nil
	}
	j, err := s.jobs.GetJob(ctx, a.JobID)
	if err != nil {
		return uuid.Nil, services.StoreError(err, services.Messages{NotFound: "Vaga não encontrada"})
	}
	return j.CompanyID, nil
}

func companyResponded(st models.ApplicationStatus) bool {
	switch st {
	case models.ApplicationReviewing, models.ApplicationAccepted, models.ApplicationRejected:
		return true
	}
	return false
}

// List returns the caller's conversations, most recent activity first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]store.ConversationSummary, error) {
	out, err := s.chats.ListConversations(ctx, userID)
	if err != nil {
		return nil, services.StoreError(err, msgs)
	}
	if out == nil {
		out = []store.ConversationSummary{}
	}
	return out, nil
}

func (s *Service) participantOf(ctx context.Context, userID, id uuid.UUID) (*models.Conversation, error) {
	conv, err := s.chats.GetConversation(ctx, id)
	if err != nil {
		return nil, services.StoreError(err, msgs)
	}
	if !conv.HasParticipant(userID) {
		return nil, apperr.Forbidden("Você não participa desta conversa")
	}
	return conv, nil
}

// Messages lists a page of messages and marks the conversation read for userID.
func (s *Service) Messages(ctx context.Context, userID, id uuid.UUID, p store.Page) (services.Page[models.Message], error) {
	if _, err := s.participantOf(ctx, userID, id); err != nil {
		return services.Page[models.Message]{}, err
	}
	if err := s.chats.MarkRead(ctx, id, userID, s.now()); err != nil {
		return services.Page[models.Message]{}, services.StoreError(err, msgs)
	}
	p = p.Normalize()
	items, total, err := s.chats.ListMessages(ctx, id, p)
	if err != nil {
		return services.Page[models.Message]{}, services.StoreError(err, msgs)
	}
	return services.NewPage(items, total, p), nil
}

// Send stores a message and pushes it to both participants' sockets.
func (s *Service) Send(ctx context.Context, sender *models.User, id uuid.UUID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("Erro de validação", apperr.FieldErrors{"text": {"A mensagem não pode estar vazia"}})
	}
	if utf8.RuneCountInString(text) > maxMessageLen {
		return nil, apperr.Validation("Erro de validação", apperr.FieldErrors{"text": {"A mensagem deve ter no máximo 5000 caracteres"}})
	}
	conv, err := s.participantOf(ctx, sender.ID, id)
	if err != nil {
		return nil, err
	}

	m := &models.Message{ConversationID: conv.ID, SenderID: sender.ID, Text: text}
	if err := s.chats.CreateMessage(ctx, m); err != nil {
		return nil, services.StoreError(err, msgs)
	}

	log.Debug().Str("conversation_id", conv.ID.String()).Str("sender_id", sender.ID.String()).Msg("message sent")
	services.Push(ctx, s.notifier, realtime.Event{Type: realtime.EventNewMessage, Data: m}, conv.ParticipantA, conv.ParticipantB)
	return m, nil
}
