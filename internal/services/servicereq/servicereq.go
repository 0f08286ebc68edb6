// Package servicereq runs the service request lifecycle: creation, the
// provider/requester status transitions and the post-completion ratings.
package servicereq

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/domain"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/realtime"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

var msgs = services.Messages{
	NotFound: "Solicitação de serviço não encontrada",
	Conflict: "O status da solicitação foi alterado, atualize e tente novamente",
}

type Service struct {
	services store.ServiceStore
	users    store.UserStore
	notifier realtime.Notifier
	now      func() time.Time
}

func NewService(ss store.ServiceStore, users store.UserStore, n realtime.Notifier) *Service {
	return &Service{services: ss, users: users, notifier: n, now: time.Now}
}

type CreateInput struct {
	ProviderID    uuid.UUID `json:"provider_id"`
	Category      string    `json:"category"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Budget        float64   `json:"budget"`
}

func (s *Service) Create(ctx context.Context, requester *models.User, in CreateInput) (*models.ServiceRequest, error) {
	errs := apperr.FieldErrors{}
	if in.ProviderID == uuid.Nil {
		errs.Add("provider_id", "Prestador é obrigatório")
	}
	if strings.TrimSpace(in.Title) == "" {
		errs.Add("title", "Título é obrigatório")
	}
	if strings.TrimSpace(in.Description) == "" {
		errs.Add("description", "Descrição é obrigatória")
	}
	if in.ScheduledDate.IsZero() {
		errs.Add("scheduled_date", "Data é obrigatória")
	}
	if in.Budget < 0 {
		errs.Add("budget", "Orçamento não pode ser negativo")
	}
	if len(errs) > 0 {
		return nil, apperr.Validation("Erro de validação", errs)
	}
	if in.ProviderID == requester.ID {
		return nil, apperr.BadRequest("Você não pode solicitar um serviço a si mesmo")
	}

	provider, err := s.users.GetUser(ctx, in.ProviderID)
	if err != nil {
		return nil, services.StoreError(err, services.Messages{NotFound: "Prestador não encontrado"})
	}
	if !provider.IsProvider() || !provider.IsActive {
		return nil, apperr.NotFound("Prestador não encontrado")
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = provider.Provider.Category
	}
	sr := &models.ServiceRequest{
		RequesterID:   requester.ID,
		ProviderID:    provider.ID,
		Category:      category,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		Location:      strings.TrimSpace(in.Location),
		ScheduledDate: in.ScheduledDate,
		Budget:        in.Budget,
		Status:        models.ServicePending,
	}
	if err := s.services.CreateServiceRequest(ctx, sr); err != nil {
		return nil, services.StoreError(err, msgs)
	}

	services.Push(ctx, s.notifier, realtime.Event{Type: realtime.EventServiceStatus, Data: sr}, provider.ID)
	return sr, nil
}

// MyRequests lists the requests the user has made.
func (s *Service) MyRequests(ctx context.Context, userID uuid.UUID, status models.ServiceStatus, p store.Page) (services.Page[models.ServiceRequest], error) {
	return s.list(ctx, store.ServiceFilter{RequesterID: &userID, Status: status, Page: p.Normalize()})
}

// Received lists the requests addressed to a provider.
func (s *Service) Received(ctx context.Context, provider *models.User, status models.ServiceStatus, p store.Page) (services.Page[models.ServiceRequest], error) {
	if !provider.IsProvider() {
		return services.Page[models.ServiceRequest]{}, apperr.Forbidden("Apenas prestadores recebem solicitações")
	}
	return s.list(ctx, store.ServiceFilter{ProviderID: &provider.ID, Status: status, Page: p.Normalize()})
}

func (s *Service) list(ctx context.Context, f store.ServiceFilter) (services.Page[models.ServiceRequest], error) {
	if f.Status != "" && !f.Status.Valid() {
		return services.Page[models.ServiceRequest]{}, apperr.BadRequest("Status inválido")
	}
	items, total, err := s.services.ListServiceRequests(ctx, f)
	if err != nil {
		return services.Page[models.ServiceRequest]{}, services.StoreError(err, msgs)
	}
	return services.NewPage(items, total, f.Page), nil
}

func sideOf(sr *models.ServiceRequest, userID uuid.UUID) (domain.Side, bool) {
	switch userID {
	case sr.ProviderID:
		return domain.SideProvider, true
	case sr.RequesterID:
		return domain.SideRequester, true
	}
	return "", false
}

var statusLabels = map[models.ServiceStatus]string{
	models.ServicePending:    "pendente",
	models.ServiceAccepted:   "aceito",
	models.ServiceRejected:   "recusado",
	models.ServiceInProgress: "em andamento",
	models.ServiceCompleted:  "concluído",
	models.ServiceCancelled:  "cancelado",
}

type StatusInput struct {
	Status models.ServiceStatus `json:"status"`
	Reason string               `json:"cancellation_reason"`
}

// UpdateStatus moves a request to the target status when the transition
// table allows it for the actor's side.
func (s *Service) UpdateStatus(ctx context.Context, actor *models.User, id uuid.UUID, in StatusInput) (*models.ServiceRequest, error) {
	action, ok := domain.ActionForTarget(in.Status)
	if !ok {
		return nil, apperr.Validation("Erro de validação", apperr.FieldErrors{"status": {"Status inválido"}})
	}

	sr, err := s.services.GetServiceRequest(ctx, id)
	if err != nil {
		return nil, services.StoreError(err, msgs)
	}
	side, ok := sideOf(sr, actor.ID)
	if !ok {
		return nil, apperr.Forbidden("Você não participa desta solicitação")
	}

	to, res := domain.NextServiceStatus(sr.Status, action, side)
	switch res {
	case domain.TransitionForbidden:
		return nil, apperr.Forbidden("Apenas o prestador pode alterar a solicitação para este status")
	case domain.TransitionInvalid:
		if action == domain.ServiceCancel && side == domain.SideRequester {
			return nil, apperr.BadRequest("Você só pode cancelar solicitações pendentes")
		}
		return nil, apperr.BadRequest(fmt.Sprintf("Não é possível alterar de %s para %s",
			statusLabels[sr.Status], statusLabels[in.Status]))
	}

	ch := store.StatusChange{From: sr.Status, To: to, At: s.now()}
	if to == models.ServiceCancelled {
		by := actor.ID
		ch.CancelledBy = &by
		ch.CancellationReason = strings.TrimSpace(in.Reason)
	}
	updated, err := s.services.ChangeServiceStatus(ctx, sr.ID, ch)
	if err != nil {
		return nil, services.StoreError(err, msgs)
	}

	log.Info().
		Str("service_id", sr.ID.String()).
		Str("from", string(ch.From)).
		Str("to", string(to)).
		Str("by", string(side)).
		Msg("service status changed")

	other := updated.RequesterID
	if side == domain.SideRequester {
		other = updated.ProviderID
	}
	services.Push(ctx, s.notifier, realtime.Event{Type: realtime.EventServiceStatus, Data: updated}, other)
	return updated, nil
}

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewResult carries the rated request and the counterpart's new average.
type ReviewResult struct {
	Service *models.ServiceRequest `json:"service"`
	Rated   *models.User           `json:"rated_user"`
}

// Review records one direction's rating of a completed request and folds it
// into the counterpart's average. Each direction may rate once.
func (s *Service) Review(ctx context.Context, actor *models.User, id uuid.UUID, in ReviewInput) (*ReviewResult, error) {
	if !domain.ValidRating(in.Rating) {
		return nil, apperr.Validation("Erro de validação", apperr.FieldErrors{"rating": {"A avaliação deve ser entre 1 e 5"}})
	}

	sr, err := s.services.GetServiceRequest(ctx, id)
	if err != nil {
		return nil, services.StoreError(err, msgs)
	}
	side, ok := sideOf(sr, actor.ID)
	if !ok {
		return nil, apperr.Forbidden("Você não participa desta solicitação")
	}
	if sr.Status != models.ServiceCompleted {
		return nil, apperr.BadRequest("Apenas serviços concluídos podem ser avaliados")
	}
	if (side == domain.SideRequester && sr.ProviderRating != nil) || (side == domain.SideProvider && sr.ClientRating != nil) {
		return nil, apperr.BadRequest("Você já avaliou este serviço")
	}

	updated, err := s.services.SetServiceRating(ctx, sr.ID, side, in.Rating, strings.TrimSpace(in.Comment))
	if err != nil {
		return nil, services.StoreError(err, services.Messages{NotFound: msgs.NotFound, Conflict: "Você já avaliou este serviço"})
	}

	target, kind := updated.ProviderID, domain.ProviderRatingKind
	if side == domain.SideProvider {
		target, kind = updated.RequesterID, domain.ClientRatingKind
	}
	rated, err := s.users.ApplyRating(ctx, target, kind, in.Rating, false)
	if err != nil {
		return nil, services.StoreError(err, services.Messages{NotFound: "Usuário avaliado não encontrado"})
	}
	return &ReviewResult{Service: updated, Rated: rated}, nil
}
