// Package reviews implements user reviews with keyword auto-moderation,
// report escalation and admin moderation. Only counted reviews contribute to
// the reviewed user's rolling average.
package reviews

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/domain"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/metrics"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

var msgs = services.Messages{
	NotFound:  "Avaliação não encontrada",
	Duplicate: "Você já avaliou este usuário",
	Conflict:  "A avaliação foi alterada, atualize e tente novamente",
}

type Service struct {
	reviews  store.ReviewStore
	users    store.UserStore
	services store.ServiceStore
	now      func() time.Time
}

func NewService(reviews store.ReviewStore, users store.UserStore, ss store.ServiceStore) *Service {
	return &Service{reviews: reviews, users: users, services: ss, now: time.Now}
}

type CreateInput struct {
	ReviewedUserID   uuid.UUID         `json:"reviewed_user_id"`
	Type             models.ReviewType `json:"type"`
	ServiceRequestID *uuid.UUID        `json:"service_request_id"`
	Rating           int               `json:"rating"`
	Comment          string            `json:"comment"`
}

func (in CreateInput) validate() apperr.FieldErrors {
	errs := apperr.FieldErrors{}
	if in.ReviewedUserID == uuid.Nil {
		errs.Add("reviewed_user_id", "Usuário avaliado é obrigatório")
	}
	if !in.Type.Valid() {
		errs.Add("type", "Tipo deve ser provider ou client")
	}
	if !domain.ValidRating(in.Rating) {
		errs.Add("rating", "A avaliação deve ser entre 1 e 5")
	}
	if utf8.RuneCountInString(in.Comment) > 1000 {
		errs.Add("comment", "O comentário deve ter no máximo 1000 caracteres")
	}
	return errs
}

// Create stores a review. Comments with offensive terms are held for
// moderation and do not touch the average until approved.
func (s *Service) Create(ctx context.Context, reviewer *models.User, in CreateInput) (*models.Review, error) {
	if errs := in.validate(); len(errs) > 0 {
		return nil, apperr.Validation("Erro de validação", errs)
	}
	if in.ReviewedUserID == reviewer.ID {
		return nil, apperr.BadRequest("Você não pode avaliar a si mesmo")
	}

	target, err := s.users.GetUser(ctx, in.ReviewedUserID)
	if err != nil {
		return nil, services.StoreError(err, services.Messages{NotFound: "Usuário avaliado não encontrado"})
	}
	if in.Type == models.ReviewOfProvider && !target.IsProvider() {
		return nil, apperr.BadRequest("Este usuário não é um prestador de serviços")
	}
	if in.ServiceRequestID != nil {
		if err := s.checkService(ctx, *in.ServiceRequestID, reviewer.ID, target.ID); err != nil {
			return nil, err
		}
	}

	status := domain.InitialReviewStatus(in.Comment)
	r := &models.Review{
		ReviewerID:       reviewer.ID,
		ReviewedUserID:   target.ID,
		Type:             in.Type,
		ServiceRequestID: in.ServiceRequestID,
		Rating:           in.Rating,
		Comment:          strings.TrimSpace(in.Comment),
		Status:           status,
		Counted:          status == models.ReviewApproved,
	}
	if err := s.reviews.CreateReview(ctx, r); err != nil {
		return nil, services.StoreError(err, msgs)
	}

	if !r.Counted {
		metrics.RecordReviewHeld(string(status))
		log.Info().Str("review_id", r.ID.String()).Msg("review held for moderation")
		return r, nil
	}
	if _, err := s.users.ApplyRating(ctx, target.ID, domain.KindForReview(r.Type), r.Rating, false); err != nil {
		// keep the average and the counted flag in step
		if _, derr := s.reviews.DeleteReview(ctx, r.ID); derr != nil {
			log.Error().Err(derr).Str("review_id", r.ID.String()).Msg("rollback review after rating failure")
		}
		return nil, services.StoreError(err, services.Messages{NotFound: "Usuário avaliado não encontrado"})
	}
	return r, nil
}

func (s *Service) checkService(ctx context.Context, id, reviewerID, targetID uuid.UUID) error {
	sr, err := s.services.GetServiceRequest(ctx, id)
	if err != nil {
		return services.StoreError(err, services.Messages{NotFound: "Solicitação de serviço não encontrada"})
	}
	if !sr.IsParticipant(reviewerID) || !sr.IsParticipant(targetID) {
		return apperr.Forbidden("Você não participa desta solicitação")
	}
	if sr.Status != models.ServiceCompleted {
		return apperr.BadRequest("Apenas serviços concluídos podem ser avaliados")
	}
	return nil
}

// UserReviews is a page of a user's public reviews with the matching average.
type UserReviews struct {
	services.Page[models.Review]
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// ListForUser lists approved reviews of userID, optionally of one type.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, typ models.ReviewType, p store.Page) (*UserReviews, error) {
	if typ != "" && !typ.Valid() {
		return nil, apperr.BadRequest("Tipo deve ser provider ou client")
	}
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, services.StoreError(err, services.Messages{NotFound: "Usuário não encontrado"})
	}

	f := store.ReviewFilter{
		ReviewedUserID: &userID,
		Type:           typ,
		Statuses:       []models.ReviewStatus{models.ReviewApproved},
		Page:           p.Normalize(),
	}
	items, total, err := s.reviews.ListReviews(ctx, f)
	if err != nil {
		return nil, services.StoreError(err, msgs)
	}

	out := &UserReviews{Page: services.NewPage(items, total, f.Page)}
	if typ == models.ReviewOfClient {
		out.Average, out.Count = u.ClientRating, u.ClientReviewCount
	} else {
		out.Average, out.Count = u.ProviderRating, u.ProviderReviewCount
	}
	return out, nil
}

type ReportInput struct {
	Reason      models.ReportReason `json:"reason"`
	Description string              `json:"description"`
}

// Report records a report; the third report on an approved review flags it.
func (s *Service) Report(ctx context.Context, reporter *models.User, id uuid.UUID, in ReportInput) (*models.Review, error) {
	if !in.Reason.Valid() {
		return nil, apperr.Validation("Erro de validação", apperr.FieldErrors{
			"reason": {"Motivo deve ser spam, offensive, fake, inappropriate ou other"},
		})
	}
	r, err := s.reviews.GetReview(ctx, id)
	if err != nil {
		return nil, services.StoreError(err, msgs)
	}
	if r.ReviewerID == reporter.ID {
		return nil, apperr.BadRequest("Você não pode denunciar sua própria avaliação")
	}

	updated, err := s.reviews.AddReport(ctx, &models.ReviewReport{
		ReviewID:    id,
		ReporterID:  reporter.ID,
		Reason:      in.Reason,
		Description: strings.TrimSpace(in.Description),
	}, domain.ReportFlagThreshold)
	if err != nil {
		return nil, services.StoreError(err, services.Messages{NotFound: msgs.NotFound, Duplicate: "Você já denunciou esta avaliação"})
	}
	if r.Status != updated.Status && updated.Status == models.ReviewFlagged {
		metrics.RecordReviewHeld(string(models.ReviewFlagged))
		log.Info().Str("review_id", id.String()).Int("reports", updated.ReportsCount).Msg("review flagged by reports")
	}
	return updated, nil
}

// Helpful toggles the user's helpful vote.
func (s *Service) Helpful(ctx context.Context, user *models.User, id uuid.UUID) (bool, *models.Review, error) {
	marked, r, err := s.reviews.ToggleHelpful(ctx, id, user.ID)
	if err != nil {
		return false, nil, services.StoreError(err, msgs)
	}
	return marked, r, nil
}

// Delete removes a review, reversing its rating if it was counted. The
// reviewer or an admin may delete.
func (s *Service) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	r, err := s.reviews.GetReview(ctx, id)
	if err != nil {
		return services.StoreError(err, msgs)
	}
	if r.ReviewerID != actor.ID && !actor.IsAdmin() {
		return apperr.Forbidden("Você não pode excluir esta avaliação")
	}

	// a moderation racing the delete may have uncounted the row already
	gone, err := s.reviews.DeleteReview(ctx, id)
	if err != nil {
		return services.StoreError(err, msgs)
	}
	if gone.Counted {
		if _, err := s.users.ApplyRating(ctx, gone.ReviewedUserID, domain.KindForReview(gone.Type), gone.Rating, true); err != nil {
			return services.StoreError(err, services.Messages{NotFound: "Usuário avaliado não encontrado"})
		}
	}
	return nil
}

// revertModeration puts the review back in its previous state after the
// rating update failed, so counted keeps matching the average. Cleared
// reports are not restored.
func (s *Service) revertModeration(ctx context.Context, prev *models.Review, moved models.ReviewStatus) {
	_, err := s.reviews.UpdateReviewState(ctx, prev.ID, store.ReviewUpdate{
		From:    moved,
		To:      prev.Status,
		Counted: prev.Counted,
	})
	if err != nil {
		log.Error().Err(err).Str("review_id", prev.ID.String()).Msg("rollback moderation after rating failure")
	}
}

// Flagged lists the reviews waiting for an admin decision.
func (s *Service) Flagged(ctx context.Context, p store.Page) (services.Page[models.Review], error) {
	f := store.ReviewFilter{
		Statuses: []models.ReviewStatus{models.ReviewFlagged, models.ReviewUnderReview},
		Page:     p.Normalize(),
	}
	items, total, err := s.reviews.ListReviews(ctx, f)
	if err != nil {
		return services.Page[models.Review]{}, services.StoreError(err, msgs)
	}
	return services.NewPage(items, total, f.Page), nil
}

type ModerateInput struct {
	Action domain.ModerationAction `json:"action"`
	Reason string                  `json:"reason"`
}

// Moderate applies an admin decision and adjusts the reviewed user's average.
func (s *Service) Moderate(ctx context.Context, admin *models.User, id uuid.UUID, in ModerateInput) (*models.Review, error) {
	if !in.Action.Valid() {
		return nil, apperr.Validation("Erro de validação", apperr.FieldErrors{
			"action": {"Ação deve ser approve, reject ou keep_flagged"},
		})
	}
	r, err := s.reviews.GetReview(ctx, id)
	if err != nil {
		return nil, services.StoreError(err, msgs)
	}

	out, ok := domain.Moderate(r.Status, r.Counted, in.Action)
	if !ok {
		return nil, apperr.BadRequest("Esta ação não é permitida para o status atual da avaliação")
	}

	counted := r.Counted
	switch out.Effect {
	case domain.RatingAdd:
		counted = true
	case domain.RatingRemove:
		counted = false
	}
	by := admin.ID
	updated, err := s.reviews.UpdateReviewState(ctx, id, store.ReviewUpdate{
		From:         r.Status,
		To:           out.Status,
		Counted:      counted,
		ClearReports: out.ClearReports,
		Reason:       strings.TrimSpace(in.Reason),
		ModeratedBy:  &by,
		At:           s.now(),
	})
	if err != nil {
		return nil, services.StoreError(err, msgs)
	}

	if out.Effect != domain.RatingUnchanged {
		remove := out.Effect == domain.RatingRemove
		if _, err := s.users.ApplyRating(ctx, r.ReviewedUserID, domain.KindForReview(r.Type), r.Rating, remove); err != nil {
			s.revertModeration(ctx, r, out.Status)
			return nil, services.StoreError(err, services.Messages{NotFound: "Usuário avaliado não encontrado"})
		}
	}

	metrics.RecordModeration(string(in.Action))
	log.Info().
		Str("review_id", id.String()).
		Str("action", string(in.Action)).
		Str("status", string(out.Status)).
		Str("admin_id", admin.ID.String()).
		Msg("review moderated")
	return updated, nil
}
