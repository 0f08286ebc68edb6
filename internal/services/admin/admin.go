// Package admin implements the back office: admin accounts, user management,
// platform statistics and the settings singleton.
package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/utils"
)

var userMsgs = services.Messages{NotFound: "Usuário não encontrado", Duplicate: "Email já cadastrado"}

// Invalidator drops a cached view of the settings.
type Invalidator interface {
	Invalidate()
}

type Service struct {
	st    store.Store
	cache Invalidator
}

func NewService(st store.Store, cache Invalidator) *Service {
	return &Service{st: st, cache: cache}
}

type CreateAdminInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) CreateAdmin(ctx context.Context, by *models.User, in CreateAdminInput) (*models.User, error) {
	errs := apperr.FieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		errs.Add("name", "Nome é obrigatório")
	}
	email := services.NormalizeEmail(in.Email)
	if !services.ValidEmail(email) {
		errs.Add("email", "Email inválido")
	}
	if len(in.Password) < utils.MinPasswordLength {
		errs.Add("password", "A senha deve ter pelo menos 6 caracteres")
	}
	if len(errs) > 0 {
		return nil, apperr.Validation("Erro de validação", errs)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("Erro ao processar senha", err)
	}
	u := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := s.st.CreateUser(ctx, u); err != nil {
		return nil, services.StoreError(err, userMsgs)
	}
	log.Info().Str("user_id", u.ID.String()).Str("created_by", by.ID.String()).Msg("admin created")
	return u, nil
}

type UserQuery struct {
	Role   string
	Active *bool
	Search string
	store.Page
}

func (s *Service) ListUsers(ctx context.Context, q UserQuery) (services.Page[models.User], error) {
	role := models.Role(strings.ToLower(strings.TrimSpace(q.Role)))
	if role != "" && !role.Valid() {
		return services.Page[models.User]{}, apperr.BadRequest("Tipo de conta inválido")
	}
	f := store.UserFilter{
		Role:   role,
		Active: q.Active,
		Search: strings.TrimSpace(q.Search),
		Page:   q.Page.Normalize(),
	}
	items, total, err := s.st.ListUsers(ctx, f)
	if err != nil {
		return services.Page[models.User]{}, services.StoreError(err, userMsgs)
	}
	return services.NewPage(items, total, f.Page), nil
}

type Stats struct {
	TotalUsers        int64                          `json:"total_users"`
	UsersByRole       map[models.Role]int64          `json:"users_by_role"`
	ServicesByStatus  map[models.ServiceStatus]int64 `json:"services_by_status"`
	TotalServices     int64                          `json:"total_services"`
	TotalJobs         int64                          `json:"total_jobs"`
	TotalApplications int64                          `json:"total_applications"`
	ReviewsByStatus   map[models.ReviewStatus]int64  `json:"reviews_by_status"`
	PendingReviews    int64                          `json:"pending_reviews"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	out := &Stats{}
	var err error

	if out.UsersByRole, err = s.st.CountUsersByRole(ctx); err != nil {
		return nil, services.StoreError(err, services.Messages{})
	}
	for _, n := range out.UsersByRole {
		out.TotalUsers += n
	}
	if out.ServicesByStatus, err = s.st.CountServicesByStatus(ctx); err != nil {
		return nil, services.StoreError(err, services.Messages{})
	}
	for _, n := range out.ServicesByStatus {
		out.TotalServices += n
	}
	if out.TotalJobs, err = s.st.CountJobs(ctx); err != nil {
		return nil, services.StoreError(err, services.Messages{})
	}
	if out.TotalApplications, err = s.st.CountApplications(ctx); err != nil {
		return nil, services.StoreError(err, services.Messages{})
	}
	if out.ReviewsByStatus, err = s.st.CountReviewsByStatus(ctx); err != nil {
		return nil, services.StoreError(err, services.Messages{})
	}
	out.PendingReviews = out.ReviewsByStatus[models.ReviewFlagged] + out.ReviewsByStatus[models.ReviewUnderReview]
	return out, nil
}

func (s *Service) DeleteUser(ctx context.Context, by *models.User, id uuid.UUID) error {
	if by.ID == id {
		return apperr.BadRequest("Você não pode excluir sua própria conta")
	}
	if err := s.st.DeleteUser(ctx, id); err != nil {
		return services.StoreError(err, userMsgs)
	}
	log.Info().Str("user_id", id.String()).Str("deleted_by", by.ID.String()).Msg("user deleted by admin")
	return nil
}

type UpdateUserInput struct {
	Name     *string      `json:"name"`
	Role     *models.Role `json:"role"`
	IsActive *bool        `json:"is_active"`
}

// UpdateUser edits name, role and active flag. Moving a provider to another
// role drops the provider facet, except to company which is refused while
// the facet is present.
func (s *Service) UpdateUser(ctx context.Context, by *models.User, id uuid.UUID, in UpdateUserInput) (*models.User, error) {
	u, err := s.st.GetUser(ctx, id)
	if err != nil {
		return nil, services.StoreError(err, userMsgs)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("Erro de validação", apperr.FieldErrors{"name": {"Nome é obrigatório"}})
		}
		u.Name = name
	}
	if in.Role != nil {
		role := models.Role(strings.ToLower(string(*in.Role)))
		if !role.Valid() {
			return nil, apperr.Validation("Erro de validação", apperr.FieldErrors{"role": {"Tipo de conta inválido"}})
		}
		if by.ID == id && role != models.RoleAdmin {
			return nil, apperr.BadRequest("Você não pode alterar o seu próprio tipo de conta")
		}
		if u.Role == models.RoleProvider && role != models.RoleProvider && role != models.RoleCompany {
			u.Provider = models.ProviderProfile{}
		}
		u.Role = role
	}
	if in.IsActive != nil {
		if by.ID == id && !*in.IsActive {
			return nil, apperr.BadRequest("Você não pode desativar sua própria conta")
		}
		u.IsActive = *in.IsActive
	}

	if err := s.st.SaveUser(ctx, u); err != nil {
		return nil, services.StoreError(err, userMsgs)
	}
	log.Info().Str("user_id", u.ID.String()).Str("updated_by", by.ID.String()).Msg("user updated by admin")
	return u, nil
}

func (s *Service) Settings(ctx context.Context) (*models.Settings, error) {
	st, err := s.st.GetSettings(ctx)
	if err != nil {
		return nil, services.StoreError(err, services.Messages{})
	}
	return st, nil
}

type SettingsInput struct {
	MaintenanceMode    *bool    `json:"maintenance_mode"`
	MaintenanceMessage *string  `json:"maintenance_message"`
	MaxUploadMB        *int     `json:"max_upload_mb"`
	AllowedUploadTypes []string `json:"allowed_upload_types"`
	ServiceCategories  []string `json:"service_categories"`
}

// UpdateSettings applies the non-nil fields and drops the cached maintenance flag.
func (s *Service) UpdateSettings(ctx context.Context, by *models.User, in SettingsInput) (*models.Settings, error) {
	if in.MaxUploadMB != nil && (*in.MaxUploadMB < 1 || *in.MaxUploadMB > 100) {
		return nil, apperr.Validation("Erro de validação", apperr.FieldErrors{"max_upload_mb": {"O limite deve ser entre 1 e 100 MB"}})
	}

	st, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if in.MaintenanceMode != nil {
		st.MaintenanceMode = *in.MaintenanceMode
	}
	if in.MaintenanceMessage != nil {
		st.MaintenanceMessage = strings.TrimSpace(*in.MaintenanceMessage)
	}
	if in.MaxUploadMB != nil {
		st.MaxUploadMB = *in.MaxUploadMB
	}
	if in.AllowedUploadTypes != nil {
		st.AllowedUploadTypes = cleanList(in.AllowedUploadTypes, strings.ToLower)
	}
	if in.ServiceCategories != nil {
		st.ServiceCategories = cleanList(in.ServiceCategories, nil)
	}
	st.UpdatedBy = by.ID.String()

	if err := s.st.SaveSettings(ctx, st); err != nil {
		if errors.Is(err, models.ErrSettingsExists) {
			return nil, apperr.Conflict("As configurações já existem")
		}
		return nil, services.StoreError(err, services.Messages{})
	}
	if s.cache != nil {
		s.cache.Invalidate()
	}
	log.Info().Bool("maintenance", st.MaintenanceMode).Str("updated_by", by.ID.String()).Msg("settings updated")
	return st, nil
}

// PublicSettings is the unauthenticated view of the settings.
type PublicSettings struct {
	MaintenanceMode    bool     `json:"maintenance_mode"`
	MaintenanceMessage string   `json:"maintenance_message,omitempty"`
	ServiceCategories  []string `json:"service_categories"`
	MaxUploadMB        int      `json:"max_upload_mb"`
	AllowedUploadTypes []string `json:"allowed_upload_types"`
}

func (s *Service) PublicSettings(ctx context.Context) (*PublicSettings, error) {
	st, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	out := &PublicSettings{
		MaintenanceMode:    st.MaintenanceMode,
		ServiceCategories:  st.ServiceCategories,
		MaxUploadMB:        st.MaxUploadMB,
		AllowedUploadTypes: st.AllowedUploadTypes,
	}
	if st.MaintenanceMode {
		out.MaintenanceMessage = st.MaintenanceMessage
	}
	return out, nil
}

// cleanList trims, optionally maps, drops empties and dedupes.
func cleanList(in []string, fn func(string) string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if fn != nil {
			v = fn(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
