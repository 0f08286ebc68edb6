package users

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

var notFound = services.Messages{NotFound: "Usuário não encontrado", Duplicate: "Email já cadastrado"}

// Tokens signs credentials for users whose role changed.
type Tokens interface {
	Token(u *models.User) (string, error)
}

type Service struct {
	users   store.UserStore
	reviews store.ReviewStore
	tokens  Tokens
}

func NewService(users store.UserStore, reviews store.ReviewStore, tokens Tokens) *Service {
	return &Service{users: users, reviews: reviews, tokens: tokens}
}

type ProfileInput struct {
	Name     *string          `json:"name"`
	Phone    *string          `json:"phone"`
	Bio      *string          `json:"bio"`
	Avatar   *string          `json:"avatar"`
	Location *models.Location `json:"location"`

	CNPJ               *string `json:"cnpj"`
	CompanyDescription *string `json:"company_description"`
}

// UpdateProfile applies the non-nil fields of in.
func (s *Service) UpdateProfile(ctx context.Context, u *models.User, in ProfileInput) (*models.User, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("Erro de validação", apperr.FieldErrors{"name": {"Nome é obrigatório"}})
		}
		u.Name = name
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Avatar != nil {
		u.Avatar = *in.Avatar
	}
	if in.Location != nil {
		u.Location = *in.Location
	}
	if u.Role == models.RoleCompany {
		if in.CNPJ != nil {
			if strings.TrimSpace(*in.CNPJ) == "" {
				return nil, apperr.Validation("Erro de validação", apperr.FieldErrors{"cnpj": {"CNPJ é obrigatório para empresas"}})
			}
			u.Company.CNPJ = strings.TrimSpace(*in.CNPJ)
		}
		if in.CompanyDescription != nil {
			u.Company.Description = *in.CompanyDescription
		}
	}

	if err := s.users.SaveUser(ctx, u); err != nil {
		return nil, services.StoreError(err, notFound)
	}
	return u, nil
}

type ProviderInput struct {
	Category     string  `json:"category"`
	HourlyPrice  float64 `json:"hourly_price"`
	Description  string  `json:"description"`
	Availability string  `json:"availability"`
	Skills       string  `json:"skills"`
}

func (in ProviderInput) profile() (models.ProviderProfile, error) {
	errs := apperr.FieldErrors{}
	if strings.TrimSpace(in.Category) == "" {
		errs.Add("category", "Categoria é obrigatória")
	}
	if in.HourlyPrice <= 0 {
		errs.Add("hourly_price", "Preço por hora deve ser maior que zero")
	}
	if len(errs) > 0 {
		return models.ProviderProfile{}, apperr.Validation("Erro de validação", errs)
	}
	return models.ProviderProfile{
		Category:     strings.TrimSpace(in.Category),
		HourlyPrice:  in.HourlyPrice,
		Description:  in.Description,
		Availability: in.Availability,
		Skills:       in.Skills,
	}, nil
}

// UpgradeToProvider turns a client into a provider. The returned token
// carries the new role.
func (s *Service) UpgradeToProvider(ctx context.Context, u *models.User, in ProviderInput) (*models.User, string, error) {
	switch u.Role {
	case models.RoleClient:
	case models.RoleProvider:
		return nil, "", apperr.BadRequest("Você já é um prestador de serviços")
	case models.RoleCompany:
		return nil, "", apperr.BadRequest("Empresas não podem se tornar prestadores")
	default:
		return nil, "", apperr.Forbidden("Apenas clientes podem se tornar prestadores")
	}

	p, err := in.profile()
	if err != nil {
		return nil, "", err
	}
	u.Role = models.RoleProvider
	u.Provider = p
	if err := s.users.SaveUser(ctx, u); err != nil {
		return nil, "", services.StoreError(err, notFound)
	}

	tok, err := s.tokens.Token(u)
	if err != nil {
		return nil, "", err
	}
	log.Info().Str("user_id", u.ID.String()).Msg("user upgraded to provider")
	return u, tok, nil
}

func (s *Service) UpdateProviderInfo(ctx context.Context, u *models.User, in ProviderInput) (*models.User, error) {
	if u.Role != models.RoleProvider {
		return nil, apperr.Forbidden("Apenas prestadores podem atualizar informações de prestador")
	}
	p, err := in.profile()
	if err != nil {
		return nil, err
	}
	u.Provider = p
	if err := s.users.SaveUser(ctx, u); err != nil {
		return nil, services.StoreError(err, notFound)
	}
	return u, nil
}

type ProviderQuery struct {
	Category  string
	City      string
	Search    string
	MinRating float64
	SortBy    string
	store.Page
}

// ListProviders lists active providers.
func (s *Service) ListProviders(ctx context.Context, q ProviderQuery) (services.Page[models.User], error) {
	active := true
	f := store.UserFilter{
		Role:         models.RoleProvider,
		Active:       &active,
		Category:     strings.TrimSpace(q.Category),
		City:         strings.TrimSpace(q.City),
		Search:       strings.TrimSpace(q.Search),
		MinRating:    q.MinRating,
		SortByRating: q.SortBy == "" || q.SortBy == "rating",
		Page:         q.Page.Normalize(),
	}
	items, total, err := s.users.ListUsers(ctx, f)
	if err != nil {
		return services.Page[models.User]{}, services.StoreError(err, notFound)
	}
	return services.NewPage(items, total, f.Page), nil
}

// Profile is the public view of a user.
type Profile struct {
	User          *models.User    `json:"user"`
	RecentReviews []models.Review `json:"recent_reviews"`
}

const recentReviews = 5

func (s *Service) PublicProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, services.StoreError(err, notFound)
	}
	if !u.IsActive {
		return nil, apperr.NotFound("Usuário não encontrado")
	}

	reviews, _, err := s.reviews.ListReviews(ctx, store.ReviewFilter{
		ReviewedUserID: &u.ID,
		Statuses:       []models.ReviewStatus{models.ReviewApproved},
		Page:           store.Page{Page: 1, Limit: recentReviews},
	})
	if err != nil {
		return nil, services.StoreError(err, notFound)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return &Profile{User: u, RecentReviews: reviews}, nil
}

func (s *Service) Deactivate(ctx context.Context, u *models.User) error {
	u.IsActive = false
	if err := s.users.SaveUser(ctx, u); err != nil {
		return services.StoreError(err, notFound)
	}
	log.Info().Str("user_id", u.ID.String()).Msg("account deactivated")
	return nil
}

// Reactivate is public: a deactivated user cannot hold a token, so the
// credentials are checked again.
func (s *Service) Reactivate(ctx context.Context, email, password string) (*models.User, string, error) {
	email = services.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", apperr.Validation("Erro de validação", apperr.FieldErrors{
			"credentials": {"Email e senha são obrigatórios"},
		})
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !utils.CheckPassword(u.Password, password)) {
		return nil, "", apperr.Unauthorized("Credenciais inválidas")
	}
	if err != nil {
		return nil, "", services.StoreError(err, notFound)
	}
	if u.IsActive {
		return nil, "", apperr.BadRequest("A conta já está ativa")
	}

	u.IsActive = true
	if err := s.users.SaveUser(ctx, u); err != nil {
		return nil, "", services.StoreError(err, notFound)
	}
	tok, err := s.tokens.Token(u)
	if err != nil {
		return nil, "", err
	}
	log.Info().Str("user_id", u.ID.String()).Msg("account reactivated")
	return u, tok, nil
}

// DeleteAccount removes the user after confirming the password.
func (s *Service) DeleteAccount(ctx context.Context, u *models.User, password string) error {
	if password == "" {
		return apperr.Validation("Erro de validação", apperr.FieldErrors{"password": {"Senha é obrigatória"}})
	}
	if !utils.CheckPassword(u.Password, password) {
		return apperr.Unauthorized("Senha incorreta")
	}
	if err := s.users.DeleteUser(ctx, u.ID); err != nil {
		return services.StoreError(err, notFound)
	}
	log.Info().Str("user_id", u.ID.String()).Msg("account deleted")
	return nil
}
