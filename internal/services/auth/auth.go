package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/utils"
)

const msgEmailTaken = "Email já cadastrado"

// Mailer delivers the password reset token to the user.
type Mailer interface {
	SendPasswordReset(ctx context.Context, u *models.User, token string) error
}

// LogMailer writes reset notifications to the log instead of sending email.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, u *models.User, token string) error {
	log.Info().
		Str("user_id", u.ID.String()).
		Str("email", u.Email).
		Msg("password reset requested")
	log.Debug().Str("user_id", u.ID.String()).Str("token", token).Msg("password reset token")
	return nil
}

type Options struct {
	JWTSecret  string
	ExpiresMin int
	ResetTTL   time.Duration
	// EchoResetToken returns the reset token in the API response (non-production only).
	EchoResetToken bool
}

type Service struct {
	users  store.UserStore
	mailer Mailer
	opts   Options
	google GoogleProvider
	now    func() time.Time
}

func NewService(users store.UserStore, mailer Mailer, opts Options) *Service {
	if mailer == nil {
		mailer = LogMailer{}
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = 10 * time.Minute
	}
	return &Service{users: users, mailer: mailer, opts: opts, now: time.Now}
}

// WithGoogle enables social login through p.
func (s *Service) WithGoogle(p GoogleProvider) *Service {
	s.google = p
	return s
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Token signs a credential for u.
func (s *Service) Token(u *models.User) (string, error) {
	tok, err := utils.SignJWT(s.opts.JWTSecret, u.ID.String(), string(u.Role), s.opts.ExpiresMin)
	if err != nil {
		return "", apperr.Internal("Erro ao gerar token", err)
	}
	return tok, nil
}

type RegisterInput struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Phone    string          `json:"phone"`
	Role     string          `json:"role"`
	Location models.Location `json:"location"`

	// provider facet
	Category     string  `json:"category"`
	HourlyPrice  float64 `json:"hourly_price"`
	Description  string  `json:"description"`
	Availability string  `json:"availability"`
	Skills       string  `json:"skills"`

	// company facet
	CNPJ               string `json:"cnpj"`
	CompanyDescription string `json:"company_description"`
}

func (in RegisterInput) validate() (models.Role, apperr.FieldErrors) {
	errs := apperr.FieldErrors{}

	if strings.TrimSpace(in.Name) == "" {
		errs.Add("name", "Nome é obrigatório")
	}
	email := services.NormalizeEmail(in.Email)
	if email == "" {
		errs.Add("email", "Email é obrigatório")
	} else if !services.ValidEmail(email) {
		errs.Add("email", "Email inválido")
	}
	if in.Password == "" {
		errs.Add("password", "Senha é obrigatória")
	} else if len(in.Password) < utils.MinPasswordLength {
		errs.Add("password", "A senha deve ter pelo menos 6 caracteres")
	}

	role := models.Role(strings.ToLower(strings.TrimSpace(in.Role)))
	if role == "" {
		role = models.RoleClient
	}
	switch role {
	case models.RoleClient:
	case models.RoleProvider:
		if strings.TrimSpace(in.Category) == "" {
			errs.Add("category", "Categoria é obrigatória para prestadores")
		}
		if in.HourlyPrice <= 0 {
			errs.Add("hourly_price", "Preço por hora deve ser maior que zero")
		}
	case models.RoleCompany:
		if strings.TrimSpace(in.CNPJ) == "" {
			errs.Add("cnpj", "CNPJ é obrigatório para empresas")
		}
	default:
		errs.Add("role", "Tipo de conta inválido")
	}
	return role, errs
}

// Register creates an account and returns it with a fresh token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	role, errs := in.validate()
	if len(errs) > 0 {
		return nil, "", apperr.Validation("Erro de validação", errs)
	}
	email := services.NormalizeEmail(in.Email)

	// early exit only, the unique index decides
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, "", apperr.BadRequest(msgEmailTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, "", services.StoreError(err, services.Messages{})
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", apperr.Internal("Erro ao processar senha", err)
	}

	u := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Phone:    strings.TrimSpace(in.Phone),
		Password: hash,
		Role:     role,
		IsActive: true,
		Location: in.Location,
	}
	switch role {
	case models.RoleProvider:
		u.Provider = models.ProviderProfile{
			Category:     strings.TrimSpace(in.Category),
			HourlyPrice:  in.HourlyPrice,
			Description:  in.Description,
			Availability: in.Availability,
			Skills:       in.Skills,
		}
	case models.RoleCompany:
		u.Company = models.CompanyProfile{
			CNPJ:        strings.TrimSpace(in.CNPJ),
			Description: in.CompanyDescription,
		}
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, "", services.StoreError(err, services.Messages{Duplicate: msgEmailTaken})
	}

	tok, err := s.Token(u)
	if err != nil {
		return nil, "", err
	}
	log.Info().Str("user_id", u.ID.String()).Str("role", string(u.Role)).Msg("user registered")
	return u, tok, nil
}

// Login checks the credentials. Inactive accounts are refused.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = services.NormalizeEmail(email)
	errs := apperr.FieldErrors{}
	if email == "" {
		errs.Add("email", "Email é obrigatório")
	}
	if password == "" {
		errs.Add("password", "Senha é obrigatória")
	}
	if len(errs) > 0 {
		return nil, "", apperr.Validation("Erro de validação", errs)
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", apperr.Unauthorized("Credenciais inválidas")
	}
	if err != nil {
		return nil, "", services.StoreError(err, services.Messages{})
	}
	if !utils.CheckPassword(u.Password, password) {
		return nil, "", apperr.Unauthorized("Credenciais inválidas")
	}
	if !u.IsActive {
		return nil, "", apperr.Unauthorized("Conta desativada. Reative sua conta para continuar")
	}

	tok, err := s.Token(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, services.StoreError(err, services.Messages{NotFound: "Usuário não encontrado"})
	}
	return u, nil
}

// UpdatePassword replaces the password after checking the current one and
// returns a new token.
func (s *Service) UpdatePassword(ctx context.Context, u *models.User, current, next string) (string, error) {
	errs := apperr.FieldErrors{}
	if current == "" {
		errs.Add("current_password", "Senha atual é obrigatória")
	}
	if len(next) < utils.MinPasswordLength {
		errs.Add("new_password", "A nova senha deve ter pelo menos 6 caracteres")
	}
	if len(errs) > 0 {
		return "", apperr.Validation("Erro de validação", errs)
	}
	if !utils.CheckPassword(u.Password, current) {
		return "", apperr.Unauthorized("Senha atual incorreta")
	}

	hash, err := utils.HashPassword(next)
	if err != nil {
		return "", apperr.Internal("Erro ao processar senha", err)
	}
	u.Password = hash
	if err := s.users.SaveUser(ctx, u); err != nil {
		return "", services.StoreError(err, services.Messages{NotFound: "Usuário não encontrado"})
	}
	return s.Token(u)
}

// ForgotPassword stores a hashed reset token and hands the plain one to the
// mailer. The plain token is returned only when EchoResetToken is set.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = services.NormalizeEmail(email)
	if email == "" {
		return "", apperr.Validation("Erro de validação", apperr.FieldErrors{"email": {"Email é obrigatório"}})
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", services.StoreError(err, services.Messages{NotFound: "Nenhum usuário encontrado com este email"})
	}

	token, hash, err := utils.NewResetToken()
	if err != nil {
		return "", apperr.Internal("Erro ao gerar token de redefinição", err)
	}
	exp := s.now().Add(s.opts.ResetTTL)
	u.ResetPasswordToken = hash
	u.ResetPasswordExpire = &exp
	if err := s.users.SaveUser(ctx, u); err != nil {
		return "", services.StoreError(err, services.Messages{})
	}

	if err := s.mailer.SendPasswordReset(ctx, u, token); err != nil {
		u.ResetPasswordToken = ""
		u.ResetPasswordExpire = nil
		if serr := s.users.SaveUser(ctx, u); serr != nil {
			log.Warn().Err(serr).Str("user_id", u.ID.String()).Msg("clear reset token after mail failure")
		}
		return "", apperr.Internal("Não foi possível enviar o email de redefinição", err)
	}

	if s.opts.EchoResetToken {
		return token, nil
	}
	return "", nil
}

// ResetPassword consumes a reset token and returns the user with a new credential.
func (s *Service) ResetPassword(ctx context.Context, token, password string) (*models.User, string, error) {
	if len(password) < utils.MinPasswordLength {
		return nil, "", apperr.Validation("Erro de validação", apperr.FieldErrors{
			"password": {"A senha deve ter pelo menos 6 caracteres"},
		})
	}

	u, err := s.users.GetUserByResetToken(ctx, utils.HashToken(token), s.now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", apperr.BadRequest("Token inválido ou expirado")
	}
	if err != nil {
		return nil, "", services.StoreError(err, services.Messages{})
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", apperr.Internal("Erro ao processar senha", err)
	}
	u.Password = hash
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
	if err := s.users.SaveUser(ctx, u); err != nil {
		return nil, "", services.StoreError(err, services.Messages{})
	}

	tok, err := s.Token(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}
