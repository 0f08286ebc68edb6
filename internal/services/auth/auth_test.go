package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/auth"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store/memstore"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/utils"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, u *models.User, token string) error {
	args := m.Called(ctx, u, token)
	return args.Error(0)
}

type fakeGoogle struct {
	user *auth.GoogleUser
	err  error
}

func (f fakeGoogle) AuthURL(state string) string { return "https://accounts.example/auth?state=" + state }

func (f fakeGoogle) Exchange(ctx context.Context, code string) (*auth.GoogleUser, error) {
	return f.user, f.err
}

func newService(t *testing.T, mailer auth.Mailer, echo bool) (*auth.Service, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	svc := auth.NewService(st, mailer, auth.Options{
		JWTSecret:      "test-secret",
		ExpiresMin:     60,
		ResetTTL:       10 * time.Minute,
		EchoResetToken: echo,
	})
	return svc, st
}

func register(t *testing.T, svc *auth.Service, in auth.RegisterInput) *models.User {
	t.Helper()
	u, tok, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	return u
}

func TestRegister(t *testing.T) {
	t.Run("client gets a token", func(t *testing.T) {
		svc, _ := newService(t, nil, false)
		u, tok, err := svc.Register(context.Background(), auth.RegisterInput{
			Name: "Ana", Email: "  Ana@Example.com ", Password: "segredo1",
		})
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", u.Email)
		assert.Equal(t, models.RoleClient, u.Role)
		assert.True(t, u.IsActive)
		assert.NotEqual(t, "segredo1", u.Password)

		claims, err := utils.ParseJWT("test-secret", tok)
		require.NoError(t, err)
		assert.Equal(t, u.ID.String(), claims.UserID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, _ := newService(t, nil, false)
		register(t, svc, auth.RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "segredo1"})

		_, _, err := svc.Register(context.Background(), auth.RegisterInput{
			Name: "Outra", Email: "ANA@example.com", Password: "segredo2",
		})
		require.Error(t, err)
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindValidation, e.Kind)
		assert.Equal(t, "Email já cadastrado", e.Message)
	})

	t.Run("provider needs category and price", func(t *testing.T) {
		svc, _ := newService(t, nil, false)
		_, _, err := svc.Register(context.Background(), auth.RegisterInput{
			Name: "Bruno", Email: "bruno@example.com", Password: "segredo1", Role: "provider",
		})
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Contains(t, e.Fields, "category")
		assert.Contains(t, e.Fields, "hourly_price")
	})

	t.Run("provider facet is stored", func(t *testing.T) {
		svc, _ := newService(t, nil, false)
		u := register(t, svc, auth.RegisterInput{
			Name: "Bruno", Email: "bruno@example.com", Password: "segredo1", Role: "Provider",
			Category: "Elétrica", HourlyPrice: 80,
		})
		assert.Equal(t, models.RoleProvider, u.Role)
		assert.Equal(t, "Elétrica", u.Provider.Category)
	})

	t.Run("company needs cnpj", func(t *testing.T) {
		svc, _ := newService(t, nil, false)
		_, _, err := svc.Register(context.Background(), auth.RegisterInput{
			Name: "ACME", Email: "rh@acme.com", Password: "segredo1", Role: "company",
		})
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Contains(t, e.Fields, "cnpj")
	})

	t.Run("admin cannot self register", func(t *testing.T) {
		svc, _ := newService(t, nil, false)
		_, _, err := svc.Register(context.Background(), auth.RegisterInput{
			Name: "Root", Email: "root@example.com", Password: "segredo1", Role: "admin",
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestLogin(t *testing.T) {
	svc, st := newService(t, nil, false)
	u := register(t, svc, auth.RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "segredo1"})

	got, tok, err := svc.Login(context.Background(), "ANA@example.com", "segredo1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, tok)

	_, _, err = svc.Login(context.Background(), "ana@example.com", "errada")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, _, err = svc.Login(context.Background(), "ninguem@example.com", "segredo1")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	u.IsActive = false
	require.NoError(t, st.SaveUser(context.Background(), u))
	_, _, err = svc.Login(context.Background(), "ana@example.com", "segredo1")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestUpdatePassword(t *testing.T) {
	svc, _ := newService(t, nil, false)
	u := register(t, svc, auth.RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "segredo1"})

	_, err := svc.UpdatePassword(context.Background(), u, "errada", "novasenha")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	tok, err := svc.UpdatePassword(context.Background(), u, "segredo1", "novasenha")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	_, _, err = svc.Login(context.Background(), "ana@example.com", "novasenha")
	assert.NoError(t, err)
}

func TestForgotAndResetPassword(t *testing.T) {
	mailer := new(MockMailer)
	svc, _ := newService(t, mailer, true)
	register(t, svc, auth.RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "segredo1"})

	var sent string
	mailer.On("SendPasswordReset", mock.Anything, mock.AnythingOfType("*models.User"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { sent = args.String(2) }).
		Return(nil).Once()

	tok, err := svc.ForgotPassword(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, sent, tok)
	mailer.AssertExpectations(t)

	_, _, err = svc.ResetPassword(context.Background(), "not-the-token", "novasenha")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	u, newTok, err := svc.ResetPassword(context.Background(), tok, "novasenha")
	require.NoError(t, err)
	assert.NotEmpty(t, newTok)
	assert.Empty(t, u.ResetPasswordToken)

	// single use
	_, _, err = svc.ResetPassword(context.Background(), tok, "outrasenha")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestResetPassword_Expired(t *testing.T) {
	mailer := new(MockMailer)
	mailer.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc, _ := newService(t, mailer, true)
	register(t, svc, auth.RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "segredo1"})

	now := time.Now()
	svc.SetClock(func() time.Time { return now })
	tok, err := svc.ForgotPassword(context.Background(), "ana@example.com")
	require.NoError(t, err)

	svc.SetClock(func() time.Time { return now.Add(11 * time.Minute) })
	_, _, err = svc.ResetPassword(context.Background(), tok, "novasenha")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestForgotPassword_HidesTokenInProduction(t *testing.T) {
	mailer := new(MockMailer)
	mailer.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc, _ := newService(t, mailer, false)
	register(t, svc, auth.RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "segredo1"})

	tok, err := svc.ForgotPassword(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestForgotPassword_MailFailureClearsToken(t *testing.T) {
	mailer := new(MockMailer)
	mailer.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	svc, st := newService(t, mailer, true)
	u := register(t, svc, auth.RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "segredo1"})

	_, err := svc.ForgotPassword(context.Background(), "ana@example.com")
	assert.True(t, apperr.Is(err, apperr.KindInternal))

	got, err := st.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ResetPasswordToken)
	assert.Nil(t, got.ResetPasswordExpire)
}

func TestGoogleLogin(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		svc, _ := newService(t, nil, false)
		_, _, err := svc.GoogleLogin(context.Background(), "code")
		assert.True(t, apperr.Is(err, apperr.KindUnavailable))
	})

	t.Run("creates a client on first login", func(t *testing.T) {
		svc, _ := newService(t, nil, false)
		svc.WithGoogle(fakeGoogle{user: &auth.GoogleUser{ID: "g-1", Email: "Carla@Gmail.com", Name: "Carla"}})

		u, tok, err := svc.GoogleLogin(context.Background(), "code")
		require.NoError(t, err)
		assert.NotEmpty(t, tok)
		assert.Equal(t, "carla@gmail.com", u.Email)
		assert.Equal(t, models.RoleClient, u.Role)

		again, _, err := svc.GoogleLogin(context.Background(), "code")
		require.NoError(t, err)
		assert.Equal(t, u.ID, again.ID)
	})

	t.Run("links an existing account by email", func(t *testing.T) {
		svc, st := newService(t, nil, false)
		u := register(t, svc, auth.RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "segredo1"})
		svc.WithGoogle(fakeGoogle{user: &auth.GoogleUser{ID: "g-2", Email: "ana@example.com"}})

		got, _, err := svc.GoogleLogin(context.Background(), "code")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		linked, err := st.GetUserByGoogleID(context.Background(), "g-2")
		require.NoError(t, err)
		assert.Equal(t, u.ID, linked.ID)
	})

	t.Run("exchange failure", func(t *testing.T) {
		svc, _ := newService(t, nil, false)
		svc.WithGoogle(fakeGoogle{err: errors.New("bad code")})
		_, _, err := svc.GoogleLogin(context.Background(), "code")
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})
}
