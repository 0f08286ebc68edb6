package users_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/domain"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/users"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store/memstore"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/utils"
)

type staticTokens struct{}

func (staticTokens) Token(u *models.User) (string, error) {
	return "token-" + string(u.Role), nil
}

func setup(t *testing.T) (*users.Service, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	return users.NewService(st, st, staticTokens{}), st
}

func addUser(t *testing.T, st *memstore.Store, email string, role models.Role, mutate ...func(*models.User)) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("segredo1")
	require.NoError(t, err)
	u := &models.User{Name: "Teste", Email: email, Password: hash, Role: role, IsActive: true}
	for _, m := range mutate {
		m(u)
	}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func TestUpdateProfile(t *testing.T) {
	svc, st := setup(t)
	u := addUser(t, st, "ana@example.com", models.RoleClient)

	name, city := "Ana Souza", "Recife"
	got, err := svc.UpdateProfile(context.Background(), u, users.ProfileInput{
		Name:     &name,
		Location: &models.Location{City: city},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", got.Name)
	assert.Equal(t, "Recife", got.Location.City)

	empty := " "
	_, err = svc.UpdateProfile(context.Background(), u, users.ProfileInput{Name: &empty})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpgradeToProvider(t *testing.T) {
	in := users.ProviderInput{Category: "Limpeza", HourlyPrice: 50}

	t.Run("client becomes provider", func(t *testing.T) {
		svc, st := setup(t)
		u := addUser(t, st, "ana@example.com", models.RoleClient)

		got, tok, err := svc.UpgradeToProvider(context.Background(), u, in)
		require.NoError(t, err)
		assert.Equal(t, models.RoleProvider, got.Role)
		assert.Equal(t, "Limpeza", got.Provider.Category)
		assert.Equal(t, "token-provider", tok)
	})

	t.Run("company refused", func(t *testing.T) {
		svc, st := setup(t)
		u := addUser(t, st, "rh@acme.com", models.RoleCompany)

		_, _, err := svc.UpgradeToProvider(context.Background(), u, in)
		assert.True(t, apperr.Is(err, apperr.KindValidation))

		got, err := st.GetUser(context.Background(), u.ID)
		require.NoError(t, err)
		assert.True(t, got.Provider.IsZero())
	})

	t.Run("missing fields", func(t *testing.T) {
		svc, st := setup(t)
		u := addUser(t, st, "ana@example.com", models.RoleClient)

		_, _, err := svc.UpgradeToProvider(context.Background(), u, users.ProviderInput{})
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Contains(t, e.Fields, "category")
		assert.Contains(t, e.Fields, "hourly_price")
	})
}

func TestUpdateProviderInfo_ProvidersOnly(t *testing.T) {
	svc, st := setup(t)
	client := addUser(t, st, "ana@example.com", models.RoleClient)
	_, err := svc.UpdateProviderInfo(context.Background(), client, users.ProviderInput{Category: "Pintura", HourlyPrice: 40})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	provider := addUser(t, st, "bruno@example.com", models.RoleProvider, func(u *models.User) {
		u.Provider = models.ProviderProfile{Category: "Elétrica", HourlyPrice: 80}
	})
	got, err := svc.UpdateProviderInfo(context.Background(), provider, users.ProviderInput{Category: "Pintura", HourlyPrice: 40})
	require.NoError(t, err)
	assert.Equal(t, "Pintura", got.Provider.Category)
}

func TestListProviders(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)
	provider := func(cat, city string) func(*models.User) {
		return func(u *models.User) {
			u.Provider = models.ProviderProfile{Category: cat, HourlyPrice: 10}
			u.Location.City = city
		}
	}
	low := addUser(t, st, "p1@example.com", models.RoleProvider, provider("Limpeza", "Recife"))
	high := addUser(t, st, "p2@example.com", models.RoleProvider, provider("Limpeza", "Recife"))
	addUser(t, st, "p3@example.com", models.RoleProvider, provider("Pintura", "Recife"))
	addUser(t, st, "p4@example.com", models.RoleProvider, provider("Limpeza", "Recife"), func(u *models.User) { u.IsActive = false })
	addUser(t, st, "c1@example.com", models.RoleClient)

	_, err := st.ApplyRating(ctx, low.ID, domain.ProviderRatingKind, 2, false)
	require.NoError(t, err)
	_, err = st.ApplyRating(ctx, high.ID, domain.ProviderRatingKind, 5, false)
	require.NoError(t, err)

	page, err := svc.ListProviders(ctx, users.ProviderQuery{Category: "limpeza"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, high.ID, page.Items[0].ID)

	page, err = svc.ListProviders(ctx, users.ProviderQuery{MinRating: 3})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, high.ID, page.Items[0].ID)

	page, err = svc.ListProviders(ctx, users.ProviderQuery{Page: store.Page{Page: 2, Limit: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Pages())
}

func TestPublicProfile(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)
	u := addUser(t, st, "bruno@example.com", models.RoleProvider, func(u *models.User) {
		u.Provider = models.ProviderProfile{Category: "Elétrica", HourlyPrice: 80}
	})
	require.NoError(t, st.CreateReview(ctx, &models.Review{
		ReviewerID: uuid.New(), ReviewedUserID: u.ID, Type: models.ReviewOfProvider, Rating: 5, Status: models.ReviewApproved,
	}))
	require.NoError(t, st.CreateReview(ctx, &models.Review{
		ReviewerID: uuid.New(), ReviewedUserID: u.ID, Type: models.ReviewOfProvider, Rating: 1, Status: models.ReviewUnderReview,
	}))

	p, err := svc.PublicProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.User.ID)
	assert.Len(t, p.RecentReviews, 1)

	_, err = svc.PublicProfile(ctx, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeactivateAndReactivate(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)
	u := addUser(t, st, "ana@example.com", models.RoleClient)

	require.NoError(t, svc.Deactivate(ctx, u))
	_, err := svc.PublicProfile(ctx, u.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, _, err = svc.Reactivate(ctx, "ana@example.com", "errada")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	got, tok, err := svc.Reactivate(ctx, "ANA@example.com", "segredo1")
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.NotEmpty(t, tok)

	_, _, err = svc.Reactivate(ctx, "ana@example.com", "segredo1")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)
	u := addUser(t, st, "ana@example.com", models.RoleClient)

	assert.True(t, apperr.Is(svc.DeleteAccount(ctx, u, "errada"), apperr.KindUnauthorized))
	require.NoError(t, svc.DeleteAccount(ctx, u, "segredo1"))

	_, err := st.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
