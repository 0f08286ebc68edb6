package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/jobs"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store/memstore"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	svc      *jobs.Service
	st       *memstore.Store
	company  *models.User
	rival    *models.User
	client   *models.User
	provider *models.User
	admin    *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	f := &fixture{svc: jobs.NewService(st, st, nil), st: st}
	mk := func(email string, role models.Role) *models.User {
		u := &models.User{Name: email, Email: email, Password: "x", Role: role, IsActive: true}
		switch role {
		case models.RoleProvider:
			u.Provider = models.ProviderProfile{Category: "Limpeza", HourlyPrice: 30}
		case models.RoleCompany:
			u.Company = models.CompanyProfile{CNPJ: "12.345.678/0001-90"}
		}
		require.NoError(t, st.CreateUser(context.Background(), u))
		return u
	}
	f.company = mk("rh@acme.com", models.RoleCompany)
	f.rival = mk("rh@outra.com", models.RoleCompany)
	f.client = mk("cliente@example.com", models.RoleClient)
	f.provider = mk("prestador@example.com", models.RoleProvider)
	f.admin = mk("admin@example.com", models.RoleAdmin)
	return f
}

func (f *fixture) post(t *testing.T) *models.JobVacancy {
	t.Helper()
	j, err := f.svc.Create(context.Background(), f.company, jobs.JobInput{
		Title:        ptr("Auxiliar de limpeza"),
		Description:  ptr("Limpeza de escritório"),
		Category:     ptr("Limpeza"),
		Type:         ptr(models.JobTemporary),
		Salary:       &models.Salary{Min: 1500, Max: 2000, Period: "month"},
		Requirements: []string{"Experiência"},
		Location:     ptr("Recife"),
	})
	require.NoError(t, err)
	return j
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	j := f.post(t)
	assert.Equal(t, models.JobOpen, j.Status)
	assert.Equal(t, 1, j.Vacancies)
	assert.Equal(t, []string{"Experiência"}, []string(j.Requirements))

	_, err := f.svc.Create(context.Background(), f.client, jobs.JobInput{Title: ptr("x")})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Create(context.Background(), f.company, jobs.JobInput{Title: ptr("x"), Type: ptr(models.JobType("gig"))})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, e.Fields, "type")
	assert.Contains(t, e.Fields, "description")
}

func TestUpdateAndDelete_Ownership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	j := f.post(t)

	_, err := f.svc.Update(ctx, f.rival, j.ID, jobs.JobInput{Title: ptr("Outro")})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	got, err := f.svc.Update(ctx, f.company, j.ID, jobs.JobInput{Status: ptr(models.JobClosed)})
	require.NoError(t, err)
	assert.Equal(t, models.JobClosed, got.Status)
	assert.Equal(t, "Auxiliar de limpeza", got.Title)

	assert.True(t, apperr.Is(f.svc.Delete(ctx, f.rival, j.ID), apperr.KindForbidden))
	require.NoError(t, f.svc.Delete(ctx, f.admin, j.ID))
	_, err = f.svc.Get(ctx, j.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestList_DefaultsToOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	open := f.post(t)
	closed := f.post(t)
	_, err := f.svc.Update(ctx, f.company, closed.ID, jobs.JobInput{Status: ptr(models.JobClosed)})
	require.NoError(t, err)

	page, err := f.svc.List(ctx, jobs.JobQuery{Search: "limpeza"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, open.ID, page.Items[0].ID)

	page, err = f.svc.List(ctx, jobs.JobQuery{Status: models.JobClosed})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	_, err = f.svc.List(ctx, jobs.JobQuery{Type: "gig"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestApply_DuplicateCountsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	j := f.post(t)

	a, err := f.svc.Apply(ctx, f.client, j.ID, "Tenho experiência")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, a.Status)

	_, err = f.svc.Apply(ctx, f.client, j.ID, "de novo")
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, e.Kind)
	assert.Equal(t, "Você já se candidatou para esta vaga", e.Message)

	got, err := f.svc.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ApplicationsCount)

	_, err = f.svc.Apply(ctx, f.provider, j.ID, "")
	require.NoError(t, err)
	got, err = f.svc.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ApplicationsCount)
}

func TestApply_Guards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	j := f.post(t)

	_, err := f.svc.Apply(ctx, f.rival, j.ID, "")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Apply(ctx, f.client, uuid.New(), "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	deadline := time.Now().Add(-time.Hour)
	_, err = f.svc.Update(ctx, f.company, j.ID, jobs.JobInput{Deadline: &deadline})
	require.NoError(t, err)
	_, err = f.svc.Apply(ctx, f.client, j.ID, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRespondApplication(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	j := f.post(t)
	a, err := f.svc.Apply(ctx, f.client, j.ID, "")
	require.NoError(t, err)

	_, err = f.svc.RespondApplication(ctx, f.rival, a.ID, jobs.RespondInput{Status: "accepted"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.RespondApplication(ctx, f.client, a.ID, jobs.RespondInput{Status: "accepted"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	got, err := f.svc.RespondApplication(ctx, f.company, a.ID, jobs.RespondInput{Status: "reviewing", Message: "Em análise"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationReviewing, got.Status)
	assert.Equal(t, "Em análise", got.ResponseMessage)
	assert.NotNil(t, got.RespondedAt)

	got, err = f.svc.RespondApplication(ctx, f.company, a.ID, jobs.RespondInput{Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationAccepted, got.Status)

	_, err = f.svc.RespondApplication(ctx, f.client, a.ID, jobs.RespondInput{Status: "cancelled"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestApplicantCancels(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	j := f.post(t)
	a, err := f.svc.Apply(ctx, f.provider, j.ID, "")
	require.NoError(t, err)

	got, err := f.svc.RespondApplication(ctx, f.provider, a.ID, jobs.RespondInput{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationCancelled, got.Status)

	mine, err := f.svc.MyApplications(ctx, f.provider.ID, store.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, mine.Total)

	_, err = f.svc.JobApplications(ctx, f.rival, j.ID, store.Page{})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	list, err := f.svc.JobApplications(ctx, f.company, j.ID, store.Page{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestProposals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	j := f.post(t)

	_, err := f.svc.Propose(ctx, f.rival, j.ID, jobs.ProposalInput{ProviderID: f.provider.ID})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.Propose(ctx, f.company, j.ID, jobs.ProposalInput{ProviderID: f.client.ID})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	p, err := f.svc.Propose(ctx, f.company, j.ID, jobs.ProposalInput{ProviderID: f.provider.ID, ProposedSalary: 1800, Message: "Interesse?"})
	require.NoError(t, err)
	assert.Equal(t, models.ProposalPending, p.Status)

	_, err = f.svc.Propose(ctx, f.company, j.ID, jobs.ProposalInput{ProviderID: f.provider.ID})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	received, err := f.svc.MyProposals(ctx, f.provider, store.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, received.Total)
	sent, err := f.svc.MyProposals(ctx, f.company, store.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, sent.Total)
	_, err = f.svc.MyProposals(ctx, f.client, store.Page{})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.RespondProposal(ctx, f.client, p.ID, jobs.RespondInput{Status: "accepted"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	got, err := f.svc.RespondProposal(ctx, f.provider, p.ID, jobs.RespondInput{Status: "accepted", Message: "Aceito"})
	require.NoError(t, err)
	assert.Equal(t, models.ProposalAccepted, got.Status)

	_, err = f.svc.RespondProposal(ctx, f.provider, p.ID, jobs.RespondInput{Status: "rejected"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	// proposals do not touch the application counter
	job, err := f.svc.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, job.ApplicationsCount)
}
