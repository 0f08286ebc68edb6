package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/realtime"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/chat"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store/memstore"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID uuid.UUID, ev realtime.Event) error {
	args := m.Called(ctx, userID, ev)
	return args.Error(0)
}

type fixture struct {
	svc      *chat.Service
	st       *memstore.Store
	notifier *MockNotifier
	client   *models.User
	provider *models.User
	company  *models.User
	stranger *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	n := &MockNotifier{}
	f := &fixture{svc: chat.NewService(st, st, st, n), st: st, notifier: n}
	mk := func(role models.Role) *models.User {
		u := &models.User{Name: string(role), Email: uuid.NewString() + "@example.com", Password: "x", Role: role, IsActive: true}
		if role == models.RoleProvider {
			u.Provider = models.ProviderProfile{Category: "Elétrica", HourlyPrice: 60}
		}
		require.NoError(t, st.CreateUser(context.Background(), u))
		return u
	}
	f.client = mk(models.RoleClient)
	f.provider = mk(models.RoleProvider)
	f.company = mk(models.RoleCompany)
	f.stranger = mk(models.RoleClient)
	return f
}

func (f *fixture) serviceRequest(t *testing.T, status models.ServiceStatus) *models.ServiceRequest {
	t.Helper()
	sr := &models.ServiceRequest{
		RequesterID:   f.client.ID,
		ProviderID:    f.provider.ID,
		Category:      "Elétrica",
		Title:         "Trocar tomadas",
		ScheduledDate: time.Now().Add(48 * time.Hour),
		Status:        status,
	}
	require.NoError(t, f.st.CreateServiceRequest(context.Background(), sr))
	return sr
}

func (f *fixture) application(t *testing.T) *models.Application {
	t.Helper()
	ctx := context.Background()
	j := &models.JobVacancy{CompanyID: f.company.ID, Title: "Eletricista", Type: models.JobPermanent}
	require.NoError(t, f.st.CreateJob(ctx, j))
	a := &models.Application{JobID: j.ID, ApplicantID: f.provider.ID, Status: models.ApplicationPending}
	require.NoError(t, f.st.CreateApplication(ctx, a))
	return a
}

func TestOpen_ServiceGating(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pending := f.serviceRequest(t, models.ServicePending)
	_, _, err := f.svc.Open(ctx, f.client, chat.OpenInput{Type: models.ConversationService, RelatedID: pending.ID})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	rejected := f.serviceRequest(t, models.ServiceRejected)
	_, _, err = f.svc.Open(ctx, f.provider, chat.OpenInput{Type: models.ConversationService, RelatedID: rejected.ID})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	accepted := f.serviceRequest(t, models.ServiceAccepted)
	_, _, err = f.svc.Open(ctx, f.stranger, chat.OpenInput{Type: models.ConversationService, RelatedID: accepted.ID})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	conv, created, err := f.svc.Open(ctx, f.client, chat.OpenInput{Type: models.ConversationService, RelatedID: accepted.ID})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, conv.HasParticipant(f.client.ID))
	assert.True(t, conv.HasParticipant(f.provider.ID))

	// same key from the other side finds the existing conversation
	again, created, err := f.svc.Open(ctx, f.provider, chat.OpenInput{Type: models.ConversationService, RelatedID: accepted.ID})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, conv.ID, again.ID)
}

func TestOpen_ApplicationGating(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.application(t)
	in := chat.OpenInput{Type: models.ConversationJobApplication, RelatedID: a.ID}

	_, _, err := f.svc.Open(ctx, f.provider, in)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	conv, created, err := f.svc.Open(ctx, f.company, in)
	require.NoError(t, err)
	assert.True(t, created)

	_, err = f.st.RespondApplication(ctx, a.ID, store.Response{
		From: string(models.ApplicationPending), To: string(models.ApplicationReviewing), At: time.Now(),
	})
	require.NoError(t, err)

	got, created, err := f.svc.Open(ctx, f.provider, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, conv.ID, got.ID)
}

func TestOpen_ProposalEitherParty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	j := &models.JobVacancy{CompanyID: f.company.ID, Title: "Eletricista", Type: models.JobTrial}
	require.NoError(t, f.st.CreateJob(ctx, j))
	p := &models.JobProposal{JobID: j.ID, ProviderID: f.provider.ID, CompanyID: f.company.ID, Status: models.ProposalPending}
	require.NoError(t, f.st.CreateProposal(ctx, p))
	in := chat.OpenInput{Type: models.ConversationJobProposal, RelatedID: p.ID}

	_, created, err := f.svc.Open(ctx, f.provider, in)
	require.NoError(t, err)
	assert.True(t, created)

	_, _, err = f.svc.Open(ctx, f.stranger, in)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	in.ParticipantID = f.stranger.ID
	_, _, err = f.svc.Open(ctx, f.company, in)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestOpen_Validation(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Open(context.Background(), f.client, chat.OpenInput{Type: "group"})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, e.Fields, "type")
	assert.Contains(t, e.Fields, "related_id")
}

func TestSendAndRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sr := f.serviceRequest(t, models.ServiceInProgress)
	conv, _, err := f.svc.Open(ctx, f.client, chat.OpenInput{Type: models.ConversationService, RelatedID: sr.ID})
	require.NoError(t, err)

	f.notifier.On("Notify", mock.Anything, mock.Anything, mock.MatchedBy(func(ev realtime.Event) bool {
		return ev.Type == realtime.EventNewMessage
	})).Return(nil)

	_, err = f.svc.Send(ctx, f.client, conv.ID, "   ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.Send(ctx, f.stranger, conv.ID, "oi")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	m, err := f.svc.Send(ctx, f.client, conv.ID, " Chego às 14h ")
	require.NoError(t, err)
	assert.Equal(t, "Chego às 14h", m.Text)
	_, err = f.svc.Send(ctx, f.client, conv.ID, "Pode ser?")
	require.NoError(t, err)

	f.notifier.AssertNumberOfCalls(t, "Notify", 4)
	f.notifier.AssertCalled(t, "Notify", mock.Anything, f.provider.ID, mock.Anything)

	list, err := f.svc.List(ctx, f.provider.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].UnreadCount)
	assert.Equal(t, "Pode ser?", list[0].LastMessageText)

	page, err := f.svc.Messages(ctx, f.provider.ID, conv.ID, store.Page{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Len(t, page.Items[0].ReadBy, 1)
	assert.Equal(t, f.provider.ID, page.Items[0].ReadBy[0].UserID)

	list, err = f.svc.List(ctx, f.provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, list[0].UnreadCount)

	// the sender never has unread messages of their own
	list, err = f.svc.List(ctx, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, list[0].UnreadCount)

	_, err = f.svc.Messages(ctx, f.stranger.ID, conv.ID, store.Page{})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = f.svc.Messages(ctx, f.client.ID, uuid.New(), store.Page{})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestList_Empty(t *testing.T) {
	f := newFixture(t)
	list, err := f.svc.List(context.Background(), f.stranger.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
