package gormstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/domain"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return New(gdb), mock
}

func TestApplyRating_AddIsSingleUpdate(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "users" SET "client_rating"\s*=\s*LEAST\(GREATEST\(\(client_rating \* GREATEST\(client_review_count, 0\) \+ \$1\) / \(GREATEST\(client_review_count, 0\) \+ 1\).*"client_review_count"\s*=\s*GREATEST\(client_review_count, 0\) \+ 1 WHERE id = \$2`).
		WithArgs(4, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_rating", "client_review_count"}).AddRow(id.String(), 4.0, 1))

	u, err := s.ApplyRating(context.Background(), id, domain.ClientRatingKind, 4, false)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, u.ClientRating, 1e-9)
	assert.Equal(t, 1, u.ClientReviewCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyRating_RemoveResetsOnLastRating(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "users" SET "provider_rating"\s*=\s*LEAST\(GREATEST\(CASE WHEN provider_review_count > 1 THEN .* ELSE 0 END, 0\), 5\).*"provider_review_count"\s*=\s*GREATEST\(provider_review_count - 1, 0\)`).
		WithArgs(5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider_rating", "provider_review_count"}).AddRow(id.String(), 0.0, 0))

	u, err := s.ApplyRating(context.Background(), id, domain.ProviderRatingKind, 5, true)
	require.NoError(t, err)
	assert.Equal(t, 0.0, u.ProviderRating)
	assert.Equal(t, 0, u.ProviderReviewCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyRating_UnknownUser(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.ApplyRating(context.Background(), uuid.New(), domain.ProviderRatingKind, 3, false)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeServiceStatus_LostRaceIsConflict(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "service_requests" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "service_requests" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := s.ChangeServiceStatus(context.Background(), id, store.StatusChange{
		From: models.ServicePending,
		To:   models.ServiceAccepted,
	})
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeServiceStatus_MissingRowIsNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE "service_requests" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "service_requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := s.ChangeServiceStatus(context.Background(), uuid.New(), store.StatusChange{
		From: models.ServiceAccepted,
		To:   models.ServiceInProgress,
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), store.ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), store.ErrDuplicate)
	assert.ErrorIs(t, translate(models.ErrSettingsExists), store.ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}
