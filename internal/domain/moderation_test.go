package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
)

func TestInitialReviewStatus(t *testing.T) {
	assert.Equal(t, models.ReviewApproved, InitialReviewStatus("Ótimo trabalho, muito pontual"))
	assert.Equal(t, models.ReviewUnderReview, InitialReviewStatus("Esse cara é um IDIOTA"))
	assert.Equal(t, models.ReviewUnderReview, InitialReviewStatus("serviço lixo"))
	assert.Equal(t, models.ReviewApproved, InitialReviewStatus(""))
}

func TestShouldFlag(t *testing.T) {
	assert.False(t, ShouldFlag(models.ReviewApproved, 2))
	assert.True(t, ShouldFlag(models.ReviewApproved, 3))
	assert.False(t, ShouldFlag(models.ReviewUnderReview, 3))
	assert.False(t, ShouldFlag(models.ReviewFlagged, 4))
}

func TestModerate(t *testing.T) {
	tests := []struct {
		name    string
		status  models.ReviewStatus
		counted bool
		action  ModerationAction
		want    ModerationOutcome
		ok      bool
	}{
		{"approve under review adds rating", models.ReviewUnderReview, false, ModerateApprove,
			ModerationOutcome{Status: models.ReviewApproved, ClearReports: true, Effect: RatingAdd}, true},
		{"approve flagged keeps rating", models.ReviewFlagged, true, ModerateApprove,
			ModerationOutcome{Status: models.ReviewApproved, ClearReports: true, Effect: RatingUnchanged}, true},
		{"reject flagged removes rating", models.ReviewFlagged, true, ModerateReject,
			ModerationOutcome{Status: models.ReviewRejected, Effect: RatingRemove}, true},
		{"reject under review leaves rating", models.ReviewUnderReview, false, ModerateReject,
			ModerationOutcome{Status: models.ReviewRejected, Effect: RatingUnchanged}, true},
		{"keep flagged", models.ReviewFlagged, true, ModerateKeepFlagged,
			ModerationOutcome{Status: models.ReviewFlagged}, true},
		{"keep flagged on approved", models.ReviewApproved, true, ModerateKeepFlagged,
			ModerationOutcome{}, false},
		{"rejected is terminal", models.ReviewRejected, false, ModerateApprove,
			ModerationOutcome{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Moderate(tt.status, tt.counted, tt.action)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
