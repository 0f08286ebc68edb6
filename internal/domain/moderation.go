package domain

import (
	"strings"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
)

// ReportFlagThreshold is the report count at which an approved review is flagged.
const ReportFlagThreshold = 3

var offensiveWords = []string{
	"idiota", "imbecil", "otário", "otario", "babaca", "lixo",
	"vagabundo", "vagabunda", "canalha", "desgraçado", "desgracado", "merda",
	"porra", "caralho", "cretino", "estúpido", "estupido",
	"idiot", "stupid", "scam", "fraud", "bastard",
}

// ContainsOffensive reports whether text contains a listed term.
// Matching is a case-insensitive substring scan.
func ContainsOffensive(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range offensiveWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// InitialReviewStatus decides the status of a freshly created review.
func InitialReviewStatus(comment string) models.ReviewStatus {
	if ContainsOffensive(comment) {
		return models.ReviewUnderReview
	}
	return models.ReviewApproved
}

// ShouldFlag reports whether a review with the given status and report count
// must move to flagged.
func ShouldFlag(status models.ReviewStatus, reports int) bool {
	return status == models.ReviewApproved && reports >= ReportFlagThreshold
}

type ModerationAction string

const (
	ModerateApprove     ModerationAction = "approve"
	ModerateReject      ModerationAction = "reject"
	ModerateKeepFlagged ModerationAction = "keep_flagged"
)

func (a ModerationAction) Valid() bool {
	return a == ModerateApprove || a == ModerateReject || a == ModerateKeepFlagged
}

// RatingEffect says what a moderation outcome does to the reviewed user's average.
type RatingEffect int

const (
	RatingUnchanged RatingEffect = iota
	RatingAdd
	RatingRemove
)

// ModerationOutcome is the result of applying an admin action to a review.
type ModerationOutcome struct {
	Status       models.ReviewStatus
	ClearReports bool
	Effect       RatingEffect
}

// Moderate applies action to a review in status with the given counted flag.
// ok is false when the action is not allowed from status.
func Moderate(status models.ReviewStatus, counted bool, action ModerationAction) (ModerationOutcome, bool) {
	if status == models.ReviewRejected {
		return ModerationOutcome{}, false
	}
	switch action {
	case ModerateApprove:
		out := ModerationOutcome{Status: models.ReviewApproved, ClearReports: true}
		if !counted {
			out.Effect = RatingAdd
		}
		return out, true
	case ModerateReject:
		out := ModerationOutcome{Status: models.ReviewRejected}
		if counted {
			out.Effect = RatingRemove
		}
		return out, true
	case ModerateKeepFlagged:
		if status != models.ReviewFlagged && status != models.ReviewUnderReview {
			return ModerationOutcome{}, false
		}
		return ModerationOutcome{Status: status}, true
	}
	return ModerationOutcome{}, false
}

// KindForReview maps a review type to the average it feeds.
func KindForReview(t models.ReviewType) RatingKind {
	if t == models.ReviewOfClient {
		return ClientRatingKind
	}
	return ProviderRatingKind
}
