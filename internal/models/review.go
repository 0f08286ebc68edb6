package models

import (
	"time"

	"github.com/google/uuid"
)

type ReviewType string

const (
	// ReviewOfProvider rates the reviewed user as a service provider.
	ReviewOfProvider ReviewType = "provider"
	// ReviewOfClient rates the reviewed user as a client.
	ReviewOfClient ReviewType = "client"
)

func (t ReviewType) Valid() bool {
	return t == ReviewOfProvider || t == ReviewOfClient
}

type ReviewStatus string

const (
	ReviewApproved    ReviewStatus = "approved"
	ReviewFlagged     ReviewStatus = "flagged"
	ReviewUnderReview ReviewStatus = "under_review"
	ReviewRejected    ReviewStatus = "rejected"
)

type Review struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReviewerID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_review_unique" json:"reviewer_id"`
	ReviewedUserID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_review_unique;index" json:"reviewed_user_id"`
	Type             ReviewType `gorm:"type:varchar(20);not null;uniqueIndex:idx_review_unique" json:"type"`
	ServiceRequestID *uuid.UUID `gorm:"type:uuid;index" json:"service_request_id,omitempty"`

	Rating  int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment string `gorm:"type:text" json:"comment"`

	Status ReviewStatus `gorm:"type:varchar(20);not null;default:'approved';index" json:"status"`
	// Counted is true while Rating is folded into the reviewed user's average.
	Counted bool `gorm:"not null;default:false" json:"-"`

	ReportsCount int `gorm:"not null;default:0" json:"reports_count"`
	HelpfulCount int `gorm:"not null;default:0" json:"helpful_count"`

	ModerationReason string     `gorm:"type:text" json:"moderation_reason,omitempty"`
	ModeratedBy      *uuid.UUID `gorm:"type:uuid" json:"moderated_by,omitempty"`
	ModeratedAt      *time.Time `json:"moderated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Reviewer *User          `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Reports  []ReviewReport `gorm:"foreignKey:ReviewID" json:"reports,omitempty"`
}

type ReportReason string

const (
	ReportSpam          ReportReason = "spam"
	ReportOffensive     ReportReason = "offensive"
	ReportFake          ReportReason = "fake"
	ReportInappropriate ReportReason = "inappropriate"
	ReportOther         ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReportSpam, ReportOffensive, ReportFake, ReportInappropriate, ReportOther:
		return true
	}
	return false
}

type ReviewReport struct {
	ID          uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReviewID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_report_review_reporter" json:"review_id"`
	ReporterID  uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_report_review_reporter" json:"reporter_id"`
	Reason      ReportReason `gorm:"type:varchar(20);not null" json:"reason"`
	Description string       `gorm:"type:text" json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
}

type ReviewHelpfulVote struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReviewID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_helpful_review_user" json:"review_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_helpful_review_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
