package models

import (
	"time"

	"github.com/google/uuid"
)

type ServiceStatus string

const (
	ServicePending    ServiceStatus = "pending"
	ServiceAccepted   ServiceStatus = "accepted"
	ServiceRejected   ServiceStatus = "rejected"
	ServiceInProgress ServiceStatus = "in_progress"
	ServiceCompleted  ServiceStatus = "completed"
	ServiceCancelled  ServiceStatus = "cancelled"
)

func (s ServiceStatus) Valid() bool {
	switch s {
	case ServicePending, ServiceAccepted, ServiceRejected, ServiceInProgress, ServiceCompleted, ServiceCancelled:
		return true
	}
	return false
}

func (s ServiceStatus) Terminal() bool {
	return s == ServiceCompleted || s == ServiceCancelled || s == ServiceRejected
}

type ServiceRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequesterID uuid.UUID `gorm:"type:uuid;index;not null" json:"requester_id"`
	ProviderID  uuid.UUID `gorm:"type:uuid;index;not null" json:"provider_id"`

	Category      string    `gorm:"type:varchar(80);not null" json:"category"`
	Title         string    `gorm:"type:varchar(160);not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Location      string    `gorm:"type:text" json:"location"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Budget        float64   `json:"budget"`

	Status             ServiceStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CancellationReason string        `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancelledBy        *uuid.UUID    `gorm:"type:uuid" json:"cancelled_by,omitempty"`
	AcceptedAt         *time.Time    `json:"accepted_at,omitempty"`
	StartedAt          *time.Time    `json:"started_at,omitempty"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`

	// set by the requester after completion
	ProviderRating *int   `json:"provider_rating,omitempty"`
	ProviderReview string `gorm:"type:text" json:"provider_review,omitempty"`
	// set by the provider after completion
	ClientRating *int   `json:"client_rating,omitempty"`
	ClientReview string `gorm:"type:text" json:"client_review,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Requester *User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Provider  *User `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
}

// IsParticipant reports whether userID is the requester or the provider.
func (s *ServiceRequest) IsParticipant(userID uuid.UUID) bool {
	return s.RequesterID == userID || s.ProviderID == userID
}
