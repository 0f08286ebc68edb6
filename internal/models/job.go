package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JobType string

const (
	JobTemporary JobType = "temporary"
	JobTrial     JobType = "trial"
	JobPermanent JobType = "permanent"
)

func (t JobType) Valid() bool {
	return t == JobTemporary || t == JobTrial || t == JobPermanent
}

type JobStatus string

const (
	JobOpen   JobStatus = "open"
	JobClosed JobStatus = "closed"
)

type Salary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Period string  `gorm:"type:varchar(20)" json:"period"` // hour, day, month
}

type JobVacancy struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID   uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`
	Title       string    `gorm:"type:varchar(160);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"type:varchar(80);index" json:"category"`
	Type        JobType   `gorm:"type:varchar(20);not null" json:"type"`

	Salary       Salary                      `gorm:"embedded;embeddedPrefix:salary_" json:"salary"`
	Requirements datatypes.JSONSlice[string] `json:"requirements"`
	Benefits     datatypes.JSONSlice[string] `json:"benefits"`

	Location  string     `gorm:"type:text" json:"location"`
	Vacancies int        `gorm:"default:1" json:"vacancies"`
	Status    JobStatus  `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	Deadline  *time.Time `json:"deadline,omitempty"`

	ApplicationsCount int `gorm:"not null;default:0" json:"applications_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Company *User `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationReviewing ApplicationStatus = "reviewing"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationCancelled ApplicationStatus = "cancelled"
)

type Application struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_applicant" json:"job_id"`
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_applicant;index" json:"applicant_id"`
	CoverLetter string    `gorm:"type:text" json:"cover_letter"`

	Status          ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ResponseMessage string            `gorm:"type:text" json:"response_message,omitempty"`
	RespondedAt     *time.Time        `json:"responded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Job       *JobVacancy `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Applicant *User       `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
}

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

type JobProposal struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_proposal_job_provider" json:"job_id"`
	ProviderID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_proposal_job_provider;index" json:"provider_id"`
	CompanyID      uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Message        string    `gorm:"type:text" json:"message"`
	ProposedSalary float64   `json:"proposed_salary"`

	Status          ProposalStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ResponseMessage string         `gorm:"type:text" json:"response_message,omitempty"`
	RespondedAt     *time.Time     `json:"responded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Job      *JobVacancy `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Provider *User       `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Company  *User       `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}
