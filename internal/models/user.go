package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleCompany  Role = "company"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleProvider, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

var (
	ErrCompanyProviderFacet = errors.New("company cannot hold the provider facet")
	ErrProviderFacetRole    = errors.New("provider facet requires the provider role")
)

// ProviderProfile is the provider facet of a user.
type ProviderProfile struct {
	Category     string  `gorm:"type:varchar(80);index" json:"category"`
	HourlyPrice  float64 `json:"hourly_price"`
	Description  string  `gorm:"type:text" json:"description"`
	Availability string  `gorm:"type:varchar(120)" json:"availability"`
	Skills       string  `gorm:"type:text" json:"skills"`
}

func (p ProviderProfile) IsZero() bool {
	return p == ProviderProfile{}
}

// CompanyProfile is the company facet of a user.
type CompanyProfile struct {
	CNPJ        string `gorm:"column:cnpj;type:varchar(20)" json:"cnpj"`
	Description string `gorm:"type:text" json:"description"`
}

type Location struct {
	Address string `gorm:"type:text" json:"address"`
	City    string `gorm:"type:varchar(120);index" json:"city"`
	State   string `gorm:"type:varchar(60)" json:"state"`
}

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name  string    `gorm:"not null" json:"name"`
	Email string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone string    `gorm:"type:varchar(30)" json:"phone"`

	Password string `gorm:"not null" json:"-"`
	Role     Role   `gorm:"type:varchar(20);not null;index" json:"role"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
	GoogleID string `gorm:"type:varchar(64);index" json:"-"`

	Avatar   string   `gorm:"type:text" json:"avatar"`
	Bio      string   `gorm:"type:text" json:"bio"`
	Location Location `gorm:"embedded;embeddedPrefix:location_" json:"location"`

	Provider ProviderProfile `gorm:"embedded;embeddedPrefix:provider_" json:"provider"`
	Company  CompanyProfile  `gorm:"embedded;embeddedPrefix:company_" json:"company"`

	ProviderRating      float64 `gorm:"not null;default:0" json:"provider_rating"`
	ProviderReviewCount int     `gorm:"not null;default:0" json:"provider_review_count"`
	ClientRating        float64 `gorm:"not null;default:0" json:"client_rating"`
	ClientReviewCount   int     `gorm:"not null;default:0" json:"client_review_count"`

	ResetPasswordToken  string     `gorm:"type:varchar(64);index" json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the facet invariants. Both stores call it before writing.
func (u *User) Validate() error {
	if u.Role == RoleCompany && !u.Provider.IsZero() {
		return ErrCompanyProviderFacet
	}
	if !u.Provider.IsZero() && u.Role != RoleProvider {
		return ErrProviderFacetRole
	}
	return nil
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	return u.Validate()
}

func (u *User) IsProvider() bool { return u.Role == RoleProvider }
func (u *User) IsAdmin() bool    { return u.Role == RoleAdmin }
