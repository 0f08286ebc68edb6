package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const SettingsKey = "global"

var ErrSettingsExists = errors.New("settings document already exists")

// Settings is the platform-wide singleton row.
type Settings struct {
	Key                string                      `gorm:"type:varchar(20);primaryKey" json:"-"`
	MaintenanceMode    bool                        `gorm:"not null;default:false" json:"maintenance_mode"`
	MaintenanceMessage string                      `gorm:"type:text" json:"maintenance_message"`
	MaxUploadMB        int                         `gorm:"not null;default:5" json:"max_upload_mb"`
	AllowedUploadTypes datatypes.JSONSlice[string] `json:"allowed_upload_types"`
	ServiceCategories  datatypes.JSONSlice[string] `json:"service_categories"`
	UpdatedBy          string                      `gorm:"type:varchar(36)" json:"updated_by,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

func DefaultSettings() Settings {
	return Settings{
		Key:                SettingsKey,
		MaxUploadMB:        5,
		AllowedUploadTypes: []string{".jpg", ".jpeg", ".png", ".pdf"},
		ServiceCategories: []string{
			"Limpeza", "Elétrica", "Encanamento", "Pintura", "Jardinagem",
			"Mudanças", "Montagem de Móveis", "Aulas Particulares", "Beleza", "Outros",
		},
	}
}

// BeforeCreate rejects a second settings row.
func (s *Settings) BeforeCreate(tx *gorm.DB) error {
	var n int64
	if err := tx.Model(&Settings{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrSettingsExists
	}
	s.Key = SettingsKey
	return nil
}
