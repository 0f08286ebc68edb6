package gormstore

import (
	"context"
	"errors"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

var settingsEditable = []string{
	"maintenance_mode", "maintenance_message", "max_upload_mb",
	"allowed_upload_types", "service_categories", "updated_by",
}

func (s *Store) GetSettings(ctx context.Context) (*models.Settings, error) {
	var st models.Settings
	err := translate(s.db(ctx).First(&st, "key = ?", models.SettingsKey).Error)
	if err == nil {
		return &st, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	st = models.DefaultSettings()
	err = translate(s.db(ctx).Create(&st).Error)
	if errors.Is(err, store.ErrDuplicate) {
		// another instance created it first
		if err := s.db(ctx).First(&st, "key = ?", models.SettingsKey).Error; err != nil {
			return nil, translate(err)
		}
		return &st, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) SaveSettings(ctx context.Context, st *models.Settings) error {
	if _, err := s.GetSettings(ctx); err != nil {
		return err
	}
	st.Key = models.SettingsKey
	return translate(s.db(ctx).Model(st).Select(settingsEditable).Updates(st).Error)
}
