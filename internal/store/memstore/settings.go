package memstore

import (
	"context"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
)

func (s *Store) GetSettings(ctx context.Context) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settingsErr != nil {
		return nil, s.settingsErr
	}
	if s.settings == nil {
		def := models.DefaultSettings()
		def.CreatedAt, def.UpdatedAt = s.now(), s.now()
		s.settings = &def
	}
	cp := *s.settings
	return &cp, nil
}

func (s *Store) SaveSettings(ctx context.Context, st *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settingsErr != nil {
		return s.settingsErr
	}
	cp := *st
	cp.Key = models.SettingsKey
	if s.settings != nil {
		cp.CreatedAt = s.settings.CreatedAt
	} else {
		cp.CreatedAt = s.now()
	}
	cp.UpdatedAt = s.now()
	s.settings = &cp
	*st = cp
	return nil
}

// SetSettingsErr makes settings reads fail until cleared with nil.
func (s *Store) SetSettingsErr(err error) {
	s.mu.Lock()
	s.settingsErr = err
	s.mu.Unlock()
}
