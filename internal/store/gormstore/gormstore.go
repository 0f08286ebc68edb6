// Package gormstore implements store.Store on postgres through gorm.
package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

type Store struct {
	DB *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// translate maps gorm errors onto the store sentinels. The connection must be
// opened with TranslateError so unique violations arrive as ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, gorm.ErrForeignKeyViolated):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, models.ErrSettingsExists):
		return store.ErrDuplicate
	}
	return err
}

func paged(q *gorm.DB, p store.Page) *gorm.DB {
	p = p.Normalize()
	return q.Offset(p.Offset()).Limit(p.Limit)
}

// casMiss resolves a compare-and-swap that touched no rows into ErrNotFound
// or ErrConflict.
func casMiss(q *gorm.DB, model any, id any) error {
	var n int64
	if err := q.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return store.ErrConflict
}

type groupCount struct {
	Key string
	N   int64
}

func countBy(q *gorm.DB, model any, column string) ([]groupCount, error) {
	var rows []groupCount
	err := q.Model(model).Select(column + " AS key, count(*) AS n").Group(column).Scan(&rows).Error
	return rows, err
}
