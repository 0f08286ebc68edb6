// Package services holds helpers shared by the domain services in its
// subpackages.
package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/realtime"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

// Messages are the client-facing texts used when translating store errors.
type Messages struct {
	NotFound  string
	Duplicate string
	Conflict  string
}

// StoreError converts a store sentinel into an application error.
// Application errors pass through untouched.
func StoreError(err error, m Messages) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(or(m.NotFound, "Registro não encontrado"))
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict(or(m.Duplicate, "Registro já existe"))
	case errors.Is(err, store.ErrConflict):
		return apperr.Conflict(or(m.Conflict, "O registro foi alterado por outra operação, tente novamente"))
	case errors.Is(err, models.ErrCompanyProviderFacet):
		return apperr.BadRequest("Empresas não podem ter perfil de prestador")
	case errors.Is(err, models.ErrProviderFacetRole):
		return apperr.BadRequest("Somente prestadores podem ter perfil de prestador")
	}
	return apperr.Internal("Erro interno do servidor", err)
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

func NewPage[T any](items []T, total int64, p store.Page) Page[T] {
	p = p.Normalize()
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: p.Page, Limit: p.Limit}
}

func (p Page[T]) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Push sends ev to users. Delivery failures are logged and never fail the
// caller's request.
func Push(ctx context.Context, n realtime.Notifier, ev realtime.Event, users ...uuid.UUID) {
	if n == nil {
		return
	}
	if err := realtime.NotifyAll(ctx, n, ev, users...); err != nil {
		log.Warn().Err(err).Str("event", ev.Type).Msg("notification not delivered")
	}
}
