package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/utils"
)

// Locals keys set by Protect.
const (
	LocalUser   = "user"
	LocalUserID = "userId"
	LocalRole   = "role"
)

// TokenCookie is the cookie checked when no Authorization header is sent.
const TokenCookie = "token"

// UserLoader resolves the account behind a credential.
type UserLoader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Protect verifies the bearer credential, loads the acting user and stores
// it in Locals. Inactive accounts are refused.
func Protect(secret string, users UserLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := Authenticate(c.UserContext(), secret, users, requestToken(c))
		if err != nil {
			return err
		}
		c.Locals(LocalUser, u)
		c.Locals(LocalUserID, u.ID.String())
		c.Locals(LocalRole, string(u.Role))
		return c.Next()
	}
}

// Authenticate resolves a raw token to an active user.
func Authenticate(ctx context.Context, secret string, users UserLoader, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.Unauthorized("Não autorizado, token ausente")
	}
	claims, err := utils.ParseJWT(secret, token)
	if err != nil {
		return nil, apperr.Unauthorized("Não autorizado, token inválido")
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Não autorizado, token inválido")
	}

	u, err := users.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized("Usuário não encontrado")
	}
	if err != nil {
		return nil, apperr.Internal("Erro interno do servidor", err)
	}
	if !u.IsActive {
		return nil, apperr.Unauthorized("Conta desativada")
	}
	return u, nil
}

func requestToken(c *fiber.Ctx) string {
	if tok := utils.BearerToken(c.Get(fiber.HeaderAuthorization)); tok != "" {
		return tok
	}
	return c.Cookies(TokenCookie)
}

// CurrentUser returns the user stored by Protect, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(LocalUser).(*models.User)
	return u
}
