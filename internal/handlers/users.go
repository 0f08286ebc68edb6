package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/users"
)

type UserHandler struct {
	Users *users.Service
	Auth  *AuthHandler
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req users.ProfileInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	updated, err := h.Users.UpdateProfile(c.UserContext(), u, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Perfil atualizado com sucesso", fiber.Map{"user": updated})
}

func (h *UserHandler) UpgradeToProvider(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req users.ProviderInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	updated, token, err := h.Users.UpgradeToProvider(c.UserContext(), u, req)
	if err != nil {
		return err
	}
	h.Auth.setTokenCookie(c, token)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Conta atualizada para prestador de serviços",
		"token":   token,
		"data":    fiber.Map{"user": updated},
	})
}

func (h *UserHandler) UpdateProviderInfo(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req users.ProviderInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	updated, err := h.Users.UpdateProviderInfo(c.UserContext(), u, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Informações de prestador atualizadas", fiber.Map{"user": updated})
}

func (h *UserHandler) ListProviders(c *fiber.Ctx) error {
	minRating, _ := strconv.ParseFloat(c.Query("min_rating"), 64)
	page, err := h.Users.ListProviders(c.UserContext(), users.ProviderQuery{
		Category:  c.Query("category"),
		City:      c.Query("city"),
		Search:    c.Query("search"),
		MinRating: minRating,
		SortBy:    c.Query("sort"),
		Page:      pageQuery(c),
	})
	if err != nil {
		return err
	}
	return paginated(c, page)
}

func (h *UserHandler) PublicProfile(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Users.PublicProfile(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", p)
}

func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.Users.Deactivate(c.UserContext(), u); err != nil {
		return err
	}
	h.Auth.clearTokenCookie(c)
	return respond(c, fiber.StatusOK, "Conta desativada com sucesso", nil)
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Reactivate(c *fiber.Ctx) error {
	var req credentialsReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	u, token, err := h.Users.Reactivate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.Auth.setTokenCookie(c, token)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Conta reativada com sucesso",
		"token":   token,
		"data":    fiber.Map{"user": u},
	})
}

type deleteAccountReq struct {
	Password string `json:"password"`
}

func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req deleteAccountReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.Users.DeleteAccount(c.UserContext(), u, req.Password); err != nil {
		return err
	}
	h.Auth.clearTokenCookie(c)
	return respond(c, fiber.StatusOK, "Conta excluída permanentemente", nil)
}
