package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/admin"
)

type AdminHandler struct {
	Admin *admin.Service
}

func (h *AdminHandler) CreateAdmin(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req admin.CreateAdminInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	created, err := h.Admin.CreateAdmin(c.UserContext(), u, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Administrador criado com sucesso", fiber.Map{"user": created})
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	q := admin.UserQuery{
		Role:   c.Query("role"),
		Search: c.Query("search"),
		Page:   pageQuery(c),
	}
	if v := c.Query("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err == nil {
			q.Active = &active
		}
	}

	page, err := h.Admin.ListUsers(c.UserContext(), q)
	if err != nil {
		return err
	}
	return paginated(c, page)
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	s, err := h.Admin.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", s)
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Admin.DeleteUser(c.UserContext(), u, id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Usuário excluído com sucesso", nil)
}

func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req admin.UpdateUserInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	updated, err := h.Admin.UpdateUser(c.UserContext(), u, id, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Usuário atualizado com sucesso", fiber.Map{"user": updated})
}

func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	s, err := h.Admin.Settings(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", s)
}

func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req admin.SettingsInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	s, err := h.Admin.UpdateSettings(c.UserContext(), u, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Configurações atualizadas com sucesso", s)
}

func (h *AdminHandler) PublicSettings(c *fiber.Ctx) error {
	s, err := h.Admin.PublicSettings(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", s)
}
