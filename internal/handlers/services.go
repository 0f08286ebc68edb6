package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/servicereq"
)

type ServiceHandler struct {
	Services *servicereq.Service
}

func (h *ServiceHandler) Create(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req servicereq.CreateInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	sr, err := h.Services.Create(c.UserContext(), u, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Solicitação enviada com sucesso", sr)
}

func (h *ServiceHandler) MyRequests(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := h.Services.MyRequests(c.UserContext(), u.ID, models.ServiceStatus(c.Query("status")), pageQuery(c))
	if err != nil {
		return err
	}
	return paginated(c, page)
}

func (h *ServiceHandler) Received(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := h.Services.Received(c.UserContext(), u, models.ServiceStatus(c.Query("status")), pageQuery(c))
	if err != nil {
		return err
	}
	return paginated(c, page)
}

func (h *ServiceHandler) UpdateStatus(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req servicereq.StatusInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	sr, err := h.Services.UpdateStatus(c.UserContext(), u, id, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Status atualizado com sucesso", sr)
}

func (h *ServiceHandler) Review(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req servicereq.ReviewInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.Services.Review(c.UserContext(), u, id, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Avaliação registrada com sucesso", res)
}
