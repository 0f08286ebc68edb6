package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/reviews"
)

type ReviewHandler struct {
	Reviews *reviews.Service
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req reviews.CreateInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	r, err := h.Reviews.Create(c.UserContext(), u, req)
	if err != nil {
		return err
	}
	msg := "Avaliação publicada com sucesso"
	if r.Status != models.ReviewApproved {
		msg = "Avaliação enviada para moderação"
	}
	return respond(c, fiber.StatusCreated, msg, r)
}

func (h *ReviewHandler) ListForUser(c *fiber.Ctx) error {
	id, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	res, err := h.Reviews.ListForUser(c.UserContext(), id, models.ReviewType(c.Query("type")), pageQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    res.Items,
		"average": res.Average,
		"count":   res.Count,
		"pagination": fiber.Map{
			"page":  res.Page.Page,
			"limit": res.Limit,
			"total": res.Total,
			"pages": res.Pages(),
		},
	})
}

func (h *ReviewHandler) Report(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req reviews.ReportInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if _, err := h.Reviews.Report(c.UserContext(), u, id, req); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Denúncia registrada. Obrigado por ajudar a manter a comunidade segura", nil)
}

func (h *ReviewHandler) Helpful(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	marked, r, err := h.Reviews.Helpful(c.UserContext(), u, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"helpful":       marked,
		"helpful_count": r.HelpfulCount,
	})
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Reviews.Delete(c.UserContext(), u, id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Avaliação excluída com sucesso", nil)
}

func (h *ReviewHandler) Flagged(c *fiber.Ctx) error {
	page, err := h.Reviews.Flagged(c.UserContext(), pageQuery(c))
	if err != nil {
		return err
	}
	return paginated(c, page)
}

func (h *ReviewHandler) Moderate(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req reviews.ModerateInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	r, err := h.Reviews.Moderate(c.UserContext(), u, id, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Avaliação moderada com sucesso", r)
}
