// Package handlers maps the REST surface onto the domain services.
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/middleware"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.BadRequest("Dados da requisição inválidos")
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.BadRequest("ID inválido")
	}
	return id, nil
}

// currentUser is only called behind Protect.
func currentUser(c *fiber.Ctx) (*models.User, error) {
	u := middleware.CurrentUser(c)
	if u == nil {
		return nil, apperr.Unauthorized("Não autorizado")
	}
	return u, nil
}

func pageQuery(c *fiber.Ctx) store.Page {
	return store.Page{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", 20)}.Normalize()
}

func paginated[T any](c *fiber.Ctx, p services.Page[T]) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    p.Items,
		"pagination": fiber.Map{
			"page":  p.Page,
			"limit": p.Limit,
			"total": p.Total,
			"pages": p.Pages(),
		},
	})
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}
