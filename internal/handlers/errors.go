package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:   fiber.StatusBadRequest,
	apperr.KindUnauthorized: fiber.StatusUnauthorized,
	apperr.KindForbidden:    fiber.StatusForbidden,
	apperr.KindNotFound:     fiber.StatusNotFound,
	apperr.KindConflict:     fiber.StatusBadRequest,
	apperr.KindUnavailable:  fiber.StatusServiceUnavailable,
	apperr.KindInternal:     fiber.StatusInternalServerError,
}

// ErrorHandler renders every error in the {success:false, message} envelope.
// The raw error is attached only outside production.
func ErrorHandler(env string) fiber.ErrorHandler {
	production := env == "production"

	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		body := fiber.Map{"success": false, "message": "Erro interno do servidor"}

		var fe *fiber.Error
		if ae, ok := apperr.As(err); ok {
			status = kindStatus[ae.Kind]
			if status == 0 {
				status = fiber.StatusInternalServerError
			}
			body["message"] = ae.Message
			if len(ae.Fields) > 0 {
				body["errors"] = ae.Fields
			}
		} else if errors.As(err, &fe) {
			status = fe.Code
			body["message"] = fiberMessage(fe)
		}

		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		}
		if !production && status >= fiber.StatusInternalServerError {
			body["error"] = err.Error()
		}
		return c.Status(status).JSON(body)
	}
}

func fiberMessage(fe *fiber.Error) string {
	switch fe.Code {
	case fiber.StatusNotFound:
		return "Rota não encontrada"
	case fiber.StatusMethodNotAllowed:
		return "Método não permitido"
	case fiber.StatusRequestEntityTooLarge:
		return "Requisição muito grande"
	case fiber.StatusUnauthorized:
		return "Não autorizado"
	case fiber.StatusForbidden:
		return "Acesso negado"
	case fiber.StatusUpgradeRequired:
		return "Conexão WebSocket necessária"
	}
	return fe.Message
}
