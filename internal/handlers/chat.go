package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/middleware"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/realtime"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/chat"
)

type ChatHandler struct {
	Chat      *chat.Service
	Hub       *realtime.Hub
	JWTSecret string
	Users     middleware.UserLoader
}

// CreateOrGetConversation opens the conversation about a service request,
// application or proposal, reusing an existing one.
func (h *ChatHandler) CreateOrGetConversation(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req chat.OpenInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	conv, created, err := h.Chat.Open(c.UserContext(), u, req)
	if err != nil {
		return err
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"created": created,
		"data":    conv,
	})
}

func (h *ChatHandler) GetConversations(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	convs, err := h.Chat.List(c.UserContext(), u.ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", convs)
}

func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	page, err := h.Chat.Messages(c.UserContext(), u.ID, id, pageQuery(c))
	if err != nil {
		return err
	}
	return paginated(c, page)
}

type sendMessageReq struct {
	Text string `json:"text"`
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req sendMessageReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	m, err := h.Chat.Send(c.UserContext(), u, id, req.Text)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "", m)
}

// UpgradeWebSocket authenticates the token query parameter before the
// protocol switch; browsers cannot set headers on a socket handshake.
func (h *ChatHandler) UpgradeWebSocket(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	u, err := middleware.Authenticate(c.UserContext(), h.JWTSecret, h.Users, c.Query("token"))
	if err != nil {
		return err
	}
	c.Locals(middleware.LocalUserID, u.ID.String())
	return c.Next()
}

func (h *ChatHandler) WebSocketHandler(conn *websocket.Conn) {
	raw, _ := conn.Locals(middleware.LocalUserID).(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		log.Warn().Str("user_id", raw).Msg("websocket without authenticated user")
		_ = conn.Close()
		return
	}

	log.Debug().Str("user_id", raw).Msg("websocket connected")
	realtime.Serve(h.Hub, conn, userID)
	log.Debug().Str("user_id", raw).Msg("websocket disconnected")
}
