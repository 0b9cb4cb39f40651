package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/service"
)

// ChatHandler proxies chat-completion requests for signed-in users.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chatService}
}

// Forward handles POST /chat. The body passes through to the upstream
// untouched; the upstream's status and payload come back verbatim.
func (h *ChatHandler) Forward(c *fiber.Ctx) error {
	reply, err := h.chat.Forward(c.UserContext(), c.Body())
	if err != nil {
		return err
	}

	if reply.ContentType != "" {
		c.Set(fiber.HeaderContentType, reply.ContentType)
	}
	return c.Status(reply.StatusCode).Send(reply.Body)
}
