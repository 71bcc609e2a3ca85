package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/aetherboard/aetherboard/internal/api/dto"
	"github.com/aetherboard/aetherboard/internal/assistant"
	"github.com/aetherboard/aetherboard/internal/domain"
)

// Assistant answers persona chats.
type Assistant interface {
	Greeting(persona string) (string, error)
	Reply(ctx context.Context, persona string, user *domain.Profile, text string) (*assistant.Response, error)
}

// AssistantHandler exposes the julia and pando chat widgets.
type AssistantHandler struct {
	assistant Assistant
}

func NewAssistantHandler(a Assistant) *AssistantHandler {
	return &AssistantHandler{assistant: a}
}

// Greeting GET /assistant/:persona.
func (h *AssistantHandler) Greeting(c *fiber.Ctx) error {
	greeting, err := h.assistant.Greeting(c.Params("persona"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"persona": c.Params("persona"), "greeting": greeting}})
}

// Reply POST /assistant/:persona/messages.
func (h *AssistantHandler) Reply(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.AssistantRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	resp, err := h.assistant.Reply(c.UserContext(), c.Params("persona"), profile, req.Text)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": resp})
}
