package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/aetherboard/aetherboard/internal/api/dto"
	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/realtime"
	"github.com/aetherboard/aetherboard/internal/service"
)

// MessageService is the room messaging surface used by MessageHandler.
type MessageService interface {
	Rooms() []string
	ListRoom(ctx context.Context, room string) ([]domain.Message, error)
	Send(ctx context.Context, in service.SendMessageInput) (*domain.Message, error)
	Edit(ctx context.Context, senderID, messageID, content string) (*domain.Message, error)
	Delete(ctx context.Context, senderID, messageID string) error
}

// MessageHandler is the HTTP side of room messaging. Live updates go through /realtime.
type MessageHandler struct {
	service MessageService
}

func NewMessageHandler(messages MessageService) *MessageHandler {
	return &MessageHandler{service: messages}
}

// Rooms GET /rooms.
func (h *MessageHandler) Rooms(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.service.Rooms()})
}

// ListRoom GET /rooms/:room/messages.
func (h *MessageHandler) ListRoom(c *fiber.Ctx) error {
	msgs, err := h.service.ListRoom(c.UserContext(), c.Params("room"))
	if err != nil {
		return err
	}
	items := make([]realtime.MessageRecord, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, realtime.MessageRecordFrom(m))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Send POST /rooms/:room/messages. Blank content is accepted and ignored.
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.SendMessageRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	msg, err := h.service.Send(c.UserContext(), service.SendMessageInput{
		Sender:   profile,
		Room:     c.Params("room"),
		Content:  req.Content,
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return err
	}
	if msg == nil {
		return c.SendStatus(http.StatusNoContent)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": realtime.MessageRecordFrom(*msg)})
}

// Edit PATCH /messages/:id.
func (h *MessageHandler) Edit(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.EditMessageRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	msg, err := h.service.Edit(c.UserContext(), profile.ID, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	if msg == nil {
		return c.SendStatus(http.StatusNoContent)
	}
	return c.JSON(fiber.Map{"data": realtime.MessageRecordFrom(*msg)})
}

// Delete DELETE /messages/:id.
func (h *MessageHandler) Delete(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), profile.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
