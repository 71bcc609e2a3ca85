package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/aetherboard/aetherboard/internal/api/dto"
	"github.com/aetherboard/aetherboard/internal/domain"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

// NotificationService is the inbox surface used by WorkspaceHandler.
type NotificationService interface {
	List(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// DocumentService is the notes surface used by WorkspaceHandler.
type DocumentService interface {
	List(ctx context.Context, userID string) ([]domain.Document, error)
	Create(ctx context.Context, userID, title, content string) (*domain.Document, error)
	Get(ctx context.Context, userID, id string) (*domain.Document, error)
	Update(ctx context.Context, userID, id string, title, content *string) (*domain.Document, error)
	Delete(ctx context.Context, userID, id string) error
}

// WorkspaceHandler serves the per-user notifications and documents.
type WorkspaceHandler struct {
	notifications NotificationService
	documents     DocumentService
}

func NewWorkspaceHandler(notifications NotificationService, documents DocumentService) *WorkspaceHandler {
	return &WorkspaceHandler{notifications: notifications, documents: documents}
}

// ListNotifications GET /notifications?limit=.
func (h *WorkspaceHandler) ListNotifications(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	notes, err := h.notifications.List(c.UserContext(), profile.ID, parseInt(c.Query("limit"), 50))
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(notes))
	for _, n := range notes {
		items = append(items, dto.NotificationResponse{
			ID:        n.ID,
			Kind:      n.Kind,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkNotificationRead POST /notifications/:id/read.
func (h *WorkspaceHandler) MarkNotificationRead(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.UserContext(), profile.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// MarkAllNotificationsRead POST /notifications/read-all.
func (h *WorkspaceHandler) MarkAllNotificationsRead(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	updated, err := h.notifications.MarkAllRead(c.UserContext(), profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": updated}})
}

// ListDocuments GET /documents.
func (h *WorkspaceHandler) ListDocuments(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	docs, err := h.documents.List(c.UserContext(), profile.ID)
	if err != nil {
		return err
	}
	items := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		items = append(items, documentResponse(&docs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateDocument POST /documents.
func (h *WorkspaceHandler) CreateDocument(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.DocumentRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	var title, content string
	if req.Title != nil {
		title = *req.Title
	}
	if req.Content != nil {
		content = *req.Content
	}
	doc, err := h.documents.Create(c.UserContext(), profile.ID, title, content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": documentResponse(doc)})
}

// GetDocument GET /documents/:id.
func (h *WorkspaceHandler) GetDocument(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	doc, err := h.documents.Get(c.UserContext(), profile.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": documentResponse(doc)})
}

// UpdateDocument PATCH /documents/:id. Autosave sends whichever fields changed.
func (h *WorkspaceHandler) UpdateDocument(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.DocumentRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Title == nil && req.Content == nil {
		return apperrors.NewValidationError("title or content required", nil)
	}
	doc, err := h.documents.Update(c.UserContext(), profile.ID, c.Params("id"), req.Title, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": documentResponse(doc)})
}

// DeleteDocument DELETE /documents/:id.
func (h *WorkspaceHandler) DeleteDocument(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	if err := h.documents.Delete(c.UserContext(), profile.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func documentResponse(d *domain.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:        d.ID,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
