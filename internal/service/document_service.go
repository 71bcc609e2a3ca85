package service

import (
	"context"
	"strings"

	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/repository"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

const untitledDocument = "Untitled"

// DocumentService manages per-user notes.
type DocumentService struct {
	documents repository.DocumentRepository
}

func NewDocumentService(documents repository.DocumentRepository) *DocumentService {
	return &DocumentService{documents: documents}
}

func (s *DocumentService) List(ctx context.Context, userID string) ([]domain.Document, error) {
	docs, err := s.documents.ListByUser(ctx, userID)
	return docs, apperrors.MapError(err)
}

func (s *DocumentService) Create(ctx context.Context, userID, title, content string) (*domain.Document, error) {
	doc := &domain.Document{UserID: userID, Title: documentTitle(title), Content: content}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, apperrors.MapError(err)
	}
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, userID, id string) (*domain.Document, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapNotFound(err, "document", map[string]any{"document_id": id})
	}
	if doc.UserID != userID {
		return nil, apperrors.NewNotFound("document", map[string]any{"document_id": id})
	}
	return doc, nil
}

// Update is the autosave target; nil fields are left unchanged.
func (s *DocumentService) Update(ctx context.Context, userID, id string, title, content *string) (*domain.Document, error) {
	doc, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if title != nil {
		doc.Title = documentTitle(*title)
	}
	if content != nil {
		doc.Content = *content
	}
	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, apperrors.MapNotFound(err, "document", map[string]any{"document_id": id})
	}
	return doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, userID, id string) error {
	if err := s.documents.Delete(ctx, id, userID); err != nil {
		return apperrors.MapNotFound(err, "document", map[string]any{"document_id": id})
	}
	return nil
}

func documentTitle(title string) string {
	if title = strings.TrimSpace(title); title == "" {
		return untitledDocument
	}
	return title
}
