package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/realtime"
	"github.com/aetherboard/aetherboard/internal/repository"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

// MessageService implements the room messaging page.
type MessageService struct {
	messages  repository.MessageRepository
	rooms     []string
	roomSet   map[string]struct{}
	publisher changePublisher
	logger    *zap.Logger
}

// MessageDependencies bundles collaborators for the message service.
type MessageDependencies struct {
	MessageRepo repository.MessageRepository
	Broker      realtime.Broker
	Rooms       []string
	Logger      *zap.Logger
}

// SendMessageInput describes a chat message to post.
type SendMessageInput struct {
	Sender   *domain.Profile
	Room     string
	Content  string
	Nickname string
	Avatar   string
}

// NewMessageService constructs the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	roomSet := make(map[string]struct{}, len(deps.Rooms))
	for _, room := range deps.Rooms {
		roomSet[room] = struct{}{}
	}
	return &MessageService{
		messages:  deps.MessageRepo,
		rooms:     append([]string(nil), deps.Rooms...),
		roomSet:   roomSet,
		publisher: newChangePublisher(deps.Broker, logger),
		logger:    logger,
	}
}

// Rooms lists the configured rooms in display order.
func (s *MessageService) Rooms() []string {
	return append([]string(nil), s.rooms...)
}

// ValidateRoom rejects rooms outside the configured list.
func (s *MessageService) ValidateRoom(room string) error {
	if _, ok := s.roomSet[room]; !ok {
		return apperrors.NewValidationError("unknown room", map[string]any{"room": room, "rooms": s.rooms})
	}
	return nil
}

// ListRoom returns every message of room, oldest first.
func (s *MessageService) ListRoom(ctx context.Context, room string) ([]domain.Message, error) {
	if err := s.ValidateRoom(room); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByRoom(ctx, room)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// Send inserts a message and announces it to the room. Blank content is a
// no-op and yields a nil message.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (*domain.Message, error) {
	if in.Sender == nil {
		return nil, apperrors.NewUnauthorized("sender required")
	}
	if err := s.ValidateRoom(in.Room); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, nil
	}

	name := strings.TrimSpace(in.Nickname)
	if name == "" {
		name = in.Sender.DisplayName()
	}
	msg := &domain.Message{
		RoomID:       in.Room,
		SenderID:     in.Sender.ID,
		SenderName:   name,
		SenderAvatar: in.Avatar,
		Content:      content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		s.logger.Error("send message failed", zap.String("room", in.Room), zap.String("sender_id", in.Sender.ID), zap.Error(err))
		return nil, apperrors.MapError(err)
	}
	s.publisher.change(ctx, realtime.RoomTopic(msg.RoomID), "messages", realtime.ChangeInsert, realtime.MessageRecordFrom(*msg), nil)
	return msg, nil
}

// Edit replaces the content of the sender's own message and tags it edited.
// Blank content is a no-op and yields a nil message.
func (s *MessageService) Edit(ctx context.Context, senderID, messageID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}
	msg, err := s.ownedMessage(ctx, senderID, messageID)
	if err != nil {
		return nil, err
	}
	old := realtime.MessageRecordFrom(*msg)
	msg.Content = domain.EditedContent(content)
	msg.Edited = true
	if err := s.messages.UpdateContent(ctx, msg); err != nil {
		return nil, apperrors.MapNotFound(err, "message", map[string]any{"message_id": messageID})
	}
	s.publisher.change(ctx, realtime.RoomTopic(msg.RoomID), "messages", realtime.ChangeUpdate, realtime.MessageRecordFrom(*msg), old)
	return msg, nil
}

// Rename rewrites the sender name on all of senderID's past messages and
// announces each change to its room. It returns the number of rows changed.
func (s *MessageService) Rename(ctx context.Context, senderID, name string) (int, error) {
	name = strings.TrimSpace(name)
	if senderID == "" || name == "" {
		return 0, nil
	}
	renamed, err := s.messages.RenameSender(ctx, senderID, name)
	if err != nil {
		s.logger.Error("rename sender failed", zap.String("sender_id", senderID), zap.Error(err))
		return 0, apperrors.MapError(err)
	}
	for _, msg := range renamed {
		s.publisher.change(ctx, realtime.RoomTopic(msg.RoomID), "messages", realtime.ChangeUpdate, realtime.MessageRecordFrom(msg), nil)
	}
	return len(renamed), nil
}

// Delete removes the sender's own message.
func (s *MessageService) Delete(ctx context.Context, senderID, messageID string) error {
	msg, err := s.ownedMessage(ctx, senderID, messageID)
	if err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, messageID); err != nil {
		return apperrors.MapNotFound(err, "message", map[string]any{"message_id": messageID})
	}
	s.publisher.change(ctx, realtime.RoomTopic(msg.RoomID), "messages", realtime.ChangeDelete, nil, realtime.MessageRecordFrom(*msg))
	return nil
}

func (s *MessageService) ownedMessage(ctx context.Context, senderID, messageID string) (*domain.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, apperrors.MapNotFound(err, "message", map[string]any{"message_id": messageID})
	}
	if msg.SenderID != senderID {
		return nil, apperrors.NewForbidden("only the sender can change a message")
	}
	return msg, nil
}
