package service

import (
	"context"

	"sharesmallbiz/internal/models"
	"sharesmallbiz/internal/repository"
)

const maxMessageLen = 5000

// MessageService implements direct messaging between users.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo, userRepo: userRepo}
}

// SendMessage delivers a message from sender to recipient. The recipient
// must exist and must not be the sender.
func (s *MessageService) SendMessage(ctx context.Context, senderID, recipientID uint, content string) (*models.Message, error) {
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxMessageLen {
		return nil, models.NewValidationError("Message too long (max 5000 characters)")
	}
	if senderID == recipientID {
		return nil, models.NewValidationError("Cannot message yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}

	message := &models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return s.messageRepo.GetByID(ctx, message.ID)
}

// GetConversation returns the message history with another user, oldest
// first, and marks the other user's messages as read.
func (s *MessageService) GetConversation(ctx context.Context, userID, otherID uint, limit, offset int) ([]*models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, otherID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListConversation(ctx, userID, otherID, limit, offset)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.MarkConversationRead(ctx, userID, otherID); err != nil {
		return nil, err
	}
	return messages, nil
}

// GetThreads returns the user's conversations, most recent first, each with
// the latest message and the unread count.
func (s *MessageService) GetThreads(ctx context.Context, userID uint) ([]*models.MessageThread, error) {
	return s.messageRepo.ListThreads(ctx, userID)
}
