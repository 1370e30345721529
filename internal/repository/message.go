// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"sharesmallbiz/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	ListConversation(ctx context.Context, userID, otherID uint, limit, offset int) ([]*models.Message, error)
	ListThreads(ctx context.Context, userID uint) ([]*models.MessageThread, error)
	MarkConversationRead(ctx context.Context, userID, otherID uint) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Recipient").
		First(&message, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &message, nil
}

// ListConversation returns messages exchanged between the two users in
// chronological order.
func (r *messageRepository) ListConversation(ctx context.Context, userID, otherID uint, limit, offset int) ([]*models.Message, error) {
	q := r.db.WithContext(ctx).
		Preload("Sender").
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, otherID, otherID, userID).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var messages []*models.Message
	err := q.Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// ListThreads returns one entry per conversation partner, newest exchange
// first. Partner discovery and aggregation run over the user's messages in
// memory; DM volume per user is small.
func (r *messageRepository) ListThreads(ctx context.Context, userID uint) ([]*models.MessageThread, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Recipient").
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	byPartner := make(map[uint]*models.MessageThread)
	var order []uint
	for _, m := range messages {
		partnerID := m.SenderID
		partner := m.Sender
		if partnerID == userID {
			partnerID = m.RecipientID
			partner = m.Recipient
		}

		thread, ok := byPartner[partnerID]
		if !ok {
			thread = &models.MessageThread{LastMessage: *m}
			if partner != nil {
				thread.User = *partner
			}
			byPartner[partnerID] = thread
			order = append(order, partnerID)
		}
		if m.RecipientID == userID && !m.IsRead {
			thread.UnreadCount++
		}
	}

	threads := make([]*models.MessageThread, 0, len(order))
	for _, id := range order {
		threads = append(threads, byPartner[id])
	}
	return threads, nil
}

// MarkConversationRead marks all messages from otherID to userID as read.
func (r *messageRepository) MarkConversationRead(ctx context.Context, userID, otherID uint) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", otherID, userID, false).
		Updates(map[string]any{"is_read": true, "read_at": &now}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
