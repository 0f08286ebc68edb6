package gormstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

func (s *Store) FindConversation(ctx context.Context, k store.ConversationKey) (*models.Conversation, error) {
	k = k.Ordered()
	var c models.Conversation
	err := s.db(ctx).
		Preload("Participants").
		Where("participant_a = ? AND participant_b = ? AND type = ? AND related_id = ?", k.UserA, k.UserB, k.Type, k.RelatedID).
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Store) CreateConversation(ctx context.Context, c *models.Conversation) error {
	c.ParticipantA, c.ParticipantB = models.OrderPair(c.ParticipantA, c.ParticipantB)
	if c.LastMessageAt.IsZero() {
		c.LastMessageAt = time.Now()
	}
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Participants").Create(c).Error; err != nil {
			return err
		}
		c.Participants = []models.ConversationParticipant{
			{ConversationID: c.ID, UserID: c.ParticipantA},
			{ConversationID: c.ID, UserID: c.ParticipantB},
		}
		return tx.Create(&c.Participants).Error
	})
	return translate(err)
}

func (s *Store) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var c models.Conversation
	if err := s.db(ctx).Preload("Participants").First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Store) ListConversations(ctx context.Context, userID uuid.UUID) ([]store.ConversationSummary, error) {
	var parts []models.ConversationParticipant
	if err := s.db(ctx).Where("user_id = ?", userID).Find(&parts).Error; err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return []store.ConversationSummary{}, nil
	}

	unread := make(map[uuid.UUID]int, len(parts))
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		unread[p.ConversationID] = p.UnreadCount
		ids = append(ids, p.ConversationID)
	}

	var convs []models.Conversation
	err := s.db(ctx).
		Preload("Participants").
		Where("id IN ?", ids).
		Order("last_message_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}

	out := make([]store.ConversationSummary, 0, len(convs))
	for _, c := range convs {
		out = append(out, store.ConversationSummary{Conversation: c, UnreadCount: unread[c.ID]})
	}
	return out, nil
}

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("ReadBy").Create(m).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id <> ?", m.ConversationID, m.SenderID).
			UpdateColumn("unread_count", gorm.Expr("unread_count + 1")).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Conversation{}).
			Where("id = ?", m.ConversationID).
			UpdateColumns(map[string]any{
				"last_message_text": m.Text,
				"last_message_at":   m.CreatedAt,
				"updated_at":        m.CreatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	return translate(err)
}

func (s *Store) ListMessages(ctx context.Context, conversationID uuid.UUID, p store.Page) ([]models.Message, int64, error) {
	q := s.db(ctx).Model(&models.Message{}).Where("conversation_id = ?", conversationID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var msgs []models.Message
	if err := paged(q.Preload("ReadBy").Order("created_at ASC"), p).Find(&msgs).Error; err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (s *Store) MarkRead(ctx context.Context, conversationID, userID uuid.UUID, at time.Time) error {
	return s.db(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id = ?", conversationID, userID).
			UpdateColumn("unread_count", 0)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return tx.Exec(`INSERT INTO message_receipts (message_id, user_id, read_at)
			SELECT m.id, ?, ? FROM messages m
			WHERE m.conversation_id = ? AND m.sender_id <> ?
			ON CONFLICT (message_id, user_id) DO NOTHING`,
			userID, at, conversationID, userID).Error
	})
}
