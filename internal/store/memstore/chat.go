package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store"
)

func (s *Store) FindConversation(ctx context.Context, k store.ConversationKey) (*models.Conversation, error) {
	k = k.Ordered()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.convs {
		if c.ParticipantA == k.UserA && c.ParticipantB == k.UserB && c.Type == k.Type && c.RelatedID == k.RelatedID {
			return s.withParticipants(c), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) withParticipants(c *models.Conversation) *models.Conversation {
	cp := *c
	cp.Participants = nil
	for _, uid := range []uuid.UUID{c.ParticipantA, c.ParticipantB} {
		cp.Participants = append(cp.Participants, models.ConversationParticipant{
			ConversationID: c.ID,
			UserID:         uid,
			UnreadCount:    s.unread[c.ID][uid],
		})
	}
	return &cp
}

func (s *Store) CreateConversation(ctx context.Context, c *models.Conversation) error {
	c.ParticipantA, c.ParticipantB = models.OrderPair(c.ParticipantA, c.ParticipantB)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.convs {
		if other.ParticipantA == c.ParticipantA && other.ParticipantB == c.ParticipantB &&
			other.Type == c.Type && other.RelatedID == c.RelatedID {
			return store.ErrDuplicate
		}
	}
	s.stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if c.LastMessageAt.IsZero() {
		c.LastMessageAt = c.CreatedAt
	}
	cp := *c
	cp.Participants = nil
	s.convs[c.ID] = &cp
	s.unread[c.ID] = map[uuid.UUID]int{c.ParticipantA: 0, c.ParticipantB: 0}
	c.Participants = s.withParticipants(&cp).Participants
	return nil
}

func (s *Store) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.withParticipants(c), nil
}

func (s *Store) ListConversations(ctx context.Context, userID uuid.UUID) ([]store.ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.ConversationSummary
	for _, c := range s.convs {
		if !c.HasParticipant(userID) {
			continue
		}
		out = append(out, store.ConversationSummary{
			Conversation: *s.withParticipants(c),
			UnreadCount:  s.unread[c.ID][userID],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out, nil
}

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[m.ConversationID]
	if !ok {
		return store.ErrNotFound
	}
	s.stamp(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	cp := *m
	cp.ReadBy = nil
	s.messages[c.ID] = append(s.messages[c.ID], &cp)

	for uid := range s.unread[c.ID] {
		if uid != m.SenderID {
			s.unread[c.ID][uid]++
		}
	}
	c.LastMessageText = m.Text
	c.LastMessageAt = m.CreatedAt
	c.UpdatedAt = m.CreatedAt
	return nil
}

// ListMessages returns messages oldest first.
func (s *Store) ListMessages(ctx context.Context, conversationID uuid.UUID, p store.Page) ([]models.Message, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.messages[conversationID]
	out := make([]models.Message, 0, len(all))
	for _, m := range all {
		cp := *m
		cp.ReadBy = append([]models.MessageReceipt(nil), m.ReadBy...)
		out = append(out, cp)
	}
	return paginate(out, p), int64(len(out)), nil
}

func (s *Store) MarkRead(ctx context.Context, conversationID, userID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.convs[conversationID]; !ok {
		return store.ErrNotFound
	}
	s.unread[conversationID][userID] = 0
	for _, m := range s.messages[conversationID] {
		if m.SenderID == userID || readBy(m, userID) {
			continue
		}
		m.ReadBy = append(m.ReadBy, models.MessageReceipt{
			ID:        uuid.New(),
			MessageID: m.ID,
			UserID:    userID,
			ReadAt:    at,
		})
	}
	return nil
}

func readBy(m *models.Message, userID uuid.UUID) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
