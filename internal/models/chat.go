// internal/models/chat.go
package models

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

type ConversationType string

const (
	ConversationService        ConversationType = "service"
	ConversationJobApplication ConversationType = "job_application"
	ConversationJobProposal    ConversationType = "job_proposal"
)

func (t ConversationType) Valid() bool {
	return t == ConversationService || t == ConversationJobApplication || t == ConversationJobProposal
}

// Conversation is a two-party chat tied back to the entity that allowed it.
// ParticipantA is always the lower of the two user ids so the unique key is order free.
type Conversation struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	ParticipantA uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_key;index" json:"participant_a"`
	ParticipantB uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_key;index" json:"participant_b"`
	Type         ConversationType `gorm:"type:varchar(30);not null;uniqueIndex:idx_conversation_key" json:"type"`
	RelatedID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_key" json:"related_id"`

	LastMessageText string    `gorm:"type:text" json:"last_message_text"`
	LastMessageAt   time.Time `json:"last_message_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// Other returns the participant that is not userID.
func (c *Conversation) Other(userID uuid.UUID) uuid.UUID {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// OrderPair returns the two ids sorted bytewise.
func OrderPair(x, y uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(x[:], y[:]) <= 0 {
		return x, y
	}
	return y, x
}

// ConversationParticipant holds the unread counter of one member.
type ConversationParticipant struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participant_conv_user" json:"conversation_id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participant_conv_user;index" json:"user_id"`
	UnreadCount    int       `gorm:"not null;default:0" json:"unread_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;index" json:"conversation_id"`
	SenderID       uuid.UUID `gorm:"type:uuid;index" json:"sender_id"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	ReadBy []MessageReceipt `gorm:"foreignKey:MessageID" json:"read_by"`
}

type MessageReceipt struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_receipt_message_user" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_receipt_message_user" json:"user_id"`
	ReadAt    time.Time `json:"read_at"`
}
