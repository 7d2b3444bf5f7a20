package model

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
)

// Conversation is 1:1 with an expert-child link.
type Conversation struct {
	ConversationID uuid.UUID `json:"conversation_id" db:"conversation_id"`
	LinkID         uuid.UUID `json:"link_id" db:"link_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ConversationDetails joins a conversation with its link participants.
type ConversationDetails struct {
	Conversation
	ParentUserID uuid.UUID `json:"parent_user_id" db:"parent_user_id"`
	ExpertID     uuid.UUID `json:"expert_id" db:"expert_id"`
	ChildID      uuid.UUID `json:"child_id" db:"child_id"`
	ChildName    string    `json:"child_name" db:"child_name"`
	ExpertName   string    `json:"expert_name" db:"expert_name"`
}

// Message rows are append-only, ordered by created_at.
type Message struct {
	MessageID      uuid.UUID   `json:"message_id" db:"message_id"`
	ConversationID uuid.UUID   `json:"conversation_id" db:"conversation_id"`
	SenderID       uuid.UUID   `json:"sender_id" db:"sender_id"`
	Text           string      `json:"text" db:"text"`
	Type           MessageType `json:"type" db:"type"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

type CreateConversationRequest struct {
	LinkID uuid.UUID `json:"link_id" binding:"required"`
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
	Type string `json:"type" binding:"omitempty,oneof=text image file"`
}
