package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Event types dispatched by the outbox processor.
const (
	EventTypeLinkUpsert    = "link.upsert"
	EventTypeStorageDelete = "storage.delete"
	EventTypeChatMessage   = "chat.message"
)

// OutboxEvent is a durable side effect recorded in the same transaction
// as the state change that requires it.
type OutboxEvent struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	EventType    string          `json:"event_type" db:"event_type"`
	Payload      json.RawMessage `json:"payload" db:"payload"`
	Status       OutboxStatus    `json:"status" db:"status"`
	ErrorMessage *string         `json:"error_message,omitempty" db:"error_message"`
	RetryCount   int             `json:"retry_count" db:"retry_count"`
	RetryAt      *time.Time      `json:"retry_at,omitempty" db:"retry_at"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
}

// LinkUpsertPayload is the payload for EventTypeLinkUpsert events.
type LinkUpsertPayload struct {
	ExpertID     uuid.UUID `json:"expert_id"`
	ChildID      uuid.UUID `json:"child_id"`
	ParentUserID uuid.UUID `json:"parent_user_id"`
}

// StorageDeletePayload is the payload for EventTypeStorageDelete events.
type StorageDeletePayload struct {
	Key string `json:"key"`
}
