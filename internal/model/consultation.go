package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// ConsultationRequest tracks a parent asking an expert to take on a
// child. At most one pending or approved request may exist per
// (parent, expert, child) triple.
type ConsultationRequest struct {
	RequestID    uuid.UUID     `json:"request_id" db:"request_id"`
	ParentUserID uuid.UUID     `json:"parent_user_id" db:"parent_user_id"`
	ExpertID     uuid.UUID     `json:"expert_id" db:"expert_id"`
	ChildID      uuid.UUID     `json:"child_id" db:"child_id"`
	Status       RequestStatus `json:"status" db:"status"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

type CreateConsultationRequest struct {
	ExpertID uuid.UUID `json:"expert_id" binding:"required"`
	ChildID  uuid.UUID `json:"child_id" binding:"required"`
}

type RespondConsultationRequest struct {
	RequestID uuid.UUID `json:"request_id" binding:"required"`
	Status    string    `json:"status" binding:"required"`
}

// ConsultationResponse reports the updated request plus the link that
// was created on approval. Warning is set when the status update
// succeeded but the link write did not.
type ConsultationResponse struct {
	Request *ConsultationRequest `json:"request"`
	Link    *ExpertChildLink     `json:"link,omitempty"`
	Warning string               `json:"warning,omitempty"`
}
