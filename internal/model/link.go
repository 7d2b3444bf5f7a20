package model

import (
	"time"

	"github.com/google/uuid"
)

// ExpertChildLink is the durable association created when a
// consultation request is approved. Unique on (expert_id, child_id).
type ExpertChildLink struct {
	LinkID       uuid.UUID `json:"link_id" db:"link_id"`
	ExpertID     uuid.UUID `json:"expert_id" db:"expert_id"`
	ChildID      uuid.UUID `json:"child_id" db:"child_id"`
	ParentUserID uuid.UUID `json:"parent_user_id" db:"parent_user_id"`
	LinkedAt     time.Time `json:"linked_at" db:"linked_at"`
}

type CreateLinkRequest struct {
	ExpertID     *uuid.UUID `json:"expert_id"`
	ParentUserID uuid.UUID  `json:"parent_user_id" binding:"required"`
	ChildID      uuid.UUID  `json:"child_id" binding:"required"`
}

// LinkDetails is a link joined with the child and expert it connects.
type LinkDetails struct {
	ExpertChildLink
	ChildName      string  `json:"child_name" db:"child_name"`
	ExpertName     string  `json:"expert_name" db:"expert_name"`
	Specialization *string `json:"specialization" db:"specialization"`
}
