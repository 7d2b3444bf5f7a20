package model

import (
	"time"

	"github.com/google/uuid"
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// ExpertProfile holds the expert-specific profile. Experts join the
// platform pending and must be approved by an admin before parents can
// request consultations with them.
type ExpertProfile struct {
	ExpertID       uuid.UUID      `json:"expert_id" db:"expert_id"`
	FullName       string         `json:"full_name" db:"full_name"`
	Specialization *string        `json:"specialization" db:"specialization"`
	Organization   *string        `json:"organization" db:"organization"`
	ContactEmail   *string        `json:"contact_email" db:"contact_email"`
	Phone          *string        `json:"phone" db:"phone"`
	ApprovalStatus ApprovalStatus `json:"approval_status" db:"approval_status"`
	ApprovedBy     *uuid.UUID     `json:"approved_by" db:"approved_by"`
	ApprovedAt     *time.Time     `json:"approved_at" db:"approved_at"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// ApprovalStats summarizes expert approval state for the admin panel.
type ApprovalStats struct {
	Pending  int `json:"pending" db:"pending"`
	Approved int `json:"approved" db:"approved"`
	Rejected int `json:"rejected" db:"rejected"`
}
