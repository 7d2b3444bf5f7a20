package model

import (
	"time"

	"github.com/google/uuid"
)

// Gender constants
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Child is owned exclusively by one parent; every read and write is
// scoped by ParentUserID.
type Child struct {
	ChildID      uuid.UUID `json:"child_id" db:"child_id"`
	ParentUserID uuid.UUID `json:"parent_user_id" db:"parent_user_id"`
	ChildName    string    `json:"child_name" db:"child_name"`
	DateOfBirth  time.Time `json:"date_of_birth" db:"date_of_birth"`
	Gender       string    `json:"gender" db:"gender"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type CreateChildRequest struct {
	ChildName   string `json:"child_name" binding:"required"`
	DateOfBirth string `json:"date_of_birth" binding:"required"`
	Gender      string `json:"gender" binding:"required,oneof=male female other"`
}

type UpdateChildRequest struct {
	ChildName   *string `json:"child_name"`
	DateOfBirth *string `json:"date_of_birth"`
	Gender      *string `json:"gender" binding:"omitempty,oneof=male female other"`
}
